package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a YAML frontmatter delimiter, had is false
// and body is the full input. CRLF documents are recognized by their first
// line ending.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	frontmatterStart := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[frontmatterStart:], closeLine) {
		return []byte{}, content[frontmatterStart+len(closeLine):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[frontmatterStart:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the very last line has no trailing newline.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content, tail) {
			end := len(content) - len(tail)
			return content[frontmatterStart : end+len(nl)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	frontmatterEnd := frontmatterStart + idx + len(nl)
	bodyStart := frontmatterStart + idx + len(closeSeq)
	return content[frontmatterStart:frontmatterEnd], content[bodyStart:], true, nil
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// Meta holds the frontmatter keys understood by the converter. Other keys
// are collected in Extra.
type Meta struct {
	Title         string               `yaml:"title,omitempty"`
	Wrap          string               `yaml:"wrap"`
	Abbreviations map[string]string    `yaml:"abbreviations"`
	References    map[string]Reference `yaml:"references"`
	Extra         map[string]any       `yaml:",inline"`
}

// Reference is a link target declared in frontmatter. It may be written as a
// bare URL or as a mapping with url and title.
type Reference struct {
	URL   string `yaml:"url"`
	Title string `yaml:"title,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (r *Reference) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		r.URL = value.Value
		r.Title = ""
		return nil
	case yaml.MappingNode:
		type plain Reference
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*r = Reference(p)
		return nil
	default:
		return fmt.Errorf("line %d: reference must be a URL or a mapping with url and title", value.Line)
	}
}

// Decode parses raw YAML frontmatter (without --- delimiters).
func Decode(frontmatter []byte) (Meta, error) {
	var meta Meta
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return meta, nil
	}
	if err := yaml.Unmarshal(frontmatter, &meta); err != nil {
		return Meta{}, err
	}
	return meta, nil
}
