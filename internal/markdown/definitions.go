package markdown

import (
	"regexp"
	"strings"
)

// abbreviationLine matches `*[ABBR]: expansion` with up to three spaces of
// indentation.
var abbreviationLine = regexp.MustCompile(`^ {0,3}\*\[([^\]]+)\]:[ \t]*(.*?)[ \t]*$`)

// AbbreviationDef is an abbreviation declared in a document or its
// configuration.
type AbbreviationDef struct {
	Abbr      string
	Expansion string
}

// ReferenceDef is a link reference definition.
type ReferenceDef struct {
	Label string
	URL   string
	Title string
}

// extractAbbreviations removes abbreviation definition lines from body and
// returns them in source order. Lines inside fenced or indented code are
// left alone.
func extractAbbreviations(body []byte) ([]byte, []AbbreviationDef) {
	src := string(body)
	if !strings.Contains(src, "*[") {
		return body, nil
	}

	lines := strings.SplitAfter(src, "\n")

	inCodeBlock := false
	activeFence := ""

	var defs []AbbreviationDef
	var out strings.Builder
	out.Grow(len(src))
	for _, line := range lines {
		content := strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimSpace(content)
		switch {
		case strings.HasPrefix(trimmed, "```"):
			inCodeBlock, activeFence = toggleFencedBlock(inCodeBlock, activeFence, "```")
		case strings.HasPrefix(trimmed, "~~~"):
			inCodeBlock, activeFence = toggleFencedBlock(inCodeBlock, activeFence, "~~~")
		case !inCodeBlock && !strings.HasPrefix(content, "    ") && !strings.HasPrefix(content, "\t"):
			if m := abbreviationLine.FindStringSubmatch(content); m != nil {
				defs = append(defs, AbbreviationDef{Abbr: strings.TrimSpace(m[1]), Expansion: m[2]})
				continue
			}
		}
		out.WriteString(line)
	}

	return []byte(out.String()), defs
}

func toggleFencedBlock(inCodeBlock bool, activeFence string, fence string) (bool, string) {
	if !inCodeBlock {
		return true, fence
	}
	if activeFence == fence {
		return false, ""
	}
	return inCodeBlock, activeFence
}
