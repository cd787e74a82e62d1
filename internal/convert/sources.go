package convert

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
)

// Source is a Markdown file together with the root its output path is
// computed relative to.
type Source struct {
	Path string
	Base string
}

var markdownExtensions = map[string]struct{}{
	".md":       {},
	".markdown": {},
	".mdown":    {},
}

// IsMarkdown reports whether path has a Markdown file extension.
func IsMarkdown(path string) bool {
	_, ok := markdownExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Collect expands paths into Markdown sources. Directories are walked
// recursively, skipping hidden entries. A file named explicitly is
// converted whatever its extension.
func Collect(paths []string) ([]Source, error) {
	seen := make(map[string]struct{})
	var sources []Source
	add := func(path, base string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		sources = append(sources, Source{Path: path, Base: base})
	}

	for _, p := range paths {
		p = filepath.Clean(p)
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewError(errors.CategoryNotFound, "input path not found").
					WithContext("path", p).Build()
			}
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to stat input").
				WithContext("path", p).Build()
		}
		if !info.IsDir() {
			add(p, filepath.Dir(p))
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != p && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && IsMarkdown(path) {
				add(path, p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk input directory").
				WithContext("path", p).Build()
		}
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

// OutputPath returns where the EAD file for src is written. Without an
// output directory the file lands next to its source.
func (c *Converter) OutputPath(src Source) string {
	stem := strings.TrimSuffix(src.Path, filepath.Ext(src.Path)) + c.cfg.Output.Extension
	if c.cfg.Output.Directory == "" {
		return stem
	}
	rel, err := filepath.Rel(src.Base, stem)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(stem)
	}
	return filepath.Join(c.cfg.Output.Directory, rel)
}
