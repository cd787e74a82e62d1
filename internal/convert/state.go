package convert

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdead/internal/config"
	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/frontmatter"
)

const stateVersion = 1

// State remembers the fingerprint of every converted source so unchanged
// files can be skipped. It is safe for concurrent use.
type State struct {
	path string

	mu        sync.Mutex
	Version   int              `yaml:"version"`
	Settings  string           `yaml:"settings"`
	Documents map[string]Entry `yaml:"documents"`
}

// Entry is the recorded conversion of one source.
type Entry struct {
	Fingerprint string    `yaml:"fingerprint"`
	Output      string    `yaml:"output"`
	ConvertedAt time.Time `yaml:"converted_at"`
}

// LoadState reads the state file at path. A missing file, a file from
// another state version and a file recorded under different settings all
// yield an empty state.
func LoadState(path, settings string) (*State, error) {
	st := &State{path: path, Version: stateVersion, Settings: settings, Documents: map[string]Entry{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read state file").
			WithContext("path", path).Build()
	}

	var stored State
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to decode state file").
			WithContext("path", path).Build()
	}
	if stored.Version == stateVersion && stored.Settings == settings && stored.Documents != nil {
		st.Documents = stored.Documents
	}
	return st, nil
}

// Unchanged reports whether src was last converted from content with the
// given fingerprint and its output still exists.
func (s *State) Unchanged(src, fingerprint string) bool {
	s.mu.Lock()
	e, ok := s.Documents[src]
	s.mu.Unlock()
	if !ok || e.Fingerprint != fingerprint {
		return false
	}
	_, err := os.Stat(e.Output)
	return err == nil
}

// Record stores a successful conversion.
func (s *State) Record(src string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Documents[src] = e
}

// Forget drops src, e.g. after a failed conversion.
func (s *State) Forget(src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Documents, src)
}

// Save writes the state file, replacing it atomically.
func (s *State) Save() error {
	s.mu.Lock()
	data, err := yaml.Marshal(s)
	s.mu.Unlock()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode state").Build()
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create state directory").
				WithContext("path", dir).Build()
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write state file").
			WithContext("path", tmp).Build()
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to replace state file").
			WithContext("path", s.path).Build()
	}
	return nil
}

// Fingerprint returns the content fingerprint of a Markdown file, hashing
// frontmatter and body separately.
func Fingerprint(content []byte) string {
	fm, body, _, err := frontmatter.Split(content)
	if err != nil {
		return mdfp.CalculateFingerprintFromParts("", string(content))
	}
	return mdfp.CalculateFingerprintFromParts(string(fm), string(body))
}

// SettingsFingerprint identifies the configuration that affects output.
// Changing any of it invalidates every recorded conversion.
func SettingsFingerprint(cfg *config.Config) string {
	data, err := yaml.Marshal(struct {
		Output config.OutputConfig `yaml:"output"`
		Render config.RenderConfig `yaml:"render"`
	}{cfg.Output, cfg.Render})
	if err != nil {
		return ""
	}
	return mdfp.CalculateFingerprintFromParts(string(data), "")
}
