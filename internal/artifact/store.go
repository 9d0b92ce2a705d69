// Package artifact caches per-challenge files under the project directory,
// one directory per slug.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Well-known artifact names.
const (
	ChallengeFile = "kata.json"
	TrainFile     = "train.json"
	SessionFile   = "session.json"
	ResultFile    = "result.json"
)

// Store reads and writes artifacts keyed by challenge slug.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore creates a Store rooted at the project directory.
func NewStore(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root}
}

// Root returns the project directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory holding a challenge's artifacts.
func (s *Store) Dir(slug string) string {
	return filepath.Join(s.root, slug)
}

// Path returns the path of one artifact.
func (s *Store) Path(slug, name string) string {
	return filepath.Join(s.Dir(slug), name)
}

// Exists reports whether an artifact has been written.
func (s *Store) Exists(slug, name string) bool {
	ok, err := afero.Exists(s.fs, s.Path(slug, name))
	return err == nil && ok
}

// WriteText stores data verbatim, overwriting any existing file.
func (s *Store) WriteText(slug, name, data string) error {
	return s.write(slug, name, []byte(data))
}

// WriteJSON stores v as indented JSON. json.RawMessage values are
// re-indented as-is.
func (s *Store) WriteJSON(slug, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s for %s: %w", name, slug, err)
	}
	return s.write(slug, name, append(data, '\n'))
}

// ReadText returns an artifact's contents.
func (s *Store) ReadText(slug, name string) (string, error) {
	data, err := afero.ReadFile(s.fs, s.Path(slug, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s not found for %s: %w", name, slug, err)
		}
		return "", fmt.Errorf("failed to read %s for %s: %w", name, slug, err)
	}
	return string(data), nil
}

// ReadJSON decodes an artifact into v.
func (s *Store) ReadJSON(slug, name string, v interface{}) error {
	data, err := s.ReadText(slug, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to parse %s for %s: %w", name, slug, err)
	}
	return nil
}

func (s *Store) write(slug, name string, data []byte) error {
	dir := s.Dir(slug)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := afero.WriteFile(s.fs, s.Path(slug, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s for %s: %w", name, slug, err)
	}
	return nil
}
