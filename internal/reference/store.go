// Package reference persists the mapping from challenge id to slug and
// lifecycle state. The backing file is line oriented, one "<id> <slug> <state>"
// record per line, and is regenerated in full on every change after the
// previous contents are copied to a sibling backup file.
//
// There is no locking. Two processes writing the same file race and the last
// writer wins.
package reference

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/thruflo/nodewars/internal/logging"
)

// BackupSuffix is appended to the data file path to name the backup copy.
const BackupSuffix = ".bak"

// Store is the in-memory reference mapping and its backing file.
type Store struct {
	fs   afero.Fs
	path string
	log  *logging.Logger

	// order keeps ids in first-insertion order so the file is stable.
	order   []string
	records map[string]Record
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped lines and writes.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// Open creates a Store for the file at path and loads it. A missing file
// (and its parent directory) is created empty.
func Open(fs afero.Fs, path string, opts ...Option) (*Store, error) {
	s := &Store{
		fs:      fs,
		path:    path,
		log:     logging.Default(),
		records: make(map[string]Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "reference")

	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// BackupPath returns the backup file path.
func (s *Store) BackupPath() string {
	return s.path + BackupSuffix
}

func (s *Store) ensureFile() error {
	_, err := s.fs.Stat(s.path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return &PersistenceError{Op: "stat", Path: s.path, Err: err}
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &PersistenceError{Op: "create", Path: s.path, Err: err}
	}
	if err := afero.WriteFile(s.fs, s.path, nil, 0o644); err != nil {
		return &PersistenceError{Op: "create", Path: s.path, Err: err}
	}
	return nil
}

// Load re-reads the backing file, replacing the in-memory mapping. It always
// reloads; calling it twice reads the file twice. Malformed lines are skipped.
// When the same id appears twice the later line wins, and a later line also
// evicts an earlier record holding the same slug.
func (s *Store) Load() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil && !os.IsNotExist(err) {
		return &PersistenceError{Op: "read", Path: s.path, Err: err}
	}

	records, skipped := Decode(data)
	for _, line := range skipped {
		s.log.Debug("skipping malformed line", "path", s.path, "line", line)
	}

	s.order = nil
	s.records = make(map[string]Record, len(records))
	for _, rec := range records {
		if other, ok := s.bySlug(rec.Slug); ok && other.ID != rec.ID {
			s.remove(other.ID)
		}
		s.put(rec)
	}
	return nil
}

// Find looks up a record by id, then by slug.
func (s *Store) Find(identifier string) (Record, error) {
	if rec, ok := s.records[identifier]; ok {
		return rec, nil
	}
	if rec, ok := s.bySlug(identifier); ok {
		return rec, nil
	}
	return Record{}, &NotFoundError{Identifier: identifier}
}

// Upsert inserts or replaces the record for id and persists the whole
// mapping. If persisting fails the mapping is restored and a
// *PersistenceError is returned.
func (s *Store) Upsert(id, slug string, state State) error {
	if !validField(id) {
		return fmt.Errorf("invalid id %q: %w", id, ErrInvalidField)
	}
	if !validField(slug) {
		return fmt.Errorf("invalid slug %q: %w", slug, ErrInvalidField)
	}
	if _, err := ParseState(string(state)); err != nil {
		return err
	}
	if other, ok := s.bySlug(slug); ok && other.ID != id {
		return fmt.Errorf("slug %q (id %s): %w", slug, other.ID, ErrSlugConflict)
	}

	prevOrder := append([]string(nil), s.order...)
	prev, existed := s.records[id]

	s.put(Record{ID: id, Slug: slug, State: state})

	if err := s.persist(); err != nil {
		s.order = prevOrder
		if existed {
			s.records[id] = prev
		} else {
			delete(s.records, id)
		}
		return err
	}

	s.log.Debug("record written", "id", id, "slug", slug, "state", state)
	return nil
}

// List returns records in insertion order. An empty filter returns all.
func (s *Store) List(filter State) []Record {
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		rec := s.records[id]
		if filter != "" && rec.State != filter {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.order)
}

func (s *Store) persist() error {
	current, err := afero.ReadFile(s.fs, s.path)
	if err != nil && !os.IsNotExist(err) {
		return &PersistenceError{Op: "read", Path: s.path, Err: err}
	}

	if err := afero.WriteFile(s.fs, s.BackupPath(), current, 0o644); err != nil {
		return &PersistenceError{Op: "backup", Path: s.BackupPath(), Err: err}
	}

	if err := afero.WriteFile(s.fs, s.path, Encode(s.List("")), 0o644); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func (s *Store) put(rec Record) {
	if _, ok := s.records[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec
}

func (s *Store) remove(id string) {
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *Store) bySlug(slug string) (Record, bool) {
	for _, id := range s.order {
		if rec := s.records[id]; rec.Slug == slug {
			return rec, true
		}
	}
	return Record{}, false
}
