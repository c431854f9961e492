package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	buildsFile = "builds.json"
	testsFile  = "tests.json"
)

// Store persists build and test history as JSON arrays under root.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at the given directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the history directory.
func (s *Store) Root() string {
	return s.root
}

// AddBuild appends a build record.
func (s *Store) AddBuild(r RunRecord) error {
	return s.appendRecord(buildsFile, r)
}

// AddTest appends a test record.
func (s *Store) AddTest(r RunRecord) error {
	return s.appendRecord(testsFile, r)
}

// Builds returns all build records, oldest first.
func (s *Store) Builds() ([]RunRecord, error) {
	var records []RunRecord
	err := s.loadRecords(buildsFile, &records)
	return records, err
}

// Tests returns all test records, oldest first.
func (s *Store) Tests() ([]RunRecord, error) {
	var records []RunRecord
	err := s.loadRecords(testsFile, &records)
	return records, err
}

func (s *Store) appendRecord(filename string, record any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}

	path := filepath.Join(s.root, filename)

	// An unreadable file is left untouched rather than replaced.
	var records []json.RawMessage
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("reading %s: %w", path, err)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	records = append(records, raw)

	data, err = json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) loadRecords(filename string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.root, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, dest)
}
