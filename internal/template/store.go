// Package template manages the blank template document that filled PDFs are
// compared against. The template lives both on disk (so it survives
// restarts) and as an in-memory snapshot handed out to comparisons.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pagediff/pdf-compare-server/internal/pdf"
)

const templateFilePerm = 0o644

// Store holds the current blank template. Replace swaps both the on-disk
// file and the in-memory snapshot atomically: in-flight comparisons keep
// whatever snapshot they already obtained and never observe a partial write.
type Store struct {
	path      string
	validator *pdf.Validator

	mu        sync.RWMutex
	data      []byte
	pageCount int
}

// NewStore creates a template store backed by the given file path.
func NewStore(path string, validator *pdf.Validator) *Store {
	return &Store{
		path:      path,
		validator: validator,
	}
}

// Load reads the template file from disk if it exists. A missing file is not
// an error; comparisons will fail until a template is uploaded.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot read template file %s: %w", s.path, err)
	}

	pageCount, err := s.validator.ValidateBytes(data)
	if err != nil {
		return fmt.Errorf("template file %s is not a usable PDF: %w", s.path, err)
	}

	s.mu.Lock()
	s.data = data
	s.pageCount = pageCount
	s.mu.Unlock()
	return nil
}

// Replace validates data as a PDF, persists it, and makes it the current
// template. The previous template stays in effect if anything fails. On-disk
// replacement is write-new-then-rename so a crash mid-write never corrupts
// the stored template.
func (s *Store) Replace(data []byte) (int, error) {
	pageCount, err := s.validator.ValidateBytes(data)
	if err != nil {
		return 0, fmt.Errorf("rejected template: %w", err)
	}

	if err := s.persist(data); err != nil {
		return 0, err
	}

	snapshot := make([]byte, len(data))
	copy(snapshot, data)

	s.mu.Lock()
	s.data = snapshot
	s.pageCount = pageCount
	s.mu.Unlock()

	return pageCount, nil
}

func (s *Store) persist(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".template-*.pdf")
	if err != nil {
		return fmt.Errorf("cannot create temporary template file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cannot write temporary template file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cannot close temporary template file: %w", err)
	}
	if err := os.Chmod(tmpName, templateFilePerm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cannot set template file permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cannot replace template file %s: %w", s.path, err)
	}
	return nil
}

// Bytes returns the current template snapshot. The returned slice is shared
// and must be treated as read-only. The second return reports whether a
// template is loaded at all.
func (s *Store) Bytes() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.data != nil
}

// Loaded reports whether a template is available.
func (s *Store) Loaded() bool {
	_, ok := s.Bytes()
	return ok
}

// PageCount returns the page count of the current template, or 0 when none
// is loaded.
func (s *Store) PageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageCount
}

// Path returns the on-disk location of the template file.
func (s *Store) Path() string {
	return s.path
}
