package pdf

import (
	"fmt"
)

// CompareRequest carries a single comparison: the filled document bytes, the
// template snapshot to diff against, and the 1-based page numbers to compare.
type CompareRequest struct {
	Filled   []byte
	Template []byte
	Pages    []int
}

// Service orchestrates document opening, validation and page diffing. It is
// stateless; concurrent calls are independent.
type Service struct {
	maxFileSize int64
	opener      Opener
	differ      *Differ
	validator   *Validator
}

// NewService creates a PDF comparison service with the default document
// opener.
func NewService(maxFileSize int64) *Service {
	return NewServiceWithOpener(maxFileSize, LedongthucOpener{})
}

// NewServiceWithOpener creates a service with a custom document opener.
func NewServiceWithOpener(maxFileSize int64, opener Opener) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		opener:      opener,
		differ:      NewDiffer(),
		validator:   NewValidator(maxFileSize),
	}
}

// Compare opens both documents, diffs the requested pages and returns the
// page-label → unique-lines mapping. Both documents are released before
// returning, on every exit path. An input that does not parse as a PDF fails
// the whole call with an OpenError; no partial result is returned.
func (s *Service) Compare(req CompareRequest) (map[string]string, error) {
	if len(req.Pages) == 0 {
		return nil, fmt.Errorf("no pages requested")
	}
	if int64(len(req.Filled)) > s.maxFileSize {
		return nil, fmt.Errorf("filled document too large: %d bytes (max: %d bytes)",
			len(req.Filled), s.maxFileSize)
	}

	filled, err := s.opener.OpenBytes(req.Filled)
	if err != nil {
		return nil, err
	}
	defer filled.Close()

	template, err := s.opener.OpenBytes(req.Template)
	if err != nil {
		return nil, err
	}
	defer template.Close()

	return s.differ.Compare(filled, template, req.Pages)
}

// ValidateTemplate checks that data is acceptable as a blank template and
// returns its page count.
func (s *Service) ValidateTemplate(data []byte) (int, error) {
	return s.validator.ValidateBytes(data)
}

// MaxFileSize returns the configured document size limit.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}
