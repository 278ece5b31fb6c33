package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var pdfHeader = []byte("%PDF-")

// Validator checks that uploaded byte buffers are structurally sound PDFs
// before they are accepted as a template or compared.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified size limit.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateBytes verifies that data parses as a PDF and returns its page
// count. Validation is relaxed: documents with recoverable structural issues
// still pass, matching what the extraction layer tolerates.
func (v *Validator) ValidateBytes(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("document is empty")
	}

	if int64(len(data)) > v.maxFileSize {
		return 0, fmt.Errorf("document too large: %d bytes (max: %d bytes)",
			len(data), v.maxFileSize)
	}

	if !bytes.HasPrefix(data, pdfHeader) {
		return 0, fmt.Errorf("missing %%PDF header")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to determine page count: %w", err)
	}

	return ctx.PageCount, nil
}

// IsValidPDF performs a quick check that data is a usable PDF.
func (v *Validator) IsValidPDF(data []byte) bool {
	_, err := v.ValidateBytes(data)
	return err == nil
}
