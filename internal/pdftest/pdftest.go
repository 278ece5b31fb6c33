// Package pdftest builds small real PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// BuildPDF renders one page per entry with one text line per element and
// returns the document bytes.
func BuildPDF(t *testing.T, pages ...[]string) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, lines := range pages {
		doc.AddPage()
		for _, line := range lines {
			doc.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("failed to build fixture PDF: %v", err)
	}
	return buf.Bytes()
}

// WritePDF builds a fixture PDF and writes it into a test-scoped file,
// returning its path.
func WritePDF(t *testing.T, name string, pages ...[]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, BuildPDF(t, pages...), 0o644); err != nil {
		t.Fatalf("failed to write fixture PDF: %v", err)
	}
	return path
}
