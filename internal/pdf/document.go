package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrPageOutOfRange indicates a requested page number does not exist in the
// document. Callers distinguish this from an extraction failure: a missing
// page degrades to empty text, it never aborts a comparison.
var ErrPageOutOfRange = errors.New("page out of range")

// OpenError indicates a byte stream or file could not be parsed as a PDF at
// all (corrupt header, empty buffer, non-PDF content).
type OpenError struct {
	Source string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open %s as PDF: %v", e.Source, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Document is an opened, page-indexed PDF source. Page numbers are 1-based
// throughout this package.
type Document interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageText returns the extracted plain text of the given 1-based page,
	// or ErrPageOutOfRange if the page does not exist.
	PageText(pageNum int) (string, error)

	// Close releases any resources held by the document. Idempotent.
	Close() error
}

// Opener opens documents from memory or from disk.
type Opener interface {
	OpenBytes(data []byte) (Document, error)
	OpenFile(path string) (Document, error)
}

// LedongthucOpener opens documents using github.com/ledongthuc/pdf.
type LedongthucOpener struct{}

// OpenBytes opens a PDF held entirely in memory.
func (LedongthucOpener) OpenBytes(data []byte) (doc Document, err error) {
	defer func() {
		// The underlying parser panics on some malformed inputs.
		if r := recover(); r != nil {
			doc = nil
			err = &OpenError{Source: "buffer", Err: fmt.Errorf("parse failure: %v", r)}
		}
	}()

	if len(data) == 0 {
		return nil, &OpenError{Source: "buffer", Err: errors.New("empty document")}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &OpenError{Source: "buffer", Err: err}
	}

	return &document{reader: reader}, nil
}

// OpenFile opens a PDF from a file path. The returned document holds the file
// handle until Close is called.
func (LedongthucOpener) OpenFile(path string) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &OpenError{Source: path, Err: fmt.Errorf("parse failure: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &OpenError{Source: path, Err: err}
	}

	return &document{reader: reader, file: f}, nil
}

// document implements Document over a ledongthuc reader.
type document struct {
	reader *pdf.Reader
	file   *os.File // nil when opened from memory
	closed bool
}

func (d *document) PageCount() int {
	return d.reader.NumPage()
}

func (d *document) PageText(pageNum int) (text string, err error) {
	defer func() {
		// Content() walks the page's object graph and can panic on
		// damaged streams; treat that as a failed extraction.
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("text extraction failed for page %d: %v", pageNum, r)
		}
	}()

	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return "", ErrPageOutOfRange
	}

	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}

	return assembleLines(page.Content()), nil
}

func (d *document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// rowTolerance is the maximum vertical distance, in PDF units, between two
// text items that still belong to the same visual line.
const rowTolerance = 2.0

// assembleLines turns positioned text items into plain text, one visual line
// per output line. Items are grouped into rows by baseline Y (top of page
// first), then each row is read left to right.
func assembleLines(content pdf.Content) string {
	items := content.Text
	if len(items) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	type row struct {
		y     float64
		items []pdf.Text
	}

	var rows []*row
	for _, item := range sorted {
		if n := len(rows); n > 0 && rows[n-1].y-item.Y <= rowTolerance {
			rows[n-1].items = append(rows[n-1].items, item)
			continue
		}
		rows = append(rows, &row{y: item.Y, items: []pdf.Text{item}})
	}

	var builder strings.Builder
	for i, r := range rows {
		sort.SliceStable(r.items, func(a, b int) bool {
			return r.items[a].X < r.items[b].X
		})
		if i > 0 {
			builder.WriteByte('\n')
		}
		for _, item := range r.items {
			builder.WriteString(item.S)
		}
	}

	return builder.String()
}
