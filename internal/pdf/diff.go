package pdf

import (
	"errors"
	"fmt"
	"strings"
)

// envelopeMarker identifies signature-platform stamp lines that must never
// count as user-entered content. Matched case-insensitively as a substring.
const envelopeMarker = "docusign envelope id"

// Differ computes, per page, the text lines present in a filled document but
// absent from a blank template. Page numbers are 1-based everywhere: a
// request for page 3 reads the third page of both documents and stores the
// result under the key "page3".
type Differ struct{}

// NewDiffer creates a new page differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// PageKey formats the output key for a 1-based page number.
func PageKey(pageNum int) string {
	return fmt.Sprintf("page%d", pageNum)
}

// Compare extracts the lines unique to the filled document for each requested
// page. A page out of range on one side contributes empty text for that side
// only; the comparison still proceeds. Requesting the same page twice yields
// a single key (last write wins, with an identical value).
//
// Diff lines keep the order of their first appearance in the filled page's
// text. The reference behavior left this ordering to chance; here it is part
// of the contract.
func (d *Differ) Compare(filled, template Document, pages []int) (map[string]string, error) {
	if len(pages) == 0 {
		return nil, errors.New("pages cannot be empty")
	}

	diffs := make(map[string]string, len(pages))
	for _, pageNum := range pages {
		filledText, err := pageTextOrEmpty(filled, pageNum)
		if err != nil {
			return nil, fmt.Errorf("filled document: %w", err)
		}
		templateText, err := pageTextOrEmpty(template, pageNum)
		if err != nil {
			return nil, fmt.Errorf("template document: %w", err)
		}

		filledLines := normalizeLines(filledText)
		templateSet := make(map[string]struct{}, len(filledLines))
		for _, line := range normalizeLines(templateText) {
			templateSet[line] = struct{}{}
		}

		var unique []string
		for _, line := range filledLines {
			if _, ok := templateSet[line]; !ok {
				unique = append(unique, line)
			}
		}

		diffs[PageKey(pageNum)] = strings.TrimSpace(strings.Join(unique, "\n"))
	}

	return diffs, nil
}

// pageTextOrEmpty degrades a missing page to empty text; any other extraction
// failure is surfaced to the caller.
func pageTextOrEmpty(doc Document, pageNum int) (string, error) {
	text, err := doc.PageText(pageNum)
	if errors.Is(err, ErrPageOutOfRange) {
		return "", nil
	}
	return text, err
}

// normalizeLines splits text into trimmed lines, dropping empty lines, lines
// carrying the envelope marker, and repeats. The first occurrence of each
// line keeps its position.
func normalizeLines(text string) []string {
	seen := make(map[string]struct{})
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.Contains(strings.ToLower(line), envelopeMarker) {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	return lines
}
