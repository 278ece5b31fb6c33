package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pagediff/pdf-compare-server/internal/pdf"
)

// compareBase64Request is the JSON body for /compare-pdf-base64. The
// filename is informational only; Power Automate and similar callers send it
// along with the Base64 payload.
type compareBase64Request struct {
	FileContent string `json:"file_content"`
	Filename    string `json:"filename"`
	Pages       []int  `json:"pages,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "PDF comparison API",
		"version": s.cfg.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"template_loaded": s.templates.Loaded(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"template_path":   s.templates.Path(),
		"template_loaded": s.templates.Loaded(),
		"template_pages":  s.templates.PageCount(),
		"default_pages":   s.cfg.DefaultPages,
	})
}

// handleCompare compares an uploaded PDF against the template using the
// configured default pages.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	s.compare(w, data, s.cfg.DefaultPages)
}

// handleCompareCustom is handleCompare with a caller-supplied page list in
// the "pages" form value, e.g. "1,3,11,12".
func (s *Server) handleCompareCustom(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	pages := s.cfg.DefaultPages
	if raw := r.FormValue("pages"); raw != "" {
		parsed, err := parsePages(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		pages = parsed
	}

	s.compare(w, data, pages)
}

// handleCompareBase64 accepts the PDF as a Base64 string in a JSON body.
func (s *Server) handleCompareBase64(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.pdfService.MaxFileSize()*2)

	var req compareBase64Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.FileContent) == "" {
		writeError(w, http.StatusBadRequest, "file_content is required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.FileContent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid Base64 content")
		return
	}

	pages := req.Pages
	if len(pages) == 0 {
		pages = s.cfg.DefaultPages
	}
	for _, p := range pages {
		if p < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid page number %d: pages are 1-based", p))
			return
		}
	}

	s.compare(w, data, pages)
}

// handleUploadTemplate replaces the blank template document.
func (s *Server) handleUploadTemplate(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	pageCount, err := s.templates.Replace(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.WithFields(logrus.Fields{
		"path":  s.templates.Path(),
		"pages": pageCount,
		"bytes": len(data),
	}).Info("template replaced")

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "template uploaded successfully",
		"pages":   pageCount,
	})
}

// compare diffs the filled document against the current template snapshot
// and writes the page-label mapping as the response body.
func (s *Server) compare(w http.ResponseWriter, filled []byte, pages []int) {
	templateBytes, ok := s.templates.Bytes()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no blank template loaded; upload one via /upload-model")
		return
	}

	result, err := s.pdfService.Compare(pdf.CompareRequest{
		Filled:   filled,
		Template: templateBytes,
		Pages:    pages,
	})
	if err != nil {
		var openErr *pdf.OpenError
		if errors.As(err, &openErr) {
			writeError(w, http.StatusBadRequest, openErr.Error())
			return
		}
		s.log.WithError(err).Error("comparison failed")
		writeError(w, http.StatusInternalServerError, "comparison failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// readUpload pulls the "file" part out of a multipart request. On failure it
// writes the error response itself and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	maxSize := s.pdfService.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("upload too large or malformed (max %d bytes)", maxSize))
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' form field")
		return nil, false
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "file must be a PDF")
		return nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.log.WithError(err).Error("failed to read uploaded file")
		writeError(w, http.StatusInternalServerError, "failed to read uploaded file")
		return nil, false
	}

	return data, true
}

// parsePages parses a comma-separated list of 1-based page numbers.
func parsePages(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	pages := make([]int, 0, len(parts))
	for _, part := range parts {
		p, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid pages format: %q is not a number", strings.TrimSpace(part))
		}
		if p < 1 {
			return nil, fmt.Errorf("invalid page number %d: pages are 1-based", p)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out; an encode failure can't be reported to the client.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
