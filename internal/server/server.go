// Package server exposes the PDF comparison service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pagediff/pdf-compare-server/internal/config"
	"github.com/pagediff/pdf-compare-server/internal/pdf"
	"github.com/pagediff/pdf-compare-server/internal/template"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server wires the comparison service and template store to HTTP endpoints.
type Server struct {
	cfg        *config.Config
	log        *logrus.Logger
	pdfService *pdf.Service
	templates  *template.Store
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, log *logrus.Logger, pdfService *pdf.Service, templates *template.Store) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if templates == nil {
		return nil, fmt.Errorf("template store cannot be nil")
	}
	if log == nil {
		log = logrus.New()
	}

	return &Server{
		cfg:        cfg,
		log:        log,
		pdfService: pdfService,
		templates:  templates,
	}, nil
}

// Handler returns the fully routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /config", s.handleConfig)
	mux.HandleFunc("POST /compare-pdf", s.requireAPIKey(s.handleCompare))
	mux.HandleFunc("POST /compare-pdf-custom", s.requireAPIKey(s.handleCompareCustom))
	mux.HandleFunc("POST /compare-pdf-base64", s.requireAPIKey(s.handleCompareBase64))
	mux.HandleFunc("POST /upload-model", s.requireAPIKey(s.handleUploadTemplate))

	return s.logRequests(mux)
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.log.WithFields(logrus.Fields{
		"address":  s.cfg.Address(),
		"template": s.templates.Path(),
	}).Info("server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
