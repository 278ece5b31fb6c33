package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pagediff/pdf-compare-server/internal/config"
	"github.com/pagediff/pdf-compare-server/internal/pdf"
	"github.com/pagediff/pdf-compare-server/internal/server"
	"github.com/pagediff/pdf-compare-server/internal/template"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogger configures logrus from the loaded configuration
func setupLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}

// run starts the server and blocks until a shutdown signal or server error
func run(log *logrus.Logger, srv *server.Server) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.WithField("signal", sig.String()).Info("initiating graceful shutdown")
		cancel()
		if err := <-serverErrCh; err != nil {
			return fmt.Errorf("server shutdown with error: %w", err)
		}
	case err := <-serverErrCh:
		if err != nil {
			return err
		}
	}

	log.Info("server stopped")
	return nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	log := setupLogger(cfg)
	if cfg.IsDebug() {
		log.WithField("config", cfg.String()).Debug("starting with configuration")
	}

	pdfService := pdf.NewService(cfg.MaxFileSize)

	templates := template.NewStore(cfg.TemplatePath, pdf.NewValidator(cfg.MaxFileSize))
	if err := templates.Load(); err != nil {
		log.Fatalf("Failed to load template: %v", err)
	}
	if !templates.Loaded() {
		log.WithField("path", cfg.TemplatePath).Warn("no blank template found; comparisons will fail until one is uploaded")
	}

	srv, err := server.NewServer(cfg, log, pdfService, templates)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := run(log, srv); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Compare Server\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
