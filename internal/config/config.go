package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultPort         = 8000
	DefaultHost         = "0.0.0.0"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultTemplatePath = "blank_template.pdf"
	DefaultMaxFileSize  = 50 * 1024 * 1024 // 50MB
)

// DefaultPages are the 1-based page numbers compared when a request does not
// name its own.
var DefaultPages = []int{1, 3, 11, 12}

// Config holds all configuration for the PDF comparison server
type Config struct {
	// Server configuration
	Host   string
	Port   int
	APIKey string // empty disables the shared-secret check

	// Comparison configuration
	TemplatePath string
	DefaultPages []int
	MaxFileSize  int64 // Maximum PDF upload size in bytes

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		TemplatePath: DefaultTemplatePath,
		DefaultPages: append([]int(nil), DefaultPages...),
		MaxFileSize:  DefaultMaxFileSize,
		Version:      "1.0.0",
		ServerName:   "pdf-compare-server",
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand the template path if needed
	if cfg.TemplatePath != "" {
		if expandedPath, err := filepath.Abs(cfg.TemplatePath); err == nil {
			cfg.TemplatePath = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("PDF_COMPARE")
	viper.AutomaticEnv()

	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("apikey", cfg.APIKey)
	viper.SetDefault("template", cfg.TemplatePath)
	viper.SetDefault("pages", cfg.DefaultPages)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("host", cfg.Host, "Server host address")
	pflag.Int("port", cfg.Port, "Server port")
	pflag.String("apikey", cfg.APIKey, "Shared API key required in the X-API-Key header (empty disables the check)")
	pflag.String("template", cfg.TemplatePath, "Path to the blank template PDF file")
	pflag.IntSlice("pages", cfg.DefaultPages, "Default 1-based page numbers to compare")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF upload size in bytes")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (text, json)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("apikey", pflag.Lookup("apikey"))
	_ = viper.BindPFlag("template", pflag.Lookup("template"))
	_ = viper.BindPFlag("pages", pflag.Lookup("pages"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("logformat", pflag.Lookup("logformat"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Compare Server - extracts user-entered text from filled PDF forms\n")
		fmt.Fprintf(os.Stderr, "by diffing them against a blank template\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # defaults\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --template=/data/blank.pdf               # custom template\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --pages=1,3,11,12 --port=8080            # custom pages and port\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_COMPARE_HOST         Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_COMPARE_PORT         Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_COMPARE_APIKEY       Shared API key\n")
		fmt.Fprintf(os.Stderr, "  PDF_COMPARE_TEMPLATE     Template PDF path\n")
		fmt.Fprintf(os.Stderr, "  PDF_COMPARE_MAXFILESIZE  Maximum upload size\n")
		fmt.Fprintf(os.Stderr, "  PDF_COMPARE_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_COMPARE_LOGFORMAT    Log format\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.APIKey = viper.GetString("apikey")
	cfg.TemplatePath = viper.GetString("template")
	cfg.DefaultPages = viper.GetIntSlice("pages")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	if c.TemplatePath == "" {
		return errors.New("template path cannot be empty")
	}

	if len(c.DefaultPages) == 0 {
		return errors.New("default pages cannot be empty")
	}
	for _, p := range c.DefaultPages {
		if p < 1 {
			return fmt.Errorf("invalid page number %d: pages are 1-based", p)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", c.LogFormat)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// RequiresAPIKey reports whether the shared-secret header check is enabled
func (c *Config) RequiresAPIKey() bool {
	return c.APIKey != ""
}

// String returns a string representation of the configuration. The API key
// is omitted on purpose.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, TemplatePath: %s, DefaultPages: %v, LogLevel: %s, MaxFileSize: %d}",
		c.Host, c.Port, c.TemplatePath, c.DefaultPages, c.LogLevel, c.MaxFileSize)
}
