package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	perrors "github.com/p-blackswan/protodocs/internal/errors"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`

	// Optional rotated log file written alongside stdout.
	LogFile      string `envconfig:"LOG_FILE"`
	LogFileMaxMB int    `envconfig:"LOG_FILE_MAX_MB" default:"100"`

	// Protocol versions
	ManifestPath      string `envconfig:"MANIFEST_PATH" default:"versions.yaml"`
	ProtocolRoot      string `envconfig:"PROTOCOL_ROOT" default:"devtools-protocol"`
	UpstreamBaseURL   string `envconfig:"UPSTREAM_BASE_URL" default:"https://chromedevtools.github.io/devtools-protocol"`
	DocumentCacheSize int    `envconfig:"DOCUMENT_CACHE_SIZE" default:"8"`

	// Implementation index. Empty keeps indexes file-backed only.
	IndexDBPath    string `envconfig:"INDEX_DB_PATH"`
	ScanExtensions string `envconfig:"SCAN_EXTENSIONS" default:".cpp,.h"`

	// GitHub (optional; anonymous access works for public repos)
	GitHubToken  string `envconfig:"GITHUB_TOKEN"`
	GitHubAPIURL string `envconfig:"GITHUB_API_URL"`

	// Static generation
	OutputDir       string `envconfig:"OUTPUT_DIR" default:"public"`
	GenerateWorkers int    `envconfig:"GENERATE_WORKERS" default:"4"`
}

// IsDevelopment reports whether human-readable console logging is wanted.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// IndexDBEnabled returns true if a SQLite index store is configured.
func (c *Config) IndexDBEnabled() bool {
	return c.IndexDBPath != ""
}

// ScanExtensionList returns the parsed source extensions, each with a leading dot.
func (c *Config) ScanExtensionList() []string {
	if c.ScanExtensions == "" {
		return nil
	}
	parts := strings.Split(c.ScanExtensions, ",")
	exts := make([]string, 0, len(parts))
	for _, ext := range parts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	root := strings.Trim(c.ProtocolRoot, "/")
	if root == "" || strings.Contains(root, "/") {
		return fmt.Errorf("%w: PROTOCOL_ROOT must be a single path segment, got %q", perrors.ErrInvalidInput, c.ProtocolRoot)
	}
	c.ProtocolRoot = root
	if c.DocumentCacheSize < 1 {
		return fmt.Errorf("%w: DOCUMENT_CACHE_SIZE must be positive, got %d", perrors.ErrInvalidInput, c.DocumentCacheSize)
	}
	if c.GenerateWorkers < 1 {
		return fmt.Errorf("%w: GENERATE_WORKERS must be positive, got %d", perrors.ErrInvalidInput, c.GenerateWorkers)
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadWithPrefix("")
}

// LoadWithPrefix reads configuration with a prefix.
func LoadWithPrefix(prefix string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config with prefix %s: %w", prefix, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}
