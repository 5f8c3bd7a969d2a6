// ABOUTME: Configuration loader for the exam client
// ABOUTME: Merges defaults, config.yaml, .env and environment variables

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/waynezhang680/examctl/internal/storage"
)

const (
	// DefaultAPIURL is the platform API base URL used when nothing else is set
	DefaultAPIURL = "http://localhost:8080/api/v1"
	// DefaultTimeout bounds every API request
	DefaultTimeout = 5 * time.Second
	// DefaultPageSize is the number of exams fetched per page
	DefaultPageSize = 10

	// FileName is the optional YAML config file inside the config directory
	FileName = "config.yaml"
	// EnvFile is the optional dotenv file read from the working directory
	EnvFile = ".env"
)

// Environment variable names
const (
	EnvAPIURL    = "EXAMCTL_API_URL"
	EnvTimeout   = "EXAMCTL_TIMEOUT"
	EnvPageSize  = "EXAMCTL_PAGE_SIZE"
	EnvConfigDir = "EXAMCTL_CONFIG_DIR"
)

// Config holds client settings
type Config struct {
	APIURL   string        `yaml:"api_url"`
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"`

	// ConfigDir holds config.yaml, the session file and the TUI log
	ConfigDir string `yaml:"-"`
}

// Load builds the configuration. An explicit configDir wins over EXAMCTL_CONFIG_DIR,
// which wins over the XDG default.
func Load(configDir string) (*Config, error) {
	// .env never overrides variables already present in the environment
	if _, err := os.Stat(EnvFile); err == nil {
		if err := godotenv.Load(EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", EnvFile, err)
		}
	}

	cfg := &Config{
		APIURL:    DefaultAPIURL,
		Timeout:   DefaultTimeout,
		PageSize:  DefaultPageSize,
		ConfigDir: resolveConfigDir(configDir),
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}

	cfg.APIURL = getEnv(EnvAPIURL, cfg.APIURL)
	if raw := os.Getenv(EnvTimeout); raw != "" {
		d, err := parseTimeout(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if raw := os.Getenv(EnvPageSize); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer, got %q", EnvPageSize, raw)
		}
		cfg.PageSize = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that settings are usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api url must be an absolute http(s) URL, got %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page size must be between 1 and 100, got %d", c.PageSize)
	}
	return nil
}

// FilePath returns the location of config.yaml
func (c *Config) FilePath() string {
	if c.ConfigDir == "" {
		return ""
	}
	return filepath.Join(c.ConfigDir, FileName)
}

func (c *Config) loadFile() error {
	path := c.FilePath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return nil
}

func resolveConfigDir(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return storage.DefaultConfigDir()
}

// parseTimeout accepts Go durations ("5s") or a bare number of milliseconds
func parseTimeout(raw string) (time.Duration, error) {
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return strings.TrimRight(value, "/")
	}
	return defaultValue
}
