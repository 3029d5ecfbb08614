package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pohlang/plhub/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "plhub.json"

	// DefaultPort is the default development server port.
	DefaultPort = 8765

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultDebounce is the default quiet window for change coalescing.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultPollInterval is the polling period when native file
	// notifications are unavailable.
	DefaultPollInterval = time.Second

	// DefaultCachePath is the build cache location relative to the
	// project root.
	DefaultCachePath = ".plhub/cache/build_cache.json"
)

// DefaultExclude contains default patterns excluded from watching.
var DefaultExclude = []string{
	".git",
	".plhub",
	"node_modules",
	"build",
	"dist",
	"*.pbc",
	"*.tmp",
	"*.swp",
	"*~",
}

// Config represents the complete plhub.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Watch contains file watching configuration.
	Watch WatchConfig `json:"watch,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Build contains build configuration.
	Build BuildConfig `json:"build,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// WatchConfig contains file watching settings.
type WatchConfig struct {
	// Roots are the directories to watch, relative to the project root.
	Roots []string `json:"roots,omitempty"`

	// Include are glob patterns for files to watch.
	Include []string `json:"include,omitempty"`

	// Exclude are glob patterns to skip.
	Exclude []string `json:"exclude,omitempty"`

	// DebounceMs is the quiet window in milliseconds before a batch of
	// changes is emitted.
	DebounceMs int `json:"debounceMs,omitempty"`

	// Poll forces the polling backend even when native notifications
	// are available.
	Poll bool `json:"poll,omitempty"`

	// PollIntervalMs is the polling period in milliseconds.
	PollIntervalMs int `json:"pollIntervalMs,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// HandshakeTimeoutMs is how long a client may take to send Hello.
	HandshakeTimeoutMs int `json:"handshakeTimeoutMs,omitempty"`

	// AckTimeoutMs is how long to wait for a reload acknowledgement
	// before marking a session degraded.
	AckTimeoutMs int `json:"ackTimeoutMs,omitempty"`
}

// BuildConfig contains build settings.
type BuildConfig struct {
	// CachePath is where the build cache is persisted, relative to the
	// project root.
	CachePath string `json:"cachePath,omitempty"`

	// Compiler overrides the path to the pohc binary.
	Compiler string `json:"compiler,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from plhub.json in the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E301").
				WithDetail("No plhub.json found in " + filepath.Dir(path))
		}
		return nil, errors.New("E302").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E302").
			WithDetail("Failed to parse plhub.json: " + err.Error()).
			WithSuggestion("Check that plhub.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E302").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E302").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if len(c.Watch.Roots) == 0 {
		c.Watch.Roots = []string{"src"}
	}
	if len(c.Watch.Include) == 0 {
		c.Watch.Include = []string{"*.poh"}
	}
	if len(c.Watch.Exclude) == 0 {
		c.Watch.Exclude = append([]string(nil), DefaultExclude...)
	}
	if c.Watch.DebounceMs == 0 {
		c.Watch.DebounceMs = int(DefaultDebounce / time.Millisecond)
	}
	if c.Watch.PollIntervalMs == 0 {
		c.Watch.PollIntervalMs = int(DefaultPollInterval / time.Millisecond)
	}

	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.HandshakeTimeoutMs == 0 {
		c.Dev.HandshakeTimeoutMs = 5000
	}
	if c.Dev.AckTimeoutMs == 0 {
		c.Dev.AckTimeoutMs = 10000
	}

	if c.Build.CachePath == "" {
		c.Build.CachePath = DefaultCachePath
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E302").
			WithDetail("Port must be between 0 and 65535")
	}
	if c.Watch.DebounceMs < 0 {
		return errors.New("E302").
			WithDetail("watch.debounceMs must not be negative")
	}
	for _, pattern := range append(append([]string(nil), c.Watch.Include...), c.Watch.Exclude...) {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return errors.New("E003").
				WithDetail("Invalid glob pattern: " + pattern)
		}
	}
	return nil
}

// Debounce returns the quiet window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// PollInterval returns the polling period as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Watch.PollIntervalMs) * time.Millisecond
}

// HandshakeTimeout returns the client handshake window as a duration.
func (c *Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.Dev.HandshakeTimeoutMs) * time.Millisecond
}

// AckTimeout returns the reload acknowledgement window as a duration.
func (c *Config) AckTimeout() time.Duration {
	return time.Duration(c.Dev.AckTimeoutMs) * time.Millisecond
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// WatchRoots returns the absolute paths of the watch roots.
func (c *Config) WatchRoots() []string {
	roots := make([]string, 0, len(c.Watch.Roots))
	for _, root := range c.Watch.Roots {
		roots = append(roots, c.resolve(root))
	}
	return roots
}

// CachePath returns the absolute path to the build cache file.
func (c *Config) CachePath() string {
	return c.resolve(c.Build.CachePath)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists reports whether a plhub.json is present in the directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing plhub.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E301").
				WithDetail("No plhub.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
