package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultWorkers is the number of probes in flight at once.
	DefaultWorkers = 10

	// DefaultTimeout is the per-probe budget.
	DefaultTimeout = 10 * time.Second

	// DefaultDeadline disables the whole-batch deadline.
	DefaultDeadline = time.Duration(0)

	// DefaultMaxBodySize limits the response body read per probe (5MB).
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent mimics a desktop browser. Several platforms serve a
	// different page to unknown agents, which breaks absence markers.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultVariationLimit caps the number of username variations searched.
	DefaultVariationLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "footprint"
)

// Config holds every option of a footprint run.
// It is populated from the config file and CLI flags and passed down
// explicitly; there is no global configuration.
type Config struct {
	// Workers is the maximum number of probes in flight.
	Workers int

	// Timeout is the per-probe budget, including reading the body.
	Timeout time.Duration

	// Deadline bounds the whole batch. Zero disables it.
	Deadline time.Duration

	// MaxBodySize is the maximum number of body bytes read per probe.
	MaxBodySize int64

	// UserAgent is sent with every probe.
	UserAgent string

	// Headers are added to every probe.
	Headers map[string]string

	// ProxyAddress routes probes through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes probes through it.
	// Mutually exclusive with ProxyAddress.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor daemon.
	TorStartupTimeout time.Duration

	// Categories restricts the catalog to these categories.
	Categories []string

	// CatalogFile is an extra catalog file merged into the built-in one.
	CatalogFile string

	// Variations searches generated username variations instead of a single handle.
	Variations bool

	// VariationLimit caps the number of variations searched.
	VariationLimit int

	// Verbose enables debug logging and per-result progress lines.
	Verbose bool

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ShowNotFound lists absent endpoints in the text report.
	ShowNotFound bool

	// ConfigFilePath is the explicit config file. Empty means search for .footprint.
	ConfigFilePath string

	// FileConfig holds what was loaded from the config file, if any.
	FileConfig *File

	// DBDir is the directory holding the history database.
	DBDir string

	// SaveToDB stores finished batches in the history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Workers:           DefaultWorkers,
		Timeout:           DefaultTimeout,
		Deadline:          DefaultDeadline,
		MaxBodySize:       DefaultMaxBodySize,
		UserAgent:         DefaultUserAgent,
		TorStartupTimeout: DefaultTorStartupTimeout,
		VariationLimit:    DefaultVariationLimit,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for footprint.
// On Linux: ~/.local/share/footprint
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for footprint.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Deadline < 0 {
		return ErrInvalidDeadline
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}
	if c.VariationLimit < 0 {
		return ErrInvalidVariationLimit
	}
	if c.FileConfig != nil {
		if err := c.FileConfig.Validate(); err != nil {
			return err
		}
	}
	return nil
}
