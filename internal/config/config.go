package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "vegancheck"

	// DefaultEndpoint is the hosted classifier.
	DefaultEndpoint = "https://api.veganconfirmed.com"

	// DefaultClassifierTimeout bounds one classifier round trip.
	DefaultClassifierTimeout = 60 * time.Second

	// DefaultFetchTimeout bounds one page download.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultUserAgent identifies vegancheck in HTTP requests.
	DefaultUserAgent = "vegancheck (+https://github.com/nao1215/vegancheck)"

	// DefaultMaxBodySize limits how much of a page or classifier response is read.
	DefaultMaxBodySize = 10 << 20

	// DefaultCacheTTL is how long an analysis stays fresh.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultHistoryLimit is the number of history entries kept.
	DefaultHistoryLimit = 50

	// DefaultGateTimeout releases the click gate when no result arrives.
	DefaultGateTimeout = 10 * time.Second

	// DefaultPollInterval is how often the panel checks the cache after a
	// manual trigger.
	DefaultPollInterval = time.Second

	// DefaultPollTimeout is how long the panel waits for a manual analysis.
	DefaultPollTimeout = 30 * time.Second

	// DefaultBatchSize is the number of pages checked concurrently.
	DefaultBatchSize = 4

	// DefaultTrigger picks click when the page has purchase controls and
	// manual otherwise.
	DefaultTrigger = "auto"
)

// Config holds the settings for one vegancheck run. It is built from
// flags and the config file and passed down explicitly.
type Config struct {
	// Endpoint is the base URL of the classifier service.
	Endpoint string

	// ClassifierTimeout bounds each classifier request.
	ClassifierTimeout time.Duration

	// ClassifierHeaders are sent with every classifier request, e.g. an API key.
	ClassifierHeaders map[string]string

	// FetchTimeout bounds each page download.
	FetchTimeout time.Duration

	// ProxyAddress routes page downloads through a SOCKS5 proxy ("host:port").
	// Empty means direct connections.
	ProxyAddress string

	// UserAgent is sent with page and classifier requests.
	UserAgent string

	// MaxBodySize caps the bytes read from a page. 0 uses the default.
	MaxBodySize int64

	// CacheTTL is the lifetime of a cached analysis.
	CacheTTL time.Duration

	// HistoryLimit is the maximum number of history entries kept.
	HistoryLimit int

	// GateTimeout releases the click gate after this long.
	GateTimeout time.Duration

	// PollInterval and PollTimeout drive the panel's wait after a manual trigger.
	PollInterval time.Duration
	PollTimeout  time.Duration

	// BatchSize is the number of pages checked concurrently.
	BatchSize int

	// Trigger is "auto", "click" or "manual".
	Trigger string

	// PageLogs enables the page-context debug log.
	PageLogs bool

	// Verbose enables debug logging for the CLI itself.
	Verbose bool

	// Metrics dumps the Prometheus counters after the run.
	Metrics bool

	// ConfigFilePath is the path given with --config, or "".
	ConfigFilePath string

	// SiteConfigs is the loaded config file. Never nil after the CLI builds
	// the config.
	SiteConfigs *File

	// JSONReport and MarkdownReport pick the output format. Both false
	// selects plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile redirects the report to a file.
	ReportFile string

	// Targets are page URLs or local HTML files.
	Targets []string

	// DBDir is where the SQLite database lives.
	DBDir string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Endpoint:          DefaultEndpoint,
		ClassifierTimeout: DefaultClassifierTimeout,
		FetchTimeout:      DefaultFetchTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		CacheTTL:          DefaultCacheTTL,
		HistoryLimit:      DefaultHistoryLimit,
		GateTimeout:       DefaultGateTimeout,
		PollInterval:      DefaultPollInterval,
		PollTimeout:       DefaultPollTimeout,
		BatchSize:         DefaultBatchSize,
		Trigger:           DefaultTrigger,
		DBDir:             XDGDataDir(),
		SiteConfigs:       &File{Sites: make(map[string]SiteConfig)},
	}
}

// ApplyFile copies the global settings of a config file into c.
// Empty file values leave c unchanged.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.SiteConfigs = f

	if f.Endpoint != "" {
		c.Endpoint = f.Endpoint
	}
	if len(f.APIHeaders) > 0 {
		c.ClassifierHeaders = f.APIHeaders
	}
	if f.ProxyAddress != "" {
		c.ProxyAddress = f.ProxyAddress
	}
	if f.Cache.TTL > 0 {
		c.CacheTTL = f.Cache.TTL
	}
	if f.Cache.HistoryLimit > 0 {
		c.HistoryLimit = f.Cache.HistoryLimit
	}
}

// XDGDataDir returns the XDG data directory for vegancheck.
// On Linux: ~/.local/share/vegancheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for vegancheck.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate returns the first invalid setting it finds.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return c.ValidateSettings()
}

// ValidateSettings is Validate without the target check, for commands
// that do not analyze pages.
func (c *Config) ValidateSettings() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}

	if c.ClassifierTimeout <= 0 || c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.Trigger {
	case "auto", "click", "manual":
	default:
		return ErrInvalidTrigger
	}

	if c.CacheTTL <= 0 {
		return ErrInvalidCacheTTL
	}

	if c.HistoryLimit <= 0 {
		return ErrInvalidHistoryLimit
	}

	if c.GateTimeout <= 0 {
		return ErrInvalidGateTimeout
	}

	if c.PollInterval <= 0 || c.PollInterval > c.PollTimeout {
		return ErrInvalidPollInterval
	}

	return nil
}
