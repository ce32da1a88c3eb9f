package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lehigh-university-libraries/ordersheet/internal/catalog"
	"github.com/lehigh-university-libraries/ordersheet/internal/export"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. ORDERSHEET_SRU_URL for sru.url.
const EnvPrefix = "ORDERSHEET"

// DefaultFile is read when present and no --config flag is given.
const DefaultFile = "ordersheet.yaml"

// Config keys
const (
	KeyMappingsDir       = "mappings.dir"
	KeyOutputDir         = "output.dir"
	KeyOutputFormat      = "output.format"
	KeySRUURL            = "sru.url"
	KeySRUTimeout        = "sru.timeout"
	KeySRUInterval       = "sru.interval"
	KeySRUMaxRecords     = "sru.max_records"
	KeyDuplicatesEnabled = "duplicates.enabled"
	KeyCatalogingYear    = "cataloging.year"
	KeyReportPath        = "report.path"
)

// SRU holds the union catalog connection settings
type SRU struct {
	URL        string
	Timeout    time.Duration
	Interval   time.Duration
	MaxRecords int
}

// Config is the resolved run configuration
type Config struct {
	MappingsDir       string
	OutputDir         string
	OutputFormat      export.Format
	SRU               SRU
	DuplicatesEnabled bool
	CatalogingYear    int
	ReportPath        string
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMappingsDir, "./Mapping")
	v.SetDefault(KeyOutputDir, "./Output")
	v.SetDefault(KeyOutputFormat, string(export.FormatXLSX))
	v.SetDefault(KeySRUURL, catalog.DefaultBaseURL)
	v.SetDefault(KeySRUTimeout, catalog.DefaultTimeout)
	v.SetDefault(KeySRUInterval, catalog.DefaultInterval)
	v.SetDefault(KeySRUMaxRecords, catalog.DefaultMaxRecords)
	v.SetDefault(KeyDuplicatesEnabled, true)
	v.SetDefault(KeyCatalogingYear, 0)
	v.SetDefault(KeyReportPath, "")
}

// New creates a viper instance layered as defaults < config file < environment.
// A missing default config file is not an error; a missing explicit one is.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := configFile != ""
	if !explicit {
		configFile = DefaultFile
	}
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			slog.Debug("No config file, using defaults", "file", configFile)
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	slog.Debug("Loaded config file", "file", v.ConfigFileUsed())
	return v, nil
}

// Load resolves the configuration from viper and validates it
func Load(v *viper.Viper) (*Config, error) {
	format, err := export.ParseFormat(v.GetString(KeyOutputFormat))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MappingsDir:  v.GetString(KeyMappingsDir),
		OutputDir:    v.GetString(KeyOutputDir),
		OutputFormat: format,
		SRU: SRU{
			URL:        strings.TrimSpace(v.GetString(KeySRUURL)),
			Timeout:    v.GetDuration(KeySRUTimeout),
			Interval:   v.GetDuration(KeySRUInterval),
			MaxRecords: v.GetInt(KeySRUMaxRecords),
		},
		DuplicatesEnabled: v.GetBool(KeyDuplicatesEnabled),
		CatalogingYear:    v.GetInt(KeyCatalogingYear),
		ReportPath:        v.GetString(KeyReportPath),
	}

	if cfg.CatalogingYear == 0 {
		cfg.CatalogingYear = time.Now().Year()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late in a run
func (c *Config) Validate() error {
	var errs []error
	if c.DuplicatesEnabled {
		if c.SRU.URL == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", KeySRUURL))
		}
		if c.SRU.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", KeySRUTimeout))
		}
		if c.SRU.Interval <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", KeySRUInterval))
		}
		if c.SRU.MaxRecords <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", KeySRUMaxRecords))
		}
	}
	if c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyOutputDir))
	}
	if c.CatalogingYear < 1000 || c.CatalogingYear > 9999 {
		errs = append(errs, fmt.Errorf("%s must be a four digit year, got %d", KeyCatalogingYear, c.CatalogingYear))
	}
	return errors.Join(errs...)
}

// NewCatalogClient creates the SRU client described by the config
func (c *Config) NewCatalogClient() *catalog.Client {
	return catalog.NewClient(c.SRU.URL,
		catalog.WithTimeout(c.SRU.Timeout),
		catalog.WithInterval(c.SRU.Interval),
		catalog.WithMaxRecords(c.SRU.MaxRecords),
	)
}
