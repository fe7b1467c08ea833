package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultLogLevel     = "info"
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB
	DefaultOutputPath   = "proforma_invoices.zip"
	DefaultMatchColumn  = "BX-M-N741"
	DefaultAWBPattern   = `716-\d{8}`
	DefaultSenderPrefix = "SMART-TRANS LOGISTIC CHENGDU LTD"

	// EnvPrefix is prepended to every environment override, e.g. AWB_PROFORMA_PASSWORD.
	EnvPrefix = "AWB_PROFORMA"

	// ReceiverSeparator splits receiver lines given as one string.
	// File lists given as one string use os.PathListSeparator.
	ReceiverSeparator = "|"
)

// DefaultReceiver is the consignee block printed on every invoice.
var DefaultReceiver = []string{
	"BOX NOW SA - Tatoiou 96, Acharne 13672, Athens Greece.",
	"Local Warehouse: SkyServe (Supervision Warehouse), Spata, 19004",
	"Customs code GR000304",
}

// ErrVersionRequested is returned when --version appears on the command line.
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for a single proforma run
type Config struct {
	// Inputs
	InputDir      string
	PDFFiles      []string
	ManifestFiles []string

	// Output
	OutputPath string

	// Matching and extraction
	ManifestPassword string
	MatchColumn      string
	AWBPattern       string
	SenderPrefix     string
	Receiver         []string

	// Application configuration
	ConfigFile  string
	Version     string
	LogLevel    string
	MaxFileSize int64 // Maximum input file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		InputDir:     currentDir,
		OutputPath:   DefaultOutputPath,
		MatchColumn:  DefaultMatchColumn,
		AWBPattern:   DefaultAWBPattern,
		SenderPrefix: DefaultSenderPrefix,
		Receiver:     append([]string(nil), DefaultReceiver...),
		Version:      "1.0.0",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadFromFlags parses the process command line and environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[0], os.Args[1:])
}

// Load parses args against a fresh flag set, layering flags over environment,
// an optional config file and defaults.
func Load(program string, args []string) (*Config, error) {
	if versionRequested(args) {
		return nil, ErrVersionRequested
	}

	cfg := DefaultConfig()
	v := viper.New()
	fs := pflag.NewFlagSet(program, pflag.ContinueOnError)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	setupUsageMessage(fs, program)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	populateConfigFromViper(v, cfg)

	// Positional arguments are sorted into PDFs and manifests by extension
	for _, arg := range fs.Args() {
		switch strings.ToLower(filepath.Ext(arg)) {
		case ".pdf":
			cfg.PDFFiles = append(cfg.PDFFiles, arg)
		case ".xlsx", ".xlsm":
			cfg.ManifestFiles = append(cfg.ManifestFiles, arg)
		default:
			return nil, fmt.Errorf("unsupported input file: %s", arg)
		}
	}

	if cfg.InputDir != "" {
		if expandedPath, err := filepath.Abs(cfg.InputDir); err == nil {
			cfg.InputDir = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("dir", cfg.InputDir)
	v.SetDefault("out", cfg.OutputPath)
	v.SetDefault("match-column", cfg.MatchColumn)
	v.SetDefault("awb-pattern", cfg.AWBPattern)
	v.SetDefault("sender", cfg.SenderPrefix)
	v.SetDefault("receiver", cfg.Receiver)
	v.SetDefault("log-level", cfg.LogLevel)
	v.SetDefault("max-file-size", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("config", "", "Optional config file (yaml, toml or json)")
	fs.String("dir", cfg.InputDir, "Directory scanned for AWB PDFs and manifests when none are given")
	fs.StringArray("pdf", nil, "AWB PDF file (repeatable)")
	fs.StringArray("manifest", nil, "Manifest spreadsheet (repeatable)")
	fs.StringP("out", "o", cfg.OutputPath, "Output zip archive path")
	fs.String("password", "", "Password for encrypted manifests")
	fs.String("match-column", cfg.MatchColumn, "Manifest column holding the master waybill number")
	fs.String("awb-pattern", cfg.AWBPattern, "Regular expression matching waybill numbers")
	fs.String("sender", cfg.SenderPrefix, "Shipper name that prefixes the sender block on the AWB")
	fs.StringArray("receiver", cfg.Receiver, "Receiver block line printed on invoices (repeatable)")
	fs.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("max-file-size", cfg.MaxFileSize, "Maximum input file size in bytes")
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet, program string) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", program)
		fmt.Fprintf(os.Stderr, "\nAWB Proforma - build proforma invoices from air waybills and manifests\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/inputs                      # scan a directory\n", program)
		fmt.Fprintf(os.Stderr, "  %s awb.pdf manifest.xlsx -o out.zip           # explicit files\n", program)
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_DIR            Input directory\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_OUT            Output archive\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_PASSWORD       Manifest password\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_MATCH_COLUMN   Manifest match column\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LOG_LEVEL      Log level\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_PDF            AWB PDFs, separated by %q\n", EnvPrefix, os.PathListSeparator)
		fmt.Fprintf(os.Stderr, "  %s_MANIFEST       Manifests, separated by %q\n", EnvPrefix, os.PathListSeparator)
		fmt.Fprintf(os.Stderr, "  %s_RECEIVER       Receiver lines, separated by %q\n", EnvPrefix, ReceiverSeparator)
	}
}

func versionRequested(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.ConfigFile = v.GetString("config")
	cfg.InputDir = v.GetString("dir")
	cfg.PDFFiles = stringList(v, "pdf", string(os.PathListSeparator))
	cfg.ManifestFiles = stringList(v, "manifest", string(os.PathListSeparator))
	cfg.OutputPath = v.GetString("out")
	cfg.ManifestPassword = v.GetString("password")
	cfg.MatchColumn = v.GetString("match-column")
	cfg.AWBPattern = v.GetString("awb-pattern")
	cfg.SenderPrefix = v.GetString("sender")
	cfg.Receiver = stringList(v, "receiver", ReceiverSeparator)
	cfg.LogLevel = v.GetString("log-level")
	cfg.MaxFileSize = v.GetInt64("max-file-size")
}

// stringList reads a list setting. Flags, defaults and config-file arrays
// arrive as slices; an environment variable or a scalar config value arrives
// as one string and is split on sep.
func stringList(v *viper.Viper, key, sep string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	var items []string
	for _, item := range strings.Split(raw, sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OutputPath == "" {
		return errors.New("output path cannot be empty")
	}

	if strings.TrimSpace(c.MatchColumn) == "" {
		return errors.New("match column cannot be empty")
	}

	if c.AWBPattern == "" {
		return errors.New("AWB pattern cannot be empty")
	}
	if _, err := regexp.Compile(c.AWBPattern); err != nil {
		return fmt.Errorf("invalid AWB pattern %q: %w", c.AWBPattern, err)
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

	if len(c.PDFFiles) == 0 || len(c.ManifestFiles) == 0 {
		info, err := os.Stat(c.InputDir)
		if err != nil {
			return fmt.Errorf("cannot access input directory %s: %w", c.InputDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("input path is not a directory: %s", c.InputDir)
		}
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration. The
// manifest password is masked.
func (c *Config) String() string {
	password := ""
	if c.ManifestPassword != "" {
		password = "****"
	}
	return fmt.Sprintf("Config{InputDir: %s, PDFs: %d, Manifests: %d, Output: %s, MatchColumn: %s, "+
		"AWBPattern: %s, Password: %s, LogLevel: %s, MaxFileSize: %d}",
		c.InputDir, len(c.PDFFiles), len(c.ManifestFiles), c.OutputPath, c.MatchColumn,
		c.AWBPattern, password, c.LogLevel, c.MaxFileSize)
}
