package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gnana997/importi/pkg/extractor"
	"github.com/gnana997/importi/pkg/indexer"
	"github.com/gnana997/importi/pkg/project"
	"github.com/gnana997/importi/pkg/report"
	"github.com/gnana997/importi/pkg/usage"
	"github.com/gnana997/importi/pkg/util"
)

const (
	// configName is looked up as .importi.yaml in the project folder.
	configName = ".importi"
	configType = "yaml"
	envPrefix  = "IMPORTI"
)

// Config holds the contents of .importi.yaml merged with IMPORTI_* env vars
// and command-line flags.
type Config struct {
	MatchMode     string         `mapstructure:"match_mode"`
	ParseMode     string         `mapstructure:"parse_mode"`
	Format        string         `mapstructure:"format"`
	Summary       bool           `mapstructure:"summary"`
	Exclude       []string       `mapstructure:"exclude"`
	ExportMarkers []MarkerConfig `mapstructure:"export_markers"`
	Workers       int            `mapstructure:"workers"`
	Log           LogConfig      `mapstructure:"log"`
	Watch         WatchConfig    `mapstructure:"watch"`
	Serve         ServeConfig    `mapstructure:"serve"`
}

// MarkerConfig is one configured export marker.
type MarkerConfig struct {
	Token string `mapstructure:"token"`
	Kind  string `mapstructure:"kind"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMs int      `mapstructure:"debounce_ms"`
	Ignore     []string `mapstructure:"ignore"`
}

// ServeConfig controls the MCP server.
type ServeConfig struct {
	LogFile string `mapstructure:"log_file"`
	Project string `mapstructure:"project"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"match-mode": "match_mode",
	"parse-mode": "parse_mode",
	"format":     "format",
	"summary":    "summary",
	"exclude":    "exclude",
	"workers":    "workers",
	"log-level":  "log.level",
	"log-format": "log.format",
	"debounce":   "watch.debounce_ms",
	"log-file":   "serve.log_file",
	"project":    "serve.project",
}

// loadConfig builds the effective configuration.
//
// Precedence: changed flags, IMPORTI_* env vars, the config file, defaults.
// The file is configPath when set, otherwise .importi.yaml in searchDir.
// A missing default file is not an error.
func loadConfig(cmd *cobra.Command, searchDir, configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(searchDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("match_mode", string(usage.MatchSubstring))
	v.SetDefault("parse_mode", string(extractor.ParseModeLine))
	v.SetDefault("format", string(report.FormatText))
	v.SetDefault("summary", false)
	v.SetDefault("exclude", []string{})
	v.SetDefault("export_markers", []MarkerConfig{})
	v.SetDefault("workers", 0)
	v.SetDefault("log.level", string(util.LevelWarn))
	v.SetDefault("log.format", string(util.FormatText))
	v.SetDefault("watch.debounce_ms", indexer.DefaultWatchOptions().DebounceMs)
	v.SetDefault("watch.ignore", []string{})
	v.SetDefault("serve.log_file", "")
	v.SetDefault("serve.project", "")
}

// Validate rejects unknown mode and format names.
func (c *Config) Validate() error {
	if _, err := usage.ParseMatchMode(c.MatchMode); err != nil {
		return err
	}
	if _, err := extractor.ParseParseMode(c.ParseMode); err != nil {
		return err
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := util.ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := util.ParseLogFormat(c.Log.Format); err != nil {
		return err
	}
	for _, m := range c.ExportMarkers {
		if strings.TrimSpace(m.Token) == "" {
			return errors.New("export marker token must not be empty")
		}
		switch extractor.DeclarationKind(m.Kind) {
		case extractor.KindInterface, extractor.KindTypeAlias, "":
		default:
			return fmt.Errorf("unknown export marker kind %q", m.Kind)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// ScanOptions converts the config to scan options. Validate must have
// passed.
func (c *Config) ScanOptions() project.Options {
	opts := project.Options{
		Exclude: c.Exclude,
		Workers: c.Workers,
	}
	opts.MatchMode, _ = usage.ParseMatchMode(c.MatchMode)
	opts.ParseMode, _ = extractor.ParseParseMode(c.ParseMode)

	for _, m := range c.ExportMarkers {
		kind := extractor.DeclarationKind(m.Kind)
		if kind == "" {
			kind = extractor.KindTypeAlias
		}
		opts.ExportMarkers = append(opts.ExportMarkers, extractor.ExportMarker{Token: m.Token, Kind: kind})
	}
	return opts
}

// ReportFormat returns the configured report format.
func (c *Config) ReportFormat() report.Format {
	f, _ := report.ParseFormat(c.Format)
	return f
}

// WatchOptions returns the watcher settings: the defaults plus configured
// ignore patterns.
func (c *Config) WatchOptions() indexer.WatchOptions {
	opts := indexer.DefaultWatchOptions()
	if c.Watch.DebounceMs > 0 {
		opts.DebounceMs = c.Watch.DebounceMs
	}
	opts.IgnorePatterns = append(opts.IgnorePatterns, c.Watch.Ignore...)
	return opts
}

// LoggerConfig returns the slog settings, writing to w.
func (c *Config) LoggerConfig(w io.Writer) util.LoggerConfig {
	cfg := util.DefaultLoggerConfig()
	cfg.Level, _ = util.ParseLogLevel(c.Log.Level)
	cfg.Format, _ = util.ParseLogFormat(c.Log.Format)
	cfg.Output = w
	return cfg
}

// configSearchDir returns the directory searched for .importi.yaml.
func configSearchDir(projectDir string) string {
	if projectDir == "" {
		return "."
	}
	return filepath.Clean(projectDir)
}
