package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/fraudlens-cli/internal/report"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Ingestion
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows"`
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Pipeline
	BucketSeconds float64 `mapstructure:"bucket_seconds" yaml:"bucket_seconds"`
	TopFeatures   int     `mapstructure:"top_features" yaml:"top_features"`
	Parallel      bool    `mapstructure:"parallel" yaml:"parallel"`

	// Output
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// HTTP server
	ServerAddr  string `mapstructure:"server_addr" yaml:"server_addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		BucketSeconds: 3600,
		TopFeatures:   10,
		Parallel:      true,
		OutputFormat:  "markdown",
		ServerAddr:    ":8080",
		MaxUploadMB:   64,
		LogLevel:      "info",
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fraudlens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.fraudlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is loaded first and never overrides variables already set.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FRAUDLENS")
	v.AutomaticEnv()

	v.SetDefault("max_rows", 0)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("bucket_seconds", 3600)
	v.SetDefault("top_features", 10)
	v.SetDefault("parallel", true)
	v.SetDefault("output_format", "markdown")
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("max_upload_mb", 64)
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set validates and assigns one key, as used by `config set`.
func (c *Global) Set(key, val string) error {
	switch key {
	case "max_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for max_rows: %v", val)
		}
		c.MaxRows = i
	case "delimiter":
		if _, err := ParseDelimiter(val); err != nil {
			return err
		}
		c.Delimiter = val
	case "decimal_separator":
		if _, err := ParseDecimal(val); err != nil {
			return err
		}
		c.DecimalSeparator = val
	case "thousands_separator":
		if _, err := ParseThousands(val); err != nil {
			return err
		}
		c.ThousandsSeparator = val
	case "bucket_seconds":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid positive number for bucket_seconds: %v", val)
		}
		c.BucketSeconds = f
	case "top_features":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for top_features: %v", val)
		}
		c.TopFeatures = i
	case "parallel":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for parallel: %w", err)
		}
		c.Parallel = b
	case "output_format":
		f, err := report.ParseFormat(val)
		if err != nil {
			return fmt.Errorf("invalid output_format: %w", err)
		}
		c.OutputFormat = string(f)
	case "server_addr":
		c.ServerAddr = val
	case "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for max_upload_mb: %v", val)
		}
		c.MaxUploadMB = i
	case "log_level":
		switch strings.ToLower(val) {
		case "trace", "debug", "info", "warn", "warning", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// ParseDelimiter maps a delimiter flag value to a rune; "" means auto.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %s (use ','|';'|'tab')", s)
}

// ParseDecimal maps a decimal separator name to a rune; "" means '.'.
func ParseDecimal(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case "":
		return 0, nil
	}
	return 0, fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma')", s)
}

// ParseThousands maps a thousands separator name to a rune; "" means none.
func ParseThousands(s string) (rune, error) {
	switch strings.ToLower(s) {
	case ",":
		return ',', nil
	case ".":
		return '.', nil
	case "space", " ":
		return ' ', nil
	case "":
		return 0, nil
	}
	return 0, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", s)
}
