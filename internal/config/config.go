package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/insightdelivered/payment-advice-converter/internal/logger"
	"github.com/insightdelivered/payment-advice-converter/internal/parser"
)

// EnvPrefix is prepended to every environment override, e.g. PAYADVICE_ACCOUNT_EXPECTED.
const EnvPrefix = "PAYADVICE"

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Config holds all application configuration.
type Config struct {
	Account AccountConfig `mapstructure:"account"`
	Parser  ParserConfig  `mapstructure:"parser"`
	Output  OutputConfig  `mapstructure:"output"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// AccountConfig holds the account gatekeeper setting. An empty Expected
// disables the check.
type AccountConfig struct {
	Expected string `mapstructure:"expected"`
}

// ParserConfig holds scanner settings.
type ParserConfig struct {
	InvoicePrefix string `mapstructure:"invoice_prefix"`
	Debug         bool   `mapstructure:"debug"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	BodyLimitMB int    `mapstructure:"body_limit_mb"`
	StaticDir   string `mapstructure:"static_dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
	Output     string `mapstructure:"output"`
}

// Load reads configuration from an optional file at path and from
// PAYADVICE_-prefixed environment variables, which take precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Hosting platforms set PORT; honor it unless our own variable is set.
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"_SERVER_PORT") == "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("account.expected", "")

	v.SetDefault("parser.invoice_prefix", parser.DefaultInvoicePrefix)
	v.SetDefault("parser.debug", false)

	v.SetDefault("output.format", FormatXLSX)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_limit_mb", 32)
	v.SetDefault("server.static_dir", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.time_format", "2006-01-02T15:04:05Z07:00")
	v.SetDefault("log.output", "stderr")
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	switch c.Output.Format {
	case FormatXLSX, FormatCSV:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatXLSX, FormatCSV, c.Output.Format)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("server.body_limit_mb must be positive, got %d", c.Server.BodyLimitMB)
	}
	return nil
}

// ParserOptions maps the config onto parser options.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		InvoicePrefix:   c.Parser.InvoicePrefix,
		ExpectedAccount: strings.TrimSpace(c.Account.Expected),
		Debug:           c.Parser.Debug,
	}
}

// GetLoggerConfig converts the config to a logger configuration.
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		TimeFormat: c.Log.TimeFormat,
		Output:     c.Log.Output,
	}
}
