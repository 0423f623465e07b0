package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Account.Expected)
	assert.Equal(t, "VCC", cfg.Parser.InvoicePrefix)
	assert.False(t, cfg.Parser.Debug)
	assert.Equal(t, FormatXLSX, cfg.Output.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 32, cfg.Server.BodyLimitMB)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PAYADVICE_ACCOUNT_EXPECTED", "001234567890")
	t.Setenv("PAYADVICE_PARSER_INVOICE_PREFIX", "ACME")
	t.Setenv("PAYADVICE_PARSER_DEBUG", "true")
	t.Setenv("PAYADVICE_OUTPUT_FORMAT", "CSV")
	t.Setenv("PAYADVICE_SERVER_PORT", "9090")
	t.Setenv("PORT", "7000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "001234567890", cfg.Account.Expected)
	assert.Equal(t, FormatCSV, cfg.Output.Format)
	assert.Equal(t, 9090, cfg.Server.Port, "own variable wins over PORT")

	opts := cfg.ParserOptions()
	assert.Equal(t, "ACME", opts.InvoicePrefix)
	assert.Equal(t, "001234567890", opts.ExpectedAccount)
	assert.True(t, opts.Debug)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "payadvice.yaml")
	content := "account:\n  expected: \"42\"\nlog:\n  level: debug\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.Account.Expected)

	lc := cfg.GetLoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "stderr", lc.Output)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PORT", "")

	t.Run("format", func(t *testing.T) {
		t.Setenv("PAYADVICE_OUTPUT_FORMAT", "pdf")
		_, err := Load("")
		assert.ErrorContains(t, err, "output.format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
