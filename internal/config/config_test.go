package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mrzscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine: ollama
languages: [eng]
ocr_timeout: 90s
strategy: deskew
workers: 8
century_pivot: 40
`), 0644))

	t.Setenv("MRZSCAN_WORKERS", "2")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Engine)
	assert.Equal(t, []string{"eng"}, cfg.Languages)
	assert.Equal(t, 90*time.Second, cfg.OCRTimeout)
	assert.Equal(t, "deskew", cfg.Strategy)
	assert.Equal(t, 40, cfg.CenturyPivot)
	assert.Equal(t, 2, cfg.Workers, "environment overrides the file")
	assert.Equal(t, 300, cfg.PDFDPI, "unset keys keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(env(map[string]string{
		"MRZSCAN_LANGUAGES":    "ocrb, eng+fra ,",
		"MRZSCAN_KEEP_SCRATCH": "true",
		"TESSDATA_PREFIX":      "/data",
		"OLLAMA_HOST":          "http://gpu:11434",
		"GEMINI_API_KEY":       "g-key",
		"MRZSCAN_OCR_TIMEOUT":  "5s",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"ocrb", "eng+fra"}, cfg.Languages)
	assert.True(t, cfg.KeepScratch)
	assert.Equal(t, "/data", cfg.TessdataPrefix)
	assert.Equal(t, "http://gpu:11434", cfg.OllamaURL)
	assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	assert.Equal(t, 5*time.Second, cfg.OCRTimeout)
}

func TestApplyEnvPrefersOwnPrefix(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.applyEnv(env(map[string]string{
		"MRZSCAN_TESSDATA_PREFIX": "/mine",
		"TESSDATA_PREFIX":         "/system",
	})))
	assert.Equal(t, "/mine", cfg.TessdataPrefix)
}

func TestApplyEnvReportsBadValues(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(env(map[string]string{
		"MRZSCAN_WORKERS":      "many",
		"MRZSCAN_OCR_TIMEOUT":  "soon",
		"MRZSCAN_KEEP_SCRATCH": "perhaps",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MRZSCAN_WORKERS")
	assert.Contains(t, err.Error(), "MRZSCAN_OCR_TIMEOUT")
	assert.Contains(t, err.Error(), "MRZSCAN_KEEP_SCRATCH")
	assert.Equal(t, 4, cfg.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown engine", func(c *Config) { c.Engine = "abbyy" }, "unknown engine"},
		{"unknown strategy", func(c *Config) { c.Strategy = "magic" }, "magic"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"pivot too large", func(c *Config) { c.CenturyPivot = 100 }, "century_pivot"},
		{"zero page", func(c *Config) { c.PDFPage = 0 }, "pdf_page"},
		{"timeout", func(c *Config) { c.OCRTimeout = 0 }, "ocr_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExpiryWarning(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 182*24*time.Hour, cfg.ExpiryWarning())
	cfg.ExpiryWarningDays = 0
	assert.Negative(t, cfg.ExpiryWarning())
}
