// Package config assembles runtime settings from defaults, an optional
// YAML file and the environment. Command flags are applied last by cmd.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/mrzscan/internal/preprocess"
)

// Engines lists the recognised OCR engine names.
var Engines = []string{"tesseract", "gosseract", "gemini", "ollama", "openai"}

type Config struct {
	Engine         string        `yaml:"engine"`
	Languages      []string      `yaml:"languages"`
	TesseractPath  string        `yaml:"tesseract_path"`
	TessdataPrefix string        `yaml:"tessdata_prefix"`
	OCRTimeout     time.Duration `yaml:"ocr_timeout"`

	Strategy    string `yaml:"strategy"`
	MinSide     int    `yaml:"min_side"`
	ScratchDir  string `yaml:"scratch_dir"`
	KeepScratch bool   `yaml:"keep_scratch"`

	PDFToPPMPath string `yaml:"pdftoppm_path"`
	PDFDPI       int    `yaml:"pdf_dpi"`
	PDFPage      int    `yaml:"pdf_page"`

	CenturyPivot        int `yaml:"century_pivot"`
	ExpiryLookbackYears int `yaml:"expiry_lookback_years"`
	ExpiryWarningDays   int `yaml:"expiry_warning_days"`

	Workers int `yaml:"workers"`
	Port    int `yaml:"port"`

	GeminiAPIKey  string `yaml:"-"`
	GeminiModel   string `yaml:"gemini_model"`
	OllamaURL     string `yaml:"ollama_url"`
	OllamaModel   string `yaml:"ollama_model"`
	OpenAIAPIKey  string `yaml:"-"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Engine:              "tesseract",
		Languages:           []string{"ocrb", "eng"},
		TesseractPath:       "tesseract",
		OCRTimeout:          60 * time.Second,
		Strategy:            preprocess.MultiVariant.String(),
		MinSide:             preprocess.DefaultMinSide,
		PDFToPPMPath:        "pdftoppm",
		PDFDPI:              300,
		PDFPage:             1,
		CenturyPivot:        50,
		ExpiryLookbackYears: 50,
		ExpiryWarningDays:   182,
		Workers:             4,
		Port:                8888,
	}
}

// Load applies the YAML file at path (if any) and then the environment on
// top of Default. It does not validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	var errList []error
	num := func(dst *int, key string) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errList = append(errList, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str(&c.Engine, "MRZSCAN_ENGINE")
	if v, ok := lookup("MRZSCAN_LANGUAGES"); ok && v != "" {
		c.Languages = SplitList(v)
	}
	str(&c.TesseractPath, "MRZSCAN_TESSERACT_PATH")
	str(&c.TessdataPrefix, "MRZSCAN_TESSDATA_PREFIX", "TESSDATA_PREFIX")
	if v, ok := lookup("MRZSCAN_OCR_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errList = append(errList, fmt.Errorf("MRZSCAN_OCR_TIMEOUT: %w", err))
		} else {
			c.OCRTimeout = d
		}
	}
	str(&c.Strategy, "MRZSCAN_STRATEGY")
	num(&c.MinSide, "MRZSCAN_MIN_SIDE")
	str(&c.ScratchDir, "MRZSCAN_SCRATCH_DIR")
	if v, ok := lookup("MRZSCAN_KEEP_SCRATCH"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errList = append(errList, fmt.Errorf("MRZSCAN_KEEP_SCRATCH: %w", err))
		} else {
			c.KeepScratch = b
		}
	}
	str(&c.PDFToPPMPath, "MRZSCAN_PDFTOPPM_PATH")
	num(&c.PDFDPI, "MRZSCAN_PDF_DPI")
	num(&c.PDFPage, "MRZSCAN_PDF_PAGE")
	num(&c.CenturyPivot, "MRZSCAN_CENTURY_PIVOT")
	num(&c.ExpiryLookbackYears, "MRZSCAN_EXPIRY_LOOKBACK_YEARS")
	num(&c.ExpiryWarningDays, "MRZSCAN_EXPIRY_WARNING_DAYS")
	num(&c.Workers, "MRZSCAN_WORKERS")
	num(&c.Port, "MRZSCAN_PORT")

	str(&c.GeminiAPIKey, "GEMINI_API_KEY")
	str(&c.GeminiModel, "GEMINI_MODEL")
	str(&c.OllamaURL, "OLLAMA_URL", "OLLAMA_HOST")
	str(&c.OllamaModel, "OLLAMA_MODEL")
	str(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	str(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	str(&c.OpenAIModel, "OPENAI_MODEL")

	return errors.Join(errList...)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errList []error
	if !slices.Contains(Engines, c.Engine) {
		errList = append(errList, fmt.Errorf("unknown engine %q (supported: %s)", c.Engine, strings.Join(Engines, ", ")))
	}
	if _, err := preprocess.ParseStrategy(c.Strategy); err != nil {
		errList = append(errList, err)
	}
	if c.Workers < 1 {
		errList = append(errList, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.CenturyPivot < 1 || c.CenturyPivot > 99 {
		errList = append(errList, fmt.Errorf("century_pivot must be within 1..99, got %d", c.CenturyPivot))
	}
	if c.ExpiryLookbackYears < 1 || c.ExpiryLookbackYears > 99 {
		errList = append(errList, fmt.Errorf("expiry_lookback_years must be within 1..99, got %d", c.ExpiryLookbackYears))
	}
	if c.PDFDPI < 1 {
		errList = append(errList, fmt.Errorf("pdf_dpi must be positive, got %d", c.PDFDPI))
	}
	if c.PDFPage < 1 {
		errList = append(errList, fmt.Errorf("pdf_page must be at least 1, got %d", c.PDFPage))
	}
	if c.OCRTimeout <= 0 {
		errList = append(errList, fmt.Errorf("ocr_timeout must be positive, got %s", c.OCRTimeout))
	}
	if c.Port < 1 || c.Port > 65535 {
		errList = append(errList, fmt.Errorf("port out of range: %d", c.Port))
	}
	return errors.Join(errList...)
}

// ExpiryWarning converts ExpiryWarningDays; zero or less disables the
// warning.
func (c Config) ExpiryWarning() time.Duration {
	if c.ExpiryWarningDays <= 0 {
		return -1
	}
	return time.Duration(c.ExpiryWarningDays) * 24 * time.Hour
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SetOCRTimeout parses a duration such as "45s".
func (c *Config) SetOCRTimeout(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid OCR timeout %q: %w", s, err)
	}
	c.OCRTimeout = d
	return nil
}
