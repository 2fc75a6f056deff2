package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/mrzscan/internal/config"
)

// ExitCodeError carries a specific process exit status.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string { return e.Err.Error() }
func (e *ExitCodeError) Unwrap() error { return e.Err }

// ExitCode returns the status main should exit with for err.
func ExitCode(err error) int {
	var exit *ExitCodeError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 1
}

type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "mrzscan",
		Short: "Passport machine readable zone OCR and validation",
		Long: `mrzscan reads the machine readable zone (MRZ) of passports and ID cards.

It cleans up the capture for OCR, recognises the zone with Tesseract or a
vision LLM, parses TD1, TD2 and TD3 layouts and verifies every check digit
and date.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if err := setupLogging(a.logLevel); err != nil {
				return err
			}
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("MRZSCAN_CONFIG"), "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	cmd.AddCommand(newVerifyCmd(a))
	cmd.AddCommand(newCheckCmd(a))
	cmd.AddCommand(newPreprocessCmd(a))
	cmd.AddCommand(newBatchCmd(a))
	cmd.AddCommand(newServeCmd(a))

	return cmd
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

// engineFlags are shared by every command that runs the pipeline. They
// override the loaded config only when set.
type engineFlags struct {
	engine      string
	langs       string
	strategy    string
	tessdata    string
	scratchDir  string
	keepScratch bool
	timeout     string
}

func (f *engineFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.engine, "engine", "", "OCR engine: tesseract, gosseract, gemini, ollama, openai")
	cmd.Flags().StringVar(&f.langs, "lang", "", "Comma separated tesseract languages in preference order (e.g. ocrb,eng)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "Preprocessing strategy: multi-variant, deskew, fast")
	cmd.Flags().StringVar(&f.tessdata, "tessdata", "", "Directory searched first for traineddata files")
	cmd.Flags().StringVar(&f.scratchDir, "scratch-dir", "", "Write intermediate renderings under this directory")
	cmd.Flags().BoolVar(&f.keepScratch, "keep-scratch", false, "Keep intermediate renderings after the run")
	cmd.Flags().StringVar(&f.timeout, "ocr-timeout", "", "Per document OCR timeout (e.g. 30s)")
}

func (f *engineFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Engine = f.engine
	}
	if flags.Changed("lang") {
		cfg.Languages = config.SplitList(f.langs)
	}
	if flags.Changed("strategy") {
		cfg.Strategy = f.strategy
	}
	if flags.Changed("tessdata") {
		cfg.TessdataPrefix = f.tessdata
	}
	if flags.Changed("scratch-dir") {
		cfg.ScratchDir = f.scratchDir
	}
	if flags.Changed("keep-scratch") {
		cfg.KeepScratch = f.keepScratch
	}
	if flags.Changed("ocr-timeout") {
		if err := cfg.SetOCRTimeout(f.timeout); err != nil {
			return err
		}
	}
	return cfg.Validate()
}
