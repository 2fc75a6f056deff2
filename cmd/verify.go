package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/mrzscan/internal/observe"
	"github.com/lehigh-university-libraries/mrzscan/internal/verify"
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		flags  engineFlags
		page   int
		format string
		strict bool
		trace  bool
	)

	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Read and validate the MRZ of one passport or ID card capture",
		Long: `Runs a capture (jpg, png, bmp, tiff, webp or pdf) through preprocessing,
OCR and MRZ validation, then prints the verdict and every finding.

The verdict is pass when all check digits and dates hold, fail when any
check failed, and error when no zone could be read.`,
		Example: `  # Verify a scan with the default tesseract engine
  mrzscan verify passport.jpg

  # Second page of a PDF, JSON output, exit 2 unless the document passes
  mrzscan verify scans.pdf --page 2 --format json --strict

  # Use a vision LLM instead of tesseract and show stage timings
  mrzscan verify id.png --engine ollama --trace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}

			var recorder *observe.Recorder
			var sink observe.Sink = observe.NewLogSink(slog.Default())
			if trace {
				recorder = &observe.Recorder{}
				sink = observe.Multi(sink, recorder)
			}

			v, err := verify.FromConfig(cfg, sink, nil)
			if err != nil {
				return err
			}

			report, verifyErr := v.VerifyFile(cmd.Context(), args[0], page)
			if report == nil {
				return verifyErr
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				var events []observe.Event
				if recorder != nil {
					events = recorder.Events()
				}
				printReport(out, report, events)
			default:
				if err := encode(out, format, report); err != nil {
					return err
				}
			}

			if verifyErr != nil {
				return verifyErr
			}
			if strict {
				if err := report.StrictErr(); err != nil {
					return &ExitCodeError{Code: 2, Err: fmt.Errorf("document did not pass: %w", err)}
				}
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVar(&page, "page", 0, "PDF page to read (default from config, 1)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 2 unless the verdict is pass")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print per stage timings")

	return cmd
}
