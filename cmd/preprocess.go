package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/mrzscan/internal/observe"
	"github.com/lehigh-university-libraries/mrzscan/internal/pdf"
	"github.com/lehigh-university-libraries/mrzscan/internal/preprocess"
)

func newPreprocessCmd(a *app) *cobra.Command {
	var (
		flags  engineFlags
		output string
		page   int
	)

	cmd := &cobra.Command{
		Use:   "preprocess FILE",
		Short: "Write the OCR-ready rendering of a capture",
		Long: `Runs only the preprocessing pipeline and writes the selected variant as a
grayscale PNG. Useful for tuning captures or feeding another OCR tool.`,
		Example: `  mrzscan preprocess passport.jpg -o passport-ocr.png
  mrzscan preprocess skewed.jpg -o out.png --strategy deskew --scratch-dir ./debug --keep-scratch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			strategy, err := preprocess.ParseStrategy(cfg.Strategy)
			if err != nil {
				return err
			}

			input := args[0]
			var data []byte
			if strings.EqualFold(filepath.Ext(input), ".pdf") {
				if page <= 0 {
					page = cfg.PDFPage
				}
				data, err = pdf.New(cfg.PDFToPPMPath, cfg.PDFDPI).RenderPage(cmd.Context(), input, page)
			} else {
				data, err = os.ReadFile(input)
			}
			if err != nil {
				return err
			}

			pipeline := preprocess.New(preprocess.Options{
				Strategy:    strategy,
				MinSide:     cfg.MinSide,
				ScratchDir:  cfg.ScratchDir,
				KeepScratch: cfg.KeepScratch,
				Sink:        observe.NewLogSink(slog.Default()),
			})
			res, err := pipeline.Run(cmd.Context(), data)
			if err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + "-mrz.png"
			}
			if err := os.WriteFile(output, res.PNG, 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, variant %s, %dx%d, scale %.1f)\n",
				output, strategy, res.Variant, res.Width, res.Height, res.Scale)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG path (default FILE-mrz.png)")
	cmd.Flags().IntVar(&page, "page", 0, "PDF page to render")

	return cmd
}
