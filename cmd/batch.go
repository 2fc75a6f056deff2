package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/mrzscan/internal/batch"
	"github.com/lehigh-university-libraries/mrzscan/internal/observe"
	"github.com/lehigh-university-libraries/mrzscan/internal/verify"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		flags   engineFlags
		workers int
		format  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "batch DIR|MANIFEST",
		Short: "Verify many captures concurrently",
		Long: `Verifies every capture in a directory, or every row of a manifest.

Manifests are JSONL or Parquet files with rows {path, page, expected}; when
expected is set the summary reports how often the zone produced that
document number. Relative paths resolve against the manifest's directory.`,
		Example: `  # Summary of a directory of scans
  mrzscan batch ./scans --workers 8

  # Manifest run saved as a timestamped YAML file under ./results
  mrzscan batch manifest.jsonl --format yaml --output results

  # Flat per-document table for analysis
  mrzscan batch manifest.parquet --format parquet --output runs/today.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			if !slices.Contains(batch.Formats, format) {
				return fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(batch.Formats, ", "))
			}

			items, err := batch.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load documents: %w", err)
			}
			if len(items) == 0 {
				return fmt.Errorf("no documents found in %s", args[0])
			}

			v, err := verify.FromConfig(cfg, observe.NewLogSink(slog.Default()), nil)
			if err != nil {
				return err
			}

			runner := &batch.Runner{Verifier: v, Workers: cfg.Workers}
			res, err := runner.Run(cmd.Context(), items)
			if res == nil {
				return err
			}
			res.Source = args[0]
			res.Engine = v.Engine.Name()
			res.Strategy = v.Pipeline.Strategy().String()

			if werr := export(cmd.OutOrStdout(), format, output, res); werr != nil {
				return werr
			}
			return err
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVar(&workers, "workers", 4, "Documents processed concurrently")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, csv, yaml, parquet")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (text, json, csv, parquet) or directory (yaml)")

	return cmd
}

func export(stdout io.Writer, format, output string, res *batch.Results) error {
	switch format {
	case "yaml":
		path, err := batch.SaveYAML(output, res)
		if err != nil {
			return err
		}
		batch.PrintSummary(stdout, res.Summary)
		fmt.Fprintf(stdout, "\nResults saved to: %s\n", path)
		return nil
	case "parquet":
		path, err := batch.SaveParquet(output, res)
		if err != nil {
			return err
		}
		batch.PrintSummary(stdout, res.Summary)
		fmt.Fprintf(stdout, "\nResults saved to: %s\n", path)
		return nil
	}

	if output == "" {
		return batch.Write(stdout, format, res)
	}
	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()
	if err := batch.Write(file, format, res); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Results saved to: %s\n", output)
	return nil
}
