package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/mrzscan/internal/verify"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		format string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check [MRZ|-]",
		Short: "Validate MRZ text without OCR",
		Long: `Parses MRZ text and runs every check digit, date and field check.

Pass the zone as an argument, one MRZ line per text line, or pipe it on
stdin.`,
		Example: `  mrzscan check "$(cat zone.txt)"
  printf 'P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\nL898902C36UTO7408122F1204159ZE184226B<<<<<10\n' | mrzscan check -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readZone(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			v, err := verify.FromConfig(a.cfg, nil, nil)
			if err != nil {
				return err
			}
			res, checkErr := v.Check(cmd.Context(), text)

			out := cmd.OutOrStdout()
			if format == "text" {
				fmt.Fprintf(out, "Verdict:         %s\n", strings.ToUpper(res.Verdict()))
				printResult(out, res)
			} else if err := encode(out, format, res); err != nil {
				return err
			}

			if checkErr != nil {
				return checkErr
			}
			if strict && !res.Passed() {
				return &ExitCodeError{Code: 2, Err: res.Err()}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 2 unless the verdict is pass")

	return cmd
}

func readZone(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, 64*1024))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no MRZ text given")
	}
	return string(data), nil
}
