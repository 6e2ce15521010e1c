// Package main provides the coach binary entry point. It runs the
// confidence rewriting engine directly from the command line without the
// HTTP service or queue.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lunabriana98-creator/luna-app/internal/coach"
	"github.com/lunabriana98-creator/luna-app/internal/export"
	"github.com/lunabriana98-creator/luna-app/internal/rules"
)

const (
	Version = "1.0.0"
	appName = "coach"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Rewrite unconfident text",
		Long: `Coach removes hedging, filler, and apologetic phrasing from text
and reports a confidence score before and after the rewrite.

Text is read from arguments, from a file with --file, or from stdin
when neither is given.`,
	}

	cmd.AddCommand(rewriteCmd())
	cmd.AddCommand(scoreCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func rewriteCmd() *cobra.Command {
	var (
		filePath string
		asJSON   bool
		asDiff   bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite [text]",
		Short: "Rewrite a text and show what changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, filePath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			c := coach.New(rules.Default())
			report := c.Transform(text)

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				data, err := export.JSON(report)
				if err != nil {
					return fmt.Errorf("encode report: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case asDiff:
				fmt.Fprintln(out, export.InlineDiff(report))
			default:
				fmt.Fprint(out, export.Summary(report))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read text from a file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full report as JSON")
	cmd.Flags().BoolVar(&asDiff, "diff", false, "Show an inline diff of the rewrite")
	cmd.MarkFlagsMutuallyExclusive("json", "diff")

	return cmd
}

func scoreCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "score [text]",
		Short: "Score a text's confidence from 0 to 100",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, filePath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			c := coach.New(rules.Default())
			fmt.Fprintf(cmd.OutOrStdout(), "%.1f\n", c.Score(text))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read text from a file")

	return cmd
}

// readInput resolves the text to process: arguments win, then --file,
// then stdin.
func readInput(args []string, filePath string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", filePath, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no input text: pass text as an argument, use --file, or pipe to stdin")
	}
	return string(data), nil
}
