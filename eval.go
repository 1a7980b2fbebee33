package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var evalJSON bool

var evalCmd = &cobra.Command{
	Use:   "eval <script>",
	Short: "Run a design script and print its selections",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("eval: %w", err)
	}

	result := NewApp(cfg, logger).Evaluate(string(source))

	if evalJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		printResult(cmd, result)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("%s: %d error(s)", args[0], len(result.Errors))
	}
	return nil
}

func printResult(cmd *cobra.Command, result EvalResult) {
	out := cmd.OutOrStdout()
	for _, e := range result.Errors {
		cmd.PrintErrln(formatDiagnostic("error", e))
	}
	for _, w := range result.Warnings {
		cmd.PrintErrln(formatDiagnostic("warning", w))
	}
	for _, s := range result.Selections {
		label := s.Name
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(out, "%s %q: %d\n", label, s.Query, s.Count)
		for _, e := range s.Entities {
			fmt.Fprintf(out, "  %-8s %-9s (%g, %g, %g)\n", e.Name, e.GeomType, e.Center[0], e.Center[1], e.Center[2])
		}
	}
}

func formatDiagnostic(kind string, e EvalErrorData) string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", kind, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", kind, e.Message)
}
