package main

import (
	"fmt"

	"github.com/chazu/facet/pkg/query"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <query>",
	Short: "Print the canonical form of a query and its compiled selector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := query.ParseQuery(args[0])
		if err != nil {
			return err
		}
		sel, err := q.Compile(query.WithTolerance(cfg.Tolerance))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "query:    %s\nselector: %s\n", q, sel)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
