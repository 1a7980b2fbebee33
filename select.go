package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/brep"
	"github.com/chazu/facet/pkg/query"
	"github.com/spf13/cobra"
)

var (
	selectBox      string
	selectCylinder string
	selectKind     string
)

var selectCmd = &cobra.Command{
	Use:   "select <query>",
	Short: "Select entities of a box or cylinder",
	Long: `Builds a primitive and prints the entities a query selects from it.
The entity kind comes from a query prefix ("edges |Z"), --kind, or the
configured default.`,
	Example: `  facet select ">Z" --box 10,20,30
  facet select "edges %CIRCLE" --cylinder 5,2`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().StringVar(&selectBox, "box", "", "box dimensions X,Y,Z")
	selectCmd.Flags().StringVar(&selectCylinder, "cylinder", "", "cylinder height and radius H,R")
	selectCmd.Flags().StringVar(&selectKind, "kind", "", "entity kind when the query has no prefix")
	selectCmd.MarkFlagsMutuallyExclusive("box", "cylinder")
	selectCmd.MarkFlagsOneRequired("box", "cylinder")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	k := brep.New()
	var shape kernel.Shape
	switch {
	case selectBox != "":
		dims, err := parseDims("box", selectBox, 3)
		if err != nil {
			return err
		}
		shape = k.Box(dims[0], dims[1], dims[2])
	case selectCylinder != "":
		dims, err := parseDims("cylinder", selectCylinder, 2)
		if err != nil {
			return err
		}
		shape = k.Cylinder(dims[0], dims[1])
	default:
		return errors.New("one of --box or --cylinder is required")
	}

	kind := cfg.Kind()
	if selectKind != "" {
		var ok bool
		if kind, ok = kernel.ParseKind(selectKind); !ok {
			return fmt.Errorf("--kind: unknown entity kind %q", selectKind)
		}
	}

	out, err := query.SelectFrom(shape, args[0],
		query.WithTolerance(cfg.Tolerance), query.WithDefaultKind(kind))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(out) == 0 {
		fmt.Fprintln(w, "No entities selected.")
		return nil
	}
	for _, e := range out {
		d := entityData(e)
		fmt.Fprintf(w, "%-8s %-9s (%g, %g, %g)\n", d.Name, d.GeomType, d.Center[0], d.Center[1], d.Center[2])
	}
	return nil
}

// parseDims parses n comma-separated positive numbers.
func parseDims(flag, value string, n int) ([]float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("--%s: expected %d comma-separated numbers, got %q", flag, n, value)
	}
	dims := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flag, err)
		}
		if f <= 0 {
			return nil, fmt.Errorf("--%s: dimensions must be positive, got %g", flag, f)
		}
		dims[i] = f
	}
	return dims, nil
}
