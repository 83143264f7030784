package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/benedoc-inc/graphbind/binding"
)

func newInspectCmd(g *globalFlags) *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:   "inspect MODEL",
		Short: "List the variables of a model",
		Long: `List every input- and output-capable variable of an ONNX model with its
kind, element type, and declared dims. Symbolic dims print as "?".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.backendConfig()
			if err != nil {
				return err
			}
			name, err := g.engineName(cfg)
			if err != nil {
				return err
			}
			logger := g.logger(cmd.ErrOrStderr())
			engine, closeEngine, err := openEngine(name, logger)
			if err != nil {
				return err
			}
			defer closeEngine()

			rt := binding.New(engine, binding.WithLogger(logger))
			b, err := rt.Load(cmd.Context(), args[0]).Await(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			return writeVariables(cmd.OutOrStdout(), b.Graph().Variables(), kinds)
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "only list these kinds (input, output, intermediate, initializer)")
	return cmd
}

func writeVariables(w io.Writer, vars []binding.Variable, kinds []string) error {
	var data [][]string
	for _, v := range vars {
		if len(kinds) > 0 && !containsFold(kinds, v.Kind.String()) {
			continue
		}
		data = append(data, []string{v.Name, v.Kind.String(), v.ElementType.String(), formatDims(v.Dims)})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "KIND", "TYPE", "DIMS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// formatDims renders dims as [N,1,28,28] style, with ? for symbolic dims and
// "unknown" for an unknown rank.
func formatDims(dims []int64) string {
	if dims == nil {
		return "unknown"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		if d < 0 {
			parts[i] = "?"
			continue
		}
		parts[i] = fmt.Sprint(d)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
