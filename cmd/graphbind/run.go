package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benedoc-inc/graphbind/binding"
)

type runFlags struct {
	inputs  []string
	outputs []string
	data    []string
	fill    float32
	repeat  int
	limit   int
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run MODEL",
		Short: "Compile a model and run it",
		Long: `Compile a model with the declared inputs and outputs, fill the inputs,
run it, and print the outputs.

Examples:
  # Run MNIST on a zeroed batch of 10 images
  graphbind run mnist.onnx --input 139900320569040=10x1x28x28

  # Feed raw little-endian bytes and request an intermediate
  graphbind run model.onnx --input x=1x3 --data x=x.bin --output hidden --output y`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModel(cmd, g, &f, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&f.inputs, "input", "i", nil, "declare an input as NAME=DIMS, e.g. x=1x3x224x224 (repeatable)")
	flags.StringArrayVarP(&f.outputs, "output", "o", nil, "request an output by name (repeatable); defaults to the graph outputs")
	flags.StringArrayVar(&f.data, "data", nil, "fill an input from a raw file as NAME=PATH (repeatable)")
	flags.Float32Var(&f.fill, "fill", 0, "value written to every input without --data")
	flags.IntVar(&f.repeat, "repeat", 1, "number of runs")
	flags.IntVar(&f.limit, "limit", 16, "max values printed per output, 0 prints all")
	return cmd
}

func runModel(cmd *cobra.Command, g *globalFlags, f *runFlags, path string) error {
	if len(f.inputs) == 0 {
		return fmt.Errorf("at least one --input is required")
	}
	if f.repeat < 1 {
		return fmt.Errorf("--repeat must be positive")
	}
	inputs, err := parseInputs(f.inputs)
	if err != nil {
		return err
	}
	data, err := parseAssignments(f.data)
	if err != nil {
		return err
	}

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

	ctx := cmd.Context()
	rt := binding.New(engine, binding.WithLogger(logger), binding.WithHooks(binding.NewSlogHook(logger)))
	b, err := rt.Load(ctx, path).Await(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	for _, in := range inputs {
		if err := b.AddInput(in.Name, in.Dims...); err != nil {
			return fmt.Errorf("--input %s: %w", in.Name, err)
		}
	}
	outputs := f.outputs
	if len(outputs) == 0 {
		outputs = b.Graph().OutputNames()
	}
	for _, out := range outputs {
		if err := b.AddOutput(out); err != nil {
			return fmt.Errorf("--output %s: %w", out, err)
		}
	}

	m, err := b.Compile(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	for _, in := range inputs {
		if file, ok := data[in.Name]; ok {
			if err := fillFromFile(m, in.Name, file); err != nil {
				return err
			}
			continue
		}
		if err := fillConstant(m, in.Name, f.fill); err != nil {
			return err
		}
	}

	for i := 0; i < f.repeat; i++ {
		if err := m.Run(ctx).Err(); err != nil {
			return err
		}
	}
	return writeOutputs(cmd.OutOrStdout(), m, outputs, f.limit)
}

func fillConstant(m *binding.Model, name string, v float32) error {
	p, err := m.Profile(name)
	if err != nil {
		return err
	}
	values := make([]float32, p.Len())
	for i := range values {
		values[i] = v
	}
	return m.SetInputData(name, values)
}

func fillFromFile(m *binding.Model, name, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read data for %s: %w", name, err)
	}
	p, err := m.Profile(name)
	if err != nil {
		return err
	}
	size := p.ElementType().Size()
	if len(raw)%size != 0 {
		return fmt.Errorf("data for %s is %d bytes, not a multiple of %d", name, len(raw), size)
	}
	if len(raw) != p.ByteLen() {
		return &binding.LengthError{Name: name, Want: p.Len(), Got: len(raw) / size}
	}
	return p.Borrow(func(buf []byte) error {
		copy(buf, raw)
		return nil
	})
}

func writeOutputs(w io.Writer, m *binding.Model, outputs []string, limit int) error {
	for _, name := range outputs {
		p, err := m.Profile(name)
		if err != nil {
			return err
		}
		out, err := m.Output(name)
		if err != nil {
			return err
		}
		values := out.Data
		truncated := limit > 0 && len(values) > limit
		if truncated {
			values = values[:limit]
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = strconv.FormatFloat(float64(v), 'g', 6, 32)
		}
		if truncated {
			parts = append(parts, "...")
		}
		fmt.Fprintf(w, "%s %s %s: %s\n", name, p.ElementType(), formatDims(out.Dims), strings.Join(parts, " "))
	}
	return nil
}

// parseInputs parses NAME=DIMS declarations, with dims separated by x or
// commas.
func parseInputs(specs []string) ([]binding.InputDeclaration, error) {
	decls := make([]binding.InputDeclaration, 0, len(specs))
	for _, spec := range specs {
		name, dimStr, ok := strings.Cut(spec, "=")
		if !ok || name == "" || dimStr == "" {
			return nil, fmt.Errorf("invalid --input %q: want NAME=DIMS", spec)
		}
		fields := strings.FieldsFunc(dimStr, func(r rune) bool { return r == 'x' || r == ',' })
		dims := make([]int64, len(fields))
		for i, s := range fields {
			d, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid --input %q: dim %q is not an integer", spec, s)
			}
			dims[i] = d
		}
		decls = append(decls, binding.InputDeclaration{Name: name, Dims: dims})
	}
	return decls, nil
}

func parseAssignments(specs []string) (map[string]string, error) {
	out := make(map[string]string, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, "=")
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("invalid assignment %q: want NAME=VALUE", spec)
		}
		out[name] = value
	}
	return out, nil
}
