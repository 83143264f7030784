// Package reference is a pure-Go engine executing a float32 subset of ONNX
// operators. It needs no native library and is selected with the backend
// name "ref".
package reference

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/benedoc-inc/graphbind/binding"
	"github.com/benedoc-inc/graphbind/internal/onnxpb"
)

// BackendName is the backend name this engine answers to.
const BackendName = "ref"

// Engine implements binding.Engine.
type Engine struct {
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a reference engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements binding.Engine.
func (e *Engine) Name() string { return "reference" }

// Supports reports whether backendName selects this engine.
func Supports(backendName string) bool {
	switch strings.ToLower(backendName) {
	case "", BackendName, "reference":
		return true
	default:
		return false
	}
}

// LoadGraph implements binding.Engine.
func (e *Engine) LoadGraph(_ context.Context, path string) (binding.EngineGraph, error) {
	m, err := onnxpb.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newGraph(m)
}

// LoadGraphBytes implements binding.Engine.
func (e *Engine) LoadGraphBytes(_ context.Context, name string, data []byte) (binding.EngineGraph, error) {
	m, err := onnxpb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return newGraph(m)
}

type graph struct {
	model  *onnxpb.Model
	consts map[string]*tensor
	vars   []binding.Variable
	index  map[string]int
}

func newGraph(m *onnxpb.Model) (*graph, error) {
	g := &graph{
		model:  m,
		consts: make(map[string]*tensor, len(m.Graph.Initializers)),
		index:  make(map[string]int),
	}
	add := func(v binding.Variable) {
		if _, ok := g.index[v.Name]; ok {
			return
		}
		g.index[v.Name] = len(g.vars)
		g.vars = append(g.vars, v)
	}

	for _, t := range m.Graph.Initializers {
		c, err := constTensor(t)
		if err != nil {
			return nil, err
		}
		g.consts[t.Name] = c
		add(binding.Variable{
			Name:        t.Name,
			Kind:        binding.VariableInitializer,
			ElementType: binding.ElementType(t.DataType),
			Dims:        append([]int64{}, t.Dims...),
		})
	}
	for _, v := range m.Graph.Inputs {
		add(binding.Variable{
			Name:        v.Name,
			Kind:        binding.VariableInput,
			ElementType: binding.ElementType(v.ElemType),
			Dims:        v.Dims(),
		})
	}
	for _, v := range m.Graph.Outputs {
		add(binding.Variable{
			Name:        v.Name,
			Kind:        binding.VariableOutput,
			ElementType: binding.ElementType(v.ElemType),
			Dims:        v.Dims(),
		})
	}

	info := make(map[string]*onnxpb.ValueInfo, len(m.Graph.ValueInfo))
	for _, v := range m.Graph.ValueInfo {
		info[v.Name] = v
	}
	for _, n := range m.Graph.Nodes {
		for _, name := range n.Outputs {
			if name == "" {
				continue
			}
			v := binding.Variable{Name: name, Kind: binding.VariableIntermediate}
			if vi, ok := info[name]; ok {
				v.ElementType = binding.ElementType(vi.ElemType)
				v.Dims = vi.Dims()
			}
			add(v)
		}
	}
	return g, nil
}

// Variables implements binding.EngineGraph.
func (g *graph) Variables() []binding.Variable {
	return g.vars
}

// Close implements binding.EngineGraph.
func (g *graph) Close() error {
	return nil
}

type step struct {
	node *onnxpb.Node
	run  kernel
}

// model owns every activation of one compiled graph; initializers are shared
// read-only with the graph.
type model struct {
	steps   []step
	exposed map[string]*tensor
}

// Compile implements binding.Engine.
func (e *Engine) Compile(eg binding.EngineGraph, inputs []binding.InputDeclaration, outputs []string, cfg binding.BackendConfig) (binding.EngineModel, error) {
	g, ok := eg.(*graph)
	if !ok {
		return nil, fmt.Errorf("graph %T was not loaded by the reference engine", eg)
	}
	if !Supports(cfg.BackendName) {
		return nil, fmt.Errorf("unsupported backend %q", cfg.BackendName)
	}

	values := make(map[string]*tensor, len(g.consts)+len(g.model.Graph.Nodes))
	for name, c := range g.consts {
		values[name] = c
	}
	m := &model{exposed: make(map[string]*tensor, len(inputs)+len(outputs))}

	for _, in := range inputs {
		if i, ok := g.index[in.Name]; ok {
			if et := g.vars[i].ElementType; et != binding.ElementTypeFloat32 && et != binding.ElementTypeUndefined {
				return nil, fmt.Errorf("input %q: element type %s is not supported", in.Name, et)
			}
		}
		t := newTensor(toInts(in.Dims))
		if c, ok := g.consts[in.Name]; ok && len(c.data) == len(t.data) {
			copy(t.data, c.data)
		}
		values[in.Name] = t
		m.exposed[in.Name] = t
	}

	for i, n := range g.model.Graph.Nodes {
		compile, ok := ops[n.OpType]
		if !ok || (n.Domain != "" && n.Domain != "ai.onnx") {
			return nil, fmt.Errorf("node %d (%s): unsupported operator %s", i, n.Name, n.OpType)
		}
		in := make([]*tensor, len(n.Inputs))
		for j, name := range n.Inputs {
			if name == "" {
				continue
			}
			t, ok := values[name]
			if !ok {
				return nil, fmt.Errorf("node %d (%s): input %q is not produced before use", i, n.Name, name)
			}
			in[j] = t
		}
		out, run, err := compile(n, in)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, n.Name, err)
		}
		for j, name := range n.Outputs {
			if name != "" && j < len(out) {
				values[name] = out[j]
			}
		}
		m.steps = append(m.steps, step{node: n, run: run})
	}

	for _, name := range outputs {
		t, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("output %q is not produced by the graph", name)
		}
		if t.data == nil {
			return nil, fmt.Errorf("output %q is not float32", name)
		}
		if c, ok := g.consts[name]; ok && t == c {
			// Graph constants are shared by every model of the graph.
			t = &tensor{shape: slices.Clone(c.shape), data: slices.Clone(c.data)}
		}
		m.exposed[name] = t
	}

	e.logger.Debug("compiled reference model",
		slog.String("graph", g.model.Graph.Name),
		slog.Int("steps", len(m.steps)),
	)
	return m, nil
}

// Buffer implements binding.EngineModel.
func (m *model) Buffer(name string) (binding.ElementType, []int64, []byte, error) {
	t, ok := m.exposed[name]
	if !ok {
		return binding.ElementTypeUndefined, nil, nil, fmt.Errorf("no buffer for %q", name)
	}
	return binding.ElementTypeFloat32, t.dims64(), t.bytes(), nil
}

// Run implements binding.EngineModel.
func (m *model) Run(_ context.Context) (err error) {
	var cur *onnxpb.Node
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s kernel %q panicked: %v", cur.OpType, cur.Name, r)
		}
	}()
	for _, s := range m.steps {
		cur = s.node
		s.run()
	}
	return nil
}

// Close implements binding.EngineModel.
func (m *model) Close() error {
	m.steps = nil
	m.exposed = nil
	return nil
}
