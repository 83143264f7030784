package onnxruntime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/benedoc-inc/graphbind/binding"
	"github.com/benedoc-inc/graphbind/internal/onnxpb"
)

// Backend params consumed by the session rather than the provider.
const (
	ParamIntraOpNumThreads = "intra_op_num_threads"
	ParamInterOpNumThreads = "inter_op_num_threads"
	ParamGraphOptimization = "graph_optimization"
	ParamExecutionMode     = "execution_mode"
)

// Engine implements binding.Engine on top of ONNX Runtime. Every compiled
// model owns its own session and IO binding, so distinct models run
// concurrently.
type Engine struct {
	runtime *Runtime
	env     *Env
	logger  *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine whose sessions live in env.
func NewEngine(rt *Runtime, env *Env, opts ...EngineOption) *Engine {
	e := &Engine{runtime: rt, env: env, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ binding.Engine = (*Engine)(nil)

// Name implements binding.Engine.
func (e *Engine) Name() string { return "onnxruntime" }

// LoadGraph implements binding.Engine.
func (e *Engine) LoadGraph(_ context.Context, path string) (binding.EngineGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	return e.loadGraph(path, data)
}

// LoadGraphBytes implements binding.Engine.
func (e *Engine) LoadGraphBytes(_ context.Context, name string, data []byte) (binding.EngineGraph, error) {
	g, err := e.loadGraph(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

type graph struct {
	name string
	data []byte

	vars  []binding.Variable
	index map[string]int
	// sessionIO holds names ORT already exposes as inputs or outputs.
	sessionIO map[string]bool
}

func (e *Engine) loadGraph(name string, data []byte) (*graph, error) {
	proto, err := onnxpb.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if proto.Graph == nil {
		return nil, errors.New("model has no graph")
	}

	s, err := e.runtime.NewSessionFromBytes(e.env, data, nil)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	inputs, err := s.GetInputInfo()
	if err != nil {
		return nil, err
	}
	outputs, err := s.GetOutputInfo()
	if err != nil {
		return nil, err
	}

	g := &graph{
		name:      name,
		data:      data,
		index:     make(map[string]int),
		sessionIO: make(map[string]bool),
	}
	initializers := make(map[string]*onnxpb.Tensor, len(proto.Graph.Initializers))
	for _, t := range proto.Graph.Initializers {
		initializers[t.Name] = t
	}

	for _, in := range inputs {
		kind := binding.VariableInput
		if _, ok := initializers[in.Name]; ok {
			kind = binding.VariableInitializer
		}
		g.add(sessionVariable(in, kind))
		g.sessionIO[in.Name] = true
	}
	for _, out := range outputs {
		g.add(sessionVariable(out, binding.VariableOutput))
		g.sessionIO[out.Name] = true
	}
	for _, t := range proto.Graph.Initializers {
		g.add(binding.Variable{
			Name:        t.Name,
			Kind:        binding.VariableInitializer,
			ElementType: elementType(ONNXTensorElementDataType(t.DataType)),
			Dims:        slices.Clone(t.Dims),
		})
	}
	valueInfo := make(map[string]*onnxpb.ValueInfo, len(proto.Graph.ValueInfo))
	for _, v := range proto.Graph.ValueInfo {
		valueInfo[v.Name] = v
	}
	for _, n := range proto.Graph.Nodes {
		for _, out := range n.Outputs {
			if out == "" {
				continue
			}
			v := binding.Variable{Name: out, Kind: binding.VariableIntermediate}
			if vi, ok := valueInfo[out]; ok {
				v.ElementType = elementType(ONNXTensorElementDataType(vi.ElemType))
				v.Dims = vi.Dims()
			}
			g.add(v)
		}
	}

	e.logger.Debug("loaded graph",
		slog.String("graph", name),
		slog.Int("inputs", len(inputs)),
		slog.Int("outputs", len(outputs)),
		slog.Int("variables", len(g.vars)),
	)
	return g, nil
}

// add records v unless a variable of the same name exists.
func (g *graph) add(v binding.Variable) {
	if _, ok := g.index[v.Name]; ok {
		return
	}
	g.index[v.Name] = len(g.vars)
	g.vars = append(g.vars, v)
}

func (g *graph) variable(name string) (binding.Variable, bool) {
	i, ok := g.index[name]
	if !ok {
		return binding.Variable{}, false
	}
	return g.vars[i], true
}

func sessionVariable(info ValueInfo, kind binding.VariableKind) binding.Variable {
	v := binding.Variable{Name: info.Name, Kind: kind}
	if info.TensorInfo != nil {
		v.ElementType = elementType(info.TensorInfo.ElementType)
		v.Dims = slices.Clone(info.TensorInfo.Shape)
	}
	return v
}

// elementType converts an ORT element type, returning ElementTypeUndefined
// for types binding buffers cannot hold.
func elementType(t ONNXTensorElementDataType) binding.ElementType {
	et := binding.ElementType(t)
	if et.Size() == 0 {
		return binding.ElementTypeUndefined
	}
	return et
}

// Variables implements binding.EngineGraph.
func (g *graph) Variables() []binding.Variable {
	return g.vars
}

// Close implements binding.EngineGraph. The introspection session is
// released at load time, so there is nothing native to free.
func (g *graph) Close() error {
	g.data = nil
	return nil
}

// Compile implements binding.Engine.
func (e *Engine) Compile(eg binding.EngineGraph, inputs []binding.InputDeclaration, outputs []string, cfg binding.BackendConfig) (binding.EngineModel, error) {
	g, ok := eg.(*graph)
	if !ok {
		return nil, fmt.Errorf("graph %T was not loaded by this engine", eg)
	}
	if g.data == nil {
		return nil, errors.New("graph is closed")
	}

	opts, providers, err := sessionOptions(cfg)
	if err != nil {
		return nil, err
	}

	data, err := g.exposed(inputs, outputs)
	if err != nil {
		return nil, err
	}

	s, provider, err := e.runtime.NewSessionWithProviderFallback(e.env, data, opts, providers...)
	if err != nil {
		return nil, err
	}
	if len(providers) > 0 && provider != providers[0].Name {
		e.logger.Warn("execution provider unavailable, using fallback",
			slog.String("graph", g.name),
			slog.String("requested", providers[0].Name),
			slog.String("provider", provider),
		)
	}

	m := &model{session: s, buffers: make(map[string]*tensorBuffer)}
	if err := m.bind(inputs, outputs); err != nil {
		m.Close()
		return nil, err
	}

	e.logger.Debug("compiled model",
		slog.String("graph", g.name),
		slog.String("provider", provider),
		slog.Int("buffers", len(m.buffers)),
	)
	return m, nil
}

// exposed returns the model bytes with every declared initializer override
// added as a graph input and every requested intermediate added as a graph
// output, since ORT only binds graph inputs and outputs.
func (g *graph) exposed(inputs []binding.InputDeclaration, outputs []string) ([]byte, error) {
	declared := make(map[string]bool, len(inputs))
	var extraIn, extraOut []*onnxpb.ValueInfo

	for _, in := range inputs {
		declared[in.Name] = true
		if g.sessionIO[in.Name] {
			continue
		}
		v, ok := g.variable(in.Name)
		if !ok || v.Kind != binding.VariableInitializer {
			return nil, fmt.Errorf("%q is not an input of %s", in.Name, g.name)
		}
		extraIn = append(extraIn, onnxpb.TensorInfo(in.Name, int32(v.ElementType), in.Dims...))
	}

	for _, name := range outputs {
		if declared[name] || g.sessionIO[name] {
			continue
		}
		v, ok := g.variable(name)
		if !ok {
			return nil, fmt.Errorf("%q is not a variable of %s", name, g.name)
		}
		vi := &onnxpb.ValueInfo{Name: name}
		if v.ElementType != binding.ElementTypeUndefined && v.Dims != nil {
			vi = onnxpb.TensorInfo(name, int32(v.ElementType), v.Dims...)
		}
		extraOut = append(extraOut, vi)
	}

	if len(extraIn) == 0 && len(extraOut) == 0 {
		return g.data, nil
	}
	return onnxpb.AppendGraphIO(g.data, extraIn, extraOut), nil
}

// sessionOptions splits backend params into session options and provider
// options.
func sessionOptions(cfg binding.BackendConfig) (*SessionOptions, []ExecutionProvider, error) {
	opts := &SessionOptions{}
	providerOpts := make(map[string]string)

	for k, v := range cfg.Params {
		switch k {
		case ParamIntraOpNumThreads, ParamInterOpNumThreads:
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, nil, fmt.Errorf("invalid %s %q", k, v)
			}
			if k == ParamIntraOpNumThreads {
				opts.IntraOpNumThreads = n
			} else {
				opts.InterOpNumThreads = n
			}
		case ParamGraphOptimization:
			level, err := ParseGraphOptimizationLevel(v)
			if err != nil {
				return nil, nil, err
			}
			opts.GraphOptimization = &level
		case ParamExecutionMode:
			switch v {
			case "sequential":
				opts.ExecutionMode = ExecutionModeSequential
			case "parallel":
				opts.ExecutionMode = ExecutionModeParallel
			default:
				return nil, nil, fmt.Errorf("invalid %s %q", k, v)
			}
		default:
			providerOpts[k] = v
		}
	}

	name := ProviderName(cfg.BackendName)
	if name == CPUExecutionProvider {
		return opts, nil, nil
	}
	if len(providerOpts) == 0 {
		providerOpts = nil
	}
	return opts, []ExecutionProvider{{Name: name, Options: providerOpts}}, nil
}

type tensorBuffer struct {
	elemType binding.ElementType
	dims     []int64
	value    *Value
}

// model is a session plus one IO binding whose tensors are allocated once at
// compile time and reused by every run.
type model struct {
	session *Session
	binding *IoBinding
	buffers map[string]*tensorBuffer
}

// bind allocates and binds one ORT tensor per declared input and requested
// output. Outputs named like a declared input share the input's tensor.
func (m *model) bind(inputs []binding.InputDeclaration, outputs []string) error {
	b, err := m.session.NewIoBinding()
	if err != nil {
		return err
	}
	m.binding = b

	inInfo, err := m.session.GetInputInfo()
	if err != nil {
		return err
	}
	for _, in := range inputs {
		t := tensorInfo(inInfo, in.Name)
		if t == nil {
			return fmt.Errorf("input %q is not a tensor input of the session", in.Name)
		}
		tb, err := m.allocate(in.Name, t.ElementType, in.Dims)
		if err != nil {
			return err
		}
		if err := b.BindInput(in.Name, tb.value); err != nil {
			return err
		}
	}

	outInfo, err := m.session.GetOutputInfo()
	if err != nil {
		return err
	}
	var pending []string
	shapes := make(map[string]*TensorTypeInfo)
	symbolic := false
	for _, name := range outputs {
		if _, ok := m.buffers[name]; ok || shapes[name] != nil {
			continue
		}
		t := tensorInfo(outInfo, name)
		if t == nil {
			return fmt.Errorf("output %q is not a tensor output of the session", name)
		}
		pending = append(pending, name)
		shapes[name] = t
		if t.Shape == nil || slices.ContainsFunc(t.Shape, func(d int64) bool { return d < 0 }) {
			symbolic = true
		}
	}

	if symbolic {
		if err := m.probe(pending, shapes); err != nil {
			return err
		}
	}

	for _, name := range pending {
		t := shapes[name]
		tb, err := m.allocate(name, t.ElementType, t.Shape)
		if err != nil {
			return err
		}
		if err := b.BindOutput(name, tb.value); err != nil {
			return err
		}
	}
	return nil
}

func tensorInfo(infos []ValueInfo, name string) *TensorTypeInfo {
	for _, info := range infos {
		if info.Name == name {
			return info.TensorInfo
		}
	}
	return nil
}

// probe resolves symbolic output shapes with a single run over the zeroed
// inputs, letting ORT allocate the outputs.
func (m *model) probe(names []string, shapes map[string]*TensorTypeInfo) error {
	b := m.binding
	for _, name := range names {
		if err := b.BindOutputToCPU(name); err != nil {
			return err
		}
	}
	defer b.ClearOutputs()

	if err := b.Run(context.Background()); err != nil {
		return fmt.Errorf("failed to resolve output shapes: %w", err)
	}
	values, err := b.GetOutputValues()
	if err != nil {
		return err
	}
	defer func() {
		for _, v := range values {
			v.Close()
		}
	}()

	for _, name := range names {
		v, ok := values[name]
		if !ok {
			return fmt.Errorf("shape probe produced no value for %q", name)
		}
		t, err := v.TypeInfo()
		if err != nil {
			return err
		}
		shapes[name] = t
	}
	return nil
}

func (m *model) allocate(name string, elemType ONNXTensorElementDataType, dims []int64) (*tensorBuffer, error) {
	et := elementType(elemType)
	if et == binding.ElementTypeUndefined {
		return nil, fmt.Errorf("%q has unsupported element type %d", name, elemType)
	}
	v, err := m.session.runtime.NewTensor(elemType, dims)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate %q: %w", name, err)
	}
	tb := &tensorBuffer{elemType: et, dims: slices.Clone(dims), value: v}
	m.buffers[name] = tb
	return tb, nil
}

// Buffer implements binding.EngineModel.
func (m *model) Buffer(name string) (binding.ElementType, []int64, []byte, error) {
	tb, ok := m.buffers[name]
	if !ok {
		return binding.ElementTypeUndefined, nil, nil, fmt.Errorf("no buffer bound for %q", name)
	}
	data, err := tb.value.Bytes()
	if err != nil {
		return binding.ElementTypeUndefined, nil, nil, err
	}
	return tb.elemType, slices.Clone(tb.dims), data, nil
}

// Run implements binding.EngineModel. The owning Model's ID tags the native
// run.
func (m *model) Run(ctx context.Context) error {
	var opts []RunOption
	if id, ok := binding.ModelIDFromContext(ctx); ok {
		opts = append(opts, WithRunTag(id))
	}
	return m.binding.Run(ctx, opts...)
}

// Close implements binding.EngineModel.
func (m *model) Close() error {
	if m.binding != nil {
		m.binding.Close()
		m.binding = nil
	}
	for _, tb := range m.buffers {
		tb.value.Close()
	}
	m.buffers = nil
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
	return nil
}
