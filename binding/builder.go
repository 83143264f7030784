package binding

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Builder accumulates input and output declarations against a Graph and
// compiles them into Models. A Builder may compile any number of independent
// Models. It is safe for concurrent use.
type Builder struct {
	runtime *Runtime
	graph   *Graph

	mu      sync.Mutex
	inputs  *orderedmap.OrderedMap[string, []int64]
	outputs *orderedmap.OrderedMap[string, struct{}]
	closed  bool
}

func (r *Runtime) newBuilder(g *Graph) *Builder {
	return &Builder{
		runtime: r,
		graph:   g,
		inputs:  orderedmap.New[string, []int64](),
		outputs: orderedmap.New[string, struct{}](),
	}
}

// Graph returns the graph this builder compiles.
func (b *Builder) Graph() *Graph {
	return b.graph
}

// AddInput declares an input variable with concrete dims. Declaring the same
// name again replaces the earlier dims. The name is checked against the graph
// only at Compile.
func (b *Builder) AddInput(name string, dims ...int64) error {
	if len(dims) == 0 {
		return insufficientArgs()
	}
	if name == "" {
		return invalidArg(1, "must be a non-empty variable name")
	}
	for i, d := range dims {
		if d <= 0 {
			return invalidArg(2, "dims must be positive integers (dims[%d] = %d)", i, d)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBuilderClosed
	}
	b.inputs.Set(name, slices.Clone(dims))
	return nil
}

// AddOutput declares an output variable. Declaring a name twice has no
// further effect.
func (b *Builder) AddOutput(name string) error {
	if name == "" {
		return invalidArg(1, "must be a non-empty variable name")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBuilderClosed
	}
	b.outputs.Set(name, struct{}{})
	return nil
}

// RemoveInput drops an input declaration. It reports whether name was
// declared.
func (b *Builder) RemoveInput(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.inputs.Delete(name)
	return ok
}

// RemoveOutput drops an output declaration. It reports whether name was
// declared.
func (b *Builder) RemoveOutput(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.outputs.Delete(name)
	return ok
}

// Inputs returns the current input declarations in declaration order.
func (b *Builder) Inputs() []InputDeclaration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inputDecls()
}

// Outputs returns the current output declarations in declaration order.
func (b *Builder) Outputs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outputNames()
}

func (b *Builder) inputDecls() []InputDeclaration {
	decls := make([]InputDeclaration, 0, b.inputs.Len())
	for pair := b.inputs.Oldest(); pair != nil; pair = pair.Next() {
		decls = append(decls, InputDeclaration{Name: pair.Key, Dims: slices.Clone(pair.Value)})
	}
	return decls
}

func (b *Builder) outputNames() []string {
	names := make([]string, 0, b.outputs.Len())
	for pair := b.outputs.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Compile validates the declarations against the graph and asks the engine
// to allocate and bind buffers for them. On failure no Model is returned and
// the Builder can be corrected and compiled again.
func (b *Builder) Compile(cfg BackendConfig, opts ...Option) (*Model, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBuilderClosed
	}
	// The compiling model holds its own graph reference, so a concurrent
	// Close cannot release the graph under the engine.
	b.graph.retain()
	inputs := b.inputDecls()
	outputs := b.outputNames()
	b.mu.Unlock()

	if err := b.validate(inputs, outputs); err != nil {
		b.graph.release()
		return nil, err
	}

	cfg = cfg.withDefaults()
	logger := b.runtime.logger
	logger.Debug("compiling model",
		slog.String("graph", b.graph.name),
		slog.String("backend", cfg.BackendName),
		slog.Int("inputs", len(inputs)),
		slog.Int("outputs", len(outputs)),
	)

	native, err := b.runtime.engine.Compile(b.graph.native, inputs, outputs, cfg)
	if err != nil {
		b.graph.release()
		return nil, &EngineError{Op: "compile model", Path: b.graph.name, Err: err}
	}

	m, err := newModel(b.graph, native, inputs, outputs, b.runtime.modelOptions(opts))
	if err != nil {
		native.Close()
		b.graph.release()
		return nil, err
	}
	return m, nil
}

// validate checks declarations against the graph. The first offending name
// is reported.
func (b *Builder) validate(inputs []InputDeclaration, outputs []string) error {
	g := b.graph
	declared := make(map[string]bool, len(inputs))

	for _, in := range inputs {
		v, ok := g.Variable(in.Name)
		if !ok || (v.Kind != VariableInput && v.Kind != VariableInitializer) {
			return &CompileError{Name: in.Name, Err: ErrVariableNotFound}
		}
		if err := checkDims(v, in.Dims); err != nil {
			return err
		}
		declared[in.Name] = true
	}

	for _, name := range g.InputNames() {
		if !declared[name] {
			return &CompileError{Name: name, Err: ErrVariableNotFound}
		}
	}

	for _, name := range outputs {
		if _, ok := g.Variable(name); !ok {
			return &CompileError{Name: name, Err: ErrVariableNotFound}
		}
	}
	return nil
}

func checkDims(v Variable, dims []int64) error {
	if v.Dims == nil {
		return nil
	}
	if len(v.Dims) != len(dims) {
		return &CompileError{
			Name: fmt.Sprintf("%s (rank %d, declared %d)", v.Name, len(v.Dims), len(dims)),
			Err:  ErrDimsMismatch,
		}
	}
	for i, d := range v.Dims {
		if d > 0 && d != dims[i] {
			return &CompileError{
				Name: fmt.Sprintf("%s (dims[%d] is %d, declared %d)", v.Name, i, d, dims[i]),
				Err:  ErrDimsMismatch,
			}
		}
	}
	return nil
}

// Close releases the builder's reference to the graph. Models already
// compiled keep the graph alive. It is safe to call Close multiple times.
func (b *Builder) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	return b.graph.release()
}
