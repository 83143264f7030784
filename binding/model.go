package binding

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	stateIdle int32 = iota
	stateRunning
)

// Model is a compiled graph with one buffer per declared input and output.
// Buffers are filled and read through Profiles and are reused across runs.
//
// At most one run of a Model is in flight at a time; a Run issued while
// another is still running is rejected with ErrRunInProgress. Distinct Models
// compiled from the same Builder run independently.
type Model struct {
	id      string
	graph   *Graph
	native  EngineModel
	logger  *slog.Logger
	hooks   []Hook
	inputs  []string
	outputs []string

	profiles map[string]*Profile

	state atomic.Int32

	// mu is read-held by every accepted run and every Borrow, and write-held
	// by Close.
	mu        sync.RWMutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newModel(g *Graph, native EngineModel, inputs []InputDeclaration, outputs []string, o options) (*Model, error) {
	m := &Model{
		id:       uuid.NewString(),
		graph:    g,
		native:   native,
		logger:   o.logger,
		hooks:    o.hooks,
		outputs:  slices.Clone(outputs),
		profiles: make(map[string]*Profile, len(inputs)+len(outputs)),
	}
	for _, in := range inputs {
		m.inputs = append(m.inputs, in.Name)
		if err := m.addProfile(in.Name, VariableInput); err != nil {
			return nil, err
		}
	}
	for _, name := range outputs {
		if _, ok := m.profiles[name]; ok {
			continue
		}
		if err := m.addProfile(name, VariableOutput); err != nil {
			return nil, err
		}
	}

	m.logger.Debug("compiled model",
		slog.String("model", m.id),
		slog.String("graph", g.name),
		slog.Any("inputs", m.inputs),
		slog.Any("outputs", m.outputs),
	)
	return m, nil
}

func (m *Model) addProfile(name string, kind VariableKind) error {
	elemType, dims, buf, err := m.native.Buffer(name)
	if err != nil {
		return &EngineError{Op: "get buffer for", Path: name, Err: err}
	}
	want := ElementCount(dims) * elemType.Size()
	if len(buf) != want {
		return &EngineError{
			Op:   "get buffer for",
			Path: name,
			Err:  &LengthError{Name: name, Want: want, Got: len(buf)},
		}
	}
	m.profiles[name] = &Profile{
		model:    m,
		name:     name,
		kind:     kind,
		elemType: elemType,
		dims:     slices.Clone(dims),
		buf:      buf,
	}
	return nil
}

// ID returns the unique identifier of this model. It appears in logs, hook
// RunInfo, and errors.
func (m *Model) ID() string {
	return m.id
}

// Graph returns the graph this model was compiled from.
func (m *Model) Graph() *Graph {
	return m.graph
}

// InputNames returns the declared input names in declaration order.
func (m *Model) InputNames() []string {
	return slices.Clone(m.inputs)
}

// OutputNames returns the declared output names in declaration order.
func (m *Model) OutputNames() []string {
	return slices.Clone(m.outputs)
}

// Running reports whether a run is currently in flight.
func (m *Model) Running() bool {
	return m.state.Load() == stateRunning
}

// Profile returns the buffer profile of a declared input or output.
func (m *Model) Profile(name string) (*Profile, error) {
	if m.closed.Load() {
		return nil, ErrModelClosed
	}
	p, ok := m.profiles[name]
	if !ok {
		return nil, &LookupError{Name: name}
	}
	return p, nil
}

// Run executes the model on its current input buffers. The returned future
// resolves once the engine call has finished and the output buffers are
// stable.
//
// ctx bounds nothing once the run is accepted; cancel it to stop waiting in
// Await, not to abort the run.
func (m *Model) Run(ctx context.Context) *Future[struct{}] {
	return m.run(ctx, nil)
}

// RunFunc is the callback form of Run. cb is invoked exactly once from a
// background goroutine, after the model has become runnable again.
func (m *Model) RunFunc(ctx context.Context, cb func(err error)) {
	var c Callback[struct{}]
	if cb != nil {
		c = func(err error, _ struct{}) { cb(err) }
	}
	m.run(ctx, c)
}

func (m *Model) run(ctx context.Context, cb Callback[struct{}]) *Future[struct{}] {
	if m.closed.Load() {
		return rejected(cb, ErrModelClosed)
	}
	if !m.state.CompareAndSwap(stateIdle, stateRunning) {
		m.logger.Debug("run rejected", slog.String("model", m.id))
		return rejected(cb, &ConcurrencyError{ModelID: m.id})
	}
	m.mu.RLock()
	if m.closed.Load() {
		m.mu.RUnlock()
		m.state.Store(stateIdle)
		return rejected(cb, ErrModelClosed)
	}

	ctx = context.WithoutCancel(ctx)
	return dispatch(cb, func() (struct{}, error) {
		defer m.state.Store(stateIdle)
		defer m.mu.RUnlock()
		return struct{}{}, m.execute(ctx)
	})
}

func (m *Model) execute(ctx context.Context) error {
	info := &RunInfo{
		ModelID: m.id,
		Inputs:  m.inputs,
		Outputs: m.outputs,
	}
	for _, h := range m.hooks {
		h.BeforeRun(info)
	}

	m.logger.Debug("run started", slog.String("model", m.id))
	start := time.Now()
	err := m.native.Run(withModelID(ctx, m.id))
	if err != nil {
		err = &EngineError{Op: "run model", Path: m.id, Err: err}
	}
	info.Duration = time.Since(start)
	info.Error = err
	m.logger.Debug("run finished",
		slog.String("model", m.id),
		slog.Duration("duration", info.Duration),
		slog.Any("error", err),
	)

	for _, h := range m.hooks {
		h.AfterRun(info)
	}
	return err
}

// OutputData is a copy of an output buffer converted to float32.
type OutputData struct {
	Dims []int64
	Data []float32
}

// SetInputData copies values into the named input buffer, converting each
// element to the buffer's element type. len(values) must equal the buffer's
// element count.
//
// Deprecated: write through Profile views instead, which avoid the copy.
func (m *Model) SetInputData(name string, values []float32) error {
	if values == nil {
		return insufficientArgs()
	}
	p, err := m.Profile(name)
	if err != nil {
		return err
	}
	if p.kind != VariableInput {
		return &LookupError{Name: name}
	}
	if n := p.Len(); len(values) != n {
		return &LengthError{Name: name, Want: n, Got: len(values)}
	}
	return p.Borrow(func(buf []byte) error {
		for i, v := range values {
			if err := putFloat32(p.elemType, buf, i, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Output returns a float32 copy of the named output buffer.
//
// Deprecated: read through Profile views instead, which avoid the copy.
func (m *Model) Output(name string) (*OutputData, error) {
	p, err := m.Profile(name)
	if err != nil {
		return nil, err
	}
	if p.kind != VariableOutput {
		return nil, &LookupError{Name: name}
	}
	out := &OutputData{Dims: p.Dims(), Data: make([]float32, p.Len())}
	err = p.Borrow(func(buf []byte) error {
		for i := range out.Data {
			v, err := getFloat32(p.elemType, buf, i)
			if err != nil {
				return err
			}
			out.Data[i] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close waits for an in-flight run and for outstanding Borrow calls, then
// releases the engine model and the model's reference to the graph. Profiles
// become unusable. It is safe to call Close multiple times.
func (m *Model) Close() error {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		m.mu.Lock()
		defer m.mu.Unlock()

		m.closeErr = errors.Join(m.native.Close(), m.graph.release())
		m.logger.Debug("closed model", slog.String("model", m.id))
	})
	return m.closeErr
}
