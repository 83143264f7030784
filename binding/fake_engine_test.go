package binding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"
)

// fakeEngine serves a single graph: input "x" [-1,4], initializer "w" [4],
// intermediate "h" and output "y". A run computes h = x+1 and y = 2x.
type fakeEngine struct {
	inputType  ElementType
	loadErr    error
	compileErr error
	runErr     error

	// gate, when set, blocks every Run until a value is received.
	gate chan struct{}
	// started receives one value per Run that reached the engine.
	started chan struct{}
	// compileGate, when set, blocks every Compile until a value is received;
	// compileStarted receives one value per Compile that reached the engine.
	compileGate    chan struct{}
	compileStarted chan struct{}

	runs        atomic.Int64
	compiled    atomic.Int64
	graphClosed atomic.Bool
	graphCloses atomic.Int64
	// staleCompile is set when a Compile finished against a closed graph.
	staleCompile atomic.Bool
	modelsAlive  atomic.Int64
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{inputType: ElementTypeFloat32}
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) LoadGraph(_ context.Context, path string) (EngineGraph, error) {
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	return &fakeGraph{engine: e}, nil
}

func (e *fakeEngine) LoadGraphBytes(ctx context.Context, name string, _ []byte) (EngineGraph, error) {
	return e.LoadGraph(ctx, name)
}

func (e *fakeEngine) Compile(_ EngineGraph, inputs []InputDeclaration, outputs []string, _ BackendConfig) (EngineModel, error) {
	if e.compileStarted != nil {
		e.compileStarted <- struct{}{}
	}
	if e.compileGate != nil {
		<-e.compileGate
	}
	if e.graphClosed.Load() {
		e.staleCompile.Store(true)
	}
	if e.compileErr != nil {
		return nil, e.compileErr
	}
	m := &fakeModel{engine: e, bufs: make(map[string]*fakeBuf)}
	var xDims []int64
	for _, in := range inputs {
		t := ElementTypeFloat32
		if in.Name == "x" {
			t = e.inputType
			xDims = in.Dims
		}
		m.bufs[in.Name] = newFakeBuf(t, in.Dims)
	}
	for _, name := range outputs {
		if _, ok := m.bufs[name]; ok {
			continue
		}
		m.bufs[name] = newFakeBuf(ElementTypeFloat32, xDims)
	}
	e.compiled.Add(1)
	e.modelsAlive.Add(1)
	return m, nil
}

type fakeGraph struct {
	engine *fakeEngine
}

func (g *fakeGraph) Variables() []Variable {
	return []Variable{
		{Name: "x", Kind: VariableInput, ElementType: g.engine.inputType, Dims: []int64{-1, 4}},
		{Name: "w", Kind: VariableInitializer, ElementType: ElementTypeFloat32, Dims: []int64{4}},
		{Name: "h", Kind: VariableIntermediate, ElementType: ElementTypeFloat32},
		{Name: "y", Kind: VariableOutput, ElementType: ElementTypeFloat32, Dims: []int64{-1, 4}},
	}
}

func (g *fakeGraph) Close() error {
	g.engine.graphCloses.Add(1)
	if !g.engine.graphClosed.CompareAndSwap(false, true) {
		return errors.New("graph closed twice")
	}
	return nil
}

type fakeBuf struct {
	elemType ElementType
	dims     []int64
	words    []uint64
	bytes    []byte
}

// newFakeBuf backs the buffer with uint64s so typed views are aligned.
func newFakeBuf(t ElementType, dims []int64) *fakeBuf {
	n := ElementCount(dims) * t.Size()
	words := make([]uint64, (n+7)/8+1)
	return &fakeBuf{
		elemType: t,
		dims:     dims,
		words:    words,
		bytes:    unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n),
	}
}

type fakeModel struct {
	engine *fakeEngine
	mu     sync.Mutex
	bufs   map[string]*fakeBuf
	closed bool
	// lastID is the model ID seen by the most recent Run.
	lastID string
}

func (m *fakeModel) Buffer(name string) (ElementType, []int64, []byte, error) {
	b, ok := m.bufs[name]
	if !ok {
		return ElementTypeUndefined, nil, nil, errors.New("no such buffer")
	}
	return b.elemType, b.dims, b.bytes, nil
}

func (m *fakeModel) Run(ctx context.Context) error {
	m.engine.runs.Add(1)
	m.lastID, _ = ModelIDFromContext(ctx)
	if m.engine.started != nil {
		m.engine.started <- struct{}{}
	}
	if m.engine.gate != nil {
		<-m.engine.gate
	}
	if m.engine.runErr != nil {
		return m.engine.runErr
	}

	x, ok := m.bufs["x"]
	if !ok {
		return nil
	}
	for i := 0; i < ElementCount(x.dims); i++ {
		v, err := getFloat32(x.elemType, x.bytes, i)
		if err != nil {
			return err
		}
		if y, ok := m.bufs["y"]; ok {
			putFloat32(y.elemType, y.bytes, i, 2*v)
		}
		if h, ok := m.bufs["h"]; ok {
			putFloat32(h.elemType, h.bytes, i, v+1)
		}
	}
	return nil
}

func (m *fakeModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("model closed twice")
	}
	m.closed = true
	m.engine.modelsAlive.Add(-1)
	return nil
}

func newTestBuilder(t *testing.T, e *fakeEngine, opts ...Option) *Builder {
	t.Helper()
	rt := New(e, opts...)
	b, err := rt.Load(context.Background(), "fake.onnx").Result()
	if err != nil {
		t.Fatalf("Failed to load graph: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func newTestModel(t *testing.T, e *fakeEngine, opts ...Option) *Model {
	t.Helper()
	b := newTestBuilder(t, e)
	if err := b.AddInput("x", 2, 4); err != nil {
		t.Fatalf("AddInput failed: %v", err)
	}
	if err := b.AddOutput("y"); err != nil {
		t.Fatalf("AddOutput failed: %v", err)
	}
	m, err := b.Compile(BackendConfig{}, opts...)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}
