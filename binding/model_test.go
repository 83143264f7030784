package binding

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/x448/float16"
)

func TestProfile(t *testing.T) {
	m := newTestModel(t, newFakeEngine())

	p, err := m.Profile("x")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.Name() != "x" || p.Kind() != VariableInput {
		t.Errorf("unexpected profile identity: %s %s", p.Name(), p.Kind())
	}
	if p.ElementType() != ElementTypeFloat32 {
		t.Errorf("expected float32, got %s", p.ElementType())
	}
	if diff := cmp.Diff([]int64{2, 4}, p.Dims()); diff != "" {
		t.Errorf("dims mismatch (-want +got):\n%s", diff)
	}
	if p.Len() != 8 || p.ByteLen() != 32 {
		t.Errorf("expected 8 elements / 32 bytes, got %d / %d", p.Len(), p.ByteLen())
	}
	buf, err := p.Bytes()
	if err != nil || len(buf) != p.ByteLen() {
		t.Errorf("Bytes() = %d bytes, %v", len(buf), err)
	}

	_, err = m.Profile("nope")
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) || lookupErr.Name != "nope" {
		t.Fatalf("expected *LookupError for nope, got %v", err)
	}
	if !strings.Contains(err.Error(), "variable not found: nope") {
		t.Errorf("unexpected message %q", err)
	}
}

func TestRunThroughViews(t *testing.T) {
	m := newTestModel(t, newFakeEngine())

	in, _ := m.Profile("x")
	x, err := in.Float32s()
	if err != nil {
		t.Fatalf("Float32s failed: %v", err)
	}
	for i := range x {
		x[i] = float32(i)
	}

	if err := m.Run(context.Background()).Err(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out, _ := m.Profile("y")
	y, err := View[float32](out)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	want := []float32{0, 2, 4, 6, 8, 10, 12, 14}
	if diff := cmp.Diff(want, y); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	if _, err := View[int32](out); err == nil {
		t.Error("expected element type mismatch error")
	}
}

func TestRunRepeatable(t *testing.T) {
	m := newTestModel(t, newFakeEngine())
	if err := m.SetInputData("x", []float32{1, -2, 3.5, 4, 5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}

	var first []byte
	for i := 0; i < 10; i++ {
		if err := m.Run(context.Background()).Err(); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		p, _ := m.Profile("y")
		buf, _ := p.Bytes()
		if first == nil {
			first = bytes.Clone(buf)
			continue
		}
		if !bytes.Equal(first, buf) {
			t.Fatalf("run %d output differs from first run", i)
		}
	}
}

func TestRunCarriesModelID(t *testing.T) {
	m := newTestModel(t, newFakeEngine())
	if err := m.Run(context.Background()).Err(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := m.native.(*fakeModel).lastID; got != m.ID() {
		t.Errorf("engine saw model ID %q, want %q", got, m.ID())
	}
	if _, ok := ModelIDFromContext(context.Background()); ok {
		t.Error("expected no model ID on a bare context")
	}
}

func TestConcurrentRunRejected(t *testing.T) {
	e := newFakeEngine()
	e.gate = make(chan struct{})
	e.started = make(chan struct{}, 8)
	m := newTestModel(t, e)
	ctx := context.Background()

	first := m.Run(ctx)
	<-e.started
	if !m.Running() {
		t.Fatal("expected model to report running")
	}

	err := m.Run(ctx).Err()
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if !strings.Contains(err.Error(), "in progress") {
		t.Errorf("unexpected message %q", err)
	}
	var concErr *ConcurrencyError
	if !errors.As(err, &concErr) || concErr.ModelID != m.ID() {
		t.Errorf("expected *ConcurrencyError for %s, got %v", m.ID(), err)
	}

	cbErr := make(chan error, 1)
	m.RunFunc(ctx, func(err error) { cbErr <- err })
	if err := <-cbErr; !errors.Is(err, ErrRunInProgress) {
		t.Errorf("callback: expected ErrRunInProgress, got %v", err)
	}

	if n := e.runs.Load(); n != 1 {
		t.Errorf("rejected runs must not reach the engine, got %d engine runs", n)
	}

	close(e.gate)
	if err := first.Err(); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if m.Running() {
		t.Error("expected model idle after completion")
	}
	if err := m.Run(ctx).Err(); err != nil {
		t.Errorf("run after completion failed: %v", err)
	}
}

func TestOneOfTwoSimultaneousRunsWins(t *testing.T) {
	e := newFakeEngine()
	e.gate = make(chan struct{})
	e.started = make(chan struct{}, 8)
	m := newTestModel(t, e)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = m.Run(context.Background()).Err()
		}()
	}
	close(start)

	<-e.started
	close(e.gate)
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrRunInProgress):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok+rejected != 2 || ok < 1 {
		t.Errorf("expected at least one success, got %d ok / %d rejected", ok, rejected)
	}
}

func TestFlagClearedBeforeCallback(t *testing.T) {
	m := newTestModel(t, newFakeEngine())

	done := make(chan error, 1)
	m.RunFunc(context.Background(), func(err error) {
		if err != nil {
			done <- err
			return
		}
		if m.Running() {
			done <- errors.New("model still running inside callback")
			return
		}
		done <- m.Run(context.Background()).Err()
	})
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestTwoModelsRunConcurrently(t *testing.T) {
	e := newFakeEngine()
	e.gate = make(chan struct{})
	e.started = make(chan struct{}, 8)
	b := newTestBuilder(t, e)
	b.AddInput("x", 2, 4)
	b.AddOutput("y")

	m1, err := b.Compile(BackendConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer m1.Close()
	m2, err := b.Compile(BackendConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer m2.Close()

	if m1.ID() == m2.ID() {
		t.Fatal("models must have distinct IDs")
	}

	p1, _ := m1.Profile("x")
	p2, _ := m2.Profile("x")
	x1, _ := p1.Float32s()
	x2, _ := p2.Float32s()
	x1[0], x2[0] = 1, 100

	f1 := m1.Run(context.Background())
	f2 := m2.Run(context.Background())
	// Both runs are inside the engine at the same time.
	<-e.started
	<-e.started
	close(e.gate)

	if err := f1.Err(); err != nil {
		t.Fatalf("model 1: %v", err)
	}
	if err := f2.Err(); err != nil {
		t.Fatalf("model 2: %v", err)
	}

	o1, _ := m1.Output("y")
	o2, _ := m2.Output("y")
	if o1.Data[0] != 2 || o2.Data[0] != 200 {
		t.Errorf("models share buffers: got %v and %v", o1.Data[0], o2.Data[0])
	}
}

func TestRunEngineError(t *testing.T) {
	e := newFakeEngine()
	e.runErr = errors.New("kernel exploded")

	var mu sync.Mutex
	var infos []RunInfo
	m := newTestModel(t, e, WithHooks(AfterRunHook(func(info *RunInfo) {
		mu.Lock()
		infos = append(infos, *info)
		mu.Unlock()
	})))

	err := m.Run(context.Background()).Err()
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected *EngineError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "kernel exploded") {
		t.Errorf("engine message lost: %q", err)
	}
	if m.Running() {
		t.Error("model must be runnable again after a failed run")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(infos) != 1 || infos[0].Error == nil || infos[0].ModelID != m.ID() {
		t.Errorf("unexpected hook infos: %+v", infos)
	}
}

func TestRunContextOnlyBoundsWait(t *testing.T) {
	e := newFakeEngine()
	e.gate = make(chan struct{})
	e.started = make(chan struct{}, 8)
	m := newTestModel(t, e)

	ctx, cancel := context.WithCancel(context.Background())
	f := m.Run(ctx)
	<-e.started
	cancel()

	if _, err := f.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from Await, got %v", err)
	}
	if !m.Running() {
		t.Fatal("cancellation must not abort an accepted run")
	}

	close(e.gate)
	if err := f.Err(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestSetInputData(t *testing.T) {
	m := newTestModel(t, newFakeEngine())

	tests := []struct {
		name    string
		input   string
		values  []float32
		wantErr error
		wantMsg string
	}{
		{"too short", "x", make([]float32, 5), ErrLengthMismatch, "too short"},
		{"too long", "x", make([]float32, 9), ErrLengthMismatch, "too long"},
		{"nil values", "x", nil, ErrInsufficientArgs, "insufficient"},
		{"unknown name", "nope", make([]float32, 8), ErrVariableNotFound, "variable not found"},
		{"output name", "y", make([]float32, 8), ErrVariableNotFound, "variable not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.SetInputData(tt.input, tt.values)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected %q in %q", tt.wantMsg, err)
			}
		})
	}

	if err := m.SetInputData("x", []float32{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatalf("SetInputData failed: %v", err)
	}
	if err := m.Run(context.Background()).Err(); err != nil {
		t.Fatal(err)
	}
	out, err := m.Output("y")
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	want := &OutputData{Dims: []int64{2, 4}, Data: []float32{2, 4, 6, 8, 10, 12, 14, 16}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	if _, err := m.Output("x"); !errors.Is(err, ErrVariableNotFound) {
		t.Errorf("Output of an input: expected ErrVariableNotFound, got %v", err)
	}
}

func TestSetInputDataFloat16(t *testing.T) {
	e := newFakeEngine()
	e.inputType = ElementTypeFloat16
	m := newTestModel(t, e)

	if err := m.SetInputData("x", []float32{0.5, 1, 1.5, 2, -0.25, 0, 3, 4}); err != nil {
		t.Fatalf("SetInputData failed: %v", err)
	}
	p, _ := m.Profile("x")
	halves, err := View[float16.Float16](p)
	if err != nil {
		t.Fatalf("View[float16] failed: %v", err)
	}
	if got := halves[2].Float32(); got != 1.5 {
		t.Errorf("expected 1.5 in half precision, got %v", got)
	}

	if err := m.Run(context.Background()).Err(); err != nil {
		t.Fatal(err)
	}
	out, _ := m.Output("y")
	if diff := cmp.Diff([]float32{1, 2, 3, 4, -0.5, 0, 6, 8}, out.Data); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCloseWaitsForRun(t *testing.T) {
	e := newFakeEngine()
	e.gate = make(chan struct{})
	e.started = make(chan struct{}, 8)
	m := newTestModel(t, e)
	p, _ := m.Profile("x")

	f := m.Run(context.Background())
	<-e.started

	closed := make(chan error, 1)
	go func() { closed <- m.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while a run was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(e.gate)
	if err := <-closed; err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := f.Err(); err != nil {
		t.Fatalf("in-flight run failed: %v", err)
	}
	if n := e.modelsAlive.Load(); n != 0 {
		t.Errorf("engine model not released, %d alive", n)
	}

	if err := m.Run(context.Background()).Err(); !errors.Is(err, ErrModelClosed) {
		t.Errorf("Run after Close: expected ErrModelClosed, got %v", err)
	}
	if _, err := m.Profile("x"); !errors.Is(err, ErrModelClosed) {
		t.Errorf("Profile after Close: expected ErrModelClosed, got %v", err)
	}
	if _, err := p.Bytes(); !errors.Is(err, ErrModelClosed) {
		t.Errorf("Bytes after Close: expected ErrModelClosed, got %v", err)
	}
	if err := p.Borrow(func([]byte) error { return nil }); !errors.Is(err, ErrModelClosed) {
		t.Errorf("Borrow after Close: expected ErrModelClosed, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestCloseWaitsForBorrow(t *testing.T) {
	m := newTestModel(t, newFakeEngine())
	p, _ := m.Profile("x")

	inBorrow := make(chan struct{})
	release := make(chan struct{})
	go p.Borrow(func(buf []byte) error {
		close(inBorrow)
		<-release
		return nil
	})
	<-inBorrow

	closed := make(chan struct{})
	go func() {
		m.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a borrow was outstanding")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-closed
}

func TestHooks(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(tag string) Hook {
		return AfterRunHook(func(info *RunInfo) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, tag+":"+strings.Join(info.Inputs, ",")+"->"+strings.Join(info.Outputs, ","))
		})
	}

	e := newFakeEngine()
	b := newTestBuilder(t, e, WithHooks(record("runtime")))
	b.AddInput("x", 1, 4)
	b.AddOutput("y")
	m, err := b.Compile(BackendConfig{}, WithHooks(record("model")))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if err := m.Run(context.Background()).Err(); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"runtime:x->y", "model:x->y"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("hook calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSlogHook(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	e := newFakeEngine()
	m := newTestModel(t, e, WithHooks(NewSlogHook(logger)))
	if err := m.Run(context.Background()).Err(); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, "run completed") || !strings.Contains(out, m.ID()) {
		t.Errorf("unexpected log output: %s", out)
	}

	buf.Reset()
	e.runErr = errors.New("boom")
	m.Run(context.Background()).Err()
	if out := buf.String(); !strings.Contains(out, "run failed") || !strings.Contains(out, "boom") {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestBytesDuringClose(t *testing.T) {
	m := newTestModel(t, newFakeEngine())
	p, _ := m.Profile("x")
	want := p.ByteLen()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				buf, err := p.Bytes()
				if errors.Is(err, ErrModelClosed) {
					return
				}
				if err != nil || len(buf) != want {
					t.Errorf("Bytes returned %d bytes, err %v", len(buf), err)
					return
				}
			}
		}()
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	wg.Wait()
}
