package onnxruntime

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
)

// IoBinding pre-binds input and output tensors to a session so repeated runs
// read and write the same memory.
//
// An IoBinding is NOT safe for concurrent use. Close it when done to release resources.
type IoBinding struct {
	ptr     api.OrtIoBinding
	session *Session

	// outputs records output names in bind order, which is the order
	// GetBoundOutputValues reports them in.
	outputs []string
}

// NewIoBinding creates a new IO binding for this session.
func (s *Session) NewIoBinding() (*IoBinding, error) {
	if s.ptr == 0 {
		return nil, ErrSessionClosed
	}

	var ptr api.OrtIoBinding
	if err := s.runtime.statusError(s.runtime.apiFuncs.CreateIoBinding(s.ptr, &ptr)); err != nil {
		return nil, fmt.Errorf("failed to create IO binding: %w", err)
	}

	b := &IoBinding{ptr: ptr, session: s}
	runtime.AddCleanup(b, func(_ struct{}) { b.Close() }, struct{}{})
	return b, nil
}

// BindInput binds an input tensor to the given name.
func (b *IoBinding) BindInput(name string, value *Value) error {
	r := b.session.runtime
	n := cBytes(name)
	if err := r.statusError(r.apiFuncs.BindInput(b.ptr, &n[0], value.ptr)); err != nil {
		return fmt.Errorf("failed to bind input %q: %w", name, err)
	}
	return nil
}

// BindOutput binds a pre-allocated output tensor to the given name.
func (b *IoBinding) BindOutput(name string, value *Value) error {
	r := b.session.runtime
	n := cBytes(name)
	if err := r.statusError(r.apiFuncs.BindOutput(b.ptr, &n[0], value.ptr)); err != nil {
		return fmt.Errorf("failed to bind output %q: %w", name, err)
	}
	b.outputs = append(b.outputs, name)
	return nil
}

// BindOutputToCPU lets ORT allocate the named output in CPU memory on each
// run, sized from the run's actual shapes.
func (b *IoBinding) BindOutputToCPU(name string) error {
	r := b.session.runtime
	n := cBytes(name)
	if err := r.statusError(r.apiFuncs.BindOutputToDevice(b.ptr, &n[0], r.cpuMemoryInfo.ptr)); err != nil {
		return fmt.Errorf("failed to bind output %q to device: %w", name, err)
	}
	b.outputs = append(b.outputs, name)
	return nil
}

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	runTag string
}

// WithRunTag tags the run in ORT's own log output.
func WithRunTag(tag string) RunOption {
	return func(c *runConfig) {
		c.runTag = tag
	}
}

// Run executes the session over the bound tensors. If ctx is cancelled the
// native run is asked to terminate.
func (b *IoBinding) Run(ctx context.Context, opts ...RunOption) error {
	if b.ptr == 0 {
		return fmt.Errorf("IO binding is closed")
	}
	s := b.session
	if s.ptr == 0 {
		return ErrSessionClosed
	}
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	runOpts, cleanup, err := s.runtime.createRunOptions(ctx, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := s.runtime.statusError(s.runtime.apiFuncs.RunWithBinding(s.ptr, runOpts, b.ptr)); err != nil {
		return fmt.Errorf("failed to run with binding: %w", err)
	}
	return nil
}

// createRunOptions builds OrtRunOptions for cfg and, when ctx can be
// cancelled, a watcher that terminates the run. cleanup must be called once
// the run returns.
func (r *Runtime) createRunOptions(ctx context.Context, cfg *runConfig) (api.OrtRunOptions, func(), error) {
	cancellable := ctx.Done() != nil
	if !cancellable && cfg.runTag == "" {
		return 0, func() {}, nil
	}

	var runOpts api.OrtRunOptions
	if err := r.statusError(r.apiFuncs.CreateRunOptions(&runOpts)); err != nil {
		return 0, nil, fmt.Errorf("failed to create run options: %w", err)
	}

	if cfg.runTag != "" {
		tag := cBytes(cfg.runTag)
		if err := r.statusError(r.apiFuncs.RunOptionsSetRunTag(runOpts, &tag[0])); err != nil {
			r.apiFuncs.ReleaseRunOptions(runOpts)
			return 0, nil, fmt.Errorf("failed to set run tag: %w", err)
		}
	}

	// The watcher must exit before runOpts is released.
	var wg sync.WaitGroup
	done := make(chan struct{})
	if cancellable {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				r.apiFuncs.RunOptionsSetTerminate(runOpts)
			case <-done:
			}
		}()
	}

	cleanup := func() {
		close(done)
		wg.Wait()
		r.apiFuncs.ReleaseRunOptions(runOpts)
	}
	return runOpts, cleanup, nil
}

// GetOutputValues returns the values ORT holds for the bound outputs, keyed
// by name. The caller owns the returned Values.
func (b *IoBinding) GetOutputValues() (map[string]*Value, error) {
	r := b.session.runtime

	var valuesPtr *api.OrtValue
	var count uintptr
	if err := r.statusError(r.apiFuncs.GetBoundOutputValues(b.ptr, r.allocator.ptr, &valuesPtr, &count)); err != nil {
		return nil, fmt.Errorf("failed to get bound output values: %w", err)
	}
	if count == 0 {
		return map[string]*Value{}, nil
	}
	defer r.allocator.free(unsafe.Pointer(valuesPtr))

	values := unsafe.Slice(valuesPtr, count)
	result := make(map[string]*Value, count)
	for i, ptr := range values {
		v := r.newValueFromPtr(ptr)
		if i >= len(b.outputs) {
			v.Close()
			continue
		}
		result[b.outputs[i]] = v
	}
	return result, nil
}

// ClearOutputs unbinds every output.
func (b *IoBinding) ClearOutputs() {
	b.session.runtime.apiFuncs.ClearBoundOutputs(b.ptr)
	b.outputs = nil
}

// Close releases the IO binding resources.
func (b *IoBinding) Close() {
	if b.ptr != 0 && b.session.runtime.apiFuncs != nil {
		b.session.runtime.apiFuncs.ReleaseIoBinding(b.ptr)
		b.ptr = 0
	}
}
