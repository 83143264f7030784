package onnxruntime

import (
	"fmt"
	"os"
	goruntime "runtime"
	"sync"
	"unsafe"

	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
)

// ExecutionProvider specifies an execution provider and its configuration options.
type ExecutionProvider struct {
	// Name is the execution provider name (e.g., "CPUExecutionProvider", "CUDAExecutionProvider").
	Name string

	// Options is passed to the provider verbatim. For example, CUDA accepts
	// "device_id" and "gpu_mem_limit".
	Options map[string]string
}

// SessionOptions configures options for creating an inference session.
type SessionOptions struct {
	// IntraOpNumThreads sets the number of threads used within one node.
	// Zero uses the ORT default.
	IntraOpNumThreads int

	// InterOpNumThreads sets the number of threads used across nodes. Zero
	// uses the ORT default.
	InterOpNumThreads int

	// ExecutionProviders are appended in order of preference. Empty means CPU.
	ExecutionProviders []ExecutionProvider

	// GraphOptimization sets the graph optimization level. Nil keeps the ORT
	// default (all).
	GraphOptimization *GraphOptimizationLevel

	// ExecutionMode controls sequential vs parallel operator execution.
	ExecutionMode ExecutionMode

	// LogSeverityLevel overrides the session's log severity level.
	// nil means use the environment default.
	LogSeverityLevel *LoggingLevel

	// ConfigEntries provides arbitrary session config entries.
	ConfigEntries map[string]string
}

// Session is an ONNX Runtime inference session over one model.
//
// Introspection methods are safe for concurrent use. Running a Session is
// done through an IoBinding, which is not.
type Session struct {
	ptr     api.OrtSession
	runtime *Runtime
	mu      sync.Mutex

	inputNames  []string
	outputNames []string
}

// NewSession creates a session from a model file.
func (r *Runtime) NewSession(env *Env, modelPath string, options *SessionOptions) (*Session, error) {
	data, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", modelPath, err)
	}
	return r.NewSessionFromBytes(env, data, options)
}

// NewSessionFromBytes creates a session from a serialized ONNX model. options
// may be nil.
func (r *Runtime) NewSessionFromBytes(env *Env, modelData []byte, options *SessionOptions) (*Session, error) {
	if r.apiFuncs == nil {
		return nil, ErrRuntimeClosed
	}
	if len(modelData) == 0 {
		return nil, fmt.Errorf("model data cannot be empty")
	}

	var optsPtr api.OrtSessionOptions
	if options != nil {
		if err := r.statusError(r.apiFuncs.CreateSessionOptions(&optsPtr)); err != nil {
			return nil, fmt.Errorf("failed to create session options: %w", err)
		}
		defer r.apiFuncs.ReleaseSessionOptions(optsPtr)

		if err := r.configureSessionOptions(optsPtr, options); err != nil {
			return nil, err
		}
	}

	var sessionPtr api.OrtSession
	status := r.apiFuncs.CreateSessionFromArray(env.ptr, unsafe.Pointer(&modelData[0]), uintptr(len(modelData)), optsPtr, &sessionPtr)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s := &Session{ptr: sessionPtr, runtime: r}
	goruntime.AddCleanup(s, func(_ struct{}) { s.Close() }, struct{}{})

	if err := s.initializeMetadata(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize session metadata: %w", err)
	}
	return s, nil
}

func (s *Session) initializeMetadata() error {
	var err error
	s.inputNames, err = s.names(s.runtime.apiFuncs.SessionGetInputCount, s.runtime.apiFuncs.SessionGetInputName)
	if err != nil {
		return fmt.Errorf("failed to get input names: %w", err)
	}
	s.outputNames, err = s.names(s.runtime.apiFuncs.SessionGetOutputCount, s.runtime.apiFuncs.SessionGetOutputName)
	if err != nil {
		return fmt.Errorf("failed to get output names: %w", err)
	}
	return nil
}

func (s *Session) names(
	count func(api.OrtSession, *uintptr) api.OrtStatus,
	name func(api.OrtSession, uintptr, api.OrtAllocator, **byte) api.OrtStatus,
) ([]string, error) {
	var n uintptr
	if err := s.runtime.statusError(count(s.ptr, &n)); err != nil {
		return nil, err
	}
	names := make([]string, n)
	for i := range names {
		var p *byte
		if err := s.runtime.statusError(name(s.ptr, uintptr(i), s.runtime.allocator.ptr, &p)); err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		names[i] = s.runtime.allocator.takeString(p)
	}
	return names, nil
}

// InputNames returns the model's input names in declaration order.
func (s *Session) InputNames() []string {
	return s.inputNames
}

// OutputNames returns the model's output names in declaration order.
func (s *Session) OutputNames() []string {
	return s.outputNames
}

// configureSessionOptions applies options to an ORT session options handle.
func (r *Runtime) configureSessionOptions(optsPtr api.OrtSessionOptions, options *SessionOptions) error {
	if options.IntraOpNumThreads > 0 {
		status := r.apiFuncs.SetIntraOpNumThreads(optsPtr, int32(options.IntraOpNumThreads))
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to set intra-op num threads: %w", err)
		}
	}

	if options.InterOpNumThreads > 0 {
		status := r.apiFuncs.SetInterOpNumThreads(optsPtr, int32(options.InterOpNumThreads))
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to set inter-op num threads: %w", err)
		}
	}

	if options.GraphOptimization != nil {
		status := r.apiFuncs.SetSessionGraphOptimizationLevel(optsPtr, int32(*options.GraphOptimization))
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to set graph optimization level: %w", err)
		}
	}

	if options.ExecutionMode != ExecutionModeSequential {
		status := r.apiFuncs.SetSessionExecutionMode(optsPtr, int32(options.ExecutionMode))
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to set execution mode: %w", err)
		}
	}

	if options.LogSeverityLevel != nil {
		status := r.apiFuncs.SetSessionLogSeverityLevel(optsPtr, int32(*options.LogSeverityLevel))
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to set log severity level: %w", err)
		}
	}

	for k, v := range options.ConfigEntries {
		key, val := cBytes(k), cBytes(v)
		status := r.apiFuncs.AddSessionConfigEntry(optsPtr, &key[0], &val[0])
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to add session config entry %q: %w", k, err)
		}
	}

	for _, provider := range options.ExecutionProviders {
		if err := r.appendExecutionProvider(optsPtr, provider); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) appendExecutionProvider(optsPtr api.OrtSessionOptions, provider ExecutionProvider) error {
	name := cBytes(provider.Name)

	var keyPtrs, valuePtrs **byte
	n := len(provider.Options)
	if n > 0 {
		keys := make([]*byte, 0, n)
		values := make([]*byte, 0, n)
		for k, v := range provider.Options {
			keys = append(keys, &cBytes(k)[0])
			values = append(values, &cBytes(v)[0])
		}
		keyPtrs, valuePtrs = &keys[0], &values[0]
	}

	status := r.apiFuncs.SessionOptionsAppendExecutionProvider(optsPtr, &name[0], keyPtrs, valuePtrs, uintptr(n))
	if err := r.statusError(status); err != nil {
		return fmt.Errorf("failed to append execution provider %q: %w", provider.Name, err)
	}
	return nil
}

// Close releases the session. It is safe to call Close multiple times.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ptr != 0 && s.runtime.apiFuncs != nil {
		s.runtime.apiFuncs.ReleaseSession(s.ptr)
		s.ptr = 0
	}
}
