package onnxruntime

import (
	"fmt"
	"sync"

	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
)

// Env is an ONNX Runtime environment. Sessions created under one Env share
// its logging configuration and thread pools. It is safe for concurrent use.
type Env struct {
	ptr     api.OrtEnv
	runtime *Runtime
	mu      sync.Mutex
}

// NewEnv creates an environment whose native log lines are tagged with logID
// and filtered at logLevel.
func (r *Runtime) NewEnv(logID string, logLevel LoggingLevel) (*Env, error) {
	if r.apiFuncs == nil {
		return nil, ErrRuntimeClosed
	}
	id := cBytes(logID)
	var envPtr api.OrtEnv
	if err := r.statusError(r.apiFuncs.CreateEnv(logLevel, &id[0], &envPtr)); err != nil {
		return nil, fmt.Errorf("failed to create environment: %w", err)
	}
	return &Env{ptr: envPtr, runtime: r}, nil
}

// Close releases the environment. It is safe to call Close multiple times.
func (e *Env) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ptr != 0 && e.runtime.apiFuncs != nil {
		e.runtime.apiFuncs.ReleaseEnv(e.ptr)
		e.ptr = 0
	}
}
