package onnxruntime

import (
	"testing"
	"unsafe"

	"github.com/benedoc-inc/graphbind/internal/envconfig"
	"github.com/benedoc-inc/graphbind/internal/testmodels"
)

func isLibraryAvailable() bool {
	return envconfig.LibraryPath() != ""
}

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	if !isLibraryAvailable() {
		t.Skip("ONNX Runtime library not available: set ONNXRUNTIME_LIB_PATH")
	}

	runtime, err := NewRuntime("", 0)
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	t.Cleanup(func() { runtime.Close() })
	return runtime
}

func newTestEnv(t *testing.T, runtime *Runtime) *Env {
	t.Helper()
	env, err := runtime.NewEnv("test", LoggingLevelWarning)
	if err != nil {
		t.Fatalf("Failed to create environment: %v", err)
	}
	t.Cleanup(func() { env.Close() })
	return env
}

// newTestSession opens the AddRelu model: inputs a and b of [N,3], output out.
func newTestSession(t *testing.T, runtime *Runtime) *Session {
	t.Helper()
	env := newTestEnv(t, runtime)
	session, err := runtime.NewSessionFromBytes(env, testmodels.AddRelu(), nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func newTestTensor(t *testing.T, runtime *Runtime, data []float32, shape []int64) *Value {
	t.Helper()
	v, err := runtime.NewTensor(ONNXTensorElementDataTypeFloat, shape)
	if err != nil {
		t.Fatalf("Failed to create tensor: %v", err)
	}
	t.Cleanup(v.Close)
	if data != nil {
		copy(float32s(t, v), data)
	}
	return v
}

func float32s(t *testing.T, v *Value) []float32 {
	t.Helper()
	b, err := v.Bytes()
	if err != nil {
		t.Fatalf("Failed to get tensor bytes: %v", err)
	}
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}
