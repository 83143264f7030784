package onnxruntime

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/benedoc-inc/graphbind/internal/envconfig"
	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api/v23"
)

// Runtime is a loaded ONNX Runtime shared library. One Runtime is normally
// shared by the whole process; it is safe for concurrent use.
type Runtime struct {
	libraryHandle uintptr
	apiFuncs      api.APIFuncs

	allocator     *allocator
	cpuMemoryInfo *memoryInfo

	closeOnce sync.Once
}

// NewRuntime loads the ONNX Runtime library at libraryPath and binds the C API
// at apiVersion. An empty path falls back to ONNXRUNTIME_LIB_PATH and then the
// platform's default library name; a zero version falls back to
// GRAPHBIND_ORT_API_VERSION.
func NewRuntime(libraryPath string, apiVersion uint32) (*Runtime, error) {
	if libraryPath == "" {
		libraryPath = envconfig.LibraryPath()
	}
	if libraryPath == "" {
		libraryPath = defaultLibraryName()
	}
	if apiVersion == 0 {
		apiVersion = envconfig.APIVersion()
	}
	if apiVersion > v23.APIVersion {
		return nil, fmt.Errorf("API version %d is newer than the bound table (%d)", apiVersion, v23.APIVersion)
	}

	handle, err := openLibrary(libraryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ONNX Runtime library %s: %w", libraryPath, err)
	}

	funcs, err := v23.InitializeFuncs(handle, apiVersion)
	if err != nil {
		closeLibrary(handle)
		return nil, fmt.Errorf("failed to initialize ONNX Runtime API: %w", err)
	}

	r := &Runtime{
		libraryHandle: handle,
		apiFuncs:      funcs,
	}

	var allocPtr api.OrtAllocator
	if err := r.statusError(funcs.GetAllocatorWithDefaultOptions(&allocPtr)); err != nil {
		closeLibrary(handle)
		return nil, fmt.Errorf("failed to get default allocator: %w", err)
	}
	r.allocator = &allocator{ptr: allocPtr, runtime: r}

	mi, err := r.createCPUMemoryInfo()
	if err != nil {
		closeLibrary(handle)
		return nil, err
	}
	r.cpuMemoryInfo = mi

	return r, nil
}

func (r *Runtime) createCPUMemoryInfo() (*memoryInfo, error) {
	var ptr api.OrtMemoryInfo
	status := r.apiFuncs.CreateCpuMemoryInfo(allocatorTypeDevice, memTypeCPU, &ptr)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to create CPU memory info: %w", err)
	}
	return &memoryInfo{ptr: ptr, runtime: r}, nil
}

// Close releases the runtime's memory info and unloads the library. Every
// Env, Session, and Value created from r must be closed first.
func (r *Runtime) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.cpuMemoryInfo != nil {
			r.cpuMemoryInfo.release()
		}
		if r.libraryHandle != 0 {
			err = closeLibrary(r.libraryHandle)
			r.libraryHandle = 0
		}
		r.apiFuncs = nil
	})
	return err
}

// GetVersionString returns the ONNX Runtime release, e.g. "1.23.0".
func (r *Runtime) GetVersionString() string {
	if r.apiFuncs == nil {
		return ""
	}
	return cString((*byte)(r.apiFuncs.GetVersionString()))
}

// GetAvailableProviders lists the execution providers compiled into the
// loaded library, in priority order.
func (r *Runtime) GetAvailableProviders() ([]string, error) {
	if r.apiFuncs == nil {
		return nil, ErrRuntimeClosed
	}

	var namesPtr **byte
	var count int32
	status := r.apiFuncs.GetAvailableProviders(&namesPtr, &count)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to get available providers: %w", err)
	}
	defer r.apiFuncs.ReleaseAvailableProviders(namesPtr, count)

	if count == 0 {
		return nil, nil
	}
	ptrs := unsafe.Slice(namesPtr, count)
	providers := make([]string, count)
	for i, p := range ptrs {
		providers[i] = cString(p)
	}
	return providers, nil
}
