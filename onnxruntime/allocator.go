package onnxruntime

import (
	"unsafe"

	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
)

// allocator is the library's default CPU allocator. It is owned by ORT and
// never released.
type allocator struct {
	ptr     api.OrtAllocator
	runtime *Runtime
}

// free returns memory the C API handed out through this allocator.
func (a *allocator) free(ptr unsafe.Pointer) {
	if ptr == nil || a.runtime.apiFuncs == nil {
		return
	}
	a.runtime.apiFuncs.AllocatorFree(a.ptr, ptr)
}

// takeString copies and frees an allocator-owned C string.
func (a *allocator) takeString(ptr *byte) string {
	s := cString(ptr)
	a.free(unsafe.Pointer(ptr))
	return s
}

type memoryInfo struct {
	ptr     api.OrtMemoryInfo
	runtime *Runtime
}

func (mi *memoryInfo) release() {
	if mi.ptr != 0 && mi.runtime.apiFuncs != nil {
		mi.runtime.apiFuncs.ReleaseMemoryInfo(mi.ptr)
		mi.ptr = 0
	}
}
