package onnxruntime

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
)

// Value is an ONNX Runtime tensor whose memory is owned by ORT.
//
// A Value is NOT safe for concurrent use. While a cleanup is registered as a
// safety net, call Close explicitly to release native memory promptly.
type Value struct {
	ptr     api.OrtValue
	runtime *Runtime
	mu      sync.Mutex
}

func (r *Runtime) newValueFromPtr(ptr api.OrtValue) *Value {
	v := &Value{ptr: ptr, runtime: r}
	runtime.AddCleanup(v, func(_ struct{}) { v.Close() }, struct{}{})
	return v
}

// NewTensor allocates a zero-filled tensor with the default CPU allocator.
// Every dim must be non-negative.
func (r *Runtime) NewTensor(elemType ONNXTensorElementDataType, shape []int64) (*Value, error) {
	if r.apiFuncs == nil {
		return nil, ErrRuntimeClosed
	}
	if ElementSize(elemType) == 0 {
		return nil, fmt.Errorf("unsupported tensor element type %d", elemType)
	}
	for i, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("shape[%d] = %d is not concrete", i, d)
		}
	}

	var shapePtr *int64
	if len(shape) > 0 {
		shapePtr = &shape[0]
	}
	var ptr api.OrtValue
	status := r.apiFuncs.CreateTensorAsOrtValue(r.allocator.ptr, shapePtr, uintptr(len(shape)), elemType, &ptr)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to create tensor: %w", err)
	}

	v := r.newValueFromPtr(ptr)
	data, err := v.Bytes()
	if err != nil {
		v.Close()
		return nil, err
	}
	clear(data)
	return v, nil
}

// TypeInfo returns the tensor's element type and concrete shape.
func (v *Value) TypeInfo() (*TensorTypeInfo, error) {
	if v.ptr == 0 {
		return nil, fmt.Errorf("value is closed")
	}
	r := v.runtime
	var info api.OrtTensorTypeAndShapeInfo
	if err := r.statusError(r.apiFuncs.GetTensorTypeAndShape(v.ptr, &info)); err != nil {
		return nil, fmt.Errorf("failed to get tensor type and shape: %w", err)
	}
	defer r.apiFuncs.ReleaseTensorTypeAndShapeInfo(info)
	return r.readTensorInfo(info)
}

// Bytes returns the tensor's native memory. The slice aliases ORT memory and
// is valid until Close.
func (v *Value) Bytes() ([]byte, error) {
	info, err := v.TypeInfo()
	if err != nil {
		return nil, err
	}
	n := ElementSize(info.ElementType)
	for _, d := range info.Shape {
		n *= int(d)
	}
	if n == 0 {
		return []byte{}, nil
	}

	var data unsafe.Pointer
	if err := v.runtime.statusError(v.runtime.apiFuncs.GetTensorMutableData(v.ptr, &data)); err != nil {
		return nil, fmt.Errorf("failed to get tensor data: %w", err)
	}
	return unsafe.Slice((*byte)(data), n), nil
}

// Close releases the value. It is safe to call Close multiple times.
func (v *Value) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ptr != 0 && v.runtime.apiFuncs != nil {
		v.runtime.apiFuncs.ReleaseValue(v.ptr)
		v.ptr = 0
	}
}

// ElementSize returns the byte size of one element of t, or 0 for
// non-numeric types.
func ElementSize(t ONNXTensorElementDataType) int {
	switch t {
	case ONNXTensorElementDataTypeUint8, ONNXTensorElementDataTypeInt8, ONNXTensorElementDataTypeBool:
		return 1
	case ONNXTensorElementDataTypeUint16, ONNXTensorElementDataTypeInt16, ONNXTensorElementDataTypeFloat16, ONNXTensorElementDataTypeBFloat16:
		return 2
	case ONNXTensorElementDataTypeFloat, ONNXTensorElementDataTypeInt32, ONNXTensorElementDataTypeUint32:
		return 4
	case ONNXTensorElementDataTypeDouble, ONNXTensorElementDataTypeInt64, ONNXTensorElementDataTypeUint64, ONNXTensorElementDataTypeComplex64:
		return 8
	case ONNXTensorElementDataTypeComplex128:
		return 16
	default:
		return 0
	}
}
