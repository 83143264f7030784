package onnxruntime

import (
	"fmt"

	"github.com/benedoc-inc/graphbind/onnxruntime/internal/api"
)

// TensorTypeInfo describes the element type and shape of a tensor. Symbolic
// dims are -1.
type TensorTypeInfo struct {
	ElementType ONNXTensorElementDataType
	Shape       []int64
}

// ValueInfo describes one model input or output.
type ValueInfo struct {
	Name       string
	Type       ONNXType
	TensorInfo *TensorTypeInfo // non-nil when Type == ONNXTypeTensor
}

// GetInputInfo returns type information for every model input.
func (s *Session) GetInputInfo() ([]ValueInfo, error) {
	if s.ptr == 0 {
		return nil, ErrSessionClosed
	}
	return s.valueInfos(s.inputNames, s.runtime.apiFuncs.SessionGetInputTypeInfo)
}

// GetOutputInfo returns type information for every model output.
func (s *Session) GetOutputInfo() ([]ValueInfo, error) {
	if s.ptr == 0 {
		return nil, ErrSessionClosed
	}
	return s.valueInfos(s.outputNames, s.runtime.apiFuncs.SessionGetOutputTypeInfo)
}

func (s *Session) valueInfos(names []string, get func(api.OrtSession, uintptr, *api.OrtTypeInfo) api.OrtStatus) ([]ValueInfo, error) {
	if s.ptr == 0 {
		return nil, ErrSessionClosed
	}
	infos := make([]ValueInfo, len(names))
	for i, name := range names {
		var typeInfo api.OrtTypeInfo
		if err := s.runtime.statusError(get(s.ptr, uintptr(i), &typeInfo)); err != nil {
			return nil, fmt.Errorf("failed to get type info for %q: %w", name, err)
		}
		info, err := s.runtime.readTypeInfo(typeInfo)
		s.runtime.apiFuncs.ReleaseTypeInfo(typeInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to read type info for %q: %w", name, err)
		}
		info.Name = name
		infos[i] = info
	}
	return infos, nil
}

func (r *Runtime) readTypeInfo(typeInfo api.OrtTypeInfo) (ValueInfo, error) {
	var info ValueInfo
	if err := r.statusError(r.apiFuncs.GetOnnxTypeFromTypeInfo(typeInfo, &info.Type)); err != nil {
		return info, fmt.Errorf("failed to get ONNX type: %w", err)
	}
	if info.Type != ONNXTypeTensor {
		return info, nil
	}

	// The tensor info is owned by typeInfo.
	var tensorInfo api.OrtTensorTypeAndShapeInfo
	if err := r.statusError(r.apiFuncs.CastTypeInfoToTensorInfo(typeInfo, &tensorInfo)); err != nil {
		return info, fmt.Errorf("failed to cast to tensor info: %w", err)
	}
	t, err := r.readTensorInfo(tensorInfo)
	if err != nil {
		return info, err
	}
	info.TensorInfo = t
	return info, nil
}

func (r *Runtime) readTensorInfo(tensorInfo api.OrtTensorTypeAndShapeInfo) (*TensorTypeInfo, error) {
	var t TensorTypeInfo
	if err := r.statusError(r.apiFuncs.GetTensorElementType(tensorInfo, &t.ElementType)); err != nil {
		return nil, fmt.Errorf("failed to get element type: %w", err)
	}

	var rank uintptr
	if err := r.statusError(r.apiFuncs.GetDimensionsCount(tensorInfo, &rank)); err != nil {
		return nil, fmt.Errorf("failed to get dimensions count: %w", err)
	}
	t.Shape = make([]int64, rank)
	if rank > 0 {
		if err := r.statusError(r.apiFuncs.GetDimensions(tensorInfo, &t.Shape[0], rank)); err != nil {
			return nil, fmt.Errorf("failed to get dimensions: %w", err)
		}
	}
	return &t, nil
}
