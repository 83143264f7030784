package reference

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/benedoc-inc/graphbind/internal/onnxpb"
)

// tensor is a dense row-major float32 value. Integer constants used as
// operator parameters (Reshape shapes) carry ints instead of data.
type tensor struct {
	shape []int
	data  []float32
	ints  []int64
}

func newTensor(shape []int) *tensor {
	return &tensor{shape: shape, data: make([]float32, numel(shape))}
}

func numel(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func (t *tensor) bytes() []byte {
	if len(t.data) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&t.data[0])), len(t.data)*4)
}

func (t *tensor) dims64() []int64 {
	dims := make([]int64, len(t.shape))
	for i, d := range t.shape {
		dims[i] = int64(d)
	}
	return dims
}

func toInts(dims []int64) []int {
	out := make([]int, len(dims))
	for i, d := range dims {
		out[i] = int(d)
	}
	return out
}

// constTensor converts an initializer. Only float and integer tensors are
// supported.
func constTensor(t *onnxpb.Tensor) (*tensor, error) {
	shape := toInts(t.Dims)
	switch t.DataType {
	case onnxpb.DataTypeFloat:
		data, err := t.Float32s()
		if err != nil {
			return nil, err
		}
		if len(data) != numel(shape) {
			return nil, fmt.Errorf("initializer %q has %d elements, dims %v", t.Name, len(data), t.Dims)
		}
		return &tensor{shape: shape, data: slices.Clone(data)}, nil
	case onnxpb.DataTypeInt64, onnxpb.DataTypeInt32:
		ints, err := t.Int64s()
		if err != nil {
			return nil, err
		}
		return &tensor{shape: shape, ints: slices.Clone(ints)}, nil
	default:
		return nil, fmt.Errorf("initializer %q has unsupported data type %d", t.Name, t.DataType)
	}
}
