package binding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// ElementType identifies the element type of a tensor buffer. The numeric
// values match ONNX TensorProto.DataType.
type ElementType int32

const (
	ElementTypeUndefined ElementType = 0
	ElementTypeFloat32   ElementType = 1
	ElementTypeUint8     ElementType = 2
	ElementTypeInt8      ElementType = 3
	ElementTypeUint16    ElementType = 4
	ElementTypeInt16     ElementType = 5
	ElementTypeInt32     ElementType = 6
	ElementTypeInt64     ElementType = 7
	ElementTypeBool      ElementType = 9
	ElementTypeFloat16   ElementType = 10
	ElementTypeFloat64   ElementType = 11
	ElementTypeUint32    ElementType = 12
	ElementTypeUint64    ElementType = 13
)

// Size returns the size in bytes of one element, or 0 for unsupported types.
func (t ElementType) Size() int {
	switch t {
	case ElementTypeUint8, ElementTypeInt8, ElementTypeBool:
		return 1
	case ElementTypeUint16, ElementTypeInt16, ElementTypeFloat16:
		return 2
	case ElementTypeFloat32, ElementTypeInt32, ElementTypeUint32:
		return 4
	case ElementTypeFloat64, ElementTypeInt64, ElementTypeUint64:
		return 8
	default:
		return 0
	}
}

func (t ElementType) String() string {
	switch t {
	case ElementTypeFloat32:
		return "float32"
	case ElementTypeUint8:
		return "uint8"
	case ElementTypeInt8:
		return "int8"
	case ElementTypeUint16:
		return "uint16"
	case ElementTypeInt16:
		return "int16"
	case ElementTypeInt32:
		return "int32"
	case ElementTypeInt64:
		return "int64"
	case ElementTypeBool:
		return "bool"
	case ElementTypeFloat16:
		return "float16"
	case ElementTypeFloat64:
		return "float64"
	case ElementTypeUint32:
		return "uint32"
	case ElementTypeUint64:
		return "uint64"
	case ElementTypeUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("ElementType(%d)", int32(t))
	}
}

// ElementCount returns the product of dims.
func ElementCount(dims []int64) int {
	n := 1
	for _, d := range dims {
		n *= int(d)
	}
	return n
}

// putFloat32 stores v at element index i of buf, converting to t.
func putFloat32(t ElementType, buf []byte, i int, v float32) error {
	switch t {
	case ElementTypeFloat32:
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	case ElementTypeFloat64:
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(float64(v)))
	case ElementTypeFloat16:
		binary.LittleEndian.PutUint16(buf[i*2:], float16.Fromfloat32(v).Bits())
	case ElementTypeInt8:
		buf[i] = byte(int8(v))
	case ElementTypeUint8:
		buf[i] = uint8(v)
	case ElementTypeBool:
		buf[i] = 0
		if v != 0 {
			buf[i] = 1
		}
	case ElementTypeInt16:
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v)))
	case ElementTypeUint16:
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	case ElementTypeInt32:
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(v)))
	case ElementTypeUint32:
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	case ElementTypeInt64:
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(int64(v)))
	case ElementTypeUint64:
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	default:
		return fmt.Errorf("unsupported element type %s", t)
	}
	return nil
}

// getFloat32 loads element index i of buf as float32.
func getFloat32(t ElementType, buf []byte, i int) (float32, error) {
	switch t {
	case ElementTypeFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])), nil
	case ElementTypeFloat64:
		return float32(math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))), nil
	case ElementTypeFloat16:
		return float16.Frombits(binary.LittleEndian.Uint16(buf[i*2:])).Float32(), nil
	case ElementTypeInt8:
		return float32(int8(buf[i])), nil
	case ElementTypeUint8, ElementTypeBool:
		return float32(buf[i]), nil
	case ElementTypeInt16:
		return float32(int16(binary.LittleEndian.Uint16(buf[i*2:]))), nil
	case ElementTypeUint16:
		return float32(binary.LittleEndian.Uint16(buf[i*2:])), nil
	case ElementTypeInt32:
		return float32(int32(binary.LittleEndian.Uint32(buf[i*4:]))), nil
	case ElementTypeUint32:
		return float32(binary.LittleEndian.Uint32(buf[i*4:])), nil
	case ElementTypeInt64:
		return float32(int64(binary.LittleEndian.Uint64(buf[i*8:]))), nil
	case ElementTypeUint64:
		return float32(binary.LittleEndian.Uint64(buf[i*8:])), nil
	default:
		return 0, fmt.Errorf("unsupported element type %s", t)
	}
}
