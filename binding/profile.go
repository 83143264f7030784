package binding

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/x448/float16"
)

// Element is the set of Go types a Profile buffer can be viewed as.
type Element interface {
	float32 | float64 |
		int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		bool | float16.Float16
}

// Profile describes one declared variable of a Model together with a view of
// the buffer the engine reads from (inputs) or writes to (outputs). The
// buffer is owned by the Model; Profile never copies it.
//
// Views returned by Bytes and View alias engine memory and must not be used
// after the Model is closed. Use Borrow to hold a view in a way that Close
// waits for.
type Profile struct {
	model    *Model
	name     string
	kind     VariableKind
	elemType ElementType
	dims     []int64
	buf      []byte
}

// Name returns the variable name.
func (p *Profile) Name() string { return p.name }

// Kind returns VariableInput or VariableOutput.
func (p *Profile) Kind() VariableKind { return p.kind }

// ElementType returns the element type of the buffer.
func (p *Profile) ElementType() ElementType { return p.elemType }

// Dims returns a copy of the buffer dims.
func (p *Profile) Dims() []int64 { return slices.Clone(p.dims) }

// Len returns the number of elements, the product of Dims.
func (p *Profile) Len() int { return ElementCount(p.dims) }

// ByteLen returns the buffer size in bytes.
func (p *Profile) ByteLen() int { return p.Len() * p.elemType.Size() }

// Bytes returns the raw buffer.
func (p *Profile) Bytes() ([]byte, error) {
	if p.model.closed.Load() {
		return nil, ErrModelClosed
	}
	return p.buf, nil
}

// Float32s is shorthand for View[float32](p).
func (p *Profile) Float32s() ([]float32, error) {
	return View[float32](p)
}

// Borrow calls fn with the raw buffer while holding the model open. Close
// blocks until fn returns. fn must not call Close or Run on the same model.
func (p *Profile) Borrow(fn func(buf []byte) error) error {
	m := p.model
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed.Load() {
		return ErrModelClosed
	}
	return fn(p.buf)
}

// View returns the buffer of p as a []T without copying. T must match the
// buffer's element type.
func View[T Element](p *Profile) ([]T, error) {
	buf, err := p.Bytes()
	if err != nil {
		return nil, err
	}
	if want := elementTypeOf[T](); want != p.elemType {
		return nil, fmt.Errorf("failed to view %s: element type is %s, not %s", p.name, p.elemType, want)
	}
	if len(buf) == 0 {
		return []T{}, nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), p.Len()), nil
}

func elementTypeOf[T Element]() ElementType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return ElementTypeFloat32
	case float64:
		return ElementTypeFloat64
	case int8:
		return ElementTypeInt8
	case int16:
		return ElementTypeInt16
	case int32:
		return ElementTypeInt32
	case int64:
		return ElementTypeInt64
	case uint8:
		return ElementTypeUint8
	case float16.Float16:
		return ElementTypeFloat16
	case uint16:
		return ElementTypeUint16
	case uint32:
		return ElementTypeUint32
	case uint64:
		return ElementTypeUint64
	case bool:
		return ElementTypeBool
	default:
		return ElementTypeUndefined
	}
}
