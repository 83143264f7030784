// Package onnxpb reads and writes the subset of the ONNX protobuf schema that
// graphbind needs: models, graphs, nodes, attributes, tensors, and value
// infos. Unknown fields are skipped.
package onnxpb

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Tensor data types, matching TensorProto.DataType.
const (
	DataTypeUndefined int32 = 0
	DataTypeFloat     int32 = 1
	DataTypeUint8     int32 = 2
	DataTypeInt8      int32 = 3
	DataTypeUint16    int32 = 4
	DataTypeInt16     int32 = 5
	DataTypeInt32     int32 = 6
	DataTypeInt64     int32 = 7
	DataTypeString    int32 = 8
	DataTypeBool      int32 = 9
	DataTypeFloat16   int32 = 10
	DataTypeDouble    int32 = 11
	DataTypeUint32    int32 = 12
	DataTypeUint64    int32 = 13
)

// AttributeType matches AttributeProto.AttributeType.
type AttributeType int32

const (
	AttributeUndefined AttributeType = 0
	AttributeFloat     AttributeType = 1
	AttributeInt       AttributeType = 2
	AttributeString    AttributeType = 3
	AttributeTensor    AttributeType = 4
	AttributeGraph     AttributeType = 5
	AttributeFloats    AttributeType = 6
	AttributeInts      AttributeType = 7
	AttributeStrings   AttributeType = 8
)

// Model is a decoded ModelProto.
type Model struct {
	IRVersion       int64
	ProducerName    string
	ProducerVersion string
	Domain          string
	ModelVersion    int64
	DocString       string
	Graph           *Graph
	OpsetImports    []OperatorSetID
}

// OperatorSetID is a decoded OperatorSetIdProto.
type OperatorSetID struct {
	Domain  string
	Version int64
}

// Graph is a decoded GraphProto.
type Graph struct {
	Name         string
	Nodes        []*Node
	Initializers []*Tensor
	DocString    string
	Inputs       []*ValueInfo
	Outputs      []*ValueInfo
	ValueInfo    []*ValueInfo
}

// Node is a decoded NodeProto.
type Node struct {
	Inputs     []string
	Outputs    []string
	Name       string
	OpType     string
	Domain     string
	DocString  string
	Attributes []*Attribute
}

// Attribute returns the named attribute, or nil.
func (n *Node) Attribute(name string) *Attribute {
	for _, a := range n.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AttrInt returns the named int attribute or fallback.
func (n *Node) AttrInt(name string, fallback int64) int64 {
	if a := n.Attribute(name); a != nil {
		return a.I
	}
	return fallback
}

// AttrFloat returns the named float attribute or fallback.
func (n *Node) AttrFloat(name string, fallback float32) float32 {
	if a := n.Attribute(name); a != nil {
		return a.F
	}
	return fallback
}

// AttrInts returns the named ints attribute or nil.
func (n *Node) AttrInts(name string) []int64 {
	if a := n.Attribute(name); a != nil {
		return a.Ints
	}
	return nil
}

// Attribute is a decoded AttributeProto. Subgraph attributes are skipped.
type Attribute struct {
	Name    string
	Type    AttributeType
	F       float32
	I       int64
	S       []byte
	T       *Tensor
	Floats  []float32
	Ints    []int64
	Strings [][]byte
}

// Tensor is a decoded TensorProto. Only one of the data fields is normally
// populated.
type Tensor struct {
	Name       string
	Dims       []int64
	DataType   int32
	FloatData  []float32
	Int32Data  []int32
	Int64Data  []int64
	DoubleData []float64
	RawData    []byte
}

// Float32s returns the tensor contents as float32. Only FLOAT tensors are
// supported.
func (t *Tensor) Float32s() ([]float32, error) {
	if t.DataType != DataTypeFloat {
		return nil, fmt.Errorf("tensor %q has data type %d, not float", t.Name, t.DataType)
	}
	if t.RawData == nil {
		return t.FloatData, nil
	}
	if len(t.RawData)%4 != 0 {
		return nil, fmt.Errorf("tensor %q raw data length %d is not a multiple of 4", t.Name, len(t.RawData))
	}
	out := make([]float32, len(t.RawData)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.RawData[i*4:]))
	}
	return out, nil
}

// Int64s returns the tensor contents as int64. INT64 and INT32 tensors are
// supported.
func (t *Tensor) Int64s() ([]int64, error) {
	switch t.DataType {
	case DataTypeInt64:
		if t.RawData == nil {
			return t.Int64Data, nil
		}
		if len(t.RawData)%8 != 0 {
			return nil, fmt.Errorf("tensor %q raw data length %d is not a multiple of 8", t.Name, len(t.RawData))
		}
		out := make([]int64, len(t.RawData)/8)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(t.RawData[i*8:]))
		}
		return out, nil
	case DataTypeInt32:
		if t.RawData == nil {
			out := make([]int64, len(t.Int32Data))
			for i, v := range t.Int32Data {
				out[i] = int64(v)
			}
			return out, nil
		}
		if len(t.RawData)%4 != 0 {
			return nil, fmt.Errorf("tensor %q raw data length %d is not a multiple of 4", t.Name, len(t.RawData))
		}
		out := make([]int64, len(t.RawData)/4)
		for i := range out {
			out[i] = int64(int32(binary.LittleEndian.Uint32(t.RawData[i*4:])))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tensor %q has data type %d, not an integer type", t.Name, t.DataType)
	}
}

// ValueInfo is a decoded ValueInfoProto for a tensor-typed value.
// ElemType is DataTypeUndefined for non-tensor types.
type ValueInfo struct {
	Name       string
	DocString  string
	ElemType   int32
	Shape      []Dim
	ShapeKnown bool
}

// Dim is one dimension of a tensor shape: either a fixed Value or a symbolic
// Param. A Dim with neither set is unknown.
type Dim struct {
	Value int64
	Param string
}

// Dims returns the shape as int64s with -1 for symbolic or unknown
// dimensions, or nil when the shape is unknown.
func (v *ValueInfo) Dims() []int64 {
	if !v.ShapeKnown {
		return nil
	}
	dims := make([]int64, len(v.Shape))
	for i, d := range v.Shape {
		dims[i] = -1
		if d.Param == "" && d.Value > 0 {
			dims[i] = d.Value
		}
	}
	return dims
}

// ReadFile decodes the model file at path.
func ReadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
