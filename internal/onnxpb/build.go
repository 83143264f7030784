package onnxpb

// TensorInfo returns a ValueInfo for a tensor of elemType. Negative dims
// become symbolic dimensions named after their position.
func TensorInfo(name string, elemType int32, dims ...int64) *ValueInfo {
	v := &ValueInfo{Name: name, ElemType: elemType, ShapeKnown: true, Shape: make([]Dim, len(dims))}
	for i, d := range dims {
		if d < 0 {
			v.Shape[i] = Dim{Param: symbolicDim(i)}
			continue
		}
		v.Shape[i] = Dim{Value: d}
	}
	return v
}

func symbolicDim(i int) string {
	if i == 0 {
		return "N"
	}
	return "d" + string(rune('0'+i%10))
}

// FloatTensor returns a FLOAT initializer.
func FloatTensor(name string, dims []int64, data []float32) *Tensor {
	return &Tensor{Name: name, Dims: dims, DataType: DataTypeFloat, FloatData: data}
}

// Int64Tensor returns an INT64 initializer.
func Int64Tensor(name string, dims []int64, data []int64) *Tensor {
	return &Tensor{Name: name, Dims: dims, DataType: DataTypeInt64, Int64Data: data}
}

// IntAttr returns an INT attribute.
func IntAttr(name string, v int64) *Attribute {
	return &Attribute{Name: name, Type: AttributeInt, I: v}
}

// FloatAttr returns a FLOAT attribute.
func FloatAttr(name string, v float32) *Attribute {
	return &Attribute{Name: name, Type: AttributeFloat, F: v}
}

// IntsAttr returns an INTS attribute.
func IntsAttr(name string, vs ...int64) *Attribute {
	return &Attribute{Name: name, Type: AttributeInts, Ints: vs}
}

// NewModel wraps g in a Model with the default opset.
func NewModel(g *Graph) *Model {
	return &Model{
		IRVersion:    8,
		ProducerName: "graphbind",
		Graph:        g,
		OpsetImports: []OperatorSetID{{Version: 13}},
	}
}
