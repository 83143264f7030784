package onnxpb

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// field is one decoded wire field. Scalars land in v, length-delimited
// payloads in b.
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	b   []byte
}

func (f field) str() string { return string(f.b) }

func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.v = uint64(v)
		case protowire.Fixed64Type:
			f.v, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

var errWireType = errors.New("unexpected wire type")

func appendVarints(dst []int64, f field) ([]int64, error) {
	switch f.typ {
	case protowire.VarintType:
		return append(dst, int64(f.v)), nil
	case protowire.BytesType:
		b := f.b
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			dst = append(dst, int64(v))
			b = b[n:]
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("field %d: %w", f.num, errWireType)
	}
}

func appendFloats(dst []float32, f field) ([]float32, error) {
	switch f.typ {
	case protowire.Fixed32Type:
		return append(dst, math.Float32frombits(uint32(f.v))), nil
	case protowire.BytesType:
		b := f.b
		for len(b) > 0 {
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			dst = append(dst, math.Float32frombits(v))
			b = b[n:]
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("field %d: %w", f.num, errWireType)
	}
}

func appendDoubles(dst []float64, f field) ([]float64, error) {
	switch f.typ {
	case protowire.Fixed64Type:
		return append(dst, math.Float64frombits(f.v)), nil
	case protowire.BytesType:
		b := f.b
		for len(b) > 0 {
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			dst = append(dst, math.Float64frombits(v))
			b = b[n:]
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("field %d: %w", f.num, errWireType)
	}
}

// Unmarshal decodes a serialized ModelProto.
func Unmarshal(b []byte) (*Model, error) {
	m := &Model{}
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.IRVersion = int64(f.v)
		case 2:
			m.ProducerName = f.str()
		case 3:
			m.ProducerVersion = f.str()
		case 4:
			m.Domain = f.str()
		case 5:
			m.ModelVersion = int64(f.v)
		case 6:
			m.DocString = f.str()
		case 7:
			// A repeated graph field merges into the first one.
			if m.Graph == nil {
				m.Graph = &Graph{}
			}
			if err := unmarshalGraph(m.Graph, f.b); err != nil {
				return fmt.Errorf("graph: %w", err)
			}
		case 8:
			var op OperatorSetID
			err := walk(f.b, func(f field) error {
				switch f.num {
				case 1:
					op.Domain = f.str()
				case 2:
					op.Version = int64(f.v)
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("opset_import: %w", err)
			}
			m.OpsetImports = append(m.OpsetImports, op)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if m.Graph == nil {
		return nil, errors.New("failed to decode model: no graph")
	}
	return m, nil
}

func unmarshalGraph(g *Graph, b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			n, err := unmarshalNode(f.b)
			if err != nil {
				return fmt.Errorf("node %d: %w", len(g.Nodes), err)
			}
			g.Nodes = append(g.Nodes, n)
		case 2:
			g.Name = f.str()
		case 5:
			t, err := unmarshalTensor(f.b)
			if err != nil {
				return fmt.Errorf("initializer %d: %w", len(g.Initializers), err)
			}
			g.Initializers = append(g.Initializers, t)
		case 10:
			g.DocString = f.str()
		case 11, 12, 13:
			v, err := unmarshalValueInfo(f.b)
			if err != nil {
				return fmt.Errorf("value info: %w", err)
			}
			switch f.num {
			case 11:
				g.Inputs = append(g.Inputs, v)
			case 12:
				g.Outputs = append(g.Outputs, v)
			default:
				g.ValueInfo = append(g.ValueInfo, v)
			}
		}
		return nil
	})
}

func unmarshalNode(b []byte) (*Node, error) {
	n := &Node{}
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			n.Inputs = append(n.Inputs, f.str())
		case 2:
			n.Outputs = append(n.Outputs, f.str())
		case 3:
			n.Name = f.str()
		case 4:
			n.OpType = f.str()
		case 5:
			a, err := unmarshalAttribute(f.b)
			if err != nil {
				return err
			}
			n.Attributes = append(n.Attributes, a)
		case 6:
			n.DocString = f.str()
		case 7:
			n.Domain = f.str()
		}
		return nil
	})
	return n, err
}

func unmarshalAttribute(b []byte) (*Attribute, error) {
	a := &Attribute{}
	err := walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			a.Name = f.str()
		case 2:
			a.F = math.Float32frombits(uint32(f.v))
		case 3:
			a.I = int64(f.v)
		case 4:
			a.S = f.b
		case 5:
			a.T, err = unmarshalTensor(f.b)
		case 7:
			a.Floats, err = appendFloats(a.Floats, f)
		case 8:
			a.Ints, err = appendVarints(a.Ints, f)
		case 9:
			a.Strings = append(a.Strings, f.b)
		case 20:
			a.Type = AttributeType(f.v)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
	}
	return a, nil
}

func unmarshalTensor(b []byte) (*Tensor, error) {
	t := &Tensor{}
	err := walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			t.Dims, err = appendVarints(t.Dims, f)
		case 2:
			t.DataType = int32(f.v)
		case 4:
			t.FloatData, err = appendFloats(t.FloatData, f)
		case 5:
			var vs []int64
			vs, err = appendVarints(nil, f)
			for _, v := range vs {
				t.Int32Data = append(t.Int32Data, int32(v))
			}
		case 7:
			t.Int64Data, err = appendVarints(t.Int64Data, f)
		case 8:
			t.Name = f.str()
		case 9:
			t.RawData = f.b
		case 10:
			t.DoubleData, err = appendDoubles(t.DoubleData, f)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", t.Name, err)
	}
	return t, nil
}

func unmarshalValueInfo(b []byte) (*ValueInfo, error) {
	v := &ValueInfo{}
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			v.Name = f.str()
		case 2:
			return unmarshalType(f.b, v)
		case 3:
			v.DocString = f.str()
		}
		return nil
	})
	return v, err
}

// unmarshalType decodes TypeProto, keeping only tensor_type.
func unmarshalType(b []byte, v *ValueInfo) error {
	return walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		return walk(f.b, func(f field) error {
			switch f.num {
			case 1:
				v.ElemType = int32(f.v)
			case 2:
				v.ShapeKnown = true
				return walk(f.b, func(f field) error {
					if f.num != 1 {
						return nil
					}
					var d Dim
					err := walk(f.b, func(f field) error {
						switch f.num {
						case 1:
							d.Value = int64(f.v)
						case 2:
							d.Param = f.str()
						}
						return nil
					})
					v.Shape = append(v.Shape, d)
					return err
				})
			}
			return nil
		})
	})
}
