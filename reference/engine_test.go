package reference

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/sync/errgroup"

	"github.com/benedoc-inc/graphbind/binding"
	"github.com/benedoc-inc/graphbind/internal/onnxpb"
	"github.com/benedoc-inc/graphbind/internal/testmodels"
)

type feed struct {
	dims []int64
	data []float32
}

func compileGraph(t *testing.T, g *onnxpb.Graph, inputs map[string]feed, output string) binding.EngineModel {
	t.Helper()
	e := NewEngine()
	eg, err := e.LoadGraphBytes(context.Background(), "test", onnxpb.Marshal(onnxpb.NewModel(g)))
	if err != nil {
		t.Fatalf("LoadGraphBytes failed: %v", err)
	}
	t.Cleanup(func() { eg.Close() })

	var decls []binding.InputDeclaration
	for _, in := range g.Inputs {
		f, ok := inputs[in.Name]
		if !ok {
			continue
		}
		decls = append(decls, binding.InputDeclaration{Name: in.Name, Dims: f.dims})
	}
	m, err := e.Compile(eg, decls, []string{output}, binding.BackendConfig{BackendName: BackendName})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	for name, f := range inputs {
		writeFloats(t, m, name, f.data)
	}
	return m
}

func writeFloats(t *testing.T, m binding.EngineModel, name string, data []float32) {
	t.Helper()
	_, _, buf, err := m.Buffer(name)
	if err != nil {
		t.Fatalf("Buffer(%s) failed: %v", name, err)
	}
	if len(buf) != 4*len(data) {
		t.Fatalf("Buffer(%s) has %d bytes, want %d", name, len(buf), 4*len(data))
	}
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

func readFloats(t *testing.T, m binding.EngineModel, name string) ([]int64, []float32) {
	t.Helper()
	_, dims, buf, err := m.Buffer(name)
	if err != nil {
		t.Fatalf("Buffer(%s) failed: %v", name, err)
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return dims, out
}

func runGraph(t *testing.T, g *onnxpb.Graph, inputs map[string]feed, output string) ([]int64, []float32) {
	t.Helper()
	m := compileGraph(t, g, inputs, output)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return readFloats(t, m, output)
}

func singleNode(op string, inputs []string, attrs ...*onnxpb.Attribute) *onnxpb.Graph {
	g := &onnxpb.Graph{
		Name:    op,
		Nodes:   []*onnxpb.Node{{Name: strings.ToLower(op), OpType: op, Inputs: inputs, Outputs: []string{"y"}, Attributes: attrs}},
		Outputs: []*onnxpb.ValueInfo{onnxpb.TensorInfo("y", onnxpb.DataTypeFloat)},
	}
	for _, name := range inputs {
		g.Inputs = append(g.Inputs, onnxpb.TensorInfo(name, onnxpb.DataTypeFloat))
	}
	g.Outputs[0].ShapeKnown = false
	for _, in := range g.Inputs {
		in.ShapeKnown = false
	}
	return g
}

var approx = cmpopts.EquateApprox(0, 1e-5)

func TestElementwise(t *testing.T) {
	tests := []struct {
		op   string
		a, b feed
		want []float32
		dims []int64
	}{
		{"Add", feed{[]int64{2, 3}, []float32{1, 2, 3, 4, 5, 6}}, feed{[]int64{3}, []float32{10, 20, 30}}, []float32{11, 22, 33, 14, 25, 36}, []int64{2, 3}},
		{"Sub", feed{[]int64{2, 1}, []float32{1, 2}}, feed{[]int64{1, 3}, []float32{1, 2, 3}}, []float32{0, -1, -2, 1, 0, -1}, []int64{2, 3}},
		{"Mul", feed{[]int64{3}, []float32{1, 2, 3}}, feed{[]int64{1}, []float32{2}}, []float32{2, 4, 6}, []int64{3}},
		{"Div", feed{[]int64{2}, []float32{1, 9}}, feed{[]int64{2}, []float32{2, 3}}, []float32{0.5, 3}, []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			dims, got := runGraph(t, singleNode(tt.op, []string{"a", "b"}), map[string]feed{"a": tt.a, "b": tt.b}, "y")
			if diff := cmp.Diff(tt.dims, dims); diff != "" {
				t.Errorf("dims mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnary(t *testing.T) {
	x := feed{[]int64{4}, []float32{-2, -0.5, 0, 1.5}}
	tests := []struct {
		op   string
		want []float32
	}{
		{"Relu", []float32{0, 0, 0, 1.5}},
		{"Identity", []float32{-2, -0.5, 0, 1.5}},
		{"Sigmoid", []float32{0.11920292, 0.37754067, 0.5, 0.81757448}},
		{"Tanh", []float32{-0.96402758, -0.46211716, 0, 0.90514825}},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			_, got := runGraph(t, singleNode(tt.op, []string{"x"}), map[string]feed{"x": x}, "y")
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSoftmax(t *testing.T) {
	_, got := runGraph(t, singleNode("Softmax", []string{"x"}),
		map[string]feed{"x": {[]int64{2, 3}, []float32{1, 2, 3, 1000, 1000, 1000}}}, "y")
	want := []float32{0.09003057, 0.24472847, 0.66524096, 1.0 / 3, 1.0 / 3, 1.0 / 3}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestGemm(t *testing.T) {
	g := singleNode("Gemm", []string{"a", "b", "c"},
		onnxpb.IntAttr("transB", 1),
		onnxpb.FloatAttr("alpha", 2),
		onnxpb.FloatAttr("beta", 0.5),
	)
	dims, got := runGraph(t, g, map[string]feed{
		"a": {[]int64{2, 3}, []float32{1, 2, 3, 4, 5, 6}},
		"b": {[]int64{2, 3}, []float32{1, 0, 0, 0, 1, 1}},
		"c": {[]int64{2}, []float32{10, 20}},
	}, "y")
	// A x B^T = [[1, 5], [4, 11]]
	want := []float32{2*1 + 5, 2*5 + 10, 2*4 + 5, 2*11 + 10}
	if diff := cmp.Diff([]int64{2, 2}, dims); diff != "" {
		t.Errorf("dims mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestMatMulBatched(t *testing.T) {
	dims, got := runGraph(t, singleNode("MatMul", []string{"a", "b"}), map[string]feed{
		"a": {[]int64{2, 1, 2}, []float32{1, 2, 3, 4}},
		"b": {[]int64{2, 2}, []float32{1, 1, 0, 1}},
	}, "y")
	if diff := cmp.Diff([]int64{2, 1, 2}, dims); diff != "" {
		t.Errorf("dims mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{1, 3, 3, 7}, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestConv(t *testing.T) {
	x := feed{[]int64{1, 1, 3, 3}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}}
	w := feed{[]int64{1, 1, 2, 2}, []float32{1, 1, 1, 1}}

	t.Run("valid", func(t *testing.T) {
		dims, got := runGraph(t, singleNode("Conv", []string{"x", "w", "b"}),
			map[string]feed{"x": x, "w": w, "b": {[]int64{1}, []float32{1}}}, "y")
		if diff := cmp.Diff([]int64{1, 1, 2, 2}, dims); diff != "" {
			t.Errorf("dims mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]float32{13, 17, 25, 29}, got); diff != "" {
			t.Errorf("output mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("padded strided", func(t *testing.T) {
		g := singleNode("Conv", []string{"x", "w"},
			onnxpb.IntsAttr("pads", 1, 1, 1, 1),
			onnxpb.IntsAttr("strides", 2, 2),
		)
		dims, got := runGraph(t, g, map[string]feed{"x": x, "w": w}, "y")
		if diff := cmp.Diff([]int64{1, 1, 2, 2}, dims); diff != "" {
			t.Errorf("dims mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]float32{1, 5, 11, 28}, got); diff != "" {
			t.Errorf("output mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestMaxPool(t *testing.T) {
	x := make([]float32, 16)
	for i := range x {
		x[i] = float32(i + 1)
	}
	g := singleNode("MaxPool", []string{"x"},
		onnxpb.IntsAttr("kernel_shape", 2, 2),
		onnxpb.IntsAttr("strides", 2, 2),
	)
	dims, got := runGraph(t, g, map[string]feed{"x": {[]int64{1, 1, 4, 4}, x}}, "y")
	if diff := cmp.Diff([]int64{1, 1, 2, 2}, dims); diff != "" {
		t.Errorf("dims mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{6, 8, 14, 16}, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTransposeFlattenReshape(t *testing.T) {
	x := feed{[]int64{2, 3}, []float32{1, 2, 3, 4, 5, 6}}

	dims, got := runGraph(t, singleNode("Transpose", []string{"x"}), map[string]feed{"x": x}, "y")
	if diff := cmp.Diff([]int64{3, 2}, dims); diff != "" {
		t.Errorf("transpose dims mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{1, 4, 2, 5, 3, 6}, got); diff != "" {
		t.Errorf("transpose output mismatch (-want +got):\n%s", diff)
	}

	dims, _ = runGraph(t, singleNode("Flatten", []string{"x"}, onnxpb.IntAttr("axis", 0)), map[string]feed{"x": x}, "y")
	if diff := cmp.Diff([]int64{1, 6}, dims); diff != "" {
		t.Errorf("flatten dims mismatch (-want +got):\n%s", diff)
	}

	g := singleNode("Reshape", []string{"x", "shape"})
	g.Inputs = g.Inputs[:1]
	g.Initializers = []*onnxpb.Tensor{onnxpb.Int64Tensor("shape", []int64{3}, []int64{0, -1, 1})}
	dims, got = runGraph(t, g, map[string]feed{"x": x}, "y")
	if diff := cmp.Diff([]int64{2, 3, 1}, dims); diff != "" {
		t.Errorf("reshape dims mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(x.data, got); diff != "" {
		t.Errorf("reshape output mismatch (-want +got):\n%s", diff)
	}
}

func TestConstant(t *testing.T) {
	g := &onnxpb.Graph{
		Nodes: []*onnxpb.Node{
			{OpType: "Constant", Outputs: []string{"k"}, Attributes: []*onnxpb.Attribute{
				{Name: "value", Type: onnxpb.AttributeTensor, T: onnxpb.FloatTensor("", []int64{2}, []float32{3, 4})},
			}},
			{OpType: "Mul", Inputs: []string{"x", "k"}, Outputs: []string{"y"}},
		},
		Inputs:  []*onnxpb.ValueInfo{onnxpb.TensorInfo("x", onnxpb.DataTypeFloat, 2)},
		Outputs: []*onnxpb.ValueInfo{onnxpb.TensorInfo("y", onnxpb.DataTypeFloat, 2)},
	}
	_, got := runGraph(t, g, map[string]feed{"x": {[]int64{2}, []float32{2, 2}}}, "y")
	if diff := cmp.Diff([]float32{6, 8}, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileErrors(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	load := func(g *onnxpb.Graph) binding.EngineGraph {
		eg, err := e.LoadGraphBytes(ctx, "test", onnxpb.Marshal(onnxpb.NewModel(g)))
		if err != nil {
			t.Fatalf("LoadGraphBytes failed: %v", err)
		}
		return eg
	}
	x := []binding.InputDeclaration{{Name: "x", Dims: []int64{2}}}

	tests := []struct {
		name    string
		graph   *onnxpb.Graph
		inputs  []binding.InputDeclaration
		backend string
		wantMsg string
	}{
		{"unsupported backend", singleNode("Relu", []string{"x"}), x, "cuda", "unsupported backend"},
		{"unsupported operator", singleNode("LSTM", []string{"x"}), x, "", "unsupported operator LSTM"},
		{"bad broadcast", singleNode("Add", []string{"x", "z"}), []binding.InputDeclaration{{Name: "x", Dims: []int64{2}}, {Name: "z", Dims: []int64{3}}}, "ref", "cannot be broadcast"},
		{"non-float input", &onnxpb.Graph{
			Nodes:   []*onnxpb.Node{{OpType: "Identity", Inputs: []string{"x"}, Outputs: []string{"y"}}},
			Inputs:  []*onnxpb.ValueInfo{onnxpb.TensorInfo("x", onnxpb.DataTypeInt32, 2)},
			Outputs: []*onnxpb.ValueInfo{onnxpb.TensorInfo("y", onnxpb.DataTypeInt32, 2)},
		}, x, "ref", "not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Compile(load(tt.graph), tt.inputs, []string{"y"}, binding.BackendConfig{BackendName: tt.backend})
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %v", tt.wantMsg, err)
			}
		})
	}

	if _, err := e.LoadGraphBytes(ctx, "junk", []byte("junk")); err == nil {
		t.Error("expected error for unparsable model")
	}
}

func TestVariables(t *testing.T) {
	eg, err := NewEngine().LoadGraphBytes(context.Background(), "mnist", testmodels.MNIST())
	if err != nil {
		t.Fatal(err)
	}
	kinds := map[string]binding.VariableKind{}
	for _, v := range eg.Variables() {
		kinds[v.Name] = v.Kind
	}
	want := map[string]binding.VariableKind{
		testmodels.MNISTInput:  binding.VariableInput,
		testmodels.MNISTHidden: binding.VariableIntermediate,
		testmodels.MNISTOutput: binding.VariableOutput,
		"fc.W":                 binding.VariableInitializer,
		"fc.b":                 binding.VariableInitializer,
		"flat":                 binding.VariableIntermediate,
		"fc.y":                 binding.VariableIntermediate,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
}

func TestModelsFromOneGraphRunConcurrently(t *testing.T) {
	e := NewEngine()
	eg, err := e.LoadGraphBytes(context.Background(), "add_relu", testmodels.AddRelu())
	if err != nil {
		t.Fatal(err)
	}
	decls := []binding.InputDeclaration{{Name: "a", Dims: []int64{1, 3}}, {Name: "b", Dims: []int64{1, 3}}}

	models := make([]binding.EngineModel, 8)
	for i := range models {
		m, err := e.Compile(eg, decls, []string{"out", "sum"}, binding.BackendConfig{})
		if err != nil {
			t.Fatal(err)
		}
		defer m.Close()
		v := float32(i)
		writeFloats(t, m, "a", []float32{v, -v, 1})
		writeFloats(t, m, "b", []float32{v, -v, -2})
		models[i] = m
	}

	var g errgroup.Group
	for _, m := range models {
		g.Go(func() error {
			for j := 0; j < 50; j++ {
				if err := m.Run(context.Background()); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	for i, m := range models {
		v := float32(i)
		_, out := readFloats(t, m, "out")
		_, sum := readFloats(t, m, "sum")
		if diff := cmp.Diff([]float32{2 * v, 0, 0}, out); diff != "" {
			t.Errorf("model %d out mismatch (-want +got):\n%s", i, diff)
		}
		if diff := cmp.Diff([]float32{2 * v, -2 * v, -1}, sum); diff != "" {
			t.Errorf("model %d sum mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestInitializerOutputIsPerModel(t *testing.T) {
	e := NewEngine()
	eg, err := e.LoadGraphBytes(context.Background(), "mnist", testmodels.MNIST())
	if err != nil {
		t.Fatal(err)
	}
	defer eg.Close()

	decls := []binding.InputDeclaration{{Name: testmodels.MNISTInput, Dims: []int64{1, 1, 28, 28}}}
	outputs := []string{"fc.W", testmodels.MNISTHidden}
	m1, err := e.Compile(eg, decls, outputs, binding.BackendConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer m1.Close()
	m2, err := e.Compile(eg, decls, outputs, binding.BackendConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer m2.Close()

	writeFloats(t, m2, testmodels.MNISTInput, testmodels.MNISTImages(1))
	if err := m2.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	_, hidden := readFloats(t, m2, testmodels.MNISTHidden)
	_, weights := readFloats(t, m2, "fc.W")

	_, _, buf, err := m1.Buffer("fc.W")
	if err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		buf[i] = 0x42
	}

	if _, got := readFloats(t, m2, "fc.W"); !cmp.Equal(weights, got) {
		t.Error("writing one model's fc.W changed another model's fc.W")
	}
	if err := m2.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, got := readFloats(t, m2, testmodels.MNISTHidden); !cmp.Equal(hidden, got) {
		t.Error("writing one model's fc.W changed another model's result")
	}

	m3, err := e.Compile(eg, decls, outputs, binding.BackendConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer m3.Close()
	if _, got := readFloats(t, m3, "fc.W"); !cmp.Equal(weights, got) {
		t.Error("writing one model's fc.W changed the graph's fc.W")
	}
}
