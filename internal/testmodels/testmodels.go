// Package testmodels generates small ONNX models used by tests, examples,
// and the CLI smoke checks.
package testmodels

import (
	"os"
	"path/filepath"

	"github.com/benedoc-inc/graphbind/internal/onnxpb"
)

// Variable names of the MNIST model. They are the numeric names an exported
// Chainer MNIST graph carries.
const (
	MNISTInput  = "139900320569040"
	MNISTHidden = "139900320569488"
	MNISTOutput = "139898462888656"
)

// MNIST returns a classifier over [N,1,28,28] images producing [N,10]
// softmax scores. Class c scores the brightness of pixel c, so an image
// whose only lit pixel is c is classified as c.
func MNIST() []byte {
	w := make([]float32, 784*10)
	for c := 0; c < 10; c++ {
		w[c*10+c] = 10
	}
	return onnxpb.Marshal(onnxpb.NewModel(&onnxpb.Graph{
		Name: "mnist",
		Nodes: []*onnxpb.Node{
			{Name: "flatten", OpType: "Flatten", Inputs: []string{MNISTInput}, Outputs: []string{"flat"}, Attributes: []*onnxpb.Attribute{onnxpb.IntAttr("axis", 1)}},
			{Name: "fc", OpType: "MatMul", Inputs: []string{"flat", "fc.W"}, Outputs: []string{"fc.y"}},
			{Name: "bias", OpType: "Add", Inputs: []string{"fc.y", "fc.b"}, Outputs: []string{MNISTHidden}},
			{Name: "softmax", OpType: "Softmax", Inputs: []string{MNISTHidden}, Outputs: []string{MNISTOutput}, Attributes: []*onnxpb.Attribute{onnxpb.IntAttr("axis", -1)}},
		},
		Initializers: []*onnxpb.Tensor{
			onnxpb.FloatTensor("fc.W", []int64{784, 10}, w),
			onnxpb.FloatTensor("fc.b", []int64{10}, make([]float32, 10)),
		},
		Inputs:  []*onnxpb.ValueInfo{onnxpb.TensorInfo(MNISTInput, onnxpb.DataTypeFloat, -1, 1, 28, 28)},
		Outputs: []*onnxpb.ValueInfo{onnxpb.TensorInfo(MNISTOutput, onnxpb.DataTypeFloat, -1, 10)},
	}))
}

// MNISTImages returns n images of 28x28 pixels where image i lights pixel
// i%10 only.
func MNISTImages(n int) []float32 {
	data := make([]float32, n*28*28)
	for i := 0; i < n; i++ {
		data[i*28*28+i%10] = 1
	}
	return data
}

// AddRelu returns a model computing out = Relu(a + b) over [N,3] inputs with
// the intermediate sum exposed as "sum".
func AddRelu() []byte {
	return onnxpb.Marshal(onnxpb.NewModel(&onnxpb.Graph{
		Name: "add_relu",
		Nodes: []*onnxpb.Node{
			{Name: "add", OpType: "Add", Inputs: []string{"a", "b"}, Outputs: []string{"sum"}},
			{Name: "relu", OpType: "Relu", Inputs: []string{"sum"}, Outputs: []string{"out"}},
		},
		Inputs: []*onnxpb.ValueInfo{
			onnxpb.TensorInfo("a", onnxpb.DataTypeFloat, -1, 3),
			onnxpb.TensorInfo("b", onnxpb.DataTypeFloat, -1, 3),
		},
		Outputs: []*onnxpb.ValueInfo{onnxpb.TensorInfo("out", onnxpb.DataTypeFloat, -1, 3)},
	}))
}

// Write stores model data under dir as name and returns the path.
func Write(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
