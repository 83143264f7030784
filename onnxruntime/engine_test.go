package onnxruntime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedoc-inc/graphbind/binding"
	"github.com/benedoc-inc/graphbind/internal/testmodels"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	runtime := newTestRuntime(t)
	return NewEngine(runtime, newTestEnv(t, runtime))
}

func TestSessionOptions(t *testing.T) {
	opts, providers, err := sessionOptions(binding.BackendConfig{
		BackendName: "cuda",
		Params: map[string]string{
			ParamIntraOpNumThreads: "4",
			ParamInterOpNumThreads: "2",
			ParamGraphOptimization: "basic",
			ParamExecutionMode:     "parallel",
			"device_id":            "1",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, opts.IntraOpNumThreads)
	assert.Equal(t, 2, opts.InterOpNumThreads)
	require.NotNil(t, opts.GraphOptimization)
	assert.Equal(t, GraphOptimizationBasic, *opts.GraphOptimization)
	assert.Equal(t, ExecutionModeParallel, opts.ExecutionMode)
	assert.Equal(t, []ExecutionProvider{{Name: "CUDAExecutionProvider", Options: map[string]string{"device_id": "1"}}}, providers)

	opts, providers, err = sessionOptions(binding.BackendConfig{BackendName: "cpu"})
	require.NoError(t, err)
	assert.Nil(t, providers)
	assert.Nil(t, opts.GraphOptimization)

	for _, params := range []map[string]string{
		{ParamIntraOpNumThreads: "many"},
		{ParamInterOpNumThreads: "-1"},
		{ParamGraphOptimization: "max"},
		{ParamExecutionMode: "eager"},
	} {
		_, _, err := sessionOptions(binding.BackendConfig{Params: params})
		assert.Error(t, err, "params %v", params)
	}
}

func TestEngineVariables(t *testing.T) {
	e := newTestEngine(t)

	g, err := e.LoadGraphBytes(context.Background(), "mnist", testmodels.MNIST())
	require.NoError(t, err)
	defer g.Close()

	kinds := make(map[string]binding.VariableKind)
	for _, v := range g.Variables() {
		kinds[v.Name] = v.Kind
	}
	assert.Equal(t, binding.VariableInput, kinds[testmodels.MNISTInput])
	assert.Equal(t, binding.VariableOutput, kinds[testmodels.MNISTOutput])
	assert.Equal(t, binding.VariableIntermediate, kinds[testmodels.MNISTHidden])
	assert.Equal(t, binding.VariableInitializer, kinds["fc.W"])
	assert.Equal(t, binding.VariableInitializer, kinds["fc.b"])

	var input binding.Variable
	for _, v := range g.Variables() {
		if v.Name == testmodels.MNISTInput {
			input = v
		}
	}
	assert.Equal(t, binding.ElementTypeFloat32, input.ElementType)
	assert.Equal(t, []int64{-1, 1, 28, 28}, input.Dims)
}

func TestEngineLoadGraphErrors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.LoadGraph(context.Background(), "/nonexistent/model.onnx")
	assert.ErrorContains(t, err, "failed to read model")

	_, err = e.LoadGraphBytes(context.Background(), "junk", []byte{0xff, 0xff, 0xff})
	assert.ErrorContains(t, err, "junk")
}

func loadRuntime(t *testing.T, e *Engine, name string, data []byte) *binding.Builder {
	t.Helper()
	rt := binding.New(e)
	b, err := rt.LoadBytes(context.Background(), name, data).Await(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestEngineMNIST(t *testing.T) {
	const batch = 10
	b := loadRuntime(t, newTestEngine(t), "mnist", testmodels.MNIST())

	require.NoError(t, b.AddInput(testmodels.MNISTInput, batch, 1, 28, 28))
	require.NoError(t, b.AddOutput(testmodels.MNISTOutput))
	require.NoError(t, b.AddOutput(testmodels.MNISTHidden))
	m, err := b.Compile(binding.BackendConfig{BackendName: "cpu"})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.SetInputData(testmodels.MNISTInput, testmodels.MNISTImages(batch)))
	require.NoError(t, m.Run(context.Background()).Err())

	out, err := m.Profile(testmodels.MNISTOutput)
	require.NoError(t, err)
	assert.Equal(t, []int64{batch, 10}, out.Dims())
	scores, err := out.Float32s()
	require.NoError(t, err)
	for i := 0; i < batch; i++ {
		row := scores[i*10 : (i+1)*10]
		best := 0
		for c, v := range row {
			if v > row[best] {
				best = c
			}
		}
		assert.Equal(t, i%10, best, "image %d", i)
	}

	hidden, err := m.Profile(testmodels.MNISTHidden)
	require.NoError(t, err)
	assert.Equal(t, []int64{batch, 10}, hidden.Dims())
	h, err := hidden.Float32s()
	require.NoError(t, err)
	assert.InDelta(t, 10, h[0], 1e-5)
}

func TestEngineInitializerOverride(t *testing.T) {
	b := loadRuntime(t, newTestEngine(t), "mnist", testmodels.MNIST())

	require.NoError(t, b.AddInput(testmodels.MNISTInput, 1, 1, 28, 28))
	require.NoError(t, b.AddInput("fc.b", 10))
	require.NoError(t, b.AddOutput(testmodels.MNISTHidden))
	m, err := b.Compile(binding.BackendConfig{})
	require.NoError(t, err)
	defer m.Close()

	bias := make([]float32, 10)
	for i := range bias {
		bias[i] = float32(i)
	}
	require.NoError(t, m.SetInputData("fc.b", bias))
	require.NoError(t, m.Run(context.Background()).Err())

	hidden, err := m.Profile(testmodels.MNISTHidden)
	require.NoError(t, err)
	h, err := hidden.Float32s()
	require.NoError(t, err)
	assert.InDeltaSlice(t, bias, h, 1e-5)
}

func TestEngineAddRelu(t *testing.T) {
	b := loadRuntime(t, newTestEngine(t), "add_relu", testmodels.AddRelu())

	require.NoError(t, b.AddInput("a", 2, 3))
	require.NoError(t, b.AddInput("b", 2, 3))
	require.NoError(t, b.AddOutput("out"))
	require.NoError(t, b.AddOutput("sum"))
	m, err := b.Compile(binding.BackendConfig{Params: map[string]string{ParamIntraOpNumThreads: "1"}})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.SetInputData("a", []float32{1, -2, 3, -4, 5, -6}))
	require.NoError(t, m.SetInputData("b", []float32{0, 0, 0, 1, 1, 1}))
	require.NoError(t, m.Run(context.Background()).Err())

	out, err := m.Profile("out")
	require.NoError(t, err)
	got, err := binding.View[float32](out)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 3, 0, 6, 0}, got)

	sum, err := m.Profile("sum")
	require.NoError(t, err)
	got, err = binding.View[float32](sum)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2, 3, -3, 6, -5}, got)
}

func TestEngineTwoModelsConcurrently(t *testing.T) {
	b := loadRuntime(t, newTestEngine(t), "add_relu", testmodels.AddRelu())

	require.NoError(t, b.AddInput("a", 1, 3))
	require.NoError(t, b.AddInput("b", 1, 3))
	require.NoError(t, b.AddOutput("out"))
	m1, err := b.Compile(binding.BackendConfig{})
	require.NoError(t, err)
	defer m1.Close()
	m2, err := b.Compile(binding.BackendConfig{})
	require.NoError(t, err)
	defer m2.Close()

	require.NoError(t, m1.SetInputData("a", []float32{1, 2, 3}))
	require.NoError(t, m2.SetInputData("a", []float32{4, 5, 6}))
	require.NoError(t, binding.RunAll(context.Background(), m1, m2))

	for m, want := range map[*binding.Model][]float32{m1: {1, 2, 3}, m2: {4, 5, 6}} {
		p, err := m.Profile("out")
		require.NoError(t, err)
		got, err := p.Float32s()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestEngineUnknownProviderFallsBack(t *testing.T) {
	b := loadRuntime(t, newTestEngine(t), "add_relu", testmodels.AddRelu())

	require.NoError(t, b.AddInput("a", 1, 3))
	require.NoError(t, b.AddInput("b", 1, 3))
	require.NoError(t, b.AddOutput("out"))
	m, err := b.Compile(binding.BackendConfig{BackendName: "NoSuchExecutionProvider"})
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.Run(context.Background()).Err())
}
