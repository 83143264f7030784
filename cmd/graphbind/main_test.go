package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedoc-inc/graphbind/binding"
	"github.com/benedoc-inc/graphbind/internal/testmodels"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ONNXRUNTIME_LIB_PATH", "")
	t.Setenv("GRAPHBIND_BACKEND", "")

	var out, errOut bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeMNIST(t *testing.T) string {
	t.Helper()
	path, err := testmodels.Write(t.TempDir(), "mnist.onnx", testmodels.MNIST())
	require.NoError(t, err)
	return path
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", writeMNIST(t))
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Regexp(t, testmodels.MNISTInput+`\s+input\s+float32\s+\[\?,1,28,28\]`, out)
	assert.Regexp(t, testmodels.MNISTOutput+`\s+output`, out)
	assert.Regexp(t, `fc\.W\s+initializer`, out)
}

func TestInspectKindFilter(t *testing.T) {
	out, err := execute(t, "inspect", "--kind", "output", writeMNIST(t))
	require.NoError(t, err)

	assert.Contains(t, out, testmodels.MNISTOutput)
	assert.NotContains(t, out, testmodels.MNISTInput)
}

func TestInspectMissingFile(t *testing.T) {
	_, err := execute(t, "inspect", filepath.Join(t.TempDir(), "missing.onnx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.onnx")
}

func TestRunMNIST(t *testing.T) {
	const batch = 10
	model := writeMNIST(t)

	images := testmodels.MNISTImages(batch)
	raw := make([]byte, 4*len(images))
	for i, v := range images {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	data := filepath.Join(t.TempDir(), "images.bin")
	require.NoError(t, os.WriteFile(data, raw, 0o644))

	out, err := execute(t, "run", model,
		"--backend", "ref",
		"--input", testmodels.MNISTInput+"=10x1x28x28",
		"--data", testmodels.MNISTInput+"="+data,
		"--output", testmodels.MNISTOutput,
		"--limit", "0",
	)
	require.NoError(t, err)

	line := strings.TrimSpace(out)
	prefix := testmodels.MNISTOutput + " float32 [10,10]: "
	require.True(t, strings.HasPrefix(line, prefix), "unexpected output %q", line)
	fields := strings.Fields(strings.TrimPrefix(line, prefix))
	assert.Len(t, fields, batch*10)
}

func TestRunDefaultsToGraphOutputs(t *testing.T) {
	out, err := execute(t, "run", writeMNIST(t), "--input", testmodels.MNISTInput+"=2,1,28,28", "--limit", "3", "--repeat", "2")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, testmodels.MNISTOutput+" float32 [2,10]: "), "unexpected output %q", out)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "..."))
}

func TestRunErrors(t *testing.T) {
	model := writeMNIST(t)
	short := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(short, make([]byte, 12), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no inputs", []string{"run", model}, "--input is required"},
		{"bad spec", []string{"run", model, "--input", "x"}, "want NAME=DIMS"},
		{"bad dim", []string{"run", model, "--input", "x=1xa"}, "not an integer"},
		{"unknown input", []string{"run", model, "--input", "nope=1x3"}, "variable not found: nope"},
		{"non-positive dim", []string{"run", model, "--input", testmodels.MNISTInput + "=0x1x28x28"}, "arg 2"},
		{"unknown backend", []string{"run", model, "--engine", "ref", "--backend", "cuda", "--input", testmodels.MNISTInput + "=1x1x28x28"}, "unsupported backend"},
		{"unknown engine", []string{"run", model, "--engine", "tpu", "--input", "x=1"}, "unknown engine"},
		{"short data", []string{"run", model, "--input", testmodels.MNISTInput + "=1x1x28x28", "--data", testmodels.MNISTInput + "=" + short}, "too short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunBackendConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "backend.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("backendName: ref\n"), 0o644))

	out, err := execute(t, "run", writeMNIST(t), "--config", cfg, "--input", testmodels.MNISTInput+"=1x1x28x28", "--fill", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "[1,10]")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "graphbind version dev")
	assert.Contains(t, out, "onnxruntime: not configured")
}

func TestParseInputs(t *testing.T) {
	decls, err := parseInputs([]string{"a=1x3", "b=2,4,8"})
	require.NoError(t, err)
	assert.Equal(t, []binding.InputDeclaration{
		{Name: "a", Dims: []int64{1, 3}},
		{Name: "b", Dims: []int64{2, 4, 8}},
	}, decls)
}

func TestEngineName(t *testing.T) {
	tests := []struct {
		engine, backend, libPath string
		want                     string
	}{
		{"auto", "", "", engineReference},
		{"auto", "", "/usr/lib/libonnxruntime.so", engineONNXRuntime},
		{"auto", "ref", "/usr/lib/libonnxruntime.so", engineReference},
		{"auto", "cuda", "", engineReference},
		{"onnxruntime", "", "", engineONNXRuntime},
		{"reference", "cuda", "", engineReference},
	}
	for _, tt := range tests {
		t.Setenv("ONNXRUNTIME_LIB_PATH", tt.libPath)
		t.Setenv("GRAPHBIND_BACKEND", "")
		g := &globalFlags{engine: tt.engine}
		got, err := g.engineName(binding.BackendConfig{BackendName: tt.backend})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "engine=%s backend=%s lib=%q", tt.engine, tt.backend, tt.libPath)
	}
}

func TestFormatDims(t *testing.T) {
	assert.Equal(t, "unknown", formatDims(nil))
	assert.Equal(t, "[]", formatDims([]int64{}))
	assert.Equal(t, "[?,3]", formatDims([]int64{-1, 3}))
}
