// Package onnxruntime binds the ONNX Runtime C API through purego and
// exposes it as a binding.Engine.
//
// The shared library is located from the path passed to NewRuntime, the
// ONNXRUNTIME_LIB_PATH environment variable, or the platform default name,
// in that order. No cgo is required.
//
//	rt, err := onnxruntime.NewRuntime("", 0)
//	if err != nil {
//		return err
//	}
//	defer rt.Close()
//
//	env, err := rt.NewEnv("graphbind", onnxruntime.LoggingLevelWarning)
//	if err != nil {
//		return err
//	}
//	defer env.Close()
//
//	b := binding.New(onnxruntime.NewEngine(rt, env))
//
// Each compiled model owns an ORT session and an IoBinding whose tensors are
// allocated once, so binding buffers alias ORT memory directly.
package onnxruntime
