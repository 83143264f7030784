// Package binding turns a loaded graph plus named input and output
// declarations into a runnable Model whose input and output buffers are
// accessed in place through Profiles.
//
// A typical flow loads a graph, declares variables, compiles, fills inputs,
// and runs:
//
//	rt := binding.New(reference.NewEngine())
//	builder, err := rt.Load(ctx, "mnist.onnx").Await(ctx)
//	builder.AddInput("input", 1, 1, 28, 28)
//	builder.AddOutput("output")
//	model, err := builder.Compile(binding.BackendConfig{BackendName: "ref"})
//	in, _ := model.Profile("input")
//	x, _ := in.Float32s()
//	copy(x, pixels)
//	err = model.Run(ctx).Err()
//
// Load and Run are asynchronous. Each returns a Future and has a callback
// form (LoadFunc, RunFunc) with the same semantics.
package binding
