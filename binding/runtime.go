package binding

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// Runtime loads graphs through an Engine and hands out Builders for them.
// A Runtime holds no mutable state and is safe for concurrent use.
type Runtime struct {
	engine Engine
	logger *slog.Logger
	opts   options
}

type options struct {
	logger *slog.Logger
	hooks  []Hook
}

// Option configures a Runtime or, passed to Compile, a single Model. Options
// given to Compile are applied after the Runtime's.
type Option func(*options)

// WithLogger sets the logger used for lifecycle events. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHooks appends hooks that observe every run.
func WithHooks(hooks ...Hook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// New creates a Runtime backed by engine.
func New(engine Engine, opts ...Option) *Runtime {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Runtime{engine: engine, logger: o.logger, opts: o}
}

// modelOptions returns the Runtime's options with opts applied on top.
func (r *Runtime) modelOptions(opts []Option) options {
	o := options{logger: r.opts.logger, hooks: slices.Clone(r.opts.hooks)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Engine returns the underlying engine.
func (r *Runtime) Engine() Engine {
	return r.engine
}

// Load parses the model file at path and returns a future resolving to a
// Builder for it.
//
// Example:
//
//	builder, err := rt.Load(ctx, "mnist.onnx").Await(ctx)
func (r *Runtime) Load(ctx context.Context, path string) *Future[*Builder] {
	return r.load(ctx, path, nil)
}

// LoadFunc is the callback form of Load. cb is invoked exactly once from a
// background goroutine.
func (r *Runtime) LoadFunc(ctx context.Context, path string, cb Callback[*Builder]) {
	r.load(ctx, path, cb)
}

func (r *Runtime) load(ctx context.Context, path string, cb Callback[*Builder]) *Future[*Builder] {
	if path == "" {
		return rejected(cb, invalidArg(1, "must be a non-empty model path"))
	}
	ctx = context.WithoutCancel(ctx)
	return dispatch(cb, func() (*Builder, error) {
		r.logger.Debug("loading graph", slog.String("engine", r.engine.Name()), slog.String("path", path))
		native, err := r.engine.LoadGraph(ctx, path)
		if err != nil {
			return nil, &EngineError{Op: "load graph", Path: path, Err: err}
		}
		return r.newBuilder(newGraph(path, r.engine, native)), nil
	})
}

// LoadBytes parses an in-memory model. name is used in logs and errors.
func (r *Runtime) LoadBytes(ctx context.Context, name string, data []byte) *Future[*Builder] {
	return r.loadBytes(ctx, name, data, nil)
}

// LoadBytesFunc is the callback form of LoadBytes. cb is invoked exactly once
// from a background goroutine.
func (r *Runtime) LoadBytesFunc(ctx context.Context, name string, data []byte, cb Callback[*Builder]) {
	r.loadBytes(ctx, name, data, cb)
}

func (r *Runtime) loadBytes(ctx context.Context, name string, data []byte, cb Callback[*Builder]) *Future[*Builder] {
	if len(data) == 0 {
		return rejected(cb, invalidArg(2, "must be non-empty model data"))
	}
	ctx = context.WithoutCancel(ctx)
	return dispatch(cb, func() (*Builder, error) {
		r.logger.Debug("loading graph", slog.String("engine", r.engine.Name()), slog.String("name", name))
		native, err := r.engine.LoadGraphBytes(ctx, name, data)
		if err != nil {
			return nil, &EngineError{Op: "load graph", Path: name, Err: err}
		}
		return r.newBuilder(newGraph(name, r.engine, native)), nil
	})
}

// MustLoad loads synchronously and panics on failure. Intended for tests and
// examples.
func (r *Runtime) MustLoad(path string) *Builder {
	b, err := r.Load(context.Background(), path).Result()
	if err != nil {
		panic(fmt.Sprintf("graphbind: %v", err))
	}
	return b
}
