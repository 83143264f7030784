package binding

import "context"

// VariableKind classifies a named tensor slot of a graph.
type VariableKind int

const (
	// VariableInput is a graph input that must be fed by the caller.
	VariableInput VariableKind = iota
	// VariableOutput is a declared graph output.
	VariableOutput
	// VariableIntermediate is an internal value that can still be requested as
	// an output.
	VariableIntermediate
	// VariableInitializer is a constant baked into the graph. It may be
	// overridden as an input but does not have to be declared.
	VariableInitializer
)

func (k VariableKind) String() string {
	switch k {
	case VariableInput:
		return "input"
	case VariableOutput:
		return "output"
	case VariableIntermediate:
		return "intermediate"
	case VariableInitializer:
		return "initializer"
	default:
		return "unknown"
	}
}

// Variable describes one named tensor slot of a loaded graph.
type Variable struct {
	Name string
	Kind VariableKind
	// ElementType is ElementTypeUndefined when the engine does not know it.
	ElementType ElementType
	// Dims holds the declared shape. Negative entries are symbolic, a nil
	// slice means the rank is unknown.
	Dims []int64
}

// InputDeclaration is a caller-declared input with concrete dims.
type InputDeclaration struct {
	Name string
	Dims []int64
}

// EngineGraph is a loaded, immutable graph owned by an Engine.
type EngineGraph interface {
	// Variables lists every input- and output-capable variable.
	Variables() []Variable
	// Close releases the engine's graph resources.
	Close() error
}

// EngineModel is a compiled graph with bound buffers.
//
// Run must be safe to call concurrently on distinct EngineModels compiled
// from the same EngineGraph. It is never called concurrently on the same
// EngineModel.
type EngineModel interface {
	// Buffer returns the element type, dims, and backing memory of a declared
	// variable. The returned slice aliases engine memory and stays valid until
	// Close.
	Buffer(name string) (ElementType, []int64, []byte, error)
	Run(ctx context.Context) error
	Close() error
}

type modelIDKey struct{}

func withModelID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, modelIDKey{}, id)
}

// ModelIDFromContext returns the ID of the Model a run context belongs to.
// Engines use it to tag native runs.
func ModelIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(modelIDKey{}).(string)
	return id, ok
}

// Engine is the inference engine collaborator.
type Engine interface {
	// Name identifies the engine in logs.
	Name() string
	LoadGraph(ctx context.Context, path string) (EngineGraph, error)
	LoadGraphBytes(ctx context.Context, name string, data []byte) (EngineGraph, error)
	// Compile validates nothing beyond what the engine itself needs; name and
	// dims validation happens in Builder.Compile before Compile is called.
	Compile(g EngineGraph, inputs []InputDeclaration, outputs []string, cfg BackendConfig) (EngineModel, error)
}
