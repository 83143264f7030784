package binding

import (
	"slices"
	"sync"
)

// Graph is a loaded, read-only computation graph. It is shared by the
// Builder that loaded it and by every Model compiled from that Builder; the
// engine graph is released when the last of them is closed.
type Graph struct {
	name   string
	engine Engine
	native EngineGraph

	variables []Variable
	byName    map[string]int

	mu   sync.Mutex
	refs int
}

func newGraph(name string, engine Engine, native EngineGraph) *Graph {
	vars := native.Variables()
	g := &Graph{
		name:      name,
		engine:    engine,
		native:    native,
		variables: vars,
		byName:    make(map[string]int, len(vars)),
		refs:      1,
	}
	for i, v := range vars {
		if _, dup := g.byName[v.Name]; !dup {
			g.byName[v.Name] = i
		}
	}
	return g
}

// Name returns the path or name the graph was loaded from.
func (g *Graph) Name() string {
	return g.name
}

// Variables returns a copy of every variable of the graph.
func (g *Graph) Variables() []Variable {
	out := make([]Variable, len(g.variables))
	for i, v := range g.variables {
		v.Dims = slices.Clone(v.Dims)
		out[i] = v
	}
	return out
}

// Variable looks up a variable by name.
func (g *Graph) Variable(name string) (Variable, bool) {
	i, ok := g.byName[name]
	if !ok {
		return Variable{}, false
	}
	v := g.variables[i]
	v.Dims = slices.Clone(v.Dims)
	return v, true
}

// InputNames returns the names of the graph inputs that must be fed.
func (g *Graph) InputNames() []string {
	return g.namesOf(VariableInput)
}

// OutputNames returns the names of the declared graph outputs.
func (g *Graph) OutputNames() []string {
	return g.namesOf(VariableOutput)
}

func (g *Graph) namesOf(kind VariableKind) []string {
	var names []string
	for _, v := range g.variables {
		if v.Kind == kind {
			names = append(names, v.Name)
		}
	}
	return names
}

func (g *Graph) retain() {
	g.mu.Lock()
	g.refs++
	g.mu.Unlock()
}

func (g *Graph) release() error {
	g.mu.Lock()
	g.refs--
	last := g.refs == 0
	g.mu.Unlock()

	if !last {
		return nil
	}
	return g.native.Close()
}
