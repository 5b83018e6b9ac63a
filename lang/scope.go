package lang

import (
	"iter"
	"log/slog"
)

// Variable is a named slot owned by exactly one scope frame. The declared
// datatype tag is fixed at system.init time; assignments replace only the
// stored value.
type Variable struct {
	Name  string
	Type  DataType
	Value Value
}

// Scope is one frame of variable bindings. Frames form an explicit chain:
// the global frame has no parent, and each function call creates exactly
// one frame chained directly to the global frame (never to the caller's
// frame, so there is no dynamic scoping and there are no closures).
type Scope struct {
	vars   map[string]*Variable
	parent *Scope
}

// NewScope creates a new frame chained to parent. A nil parent creates
// the global frame.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		vars:   make(map[string]*Variable),
		parent: parent,
	}
}

// Declare creates a new variable in this frame. Names are unique within
// one frame; re-declaring an existing name fails ErrDuplicateVariable.
func (s *Scope) Declare(name string, typ DataType, v Value) error {
	if _, exists := s.vars[name]; exists {
		return ErrDuplicateVariable.
			With(slog.String("name", name))
	}

	s.vars[name] = &Variable{Name: name, Type: typ, Value: v}

	return nil
}

// All returns an iterator over the variables declared in this frame
// only, in unspecified order. Parent frames are not visited.
func (s *Scope) All() iter.Seq2[string, *Variable] {
	return func(yield func(string, *Variable) bool) {
		for name, v := range s.vars {
			if !yield(name, v) {
				return
			}
		}
	}
}

// Lookup resolves a name by walking the chain from this frame outward.
func (s *Scope) Lookup(name string) (*Variable, bool) {
	for frame := s; frame != nil; frame = frame.parent {
		if v, ok := frame.vars[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// Set replaces the stored value of an existing variable, resolved by
// walking the chain from this frame outward. The declared tag is left
// untouched. Fails ErrUndefinedVariable when the name is not found.
func (s *Scope) Set(name string, v Value) error {
	variable, ok := s.Lookup(name)
	if !ok {
		return ErrUndefinedVariable.
			With(slog.String("name", name))
	}

	variable.Value = v

	return nil
}
