package typesystem

import (
	"fmt"
	"sort"

	"github.com/funvibe/emojc/internal/token"
)

// VariableID is a dense small integer unique within a scope stack.
type VariableID = int

// Variable is a named slot in a scope.
type Variable struct {
	typ      Type
	id       VariableID
	constant bool
	mutated  bool
	// inherited marks instance variables taken over from a superclass.
	inherited bool
	name      string
	pos       token.SourcePosition
}

func (v *Variable) Type() Type                      { return v.typ }
func (v *Variable) ID() VariableID                  { return v.id }
func (v *Variable) Constant() bool                  { return v.constant }
func (v *Variable) Mutated() bool                   { return v.mutated }
func (v *Variable) Inherited() bool                 { return v.inherited }
func (v *Variable) Name() string                    { return v.name }
func (v *Variable) Position() token.SourcePosition  { return v.pos }

// Mutate marks the variable as mutated. Mutating a constant is an error.
func (v *Variable) Mutate(pos token.SourcePosition) error {
	if v.constant {
		return fmt.Errorf("cannot modify constant variable %s", v.name)
	}
	v.mutated = true
	return nil
}

// SetType narrows or widens the variable's type, e.g. when a conditional
// binding unwraps an optional.
func (v *Variable) SetType(t Type) { v.typ = t }

// Scope maps variable names to variables. A scope is either an instance
// scope owned by a type definition or a local scope pushed and popped by
// the analyser.
type Scope struct {
	variables map[string]*Variable
	maxID     int
}

func NewScope(firstID int) *Scope {
	return &Scope{variables: make(map[string]*Variable), maxID: firstID}
}

// MaxVariableID returns the next free variable ID.
func (s *Scope) MaxVariableID() int { return s.maxID }

// ReserveIDs reserves count IDs and returns the first.
func (s *Scope) ReserveIDs(count int) int {
	id := s.maxID
	s.maxID += count
	return id
}

// DeclareVariable declares a variable with a fresh ID.
func (s *Scope) DeclareVariable(name string, t Type, constant bool, pos token.SourcePosition) (*Variable, error) {
	return s.DeclareVariableWithID(name, t, constant, s.maxID, pos)
}

// DeclareVariableWithID declares a variable with a caller-chosen ID.
func (s *Scope) DeclareVariableWithID(name string, t Type, constant bool, id VariableID, pos token.SourcePosition) (*Variable, error) {
	if _, dup := s.variables[name]; dup {
		return nil, fmt.Errorf("cannot redeclare variable %s", name)
	}
	v := &Variable{typ: t, id: id, constant: constant, name: name, pos: pos}
	s.variables[name] = v
	if id >= s.maxID {
		s.maxID = id + 1
	}
	return v, nil
}

// Get returns the variable with the given name, or nil.
func (s *Scope) Get(name string) *Variable {
	return s.variables[name]
}

func (s *Scope) Has(name string) bool {
	_, ok := s.variables[name]
	return ok
}

// Variables returns the scope's variables ordered by ID.
func (s *Scope) Variables() []*Variable {
	vars := make([]*Variable, 0, len(s.variables))
	for _, v := range s.variables {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].id < vars[j].id })
	return vars
}

// MarkInherited marks every variable as inherited.
func (s *Scope) MarkInherited() {
	for _, v := range s.variables {
		v.inherited = true
	}
}

// Copy deep-copies the scope. Used to thread instance scopes into the
// analyser without mutating the definition's copy.
func (s *Scope) Copy() *Scope {
	c := NewScope(s.maxID)
	for name, v := range s.variables {
		cv := *v
		c.variables[name] = &cv
	}
	return c
}
