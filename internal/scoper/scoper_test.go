package scoper

import (
	"testing"

	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
)

var noPos token.SourcePosition

func TestSiblingScopesReuseIDs(t *testing.T) {
	s := NewSemanticScoper(nil)
	paths := NewPathAnalyser()
	if _, err := s.PushArgumentsScope(paths, []typesystem.Parameter{{Name: "arg", Type: typesystem.Something}}, noPos); err != nil {
		t.Fatal(err)
	}

	s.PushScope()
	v1, err := s.CurrentScope().DeclareVariable("a", typesystem.Something, true, noPos)
	if err != nil {
		t.Fatal(err)
	}
	s.PopScope(paths)

	s.PushScope()
	v2, err := s.CurrentScope().DeclareVariable("b", typesystem.Something, true, noPos)
	if err != nil {
		t.Fatal(err)
	}
	s.PopScope(paths)

	if v1.ID() != v2.ID() {
		t.Errorf("sibling scopes must reuse IDs: %d vs %d", v1.ID(), v2.ID())
	}
	if v1.ID() != 1 {
		t.Errorf("IDs continue from the arguments scope: got %d", v1.ID())
	}
}

func TestLookupFallsBackToInstanceScope(t *testing.T) {
	instance := typesystem.NewScope(0)
	if _, err := instance.DeclareVariable("field", typesystem.Something, false, noPos); err != nil {
		t.Fatal(err)
	}
	s := NewSemanticScoper(instance)
	paths := NewPathAnalyser()
	if _, err := s.PushArgumentsScope(paths, nil, noPos); err != nil {
		t.Fatal(err)
	}

	resolved, err := s.GetVariable("field", noPos)
	if err != nil {
		t.Fatal(err)
	}
	if !resolved.InInstanceScope {
		t.Error("instance variables must be flagged as such")
	}

	if _, err := s.GetVariable("ghost", noPos); err == nil {
		t.Error("unknown variable must raise VariableNotFound")
	} else if _, ok := err.(*VariableNotFoundError); !ok {
		t.Errorf("wrong error type: %T", err)
	}
}

func TestLocalShadowsInstance(t *testing.T) {
	instance := typesystem.NewScope(0)
	if _, err := instance.DeclareVariable("x", typesystem.Something, false, noPos); err != nil {
		t.Fatal(err)
	}
	s := NewSemanticScoper(instance)
	paths := NewPathAnalyser()
	if _, err := s.PushArgumentsScope(paths, []typesystem.Parameter{{Name: "x", Type: typesystem.Nothingness}}, noPos); err != nil {
		t.Fatal(err)
	}

	resolved, err := s.GetVariable("x", noPos)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.InInstanceScope {
		t.Error("the local stack is consulted before the instance scope")
	}
}

func TestPopScopeChecks(t *testing.T) {
	s := NewSemanticScoper(nil)
	paths := NewPathAnalyser()
	if _, err := s.PushArgumentsScope(paths, nil, noPos); err != nil {
		t.Fatal(err)
	}
	s.PushScope()

	// mutable but never mutated -> warning
	if _, err := s.CurrentScope().DeclareVariable("lazy", typesystem.Something, false, noPos); err != nil {
		t.Fatal(err)
	}
	// non-optional, initialized in one branch only -> error
	v, err := s.CurrentScope().DeclareVariable("half", typesystem.Nothingness, true, noPos)
	if err != nil {
		t.Fatal(err)
	}
	paths.BeginBranch()
	paths.RecordIncident(VariableInit(false, v.ID()))
	paths.EndBranch()
	paths.EndUncertainBranches()

	warnings, errors := s.PopScope(paths)
	if len(warnings) != 1 {
		t.Errorf("expected one never-mutated warning, got %d", len(warnings))
	}
	if len(errors) != 1 {
		t.Errorf("expected one potentially-initialized error, got %d", len(errors))
	}
}

func TestCapturingScoperCopiesVariables(t *testing.T) {
	outer := NewSemanticScoper(nil)
	outerPaths := NewPathAnalyser()
	if _, err := outer.PushArgumentsScope(outerPaths, nil, noPos); err != nil {
		t.Fatal(err)
	}
	v, err := outer.CurrentScope().DeclareVariable("captured", typesystem.Something, true, noPos)
	if err != nil {
		t.Fatal(err)
	}
	outerPaths.RecordIncident(VariableInit(false, v.ID()))

	capturing := NewCapturingSemanticScoper(outer, outerPaths, true)
	innerPaths := NewPathAnalyser()
	if _, err := capturing.PushArgumentsScope(innerPaths, nil, noPos); err != nil {
		t.Fatal(err)
	}

	resolved, err := capturing.GetVariable("captured", noPos)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Variable.ID() == v.ID() && resolved.Variable == v {
		t.Error("the capture must be a copy with a fresh ID")
	}
	if !innerPaths.HasCertainly(VariableInit(false, resolved.Variable.ID())) {
		t.Error("a certainly initialized source yields a certainly initialized capture")
	}

	captures := capturing.Captures()
	if len(captures) != 1 {
		t.Fatalf("expected one capture, got %d", len(captures))
	}
	if captures[0].SourceID != v.ID() {
		t.Errorf("capture source = %d, want %d", captures[0].SourceID, v.ID())
	}
	if captures[0].CaptureID != resolved.Variable.ID() {
		t.Errorf("capture id mismatch")
	}

	// Asking again must not create a second capture.
	if _, err := capturing.GetVariable("captured", noPos); err != nil {
		t.Fatal(err)
	}
	if len(capturing.Captures()) != 1 {
		t.Error("repeated lookups reuse the existing capture")
	}
}
