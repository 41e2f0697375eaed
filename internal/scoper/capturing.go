package scoper

import (
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
)

// VariableCapture records a variable copied by value into a closure.
type VariableCapture struct {
	SourceID int
	Type     typesystem.Type
	// CaptureID is the ID of the variable's copy inside the closure.
	CaptureID int
}

// CapturingSemanticScoper automatically imports unknown variables from the
// enclosing analyser's scoper. The two scopers share the instance scope;
// capturing from instance scopes is not supported.
type CapturingSemanticScoper struct {
	SemanticScoper

	capturedScoper   Scoper
	capturedAnalyser *PathAnalyser
	analyser         *PathAnalyser
	captures         []VariableCapture
	captureID        int
	constantCaptures bool
}

func NewCapturingSemanticScoper(captured Scoper, capturedAnalyser *PathAnalyser, constantCaptures bool) *CapturingSemanticScoper {
	return &CapturingSemanticScoper{
		SemanticScoper:   *NewSemanticScoper(captured.InstanceScope()),
		capturedScoper:   captured,
		capturedAnalyser: capturedAnalyser,
		constantCaptures: constantCaptures,
	}
}

// PushArgumentsScope additionally reserves a block of IDs for captures so
// copied variables get stable fresh IDs within the closure's frame.
func (s *CapturingSemanticScoper) PushArgumentsScope(analyser *PathAnalyser, args []typesystem.Parameter, pos token.SourcePosition) (*typesystem.Scope, error) {
	scope, err := s.SemanticScoper.PushArgumentsScope(analyser, args, pos)
	if err != nil {
		return nil, err
	}
	s.analyser = analyser
	s.captureID = scope.ReserveIDs(s.capturedScoper.CurrentScope().MaxVariableID())
	return scope, nil
}

// GetVariable falls back to the enclosing scoper: the variable is copied
// into the topmost local scope under a fresh capture ID and recorded in the
// capture list. If the source was certainly initialized, so is the copy.
func (s *CapturingSemanticScoper) GetVariable(name string, pos token.SourcePosition) (ResolvedVariable, error) {
	resolved, err := s.SemanticScoper.GetVariable(name, pos)
	if err == nil {
		return resolved, nil
	}
	if _, ok := err.(*VariableNotFoundError); !ok {
		return ResolvedVariable{}, err
	}

	outer, err := s.capturedScoper.GetVariable(name, pos)
	if err != nil || outer.InInstanceScope {
		if err == nil {
			// instance variables reach the closure through self, not
			// through capture
			return outer, nil
		}
		return ResolvedVariable{}, err
	}

	v := outer.Variable
	capture, derr := s.topmostLocalScope().DeclareVariableWithID(v.Name(), v.Type(), s.constantCaptures, s.captureID, pos)
	if derr != nil {
		return ResolvedVariable{}, derr
	}
	s.captureID++
	if s.capturedAnalyser.HasCertainly(VariableInit(false, v.ID())) {
		s.analyser.RecordForMainBranch(VariableInit(false, capture.ID()))
	}
	s.captures = append(s.captures, VariableCapture{SourceID: v.ID(), Type: v.Type(), CaptureID: capture.ID()})
	return ResolvedVariable{Variable: capture}, nil
}

// Captures returns the captured variables in capture order.
func (s *CapturingSemanticScoper) Captures() []VariableCapture { return s.captures }
