package scoper

import "testing"

func TestRecordIncident(t *testing.T) {
	p := NewPathAnalyser()
	p.RecordIncident(Returned())
	if !p.HasCertainly(Returned()) {
		t.Error("recorded incident must be certain")
	}
	if !p.HasPotentially(Returned()) {
		t.Error("recorded incident must be potential")
	}
	if p.HasCertainly(UsedSelf()) {
		t.Error("unrecorded incident must not be certain")
	}
}

func TestMutualExclusiveBranchesIntersect(t *testing.T) {
	p := NewPathAnalyser()

	// if: assign v in both branches, w in one
	p.BeginBranch()
	p.RecordIncident(VariableInit(false, 1))
	p.RecordIncident(VariableInit(false, 2))
	p.EndBranch()
	p.BeginBranch()
	p.RecordIncident(VariableInit(false, 1))
	p.EndBranch()
	p.EndMutualExclusiveBranches()

	if !p.HasCertainly(VariableInit(false, 1)) {
		t.Error("incident in every branch must become certain at the join")
	}
	if p.HasCertainly(VariableInit(false, 2)) {
		t.Error("incident in one branch only must not become certain")
	}
	if !p.HasPotentially(VariableInit(false, 2)) {
		t.Error("incident in one branch must stay potential")
	}
}

func TestUncertainBranches(t *testing.T) {
	p := NewPathAnalyser()

	// while body: may never run
	p.BeginBranch()
	p.RecordIncident(VariableInit(false, 1))
	p.EndBranch()
	p.EndUncertainBranches()

	if p.HasCertainly(VariableInit(false, 1)) {
		t.Error("a branch that may not run must not contribute certainty")
	}
	if !p.HasPotentially(VariableInit(false, 1)) {
		t.Error("a branch that may run must contribute potential incidents")
	}
}

func TestParentIncidentsVisibleInBranch(t *testing.T) {
	p := NewPathAnalyser()
	p.RecordIncident(VariableInit(false, 7))
	p.BeginBranch()
	if !p.HasCertainly(VariableInit(false, 7)) {
		t.Error("incidents recorded before a branch begins are certain inside it")
	}
	p.EndBranch()
	p.EndMutualExclusiveBranches()
}

func TestNestedBranches(t *testing.T) {
	p := NewPathAnalyser()

	p.BeginBranch()
	{
		p.BeginBranch()
		p.RecordIncident(Returned())
		p.EndBranch()
		p.BeginBranch()
		p.RecordIncident(Returned())
		p.EndBranch()
		p.EndMutualExclusiveBranches()
	}
	p.EndBranch()
	p.BeginBranch()
	p.RecordIncident(Returned())
	p.EndBranch()
	p.EndMutualExclusiveBranches()

	if !p.HasCertainly(Returned()) {
		t.Error("returning on every nested path must be certain at the top")
	}
}

func TestInstanceVariableIncidentsAreDistinct(t *testing.T) {
	p := NewPathAnalyser()
	p.RecordIncident(VariableInit(true, 1))
	if p.HasCertainly(VariableInit(false, 1)) {
		t.Error("instance and local incidents with the same ID are distinct")
	}
}
