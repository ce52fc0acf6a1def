package engine

import (
	"errors"
	"testing"

	"rulesync/internal/model"
)

type stubPrompter struct {
	action model.Action
	calls  int
}

func (p *stubPrompter) Decide(c model.Classification, remoteContent []byte) (model.Action, error) {
	p.calls++
	return p.action, nil
}

func conflicted(path string) model.Classification {
	return model.Classification{
		Path:       path,
		Class:      model.ClassConflicted,
		Base:       "b",
		Local:      "l",
		Remote:     "r",
		RemoteSize: 3,
	}
}

func TestResolveRemoteOnlyChanged(t *testing.T) {
	cs := []model.Classification{
		{Path: "edited.mdc", Class: model.ClassRemoteOnlyChanged, Base: "b", Local: "b", Remote: "r", RemoteSize: 7},
		{Path: "deleted.mdc", Class: model.ClassRemoteOnlyChanged, Base: "b", Local: "b", Remote: model.HashAbsent},
	}
	contents := map[string][]byte{"edited.mdc": []byte("new")}

	decisions, err := Resolve(cs, model.PolicyPrompt, nil, contents)
	if err != nil {
		t.Fatal(err)
	}
	if len(decisions) != 2 {
		t.Fatalf("got %d decisions", len(decisions))
	}

	if d := decisions[0]; d.Action != model.ActionOverwrite || string(d.Content) != "new" || d.RemoteHash != "r" {
		t.Errorf("edited.mdc decision = %+v", d)
	}
	if d := decisions[1]; d.Action != model.ActionDelete {
		t.Errorf("deleted.mdc decision = %+v", d)
	}
}

func TestResolveSkipsLocalAndUnchanged(t *testing.T) {
	cs := []model.Classification{
		{Path: "same.mdc", Class: model.ClassUnchanged},
		{Path: "mine.mdc", Class: model.ClassLocalOnlyChanged, Base: "b", Local: "l", Remote: "b"},
		{Path: "untracked.mdc", Class: model.ClassLocalOnlyChanged, Local: "l"},
	}

	decisions, err := Resolve(cs, model.PolicyRemote, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(decisions) != 0 {
		t.Errorf("local edits and unchanged files must produce no decisions, got %+v", decisions)
	}
}

func TestResolveConverged(t *testing.T) {
	cs := []model.Classification{
		{Path: "agree.mdc", Class: model.ClassConverged, Base: "b", Local: "x", Remote: "x", RemoteSize: 4},
		{Path: "gone.mdc", Class: model.ClassConverged, Base: "b", Local: model.HashAbsent, Remote: model.HashAbsent},
	}

	decisions, err := Resolve(cs, model.PolicyPrompt, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if d := decisions[0]; d.Action != model.ActionRecord || d.RemoteHash != "x" {
		t.Errorf("agree.mdc decision = %+v", d)
	}
	if d := decisions[1]; d.Action != model.ActionForget {
		t.Errorf("gone.mdc decision = %+v", d)
	}
}

func TestResolveConflictPolicies(t *testing.T) {
	contents := map[string][]byte{"a.mdc": []byte("remote side")}

	tests := []struct {
		policy model.ConflictPolicy
		want   model.Action
	}{
		{model.PolicyRemote, model.ActionOverwrite},
		{model.PolicyLocal, model.ActionKeep},
		{model.PolicyBackup, model.ActionBackupThenOverwrite},
	}

	for _, tt := range tests {
		decisions, err := Resolve([]model.Classification{conflicted("a.mdc")}, tt.policy, nil, contents)
		if err != nil {
			t.Fatalf("policy %s: %v", tt.policy, err)
		}
		if len(decisions) != 1 || decisions[0].Action != tt.want {
			t.Errorf("policy %s: decisions = %+v, want action %s", tt.policy, decisions, tt.want)
		}
	}
}

func TestResolveConflictRemoteDeleted(t *testing.T) {
	c := model.Classification{Path: "a.mdc", Class: model.ClassConflicted, Base: "b", Local: "l", Remote: model.HashAbsent}

	decisions, err := Resolve([]model.Classification{c}, model.PolicyRemote, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if decisions[0].Action != model.ActionDelete {
		t.Errorf("remote policy on remote deletion: action = %s", decisions[0].Action)
	}

	// The prompter's use-remote answer on a deleted remote side also deletes.
	p := &stubPrompter{action: model.ActionOverwrite}
	decisions, err = Resolve([]model.Classification{c}, model.PolicyPrompt, p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if decisions[0].Action != model.ActionDelete {
		t.Errorf("prompt overwrite on remote deletion: action = %s", decisions[0].Action)
	}
}

func TestResolvePromptHeadless(t *testing.T) {
	_, err := Resolve([]model.Classification{conflicted("a.mdc")}, model.PolicyPrompt, nil, nil)
	if !errors.Is(err, model.ErrInteractiveRequired) {
		t.Fatalf("err = %v, want ErrInteractiveRequired", err)
	}
}

func TestResolvePromptAskedPerConflict(t *testing.T) {
	p := &stubPrompter{action: model.ActionKeep}
	cs := []model.Classification{
		conflicted("a.mdc"),
		{Path: "b.mdc", Class: model.ClassRemoteOnlyChanged, Base: "x", Local: "x", Remote: "y"},
		conflicted("c.mdc"),
	}

	decisions, err := Resolve(cs, model.PolicyPrompt, p, map[string][]byte{"b.mdc": []byte("v")})
	if err != nil {
		t.Fatal(err)
	}

	if p.calls != 2 {
		t.Errorf("prompter asked %d times, want 2 (conflicts only)", p.calls)
	}
	if len(decisions) != 3 {
		t.Errorf("got %d decisions", len(decisions))
	}
}

func TestResolveDeterministic(t *testing.T) {
	cs := []model.Classification{
		conflicted("a.mdc"),
		{Path: "b.mdc", Class: model.ClassRemoteOnlyChanged, Base: "x", Local: "x", Remote: "y", RemoteSize: 2},
	}
	contents := map[string][]byte{"a.mdc": []byte("ra"), "b.mdc": []byte("rb")}

	first, err := Resolve(cs, model.PolicyBackup, nil, contents)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Resolve(cs, model.PolicyBackup, nil, contents)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Path != second[i].Path || first[i].Action != second[i].Action {
			t.Errorf("decision %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
