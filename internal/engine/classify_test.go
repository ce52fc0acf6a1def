package engine

import (
	"testing"

	"rulesync/internal/model"
)

func TestClassifyCoversAllSources(t *testing.T) {
	st := model.DefaultState()
	st.RecordFile("tracked-everywhere.mdc", "h1", 10)
	st.RecordFile("tracked-gone.mdc", "h2", 20)

	snapshot := &model.RemoteSnapshot{
		Revision: "rev1",
		Files: map[string]model.RemoteFile{
			"tracked-everywhere.mdc": {Hash: "h1", Size: 10},
			"remote-new.mdc":         {Hash: "h9", Size: 90},
		},
	}

	local := map[string]LocalFile{
		"tracked-everywhere.mdc": {Hash: "h1", Size: 10},
		"local-new.mdc":          {Hash: "h5", Size: 50},
	}

	got := Classify(st, snapshot, local)

	// Union of all three sources, ordered by path.
	wantPaths := []string{"local-new.mdc", "remote-new.mdc", "tracked-everywhere.mdc", "tracked-gone.mdc"}
	if len(got) != len(wantPaths) {
		t.Fatalf("got %d classifications, want %d", len(got), len(wantPaths))
	}

	byPath := make(map[string]model.Classification)
	for i, c := range got {
		if c.Path != wantPaths[i] {
			t.Errorf("position %d: path = %s, want %s", i, c.Path, wantPaths[i])
		}
		byPath[c.Path] = c
	}

	if c := byPath["tracked-everywhere.mdc"]; c.Class != model.ClassUnchanged {
		t.Errorf("tracked-everywhere.mdc = %s", c.Class)
	}
	if c := byPath["tracked-gone.mdc"]; c.Class != model.ClassConverged {
		t.Errorf("tracked-gone.mdc = %s", c.Class)
	}
	if c := byPath["remote-new.mdc"]; c.Class != model.ClassRemoteOnlyChanged {
		t.Errorf("remote-new.mdc = %s", c.Class)
	}
	if c := byPath["local-new.mdc"]; c.Class != model.ClassLocalOnlyChanged {
		t.Errorf("local-new.mdc = %s", c.Class)
	}

	if c := byPath["remote-new.mdc"]; c.Remote != "h9" || c.RemoteSize != 90 {
		t.Errorf("remote-new.mdc hashes not carried: %+v", c)
	}
	if c := byPath["local-new.mdc"]; c.Local != "h5" || c.LocalSize != 50 {
		t.Errorf("local-new.mdc hashes not carried: %+v", c)
	}
}
