package repository

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"rulesync/internal/db"
	"rulesync/internal/model"
)

func setupDB(t *testing.T) {
	t.Helper()

	if err := db.Init(filepath.Join(t.TempDir(), "rulesync.db")); err != nil {
		t.Fatal(err)
	}
}

func TestSaveCycleAndGetRecent(t *testing.T) {
	setupDB(t)
	repo := NewHistoryRepository()

	report := &model.CycleReport{
		Outcome:   model.OutcomeSynced,
		Revision:  "rev1",
		StartedAt: time.Now(),
		Duration:  120 * time.Millisecond,
		Files: []model.FileOutcome{
			{Path: "a.mdc", Action: model.ActionOverwrite},
			{Path: "b.mdc", Action: model.ActionDelete},
		},
	}

	if err := repo.SaveCycle(report, nil); err != nil {
		t.Fatal(err)
	}

	cycles, err := repo.GetRecent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(cycles) != 1 {
		t.Fatalf("cycles = %d", len(cycles))
	}

	c := cycles[0]
	if c.Revision != "rev1" || c.Outcome != model.OutcomeSynced || c.Applied != 2 {
		t.Errorf("cycle = %+v", c)
	}

	files, err := repo.GetFiles(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("files = %+v", files)
	}
}

// A cycle that died before producing results still leaves a FAILED row, so
// history reads the same whether the cycle ran via CLI or daemon.
func TestSaveCycleFailure(t *testing.T) {
	setupDB(t)
	repo := NewHistoryRepository()

	report := &model.CycleReport{StartedAt: time.Now()}
	if err := repo.SaveCycle(report, errors.New("remote unavailable: dial tcp")); err != nil {
		t.Fatal(err)
	}

	cycles, err := repo.GetRecent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(cycles) != 1 {
		t.Fatalf("cycles = %d", len(cycles))
	}

	if cycles[0].Outcome != model.OutcomeFailed {
		t.Errorf("outcome = %s", cycles[0].Outcome)
	}
	if cycles[0].ErrMsg == "" {
		t.Error("failure message must be persisted")
	}
}

func TestGetStats(t *testing.T) {
	setupDB(t)
	repo := NewHistoryRepository()

	reports := []*model.CycleReport{
		{
			Outcome:   model.OutcomeSynced,
			Revision:  "rev1",
			StartedAt: time.Now(),
			Files:     []model.FileOutcome{{Path: "a.mdc", Action: model.ActionOverwrite}},
		},
		{
			Outcome:   model.OutcomePartial,
			Revision:  "rev2",
			StartedAt: time.Now(),
			Files: []model.FileOutcome{
				{Path: "a.mdc", Action: model.ActionOverwrite},
				{Path: "b.mdc", Action: model.ActionOverwrite, Err: errors.New("permission denied")},
			},
		},
	}

	for _, r := range reports {
		if err := repo.SaveCycle(r, nil); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatal(err)
	}

	if stats.Cycles != 2 {
		t.Errorf("cycles = %d", stats.Cycles)
	}
	if stats.Applied != 2 {
		t.Errorf("applied = %d", stats.Applied)
	}
	if stats.Failed != 1 {
		t.Errorf("failed = %d", stats.Failed)
	}
}
