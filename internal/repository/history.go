package repository

import (
	"rulesync/internal/db"
	"rulesync/internal/model"
)

type HistoryRepository struct{}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

// SaveCycle persists one cycle report plus its per-file outcomes.
func (r *HistoryRepository) SaveCycle(report *model.CycleReport, cycleErr error) error {
	cycle := model.CycleHistory{
		Revision:   report.Revision,
		Outcome:    report.Outcome,
		Applied:    report.Applied(),
		Conflicted: report.Conflicted,
		Failed:     len(report.Failed()),
		StartedAt:  report.StartedAt,
		DurationMs: report.Duration.Milliseconds(),
	}
	if cycleErr != nil {
		cycle.Outcome = model.OutcomeFailed
		cycle.ErrMsg = cycleErr.Error()
	}

	if err := db.DB.Create(&cycle).Error; err != nil {
		return err
	}

	for _, f := range report.Files {
		file := model.FileHistory{
			CycleID: cycle.ID,
			Path:    f.Path,
			Action:  f.Action,
		}
		if f.Err != nil {
			file.ErrMsg = f.Err.Error()
		}

		if err := db.DB.Create(&file).Error; err != nil {
			return err
		}
	}

	return nil
}

func (r *HistoryRepository) GetRecent(limit int) ([]model.CycleHistory, error) {
	var cycles []model.CycleHistory
	result := db.DB.
		Order("started_at desc").
		Limit(limit).
		Find(&cycles)

	return cycles, result.Error
}

func (r *HistoryRepository) GetFiles(cycleID uint) ([]model.FileHistory, error) {
	var files []model.FileHistory
	result := db.DB.
		Where("cycle_id = ?", cycleID).
		Find(&files)

	return files, result.Error
}

type Stats struct {
	Cycles  int64
	Applied int64
	Failed  int64
}

func (r *HistoryRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := db.DB.Model(&model.CycleHistory{}).Count(&stats.Cycles).Error; err != nil {
		return stats, err
	}

	type sums struct {
		Applied int64
		Failed  int64
	}
	var s sums
	if err := db.DB.Model(&model.CycleHistory{}).
		Select("COALESCE(SUM(applied),0) as applied, COALESCE(SUM(failed),0) as failed").
		Scan(&s).Error; err != nil {
		return stats, err
	}

	stats.Applied = s.Applied
	stats.Failed = s.Failed
	return stats, nil
}
