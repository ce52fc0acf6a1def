package model

import (
	"time"

	"gorm.io/gorm"
)

// CycleHistory is one reconciliation cycle as persisted for `rulesync
// history` and the daemon /history endpoint.
type CycleHistory struct {
	gorm.Model
	Revision   string    `gorm:"not null" json:"revision"`
	Outcome    Outcome   `gorm:"not null" json:"outcome"`
	Applied    int       `json:"applied"`
	Conflicted int       `json:"conflicted"`
	Failed     int       `json:"failed"`
	ErrMsg     string    `json:"err_msg,omitempty"`
	StartedAt  time.Time `gorm:"not null" json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// FileHistory is one applied or failed path within a cycle.
type FileHistory struct {
	gorm.Model
	CycleID uint   `gorm:"index;not null" json:"cycle_id"`
	Path    string `gorm:"not null" json:"path"`
	Action  Action `gorm:"not null" json:"action"`
	ErrMsg  string `json:"err_msg,omitempty"`
}
