package models

import (
	"time"

	"github.com/google/uuid"
)

// Risk levels as produced by the engagement pipeline. HIGH and CRITICAL
// both fold into the "high" analytics bucket.
const (
	RiskLevelLow      = "LOW"
	RiskLevelMedium   = "MEDIUM"
	RiskLevelHigh     = "HIGH"
	RiskLevelCritical = "CRITICAL"
)

// EngagementSummary mirrors the engagement pipeline's per-student summary
// table. Read-only input to the analytics aggregator.
type EngagementSummary struct {
	StudentID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"student_id"`
	DailyStreak    int        `gorm:"not null;default:0" json:"daily_streak"`
	MaxStreak      int        `gorm:"not null;default:0" json:"max_streak"`
	LastActive     *time.Time `json:"last_active"`
	WellbeingScore *int       `json:"wellbeing_score"`
	RiskLevel      string     `gorm:"size:16" json:"risk_level"`
}

// TableName points at the externally owned summary table.
func (EngagementSummary) TableName() string { return "student_engagement_summaries" }

// AppSession is one recorded app opening, owned by the engagement pipeline.
type AppSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	StartedAt time.Time `gorm:"not null;index" json:"started_at"`
}

// TableName points at the externally owned session table.
func (AppSession) TableName() string { return "student_app_sessions" }

// ContentScore holds externally computed content-completion points per
// student, merged into leaderboard totals.
type ContentScore struct {
	StudentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"student_id"`
	Points    int       `gorm:"not null;default:0" json:"points"`
}

// TableName points at the externally owned score table.
func (ContentScore) TableName() string { return "student_content_scores" }
