package models

import (
	"gorm.io/datatypes"
)

// ActivityInfo is a read-only view of the activity engine's catalog table,
// used to enrich analytics and ranking output. It never drives state
// transitions.
type ActivityInfo struct {
	ActivityID string                      `gorm:"primaryKey;size:64" json:"activity_id"`
	Name       string                      `gorm:"size:255;not null" json:"name"`
	Type       string                      `gorm:"size:64" json:"type"`
	Themes     datatypes.JSONSlice[string] `gorm:"type:json" json:"themes"`
	RiskLevel  string                      `gorm:"size:16" json:"risk_level"`
	SkillLevel string                      `gorm:"size:16" json:"skill_level"`
}

// TableName points at the activity engine's table.
func (ActivityInfo) TableName() string { return "activities" }
