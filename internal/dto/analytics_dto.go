package dto

import (
	"time"

	"github.com/google/uuid"
)

// TimelinePoint is one day in a submission timeline. Days without activity
// are omitted.
type TimelinePoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// WeeklyTrendPoint counts completed submissions for one week, keyed by the
// date the week starts on.
type WeeklyTrendPoint struct {
	WeekStart string `json:"week_start"`
	Count     int64  `json:"count"`
}

// AssignmentBreakdown repeats the activity metrics scoped to one assignment.
type AssignmentBreakdown struct {
	AssignmentID       uuid.UUID        `json:"assignment_id"`
	ClassID            uuid.UUID        `json:"class_id"`
	TotalExpected      int64            `json:"total_expected"`
	TotalCompleted     int64            `json:"total_completed"`
	CompletionRate     float64          `json:"completion_rate"`
	VerifiedCount      int64            `json:"verified_count"`
	PendingReview      int64            `json:"pending_review"`
	StatusDistribution map[string]int64 `json:"status_distribution"`
}

// ActivityRollup summarizes every assignment of one activity across classes.
// Completed means touched: SUBMITTED, VERIFIED, or REJECTED.
type ActivityRollup struct {
	ActivityID         string                `json:"activity_id"`
	ActivityName       string                `json:"activity_name,omitempty"`
	TotalExpected      int64                 `json:"total_expected"`
	TotalCompleted     int64                 `json:"total_completed"`
	CompletionRate     float64               `json:"completion_rate"`
	VerifiedCount      int64                 `json:"verified_count"`
	PendingReview      int64                 `json:"pending_review"`
	StatusDistribution map[string]int64      `json:"status_distribution"`
	ClassBreakdown     []AssignmentBreakdown `json:"class_breakdown"`
	SubmissionTimeline []TimelinePoint       `json:"submission_timeline"`
	WindowDays         int                   `json:"window_days"`
}

// StudentAssignmentRow is one assignment as seen from a student rollup.
type StudentAssignmentRow struct {
	AssignmentID uuid.UUID  `json:"assignment_id"`
	ActivityID   string     `json:"activity_id"`
	ActivityName string     `json:"activity_name,omitempty"`
	Status       string     `json:"status"`
	Score        int        `json:"score"`
	DueDate      *time.Time `json:"due_date"`
	SubmittedAt  *time.Time `json:"submitted_at"`
}

// StudentRollupQuery narrows a student rollup to one class or ledger status.
type StudentRollupQuery struct {
	ClassID *uuid.UUID
	Status  *string
}

// StudentRollup is the per-student analytics view combining the submission
// ledger with engagement signals. Distributions are percentages rounded to
// one decimal.
type StudentRollup struct {
	StudentID          uuid.UUID              `json:"student_id"`
	StatusDistribution map[string]int64       `json:"status_distribution"`
	CompletionRate     float64                `json:"completion_rate"`
	TotalPoints        int                    `json:"total_points"`
	Assignments        []StudentAssignmentRow `json:"assignments"`
	ActivityTypes      map[string]float64     `json:"activity_type_distribution"`
	Themes             map[string]float64     `json:"theme_distribution"`
	WeeklyTrend        []WeeklyTrendPoint     `json:"weekly_trend"`
	DailyStreak        int                    `json:"daily_streak"`
	MaxStreak          int                    `json:"max_streak"`
	WellbeingScore     *int                   `json:"wellbeing_score"`
	RiskLevel          string                 `json:"risk_level,omitempty"`
	SessionCount       int64                  `json:"session_count"`
	WindowDays         int                    `json:"window_days"`
}

// ClassRollupRow summarizes one class inside a teacher overview.
type ClassRollupRow struct {
	ClassID            uuid.UUID        `json:"class_id"`
	ClassName          string           `json:"class_name,omitempty"`
	StudentCount       int64            `json:"student_count"`
	AssignmentCount    int64            `json:"assignment_count"`
	StatusDistribution map[string]int64 `json:"status_distribution"`
	CompletionRate     float64          `json:"completion_rate"`
}

// WellbeingHighlight is one student in the wellbeing leaderboard.
type WellbeingHighlight struct {
	StudentID      uuid.UUID `json:"student_id"`
	WellbeingScore int       `json:"wellbeing_score"`
	DailyStreak    int       `json:"daily_streak"`
}

// TeacherOverview aggregates every class a teacher owns.
type TeacherOverview struct {
	TeacherID          uuid.UUID            `json:"teacher_id"`
	Classes            []ClassRollupRow     `json:"classes"`
	StatusDistribution map[string]int64     `json:"status_distribution"`
	CompletionRate     float64              `json:"completion_rate"`
	RiskBuckets        map[string]int64     `json:"risk_buckets"`
	TopPerformers      []WellbeingHighlight `json:"top_performers"`
	AtRiskStudents     []WellbeingHighlight `json:"at_risk_students"`
	WindowDays         int                  `json:"window_days"`
}

// SchoolOverview aggregates every class in a school.
type SchoolOverview struct {
	SchoolID           uuid.UUID            `json:"school_id"`
	ClassCount         int64                `json:"class_count"`
	StudentCount       int64                `json:"student_count"`
	AssignmentCount    int64                `json:"assignment_count"`
	StatusDistribution map[string]int64     `json:"status_distribution"`
	CompletionRate     float64              `json:"completion_rate"`
	RiskBuckets        map[string]int64     `json:"risk_buckets"`
	TopPerformers      []WellbeingHighlight `json:"top_performers"`
	AtRiskStudents     []WellbeingHighlight `json:"at_risk_students"`
	WeeklyTrend        []WeeklyTrendPoint   `json:"weekly_trend"`
	WindowDays         int                  `json:"window_days"`
}
