package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/widya-labs/widya-go-api/internal/apperr"
	"github.com/widya-labs/widya-go-api/internal/dto"
	"github.com/widya-labs/widya-go-api/internal/models"
)

func newAnalyticsFixture() (*fakeAssignmentRepo, *fakeSubmissionRepo, *fakeRosterRepo, *fakeActivityInfoRepo, *fakeEngagementRepo) {
	assignments := newFakeAssignmentRepo()
	return assignments, newFakeSubmissionRepo(assignments), newFakeRosterRepo(), newFakeActivityInfoRepo(), newFakeEngagementRepo()
}

func TestActivityRollupZeroFillsStatusDistribution(t *testing.T) {
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()
	activities.activities["breathing-101"] = models.ActivityInfo{ActivityID: "breathing-101", Name: "Breathing"}

	teacherID := uuid.New()
	classID := seedClass(roster, teacherID, uuid.New())
	assignment := models.Assignment{ActivityID: "breathing-101", ClassID: classID, AssignedBy: teacherID, Status: models.AssignmentStatusActive}
	require.NoError(t, assignments.Create(context.Background(), &assignment))

	studentID := uuid.New()
	submission := models.Submission{AssignmentID: assignment.ID, StudentID: studentID}
	require.NoError(t, submissions.CreatePending(context.Background(), &submission))

	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 5, testLogger())

	rollup, err := svc.ActivityRollup(context.Background(), Actor{ID: teacherID, Role: RoleSchoolTeacher}, "breathing-101", 30)
	require.NoError(t, err)
	require.Equal(t, "Breathing", rollup.ActivityName)
	require.Equal(t, int64(1), rollup.TotalExpected)
	require.Zero(t, rollup.TotalCompleted)
	require.Len(t, rollup.ClassBreakdown, 1)
	require.Equal(t, int64(1), rollup.ClassBreakdown[0].TotalExpected)

	// Every status key is present even when its count is zero.
	for _, status := range models.SubmissionStatuses() {
		_, ok := rollup.StatusDistribution[status]
		require.True(t, ok, "missing status %s", status)
	}
	require.Equal(t, int64(1), rollup.StatusDistribution[models.SubmissionStatusPending])
	require.Zero(t, rollup.CompletionRate)
	require.Empty(t, rollup.SubmissionTimeline, "pending rows carry no submitted_at")
}

func TestActivityRollupRequiresStaff(t *testing.T) {
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()
	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 5, testLogger())

	_, err := svc.ActivityRollup(context.Background(), Actor{ID: uuid.New(), Role: RoleSchoolStudent}, "breathing-101", 30)
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestActivityRollupUnknownActivityIsNotFound(t *testing.T) {
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()
	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 5, testLogger())

	_, err := svc.ActivityRollup(context.Background(), Actor{ID: uuid.New(), Role: RoleSchoolTeacher}, "no-such-activity", 30)
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestActivityRollupSurvivesCatalogGap(t *testing.T) {
	// An activity missing from the catalog but present in the ledger still
	// rolls up, just without a display name.
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()

	teacherID := uuid.New()
	classID := seedClass(roster, teacherID, uuid.New())
	assignment := models.Assignment{ActivityID: "retired-301", ClassID: classID, AssignedBy: teacherID, Status: models.AssignmentStatusActive}
	require.NoError(t, assignments.Create(context.Background(), &assignment))
	submission := models.Submission{AssignmentID: assignment.ID, StudentID: uuid.New()}
	require.NoError(t, submissions.CreatePending(context.Background(), &submission))

	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 5, testLogger())

	rollup, err := svc.ActivityRollup(context.Background(), Actor{ID: teacherID, Role: RoleSchoolTeacher}, "retired-301", 30)
	require.NoError(t, err)
	require.Empty(t, rollup.ActivityName)
	require.Equal(t, int64(1), rollup.TotalExpected)
}

func TestStudentRollupDegradesWithoutEngagementData(t *testing.T) {
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()

	teacherID := uuid.New()
	studentID := uuid.New()
	classID := seedClass(roster, teacherID, studentID)

	assignment := models.Assignment{ActivityID: "a", ClassID: classID, AssignedBy: teacherID, Status: models.AssignmentStatusActive}
	require.NoError(t, assignments.Create(context.Background(), &assignment))

	submission := models.Submission{AssignmentID: assignment.ID, StudentID: studentID}
	require.NoError(t, submissions.CreatePending(context.Background(), &submission))
	now := time.Now().UTC()
	changed, err := submissions.MarkSubmitted(context.Background(), submission.ID, proofUpdateAt(now))
	require.NoError(t, err)
	require.True(t, changed)
	changed, err = submissions.ApplyReview(context.Background(), submission.ID, reviewVerified(8))
	require.NoError(t, err)
	require.True(t, changed)

	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 5, testLogger())

	rollup, err := svc.StudentRollup(context.Background(), Actor{ID: studentID, Role: RoleSchoolStudent}, studentID, dto.StudentRollupQuery{}, 30)
	require.NoError(t, err)
	require.Equal(t, 8, rollup.TotalPoints)
	require.Equal(t, float64(100), rollup.CompletionRate)
	require.Len(t, rollup.WeeklyTrend, 1)
	require.Zero(t, rollup.DailyStreak, "missing engagement summary degrades to zero")
	require.Nil(t, rollup.WellbeingScore)
}

func TestStudentRollupTypeAndThemeDistributions(t *testing.T) {
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()

	teacherID := uuid.New()
	studentID := uuid.New()
	classID := seedClass(roster, teacherID, studentID)

	activities.activities["breathing-101"] = models.ActivityInfo{
		ActivityID: "breathing-101",
		Name:       "Breathing",
		Type:       "MINDFULNESS",
		Themes:     datatypes.JSONSlice[string]{"calm"},
	}
	activities.activities["journal-201"] = models.ActivityInfo{
		ActivityID: "journal-201",
		Name:       "Journaling",
		Type:       "REFLECTION",
		Themes:     datatypes.JSONSlice[string]{"calm", "gratitude"},
	}

	for _, activityID := range []string{"breathing-101", "journal-201"} {
		assignment := models.Assignment{ActivityID: activityID, ClassID: classID, AssignedBy: teacherID, Status: models.AssignmentStatusActive}
		require.NoError(t, assignments.Create(context.Background(), &assignment))
		submission := models.Submission{AssignmentID: assignment.ID, StudentID: studentID}
		require.NoError(t, submissions.CreatePending(context.Background(), &submission))
	}

	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 5, testLogger())

	rollup, err := svc.StudentRollup(context.Background(), Actor{ID: studentID, Role: RoleSchoolStudent}, studentID, dto.StudentRollupQuery{}, 30)
	require.NoError(t, err)
	require.Equal(t, 50.0, rollup.ActivityTypes["MINDFULNESS"])
	require.Equal(t, 50.0, rollup.ActivityTypes["REFLECTION"])
	require.Equal(t, 66.7, rollup.Themes["calm"])
	require.Equal(t, 33.3, rollup.Themes["gratitude"])
}

func TestStudentRollupClassAndStatusFilters(t *testing.T) {
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()

	teacherID := uuid.New()
	studentID := uuid.New()
	classA := seedClass(roster, teacherID, studentID)
	classB := seedClass(roster, teacherID, studentID)

	for _, classID := range []uuid.UUID{classA, classB} {
		assignment := models.Assignment{ActivityID: "a", ClassID: classID, AssignedBy: teacherID, Status: models.AssignmentStatusActive}
		require.NoError(t, assignments.Create(context.Background(), &assignment))
		submission := models.Submission{AssignmentID: assignment.ID, StudentID: studentID}
		require.NoError(t, submissions.CreatePending(context.Background(), &submission))
	}

	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 5, testLogger())
	actor := Actor{ID: studentID, Role: RoleSchoolStudent}

	rollup, err := svc.StudentRollup(context.Background(), actor, studentID, dto.StudentRollupQuery{ClassID: &classA}, 30)
	require.NoError(t, err)
	require.Len(t, rollup.Assignments, 1)

	verified := models.SubmissionStatusVerified
	rollup, err = svc.StudentRollup(context.Background(), actor, studentID, dto.StudentRollupQuery{Status: &verified}, 30)
	require.NoError(t, err)
	require.Empty(t, rollup.Assignments)

	bogus := "DONE"
	_, err = svc.StudentRollup(context.Background(), actor, studentID, dto.StudentRollupQuery{Status: &bogus}, 30)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestStudentRollupForbidsPeeking(t *testing.T) {
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()
	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 5, testLogger())

	_, err := svc.StudentRollup(context.Background(), Actor{ID: uuid.New(), Role: RoleSchoolStudent}, uuid.New(), dto.StudentRollupQuery{}, 30)
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestTeacherOverviewBucketsAndLeaderboard(t *testing.T) {
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()

	teacherID := uuid.New()
	students := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	seedClass(roster, teacherID, students...)

	scores := []int{70, 90, 80}
	levels := []string{models.RiskLevelLow, models.RiskLevelHigh, models.RiskLevelCritical}
	for i, studentID := range students {
		score := scores[i]
		engagement.summaries[studentID] = models.EngagementSummary{
			StudentID:      studentID,
			WellbeingScore: &score,
			RiskLevel:      levels[i],
			DailyStreak:    i,
		}
	}

	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 2, testLogger())

	overview, err := svc.TeacherOverview(context.Background(), Actor{ID: teacherID, Role: RoleSchoolTeacher}, 30)
	require.NoError(t, err)
	require.Len(t, overview.Classes, 1)
	require.Equal(t, int64(1), overview.RiskBuckets["low"])
	require.Equal(t, int64(0), overview.RiskBuckets["medium"])
	require.Equal(t, int64(2), overview.RiskBuckets["high"], "HIGH and CRITICAL fold together")

	require.Len(t, overview.TopPerformers, 2, "leaderboard is capped")
	require.Equal(t, 90, overview.TopPerformers[0].WellbeingScore)
	require.Equal(t, 80, overview.TopPerformers[1].WellbeingScore)

	require.Len(t, overview.AtRiskStudents, 2)
	require.Equal(t, 70, overview.AtRiskStudents[0].WellbeingScore)
	require.Equal(t, 80, overview.AtRiskStudents[1].WellbeingScore)
}

func TestTeacherOverviewIsCached(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()
	teacherID := uuid.New()
	seedClass(roster, teacherID, uuid.New())

	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, client, time.Minute, 5, testLogger())
	actor := Actor{ID: teacherID, Role: RoleSchoolTeacher}

	first, err := svc.TeacherOverview(context.Background(), actor, 30)
	require.NoError(t, err)
	require.Len(t, first.Classes, 1)

	// New classes do not show up until the cache entry expires.
	seedClass(roster, teacherID, uuid.New())
	second, err := svc.TeacherOverview(context.Background(), actor, 30)
	require.NoError(t, err)
	require.Len(t, second.Classes, 1)

	server.FastForward(2 * time.Minute)
	third, err := svc.TeacherOverview(context.Background(), actor, 30)
	require.NoError(t, err)
	require.Len(t, third.Classes, 2)
}

func TestSchoolOverviewRequiresAdministrator(t *testing.T) {
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()
	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 5, testLogger())

	_, err := svc.SchoolOverview(context.Background(), Actor{ID: uuid.New(), Role: RoleSchoolTeacher}, uuid.New(), 30)
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestSchoolOverviewAggregatesClasses(t *testing.T) {
	assignments, submissions, roster, activities, engagement := newAnalyticsFixture()

	schoolID := uuid.New()
	teacherID := uuid.New()
	studentA := uuid.New()
	studentB := uuid.New()

	classA := seedClass(roster, teacherID, studentA)
	classB := seedClass(roster, teacherID, studentB)
	for _, id := range []uuid.UUID{classA, classB} {
		class := roster.classes[id]
		class.SchoolID = schoolID
		roster.classes[id] = class
	}

	assignment := models.Assignment{ActivityID: "a", ClassID: classA, AssignedBy: teacherID, Status: models.AssignmentStatusActive}
	require.NoError(t, assignments.Create(context.Background(), &assignment))
	submission := models.Submission{AssignmentID: assignment.ID, StudentID: studentA}
	require.NoError(t, submissions.CreatePending(context.Background(), &submission))
	now := time.Now().UTC()
	_, err := submissions.MarkSubmitted(context.Background(), submission.ID, proofUpdateAt(now))
	require.NoError(t, err)
	_, err = submissions.ApplyReview(context.Background(), submission.ID, reviewVerified(10))
	require.NoError(t, err)

	svc := NewAnalyticsService(assignments, submissions, roster, activities, engagement, nil, time.Minute, 5, testLogger())

	overview, err := svc.SchoolOverview(context.Background(), Actor{ID: uuid.New(), Role: RoleAdministrator}, schoolID, 30)
	require.NoError(t, err)
	require.Equal(t, int64(2), overview.ClassCount)
	require.Equal(t, int64(2), overview.StudentCount)
	require.Equal(t, int64(1), overview.AssignmentCount)
	require.Equal(t, int64(1), overview.StatusDistribution[models.SubmissionStatusVerified])
	require.Equal(t, float64(100), overview.CompletionRate)
	require.Len(t, overview.WeeklyTrend, 1)
}

func TestWeeklyTrendBucketsByWeekStart(t *testing.T) {
	// 2026-02-04 is a Wednesday; its week starts on Monday 2026-02-02.
	rejectedAt := time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC)
	verifiedAt := rejectedAt.Add(24 * time.Hour)
	nextWeekAt := rejectedAt.AddDate(0, 0, 7)
	submissions := []models.Submission{
		{Status: models.SubmissionStatusRejected, SubmittedAt: &rejectedAt},
		{Status: models.SubmissionStatusVerified, SubmittedAt: &verifiedAt},
		{Status: models.SubmissionStatusSubmitted, SubmittedAt: &nextWeekAt},
		{Status: models.SubmissionStatusPending},
	}

	trend := buildWeeklyTrend(submissions, rejectedAt.AddDate(0, 0, -30))
	require.Len(t, trend, 2)
	require.Equal(t, "2026-02-02", trend[0].WeekStart)
	require.Equal(t, int64(2), trend[0].Count, "a rejected hand-in still counts as completed")
	require.Equal(t, "2026-02-09", trend[1].WeekStart)
	require.Equal(t, int64(1), trend[1].Count)
}
