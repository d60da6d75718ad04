package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/apperr"
	"github.com/widya-labs/widya-go-api/internal/dto"
	"github.com/widya-labs/widya-go-api/internal/models"
	"github.com/widya-labs/widya-go-api/internal/repository"
)

// Risk bucket keys. HIGH and CRITICAL engagement levels fold into "high".
const (
	riskBucketLow    = "low"
	riskBucketMedium = "medium"
	riskBucketHigh   = "high"
)

// AnalyticsService computes read-side rollups from the submission ledger and
// the engagement signals. Overviews are cached in Redis for a short TTL.
type AnalyticsService interface {
	ActivityRollup(ctx context.Context, actor Actor, activityID string, windowDays int) (dto.ActivityRollup, error)
	StudentRollup(ctx context.Context, actor Actor, studentID uuid.UUID, query dto.StudentRollupQuery, windowDays int) (dto.StudentRollup, error)
	TeacherOverview(ctx context.Context, actor Actor, windowDays int) (dto.TeacherOverview, error)
	SchoolOverview(ctx context.Context, actor Actor, schoolID uuid.UUID, windowDays int) (dto.SchoolOverview, error)
}

type analyticsService struct {
	assignments     repository.AssignmentRepository
	submissions     repository.SubmissionRepository
	roster          repository.RosterRepository
	activities      repository.ActivityInfoRepository
	engagement      repository.EngagementRepository
	cache           *redis.Client
	cacheTTL        time.Duration
	leaderboardSize int
	logger          zerolog.Logger
	now             func() time.Time
}

// NewAnalyticsService constructs the analytics service. The cache client may
// be nil, in which case rollups are always computed fresh.
func NewAnalyticsService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	roster repository.RosterRepository,
	activities repository.ActivityInfoRepository,
	engagement repository.EngagementRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	leaderboardSize int,
	logger zerolog.Logger,
) AnalyticsService {
	if leaderboardSize <= 0 {
		leaderboardSize = 5
	}
	return &analyticsService{
		assignments:     assignments,
		submissions:     submissions,
		roster:          roster,
		activities:      activities,
		engagement:      engagement,
		cache:           cache,
		cacheTTL:        cacheTTL,
		leaderboardSize: leaderboardSize,
		logger:          logger.With().Str("component", "analytics_service").Logger(),
		now:             time.Now,
	}
}

// ActivityRollup summarizes one activity across every class it was assigned
// to. Status counts cover the whole ledger; the timeline honors the window.
func (s *analyticsService) ActivityRollup(ctx context.Context, actor Actor, activityID string, windowDays int) (dto.ActivityRollup, error) {
	tracer := otel.Tracer("github.com/widya-labs/widya-go-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.activity_rollup")
	span.SetAttributes(
		attribute.String("analytics.activity_id", activityID),
		attribute.Int("analytics.window_days", windowDays),
	)
	defer span.End()

	if !actor.IsStaff() {
		return dto.ActivityRollup{}, apperr.New(apperr.KindForbidden, "only staff can view activity analytics")
	}

	activityName := ""
	inCatalog := true
	if info, err := s.activities.Get(ctx, activityID); err == nil {
		activityName = info.Name
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		inCatalog = false
	} else {
		span.RecordError(err)
		return dto.ActivityRollup{}, apperr.Wrap(apperr.KindDependency, "activity catalog lookup failed", err)
	}

	assignments, err := s.assignments.ListByActivity(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		return dto.ActivityRollup{}, err
	}

	// An identifier neither the catalog nor the ledger knows is a bad
	// reference, not an empty rollup.
	if !inCatalog && len(assignments) == 0 {
		return dto.ActivityRollup{}, apperr.New(apperr.KindNotFound, "activity not found")
	}

	assignmentIDs := make([]uuid.UUID, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
	}

	submissions, err := s.submissions.ListByAssignments(ctx, assignmentIDs)
	if err != nil {
		span.RecordError(err)
		return dto.ActivityRollup{}, err
	}

	since := s.windowStart(windowDays)
	rollup := buildActivityRollup(activityID, activityName, assignments, submissions, since, windowDays)

	span.SetAttributes(attribute.Int64("analytics.total_expected", rollup.TotalExpected))
	return rollup, nil
}

// StudentRollup is the per-student view: ledger distribution, assignment
// rows, type and theme distributions, verified trend, and wellbeing signals.
// Missing engagement data degrades to zero values rather than failing the
// request.
func (s *analyticsService) StudentRollup(ctx context.Context, actor Actor, studentID uuid.UUID, query dto.StudentRollupQuery, windowDays int) (dto.StudentRollup, error) {
	tracer := otel.Tracer("github.com/widya-labs/widya-go-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.student_rollup")
	span.SetAttributes(attribute.String("analytics.student_id", studentID.String()))
	defer span.End()

	if !actor.IsStaff() && actor.ID != studentID {
		return dto.StudentRollup{}, apperr.New(apperr.KindForbidden, "cannot view another student's analytics")
	}

	if query.Status != nil && !models.IsValidSubmissionStatus(*query.Status) {
		return dto.StudentRollup{}, apperr.New(apperr.KindValidation, "unknown submission status")
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID, Status: query.Status})
	if err != nil {
		span.RecordError(err)
		return dto.StudentRollup{}, err
	}

	assignmentByID := map[uuid.UUID]models.Assignment{}
	activityIDs := make([]string, 0, len(submissions))
	filtered := make([]models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			span.RecordError(err)
			return dto.StudentRollup{}, err
		}
		if query.ClassID != nil && assignment.ClassID != *query.ClassID {
			continue
		}
		assignmentByID[assignment.ID] = assignment
		activityIDs = append(activityIDs, assignment.ActivityID)
		filtered = append(filtered, submission)
	}
	submissions = filtered

	activityInfo, err := s.activities.BatchGet(ctx, activityIDs)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Msg("activity catalog unavailable")
		activityInfo = map[string]models.ActivityInfo{}
	}

	since := s.windowStart(windowDays)
	rollup := buildStudentRollup(studentID, submissions, assignmentByID, activityInfo, since, windowDays)

	// Engagement signals are best effort: the pipeline may not have produced
	// a summary for this student yet.
	if summary, err := s.engagement.GetSummary(ctx, studentID); err == nil {
		rollup.DailyStreak = summary.DailyStreak
		rollup.MaxStreak = summary.MaxStreak
		rollup.WellbeingScore = summary.WellbeingScore
		rollup.RiskLevel = summary.RiskLevel
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn().Err(err).Str("student_id", studentID.String()).Msg("engagement summary unavailable")
	}

	if sessions, err := s.engagement.CountSessions(ctx, studentID, since); err == nil {
		rollup.SessionCount = sessions
	} else {
		s.logger.Warn().Err(err).Str("student_id", studentID.String()).Msg("session count unavailable")
	}

	return rollup, nil
}

// TeacherOverview aggregates every class the teacher owns, with per-class
// rollups, risk buckets, and a wellbeing leaderboard.
func (s *analyticsService) TeacherOverview(ctx context.Context, actor Actor, windowDays int) (dto.TeacherOverview, error) {
	tracer := otel.Tracer("github.com/widya-labs/widya-go-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.teacher_overview")
	span.SetAttributes(attribute.String("analytics.teacher_id", actor.ID.String()))
	defer span.End()

	if actor.Role != RoleSchoolTeacher && actor.Role != RoleAdministrator {
		return dto.TeacherOverview{}, apperr.New(apperr.KindForbidden, "only staff can view this overview")
	}

	cacheKey := fmt.Sprintf("analytics:teacher:%s:%d", actor.ID, windowDays)
	var cached dto.TeacherOverview
	if s.cacheGet(ctx, cacheKey, &cached) {
		span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
		return cached, nil
	}

	classes, err := s.roster.ListClassesByTeacher(ctx, actor.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "roster_lookup_failed")
		return dto.TeacherOverview{}, apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}

	overview := dto.TeacherOverview{
		TeacherID:          actor.ID,
		Classes:            []dto.ClassRollupRow{},
		StatusDistribution: emptyDistribution(),
		RiskBuckets:        emptyRiskBuckets(),
		TopPerformers:      []dto.WellbeingHighlight{},
		AtRiskStudents:     []dto.WellbeingHighlight{},
		WindowDays:         windowDays,
	}

	var allStudents []uuid.UUID
	seen := map[uuid.UUID]struct{}{}
	for _, class := range classes {
		row, studentIDs, err := s.classRollup(ctx, class)
		if err != nil {
			span.RecordError(err)
			return dto.TeacherOverview{}, err
		}
		overview.Classes = append(overview.Classes, row)
		for status, count := range row.StatusDistribution {
			overview.StatusDistribution[status] += count
		}
		for _, id := range studentIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			allStudents = append(allStudents, id)
		}
	}
	overview.CompletionRate = completionRate(overview.StatusDistribution)

	summaries, err := s.engagement.ListSummaries(ctx, allStudents)
	if err != nil {
		s.logger.Warn().Err(err).Msg("engagement summaries unavailable")
		summaries = nil
	}
	overview.RiskBuckets = buildRiskBuckets(summaries)
	overview.TopPerformers = buildWellbeingLeaderboard(summaries, s.leaderboardSize, false)
	overview.AtRiskStudents = buildWellbeingLeaderboard(summaries, s.leaderboardSize, true)

	s.cacheSet(ctx, cacheKey, overview)
	return overview, nil
}

// SchoolOverview aggregates every class in the school.
func (s *analyticsService) SchoolOverview(ctx context.Context, actor Actor, schoolID uuid.UUID, windowDays int) (dto.SchoolOverview, error) {
	tracer := otel.Tracer("github.com/widya-labs/widya-go-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.school_overview")
	span.SetAttributes(attribute.String("analytics.school_id", schoolID.String()))
	defer span.End()

	if actor.Role != RoleAdministrator {
		return dto.SchoolOverview{}, apperr.New(apperr.KindForbidden, "only administrators can view school analytics")
	}

	cacheKey := fmt.Sprintf("analytics:school:%s:%d", schoolID, windowDays)
	var cached dto.SchoolOverview
	if s.cacheGet(ctx, cacheKey, &cached) {
		span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
		return cached, nil
	}

	classes, err := s.roster.ListClassesBySchool(ctx, schoolID)
	if err != nil {
		span.RecordError(err)
		return dto.SchoolOverview{}, apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}

	classIDs := make([]uuid.UUID, 0, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ClassID)
	}

	assignments, err := s.assignments.ListByClasses(ctx, classIDs)
	if err != nil {
		span.RecordError(err)
		return dto.SchoolOverview{}, err
	}

	assignmentIDs := make([]uuid.UUID, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
	}

	submissions, err := s.submissions.ListByAssignments(ctx, assignmentIDs)
	if err != nil {
		span.RecordError(err)
		return dto.SchoolOverview{}, err
	}

	var students []uuid.UUID
	seen := map[uuid.UUID]struct{}{}
	var studentCount int64
	for _, class := range classes {
		ids, err := s.roster.ListStudentIDs(ctx, class.ClassID)
		if err != nil {
			span.RecordError(err)
			return dto.SchoolOverview{}, apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			students = append(students, id)
		}
	}
	studentCount = int64(len(students))

	summaries, err := s.engagement.ListSummaries(ctx, students)
	if err != nil {
		s.logger.Warn().Err(err).Msg("engagement summaries unavailable")
		summaries = nil
	}

	since := s.windowStart(windowDays)
	distribution := buildStatusDistribution(submissions)
	overview := dto.SchoolOverview{
		SchoolID:           schoolID,
		ClassCount:         int64(len(classes)),
		StudentCount:       studentCount,
		AssignmentCount:    int64(len(assignments)),
		StatusDistribution: distribution,
		CompletionRate:     completionRate(distribution),
		RiskBuckets:        buildRiskBuckets(summaries),
		TopPerformers:      buildWellbeingLeaderboard(summaries, s.leaderboardSize, false),
		AtRiskStudents:     buildWellbeingLeaderboard(summaries, s.leaderboardSize, true),
		WeeklyTrend:        buildWeeklyTrend(submissions, since),
		WindowDays:         windowDays,
	}

	s.cacheSet(ctx, cacheKey, overview)
	return overview, nil
}

func (s *analyticsService) classRollup(ctx context.Context, class models.Class) (dto.ClassRollupRow, []uuid.UUID, error) {
	studentIDs, err := s.roster.ListStudentIDs(ctx, class.ClassID)
	if err != nil {
		return dto.ClassRollupRow{}, nil, apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}

	assignments, err := s.assignments.ListByClass(ctx, class.ClassID)
	if err != nil {
		return dto.ClassRollupRow{}, nil, err
	}

	assignmentIDs := make([]uuid.UUID, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
	}

	submissions, err := s.submissions.ListByAssignments(ctx, assignmentIDs)
	if err != nil {
		return dto.ClassRollupRow{}, nil, err
	}

	distribution := buildStatusDistribution(submissions)
	return dto.ClassRollupRow{
		ClassID:            class.ClassID,
		ClassName:          class.Name,
		StudentCount:       int64(len(studentIDs)),
		AssignmentCount:    int64(len(assignments)),
		StatusDistribution: distribution,
		CompletionRate:     completionRate(distribution),
	}, studentIDs, nil
}

func (s *analyticsService) windowStart(windowDays int) time.Time {
	return s.now().UTC().AddDate(0, 0, -windowDays)
}

func (s *analyticsService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (s *analyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache rollup")
	}
}

// emptyDistribution returns a zero-filled counter for every ledger status so
// clients never have to guess at missing keys.
func emptyDistribution() map[string]int64 {
	distribution := make(map[string]int64, 4)
	for _, status := range models.SubmissionStatuses() {
		distribution[status] = 0
	}
	return distribution
}

func emptyRiskBuckets() map[string]int64 {
	return map[string]int64{
		riskBucketLow:    0,
		riskBucketMedium: 0,
		riskBucketHigh:   0,
	}
}

func buildStatusDistribution(submissions []models.Submission) map[string]int64 {
	distribution := emptyDistribution()
	for _, submission := range submissions {
		distribution[submission.Status]++
	}
	return distribution
}

// completionRate is the percentage of ledger rows that have been acted on,
// any status except PENDING. An empty ledger reports zero rather than
// dividing by it.
func completionRate(distribution map[string]int64) float64 {
	var total, completed int64
	for status, count := range distribution {
		total += count
		if status != models.SubmissionStatusPending {
			completed += count
		}
	}
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

func distributionTotals(distribution map[string]int64) (expected, completed int64) {
	for status, count := range distribution {
		expected += count
		if status != models.SubmissionStatusPending {
			completed += count
		}
	}
	return expected, completed
}

// buildActivityRollup folds one activity's assignments and ledger rows into
// the API shape, repeating the metrics per assignment in the breakdown.
func buildActivityRollup(activityID, activityName string, assignments []models.Assignment, submissions []models.Submission, since time.Time, windowDays int) dto.ActivityRollup {
	distribution := buildStatusDistribution(submissions)
	expected, completed := distributionTotals(distribution)

	byAssignment := map[uuid.UUID][]models.Submission{}
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = append(byAssignment[submission.AssignmentID], submission)
	}

	breakdown := make([]dto.AssignmentBreakdown, 0, len(assignments))
	for _, assignment := range assignments {
		rows := buildStatusDistribution(byAssignment[assignment.ID])
		rowExpected, rowCompleted := distributionTotals(rows)
		breakdown = append(breakdown, dto.AssignmentBreakdown{
			AssignmentID:       assignment.ID,
			ClassID:            assignment.ClassID,
			TotalExpected:      rowExpected,
			TotalCompleted:     rowCompleted,
			CompletionRate:     completionRate(rows),
			VerifiedCount:      rows[models.SubmissionStatusVerified],
			PendingReview:      rows[models.SubmissionStatusSubmitted],
			StatusDistribution: rows,
		})
	}

	return dto.ActivityRollup{
		ActivityID:         activityID,
		ActivityName:       activityName,
		TotalExpected:      expected,
		TotalCompleted:     completed,
		CompletionRate:     completionRate(distribution),
		VerifiedCount:      distribution[models.SubmissionStatusVerified],
		PendingReview:      distribution[models.SubmissionStatusSubmitted],
		StatusDistribution: distribution,
		ClassBreakdown:     breakdown,
		SubmissionTimeline: buildTimeline(submissions, since),
		WindowDays:         windowDays,
	}
}

func buildStudentRollup(studentID uuid.UUID, submissions []models.Submission, assignments map[uuid.UUID]models.Assignment, activities map[string]models.ActivityInfo, since time.Time, windowDays int) dto.StudentRollup {
	distribution := buildStatusDistribution(submissions)

	rows := make([]dto.StudentAssignmentRow, 0, len(submissions))
	totalPoints := 0
	for _, submission := range submissions {
		assignment, ok := assignments[submission.AssignmentID]
		if !ok {
			continue
		}
		name := ""
		if info, ok := activities[assignment.ActivityID]; ok {
			name = info.Name
		}
		rows = append(rows, dto.StudentAssignmentRow{
			AssignmentID: assignment.ID,
			ActivityID:   assignment.ActivityID,
			ActivityName: name,
			Status:       submission.Status,
			Score:        submission.Score,
			DueDate:      assignment.DueDate,
			SubmittedAt:  submission.SubmittedAt,
		})
		if submission.Status == models.SubmissionStatusVerified {
			totalPoints += submission.Score
		}
	}

	return dto.StudentRollup{
		StudentID:          studentID,
		StatusDistribution: distribution,
		CompletionRate:     completionRate(distribution),
		TotalPoints:        totalPoints,
		Assignments:        rows,
		ActivityTypes:      buildTypeDistribution(submissions, assignments, activities),
		Themes:             buildThemeDistribution(submissions, assignments, activities),
		WeeklyTrend:        buildWeeklyTrend(submissions, since),
		WindowDays:         windowDays,
	}
}

// buildTypeDistribution shares the student's ledger rows across activity
// types, as percentages rounded to one decimal.
func buildTypeDistribution(submissions []models.Submission, assignments map[uuid.UUID]models.Assignment, activities map[string]models.ActivityInfo) map[string]float64 {
	counts := map[string]int64{}
	var total int64
	for _, submission := range submissions {
		assignment, ok := assignments[submission.AssignmentID]
		if !ok {
			continue
		}
		info, ok := activities[assignment.ActivityID]
		if !ok || info.Type == "" {
			continue
		}
		counts[info.Type]++
		total++
	}
	return toPercentages(counts, total)
}

// buildThemeDistribution does the same over activity themes. A row with
// several themes contributes to each of them.
func buildThemeDistribution(submissions []models.Submission, assignments map[uuid.UUID]models.Assignment, activities map[string]models.ActivityInfo) map[string]float64 {
	counts := map[string]int64{}
	var total int64
	for _, submission := range submissions {
		assignment, ok := assignments[submission.AssignmentID]
		if !ok {
			continue
		}
		info, ok := activities[assignment.ActivityID]
		if !ok {
			continue
		}
		for _, theme := range info.Themes {
			counts[theme]++
			total++
		}
	}
	return toPercentages(counts, total)
}

func toPercentages(counts map[string]int64, total int64) map[string]float64 {
	percentages := make(map[string]float64, len(counts))
	if total == 0 {
		return percentages
	}
	for key, count := range counts {
		percentages[key] = math.Round(float64(count)/float64(total)*1000) / 10
	}
	return percentages
}

// buildTimeline counts submissions per day inside the window. Days without
// submissions are omitted; entries are date ascending.
func buildTimeline(submissions []models.Submission, since time.Time) []dto.TimelinePoint {
	byDay := map[string]int64{}
	for _, submission := range submissions {
		if submission.SubmittedAt == nil || submission.SubmittedAt.Before(since) {
			continue
		}
		byDay[submission.SubmittedAt.UTC().Format("2006-01-02")]++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	timeline := make([]dto.TimelinePoint, 0, len(days))
	for _, day := range days {
		timeline = append(timeline, dto.TimelinePoint{Date: day, Count: byDay[day]})
	}
	return timeline
}

// buildWeeklyTrend counts completed submissions per week inside the window,
// keyed by the Monday the week starts on, week ascending. Completed means
// handed in; the verdict that followed does not matter, matching the
// completion rate definition.
func buildWeeklyTrend(submissions []models.Submission, since time.Time) []dto.WeeklyTrendPoint {
	byWeek := map[string]int64{}
	for _, submission := range submissions {
		if submission.SubmittedAt == nil || submission.SubmittedAt.Before(since) {
			continue
		}
		day := submission.SubmittedAt.UTC()
		weekStart := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
		byWeek[weekStart.Format("2006-01-02")]++
	}

	weeks := make([]string, 0, len(byWeek))
	for week := range byWeek {
		weeks = append(weeks, week)
	}
	sort.Strings(weeks)

	trend := make([]dto.WeeklyTrendPoint, 0, len(weeks))
	for _, week := range weeks {
		trend = append(trend, dto.WeeklyTrendPoint{WeekStart: week, Count: byWeek[week]})
	}
	return trend
}

// buildRiskBuckets folds engagement risk levels into three buckets. HIGH and
// CRITICAL both count as high.
func buildRiskBuckets(summaries []models.EngagementSummary) map[string]int64 {
	buckets := emptyRiskBuckets()
	for _, summary := range summaries {
		switch summary.RiskLevel {
		case models.RiskLevelLow:
			buckets[riskBucketLow]++
		case models.RiskLevelMedium:
			buckets[riskBucketMedium]++
		case models.RiskLevelHigh, models.RiskLevelCritical:
			buckets[riskBucketHigh]++
		}
	}
	return buckets
}

// buildWellbeingLeaderboard picks the top students by wellbeing score,
// descending for top performers and ascending for the at-risk list. Students
// without a score are skipped; ties order by student identifier.
func buildWellbeingLeaderboard(summaries []models.EngagementSummary, size int, ascending bool) []dto.WellbeingHighlight {
	scored := make([]models.EngagementSummary, 0, len(summaries))
	for _, summary := range summaries {
		if summary.WellbeingScore != nil {
			scored = append(scored, summary)
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if *scored[i].WellbeingScore != *scored[j].WellbeingScore {
			if ascending {
				return *scored[i].WellbeingScore < *scored[j].WellbeingScore
			}
			return *scored[i].WellbeingScore > *scored[j].WellbeingScore
		}
		return scored[i].StudentID.String() < scored[j].StudentID.String()
	})

	if len(scored) > size {
		scored = scored[:size]
	}

	leaderboard := make([]dto.WellbeingHighlight, 0, len(scored))
	for _, summary := range scored {
		leaderboard = append(leaderboard, dto.WellbeingHighlight{
			StudentID:      summary.StudentID,
			WellbeingScore: *summary.WellbeingScore,
			DailyStreak:    summary.DailyStreak,
		})
	}
	return leaderboard
}
