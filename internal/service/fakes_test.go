package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/apperr"
	"github.com/widya-labs/widya-go-api/internal/models"
	"github.com/widya-labs/widya-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func proofUpdateAt(at time.Time) repository.ProofUpdate {
	return repository.ProofUpdate{FileURL: "https://cdn.example.com/proof.gif", FileKind: models.FileKindImage, SubmittedAt: at}
}

func reviewVerified(score int) repository.ReviewUpdate {
	return repository.ReviewUpdate{Status: models.SubmissionStatusVerified, Score: score}
}

type fakeAssignmentRepo struct {
	assignments  map[uuid.UUID]models.Assignment
	fanoutCalls  int
	fanoutErr    error
	lastStudents []uuid.UUID
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: map[uuid.UUID]models.Assignment{}}
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) CreateWithFanout(ctx context.Context, assignment *models.Assignment, studentIDs []uuid.UUID) error {
	f.fanoutCalls++
	f.lastStudents = studentIDs
	if f.fanoutErr != nil {
		return f.fanoutErr
	}
	return f.Create(ctx, assignment)
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Assignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) ListByClass(ctx context.Context, classID uuid.UUID) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, assignment := range f.assignments {
		if assignment.ClassID == classID {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) ListActiveByClass(ctx context.Context, classID uuid.UUID) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, assignment := range f.assignments {
		if assignment.ClassID == classID && assignment.Status == models.AssignmentStatusActive {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) ListByActivity(ctx context.Context, activityID string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, assignment := range f.assignments {
		if assignment.ActivityID == activityID {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) ListByClasses(ctx context.Context, classIDs []uuid.UUID) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, classID := range classIDs {
		batch, _ := f.ListByClass(ctx, classID)
		out = append(out, batch...)
	}
	return out, nil
}

func (f *fakeAssignmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	assignment, ok := f.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.Status = status
	f.assignments[id] = assignment
	return nil
}

type fakeSubmissionRepo struct {
	submissions map[uuid.UUID]models.Submission
	assignments *fakeAssignmentRepo
}

func newFakeSubmissionRepo(assignments *fakeAssignmentRepo) *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: map[uuid.UUID]models.Submission{}, assignments: assignments}
}

func (f *fakeSubmissionRepo) CreatePending(ctx context.Context, submission *models.Submission) error {
	for _, existing := range f.submissions {
		if existing.AssignmentID == submission.AssignmentID && existing.StudentID == submission.StudentID {
			return apperr.Wrap(apperr.KindDuplicateSubmission, "a submission already exists for this student", gorm.ErrDuplicatedKey)
		}
	}
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	submission.Status = models.SubmissionStatusPending
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	if f.assignments != nil {
		if assignment, ok := f.assignments.assignments[submission.AssignmentID]; ok {
			submission.Assignment = assignment
		}
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (models.Submission, error) {
	for _, submission := range f.submissions {
		if submission.AssignmentID == assignmentID && submission.StudentID == studentID {
			if f.assignments != nil {
				if assignment, ok := f.assignments.assignments[assignmentID]; ok {
					submission.Assignment = assignment
				}
			}
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range f.submissions {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		if filter.Since != nil && (submission.SubmittedAt == nil || submission.SubmittedAt.Before(*filter.Since)) {
			continue
		}
		out = append(out, submission)
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListByAssignments(ctx context.Context, assignmentIDs []uuid.UUID) ([]models.Submission, error) {
	var out []models.Submission
	for _, id := range assignmentIDs {
		for _, submission := range f.submissions {
			if submission.AssignmentID == id {
				out = append(out, submission)
			}
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) MarkSubmitted(ctx context.Context, id uuid.UUID, update repository.ProofUpdate) (bool, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return false, nil
	}
	if !submission.CanSubmit() {
		return false, nil
	}
	submission.Status = models.SubmissionStatusSubmitted
	submission.FileURL = update.FileURL
	submission.FileKind = update.FileKind
	submission.Feedback = ""
	submittedAt := update.SubmittedAt
	submission.SubmittedAt = &submittedAt
	f.submissions[id] = submission
	return true, nil
}

func (f *fakeSubmissionRepo) ApplyReview(ctx context.Context, id uuid.UUID, update repository.ReviewUpdate) (bool, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return false, nil
	}
	if submission.Status != models.SubmissionStatusSubmitted {
		return false, nil
	}
	submission.Status = update.Status
	submission.Feedback = update.Feedback
	submission.Score = update.Score
	f.submissions[id] = submission
	return true, nil
}

func (f *fakeSubmissionRepo) CountersByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]repository.StatusCount, error) {
	byStatus := map[string]int64{}
	for _, submission := range f.submissions {
		if submission.AssignmentID == assignmentID {
			byStatus[submission.Status]++
		}
	}
	var out []repository.StatusCount
	for status, count := range byStatus {
		out = append(out, repository.StatusCount{Status: status, Count: count})
	}
	return out, nil
}

type fakeRosterRepo struct {
	classes map[uuid.UUID]models.Class
	members map[uuid.UUID][]uuid.UUID
}

func newFakeRosterRepo() *fakeRosterRepo {
	return &fakeRosterRepo{
		classes: map[uuid.UUID]models.Class{},
		members: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeRosterRepo) GetClass(ctx context.Context, classID uuid.UUID) (models.Class, error) {
	class, ok := f.classes[classID]
	if !ok {
		return models.Class{}, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (f *fakeRosterRepo) ListClassesByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Class, error) {
	var out []models.Class
	for _, class := range f.classes {
		if class.TeacherID != nil && *class.TeacherID == teacherID {
			out = append(out, class)
		}
	}
	return out, nil
}

func (f *fakeRosterRepo) ListClassesBySchool(ctx context.Context, schoolID uuid.UUID) ([]models.Class, error) {
	var out []models.Class
	for _, class := range f.classes {
		if class.SchoolID == schoolID {
			out = append(out, class)
		}
	}
	return out, nil
}

func (f *fakeRosterRepo) ListStudentIDs(ctx context.Context, classID uuid.UUID) ([]uuid.UUID, error) {
	return append([]uuid.UUID(nil), f.members[classID]...), nil
}

func (f *fakeRosterRepo) IsMember(ctx context.Context, classID, studentID uuid.UUID) (bool, error) {
	for _, id := range f.members[classID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

type fakeActivityInfoRepo struct {
	activities map[string]models.ActivityInfo
}

func newFakeActivityInfoRepo() *fakeActivityInfoRepo {
	return &fakeActivityInfoRepo{activities: map[string]models.ActivityInfo{}}
}

func (f *fakeActivityInfoRepo) Get(ctx context.Context, activityID string) (models.ActivityInfo, error) {
	info, ok := f.activities[activityID]
	if !ok {
		return models.ActivityInfo{}, gorm.ErrRecordNotFound
	}
	return info, nil
}

func (f *fakeActivityInfoRepo) BatchGet(ctx context.Context, activityIDs []string) (map[string]models.ActivityInfo, error) {
	out := map[string]models.ActivityInfo{}
	for _, id := range activityIDs {
		if info, ok := f.activities[id]; ok {
			out[id] = info
		}
	}
	return out, nil
}

type fakeEngagementRepo struct {
	summaries     map[uuid.UUID]models.EngagementSummary
	sessions      map[uuid.UUID]int64
	contentScores map[uuid.UUID]int
}

func newFakeEngagementRepo() *fakeEngagementRepo {
	return &fakeEngagementRepo{
		summaries:     map[uuid.UUID]models.EngagementSummary{},
		sessions:      map[uuid.UUID]int64{},
		contentScores: map[uuid.UUID]int{},
	}
}

func (f *fakeEngagementRepo) GetSummary(ctx context.Context, studentID uuid.UUID) (models.EngagementSummary, error) {
	summary, ok := f.summaries[studentID]
	if !ok {
		return models.EngagementSummary{}, gorm.ErrRecordNotFound
	}
	return summary, nil
}

func (f *fakeEngagementRepo) ListSummaries(ctx context.Context, studentIDs []uuid.UUID) ([]models.EngagementSummary, error) {
	var out []models.EngagementSummary
	for _, id := range studentIDs {
		if summary, ok := f.summaries[id]; ok {
			out = append(out, summary)
		}
	}
	return out, nil
}

func (f *fakeEngagementRepo) CountSessions(ctx context.Context, studentID uuid.UUID, since time.Time) (int64, error) {
	return f.sessions[studentID], nil
}

func (f *fakeEngagementRepo) ContentScores(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	for _, id := range studentIDs {
		if points, ok := f.contentScores[id]; ok {
			out[id] = points
		}
	}
	return out, nil
}

type fakeUploader struct {
	url     string
	err     error
	uploads int
}

func (f *fakeUploader) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	f.uploads++
	if f.err != nil {
		return "", f.err
	}
	if f.url != "" {
		return f.url, nil
	}
	return "https://cdn.example.com/" + name, nil
}

type fakeCommentRepo struct {
	comments []models.Comment
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]models.Comment, error) {
	var out []models.Comment
	for _, comment := range f.comments {
		if comment.SubmissionID == submissionID {
			out = append(out, comment)
		}
	}
	return out, nil
}
