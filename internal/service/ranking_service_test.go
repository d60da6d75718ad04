package service

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/widya-labs/widya-go-api/internal/models"
)

func sortedStudentIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

func verifiedSubmission(studentID uuid.UUID, score int, submittedAt time.Time) models.Submission {
	return models.Submission{
		ID:          uuid.New(),
		StudentID:   studentID,
		Status:      models.SubmissionStatusVerified,
		Score:       score,
		SubmittedAt: &submittedAt,
	}
}

func TestRankStudentsCompetitionNumbering(t *testing.T) {
	ids := sortedStudentIDs(4)
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -30)

	submissions := []models.Submission{
		verifiedSubmission(ids[0], 10, now),
		verifiedSubmission(ids[1], 10, now),
		verifiedSubmission(ids[2], 5, now),
	}

	ranked := rankStudents(ids, submissions, nil, since)
	require.Len(t, ranked, 4)

	// Two students tie at 10 points and share rank 1; the next distinct
	// score lands at rank 3.
	require.Equal(t, 1, ranked[0].Rank)
	require.Equal(t, 1, ranked[1].Rank)
	require.Equal(t, 3, ranked[2].Rank)
	require.Equal(t, 5, ranked[2].Points)
	require.Equal(t, 4, ranked[3].Rank)
	require.Equal(t, 0, ranked[3].Points, "roster members without points still appear")

	// Ties order by student identifier ascending.
	require.True(t, bytes.Compare(ranked[0].StudentID[:], ranked[1].StudentID[:]) < 0)
}

func TestRankStudentsIgnoresUnverifiedAndStaleSubmissions(t *testing.T) {
	ids := sortedStudentIDs(2)
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -30)

	old := now.AddDate(0, 0, -40)
	submitted := models.Submission{ID: uuid.New(), StudentID: ids[0], Status: models.SubmissionStatusSubmitted, Score: 50, SubmittedAt: &now}

	ranked := rankStudents(ids, []models.Submission{
		submitted,
		verifiedSubmission(ids[0], 20, old),
		verifiedSubmission(ids[1], 5, now),
	}, nil, since)

	require.Equal(t, ids[1], ranked[0].StudentID)
	require.Equal(t, 5, ranked[0].Points)
	require.Equal(t, 0, ranked[1].Points)
}

func TestRankStudentsMergesContentScores(t *testing.T) {
	ids := sortedStudentIDs(2)
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -30)

	ranked := rankStudents(ids, []models.Submission{
		verifiedSubmission(ids[0], 10, now),
	}, map[uuid.UUID]int{ids[1]: 25}, since)

	require.Equal(t, ids[1], ranked[0].StudentID)
	require.Equal(t, 25, ranked[0].Points)
	require.Equal(t, int64(0), ranked[0].VerifiedCount)
	require.Equal(t, 10, ranked[1].Points)
	require.Equal(t, int64(1), ranked[1].VerifiedCount)
}

func TestRankClassAuthorizesStudentMembership(t *testing.T) {
	assignments := newFakeAssignmentRepo()
	submissions := newFakeSubmissionRepo(assignments)
	roster := newFakeRosterRepo()
	engagement := newFakeEngagementRepo()

	teacherID := uuid.New()
	studentID := uuid.New()
	classID := seedClass(roster, teacherID, studentID)

	svc := NewRankingService(assignments, submissions, roster, engagement, testLogger())

	_, err := svc.RankClass(context.Background(), Actor{ID: studentID, Role: RoleSchoolStudent}, classID, 30)
	require.NoError(t, err)

	_, err = svc.RankClass(context.Background(), Actor{ID: uuid.New(), Role: RoleSchoolStudent}, classID, 30)
	require.Error(t, err)
}
