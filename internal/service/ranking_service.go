package service

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/apperr"
	"github.com/widya-labs/widya-go-api/internal/dto"
	"github.com/widya-labs/widya-go-api/internal/models"
	"github.com/widya-labs/widya-go-api/internal/repository"
)

// RankingService produces class leaderboards from verified submission scores
// plus the points earned in self-paced content.
type RankingService interface {
	RankClass(ctx context.Context, actor Actor, classID uuid.UUID, windowDays int) (dto.RankingResponse, error)
	RankTeacherStudents(ctx context.Context, actor Actor, windowDays int) (dto.RankingResponse, error)
}

type rankingService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	roster      repository.RosterRepository
	engagement  repository.EngagementRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRankingService constructs the ranking service.
func NewRankingService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	roster repository.RosterRepository,
	engagement repository.EngagementRepository,
	logger zerolog.Logger,
) RankingService {
	return &rankingService{
		assignments: assignments,
		submissions: submissions,
		roster:      roster,
		engagement:  engagement,
		logger:      logger.With().Str("component", "ranking_service").Logger(),
		now:         time.Now,
	}
}

// studentScore is the accumulator behind one leaderboard row.
type studentScore struct {
	studentID     uuid.UUID
	points        int
	verifiedCount int64
}

func (s *rankingService) RankClass(ctx context.Context, actor Actor, classID uuid.UUID, windowDays int) (dto.RankingResponse, error) {
	class, err := s.roster.GetClass(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RankingResponse{}, apperr.New(apperr.KindNotFound, "class not found")
		}
		return dto.RankingResponse{}, apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}

	if err := s.authorize(ctx, actor, class); err != nil {
		return dto.RankingResponse{}, err
	}

	students, err := s.roster.ListStudentIDs(ctx, classID)
	if err != nil {
		return dto.RankingResponse{}, apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}

	ranked, err := s.rankStudentSet(ctx, []uuid.UUID{classID}, students, windowDays)
	if err != nil {
		return dto.RankingResponse{}, err
	}

	return dto.RankingResponse{ClassID: &classID, Students: ranked}, nil
}

// RankTeacherStudents ranks every student across all classes the teacher
// owns.
func (s *rankingService) RankTeacherStudents(ctx context.Context, actor Actor, windowDays int) (dto.RankingResponse, error) {
	if actor.Role != RoleSchoolTeacher && actor.Role != RoleAdministrator {
		return dto.RankingResponse{}, apperr.New(apperr.KindForbidden, "only staff can view this ranking")
	}

	classes, err := s.roster.ListClassesByTeacher(ctx, actor.ID)
	if err != nil {
		return dto.RankingResponse{}, apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}

	classIDs := make([]uuid.UUID, 0, len(classes))
	seen := map[uuid.UUID]struct{}{}
	var students []uuid.UUID
	for _, class := range classes {
		classIDs = append(classIDs, class.ClassID)
		ids, err := s.roster.ListStudentIDs(ctx, class.ClassID)
		if err != nil {
			return dto.RankingResponse{}, apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			students = append(students, id)
		}
	}

	ranked, err := s.rankStudentSet(ctx, classIDs, students, windowDays)
	if err != nil {
		return dto.RankingResponse{}, err
	}

	return dto.RankingResponse{Students: ranked}, nil
}

func (s *rankingService) rankStudentSet(ctx context.Context, classIDs []uuid.UUID, studentIDs []uuid.UUID, windowDays int) ([]dto.RankedStudent, error) {
	assignments, err := s.assignments.ListByClasses(ctx, classIDs)
	if err != nil {
		return nil, err
	}

	assignmentIDs := make([]uuid.UUID, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
	}

	submissions, err := s.submissions.ListByAssignments(ctx, assignmentIDs)
	if err != nil {
		return nil, err
	}

	contentScores, err := s.engagement.ContentScores(ctx, studentIDs)
	if err != nil {
		// The leaderboard still works from submission scores alone when the
		// engagement store is unavailable.
		s.logger.Warn().Err(err).Msg("content scores unavailable")
		contentScores = map[uuid.UUID]int{}
	}

	since := s.now().UTC().AddDate(0, 0, -windowDays)
	return rankStudents(studentIDs, submissions, contentScores, since), nil
}

// rankStudents builds the leaderboard. Every roster member appears, at zero
// points if they earned nothing. Ranks follow competition numbering: equal
// points share a rank and the next distinct score skips the tied positions.
// Ties order by student identifier ascending so the output is stable.
func rankStudents(studentIDs []uuid.UUID, submissions []models.Submission, contentScores map[uuid.UUID]int, since time.Time) []dto.RankedStudent {
	scores := make(map[uuid.UUID]*studentScore, len(studentIDs))
	for _, id := range studentIDs {
		scores[id] = &studentScore{studentID: id, points: contentScores[id]}
	}

	for _, submission := range submissions {
		if submission.Status != models.SubmissionStatusVerified {
			continue
		}
		if submission.SubmittedAt == nil || submission.SubmittedAt.Before(since) {
			continue
		}
		score, ok := scores[submission.StudentID]
		if !ok {
			continue
		}
		score.points += submission.Score
		score.verifiedCount++
	}

	ordered := make([]*studentScore, 0, len(scores))
	for _, score := range scores {
		ordered = append(ordered, score)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].points != ordered[j].points {
			return ordered[i].points > ordered[j].points
		}
		return bytes.Compare(ordered[i].studentID[:], ordered[j].studentID[:]) < 0
	})

	ranked := make([]dto.RankedStudent, 0, len(ordered))
	for i, score := range ordered {
		rank := i + 1
		if i > 0 && score.points == ordered[i-1].points {
			rank = ranked[i-1].Rank
		}
		ranked = append(ranked, dto.RankedStudent{
			Rank:          rank,
			StudentID:     score.studentID,
			Points:        score.points,
			VerifiedCount: score.verifiedCount,
		})
	}

	return ranked
}

func (s *rankingService) authorize(ctx context.Context, actor Actor, class models.Class) error {
	switch actor.Role {
	case RoleAdministrator:
		return nil
	case RoleSchoolTeacher:
		if class.TeacherID != nil && *class.TeacherID == actor.ID {
			return nil
		}
		return apperr.New(apperr.KindForbidden, "not the teacher of this class")
	default:
		member, err := s.roster.IsMember(ctx, class.ClassID, actor.ID)
		if err != nil {
			return apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
		}
		if !member {
			return apperr.New(apperr.KindForbidden, "not enrolled in this class")
		}
		return nil
	}
}
