package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeBackfiller struct {
	AssignmentService
	calls     int
	classID   uuid.UUID
	studentID uuid.UUID
}

func (f *fakeBackfiller) BackfillStudent(ctx context.Context, classID, studentID uuid.UUID) (int, error) {
	f.calls++
	f.classID = classID
	f.studentID = studentID
	return 1, nil
}

func TestRosterEventConsumerAppliesValidEvents(t *testing.T) {
	backfiller := &fakeBackfiller{}
	consumer, err := NewRosterEventConsumer(backfiller, testLogger())
	require.NoError(t, err)

	classID := uuid.New()
	studentID := uuid.New()
	payload := fmt.Sprintf(`{"class_id":%q,"student_id":%q,"occurred_at":"2026-09-01T10:00:00Z"}`, classID, studentID)

	consumer.HandleMessage(context.Background(), []byte(payload))
	require.Equal(t, 1, backfiller.calls)
	require.Equal(t, classID, backfiller.classID)
	require.Equal(t, studentID, backfiller.studentID)
}

func TestRosterEventConsumerDropsInvalidPayloads(t *testing.T) {
	backfiller := &fakeBackfiller{}
	consumer, err := NewRosterEventConsumer(backfiller, testLogger())
	require.NoError(t, err)

	cases := []string{
		`not json`,
		`{}`,
		`{"class_id":"abc","student_id":"def"}`,
		fmt.Sprintf(`{"class_id":%q}`, uuid.New()),
	}
	for _, payload := range cases {
		consumer.HandleMessage(context.Background(), []byte(payload))
	}
	require.Zero(t, backfiller.calls)
}
