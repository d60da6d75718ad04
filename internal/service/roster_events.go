package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RosterEventSubject is the subject the roster service publishes enrollment
// changes on.
const RosterEventSubject = "roster.class.enrolled"

// enrollmentEventSchema validates the roster payload before any identifier
// parsing happens. Malformed events are dropped, not retried.
const enrollmentEventSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["class_id", "student_id"],
  "properties": {
    "class_id": {"type": "string", "format": "uuid", "minLength": 36},
    "student_id": {"type": "string", "format": "uuid", "minLength": 36},
    "occurred_at": {"type": "string"}
  }
}`

type enrollmentEvent struct {
	ClassID    string `json:"class_id"`
	StudentID  string `json:"student_id"`
	OccurredAt string `json:"occurred_at"`
}

// RosterEventConsumer listens for enrollment events and backfills pending
// submissions for students who join a class after assignments were fanned
// out.
type RosterEventConsumer struct {
	assignments AssignmentService
	schema      *jsonschema.Schema
	logger      zerolog.Logger
	sub         *nats.Subscription
}

// NewRosterEventConsumer constructs the consumer.
func NewRosterEventConsumer(assignments AssignmentService, logger zerolog.Logger) (*RosterEventConsumer, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("enrollment-event.json", strings.NewReader(enrollmentEventSchema)); err != nil {
		return nil, fmt.Errorf("failed to register enrollment schema: %w", err)
	}
	schema, err := compiler.Compile("enrollment-event.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile enrollment schema: %w", err)
	}

	return &RosterEventConsumer{
		assignments: assignments,
		schema:      schema,
		logger:      logger.With().Str("component", "roster_event_consumer").Logger(),
	}, nil
}

// Start subscribes to the roster subject. A nil connection disables the
// consumer, matching deployments without a broker.
func (c *RosterEventConsumer) Start(ctx context.Context, conn *nats.Conn) error {
	if conn == nil {
		c.logger.Info().Msg("nats disabled, roster backfill inactive")
		return nil
	}

	sub, err := conn.Subscribe(RosterEventSubject, func(msg *nats.Msg) {
		c.HandleMessage(ctx, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", RosterEventSubject, err)
	}

	c.sub = sub
	c.logger.Info().Str("subject", RosterEventSubject).Msg("roster event consumer started")
	return nil
}

// Stop drains the subscription.
func (c *RosterEventConsumer) Stop() {
	if c.sub != nil {
		_ = c.sub.Drain()
	}
}

// HandleMessage validates and applies one enrollment event. Invalid payloads
// are logged and dropped.
func (c *RosterEventConsumer) HandleMessage(ctx context.Context, data []byte) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn().Err(err).Msg("discarding malformed roster event")
		return
	}
	if err := c.schema.Validate(raw); err != nil {
		c.logger.Warn().Err(err).Msg("discarding roster event failing schema validation")
		return
	}

	var event enrollmentEvent
	if err := json.Unmarshal(data, &event); err != nil {
		c.logger.Warn().Err(err).Msg("discarding undecodable roster event")
		return
	}

	classID, err := uuid.Parse(event.ClassID)
	if err != nil {
		c.logger.Warn().Str("class_id", event.ClassID).Msg("discarding roster event with bad class id")
		return
	}
	studentID, err := uuid.Parse(event.StudentID)
	if err != nil {
		c.logger.Warn().Str("student_id", event.StudentID).Msg("discarding roster event with bad student id")
		return
	}

	created, err := c.assignments.BackfillStudent(ctx, classID, studentID)
	if err != nil {
		c.logger.Error().Err(err).
			Str("class_id", classID.String()).
			Str("student_id", studentID.String()).
			Msg("roster backfill failed")
		return
	}

	c.logger.Debug().
		Str("class_id", classID.String()).
		Str("student_id", studentID.String()).
		Int("created", created).
		Msg("roster event processed")
}
