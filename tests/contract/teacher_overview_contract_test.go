package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/widya-labs/widya-go-api/internal/dto"
	"github.com/widya-labs/widya-go-api/internal/handler"
	"github.com/widya-labs/widya-go-api/internal/service"
)

type stubAnalyticsService struct {
	overview dto.TeacherOverview
}

func (s stubAnalyticsService) ActivityRollup(context.Context, service.Actor, string, int) (dto.ActivityRollup, error) {
	return dto.ActivityRollup{}, nil
}

func (s stubAnalyticsService) StudentRollup(context.Context, service.Actor, uuid.UUID, dto.StudentRollupQuery, int) (dto.StudentRollup, error) {
	return dto.StudentRollup{}, nil
}

func (s stubAnalyticsService) TeacherOverview(context.Context, service.Actor, int) (dto.TeacherOverview, error) {
	return s.overview, nil
}

func (s stubAnalyticsService) SchoolOverview(context.Context, service.Actor, uuid.UUID, int) (dto.SchoolOverview, error) {
	return dto.SchoolOverview{}, nil
}

func TestTeacherOverviewContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "teacher_overview.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	wellbeing := 88
	overview := dto.TeacherOverview{
		TeacherID: uuid.New(),
		Classes: []dto.ClassRollupRow{
			{
				ClassID:         uuid.New(),
				ClassName:       "8B",
				StudentCount:    24,
				AssignmentCount: 3,
				StatusDistribution: map[string]int64{
					"PENDING": 10, "SUBMITTED": 8, "VERIFIED": 5, "REJECTED": 1,
				},
				CompletionRate: 58.3,
			},
		},
		StatusDistribution: map[string]int64{
			"PENDING": 10, "SUBMITTED": 8, "VERIFIED": 5, "REJECTED": 1,
		},
		CompletionRate: 58.3,
		RiskBuckets:    map[string]int64{"low": 20, "medium": 3, "high": 1},
		TopPerformers: []dto.WellbeingHighlight{
			{StudentID: uuid.New(), WellbeingScore: wellbeing, DailyStreak: 6},
		},
		AtRiskStudents: []dto.WellbeingHighlight{
			{StudentID: uuid.New(), WellbeingScore: 12, DailyStreak: 0},
		},
		WindowDays: 30,
	}

	analyticsHandler := handler.NewAnalyticsHandler(stubAnalyticsService{overview: overview}, 30, zerolog.Nop())

	app := fiber.New()
	analyticsHandler.Register(app.Group("/api/v1/analytics", func(c *fiber.Ctx) error {
		c.Locals("user_id", overview.TeacherID)
		c.Locals("user_role", "school-teacher")
		return c.Next()
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/teacher", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
