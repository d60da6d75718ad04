package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/widya-labs/widya-go-api/internal/utils"
)

// Operation names used in the capability table.
const (
	OpAssignmentManage = "assignment.manage"
	OpAssignmentRead   = "assignment.read"
	OpSubmissionSubmit = "submission.submit"
	OpSubmissionReview = "submission.review"
	OpSubmissionRead   = "submission.read"
	OpCommentWrite     = "comment.write"
	OpRankingRead      = "ranking.read"
	OpAnalyticsStaff   = "analytics.staff"
	OpAnalyticsStudent = "analytics.student"
	OpAnalyticsSchool  = "analytics.school"
)

// capabilities maps each operation to the roles allowed to perform it.
// Row-level checks (class ownership, submission ownership) happen in the
// services; this table is the coarse gate.
var capabilities = map[string][]string{
	OpAssignmentManage: {"school-teacher", "administrator"},
	OpAssignmentRead:   {"school-student", "school-teacher", "administrator"},
	OpSubmissionSubmit: {"school-student"},
	OpSubmissionReview: {"school-teacher", "administrator"},
	OpSubmissionRead:   {"school-student", "school-teacher", "administrator"},
	OpCommentWrite:     {"school-student", "school-teacher", "administrator"},
	OpRankingRead:      {"school-student", "school-teacher", "administrator"},
	OpAnalyticsStaff:   {"school-teacher", "administrator"},
	OpAnalyticsStudent: {"school-student", "school-teacher", "administrator"},
	OpAnalyticsSchool:  {"administrator"},
}

// RequireOperation gates a route on the capability table.
func RequireOperation(operation string) fiber.Handler {
	allowed := make(map[string]struct{})
	for _, role := range capabilities[operation] {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireRole ensures that the authenticated user possesses one of the
// allowed roles directly.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
