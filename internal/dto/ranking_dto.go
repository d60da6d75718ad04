package dto

import "github.com/google/uuid"

// RankedStudent is one row in a class or teacher ranking. Students tied on
// points share the same rank.
type RankedStudent struct {
	Rank          int       `json:"rank"`
	StudentID     uuid.UUID `json:"student_id"`
	Name          string    `json:"name,omitempty"`
	Points        int       `json:"points"`
	VerifiedCount int64     `json:"verified_count"`
}

// RankingResponse wraps a ranking together with its scope.
type RankingResponse struct {
	ClassID  *uuid.UUID      `json:"class_id,omitempty"`
	Students []RankedStudent `json:"students"`
}
