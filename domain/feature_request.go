package domain

import (
	"fmt"
	"time"
)

type FeatureRequestStatus string

const (
	FeatureStatusPending  FeatureRequestStatus = "pending"
	FeatureStatusAccepted FeatureRequestStatus = "accepted"
	FeatureStatusDeclined FeatureRequestStatus = "declined"
)

// ParseFeatureRequestStatus converts a stored status string back into
// the closed set.
func ParseFeatureRequestStatus(s string) (FeatureRequestStatus, error) {
	switch FeatureRequestStatus(s) {
	case FeatureStatusPending, FeatureStatusAccepted, FeatureStatusDeclined:
		return FeatureRequestStatus(s), nil
	default:
		return "", fmt.Errorf("unknown feature request status %q", s)
	}
}

// FeatureRequest is a user-submitted product suggestion. Unlike posts
// it has no visibility lifecycle: submitters always see their own,
// admins see everything.
type FeatureRequest struct {
	ID          int64
	Title       string
	Description string
	Status      FeatureRequestStatus
	AuthorID    int64
	Priority    int
	Rating      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FeatureRequestPatch is a partial admin update: only non-nil fields
// are applied.
type FeatureRequestPatch struct {
	Status   *FeatureRequestStatus
	Priority *int
	Rating   *int
}

func (patch FeatureRequestPatch) Apply(fr *FeatureRequest) {
	if patch.Status != nil {
		fr.Status = *patch.Status
	}
	if patch.Priority != nil {
		fr.Priority = *patch.Priority
	}
	if patch.Rating != nil {
		fr.Rating = *patch.Rating
	}
}
