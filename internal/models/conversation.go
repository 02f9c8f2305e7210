package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is one chat thread under a project. Keywords shown to the
// user are recorded per conversation so later turns never repeat them.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProviderCall is one aggregated row of provider lookup outcomes, used for
// metrics export.
type ProviderCall struct {
	Seed       string    `json:"seed"`
	Outcome    string    `json:"outcome"`
	Count      int64     `json:"count"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Provider call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeRetried   = "retried"
	OutcomeTransient = "transient_error"
	OutcomeFatal     = "fatal_error"
)
