package models

import (
	"time"

	"github.com/google/uuid"
)

// Project groups a user's tracked keywords and conversations around one site.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TrackedKeyword is one keyword the user already follows in a project.
// Tracked keywords are read-only to the research engine: it uses them to
// derive the project's niche and to suppress re-suggestions.
type TrackedKeyword struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"created_at"`
}
