package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"seoscout/internal/db"
	"seoscout/internal/models"
	"seoscout/internal/validation"
)

// ProjectHandler handles project and tracked-keyword CRUD via JSON API.
type ProjectHandler struct {
	db *db.DB
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(database *db.DB) *ProjectHandler {
	return &ProjectHandler{db: database}
}

// Create creates a project.
func (h *ProjectHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name   string `json:"name"`
		Domain string `json:"domain"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if ok, reason := validation.ValidateProjectName(body.Name); !ok {
		return jsonError(c, fiber.StatusBadRequest, reason)
	}

	project := &models.Project{Name: body.Name, Domain: body.Domain}
	if err := h.db.CreateProject(c.Context(), project); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create project")
	}
	return jsonCreated(c, project)
}

// List returns all projects.
func (h *ProjectHandler) List(c fiber.Ctx) error {
	projects, err := h.db.ListProjects(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch projects")
	}
	return jsonSuccess(c, projects)
}

// Get returns a single project by ID.
func (h *ProjectHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid project id")
	}

	project, err := h.db.GetProject(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrProjectNotFound) {
			return jsonError(c, fiber.StatusNotFound, "project not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch project")
	}
	return jsonSuccess(c, project)
}

// Delete removes a project and everything under it.
func (h *ProjectHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.db.DeleteProject(c.Context(), id); err != nil {
		if errors.Is(err, db.ErrProjectNotFound) {
			return jsonError(c, fiber.StatusNotFound, "project not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete project")
	}
	return jsonSuccess(c, fiber.Map{"deleted": id})
}

// TrackKeywords adds one or more keywords to a project's tracked set.
// Keywords already tracked are reported, not treated as a failure.
func (h *ProjectHandler) TrackKeywords(c fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid project id")
	}

	var body struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(body.Keywords) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "keywords are required")
	}

	var tracked []models.TrackedKeyword
	var duplicates []string
	for _, kw := range body.Keywords {
		if ok, reason := validation.ValidateKeyword(kw); !ok {
			return jsonError(c, fiber.StatusBadRequest, reason)
		}
		tk, err := h.db.TrackKeyword(c.Context(), projectID, kw)
		if err != nil {
			if errors.Is(err, db.ErrDuplicateKeyword) {
				duplicates = append(duplicates, kw)
				continue
			}
			if errors.Is(err, db.ErrProjectNotFound) {
				return jsonError(c, fiber.StatusNotFound, "project not found")
			}
			return jsonError(c, fiber.StatusInternalServerError, "failed to track keyword")
		}
		tracked = append(tracked, *tk)
	}
	return jsonCreated(c, fiber.Map{"tracked": tracked, "duplicates": duplicates})
}

// ListKeywords returns a project's tracked keywords.
func (h *ProjectHandler) ListKeywords(c fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid project id")
	}

	keywords, err := h.db.ListTrackedKeywords(c.Context(), projectID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keywords")
	}
	return jsonSuccess(c, keywords)
}

// UntrackKeyword removes one tracked keyword by text.
func (h *ProjectHandler) UntrackKeyword(c fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid project id")
	}
	keyword := c.Params("keyword")
	if keyword == "" {
		return jsonError(c, fiber.StatusBadRequest, "keyword is required")
	}

	if err := h.db.UntrackKeyword(c.Context(), projectID, keyword); err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword not tracked")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to untrack keyword")
	}
	return jsonSuccess(c, fiber.Map{"untracked": keyword})
}
