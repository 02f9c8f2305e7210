package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"seoscout/internal/db"
	"seoscout/internal/history"
	"seoscout/internal/models"
	"seoscout/internal/research"
	"seoscout/internal/validation"
)

// ConversationStore is the slice of the database the research handler needs.
type ConversationStore interface {
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	TouchConversation(ctx context.Context, id uuid.UUID) error
}

// ResearchHandler runs the keyword-research pipeline for a conversation and
// pages through its results. After a result is delivered it appends the
// presented keywords to the conversation's shown history; the pipeline
// itself never writes history.
type ResearchHandler struct {
	db       ConversationStore
	pipeline *research.Pipeline
	history  history.Store
	pageSize int
	logger   *slog.Logger
}

// NewResearchHandler creates a new research handler.
func NewResearchHandler(database ConversationStore, pipeline *research.Pipeline, hist history.Store, pageSize int, logger *slog.Logger) *ResearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResearchHandler{
		db:       database,
		pipeline: pipeline,
		history:  hist,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Research runs the expand -> fetch -> contract pipeline for a topic.
func (h *ResearchHandler) Research(c fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	var body struct {
		Topic    string `json:"topic"`
		Strategy string `json:"strategy"`
		K        int    `json:"k"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if ok, reason := validation.ValidateTopic(body.Topic); !ok {
		return jsonError(c, fiber.StatusBadRequest, reason)
	}
	if body.Strategy != "" && !models.ValidStrategy(body.Strategy) {
		return jsonError(c, fiber.StatusBadRequest, "unknown strategy")
	}

	conv, err := h.db.GetConversation(c.Context(), conversationID)
	if err != nil {
		if errors.Is(err, db.ErrConversationNotFound) {
			return jsonError(c, fiber.StatusNotFound, "conversation not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch conversation")
	}
	project, err := h.db.GetProject(c.Context(), conv.ProjectID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch project")
	}

	result, err := h.pipeline.Research(c.Context(), research.Request{
		ProjectID:      project.ID,
		ConversationID: conv.ID.String(),
		Topic:          body.Topic,
		Strategy:       body.Strategy,
		K:              body.K,
		ProjectName:    project.Name,
		Domain:         project.Domain,
	})
	if err != nil {
		if errors.Is(err, research.ErrNoData) {
			return jsonError(c, fiber.StatusBadGateway, "no keyword data available for this topic right now")
		}
		h.logger.Error("research pipeline failed", "conversation", conv.ID, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "research failed")
	}

	h.appendShown(c, conv.ID, result.Keywords)
	return jsonSuccess(c, result)
}

// ShowMore returns the next page of the conversation's cached pool.
func (h *ResearchHandler) ShowMore(c fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	var body struct {
		PageSize int `json:"page_size"`
	}
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	pageSize := body.PageSize
	if pageSize <= 0 {
		pageSize = h.pageSize
	}

	page, remaining, err := h.pipeline.ShowMore(c.Context(), conversationID.String(), pageSize)
	if err != nil {
		if errors.Is(err, history.ErrNoPool) {
			return jsonError(c, fiber.StatusNotFound, "no research results to page through; run a research request first")
		}
		h.logger.Error("show more failed", "conversation", conversationID, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch more keywords")
	}

	h.appendShown(c, conversationID, page)
	return jsonSuccess(c, fiber.Map{
		"keywords":  page,
		"remaining": remaining,
		"exhausted": len(page) == 0,
	})
}

// appendShown records delivered keywords in the conversation's shown history
// and bumps the conversation. Failures are logged, not surfaced: the result
// was already produced.
func (h *ResearchHandler) appendShown(c fiber.Ctx, conversationID uuid.UUID, keywords []models.KeywordCandidate) {
	if len(keywords) == 0 {
		return
	}
	texts := make([]string, len(keywords))
	for i, kw := range keywords {
		texts[i] = kw.Keyword
	}
	if err := h.history.AppendShown(c.Context(), conversationID.String(), texts); err != nil {
		h.logger.Error("failed to append shown history", "conversation", conversationID, "error", err)
	}
	if err := h.db.TouchConversation(c.Context(), conversationID); err != nil {
		h.logger.Warn("failed to touch conversation", "conversation", conversationID, "error", err)
	}
}
