package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"seoscout/internal/db"
	"seoscout/internal/models"
)

// ConversationHandler handles conversation lifecycle via JSON API.
type ConversationHandler struct {
	db *db.DB
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(database *db.DB) *ConversationHandler {
	return &ConversationHandler{db: database}
}

// Create starts a conversation under a project.
func (h *ConversationHandler) Create(c fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid project id")
	}

	var body struct {
		Title string `json:"title"`
	}
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	conv := &models.Conversation{ProjectID: projectID, Title: body.Title}
	if err := h.db.CreateConversation(c.Context(), conv); err != nil {
		if errors.Is(err, db.ErrProjectNotFound) {
			return jsonError(c, fiber.StatusNotFound, "project not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create conversation")
	}
	return jsonCreated(c, conv)
}

// Get returns a conversation by ID.
func (h *ConversationHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	conv, err := h.db.GetConversation(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrConversationNotFound) {
			return jsonError(c, fiber.StatusNotFound, "conversation not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch conversation")
	}
	return jsonSuccess(c, conv)
}
