package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"seoscout/internal/db"
	"seoscout/internal/history"
	"seoscout/internal/models"
	"seoscout/internal/provider"
	"seoscout/internal/ratelimit"
	"seoscout/internal/research"
)

type stubConversationStore struct {
	conv    *models.Conversation
	project *models.Project
	touched int
}

func (s *stubConversationStore) GetConversation(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	if s.conv == nil || s.conv.ID != id {
		return nil, db.ErrConversationNotFound
	}
	return s.conv, nil
}

func (s *stubConversationStore) GetProject(_ context.Context, id uuid.UUID) (*models.Project, error) {
	if s.project == nil || s.project.ID != id {
		return nil, db.ErrProjectNotFound
	}
	return s.project, nil
}

func (s *stubConversationStore) TouchConversation(_ context.Context, _ uuid.UUID) error {
	s.touched++
	return nil
}

type stubProvider struct {
	results map[string][]provider.RawCandidate
}

func (s *stubProvider) Lookup(_ context.Context, seed string, _ int) ([]provider.RawCandidate, error) {
	return s.results[seed], nil
}

type stubTracked struct{}

func (stubTracked) TrackedKeywordTexts(_ context.Context, _ uuid.UUID) ([]string, error) {
	return nil, nil
}

func vol(n int64) *int64 { return &n }

// newResearchApp wires the research routes against stubs and an in-memory
// history store. No language model is configured, so expansion uses the
// topic itself as the only seed and ranking is deterministic by score.
func newResearchApp(t *testing.T, candidates []provider.RawCandidate) (*fiber.App, history.Store, *stubConversationStore, uuid.UUID) {
	t.Helper()

	projectID := uuid.New()
	conversationID := uuid.New()
	store := &stubConversationStore{
		conv:    &models.Conversation{ID: conversationID, ProjectID: projectID, Title: "test"},
		project: &models.Project{ID: projectID, Name: "Acme SEO", Domain: "acme.example.com"},
	}

	governor, err := ratelimit.New(1000, time.Minute)
	if err != nil {
		t.Fatalf("ratelimit.New() error = %v", err)
	}
	logger := slog.Default()
	hist := history.NewStore(nil, time.Hour)
	pipeline := research.NewPipeline(
		research.NewExpander(nil, logger),
		research.NewFetcher(&stubProvider{results: map[string][]provider.RawCandidate{"seo tools": candidates}}, governor, 30, time.Millisecond, logger),
		research.NewRanker(nil, logger),
		stubTracked{},
		hist,
		50,
		logger,
	)
	handler := NewResearchHandler(store, pipeline, hist, 10, logger)

	app := fiber.New()
	app.Post("/api/conversations/:id/research", handler.Research)
	app.Post("/api/conversations/:id/research/more", handler.ShowMore)

	return app, hist, store, conversationID
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", path, err)
	}
	return resp
}

func TestResearchAppendsExactlyReturnedPage(t *testing.T) {
	candidates := []provider.RawCandidate{
		{Keyword: "seo audit", Volume: vol(900)},
		{Keyword: "seo reporting", Volume: vol(500)},
		{Keyword: "rank tracking", Volume: vol(300)},
		{Keyword: "keyword research", Volume: vol(100)},
	}
	app, hist, store, conversationID := newResearchApp(t, candidates)

	resp := postJSON(t, app, "/api/conversations/"+conversationID.String()+"/research",
		map[string]any{"topic": "seo tools", "k": 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("research status = %d, want 200", resp.StatusCode)
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   research.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Keywords) != 2 {
		t.Fatalf("returned %d keywords, want 2", len(envelope.Data.Keywords))
	}

	shown, err := hist.Shown(context.Background(), conversationID.String())
	if err != nil {
		t.Fatalf("Shown() error = %v", err)
	}
	if len(shown) != len(envelope.Data.Keywords) {
		t.Fatalf("shown history has %d entries, want %d (exactly the returned page)", len(shown), len(envelope.Data.Keywords))
	}
	for _, kw := range envelope.Data.Keywords {
		if _, ok := shown[kw.Identity()]; !ok {
			t.Errorf("returned keyword %q missing from shown history", kw.Keyword)
		}
	}
	// The unreturned remainder of the pool must not be marked shown yet.
	for _, kw := range []string{"rank tracking", "keyword research"} {
		if _, ok := shown[kw]; ok {
			t.Errorf("unreturned keyword %q was appended to shown history", kw)
		}
	}
	if store.touched == 0 {
		t.Error("conversation was not touched after delivering results")
	}
}

func TestShowMoreAppendsExactlyReturnedPage(t *testing.T) {
	candidates := []provider.RawCandidate{
		{Keyword: "seo audit", Volume: vol(900)},
		{Keyword: "seo reporting", Volume: vol(500)},
		{Keyword: "rank tracking", Volume: vol(300)},
		{Keyword: "keyword research", Volume: vol(100)},
	}
	app, hist, _, conversationID := newResearchApp(t, candidates)

	resp := postJSON(t, app, "/api/conversations/"+conversationID.String()+"/research",
		map[string]any{"topic": "seo tools", "k": 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("research status = %d, want 200", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/conversations/"+conversationID.String()+"/research/more",
		map[string]any{"page_size": 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("show more status = %d, want 200", resp.StatusCode)
	}

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			Keywords  []models.KeywordCandidate `json:"keywords"`
			Remaining int                       `json:"remaining"`
			Exhausted bool                      `json:"exhausted"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Keywords) != 1 {
		t.Fatalf("show more returned %d keywords, want 1", len(envelope.Data.Keywords))
	}
	if got := envelope.Data.Keywords[0].Identity(); got != "rank tracking" {
		t.Errorf("show more returned %q, want %q", got, "rank tracking")
	}
	if envelope.Data.Remaining != 1 {
		t.Errorf("remaining = %d, want 1", envelope.Data.Remaining)
	}
	if envelope.Data.Exhausted {
		t.Error("exhausted = true with candidates left in the pool")
	}

	shown, err := hist.Shown(context.Background(), conversationID.String())
	if err != nil {
		t.Fatalf("Shown() error = %v", err)
	}
	if len(shown) != 3 {
		t.Fatalf("shown history has %d entries, want 3 after one research and one page", len(shown))
	}
	if _, ok := shown["keyword research"]; ok {
		t.Error("unreturned keyword was appended to shown history by show more")
	}
}

func TestResearchUnknownConversation(t *testing.T) {
	app, _, _, _ := newResearchApp(t, nil)

	resp := postJSON(t, app, "/api/conversations/"+uuid.New().String()+"/research",
		map[string]any{"topic": "seo tools"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("research status = %d, want 404", resp.StatusCode)
	}
}
