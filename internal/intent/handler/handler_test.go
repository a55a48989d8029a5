package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"wasales_backend/internal/intent/domain"
	"wasales_backend/internal/intent/repository"
	"wasales_backend/internal/intent/service"
	"wasales_backend/platform/logger"
	"wasales_backend/platform/validator"
)

type memStore struct {
	records map[string]*domain.ConversationIntent
}

func (m *memStore) Get(_ context.Context, conversationID string) (*domain.ConversationIntent, error) {
	record, ok := m.records[conversationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return record, nil
}

func (m *memStore) Upsert(_ context.Context, record *domain.ConversationIntent, _ time.Time) error {
	m.records[record.ConversationID] = record
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine, err := domain.NewEngine(domain.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	log := logger.New("test")
	svc := service.New(&memStore{records: map[string]*domain.ConversationIntent{}}, engine, nil, log)

	r := gin.New()
	New(svc, nil, validator.New(), log).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestApplyTurnAndGetIntent(t *testing.T) {
	r := newTestRouter(t)

	body := `{"events": [{"kind": "asked_for_demo", "strength": 1.0}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/conv-1/turns", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ConversationID    string `json:"conversationId"`
		Score             int    `json:"score"`
		Stage             string `json:"stage"`
		RecommendedAction string `json:"recommendedAction"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Score != 12 || resp.Stage != domain.StageCold {
		t.Fatalf("unexpected record: %+v", resp)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations/conv-1/intent", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on read, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations/conv-1/intent/history", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on history, got %d", w.Code)
	}
	var history struct {
		History []struct {
			NewScore int    `json:"newScore"`
			Cause    string `json:"cause"`
		} `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history.History) != 1 || history.History[0].Cause != "asked_for_demo" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestGetIntent_UnknownConversation(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations/ghost/intent", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestApplyTurn_MalformedBody(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/conv-1/turns", strings.NewReader(`{"events": "nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
