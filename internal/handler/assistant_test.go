package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/distria/distria/internal/ai"
	"github.com/distria/distria/internal/ai/mock"
	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/domain"
)

func chatRequestFor(t *testing.T, user *domain.User, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/ai/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(auth.SetUser(req.Context(), user))
	}
	return req
}

func adminUser() *domain.User {
	return &domain.User{ID: "u1", FullName: "Ana Pérez", Role: domain.RoleAdmin, Active: true}
}

func TestAssistantChat_ReturnsReplyAndConversationID(t *testing.T) {
	provider := mock.New(testLogger())
	provider.ChatResponse = &ai.ChatResult{
		Content: "Tienes 3 productos con stock bajo.",
		Usage:   ai.UsageInfo{Model: "mock", InputTokens: 20, OutputTokens: 10},
	}
	h := NewAssistantHandler(provider, &mockRenderer{}, testLogger(), false, 1024)

	rec := httptest.NewRecorder()
	h.Chat(rec, chatRequestFor(t, adminUser(), `{"message":"¿Qué productos tienen stock bajo?"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ConversationID string `json:"conversation_id"`
		Reply          string `json:"reply"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.ConversationID == "" {
		t.Error("expected a conversation id")
	}
	if resp.Reply != "Tienes 3 productos con stock bajo." {
		t.Errorf("unexpected reply: %s", resp.Reply)
	}

	// The provider receives the system prompt plus the user message.
	if len(provider.LastParams.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(provider.LastParams.Messages))
	}
	if provider.LastParams.Messages[0].Role != ai.RoleSystem {
		t.Error("first message should be the system prompt")
	}
	if provider.LastParams.UserID != "u1" {
		t.Errorf("expected user id on params, got %q", provider.LastParams.UserID)
	}
}

func TestAssistantChat_ContinuesConversation(t *testing.T) {
	provider := mock.New(testLogger())
	provider.ChatResponse = &ai.ChatResult{Content: "ok"}
	h := NewAssistantHandler(provider, &mockRenderer{}, testLogger(), false, 1024)

	user := adminUser()

	rec := httptest.NewRecorder()
	h.Chat(rec, chatRequestFor(t, user, `{"message":"hola"}`))

	var first struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&first); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	h.Chat(rec, chatRequestFor(t, user,
		`{"conversation_id":"`+first.ConversationID+`","message":"¿y los pedidos?"}`))

	var second struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&second); err != nil {
		t.Fatal(err)
	}
	if second.ConversationID != first.ConversationID {
		t.Errorf("conversation id changed: %s != %s", second.ConversationID, first.ConversationID)
	}

	// Second call carries the earlier turns: system + user + assistant + user.
	if len(provider.LastParams.Messages) != 4 {
		t.Errorf("expected 4 messages on second call, got %d", len(provider.LastParams.Messages))
	}
}

func TestAssistantChat_RejectsForeignConversation(t *testing.T) {
	provider := mock.New(testLogger())
	provider.ChatResponse = &ai.ChatResult{Content: "ok"}
	h := NewAssistantHandler(provider, &mockRenderer{}, testLogger(), false, 1024)

	owner := adminUser()
	rec := httptest.NewRecorder()
	h.Chat(rec, chatRequestFor(t, owner, `{"message":"hola"}`))

	var resp struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	intruder := &domain.User{ID: "u2", Role: domain.RoleCourier, Active: true}
	rec = httptest.NewRecorder()
	h.Chat(rec, chatRequestFor(t, intruder,
		`{"conversation_id":"`+resp.ConversationID+`","message":"hola"}`))

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for foreign conversation, got %d", rec.Code)
	}
}

func TestAssistantChat_EmptyMessageRejected(t *testing.T) {
	provider := mock.New(testLogger())
	h := NewAssistantHandler(provider, &mockRenderer{}, testLogger(), false, 1024)

	rec := httptest.NewRecorder()
	h.Chat(rec, chatRequestFor(t, adminUser(), `{"message":"   "}`))

	if rec.Code != http.StatusUnprocessableEntity && rec.Code != http.StatusBadRequest {
		t.Errorf("expected 4xx for empty message, got %d", rec.Code)
	}
	if provider.ChatCalls != 0 {
		t.Error("provider must not be called for an empty message")
	}
}

func TestAssistantChat_TooLongMessageRejected(t *testing.T) {
	provider := mock.New(testLogger())
	h := NewAssistantHandler(provider, &mockRenderer{}, testLogger(), false, 1024)

	long := strings.Repeat("a", maxMessageLength+1)
	rec := httptest.NewRecorder()
	h.Chat(rec, chatRequestFor(t, adminUser(), `{"message":"`+long+`"}`))

	if rec.Code < 400 || rec.Code >= 500 {
		t.Errorf("expected 4xx for oversized message, got %d", rec.Code)
	}
	if provider.ChatCalls != 0 {
		t.Error("provider must not be called for an oversized message")
	}
}

func TestAssistantChat_RequiresUser(t *testing.T) {
	h := NewAssistantHandler(mock.New(testLogger()), &mockRenderer{}, testLogger(), false, 1024)

	rec := httptest.NewRecorder()
	h.Chat(rec, chatRequestFor(t, nil, `{"message":"hola"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a user, got %d", rec.Code)
	}
}

func TestAssistantChat_ProviderFailureReturnsUnavailable(t *testing.T) {
	provider := mock.New(testLogger())
	provider.ChatError = ai.ErrRateLimit
	h := NewAssistantHandler(provider, &mockRenderer{}, testLogger(), false, 1024)

	rec := httptest.NewRecorder()
	h.Chat(rec, chatRequestFor(t, adminUser(), `{"message":"hola"}`))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when the provider fails, got %d", rec.Code)
	}
	// The raw provider error never leaks to the client.
	if strings.Contains(rec.Body.String(), ai.ErrRateLimit.Error()) {
		t.Errorf("provider error leaked: %s", rec.Body.String())
	}
}

func TestAssistantTranscribe_NotImplemented(t *testing.T) {
	h := NewAssistantHandler(mock.New(testLogger()), &mockRenderer{}, testLogger(), false, 1024)

	rec := httptest.NewRecorder()
	h.Transcribe(rec, httptest.NewRequest("POST", "/api/ai/transcribe", nil))

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] != "not_implemented" {
		t.Errorf("unexpected error field: %v", resp)
	}
}
