package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/distria/distria/internal/ai"
	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/domain"
	"github.com/distria/distria/internal/metrics"
)

// ============================================================================
// AI Assistant Handler
// ============================================================================

// maxConversationTurns caps how much history is replayed to the provider.
const maxConversationTurns = 20

// maxMessageLength caps a single user message.
const maxMessageLength = 4000

// AssistantHandler serves the chat page and the chat relay API. Conversation
// history is held in memory per user; it does not survive a restart.
type AssistantHandler struct {
	provider  ai.Provider
	renderer  TemplateRenderer
	logger    *slog.Logger
	isSecure  bool
	maxTokens int

	mu            sync.Mutex
	conversations map[string]*conversation // keyed by conversation ID
}

type conversation struct {
	UserID   string
	Messages []ai.Message
}

func NewAssistantHandler(provider ai.Provider, renderer TemplateRenderer, logger *slog.Logger, isSecure bool, maxTokens int) *AssistantHandler {
	return &AssistantHandler{
		provider:      provider,
		renderer:      renderer,
		logger:        logger,
		isSecure:      isSecure,
		maxTokens:     maxTokens,
		conversations: make(map[string]*conversation),
	}
}

// Show renders the assistant chat page.
func (h *AssistantHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, "assistant", struct {
		PageData
	}{
		PageData: newPageData(w, r, h.isSecure),
	})
}

// chatRequest is the POST /api/ai/chat payload.
type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// chatResponse is the reply payload.
type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

// Chat relays one user message to the provider and returns the reply.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.AssistantChat", "Cuerpo de la petición inválido."))
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.AssistantChat", "El mensaje no puede estar vacío."))
		return
	}
	if len(message) > maxMessageLength {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.AssistantChat", "El mensaje es demasiado largo."))
		return
	}

	conv, convID, err := h.resolveConversation(req.ConversationID, user)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params := ai.ChatParams{
		Messages:  append(h.history(conv), ai.Message{Role: ai.RoleUser, Content: message}),
		MaxTokens: h.maxTokens,
		UserID:    user.ID,
	}

	result, err := h.provider.Chat(r.Context(), params)
	if err != nil {
		metrics.AIAPICalls.WithLabelValues("error").Inc()
		h.logger.Error("assistant chat failed", "error", err, "user_id", user.ID, "conversation_id", convID)
		ErrorResponse(w, r, h.logger, domain.Unavailable(err, "handler.AssistantChat",
			"El asistente no está disponible en este momento. Intenta más tarde."))
		return
	}

	metrics.AIAPICalls.WithLabelValues("success").Inc()
	metrics.AITokensTotal.WithLabelValues("input").Add(float64(result.Usage.InputTokens))
	metrics.AITokensTotal.WithLabelValues("output").Add(float64(result.Usage.OutputTokens))

	h.appendTurn(conv,
		ai.Message{Role: ai.RoleUser, Content: message},
		ai.Message{Role: ai.RoleAssistant, Content: result.Content})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatResponse{
		ConversationID: convID,
		Reply:          result.Content,
	})
}

// Transcribe is a stub; audio transcription is not implemented.
func (h *AssistantHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotImplemented)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "not_implemented",
		"message": "La transcripción de audio no está disponible.",
	})
}

// resolveConversation finds or creates the caller's conversation. A
// conversation ID belonging to another user is rejected.
func (h *AssistantHandler) resolveConversation(id string, user *domain.User) (*conversation, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return nil, "", domain.Invalid("handler.AssistantChat", "Identificador de conversación inválido.")
		}
		if conv, ok := h.conversations[id]; ok {
			if conv.UserID != user.ID {
				return nil, "", domain.Forbidden("handler.AssistantChat", "La conversación pertenece a otro usuario.")
			}
			return conv, id, nil
		}
	}

	id = uuid.New().String()
	conv := &conversation{UserID: user.ID}
	h.conversations[id] = conv
	return conv, id, nil
}

// history returns the system prompt plus the recent turns of the
// conversation. The caller appends the new user message.
func (h *AssistantHandler) history(conv *conversation) []ai.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	messages := []ai.Message{{Role: ai.RoleSystem, Content: systemPrompt(conv.UserID)}}
	turns := conv.Messages
	if len(turns) > maxConversationTurns {
		turns = turns[len(turns)-maxConversationTurns:]
	}
	return append(messages, turns...)
}

func (h *AssistantHandler) appendTurn(conv *conversation, userMsg, assistantMsg ai.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conv.Messages = append(conv.Messages, userMsg, assistantMsg)
	if len(conv.Messages) > maxConversationTurns*2 {
		conv.Messages = conv.Messages[len(conv.Messages)-maxConversationTurns*2:]
	}
}

func systemPrompt(userID string) string {
	return fmt.Sprintf("Eres el asistente de DistrIA, un panel de gestión de "+
		"distribución (productos, clientes, inventario, pedidos y rutas de "+
		"entrega). Responde en español, de forma breve y práctica, y guía al "+
		"usuario hacia la sección correcta del panel cuando corresponda. No "+
		"inventes datos del negocio que no conoces. Usuario actual: %s.", userID)
}
