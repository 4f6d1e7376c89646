// Package mock provides a canned assistant provider for development and tests.
package mock

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/distria/distria/internal/ai"
)

// Provider is a mock assistant for testing and local development.
type Provider struct {
	logger *slog.Logger

	// Configurable responses for testing
	ChatResponse *ai.ChatResult
	ChatError    error

	// Call tracking for testing
	ChatCalls  int
	LastParams ai.ChatParams
}

// New creates a new mock provider.
func New(logger *slog.Logger) *Provider {
	return &Provider{logger: logger}
}

// Chat returns a canned Spanish reply keyed off the last user message.
func (p *Provider) Chat(ctx context.Context, params ai.ChatParams) (*ai.ChatResult, error) {
	p.ChatCalls++
	p.LastParams = params

	if p.ChatError != nil {
		return nil, p.ChatError
	}
	if p.ChatResponse != nil {
		return p.ChatResponse, nil
	}

	// Simulate processing delay
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	question := ""
	for i := len(params.Messages) - 1; i >= 0; i-- {
		if params.Messages[i].Role == ai.RoleUser {
			question = params.Messages[i].Content
			break
		}
	}

	content := "Soy el asistente de DistrIA en modo de prueba. " +
		"Puedo ayudarte con preguntas sobre productos, clientes, inventario, pedidos y rutas."
	switch {
	case strings.Contains(strings.ToLower(question), "stock"):
		content = "Para revisar el stock, abre la sección de Inventario. " +
			"Los productos con stock bajo aparecen resaltados en rojo."
	case strings.Contains(strings.ToLower(question), "pedido"):
		content = "Puedes crear un pedido desde la sección de Pedidos " +
			"seleccionando un cliente y agregando productos con sus cantidades."
	case strings.Contains(strings.ToLower(question), "ruta"):
		content = "Las rutas de entrega se gestionan en la sección de Rutas: " +
			"asigna un repartidor, una fecha y los pedidos pendientes."
	}

	p.logger.Debug("mock chat completion", "user_id", params.UserID)

	return &ai.ChatResult{
		Content: content,
		Usage: ai.UsageInfo{
			Model:        "mock",
			InputTokens:  len(params.Messages) * 10,
			OutputTokens: 40,
			Duration:     100 * time.Millisecond,
		},
	}, nil
}
