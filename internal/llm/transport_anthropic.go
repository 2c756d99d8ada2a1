package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// AnthropicTransport entrega cuerpos de la familia chat a la Messages API de Anthropic.
// Responde con el mismo formato {content:[{type,text}]} que espera chatAdapter.
type AnthropicTransport struct {
	client anthropic.Client
	logger *zap.Logger
}

func NewAnthropicTransport(apiKey string, logger *zap.Logger) *AnthropicTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnthropicTransport{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
	}
}

type chatBody struct {
	MaxTokens     int       `json:"max_tokens"`
	Temperature   *float64  `json:"temperature"`
	TopP          *float64  `json:"top_p"`
	StopSequences []string  `json:"stop_sequences"`
	Messages      []chatMsg `json:"messages"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Content []chatPayloadBlock `json:"content"`
}

type chatPayloadBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// decodeChatBody lee el cuerpo producido por chatAdapter y une los mensajes de usuario.
func decodeChatBody(body []byte) (chatBody, string, error) {
	var cb chatBody
	if err := json.Unmarshal(body, &cb); err != nil {
		return chatBody{}, "", fmt.Errorf("decode chat body: %w", err)
	}
	parts := make([]string, 0, len(cb.Messages))
	for _, m := range cb.Messages {
		if m.Role == "user" && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, m.Content)
		}
	}
	if len(parts) == 0 {
		return chatBody{}, "", errors.New("chat body has no user message")
	}
	return cb, strings.Join(parts, "\n\n"), nil
}

func encodeChatPayload(texts []string) ([]byte, error) {
	p := chatPayload{Content: make([]chatPayloadBlock, 0, len(texts))}
	for _, t := range texts {
		p.Content = append(p.Content, chatPayloadBlock{Type: "text", Text: t})
	}
	return json.Marshal(p)
}

func (t *AnthropicTransport) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	cb, prompt, err := decodeChatBody(body)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: int64(cb.MaxTokens),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}
	if cb.Temperature != nil {
		params.Temperature = anthropic.Float(*cb.Temperature)
	}
	if cb.TopP != nil {
		params.TopP = anthropic.Float(*cb.TopP)
	}
	if len(cb.StopSequences) > 0 {
		params.StopSequences = cb.StopSequences
	}

	msg, err := t.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			t.logger.Warn("anthropic api error", zap.String("model_id", modelID), zap.Int("status", apiErr.StatusCode))
			return nil, &StatusError{StatusCode: apiErr.StatusCode, Body: truncateForError(apiErr.Error(), 2000)}
		}
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}
	if msg == nil || len(msg.Content) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, len(msg.Content))
	for _, block := range msg.Content {
		if text := block.AsText().Text; text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}
	return encodeChatPayload(texts)
}
