package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiTransport entrega cuerpos de la familia generic a la API de Gemini y responde {"text": ...}.
type GeminiTransport struct {
	client *genai.Client
	logger *zap.Logger
}

func NewGeminiTransport(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiTransport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiTransport{client: client, logger: logger}, nil
}

type genericBody struct {
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
	TopP        *float64 `json:"top_p"`
	Stop        []string `json:"stop_sequences"`
}

func decodeGenericBody(body []byte) (genericBody, error) {
	var gb genericBody
	if err := json.Unmarshal(body, &gb); err != nil {
		return genericBody{}, fmt.Errorf("decode generic body: %w", err)
	}
	if strings.TrimSpace(gb.Prompt) == "" {
		return genericBody{}, fmt.Errorf("generic body has no prompt")
	}
	return gb, nil
}

func generationConfig(gb genericBody) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if gb.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(gb.MaxTokens)
	}
	if gb.Temperature != nil {
		v := float32(*gb.Temperature)
		cfg.Temperature = &v
	}
	if gb.TopP != nil {
		v := float32(*gb.TopP)
		cfg.TopP = &v
	}
	if len(gb.Stop) > 0 {
		cfg.StopSequences = gb.Stop
	}
	return cfg
}

func (t *GeminiTransport) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	gb, err := decodeGenericBody(body)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Models.GenerateContent(ctx, modelID, genai.Text(gb.Prompt), generationConfig(gb))
	if err != nil {
		t.logger.Warn("gemini api error", zap.String("model_id", modelID), zap.Error(err))
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return nil, nil
	}
	text := resp.Text()
	if text == "" {
		return nil, nil
	}
	return json.Marshal(map[string]string{"text": text})
}
