package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"cv-portfolio/internal/domain"
)

// FamilyAdapter traduce un InvocationRequest al cuerpo que espera una familia de modelos
// y extrae el texto de su respuesta.
type FamilyAdapter interface {
	EncodeRequest(req InvocationRequest) ([]byte, error)
	// DecodeResponse devuelve false si el texto no se encuentra en el payload.
	DecodeResponse(raw []byte) (string, bool)
}

const anthropicBedrockVersion = "bedrock-2023-05-31"

func defaultAdapters() map[domain.ModelFamily]FamilyAdapter {
	return map[domain.ModelFamily]FamilyAdapter{
		domain.FamilyChat:       chatAdapter{},
		domain.FamilyTitan:      titanAdapter{},
		domain.FamilyCompletion: completionAdapter{},
		domain.FamilyGeneric:    genericAdapter{},
	}
}

// mergeExtra agrega las claves extra sin pisar las de la familia.
func mergeExtra(body map[string]any, extra map[string]any) ([]byte, error) {
	for k, v := range extra {
		if _, exists := body[k]; exists {
			continue
		}
		body[k] = v
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return b, nil
}

func stopSequences(req InvocationRequest) []string {
	if req.StopSequences == nil {
		return []string{}
	}
	return req.StopSequences
}

type chatAdapter struct{}

func (chatAdapter) EncodeRequest(req InvocationRequest) ([]byte, error) {
	body := map[string]any{
		"anthropic_version": anthropicBedrockVersion,
		"max_tokens":        req.MaxTokens,
		"temperature":       req.Temperature,
		"top_p":             req.TopP,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
		"stop_sequences": stopSequences(req),
	}
	return mergeExtra(body, req.Extra)
}

func (chatAdapter) DecodeResponse(raw []byte) (string, bool) {
	var payload struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Content) == 0 {
		return "", false
	}
	return payload.Content[0].Text, true
}

type titanAdapter struct{}

func (titanAdapter) EncodeRequest(req InvocationRequest) ([]byte, error) {
	body := map[string]any{
		"inputText": req.Prompt,
		"textGenerationConfig": map[string]any{
			"maxTokenCount": req.MaxTokens,
			"temperature":   req.Temperature,
			"topP":          req.TopP,
			"stopSequences": stopSequences(req),
		},
	}
	return mergeExtra(body, req.Extra)
}

func (titanAdapter) DecodeResponse(raw []byte) (string, bool) {
	var payload struct {
		Results []struct {
			OutputText string `json:"outputText"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Results) == 0 {
		return "", false
	}
	return payload.Results[0].OutputText, true
}

type completionAdapter struct{}

func (completionAdapter) EncodeRequest(req InvocationRequest) ([]byte, error) {
	body := map[string]any{
		"prompt": req.Prompt,
		"generation_config": map[string]any{
			"max_tokens":     req.MaxTokens,
			"temperature":    req.Temperature,
			"top_p":          req.TopP,
			"stop_sequences": stopSequences(req),
		},
	}
	return mergeExtra(body, req.Extra)
}

func (completionAdapter) DecodeResponse(raw []byte) (string, bool) {
	var payload struct {
		Generations []struct {
			Text string `json:"text"`
		} `json:"generations"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Generations) == 0 {
		return "", false
	}
	return payload.Generations[0].Text, true
}

type genericAdapter struct{}

// genericTextKeys se prueban en este orden.
var genericTextKeys = []string{"text", "completion", "generated_text", "output"}

func (genericAdapter) EncodeRequest(req InvocationRequest) ([]byte, error) {
	body := map[string]any{
		"prompt":      req.Prompt,
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
		"top_p":       req.TopP,
	}
	return mergeExtra(body, req.Extra)
}

func (genericAdapter) DecodeResponse(raw []byte) (string, bool) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", false
	}
	for _, key := range genericTextKeys {
		v, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s, true
		}
		// algunos servidores devuelven el valor sin comillas (numero, objeto)
		return strings.TrimSpace(string(v)), true
	}
	return "", false
}
