package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Transport envia un cuerpo ya codificado al endpoint del modelo y devuelve el payload crudo.
type Transport interface {
	Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error)
}

const defaultHTTPTimeout = 120 * time.Second

// HTTPTransport habla con un endpoint estilo runtime: POST {base}/model/{id}/invoke.
type HTTPTransport struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPTransport construye el transporte con un timeout fijo por llamada.
func NewHTTPTransport(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (t *HTTPTransport) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	endpoint := t.baseURL + "/model/" + url.PathEscape(modelID) + "/invoke"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		t.logger.Warn("llm error status",
			zap.String("model_id", modelID),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncateForError(string(respBody), 500)),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncateForError(string(respBody), 2000)}
	}

	return respBody, nil
}
