package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TransportKind elige el backend remoto.
type TransportKind string

const (
	TransportHTTP      TransportKind = "http"
	TransportAnthropic TransportKind = "anthropic"
	TransportGemini    TransportKind = "gemini"
)

type TransportOptions struct {
	Kind    TransportKind
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// normalizeTransportKind pasa a minusculas; vacio equivale a http.
func normalizeTransportKind(kind TransportKind) TransportKind {
	k := TransportKind(strings.ToLower(strings.TrimSpace(string(kind))))
	if k == "" {
		return TransportHTTP
	}
	return k
}

// NewTransport construye el transport configurado. Vacio equivale a http.
func NewTransport(ctx context.Context, opts TransportOptions, logger *zap.Logger) (Transport, error) {
	switch normalizeTransportKind(opts.Kind) {
	case TransportHTTP:
		if strings.TrimSpace(opts.BaseURL) == "" {
			return nil, fmt.Errorf("http transport requires a base url")
		}
		return NewHTTPTransport(opts.BaseURL, opts.APIKey, opts.Timeout, logger), nil
	case TransportAnthropic:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("anthropic transport requires an api key")
		}
		return NewAnthropicTransport(opts.APIKey, logger), nil
	case TransportGemini:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("gemini transport requires an api key")
		}
		tr, err := NewGeminiTransport(ctx, opts.APIKey, logger)
		if err != nil {
			return nil, err
		}
		return tr, nil
	default:
		return nil, fmt.Errorf("unknown llm transport %q", opts.Kind)
	}
}
