package llm

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cv-portfolio/internal/domain"
)

// RetryPolicy decide que fallos se reintentan.
type RetryPolicy string

const (
	// RetryAll reintenta cualquier error del transporte.
	RetryAll RetryPolicy = "all"
	// RetryTransientOnly corta en el primer fallo que no sea transitorio.
	RetryTransientOnly RetryPolicy = "transient_only"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
)

type GatewayConfig struct {
	// MaxRetries es el numero total de intentos.
	MaxRetries  int
	RetryDelay  time.Duration
	RetryPolicy RetryPolicy
	Cache       ResponseCache
}

// Gateway arma el cuerpo por familia, invoca el transporte con reintentos y extrae el texto.
// No guarda estado por llamada; se comparte entre goroutines.
type Gateway struct {
	registry  *ModelRegistry
	transport Transport
	adapters  map[domain.ModelFamily]FamilyAdapter
	cfg       GatewayConfig
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewGateway(registry *ModelRegistry, transport Transport, cfg GatewayConfig, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.RetryPolicy == "" {
		cfg.RetryPolicy = RetryAll
	}
	return &Gateway{
		registry:  registry,
		transport: transport,
		adapters:  defaultAdapters(),
		cfg:       cfg,
		logger:    logger,
		sleep:     sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Generate implementa LLMClient.
func (g *Gateway) Generate(ctx context.Context, req InvocationRequest) (string, error) {
	resp, err := g.Invoke(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Invoke ejecuta una llamada completa al modelo.
func (g *Gateway) Invoke(ctx context.Context, req InvocationRequest) (InvocationResponse, error) {
	modelID := strings.TrimSpace(req.ModelID)
	if modelID == "" {
		modelID = g.registry.DefaultModel()
	}
	maxTokens, temperature, desc := g.registry.ValidateModelParameters(modelID, req.MaxTokens, req.Temperature)
	req.ModelID = modelID
	req.MaxTokens = maxTokens
	req.Temperature = temperature
	if req.TopP <= 0 {
		req.TopP = defaultTopP
	} else {
		req.TopP = clampUnit(req.TopP)
	}

	adapter, ok := g.adapters[desc.Family]
	if !ok {
		adapter = g.adapters[domain.FamilyGeneric]
	}
	body, err := adapter.EncodeRequest(req)
	if err != nil {
		return InvocationResponse{}, fmt.Errorf("encode request for %s: %w", modelID, err)
	}

	var cacheKey string
	if g.cfg.Cache != nil {
		cacheKey = CacheKey(modelID, body)
		if raw, hit := g.cfg.Cache.Get(ctx, cacheKey); hit {
			if text, ok := adapter.DecodeResponse(raw); ok {
				g.logger.Debug("llm cache hit", zap.String("model_id", modelID))
				return InvocationResponse{ModelID: modelID, Raw: raw, Text: text, Cached: true}, nil
			}
		}
	}

	raw, outcomes, err := g.invokeWithRetry(ctx, modelID, body)
	if err != nil {
		return InvocationResponse{}, &ModelInvocationError{ModelID: modelID, Attempts: outcomes, Err: err}
	}
	attempts := len(outcomes) + 1

	if len(bytes.TrimSpace(raw)) == 0 {
		outcomes = append(outcomes, AttemptOutcome{Attempt: attempts, Class: ClassUnknown, Err: ErrEmptyPayload})
		return InvocationResponse{}, &ModelInvocationError{ModelID: modelID, Attempts: outcomes, Err: ErrEmptyPayload}
	}

	text, ok := adapter.DecodeResponse(raw)
	if !ok {
		return InvocationResponse{}, &ResponseParsingError{
			ModelID: modelID,
			Reason:  fmt.Sprintf("no text found for family %s", desc.Family),
			Raw:     truncateForError(string(raw), 500),
		}
	}

	if g.cfg.Cache != nil {
		g.cfg.Cache.Set(ctx, cacheKey, raw)
	}

	g.logger.Info("llm invocation completed",
		zap.String("model_id", modelID),
		zap.String("family", string(desc.Family)),
		zap.Int("attempts", attempts),
		zap.Int("max_tokens", maxTokens),
		zap.Float64("estimated_cost_usd", g.registry.EstimateCost(modelID, approxTokens(req.Prompt), approxTokens(text))),
	)

	return InvocationResponse{ModelID: modelID, Raw: raw, Text: text, Attempts: attempts}, nil
}

// invokeWithRetry devuelve el payload y los intentos fallidos previos al exito.
func (g *Gateway) invokeWithRetry(ctx context.Context, modelID string, body []byte) ([]byte, []AttemptOutcome, error) {
	var (
		outcomes []AttemptOutcome
		lastErr  error
	)
	for attempt := 0; attempt < g.cfg.MaxRetries; attempt++ {
		raw, err := g.transport.Invoke(ctx, modelID, body)
		if err == nil {
			return raw, outcomes, nil
		}
		lastErr = err
		class := Classify(err)
		outcomes = append(outcomes, AttemptOutcome{Attempt: attempt + 1, Class: class, Err: err})

		g.logger.Warn("llm invocation attempt failed",
			zap.String("model_id", modelID),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", g.cfg.MaxRetries),
			zap.String("class", string(class)),
			zap.Error(err),
		)

		if g.cfg.RetryPolicy == RetryTransientOnly && class != ClassTransient {
			break
		}
		if attempt == g.cfg.MaxRetries-1 {
			break
		}
		delay := g.cfg.RetryDelay * time.Duration(1<<attempt)
		if err := g.sleep(ctx, delay); err != nil {
			lastErr = fmt.Errorf("retry aborted: %w", err)
			break
		}
	}
	return nil, outcomes, lastErr
}
