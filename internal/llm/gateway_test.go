package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeTransport struct {
	mu      sync.Mutex
	results []fakeResult
	calls   int
	bodies  [][]byte
}

type fakeResult struct {
	raw []byte
	err error
}

func (f *fakeTransport) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, body)
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	r := f.results[idx]
	return r.raw, r.err
}

type memoryCache struct {
	data map[string][]byte
	sets int
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *memoryCache) Set(ctx context.Context, key string, payload []byte) {
	m.data[key] = payload
	m.sets++
}

const chatOK = `{"content":[{"type":"text","text":"hello"}]}`

func newTestGateway(tr Transport, cfg GatewayConfig) (*Gateway, *[]time.Duration) {
	g := NewGateway(NewModelRegistry(TransportHTTP, "", nil, zap.NewNop()), tr, cfg, zap.NewNop())
	var sleeps []time.Duration
	g.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return g, &sleeps
}

func TestGatewayInvokeSuccess(t *testing.T) {
	tr := &fakeTransport{results: []fakeResult{{raw: []byte(chatOK)}}}
	g, _ := newTestGateway(tr, GatewayConfig{})

	resp, err := g.Invoke(context.Background(), InvocationRequest{Prompt: "hi", MaxTokens: 99999, Temperature: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello" {
		t.Fatalf("expected hello, got %q", resp.Text)
	}
	if resp.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", resp.Attempts)
	}
	if resp.ModelID != "anthropic.claude-3-sonnet-20240229-v1:0" {
		t.Fatalf("expected default model, got %q", resp.ModelID)
	}
	body := decodeBody(t, tr.bodies[0])
	if body["max_tokens"].(float64) != 4096 {
		t.Fatalf("expected clamped max_tokens, got %v", body["max_tokens"])
	}
	if body["temperature"].(float64) != 1 {
		t.Fatalf("expected clamped temperature, got %v", body["temperature"])
	}
	if body["top_p"].(float64) != defaultTopP {
		t.Fatalf("expected default top_p, got %v", body["top_p"])
	}
}

func TestGatewayRetriesWithBackoff(t *testing.T) {
	tr := &fakeTransport{results: []fakeResult{
		{err: &StatusError{StatusCode: 503}},
		{err: errors.New("connection reset")},
		{raw: []byte(chatOK)},
	}}
	g, sleeps := newTestGateway(tr, GatewayConfig{MaxRetries: 3, RetryDelay: 10 * time.Millisecond})

	resp, err := g.Invoke(context.Background(), InvocationRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Attempts != 3 || tr.calls != 3 {
		t.Fatalf("expected 3 attempts, got resp=%d calls=%d", resp.Attempts, tr.calls)
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	if len(*sleeps) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), *sleeps)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Fatalf("expected sleep %v at %d, got %v", d, i, (*sleeps)[i])
		}
	}
}

func TestGatewayExhaustsRetries(t *testing.T) {
	lastErr := &StatusError{StatusCode: 403}
	tr := &fakeTransport{results: []fakeResult{
		{err: &StatusError{StatusCode: 429}},
		{err: lastErr},
	}}
	g, _ := newTestGateway(tr, GatewayConfig{MaxRetries: 3})

	_, err := g.Invoke(context.Background(), InvocationRequest{Prompt: "hi"})
	var invErr *ModelInvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ModelInvocationError, got %v", err)
	}
	if tr.calls != 3 {
		t.Fatalf("expected uniform retry to try 3 times, got %d", tr.calls)
	}
	if len(invErr.Attempts) != 3 {
		t.Fatalf("expected 3 attempt outcomes, got %d", len(invErr.Attempts))
	}
	if invErr.Attempts[0].Class != ClassTransient {
		t.Fatalf("expected first attempt transient, got %s", invErr.Attempts[0].Class)
	}
	if invErr.LastClass() != ClassPermanent {
		t.Fatalf("expected last attempt permanent, got %s", invErr.LastClass())
	}
	if !errors.Is(err, lastErr) {
		t.Fatalf("expected error to wrap the last transport error")
	}
}

func TestGatewayTransientOnlyStopsOnPermanent(t *testing.T) {
	tr := &fakeTransport{results: []fakeResult{{err: &StatusError{StatusCode: 400}}}}
	g, sleeps := newTestGateway(tr, GatewayConfig{MaxRetries: 3, RetryPolicy: RetryTransientOnly})

	_, err := g.Invoke(context.Background(), InvocationRequest{Prompt: "hi"})
	var invErr *ModelInvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ModelInvocationError, got %v", err)
	}
	if tr.calls != 1 {
		t.Fatalf("expected fail-fast after 1 call, got %d", tr.calls)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("expected no backoff sleeps, got %v", *sleeps)
	}
}

func TestGatewayEmptyPayload(t *testing.T) {
	tr := &fakeTransport{results: []fakeResult{{raw: []byte("  ")}}}
	g, _ := newTestGateway(tr, GatewayConfig{})

	_, err := g.Invoke(context.Background(), InvocationRequest{Prompt: "hi"})
	var invErr *ModelInvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ModelInvocationError, got %v", err)
	}
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
}

func TestGatewayTextNotFound(t *testing.T) {
	tr := &fakeTransport{results: []fakeResult{{raw: []byte(`{"unexpected":true}`)}}}
	g, _ := newTestGateway(tr, GatewayConfig{})

	_, err := g.Invoke(context.Background(), InvocationRequest{ModelID: "gemini-2.5-flash", Prompt: "hi"})
	var parseErr *ResponseParsingError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ResponseParsingError, got %v", err)
	}
	if parseErr.ModelID != "gemini-2.5-flash" {
		t.Fatalf("expected model id in error, got %q", parseErr.ModelID)
	}
}

func TestGatewayCancelledDuringBackoff(t *testing.T) {
	tr := &fakeTransport{results: []fakeResult{{err: &StatusError{StatusCode: 500}}}}
	g, _ := newTestGateway(tr, GatewayConfig{MaxRetries: 5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Invoke(ctx, InvocationRequest{Prompt: "hi"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tr.calls != 1 {
		t.Fatalf("expected a single call before abort, got %d", tr.calls)
	}
}

func TestGatewayUsesCache(t *testing.T) {
	tr := &fakeTransport{results: []fakeResult{{raw: []byte(chatOK)}}}
	cache := &memoryCache{data: map[string][]byte{}}
	g, _ := newTestGateway(tr, GatewayConfig{Cache: cache})

	req := InvocationRequest{Prompt: "same prompt", MaxTokens: 100}
	first, err := g.Invoke(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := g.Invoke(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.calls != 1 {
		t.Fatalf("expected second call served from cache, got %d transport calls", tr.calls)
	}
	if first.Cached || !second.Cached {
		t.Fatalf("expected cached flag only on second response")
	}
	if second.Text != "hello" {
		t.Fatalf("expected cached text, got %q", second.Text)
	}
}

func TestGatewayGenerate(t *testing.T) {
	tr := &fakeTransport{results: []fakeResult{{raw: []byte(`{"results":[{"outputText":"titan says"}]}`)}}}
	g, _ := newTestGateway(tr, GatewayConfig{})

	var client LLMClient = g
	text, err := client.Generate(context.Background(), InvocationRequest{ModelID: "amazon.titan-text-express-v1", Prompt: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "titan says" {
		t.Fatalf("expected titan text, got %q", text)
	}
}
