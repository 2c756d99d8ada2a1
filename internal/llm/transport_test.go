package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

func TestHTTPTransportInvoke(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatOK))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL+"/", "secret", time.Second, zap.NewNop())
	raw, err := tr.Invoke(context.Background(), "anthropic.claude-3-haiku-20240307-v1:0", []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != chatOK {
		t.Fatalf("expected raw payload, got %s", raw)
	}
	if gotPath != "/model/anthropic.claude-3-haiku-20240307-v1:0/invoke" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody != `{"a":1}` {
		t.Fatalf("expected body forwarded, got %q", gotBody)
	}
}

func TestHTTPTransportStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"slow down"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL, "", time.Second, zap.NewNop())
	_, err := tr.Invoke(context.Background(), "m", []byte(`{}`))
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", statusErr.StatusCode)
	}
	if Classify(err) != ClassTransient {
		t.Fatalf("expected transient classification")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ClassUnknown},
		{"deadline", context.DeadlineExceeded, ClassTransient},
		{"canceled", context.Canceled, ClassPermanent},
		{"throttled", &StatusError{StatusCode: 429}, ClassTransient},
		{"timeout status", &StatusError{StatusCode: 408}, ClassTransient},
		{"server", &StatusError{StatusCode: 502}, ClassTransient},
		{"forbidden", &StatusError{StatusCode: 403}, ClassPermanent},
		{"validation", &StatusError{StatusCode: 400}, ClassPermanent},
		{"wrapped", errors.Join(errors.New("ctx"), &StatusError{StatusCode: 401}), ClassPermanent},
		{"plain", errors.New("boom"), ClassUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDecodeChatBody(t *testing.T) {
	body, err := chatAdapter{}.EncodeRequest(InvocationRequest{Prompt: "analyze this", MaxTokens: 300, Temperature: 0.1, TopP: 0.9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cb, prompt, err := decodeChatBody(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != "analyze this" {
		t.Fatalf("expected prompt, got %q", prompt)
	}
	if cb.MaxTokens != 300 {
		t.Fatalf("expected 300 max tokens, got %d", cb.MaxTokens)
	}
	if cb.Temperature == nil || *cb.Temperature != 0.1 {
		t.Fatalf("expected temperature 0.1, got %v", cb.Temperature)
	}

	if _, _, err := decodeChatBody([]byte(`{"messages":[]}`)); err == nil {
		t.Fatalf("expected error for body without user message")
	}
}

func TestEncodeChatPayloadDecodesWithChatAdapter(t *testing.T) {
	raw, err := encodeChatPayload([]string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, ok := chatAdapter{}.DecodeResponse(raw)
	if !ok || text != "first" {
		t.Fatalf("expected first block text, got %q ok=%v", text, ok)
	}
}

func TestGenericBodyForGemini(t *testing.T) {
	body, err := genericAdapter{}.EncodeRequest(InvocationRequest{
		Prompt:      "resume",
		MaxTokens:   256,
		Temperature: 0.4,
		TopP:        0.8,
		Extra:       map[string]any{"stop_sequences": []string{"###"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gb, err := decodeGenericBody(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := generationConfig(gb)
	if cfg.MaxOutputTokens != 256 {
		t.Fatalf("expected 256 max output tokens, got %d", cfg.MaxOutputTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature != float32(0.4) {
		t.Fatalf("expected temperature 0.4, got %v", cfg.Temperature)
	}
	if len(cfg.StopSequences) != 1 || cfg.StopSequences[0] != "###" {
		t.Fatalf("expected stop sequences from extra, got %v", cfg.StopSequences)
	}

	answer, _ := json.Marshal(map[string]string{"text": "ok"})
	if text, ok := (genericAdapter{}).DecodeResponse(answer); !ok || text != "ok" {
		t.Fatalf("expected gemini answer to decode, got %q", text)
	}

	if _, err := decodeGenericBody([]byte(`{"prompt":"  "}`)); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func TestTruncateForErrorKeepsUTF8(t *testing.T) {
	body := "año " + "ñandú"
	for n := 1; n < len(body); n++ {
		got := truncateForError(body, n)
		if !utf8.ValidString(got) {
			t.Fatalf("n=%d: expected valid utf8, got %q", n, got)
		}
	}
	if got := truncateForError("short", 10); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
}
