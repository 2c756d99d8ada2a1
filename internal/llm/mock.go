package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
// Si Responses no esta vacio, devuelve una respuesta por llamada en orden y repite la ultima.
// Handler, si esta definido, tiene prioridad sobre todo lo demas.
type MockClient struct {
	Response  string
	Responses []string
	Err       error
	Handler   func(req InvocationRequest) (string, error)

	mu    sync.Mutex
	Calls []InvocationRequest
}

func (m *MockClient) Generate(ctx context.Context, req InvocationRequest) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	n := len(m.Calls)
	m.mu.Unlock()

	if m.Handler != nil {
		return m.Handler(req)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) > 0 {
		idx := n - 1
		if idx >= len(m.Responses) {
			idx = len(m.Responses) - 1
		}
		return m.Responses[idx], nil
	}
	return m.Response, nil
}

// CallCount devuelve cuantas veces se llamo a Generate.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
