package llm

import "context"

// LLMClient es el puerto que consumen los servicios para generar texto.
type LLMClient interface {
	Generate(ctx context.Context, req InvocationRequest) (string, error)
}

// InvocationRequest describe una llamada al modelo. Se crea por llamada y se descarta.
type InvocationRequest struct {
	ModelID       string
	Prompt        string
	MaxTokens     int
	Temperature   float64
	TopP          float64
	StopSequences []string
	// Extra se mezcla en el cuerpo del request sin pisar las claves propias de la familia.
	Extra map[string]any
}

// InvocationResponse guarda el payload crudo del proveedor y el texto normalizado.
type InvocationResponse struct {
	ModelID  string
	Raw      []byte
	Text     string
	Attempts int
	Cached   bool
}

const defaultTopP = 0.9

func clampUnit(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
