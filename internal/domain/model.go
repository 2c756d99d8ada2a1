package domain

// ModelFamily decide el formato de request/response que entiende un modelo.
type ModelFamily string

const (
	// FamilyChat usa el formato messages (Claude).
	FamilyChat ModelFamily = "chat"
	// FamilyTitan usa inputText + textGenerationConfig.
	FamilyTitan ModelFamily = "titan"
	// FamilyCompletion usa prompt + generation_config (estilo Cohere).
	FamilyCompletion ModelFamily = "completion"
	// FamilyGeneric usa un cuerpo plano {prompt, max_tokens, ...}.
	FamilyGeneric ModelFamily = "generic"
)

// ModelDescriptor describe limites y costos de un modelo conocido. Inmutable.
type ModelDescriptor struct {
	ID                string      `json:"id"`
	Family            ModelFamily `json:"family"`
	MaxTokens         int         `json:"max_tokens"`
	ContextWindow     int         `json:"context_window"`
	SupportsStreaming bool        `json:"supports_streaming"`
	InputCostPer1K    float64     `json:"input_cost_per_1k"`
	OutputCostPer1K   float64     `json:"output_cost_per_1k"`
}
