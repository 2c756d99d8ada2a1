package llm

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"cv-portfolio/internal/domain"
)

// TaskType identifica para que se usa un modelo.
type TaskType string

const (
	TaskCVExtraction        TaskType = "cv_extraction"
	TaskPortfolioGeneration TaskType = "portfolio_generation"
	TaskSkillsAnalysis      TaskType = "skills_analysis"
	TaskContentEnhancement  TaskType = "content_enhancement"
	TaskSummarization       TaskType = "summarization"
)

const (
	fallbackMaxTokens     = 4096
	fallbackContextWindow = 8192
)

// catalog es la tabla estatica de modelos conocidos.
var catalog = []domain.ModelDescriptor{
	{ID: "anthropic.claude-3-5-sonnet-20240620-v1:0", Family: domain.FamilyChat, MaxTokens: 4096, ContextWindow: 200000, SupportsStreaming: true, InputCostPer1K: 0.003, OutputCostPer1K: 0.015},
	{ID: "anthropic.claude-3-sonnet-20240229-v1:0", Family: domain.FamilyChat, MaxTokens: 4096, ContextWindow: 200000, SupportsStreaming: true, InputCostPer1K: 0.003, OutputCostPer1K: 0.015},
	{ID: "anthropic.claude-3-haiku-20240307-v1:0", Family: domain.FamilyChat, MaxTokens: 4096, ContextWindow: 200000, SupportsStreaming: true, InputCostPer1K: 0.00025, OutputCostPer1K: 0.00125},
	{ID: "anthropic.claude-3-opus-20240229-v1:0", Family: domain.FamilyChat, MaxTokens: 4096, ContextWindow: 200000, SupportsStreaming: true, InputCostPer1K: 0.015, OutputCostPer1K: 0.075},
	{ID: "claude-3-5-sonnet-latest", Family: domain.FamilyChat, MaxTokens: 8192, ContextWindow: 200000, SupportsStreaming: true, InputCostPer1K: 0.003, OutputCostPer1K: 0.015},
	{ID: "claude-3-5-haiku-latest", Family: domain.FamilyChat, MaxTokens: 8192, ContextWindow: 200000, SupportsStreaming: true, InputCostPer1K: 0.0008, OutputCostPer1K: 0.004},
	{ID: "amazon.titan-text-express-v1", Family: domain.FamilyTitan, MaxTokens: 8192, ContextWindow: 8192, SupportsStreaming: true, InputCostPer1K: 0.0002, OutputCostPer1K: 0.0006},
	{ID: "amazon.titan-text-lite-v1", Family: domain.FamilyTitan, MaxTokens: 4096, ContextWindow: 4096, SupportsStreaming: true, InputCostPer1K: 0.00015, OutputCostPer1K: 0.0002},
	{ID: "cohere.command-text-v14", Family: domain.FamilyCompletion, MaxTokens: 4000, ContextWindow: 4096, SupportsStreaming: true, InputCostPer1K: 0.0015, OutputCostPer1K: 0.002},
	{ID: "cohere.command-light-text-v14", Family: domain.FamilyCompletion, MaxTokens: 4000, ContextWindow: 4096, SupportsStreaming: true, InputCostPer1K: 0.0003, OutputCostPer1K: 0.0006},
	{ID: "gemini-2.5-flash", Family: domain.FamilyGeneric, MaxTokens: 8192, ContextWindow: 1048576, SupportsStreaming: true, InputCostPer1K: 0.0003, OutputCostPer1K: 0.0025},
	{ID: "gemini-2.5-pro", Family: domain.FamilyGeneric, MaxTokens: 8192, ContextWindow: 1048576, SupportsStreaming: true, InputCostPer1K: 0.00125, OutputCostPer1K: 0.01},
}

// transportRecommendations es la tabla por tarea segun el backend: los ids de Bedrock
// no existen en la API de Anthropic ni en Gemini.
var transportRecommendations = map[TransportKind]map[TaskType]string{
	TransportHTTP: {
		TaskCVExtraction:        "anthropic.claude-3-sonnet-20240229-v1:0",
		TaskPortfolioGeneration: "anthropic.claude-3-sonnet-20240229-v1:0",
		TaskSkillsAnalysis:      "anthropic.claude-3-haiku-20240307-v1:0",
		TaskContentEnhancement:  "anthropic.claude-3-haiku-20240307-v1:0",
		TaskSummarization:       "anthropic.claude-3-haiku-20240307-v1:0",
	},
	TransportAnthropic: {
		TaskCVExtraction:        "claude-3-5-sonnet-latest",
		TaskPortfolioGeneration: "claude-3-5-sonnet-latest",
		TaskSkillsAnalysis:      "claude-3-5-haiku-latest",
		TaskContentEnhancement:  "claude-3-5-haiku-latest",
		TaskSummarization:       "claude-3-5-haiku-latest",
	},
	TransportGemini: {
		TaskCVExtraction:        "gemini-2.5-pro",
		TaskPortfolioGeneration: "gemini-2.5-pro",
		TaskSkillsAnalysis:      "gemini-2.5-flash",
		TaskContentEnhancement:  "gemini-2.5-flash",
		TaskSummarization:       "gemini-2.5-flash",
	},
}

// servableFamilies dice que formatos de cuerpo entiende cada transport; nil = todos.
var servableFamilies = map[TransportKind][]domain.ModelFamily{
	TransportAnthropic: {domain.FamilyChat},
	TransportGemini:    {domain.FamilyGeneric},
}

// nativeFamily es la familia que se asume para modelos fuera del catalogo.
var nativeFamily = map[TransportKind]domain.ModelFamily{
	TransportHTTP:      domain.FamilyGeneric,
	TransportAnthropic: domain.FamilyChat,
	TransportGemini:    domain.FamilyGeneric,
}

// ModelRegistry es el catalogo de modelos. Se construye una vez al arrancar y no se muta.
type ModelRegistry struct {
	models          map[string]domain.ModelDescriptor
	recommendations map[TaskType]string
	defaultModel    string
	transport       TransportKind
	logger          *zap.Logger
}

// NewModelRegistry arma el registro para el transport elegido.
// Si hay defaultModel reemplaza a la tabla por tarea; los overrides por tarea ganan sobre ambos.
func NewModelRegistry(kind TransportKind, defaultModel string, overrides map[string]string, logger *zap.Logger) *ModelRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	kind = normalizeTransportKind(kind)
	models := make(map[string]domain.ModelDescriptor, len(catalog))
	for _, d := range catalog {
		models[d.ID] = d
	}

	table := transportRecommendations[kind]
	if table == nil {
		table = transportRecommendations[TransportHTTP]
	}
	defaultModel = strings.TrimSpace(defaultModel)
	recs := make(map[TaskType]string, len(table))
	for task, id := range table {
		if defaultModel != "" {
			id = defaultModel
		}
		recs[task] = id
	}
	for task, id := range overrides {
		if strings.TrimSpace(id) == "" {
			continue
		}
		recs[TaskType(task)] = strings.TrimSpace(id)
	}
	if defaultModel == "" {
		defaultModel = table[TaskCVExtraction]
	}
	return &ModelRegistry{
		models:          models,
		recommendations: recs,
		defaultModel:    defaultModel,
		transport:       kind,
		logger:          logger,
	}
}

// CheckTransport falla si algun modelo recomendado (o el default) tiene una familia
// que el transport del registro no sabe enviar. Se llama al arrancar.
func (r *ModelRegistry) CheckTransport() error {
	allowed, ok := servableFamilies[r.transport]
	if !ok {
		return nil
	}
	ids := map[string]struct{}{r.defaultModel: {}}
	for _, id := range r.recommendations {
		ids[id] = struct{}{}
	}
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	for _, id := range sorted {
		family := r.familyOf(id)
		servable := false
		for _, f := range allowed {
			if f == family {
				servable = true
				break
			}
		}
		if !servable {
			return fmt.Errorf("model %s (family %s) cannot be served by the %s transport", id, family, r.transport)
		}
	}
	return nil
}

func (r *ModelRegistry) familyOf(modelID string) domain.ModelFamily {
	if d, ok := r.models[modelID]; ok {
		return d.Family
	}
	return nativeFamily[r.transport]
}

// DefaultModel devuelve el modelo configurado por defecto.
func (r *ModelRegistry) DefaultModel() string {
	return r.defaultModel
}

// GetModelConfig devuelve el descriptor de un modelo conocido.
func (r *ModelRegistry) GetModelConfig(modelID string) (domain.ModelDescriptor, bool) {
	d, ok := r.models[modelID]
	return d, ok
}

// GetRecommendedModel devuelve el modelo sugerido para la tarea o el default.
func (r *ModelRegistry) GetRecommendedModel(task TaskType) string {
	if id, ok := r.recommendations[task]; ok && id != "" {
		return id
	}
	return r.defaultModel
}

// ValidateModelParameters acota max tokens y temperatura a los limites del modelo.
// Para modelos desconocidos sintetiza un descriptor permisivo y loguea un warning.
func (r *ModelRegistry) ValidateModelParameters(modelID string, maxTokens int, temperature float64) (int, float64, domain.ModelDescriptor) {
	desc, ok := r.models[modelID]
	if !ok {
		r.logger.Warn("unknown model, using permissive defaults", zap.String("model_id", modelID))
		desc = domain.ModelDescriptor{
			ID:            modelID,
			Family:        r.familyOf(modelID),
			MaxTokens:     fallbackMaxTokens,
			ContextWindow: fallbackContextWindow,
		}
	}

	if maxTokens <= 0 || maxTokens > desc.MaxTokens {
		maxTokens = desc.MaxTokens
	}
	return maxTokens, clampUnit(temperature), desc
}

// ListModels devuelve el catalogo ordenado por id.
func (r *ModelRegistry) ListModels() []domain.ModelDescriptor {
	out := make([]domain.ModelDescriptor, 0, len(r.models))
	for _, d := range r.models {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EstimateCost calcula el costo aproximado en USD de una invocacion.
func (r *ModelRegistry) EstimateCost(modelID string, inputTokens, outputTokens int) float64 {
	d, ok := r.models[modelID]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1000*d.InputCostPer1K + float64(outputTokens)/1000*d.OutputCostPer1K
}

// approxTokens estima tokens con la regla de ~4 caracteres por token.
func approxTokens(s string) int {
	return (len(s) + 3) / 4
}
