package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"cv-portfolio/internal/domain"
	"cv-portfolio/internal/llm"
)

const (
	extractionTemperature = 0.1
	extractionMaxTokens   = 4000
)

// AnalyzeOptions ajusta una llamada a Analyze. El valor cero corre todas las etapas.
type AnalyzeOptions struct {
	ModelID         string `json:"model_id,omitempty"`
	SkipEnhancement bool   `json:"skip_enhancement,omitempty"`
	SkipValidation  bool   `json:"skip_validation,omitempty"`
}

// ExtractionService convierte texto libre de un CV en un CVAnalysisResult tipado.
// Etapas: extraccion (fatal), mapeo, mejora y limpieza (estas tres degradan con notas).
type ExtractionService struct {
	llmClient llm.LLMClient
	modelID   string
	logger    *zap.Logger
}

func NewExtractionService(llmClient llm.LLMClient, modelID string, logger *zap.Logger) *ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionService{
		llmClient: llmClient,
		modelID:   modelID,
		logger:    logger,
	}
}

// Analyze corre el pipeline completo. Devuelve ErrEmptyCVText sin llamar al modelo si el texto esta vacio.
func (s *ExtractionService) Analyze(ctx context.Context, cvText string, opts AnalyzeOptions) (*domain.CVAnalysisResult, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, ErrEmptyCVText
	}
	modelID := opts.ModelID
	if modelID == "" {
		modelID = s.modelID
	}

	doc, err := s.extract(ctx, cvText, modelID)
	if err != nil {
		return nil, err
	}

	result := s.parse(doc)

	if !opts.SkipEnhancement {
		s.safeStage("enhance", result, func() { enhanceResult(result, cvText) })
	}
	if !opts.SkipValidation {
		s.safeStage("validate_clean", result, func() { cleanResult(result) })
	}

	result.Normalize()
	s.logger.Info("cv analysis completed",
		zap.String("model_id", modelID),
		zap.Float64("confidence", result.AnalysisConfidence),
		zap.Int("work_experience", len(result.WorkExperience)),
		zap.Int("notes", len(result.ProcessingNotes)),
	)
	return result, nil
}

func (s *ExtractionService) extract(ctx context.Context, cvText, modelID string) (any, error) {
	text, err := s.llmClient.Generate(ctx, llm.InvocationRequest{
		ModelID:     modelID,
		Prompt:      buildExtractionPrompt(cvText),
		MaxTokens:   extractionMaxTokens,
		Temperature: extractionTemperature,
	})
	if err != nil {
		s.logger.Error("cv extraction call failed", zap.String("model_id", modelID), zap.Error(err))
		return nil, fmt.Errorf("cv extraction: %w", err)
	}

	doc, err := parseLLMJSON(text)
	if err != nil {
		s.logger.Warn("cv extraction returned invalid json", zap.String("model_id", modelID), zap.Error(err))
		return nil, &llm.ResponseParsingError{
			ModelID: modelID,
			Reason:  "extraction response is not valid JSON",
			Raw:     truncate(text, 500),
			Err:     err,
		}
	}
	return doc, nil
}

// parse nunca falla: problemas de esquema y de forma quedan como notas.
func (s *ExtractionService) parse(doc any) (result *domain.CVAnalysisResult) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("cv mapping panicked", zap.Any("panic", rec))
			result = domain.NewCVAnalysisResult()
			result.AddNote("Extracted data could not be mapped; returning minimal result")
		}
	}()

	notes, err := validateExtractionDocument(doc)
	if err != nil {
		s.logger.Warn("schema validation skipped", zap.Error(err))
	}

	result = mapCVDocument(doc)
	for _, n := range notes {
		result.AddNote(n)
	}
	return result
}

// safeStage corre una etapa opcional; si entra en panico restaura el resultado previo.
func (s *ExtractionService) safeStage(name string, result *domain.CVAnalysisResult, fn func()) {
	snapshot := *result
	snapshot.ProcessingNotes = append([]string(nil), result.ProcessingNotes...)
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("analysis stage failed", zap.String("stage", name), zap.Any("panic", rec))
			*result = snapshot
		}
	}()
	fn()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return cutAtRune(s, n) + "..."
}

// cutAtRune corta s en a lo sumo n bytes sin partir un caracter multibyte.
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
