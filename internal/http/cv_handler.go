package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cv-portfolio/internal/domain"
	"cv-portfolio/internal/repository"
	"cv-portfolio/internal/service"
)

// CVHandler expone el pipeline de extraccion. analyses puede ser nil (sin persistencia).
type CVHandler struct {
	logger     *zap.Logger
	extraction *service.ExtractionService
	analyses   repository.AnalysisRepository
	modelID    string
}

func NewCVHandler(logger *zap.Logger, extraction *service.ExtractionService, analyses repository.AnalysisRepository, modelID string) *CVHandler {
	return &CVHandler{
		logger:     logger,
		extraction: extraction,
		analyses:   analyses,
		modelID:    modelID,
	}
}

type analyzeRequest struct {
	CVText  string                 `json:"cv_text"`
	Options service.AnalyzeOptions `json:"options"`
}

// Analyze maneja POST /cv/analyze.
func (h *CVHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analyze request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.extraction.Analyze(c.Request.Context(), req.CVText, req.Options)
	if err != nil {
		respondError(c, h.logger, err, "could not analyze cv")
		return
	}

	resp := gin.H{"result": result}
	if h.analyses != nil {
		modelID := req.Options.ModelID
		if modelID == "" {
			modelID = h.modelID
		}
		record := domain.AnalysisRecord{
			ID:         uuid.NewString(),
			ModelID:    modelID,
			Confidence: result.AnalysisConfidence,
			Result:     *result,
			CreatedAt:  time.Now().UTC(),
		}
		if err := h.analyses.Create(c.Request.Context(), record); err != nil {
			respondError(c, h.logger, err, "could not store analysis")
			return
		}
		resp["analysis_id"] = record.ID
	}

	c.JSON(http.StatusOK, resp)
}

type skillsSummaryRequest struct {
	CVText     string                   `json:"cv_text"`
	CVData     *domain.CVAnalysisResult `json:"cv_data"`
	AnalysisID string                   `json:"analysis_id"`
}

// SkillsSummary maneja POST /cv/skills-summary. Acepta cv_data, analysis_id o cv_text (en ese orden).
func (h *CVHandler) SkillsSummary(c *gin.Context) {
	var req skillsSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid skills summary request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var cv *domain.CVAnalysisResult
	switch {
	case req.CVData != nil:
		cv = req.CVData
		cv.Normalize()
	case strings.TrimSpace(req.AnalysisID) != "":
		analysisID := strings.TrimSpace(req.AnalysisID)
		if _, err := uuid.Parse(analysisID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis_id"})
			return
		}
		if h.analyses == nil {
			storageDisabled(c)
			return
		}
		rec, err := h.analyses.GetByID(c.Request.Context(), analysisID)
		if err != nil {
			respondError(c, h.logger, err, "could not load analysis")
			return
		}
		cv = &rec.Result
	default:
		result, err := h.extraction.Analyze(c.Request.Context(), req.CVText, service.AnalyzeOptions{})
		if err != nil {
			respondError(c, h.logger, err, "could not analyze cv")
			return
		}
		cv = result
	}

	c.JSON(http.StatusOK, gin.H{"skills_summary": service.ExtractSkillsSummary(cv)})
}

// GetAnalysis maneja GET /cv/analyses/:id.
func (h *CVHandler) GetAnalysis(c *gin.Context) {
	if h.analyses == nil {
		storageDisabled(c)
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	rec, err := h.analyses.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "could not load analysis")
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": rec})
}

// ListAnalyses maneja GET /cv/analyses.
func (h *CVHandler) ListAnalyses(c *gin.Context) {
	if h.analyses == nil {
		storageDisabled(c)
		return
	}
	records, err := h.analyses.ListRecent(c.Request.Context(), queryLimit(c, 20))
	if err != nil {
		respondError(c, h.logger, err, "could not list analyses")
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": records})
}
