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

// PortfolioHandler expone la generacion de portfolios. Los repos pueden ser nil.
type PortfolioHandler struct {
	logger     *zap.Logger
	portfolio  *service.PortfolioService
	analyses   repository.AnalysisRepository
	portfolios repository.PortfolioRepository
}

func NewPortfolioHandler(
	logger *zap.Logger,
	portfolio *service.PortfolioService,
	analyses repository.AnalysisRepository,
	portfolios repository.PortfolioRepository,
) *PortfolioHandler {
	return &PortfolioHandler{
		logger:     logger,
		portfolio:  portfolio,
		analyses:   analyses,
		portfolios: portfolios,
	}
}

type generatePortfolioRequest struct {
	CVData     *domain.CVAnalysisResult          `json:"cv_data"`
	AnalysisID string                            `json:"analysis_id"`
	Options    domain.PortfolioGenerationOptions `json:"options"`
}

// Generate maneja POST /portfolio/generate.
func (h *PortfolioHandler) Generate(c *gin.Context) {
	var req generatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid generate portfolio request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	analysisID := strings.TrimSpace(req.AnalysisID)
	cv := req.CVData
	switch {
	case cv != nil:
		cv.Normalize()
	case analysisID != "":
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
		c.JSON(http.StatusBadRequest, gin.H{"error": "cv_data or analysis_id is required"})
		return
	}

	content, err := h.portfolio.Generate(c.Request.Context(), cv, req.Options)
	if err != nil {
		respondError(c, h.logger, err, "could not generate portfolio")
		return
	}

	resp := gin.H{"portfolio": content}
	if h.portfolios != nil {
		record := domain.PortfolioRecord{
			ID:           uuid.NewString(),
			QualityScore: content.ContentQualityScore,
			Content:      *content,
			CreatedAt:    time.Now().UTC(),
		}
		if req.CVData == nil {
			record.AnalysisID = analysisID
		}
		if err := h.portfolios.Create(c.Request.Context(), record); err != nil {
			respondError(c, h.logger, err, "could not store portfolio")
			return
		}
		resp["portfolio_id"] = record.ID
	}

	c.JSON(http.StatusOK, resp)
}

// GetPortfolio maneja GET /portfolios/:id.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	if h.portfolios == nil {
		storageDisabled(c)
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	rec, err := h.portfolios.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "could not load portfolio")
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": rec})
}
