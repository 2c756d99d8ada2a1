package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cv-portfolio/internal/llm"
	"cv-portfolio/internal/repository"
	"cv-portfolio/internal/service"
)

// respondError traduce errores de servicio a status HTTP. msg es lo que ve el cliente en errores internos.
func respondError(c *gin.Context, logger *zap.Logger, err error, msg string) {
	var invErr *llm.ModelInvocationError
	var parseErr *llm.ResponseParsingError

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &parseErr):
		logger.Warn("model response unusable", zap.String("model_id", parseErr.ModelID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "model response could not be parsed", "model_id": parseErr.ModelID})
	case errors.As(err, &invErr):
		logger.Warn("model invocation failed", zap.String("model_id", invErr.ModelID), zap.Int("attempts", len(invErr.Attempts)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":       "model invocation failed",
			"model_id":    invErr.ModelID,
			"attempts":    len(invErr.Attempts),
			"error_class": string(invErr.LastClass()),
		})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func storageDisabled(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
}

func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
