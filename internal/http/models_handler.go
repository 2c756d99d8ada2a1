package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-portfolio/internal/llm"
)

type ModelsHandler struct {
	registry *llm.ModelRegistry
}

func NewModelsHandler(registry *llm.ModelRegistry) *ModelsHandler {
	return &ModelsHandler{registry: registry}
}

// ListModels maneja GET /models.
func (h *ModelsHandler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default_model": h.registry.DefaultModel(),
		"models":        h.registry.ListModels(),
	})
}

// Recommended maneja GET /models/recommended?task=cv_extraction.
func (h *ModelsHandler) Recommended(c *gin.Context) {
	task := llm.TaskType(c.DefaultQuery("task", string(llm.TaskCVExtraction)))
	modelID := h.registry.GetRecommendedModel(task)
	resp := gin.H{"task": task, "model_id": modelID}
	if desc, ok := h.registry.GetModelConfig(modelID); ok {
		resp["model"] = desc
	}
	c.JSON(http.StatusOK, resp)
}
