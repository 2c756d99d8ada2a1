package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cv-portfolio/internal/service"
)

// RouterDeps agrupa lo que necesita el router. JWT y Limiter son opcionales.
type RouterDeps struct {
	Logger    *zap.Logger
	JWT       *service.JWTService
	Limiter   service.RateLimiter
	CV        *CVHandler
	Portfolio *PortfolioHandler
	Models    *ModelsHandler
}

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(deps.Logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("")
	if deps.JWT.Enabled() {
		api.Use(JWTAuthMiddleware(deps.JWT))
	}

	models := api.Group("/models")
	models.GET("", deps.Models.ListModels)
	models.GET("/recommended", deps.Models.Recommended)

	// Lo que termina en el modelo pasa por el rate limit.
	limited := RateLimitMiddleware(deps.Limiter)

	cv := api.Group("/cv")
	cv.POST("/analyze", limited, deps.CV.Analyze)
	cv.POST("/skills-summary", limited, deps.CV.SkillsSummary)
	cv.GET("/analyses", deps.CV.ListAnalyses)
	cv.GET("/analyses/:id", deps.CV.GetAnalysis)

	api.POST("/portfolio/generate", limited, deps.Portfolio.Generate)
	api.GET("/portfolios/:id", deps.Portfolio.GetPortfolio)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
