package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	LLMTransport          string        `env:"LLM_TRANSPORT" envDefault:"http"`
	LLMBaseURL            string        `env:"LLM_BASE_URL" envDefault:"https://bedrock-runtime.us-east-1.amazonaws.com"`
	LLMAPIKey             string        `env:"LLM_API_KEY"`
	LLMDefaultModel       string        `env:"LLM_DEFAULT_MODEL"`
	LLMExtractionModel    string        `env:"LLM_EXTRACTION_MODEL"`
	LLMPortfolioModel     string        `env:"LLM_PORTFOLIO_MODEL"`
	LLMMaxRetries         int           `env:"LLM_MAX_RETRIES" envDefault:"3"`
	LLMRetryDelay         time.Duration `env:"LLM_RETRY_DELAY" envDefault:"1s"`
	LLMTimeout            time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`
	LLMRetryTransientOnly bool          `env:"LLM_RETRY_TRANSIENT_ONLY" envDefault:"false"`
	LLMCacheTTL           time.Duration `env:"LLM_CACHE_TTL" envDefault:"0s"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"0"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	JWTSecret           string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TaskModelOverrides devuelve los modelos configurados por tarea (vacios se ignoran).
func (c *Config) TaskModelOverrides() map[string]string {
	out := map[string]string{}
	if c.LLMExtractionModel != "" {
		out["cv_extraction"] = c.LLMExtractionModel
	}
	if c.LLMPortfolioModel != "" {
		out["portfolio_generation"] = c.LLMPortfolioModel
	}
	return out
}
