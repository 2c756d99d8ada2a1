package domain

import "time"

// AnalysisRecord es un analisis guardado por la API.
type AnalysisRecord struct {
	ID         string           `json:"id"`
	ModelID    string           `json:"model_id"`
	Confidence float64          `json:"confidence"`
	Result     CVAnalysisResult `json:"result"`
	CreatedAt  time.Time        `json:"created_at"`
}

// PortfolioRecord es un portfolio guardado por la API; AnalysisID puede venir vacio.
type PortfolioRecord struct {
	ID           string           `json:"id"`
	AnalysisID   string           `json:"analysis_id,omitempty"`
	QualityScore float64          `json:"quality_score"`
	Content      PortfolioContent `json:"content"`
	CreatedAt    time.Time        `json:"created_at"`
}
