package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"cv-portfolio/internal/domain"
)

// PortfolioRepository guarda portfolios generados como JSONB.
type PortfolioRepository interface {
	Create(ctx context.Context, record domain.PortfolioRecord) error
	GetByID(ctx context.Context, id string) (domain.PortfolioRecord, error)
}

type PgPortfolioRepository struct {
	db pgxQuerier
}

func NewPgPortfolioRepository(db pgxQuerier) *PgPortfolioRepository {
	return &PgPortfolioRepository{db: db}
}

func (r *PgPortfolioRepository) Create(ctx context.Context, record domain.PortfolioRecord) error {
	payload, err := json.Marshal(record.Content)
	if err != nil {
		return fmt.Errorf("encode portfolio: %w", err)
	}
	var analysisID any
	if record.AnalysisID != "" {
		analysisID = record.AnalysisID
	}
	const query = `
		INSERT INTO portfolios (id, analysis_id, quality_score, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.Exec(ctx, query,
		record.ID,
		analysisID,
		record.QualityScore,
		payload,
		record.CreatedAt,
	)
	return err
}

func (r *PgPortfolioRepository) GetByID(ctx context.Context, id string) (domain.PortfolioRecord, error) {
	const query = `
		SELECT id::text, COALESCE(analysis_id::text, ''), quality_score, content, created_at
		FROM portfolios
		WHERE id = $1
	`
	var rec domain.PortfolioRecord
	var payload []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.AnalysisID,
		&rec.QualityScore,
		&payload,
		&rec.CreatedAt,
	)
	if err != nil {
		return domain.PortfolioRecord{}, notFound(err)
	}
	if err := json.Unmarshal(payload, &rec.Content); err != nil {
		return domain.PortfolioRecord{}, fmt.Errorf("decode portfolio %s: %w", rec.ID, err)
	}
	rec.Content.Normalize()
	return rec, nil
}
