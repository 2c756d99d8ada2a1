package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"cv-portfolio/internal/domain"
)

// AnalysisRepository guarda los resultados de extraccion como JSONB.
type AnalysisRepository interface {
	Create(ctx context.Context, record domain.AnalysisRecord) error
	GetByID(ctx context.Context, id string) (domain.AnalysisRecord, error)
	ListRecent(ctx context.Context, limit int) ([]domain.AnalysisRecord, error)
}

type PgAnalysisRepository struct {
	db pgxQuerier
}

func NewPgAnalysisRepository(db pgxQuerier) *PgAnalysisRepository {
	return &PgAnalysisRepository{db: db}
}

func (r *PgAnalysisRepository) Create(ctx context.Context, record domain.AnalysisRecord) error {
	payload, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	const query = `
		INSERT INTO cv_analyses (id, model_id, confidence, result, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.ModelID,
		record.Confidence,
		payload,
		record.CreatedAt,
	)
	return err
}

func (r *PgAnalysisRepository) GetByID(ctx context.Context, id string) (domain.AnalysisRecord, error) {
	const query = `
		SELECT id::text, model_id, confidence, result, created_at
		FROM cv_analyses
		WHERE id = $1
	`
	rec, err := scanAnalysis(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.AnalysisRecord{}, notFound(err)
	}
	return rec, nil
}

func (r *PgAnalysisRepository) ListRecent(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const query = `
		SELECT id::text, model_id, confidence, result, created_at
		FROM cv_analyses
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnalyses(rows)
}

type rowScanner interface {
	Scan(...any) error
}

func scanAnalysis(row rowScanner) (domain.AnalysisRecord, error) {
	var rec domain.AnalysisRecord
	var payload []byte
	if err := row.Scan(&rec.ID, &rec.ModelID, &rec.Confidence, &payload, &rec.CreatedAt); err != nil {
		return domain.AnalysisRecord{}, err
	}
	if err := json.Unmarshal(payload, &rec.Result); err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("decode analysis %s: %w", rec.ID, err)
	}
	rec.Result.Normalize()
	return rec, nil
}

func scanAnalyses(rows pgxRows) ([]domain.AnalysisRecord, error) {
	records := []domain.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
