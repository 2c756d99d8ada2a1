package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"cv-portfolio/internal/domain"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("expected %d destinations, got %d", len(r.values), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *float64:
			*p = r.values[i].(float64)
		case *[]byte:
			*p = r.values[i].([]byte)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return fmt.Errorf("unsupported destination %T", d)
		}
	}
	return nil
}

type fakeRows struct {
	rows []fakeRow
	idx  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error { return r.rows[r.idx-1].Scan(dest...) }
func (r *fakeRows) Err() error             { return r.err }
func (r *fakeRows) Close()                 {}

type fakeDB struct {
	execSQL  string
	execArgs []any
	execErr  error

	queryArgs []any
	row       fakeRow
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = sql
	f.execArgs = args
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	f.queryArgs = args
	return nil, errors.New("query not supported in tests")
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	f.queryArgs = args
	return f.row
}

func sampleAnalysis() domain.CVAnalysisResult {
	r := domain.NewCVAnalysisResult()
	r.PersonalInfo.Name = "Jane Smith"
	r.TechnicalSkills = []string{"Go"}
	r.AnalysisConfidence = 0.8
	return *r
}

func TestAnalysisRepositoryCreate(t *testing.T) {
	db := &fakeDB{}
	repo := NewPgAnalysisRepository(db)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := repo.Create(context.Background(), domain.AnalysisRecord{
		ID:         "a1",
		ModelID:    "m1",
		Confidence: 0.8,
		Result:     sampleAnalysis(),
		CreatedAt:  created,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(db.execSQL, "INSERT INTO cv_analyses") {
		t.Fatalf("unexpected sql: %s", db.execSQL)
	}
	if len(db.execArgs) != 5 || db.execArgs[0] != "a1" || db.execArgs[4] != created {
		t.Fatalf("unexpected args: %+v", db.execArgs)
	}
	payload, ok := db.execArgs[3].([]byte)
	if !ok || !strings.Contains(string(payload), `"Jane Smith"`) {
		t.Fatalf("expected json payload, got %v", db.execArgs[3])
	}
}

func TestAnalysisRepositoryGetByID(t *testing.T) {
	payload, err := json.Marshal(sampleAnalysis())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db := &fakeDB{row: fakeRow{values: []any{"a1", "m1", 0.8, payload, created}}}
		rec, err := NewPgAnalysisRepository(db).GetByID(context.Background(), "a1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if rec.ID != "a1" || rec.Result.PersonalInfo.Name != "Jane Smith" || !rec.CreatedAt.Equal(created) {
			t.Fatalf("unexpected record: %+v", rec)
		}
		if rec.Result.Education == nil {
			t.Fatal("expected normalized lists")
		}
	})

	t.Run("not found", func(t *testing.T) {
		db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
		_, err := NewPgAnalysisRepository(db).GetByID(context.Background(), "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("corrupt payload", func(t *testing.T) {
		db := &fakeDB{row: fakeRow{values: []any{"a1", "m1", 0.8, []byte("{not json"), created}}}
		_, err := NewPgAnalysisRepository(db).GetByID(context.Background(), "a1")
		if err == nil || errors.Is(err, ErrNotFound) {
			t.Fatalf("expected decode error, got %v", err)
		}
	})
}

func TestScanAnalyses(t *testing.T) {
	payload, _ := json.Marshal(sampleAnalysis())
	now := time.Now().UTC()
	rows := &fakeRows{rows: []fakeRow{
		{values: []any{"a1", "m1", 0.8, payload, now}},
		{values: []any{"a2", "m1", 0.5, payload, now}},
	}}
	records, err := scanAnalyses(rows)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(records) != 2 || records[1].ID != "a2" {
		t.Fatalf("unexpected records: %+v", records)
	}

	failing := &fakeRows{err: errors.New("conn reset")}
	if _, err := scanAnalyses(failing); err == nil {
		t.Fatal("expected rows error")
	}
}

func TestPortfolioRepository(t *testing.T) {
	content := domain.NewPortfolioContent()
	content.Hero = &domain.HeroSection{Headline: "Builder"}
	content.ContentQualityScore = 0.2

	t.Run("create without analysis id stores null", func(t *testing.T) {
		db := &fakeDB{}
		err := NewPgPortfolioRepository(db).Create(context.Background(), domain.PortfolioRecord{
			ID:           "p1",
			QualityScore: 0.2,
			Content:      *content,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if db.execArgs[1] != nil {
			t.Fatalf("expected nil analysis id, got %v", db.execArgs[1])
		}
	})

	t.Run("get round trip", func(t *testing.T) {
		payload, _ := json.Marshal(content)
		db := &fakeDB{row: fakeRow{values: []any{"p1", "a1", 0.2, payload, time.Now().UTC()}}}
		rec, err := NewPgPortfolioRepository(db).GetByID(context.Background(), "p1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if rec.AnalysisID != "a1" || rec.Content.Hero == nil || rec.Content.Hero.Headline != "Builder" {
			t.Fatalf("unexpected record: %+v", rec)
		}
	})

	t.Run("not found", func(t *testing.T) {
		db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
		if _, err := NewPgPortfolioRepository(db).GetByID(context.Background(), "p1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
