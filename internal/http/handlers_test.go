package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cv-portfolio/internal/domain"
	"cv-portfolio/internal/llm"
	"cv-portfolio/internal/repository"
	"cv-portfolio/internal/service"
)

const testModel = "anthropic.claude-3-sonnet-20240229-v1:0"

const extractionJSON = `{
  "personal_info": {"name": "Jane Smith", "email": "jane@acme.com"},
  "skills": {"technical_skills": ["Go"], "soft_skills": ["Leadership"]},
  "work_experience": [{"company": "Acme Corp", "position": "Senior Engineer", "achievements": ["Cut latency 30%"], "technologies": ["Go"]}]
}`

type memoryAnalysisRepo struct {
	mu      sync.Mutex
	records map[string]domain.AnalysisRecord
	err     error
}

func newMemoryAnalysisRepo() *memoryAnalysisRepo {
	return &memoryAnalysisRepo{records: map[string]domain.AnalysisRecord{}}
}

func (m *memoryAnalysisRepo) Create(_ context.Context, rec domain.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records[rec.ID] = rec
	return nil
}

func (m *memoryAnalysisRepo) GetByID(_ context.Context, id string) (domain.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return domain.AnalysisRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (m *memoryAnalysisRepo) ListRecent(_ context.Context, limit int) ([]domain.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.AnalysisRecord{}
	for _, rec := range m.records {
		if len(out) == limit {
			break
		}
		out = append(out, rec)
	}
	return out, nil
}

type memoryPortfolioRepo struct {
	mu      sync.Mutex
	records map[string]domain.PortfolioRecord
}

func newMemoryPortfolioRepo() *memoryPortfolioRepo {
	return &memoryPortfolioRepo{records: map[string]domain.PortfolioRecord{}}
}

func (m *memoryPortfolioRepo) Create(_ context.Context, rec domain.PortfolioRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *memoryPortfolioRepo) GetByID(_ context.Context, id string) (domain.PortfolioRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return domain.PortfolioRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

type testServer struct {
	router     *gin.Engine
	client     *llm.MockClient
	analyses   *memoryAnalysisRepo
	portfolios *memoryPortfolioRepo
}

func newTestServer(t *testing.T, client *llm.MockClient, withStorage bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	ts := &testServer{client: client}
	var analyses repository.AnalysisRepository
	var portfolios repository.PortfolioRepository
	if withStorage {
		ts.analyses = newMemoryAnalysisRepo()
		ts.portfolios = newMemoryPortfolioRepo()
		analyses = ts.analyses
		portfolios = ts.portfolios
	}

	extraction := service.NewExtractionService(client, testModel, logger)
	portfolio := service.NewPortfolioService(client, testModel, logger)
	ts.router = NewRouter(RouterDeps{
		Logger:    logger,
		JWT:       service.NewJWTService("", time.Minute),
		CV:        NewCVHandler(logger, extraction, analyses, testModel),
		Portfolio: NewPortfolioHandler(logger, portfolio, analyses, portfolios),
		Models:    NewModelsHandler(llm.NewModelRegistry(llm.TransportHTTP, testModel, nil, logger)),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

func TestAnalyzeStoresResult(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{Response: extractionJSON}, true)

	rec := ts.do(t, http.MethodPost, "/cv/analyze", gin.H{"cv_text": "Jane Smith, Senior Engineer at Acme Corp"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AnalysisID string                  `json:"analysis_id"`
		Result     domain.CVAnalysisResult `json:"result"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Result.PersonalInfo.Name != "Jane Smith" {
		t.Fatalf("unexpected result: %+v", resp.Result.PersonalInfo)
	}
	stored, ok := ts.analyses.records[resp.AnalysisID]
	if !ok {
		t.Fatalf("expected analysis %q to be stored", resp.AnalysisID)
	}
	if stored.ModelID != testModel {
		t.Fatalf("expected model %q, got %q", testModel, stored.ModelID)
	}

	get := ts.do(t, http.MethodGet, "/cv/analyses/"+resp.AnalysisID, nil)
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", get.Code)
	}
}

func TestAnalyzeErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		client *llm.MockClient
		body   any
		status int
		calls  int
	}{
		{"empty text", &llm.MockClient{Response: extractionJSON}, gin.H{"cv_text": "  "}, http.StatusBadRequest, 0},
		{"malformed body", &llm.MockClient{Response: extractionJSON}, "not an object", http.StatusBadRequest, 0},
		{"model failure", &llm.MockClient{Err: &llm.ModelInvocationError{ModelID: testModel, Attempts: []llm.AttemptOutcome{{Class: llm.ClassTransient}, {Class: llm.ClassTransient}, {Class: llm.ClassPermanent}}, Err: errors.New("503")}}, gin.H{"cv_text": "cv"}, http.StatusBadGateway, 1},
		{"unparseable response", &llm.MockClient{Response: "I cannot help with that"}, gin.H{"cv_text": "cv"}, http.StatusBadGateway, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, tc.client, false)
			rec := ts.do(t, http.MethodPost, "/cv/analyze", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.client.CallCount() != tc.calls {
				t.Fatalf("expected %d calls, got %d", tc.calls, tc.client.CallCount())
			}
		})
	}
}

func TestAnalyzeModelFailureBody(t *testing.T) {
	invErr := &llm.ModelInvocationError{
		ModelID: testModel,
		Attempts: []llm.AttemptOutcome{
			{Attempt: 1, Class: llm.ClassTransient, Err: errors.New("503")},
			{Attempt: 2, Class: llm.ClassPermanent, Err: errors.New("400")},
		},
		Err: errors.New("400"),
	}
	ts := newTestServer(t, &llm.MockClient{Err: invErr}, false)

	rec := ts.do(t, http.MethodPost, "/cv/analyze", gin.H{"cv_text": "cv"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var body struct {
		ModelID    string `json:"model_id"`
		Attempts   int    `json:"attempts"`
		ErrorClass string `json:"error_class"`
	}
	decodeJSON(t, rec, &body)
	if body.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", body.Attempts)
	}
	if body.ErrorClass != string(llm.ClassPermanent) {
		t.Fatalf("expected permanent class, got %q", body.ErrorClass)
	}
	if body.ModelID != testModel {
		t.Fatalf("expected model id %s, got %s", testModel, body.ModelID)
	}
}

func TestAnalyzeStorageFailure(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{Response: extractionJSON}, true)
	ts.analyses.err = errors.New("connection refused")

	rec := ts.do(t, http.MethodPost, "/cv/analyze", gin.H{"cv_text": "cv"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestGetAnalysis(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{}, true)

	if rec := ts.do(t, http.MethodGet, "/cv/analyses/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/cv/analyses/"+uuid.NewString(), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	noStorage := newTestServer(t, &llm.MockClient{}, false)
	if rec := noStorage.do(t, http.MethodGet, "/cv/analyses/"+uuid.NewString(), nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec := noStorage.do(t, http.MethodGet, "/cv/analyses", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSkillsSummaryFromCVData(t *testing.T) {
	client := &llm.MockClient{}
	ts := newTestServer(t, client, false)

	cv := domain.NewCVAnalysisResult()
	cv.TechnicalSkills = []string{"Go", "PostgreSQL"}
	cv.SoftSkills = []string{"Leadership"}

	rec := ts.do(t, http.MethodPost, "/cv/skills-summary", gin.H{"cv_data": cv})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Summary service.SkillsSummary `json:"skills_summary"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Summary.TotalSkills != 3 {
		t.Fatalf("expected 3 skills, got %d", resp.Summary.TotalSkills)
	}
	if client.CallCount() != 0 {
		t.Fatalf("expected no model calls, got %d", client.CallCount())
	}
}

func TestSkillsSummaryFromText(t *testing.T) {
	client := &llm.MockClient{Response: extractionJSON}
	ts := newTestServer(t, client, false)

	rec := ts.do(t, http.MethodPost, "/cv/skills-summary", gin.H{"cv_text": "Jane Smith"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if client.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", client.CallCount())
	}
}

func TestSkillsSummaryFromAnalysisID(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{}, true)
	cv := domain.NewCVAnalysisResult()
	cv.Skills = []string{"Go"}
	id := uuid.NewString()
	ts.analyses.records[id] = domain.AnalysisRecord{ID: id, Result: *cv}

	if rec := ts.do(t, http.MethodPost, "/cv/skills-summary", gin.H{"analysis_id": id}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := ts.do(t, http.MethodPost, "/cv/skills-summary", gin.H{"analysis_id": "abc"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodPost, "/cv/skills-summary", gin.H{"analysis_id": uuid.NewString()}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGeneratePortfolioWithoutOptionsKeepsCallToAction(t *testing.T) {
	client := &llm.MockClient{Handler: func(req llm.InvocationRequest) (string, error) {
		if strings.Contains(req.Prompt, "writing the hero section") {
			return `{"headline":"Builder","value_proposition":"Ships","call_to_action":"Let's talk"}`, nil
		}
		return "", errors.New("not scripted")
	}}
	ts := newTestServer(t, client, false)

	rec := ts.do(t, http.MethodPost, "/portfolio/generate", gin.H{
		"cv_data": gin.H{"personal_info": gin.H{"name": "Jane Smith"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Portfolio domain.PortfolioContent `json:"portfolio"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Portfolio.Hero == nil || resp.Portfolio.Hero.CallToAction != "Let's talk" {
		t.Fatalf("expected call to action with default options, got %+v", resp.Portfolio.Hero)
	}
}

func TestGeneratePortfolio(t *testing.T) {
	client := &llm.MockClient{Handler: func(req llm.InvocationRequest) (string, error) {
		if strings.Contains(req.Prompt, "writing the hero section") {
			return `{"headline":"Builder","value_proposition":"Ships"}`, nil
		}
		return "", errors.New("not scripted")
	}}
	ts := newTestServer(t, client, true)

	cv := domain.NewCVAnalysisResult()
	cv.PersonalInfo.Name = "Jane Smith"
	analysisID := uuid.NewString()
	ts.analyses.records[analysisID] = domain.AnalysisRecord{ID: analysisID, Result: *cv}

	t.Run("from analysis id", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/portfolio/generate", gin.H{
			"analysis_id": analysisID,
			"options":     gin.H{"include_sections": []string{"hero", "about"}},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			PortfolioID string                  `json:"portfolio_id"`
			Portfolio   domain.PortfolioContent `json:"portfolio"`
		}
		decodeJSON(t, rec, &resp)
		if resp.Portfolio.Hero == nil || resp.Portfolio.Hero.Headline != "Builder" {
			t.Fatalf("unexpected hero: %+v", resp.Portfolio.Hero)
		}
		r, ok := resp.Portfolio.SectionReport(domain.SectionAbout)
		if !ok || r.Status != domain.SectionFailed {
			t.Fatalf("expected failed about in report, got %+v", r)
		}
		stored, ok := ts.portfolios.records[resp.PortfolioID]
		if !ok || stored.AnalysisID != analysisID {
			t.Fatalf("expected stored portfolio linked to %s, got %+v", analysisID, stored)
		}
	})

	t.Run("unknown analysis", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/portfolio/generate", gin.H{"analysis_id": uuid.NewString()})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		rec = ts.do(t, http.MethodPost, "/portfolio/generate", gin.H{"analysis_id": "missing"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("no cv", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/portfolio/generate", gin.H{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("cv without name", func(t *testing.T) {
		calls := client.CallCount()
		rec := ts.do(t, http.MethodPost, "/portfolio/generate", gin.H{"cv_data": domain.NewCVAnalysisResult()})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if client.CallCount() != calls {
			t.Fatal("expected no model calls")
		}
	})
}

func TestGetPortfolio(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{}, true)
	id := uuid.NewString()
	ts.portfolios.records[id] = domain.PortfolioRecord{ID: id, Content: *domain.NewPortfolioContent()}

	if rec := ts.do(t, http.MethodGet, "/portfolios/"+id, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/portfolios/"+uuid.NewString(), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestModelsEndpoints(t *testing.T) {
	ts := newTestServer(t, &llm.MockClient{}, false)

	rec := ts.do(t, http.MethodGet, "/models", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list struct {
		DefaultModel string                   `json:"default_model"`
		Models       []domain.ModelDescriptor `json:"models"`
	}
	decodeJSON(t, rec, &list)
	if list.DefaultModel != testModel || len(list.Models) == 0 {
		t.Fatalf("unexpected models response: %+v", list)
	}

	rec = ts.do(t, http.MethodGet, "/models/recommended?task=skills_analysis", nil)
	var rcm struct {
		ModelID string `json:"model_id"`
	}
	decodeJSON(t, rec, &rcm)
	if rcm.ModelID != "anthropic.claude-3-haiku-20240307-v1:0" {
		t.Fatalf("unexpected recommendation: %q", rcm.ModelID)
	}
}

func TestRouterRequiresTokenWhenJWTEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	client := &llm.MockClient{}
	jwtSvc := service.NewJWTService("secret", time.Minute)
	router := NewRouter(RouterDeps{
		Logger:    logger,
		JWT:       jwtSvc,
		CV:        NewCVHandler(logger, service.NewExtractionService(client, testModel, logger), nil, testModel),
		Portfolio: NewPortfolioHandler(logger, service.NewPortfolioService(client, testModel, logger), nil, nil),
		Models:    NewModelsHandler(llm.NewModelRegistry(llm.TransportHTTP, testModel, nil, logger)),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rec.Code)
	}

	tok, err := jwtSvc.GenerateAccessToken("c1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}
