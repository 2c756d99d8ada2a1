package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cv-portfolio/internal/domain"
	"cv-portfolio/internal/llm"
)

const portfolioTemperature = 0.7

var errNoSourceData = errors.New("no source data for section")

// PortfolioService genera el contenido del portfolio seccion por seccion.
// Cada seccion es independiente: un fallo queda en el reporte y no corta la generacion.
type PortfolioService struct {
	llmClient llm.LLMClient
	modelID   string
	logger    *zap.Logger
	now       func() time.Time
}

func NewPortfolioService(llmClient llm.LLMClient, modelID string, logger *zap.Logger) *PortfolioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioService{
		llmClient: llmClient,
		modelID:   modelID,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate arma el PortfolioContent. Solo falla si el CV no tiene nombre (ErrMissingName).
// Campos vacios de opts toman los valores de DefaultPortfolioOptions, incluidos los toggles nil.
func (s *PortfolioService) Generate(ctx context.Context, cv *domain.CVAnalysisResult, opts domain.PortfolioGenerationOptions) (*domain.PortfolioContent, error) {
	if cv == nil || strings.TrimSpace(cv.PersonalInfo.Name) == "" {
		return nil, ErrMissingName
	}
	opts = opts.WithDefaults()

	content := domain.NewPortfolioContent()
	content.Metadata = domain.GenerationMetadata{
		Template:          opts.Template,
		Style:             opts.Style,
		TargetAudience:    opts.TargetAudience,
		ModelID:           s.modelID,
		GeneratedAt:       s.now(),
		SectionsRequested: append([]domain.SectionName{}, opts.IncludeSections...),
		SectionsGenerated: []domain.SectionName{},
	}

	gen := sectionGenerator{
		svc:     s,
		cv:      cv,
		opts:    opts,
		prompts: portfolioPromptBuilder{cv: cv, opts: opts},
		content: content,
	}

	known := map[domain.SectionName]struct{}{}
	for _, section := range domain.AllSections {
		known[section] = struct{}{}
	}
	for _, section := range opts.IncludeSections {
		if _, ok := known[section]; !ok {
			content.GenerationReport = append(content.GenerationReport, domain.SectionResult{
				Section: section,
				Status:  domain.SectionSkipped,
				Error:   fmt.Sprintf("unknown section %q", section),
			})
		}
	}

	// orden fijo de generacion, sin importar como vino IncludeSections
	for _, section := range domain.AllSections {
		if !opts.Includes(section) {
			continue
		}
		result := gen.run(ctx, section)
		content.GenerationReport = append(content.GenerationReport, result)
		if result.Status == domain.SectionGenerated || result.Status == domain.SectionFallback {
			content.Metadata.SectionsGenerated = append(content.Metadata.SectionsGenerated, section)
		}
	}

	content.Normalize()
	content.ContentQualityScore = calculateQualityScore(content)

	s.logger.Info("portfolio generated",
		zap.String("name", cv.PersonalInfo.Name),
		zap.String("model_id", s.modelID),
		zap.Int("sections_requested", len(content.Metadata.SectionsRequested)),
		zap.Int("sections_generated", len(content.Metadata.SectionsGenerated)),
		zap.Float64("quality_score", content.ContentQualityScore),
	)
	return content, nil
}

func (s *PortfolioService) invoke(ctx context.Context, section domain.SectionName, opts domain.PortfolioGenerationOptions, prompt string) (string, error) {
	return s.llmClient.Generate(ctx, llm.InvocationRequest{
		ModelID:     s.modelID,
		Prompt:      prompt,
		MaxTokens:   sectionTokens(section, opts),
		Temperature: portfolioTemperature,
	})
}

// sectionGenerator concentra el estado de una llamada a Generate.
type sectionGenerator struct {
	svc     *PortfolioService
	cv      *domain.CVAnalysisResult
	opts    domain.PortfolioGenerationOptions
	prompts portfolioPromptBuilder
	content *domain.PortfolioContent
}

// run genera una seccion y traduce el resultado (o el panico) a un SectionResult.
func (g sectionGenerator) run(ctx context.Context, section domain.SectionName) (result domain.SectionResult) {
	result.Section = section
	defer func() {
		if rec := recover(); rec != nil {
			g.svc.logger.Error("portfolio section panicked", zap.String("section", string(section)), zap.Any("panic", rec))
			result.Status = domain.SectionFailed
			result.Error = fmt.Sprintf("panic: %v", rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		result.Status = domain.SectionFailed
		result.Error = err.Error()
		return result
	}

	fallback, err := g.generate(ctx, section)
	switch {
	case errors.Is(err, errNoSourceData):
		result.Status = domain.SectionSkipped
	case err != nil:
		g.svc.logger.Warn("portfolio section failed", zap.String("section", string(section)), zap.Error(err))
		result.Status = domain.SectionFailed
		result.Error = err.Error()
	case fallback:
		g.svc.logger.Debug("portfolio section used raw text fallback", zap.String("section", string(section)))
		result.Status = domain.SectionFallback
	default:
		result.Status = domain.SectionGenerated
	}
	return result
}

// generate asigna la seccion en content solo si todo salio bien.
func (g sectionGenerator) generate(ctx context.Context, section domain.SectionName) (bool, error) {
	switch section {
	case domain.SectionHero:
		raw, err := g.svc.invoke(ctx, section, g.opts, g.prompts.hero())
		if err != nil {
			return false, err
		}
		hero, fb, err := parseHero(raw, g.cv, g.opts.ShouldIncludeCallToAction())
		if err != nil {
			return false, err
		}
		g.content.Hero = hero
		return fb, nil

	case domain.SectionAbout:
		raw, err := g.svc.invoke(ctx, section, g.opts, g.prompts.about())
		if err != nil {
			return false, err
		}
		about, fb, err := parseAbout(raw)
		if err != nil {
			return false, err
		}
		g.content.About = about
		return fb, nil

	case domain.SectionExperience:
		if len(g.cv.WorkExperience) == 0 {
			return false, errNoSourceData
		}
		entries := make([]domain.ExperienceSection, 0, len(g.cv.WorkExperience))
		anyFallback := false
		for i, we := range g.cv.WorkExperience {
			raw, err := g.svc.invoke(ctx, section, g.opts, g.prompts.experience(we))
			if err != nil {
				return false, fmt.Errorf("experience entry %d (%s): %w", i, we.Company, err)
			}
			entry, fb, err := parseExperienceEntry(raw, we)
			if err != nil {
				return false, fmt.Errorf("experience entry %d (%s): %w", i, we.Company, err)
			}
			anyFallback = anyFallback || fb
			entries = append(entries, entry)
		}
		g.content.Experience = entries
		return anyFallback, nil

	case domain.SectionSkills:
		if len(categorizeSkills(g.cv)) == 0 {
			return false, errNoSourceData
		}
		raw, err := g.svc.invoke(ctx, section, g.opts, g.prompts.skills())
		if err != nil {
			return false, err
		}
		skills, fb, err := parseSkills(raw, g.cv)
		if err != nil {
			return false, err
		}
		g.content.Skills = skills
		return fb, nil

	case domain.SectionEducation:
		if len(g.cv.Education) == 0 {
			return false, errNoSourceData
		}
		raw, err := g.svc.invoke(ctx, section, g.opts, g.prompts.education())
		if err != nil {
			return false, err
		}
		education, fb, err := parseEducation(raw, g.cv)
		if err != nil {
			return false, err
		}
		g.content.Education = education
		return fb, nil

	case domain.SectionProjects:
		if len(g.cv.Projects) == 0 {
			return false, errNoSourceData
		}
		raw, err := g.svc.invoke(ctx, section, g.opts, g.prompts.projects())
		if err != nil {
			return false, err
		}
		projects, fb, err := parseProjects(raw, g.cv)
		if err != nil {
			return false, err
		}
		g.content.Projects = projects
		return fb, nil

	case domain.SectionCertifications:
		if len(g.cv.Certifications) == 0 {
			return false, errNoSourceData
		}
		raw, err := g.svc.invoke(ctx, section, g.opts, g.prompts.certifications())
		if err != nil {
			return false, err
		}
		certs, fb, err := parseCertifications(raw, g.cv)
		if err != nil {
			return false, err
		}
		g.content.Certifications = certs
		return fb, nil

	case domain.SectionContact:
		raw, err := g.svc.invoke(ctx, section, g.opts, g.prompts.contact())
		if err != nil {
			return false, err
		}
		contact, fb, err := parseContact(raw, g.cv, g.opts.ShouldIncludeCallToAction())
		if err != nil {
			return false, err
		}
		g.content.Contact = contact
		return fb, nil
	}

	return false, fmt.Errorf("unknown section %q", section)
}
