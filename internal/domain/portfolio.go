package domain

import "time"

// SectionName identifica una seccion del portfolio generado.
type SectionName string

const (
	SectionHero           SectionName = "hero"
	SectionAbout          SectionName = "about"
	SectionExperience     SectionName = "experience"
	SectionSkills         SectionName = "skills"
	SectionEducation      SectionName = "education"
	SectionProjects       SectionName = "projects"
	SectionCertifications SectionName = "certifications"
	SectionContact        SectionName = "contact"
)

// AllSections respeta el orden en que se generan las secciones.
var AllSections = []SectionName{
	SectionHero,
	SectionAbout,
	SectionExperience,
	SectionSkills,
	SectionEducation,
	SectionProjects,
	SectionCertifications,
	SectionContact,
}

// DefaultSections es lo que se genera si el llamador no pide nada.
var DefaultSections = []SectionName{
	SectionHero,
	SectionAbout,
	SectionExperience,
	SectionSkills,
	SectionEducation,
	SectionContact,
}

type PortfolioTemplate string

const (
	TemplateModern       PortfolioTemplate = "modern"
	TemplateClassic      PortfolioTemplate = "classic"
	TemplateCreative     PortfolioTemplate = "creative"
	TemplateMinimal      PortfolioTemplate = "minimal"
	TemplateProfessional PortfolioTemplate = "professional"
)

type ContentStyle string

const (
	StyleProfessional ContentStyle = "professional"
	StyleCreative     ContentStyle = "creative"
	StyleTechnical    ContentStyle = "technical"
	StyleExecutive    ContentStyle = "executive"
	StyleFriendly     ContentStyle = "friendly"
)

// ContentLength es una pista de longitud por seccion.
type ContentLength string

const (
	LengthShort  ContentLength = "short"
	LengthMedium ContentLength = "medium"
	LengthLong   ContentLength = "long"
)

// PortfolioGenerationOptions es un value object armado por el llamador.
// Los toggles son punteros: nil significa "valor por defecto" (true), asi un JSON sin
// options se comporta igual que DefaultPortfolioOptions.
type PortfolioGenerationOptions struct {
	Template              PortfolioTemplate             `json:"template"`
	Style                 ContentStyle                  `json:"style"`
	TargetAudience        string                        `json:"target_audience"`
	IncludeSections       []SectionName                 `json:"include_sections"`
	SectionLengths        map[SectionName]ContentLength `json:"section_lengths,omitempty"`
	EmphasizeAchievements *bool                         `json:"emphasize_achievements,omitempty"`
	IncludeMetrics        *bool                         `json:"include_metrics,omitempty"`
	IncludeCallToAction   *bool                         `json:"include_call_to_action,omitempty"`
	CustomInstructions    string                        `json:"custom_instructions,omitempty"`
}

// DefaultPortfolioOptions devuelve las opciones por defecto.
func DefaultPortfolioOptions() PortfolioGenerationOptions {
	sections := make([]SectionName, len(DefaultSections))
	copy(sections, DefaultSections)
	return PortfolioGenerationOptions{
		Template:              TemplateModern,
		Style:                 StyleProfessional,
		TargetAudience:        "recruiters and hiring managers",
		IncludeSections:       sections,
		SectionLengths:        map[SectionName]ContentLength{},
		EmphasizeAchievements: Bool(true),
		IncludeMetrics:        Bool(true),
		IncludeCallToAction:   Bool(true),
	}
}

// Bool devuelve un puntero al valor, para armar opciones a mano.
func Bool(v bool) *bool {
	return &v
}

// WithDefaults completa los campos vacios con los valores por defecto.
func (o PortfolioGenerationOptions) WithDefaults() PortfolioGenerationOptions {
	def := DefaultPortfolioOptions()
	if o.Template == "" {
		o.Template = def.Template
	}
	if o.Style == "" {
		o.Style = def.Style
	}
	if o.TargetAudience == "" {
		o.TargetAudience = def.TargetAudience
	}
	if len(o.IncludeSections) == 0 {
		o.IncludeSections = def.IncludeSections
	}
	if o.SectionLengths == nil {
		o.SectionLengths = map[SectionName]ContentLength{}
	}
	if o.EmphasizeAchievements == nil {
		o.EmphasizeAchievements = def.EmphasizeAchievements
	}
	if o.IncludeMetrics == nil {
		o.IncludeMetrics = def.IncludeMetrics
	}
	if o.IncludeCallToAction == nil {
		o.IncludeCallToAction = def.IncludeCallToAction
	}
	return o
}

func (o PortfolioGenerationOptions) ShouldEmphasizeAchievements() bool {
	return o.EmphasizeAchievements == nil || *o.EmphasizeAchievements
}

func (o PortfolioGenerationOptions) ShouldIncludeMetrics() bool {
	return o.IncludeMetrics == nil || *o.IncludeMetrics
}

func (o PortfolioGenerationOptions) ShouldIncludeCallToAction() bool {
	return o.IncludeCallToAction == nil || *o.IncludeCallToAction
}

// Includes indica si la seccion fue pedida.
func (o PortfolioGenerationOptions) Includes(section SectionName) bool {
	for _, s := range o.IncludeSections {
		if s == section {
			return true
		}
	}
	return false
}

// LengthFor devuelve la pista de longitud de la seccion (medium por defecto).
func (o PortfolioGenerationOptions) LengthFor(section SectionName) ContentLength {
	if l, ok := o.SectionLengths[section]; ok && l != "" {
		return l
	}
	return LengthMedium
}

type HeroSection struct {
	Headline         string `json:"headline"`
	Subheadline      string `json:"subheadline"`
	ValueProposition string `json:"value_proposition"`
	CallToAction     string `json:"call_to_action,omitempty"`
}

type AboutSection struct {
	MainContent   string   `json:"main_content"`
	KeyHighlights []string `json:"key_highlights"`
	PersonalTouch string   `json:"personal_touch,omitempty"`
}

type ExperienceSection struct {
	Company             string   `json:"company"`
	Position            string   `json:"position"`
	StartDate           string   `json:"start_date,omitempty"`
	EndDate             string   `json:"end_date,omitempty"`
	EnhancedDescription string   `json:"enhanced_description"`
	KeyAchievements     []string `json:"key_achievements"`
	SkillsDemonstrated  []string `json:"skills_demonstrated"`
	ImpactSummary       string   `json:"impact_summary,omitempty"`
}

type SkillCategory struct {
	Skills      []string `json:"skills"`
	Proficiency string   `json:"proficiency,omitempty"`
}

type SkillsSection struct {
	SkillCategories map[string]SkillCategory `json:"skill_categories"`
	TopSkills       []string                 `json:"top_skills"`
	SkillsSummary   string                   `json:"skills_summary,omitempty"`
}

type EducationSection struct {
	Institution  string   `json:"institution"`
	Degree       string   `json:"degree,omitempty"`
	FieldOfStudy string   `json:"field_of_study,omitempty"`
	Dates        string   `json:"dates,omitempty"`
	Description  string   `json:"description,omitempty"`
	Highlights   []string `json:"highlights"`
}

type ProjectSection struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Highlights   []string `json:"highlights"`
	URL          string   `json:"url,omitempty"`
}

type CertificationSection struct {
	Name        string `json:"name"`
	Issuer      string `json:"issuer,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

type ContactSection struct {
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	LinkedIn     string `json:"linkedin,omitempty"`
	GitHub       string `json:"github,omitempty"`
	Website      string `json:"website,omitempty"`
	Message      string `json:"message,omitempty"`
	CallToAction string `json:"call_to_action,omitempty"`
}

// SectionStatus resume como termino la generacion de una seccion.
type SectionStatus string

const (
	SectionGenerated SectionStatus = "generated"
	SectionFallback  SectionStatus = "fallback"
	SectionFailed    SectionStatus = "failed"
	SectionSkipped   SectionStatus = "skipped"
)

// SectionResult es la entrada del reporte por seccion; Error se llena en failed
// y en secciones pedidas que no existen.
type SectionResult struct {
	Section SectionName   `json:"section"`
	Status  SectionStatus `json:"status"`
	Error   string        `json:"error,omitempty"`
}

type GenerationMetadata struct {
	Template          PortfolioTemplate `json:"template"`
	Style             ContentStyle      `json:"style"`
	TargetAudience    string            `json:"target_audience"`
	ModelID           string            `json:"model_id"`
	GeneratedAt       time.Time         `json:"generated_at"`
	SectionsRequested []SectionName     `json:"sections_requested"`
	SectionsGenerated []SectionName     `json:"sections_generated"`
}

// PortfolioContent es el agregado devuelto por la generacion; no se persiste aca.
type PortfolioContent struct {
	Hero                *HeroSection           `json:"hero,omitempty"`
	About               *AboutSection          `json:"about,omitempty"`
	Experience          []ExperienceSection    `json:"experience"`
	Skills              *SkillsSection         `json:"skills,omitempty"`
	Education           []EducationSection     `json:"education"`
	Projects            []ProjectSection       `json:"projects"`
	Certifications      []CertificationSection `json:"certifications"`
	Contact             *ContactSection        `json:"contact,omitempty"`
	ContentQualityScore float64                `json:"content_quality_score"`
	Metadata            GenerationMetadata     `json:"metadata"`
	GenerationReport    []SectionResult        `json:"generation_report"`
}

// NewPortfolioContent devuelve un portfolio vacio ya normalizado.
func NewPortfolioContent() *PortfolioContent {
	p := &PortfolioContent{}
	p.Normalize()
	return p
}

// Normalize garantiza listas no nulas y el puntaje dentro de [0,1].
func (p *PortfolioContent) Normalize() {
	if p.Experience == nil {
		p.Experience = []ExperienceSection{}
	}
	for i := range p.Experience {
		p.Experience[i].KeyAchievements = nonNilStrings(p.Experience[i].KeyAchievements)
		p.Experience[i].SkillsDemonstrated = nonNilStrings(p.Experience[i].SkillsDemonstrated)
	}
	if p.Education == nil {
		p.Education = []EducationSection{}
	}
	for i := range p.Education {
		p.Education[i].Highlights = nonNilStrings(p.Education[i].Highlights)
	}
	if p.Projects == nil {
		p.Projects = []ProjectSection{}
	}
	for i := range p.Projects {
		p.Projects[i].Technologies = nonNilStrings(p.Projects[i].Technologies)
		p.Projects[i].Highlights = nonNilStrings(p.Projects[i].Highlights)
	}
	if p.Certifications == nil {
		p.Certifications = []CertificationSection{}
	}
	if p.About != nil {
		p.About.KeyHighlights = nonNilStrings(p.About.KeyHighlights)
	}
	if p.Skills != nil {
		if p.Skills.SkillCategories == nil {
			p.Skills.SkillCategories = map[string]SkillCategory{}
		}
		p.Skills.TopSkills = nonNilStrings(p.Skills.TopSkills)
	}
	if p.GenerationReport == nil {
		p.GenerationReport = []SectionResult{}
	}
	if p.Metadata.SectionsRequested == nil {
		p.Metadata.SectionsRequested = []SectionName{}
	}
	if p.Metadata.SectionsGenerated == nil {
		p.Metadata.SectionsGenerated = []SectionName{}
	}
	p.ContentQualityScore = ClampScore(p.ContentQualityScore)
}

// SectionReport devuelve el resultado registrado para una seccion.
func (p *PortfolioContent) SectionReport(section SectionName) (SectionResult, bool) {
	for _, r := range p.GenerationReport {
		if r.Section == section {
			return r, true
		}
	}
	return SectionResult{}, false
}
