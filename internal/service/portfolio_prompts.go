package service

import (
	"fmt"
	"strings"

	"cv-portfolio/internal/domain"
)

var lengthMultipliers = map[domain.ContentLength]float64{
	domain.LengthShort:  0.6,
	domain.LengthMedium: 1.0,
	domain.LengthLong:   1.5,
}

// sectionBudgets: tokens y palabras base (longitud medium) por seccion.
var sectionBudgets = map[domain.SectionName]struct {
	tokens int
	words  int
}{
	domain.SectionHero:           {tokens: 500, words: 40},
	domain.SectionAbout:          {tokens: 900, words: 180},
	domain.SectionExperience:     {tokens: 700, words: 120},
	domain.SectionSkills:         {tokens: 700, words: 60},
	domain.SectionEducation:      {tokens: 700, words: 60},
	domain.SectionProjects:       {tokens: 900, words: 80},
	domain.SectionCertifications: {tokens: 500, words: 30},
	domain.SectionContact:        {tokens: 400, words: 50},
}

var styleGuides = map[domain.ContentStyle]string{
	domain.StyleProfessional: "polished, confident and concise",
	domain.StyleCreative:     "vivid and original, with memorable phrasing",
	domain.StyleTechnical:    "precise, naming technologies and engineering outcomes",
	domain.StyleExecutive:    "strategic, focused on leadership and business impact",
	domain.StyleFriendly:     "warm, approachable and first-person",
}

func lengthMultiplier(l domain.ContentLength) float64 {
	if m, ok := lengthMultipliers[l]; ok {
		return m
	}
	return 1.0
}

// sectionTokens escala el presupuesto base con la pista de longitud.
func sectionTokens(section domain.SectionName, opts domain.PortfolioGenerationOptions) int {
	base := sectionBudgets[section].tokens
	if base == 0 {
		base = 600
	}
	return int(float64(base) * lengthMultiplier(opts.LengthFor(section)))
}

func sectionWords(section domain.SectionName, opts domain.PortfolioGenerationOptions) int {
	base := sectionBudgets[section].words
	if base == 0 {
		base = 60
	}
	n := int(float64(base) * lengthMultiplier(opts.LengthFor(section)))
	if n < 10 {
		n = 10
	}
	return n
}

// portfolioPromptBuilder arma los prompts por seccion a partir de una vista filtrada del CV.
type portfolioPromptBuilder struct {
	cv   *domain.CVAnalysisResult
	opts domain.PortfolioGenerationOptions
}

func (pb portfolioPromptBuilder) preamble(section domain.SectionName) string {
	style := styleGuides[pb.opts.Style]
	if style == "" {
		style = styleGuides[domain.StyleProfessional]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert portfolio copywriter writing the %s section of a personal portfolio website.\n", section)
	fmt.Fprintf(&b, "Template: %s. Tone: %s. Target audience: %s.\n", pb.opts.Template, style, pb.opts.TargetAudience)
	if pb.opts.ShouldEmphasizeAchievements() {
		b.WriteString("Emphasize concrete achievements over responsibilities.\n")
	}
	if pb.opts.ShouldIncludeMetrics() {
		b.WriteString("Keep every number and metric from the source data verbatim.\n")
	}
	if ci := strings.TrimSpace(pb.opts.CustomInstructions); ci != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", ci)
	}
	return b.String()
}

func (pb portfolioPromptBuilder) jsonOnly(shape string) string {
	return "\nReturn ONLY valid JSON (no markdown, no explanation) with this structure:\n" + shape
}

func (pb portfolioPromptBuilder) hero() string {
	cta := ""
	if pb.opts.ShouldIncludeCallToAction() {
		cta = `,
  "call_to_action": "Short button label"`
	}
	return pb.preamble(domain.SectionHero) + fmt.Sprintf(`
Name: %s
Current role: %s
Years of experience: %.0f
Top skills: %s
Key achievements:
%s

Write a headline and subheadline of at most %d words combined and a one-sentence value proposition.`,
		pb.cv.PersonalInfo.Name,
		currentRole(pb.cv),
		estimateYearsOfExperience(pb.cv.WorkExperience),
		strings.Join(topSkills(pb.cv, maxTopSkills), ", "),
		bulletList(keyAchievements(pb.cv)),
		sectionWords(domain.SectionHero, pb.opts),
	) + pb.jsonOnly(`{
  "headline": "Main headline",
  "subheadline": "Supporting line",
  "value_proposition": "What this person brings"`+cta+`
}`)
}

func (pb portfolioPromptBuilder) about() string {
	return pb.preamble(domain.SectionAbout) + fmt.Sprintf(`
Name: %s
Current role: %s
Professional summary: %s
Career progression: %s
Impact metrics: %s
Interests: %s

Write an about section of about %d words with 3-5 key highlights.`,
		pb.cv.PersonalInfo.Name,
		currentRole(pb.cv),
		pb.cv.ProfessionalSummary,
		careerProgression(pb.cv),
		strings.Join(impactMetrics(pb.cv), ", "),
		strings.Join(pb.cv.Interests, ", "),
		sectionWords(domain.SectionAbout, pb.opts),
	) + pb.jsonOnly(`{
  "main_content": "Narrative paragraph(s)",
  "key_highlights": ["Highlight"],
  "personal_touch": "One personal sentence"
}`)
}

func (pb portfolioPromptBuilder) experience(we domain.WorkExperience) string {
	return pb.preamble(domain.SectionExperience) + fmt.Sprintf(`
Company: %s
Position: %s
Dates: %s - %s
Description: %s
Achievements:
%s
Technologies: %s

Rewrite this role in about %d words and summarize its impact in one sentence.`,
		we.Company,
		we.Position,
		we.StartDate, we.EndDate,
		we.Description,
		bulletList(we.Achievements),
		strings.Join(we.Technologies, ", "),
		sectionWords(domain.SectionExperience, pb.opts),
	) + pb.jsonOnly(`{
  "enhanced_description": "Rewritten description",
  "key_achievements": ["Achievement"],
  "skills_demonstrated": ["Skill"],
  "impact_summary": "One sentence"
}`)
}

func (pb portfolioPromptBuilder) skills() string {
	categories := categorizeSkills(pb.cv)
	var cats strings.Builder
	for _, name := range sortedKeys(categories) {
		fmt.Fprintf(&cats, "%s: %s\n", name, strings.Join(categories[name], ", "))
	}
	return pb.preamble(domain.SectionSkills) + fmt.Sprintf(`
Skills by category:
%s
Years of experience: %.0f

Group the skills into clear categories with a proficiency label, pick the top skills and write a summary of about %d words.`,
		cats.String(),
		estimateYearsOfExperience(pb.cv.WorkExperience),
		sectionWords(domain.SectionSkills, pb.opts),
	) + pb.jsonOnly(`{
  "skill_categories": {"Category name": {"skills": ["Skill"], "proficiency": "Expert|Advanced|Intermediate"}},
  "top_skills": ["Skill"],
  "skills_summary": "Summary"
}`)
}

func (pb portfolioPromptBuilder) education() string {
	var b strings.Builder
	for _, ed := range pb.cv.Education {
		fmt.Fprintf(&b, "- %s, %s in %s (%s)", ed.Institution, ed.Degree, ed.FieldOfStudy, educationDates(ed))
		if ed.Honors != "" {
			fmt.Fprintf(&b, ", honors: %s", ed.Honors)
		}
		if len(ed.RelevantCoursework) > 0 {
			fmt.Fprintf(&b, ", coursework: %s", strings.Join(ed.RelevantCoursework, ", "))
		}
		b.WriteByte('\n')
	}
	return pb.preamble(domain.SectionEducation) + fmt.Sprintf(`
Education:
%s
For each entry write a description of about %d words and up to 3 highlights. Keep the same order.`,
		b.String(),
		sectionWords(domain.SectionEducation, pb.opts),
	) + pb.jsonOnly(`{
  "education": [{"institution": "", "degree": "", "field_of_study": "", "dates": "", "description": "", "highlights": [""]}]
}`)
}

func (pb portfolioPromptBuilder) projects() string {
	var b strings.Builder
	for _, p := range pb.cv.Projects {
		fmt.Fprintf(&b, "- %s: %s (technologies: %s)\n", p.Name, p.Description, strings.Join(p.Technologies, ", "))
	}
	return pb.preamble(domain.SectionProjects) + fmt.Sprintf(`
Projects:
%s
For each project write a description of about %d words and up to 3 highlights. Keep the same order.`,
		b.String(),
		sectionWords(domain.SectionProjects, pb.opts),
	) + pb.jsonOnly(`{
  "projects": [{"name": "", "description": "", "technologies": [""], "highlights": [""], "url": ""}]
}`)
}

func (pb portfolioPromptBuilder) certifications() string {
	var b strings.Builder
	for _, c := range pb.cv.Certifications {
		fmt.Fprintf(&b, "- %s by %s (%s)\n", c.Name, c.Issuer, c.IssueDate)
	}
	return pb.preamble(domain.SectionCertifications) + fmt.Sprintf(`
Certifications:
%s
For each certification write a one-line description of about %d words. Keep the same order.`,
		b.String(),
		sectionWords(domain.SectionCertifications, pb.opts),
	) + pb.jsonOnly(`{
  "certifications": [{"name": "", "issuer": "", "date": "", "description": ""}]
}`)
}

func (pb portfolioPromptBuilder) contact() string {
	ask, cta := ".", ""
	if pb.opts.ShouldIncludeCallToAction() {
		ask = " and a call to action."
		cta = `,
  "call_to_action": "Short call to action"`
	}
	return pb.preamble(domain.SectionContact) + fmt.Sprintf(`
Name: %s
Current role: %s
Location: %s

Write a short invitation to get in touch of about %d words%s`,
		pb.cv.PersonalInfo.Name,
		currentRole(pb.cv),
		pb.cv.PersonalInfo.Location,
		sectionWords(domain.SectionContact, pb.opts),
		ask,
	) + pb.jsonOnly(`{
  "message": "Invitation to connect"`+cta+`
}`)
}
