package service

import (
	"strings"

	"cv-portfolio/internal/domain"
)

// Cada parser devuelve (seccion, usoFallback, error). Solo hay error si el modelo no devolvio texto;
// si el JSON no sirve, la seccion se arma a partir del texto crudo.

func fallbackText(raw string) (string, error) {
	text := CleanLLMJSONResponse(raw)
	if text == "" {
		return "", errEmptyModelText
	}
	return text, nil
}

func firstLine(s string, maxLen int) string {
	line := strings.TrimSpace(strings.SplitN(s, "\n", 2)[0])
	if len(line) > maxLen {
		line = strings.TrimSpace(cutAtRune(line, maxLen))
	}
	return line
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseHero(raw string, cv *domain.CVAnalysisResult, withCTA bool) (*domain.HeroSection, bool, error) {
	text, err := fallbackText(raw)
	if err != nil {
		return nil, false, err
	}
	if m, err := parseLLMJSONObject(text); err == nil {
		hero := &domain.HeroSection{
			Headline:         stringField(m, "headline"),
			Subheadline:      stringField(m, "subheadline"),
			ValueProposition: stringField(m, "value_proposition"),
		}
		if withCTA {
			hero.CallToAction = stringField(m, "call_to_action")
		}
		if hero.Headline != "" || hero.ValueProposition != "" {
			return hero, false, nil
		}
	}
	return &domain.HeroSection{
		Headline:         firstLine(text, 120),
		Subheadline:      currentRole(cv),
		ValueProposition: text,
	}, true, nil
}

func parseAbout(raw string) (*domain.AboutSection, bool, error) {
	text, err := fallbackText(raw)
	if err != nil {
		return nil, false, err
	}
	if m, err := parseLLMJSONObject(text); err == nil {
		about := &domain.AboutSection{
			MainContent:   stringField(m, "main_content"),
			KeyHighlights: stringListField(m, "key_highlights"),
			PersonalTouch: stringField(m, "personal_touch"),
		}
		if about.MainContent != "" {
			return about, false, nil
		}
	}
	return &domain.AboutSection{MainContent: text, KeyHighlights: []string{}}, true, nil
}

// parseExperienceEntry conserva empresa, puesto y fechas del CV; el modelo solo reescribe el contenido.
func parseExperienceEntry(raw string, we domain.WorkExperience) (domain.ExperienceSection, bool, error) {
	section := domain.ExperienceSection{
		Company:   we.Company,
		Position:  we.Position,
		StartDate: we.StartDate,
		EndDate:   we.EndDate,
	}
	text, err := fallbackText(raw)
	if err != nil {
		return section, false, err
	}
	if m, err := parseLLMJSONObject(text); err == nil {
		if desc := stringField(m, "enhanced_description"); desc != "" {
			section.EnhancedDescription = desc
			section.KeyAchievements = stringListField(m, "key_achievements")
			section.SkillsDemonstrated = stringListField(m, "skills_demonstrated")
			section.ImpactSummary = stringField(m, "impact_summary")
			return section, false, nil
		}
	}
	section.EnhancedDescription = text
	section.KeyAchievements = append([]string{}, we.Achievements...)
	section.SkillsDemonstrated = append([]string{}, we.Technologies...)
	return section, true, nil
}

func parseSkills(raw string, cv *domain.CVAnalysisResult) (*domain.SkillsSection, bool, error) {
	text, err := fallbackText(raw)
	if err != nil {
		return nil, false, err
	}
	if m, err := parseLLMJSONObject(text); err == nil {
		section := &domain.SkillsSection{
			SkillCategories: map[string]domain.SkillCategory{},
			TopSkills:       stringListField(m, "top_skills"),
			SkillsSummary:   stringField(m, "skills_summary"),
		}
		for name, v := range asObject(m["skill_categories"]) {
			cat := domain.SkillCategory{Skills: []string{}}
			switch t := v.(type) {
			case map[string]any:
				cat.Skills = stringListField(t, "skills")
				cat.Proficiency = stringField(t, "proficiency")
			case []any:
				cat.Skills = asStringList(t)
			}
			if len(cat.Skills) > 0 {
				section.SkillCategories[name] = cat
			}
		}
		if len(section.SkillCategories) > 0 || len(section.TopSkills) > 0 {
			return section, false, nil
		}
	}

	section := &domain.SkillsSection{
		SkillCategories: map[string]domain.SkillCategory{},
		TopSkills:       topSkills(cv, maxTopSkills),
		SkillsSummary:   text,
	}
	for name, skills := range categorizeSkills(cv) {
		section.SkillCategories[name] = domain.SkillCategory{Skills: skills}
	}
	return section, true, nil
}

// listItems acepta {"<key>": [...]} o directamente un arreglo.
func listItems(text, key string) ([]map[string]any, bool) {
	v, err := parseLLMJSON(text)
	if err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case map[string]any:
		if _, ok := t[key]; !ok {
			return nil, false
		}
		return asObjectList(t[key]), true
	case []any:
		return asObjectList(t), true
	}
	return nil, false
}

func parseEducation(raw string, cv *domain.CVAnalysisResult) ([]domain.EducationSection, bool, error) {
	text, err := fallbackText(raw)
	if err != nil {
		return nil, false, err
	}
	items, ok := listItems(text, "education")

	out := make([]domain.EducationSection, 0, len(cv.Education))
	for i, ed := range cv.Education {
		section := domain.EducationSection{
			Institution:  ed.Institution,
			Degree:       ed.Degree,
			FieldOfStudy: ed.FieldOfStudy,
			Dates:        educationDates(ed),
			Highlights:   []string{},
		}
		if ok && i < len(items) {
			section.Description = stringField(items[i], "description")
			section.Highlights = stringListField(items[i], "highlights")
		} else if !ok && i == 0 {
			section.Description = text
		}
		if ed.Honors != "" && len(section.Highlights) == 0 {
			section.Highlights = []string{ed.Honors}
		}
		out = append(out, section)
	}
	return out, !ok, nil
}

func parseProjects(raw string, cv *domain.CVAnalysisResult) ([]domain.ProjectSection, bool, error) {
	text, err := fallbackText(raw)
	if err != nil {
		return nil, false, err
	}
	items, ok := listItems(text, "projects")

	out := make([]domain.ProjectSection, 0, len(cv.Projects))
	for i, p := range cv.Projects {
		section := domain.ProjectSection{
			Name:         p.Name,
			Description:  p.Description,
			Technologies: append([]string{}, p.Technologies...),
			Highlights:   []string{},
			URL:          p.URL,
		}
		if ok && i < len(items) {
			section.Description = firstNonEmpty(stringField(items[i], "description"), p.Description)
			section.Highlights = stringListField(items[i], "highlights")
			if techs := stringListField(items[i], "technologies"); len(techs) > 0 {
				section.Technologies = techs
			}
		} else if !ok && i == 0 {
			section.Description = text
		}
		out = append(out, section)
	}
	return out, !ok, nil
}

func parseCertifications(raw string, cv *domain.CVAnalysisResult) ([]domain.CertificationSection, bool, error) {
	text, err := fallbackText(raw)
	if err != nil {
		return nil, false, err
	}
	items, ok := listItems(text, "certifications")

	out := make([]domain.CertificationSection, 0, len(cv.Certifications))
	for i, c := range cv.Certifications {
		section := domain.CertificationSection{
			Name:   c.Name,
			Issuer: c.Issuer,
			Date:   c.IssueDate,
		}
		if ok && i < len(items) {
			section.Description = stringField(items[i], "description")
		} else if !ok && i == 0 {
			section.Description = text
		}
		out = append(out, section)
	}
	return out, !ok, nil
}

// parseContact copia los datos de contacto del CV; del modelo solo se toma el mensaje y el CTA.
func parseContact(raw string, cv *domain.CVAnalysisResult, withCTA bool) (*domain.ContactSection, bool, error) {
	pi := cv.PersonalInfo
	section := &domain.ContactSection{
		Email:    pi.Email,
		Phone:    pi.Phone,
		Location: pi.Location,
		LinkedIn: pi.LinkedIn,
		GitHub:   pi.GitHub,
		Website:  pi.Website,
	}
	text, err := fallbackText(raw)
	if err != nil {
		return nil, false, err
	}
	if m, err := parseLLMJSONObject(text); err == nil {
		if msg := stringField(m, "message"); msg != "" {
			section.Message = msg
			if withCTA {
				section.CallToAction = stringField(m, "call_to_action")
			}
			return section, false, nil
		}
	}
	section.Message = text
	return section, true, nil
}
