package service

import (
	"fmt"
	"strings"

	"cv-portfolio/internal/domain"
)

const (
	confidenceScale       = 10.0
	lowConfidenceCutoff   = 0.5
	richSkillSetThreshold = 5
)

// calculateConfidence aplica la rubrica de completitud sobre 10 puntos.
func calculateConfidence(r *domain.CVAnalysisResult) float64 {
	points := 0.0
	if strings.TrimSpace(r.PersonalInfo.Name) != "" {
		points++
	}
	if strings.TrimSpace(r.PersonalInfo.Email) != "" || strings.TrimSpace(r.PersonalInfo.Phone) != "" {
		points++
	}
	if len(r.WorkExperience) > 0 {
		points += 2
		for _, we := range r.WorkExperience {
			if len(we.Achievements) > 0 {
				points++
				break
			}
		}
	}
	if len(r.Education) > 0 {
		points += 2
	}
	if skills := r.AllSkills(); len(skills) > 0 {
		points++
		if len(skills) >= richSkillSetThreshold {
			points++
		}
	}
	if strings.TrimSpace(r.ProfessionalSummary) != "" {
		points++
	}
	return domain.ClampScore(points / confidenceScale)
}

// sectionKeywords se buscan en minusculas sobre el texto del CV.
var sectionKeywords = []struct {
	section  string
	keywords []string
}{
	{"contact", []string{"email", "e-mail", "phone", "tel:", "contact", "linkedin", "@"}},
	{"summary", []string{"summary", "profile", "objective", "about me"}},
	{"experience", []string{"experience", "employment", "work history", "career", "professional background"}},
	{"education", []string{"education", "university", "college", "degree", "bachelor", "master", "phd"}},
	{"skills", []string{"skills", "technologies", "competencies", "expertise", "tech stack"}},
	{"certifications", []string{"certification", "certificate", "certified", "license"}},
	{"projects", []string{"projects", "portfolio", "side project"}},
	{"awards", []string{"awards", "honors", "honours", "achievements", "recognition"}},
	{"languages", []string{"languages", "fluent", "native speaker", "bilingual"}},
	{"interests", []string{"interests", "hobbies", "activities"}},
}

// detectSections devuelve las secciones presentes en el texto, en orden fijo.
func detectSections(cvText string) []string {
	lower := strings.ToLower(cvText)
	out := []string{}
	for _, sk := range sectionKeywords {
		for _, kw := range sk.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, sk.section)
				break
			}
		}
	}
	return out
}

// enhanceResult calcula confianza, secciones detectadas y notas. Muta r.
func enhanceResult(r *domain.CVAnalysisResult, cvText string) {
	r.AnalysisConfidence = calculateConfidence(r)
	r.ExtractedSections = detectSections(cvText)

	if r.AnalysisConfidence < lowConfidenceCutoff {
		r.AddNote(fmt.Sprintf("Low analysis confidence (%.0f%%); the CV may be incomplete or poorly formatted", r.AnalysisConfidence*100))
	}
	if len(r.WorkExperience) == 0 {
		r.AddNote("No work experience found")
	}
	if len(r.Education) == 0 {
		r.AddNote("No education found")
	}
	if len(r.AllSkills()) == 0 {
		r.AddNote("No skills found")
	}
}
