package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"cv-portfolio/internal/domain"
)

const (
	defaultRole             = "Professional"
	achievementsPerJob      = 2
	maxKeyAchievements      = 5
	maxImpactMetrics        = 3
	maxTopSkills            = 8
	skillCategoryLanguages  = "Programming Languages"
	skillCategoryFrameworks = "Frameworks"
	skillCategoryTools      = "Tools"
	skillCategorySoft       = "Soft Skills"
	skillCategoryOther      = "Other"
)

var (
	percentMetricRe  = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)
	audienceMetricRe = regexp.MustCompile(`(?i)\d[\d,.]*\s*[km]?\+?\s*(?:users|customers|clients)`)
)

// currentRole toma el puesto de la entrada mas reciente (la primera).
func currentRole(cv *domain.CVAnalysisResult) string {
	if len(cv.WorkExperience) > 0 {
		if p := strings.TrimSpace(cv.WorkExperience[0].Position); p != "" {
			return p
		}
	}
	return defaultRole
}

// keyAchievements junta hasta 2 logros por empleo y 5 en total.
func keyAchievements(cv *domain.CVAnalysisResult) []string {
	out := []string{}
	for _, we := range cv.WorkExperience {
		n := 0
		for _, a := range we.Achievements {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			out = append(out, a)
			n++
			if len(out) == maxKeyAchievements {
				return out
			}
			if n == achievementsPerJob {
				break
			}
		}
	}
	return out
}

// careerProgression compara el puesto mas antiguo con el actual.
func careerProgression(cv *domain.CVAnalysisResult) string {
	entries := cv.WorkExperience
	switch len(entries) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("Currently %s at %s", currentRole(cv), entries[0].Company)
	}
	oldest := entries[len(entries)-1]
	newest := entries[0]
	return fmt.Sprintf("Progressed from %s at %s to %s at %s",
		oldest.Position, oldest.Company, newest.Position, newest.Company)
}

// impactMetrics extrae porcentajes y cantidades de usuarios/clientes (maximo 3).
func impactMetrics(cv *domain.CVAnalysisResult) []string {
	texts := []string{}
	for _, we := range cv.WorkExperience {
		texts = append(texts, we.Description)
		texts = append(texts, we.Achievements...)
	}

	seen := map[string]struct{}{}
	out := []string{}
	for _, t := range texts {
		for _, re := range []*regexp.Regexp{percentMetricRe, audienceMetricRe} {
			for _, m := range re.FindAllString(t, -1) {
				m = strings.TrimSpace(m)
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				out = append(out, m)
				if len(out) == maxImpactMetrics {
					return out
				}
			}
		}
	}
	return out
}

// topSkills prioriza skills tecnicos, luego el resto, sin repetir.
func topSkills(cv *domain.CVAnalysisResult, n int) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, list := range [][]string{cv.TechnicalSkills, cv.Skills, cv.SoftSkills} {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
			if len(out) == n {
				return out
			}
		}
	}
	return out
}

// categorizeSkills agrupa skills del CV y tecnologias de cada empleo por vocabulario.
func categorizeSkills(cv *domain.CVAnalysisResult) map[string][]string {
	categories := map[string][]string{}
	all := append([]string{}, cv.AllSkills()...)
	for _, we := range cv.WorkExperience {
		all = append(all, we.Technologies...)
	}
	softDeclared := vocabulary(cv.SoftSkills...)

	seen := map[string]struct{}{}
	for _, skill := range all {
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}

		_, isSoft := softDeclared[skill]
		switch {
		case isSoft || matchesVocabulary(skill, softSkillVocab):
			categories[skillCategorySoft] = append(categories[skillCategorySoft], skill)
		case matchesVocabulary(skill, programmingLanguageVocab):
			categories[skillCategoryLanguages] = append(categories[skillCategoryLanguages], skill)
		case matchesVocabulary(skill, frameworkVocab):
			categories[skillCategoryFrameworks] = append(categories[skillCategoryFrameworks], skill)
		case matchesVocabulary(skill, toolVocab), matchesVocabulary(skill, databaseVocab), matchesVocabulary(skill, cloudVocab):
			categories[skillCategoryTools] = append(categories[skillCategoryTools], skill)
		default:
			categories[skillCategoryOther] = append(categories[skillCategoryOther], skill)
		}
	}
	return categories
}

func educationDates(ed domain.Education) string {
	switch {
	case ed.StartDate != "" && ed.EndDate != "":
		return ed.StartDate + " - " + ed.EndDate
	case ed.EndDate != "":
		return ed.EndDate
	default:
		return ed.StartDate
	}
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(it)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
