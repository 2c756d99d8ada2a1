package service

import "cv-portfolio/internal/domain"

// SkillsSummary es la vista agregada de skills de un CV ya analizado.
type SkillsSummary struct {
	AllSkills                []string `json:"all_skills"`
	TechnicalSkills          []string `json:"technical_skills"`
	SoftSkills               []string `json:"soft_skills"`
	Tools                    []string `json:"tools"`
	ProgrammingLanguages     []string `json:"programming_languages"`
	Frameworks               []string `json:"frameworks"`
	Databases                []string `json:"databases"`
	CloudPlatforms           []string `json:"cloud_platforms"`
	TotalSkills              int      `json:"total_skills"`
	EstimatedYearsExperience float64  `json:"estimated_years_experience"`
}

// ExtractSkillsSummary une todas las fuentes de skills (incluidas las tecnologias de cada empleo)
// y las clasifica por vocabulario. No llama al modelo.
func ExtractSkillsSummary(result *domain.CVAnalysisResult) SkillsSummary {
	summary := SkillsSummary{
		AllSkills:            []string{},
		TechnicalSkills:      []string{},
		SoftSkills:           []string{},
		Tools:                []string{},
		ProgrammingLanguages: []string{},
		Frameworks:           []string{},
		Databases:            []string{},
		CloudPlatforms:       []string{},
	}
	if result == nil {
		return summary
	}

	declaredTechnical := vocabulary(result.TechnicalSkills...)
	declaredSoft := vocabulary(result.SoftSkills...)

	sources := [][]string{result.Skills, result.TechnicalSkills, result.SoftSkills}
	for _, we := range result.WorkExperience {
		sources = append(sources, we.Technologies)
	}
	fromTechnologies := map[string]struct{}{}
	for _, we := range result.WorkExperience {
		for _, tech := range we.Technologies {
			fromTechnologies[tech] = struct{}{}
		}
	}

	seen := map[string]struct{}{}
	for _, list := range sources {
		for _, skill := range list {
			if skill == "" {
				continue
			}
			if _, ok := seen[skill]; ok {
				continue
			}
			seen[skill] = struct{}{}
			summary.AllSkills = append(summary.AllSkills, skill)

			_, isDeclaredSoft := declaredSoft[skill]
			isSoft := isDeclaredSoft || matchesVocabulary(skill, softSkillVocab)
			if isSoft {
				summary.SoftSkills = append(summary.SoftSkills, skill)
			}

			bucketed := false
			if matchesVocabulary(skill, programmingLanguageVocab) {
				summary.ProgrammingLanguages = append(summary.ProgrammingLanguages, skill)
				bucketed = true
			}
			if matchesVocabulary(skill, frameworkVocab) {
				summary.Frameworks = append(summary.Frameworks, skill)
				bucketed = true
			}
			if matchesVocabulary(skill, databaseVocab) {
				summary.Databases = append(summary.Databases, skill)
				bucketed = true
			}
			if matchesVocabulary(skill, cloudVocab) {
				summary.CloudPlatforms = append(summary.CloudPlatforms, skill)
				bucketed = true
			}
			if matchesVocabulary(skill, toolVocab) {
				summary.Tools = append(summary.Tools, skill)
				bucketed = true
			}

			_, isDeclaredTech := declaredTechnical[skill]
			_, isTechnology := fromTechnologies[skill]
			if bucketed || isDeclaredTech || (isTechnology && !isSoft) {
				summary.TechnicalSkills = append(summary.TechnicalSkills, skill)
			}
		}
	}

	summary.TotalSkills = len(summary.AllSkills)
	summary.EstimatedYearsExperience = estimateYearsOfExperience(result.WorkExperience)
	return summary
}
