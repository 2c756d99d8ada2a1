package service

import (
	"fmt"

	"cv-portfolio/internal/domain"
)

// mapCVDocument convierte el JSON generico del modelo en un CVAnalysisResult tipado.
// Los elementos malformados se descartan; una forma inesperada devuelve un resultado minimo con nota.
func mapCVDocument(doc any) *domain.CVAnalysisResult {
	result := domain.NewCVAnalysisResult()

	root, ok := doc.(map[string]any)
	if !ok {
		result.AddNote(fmt.Sprintf("Unexpected extraction format (%T); returning minimal result", doc))
		return result
	}

	pi := asObject(root["personal_info"])
	result.PersonalInfo = domain.PersonalInfo{
		Name:     stringField(pi, "name"),
		Email:    stringField(pi, "email"),
		Phone:    stringField(pi, "phone"),
		Location: stringField(pi, "location"),
		LinkedIn: stringField(pi, "linkedin"),
		GitHub:   stringField(pi, "github"),
		Website:  stringField(pi, "website"),
	}
	result.ProfessionalSummary = stringField(root, "professional_summary")

	switch skills := root["skills"].(type) {
	case map[string]any:
		result.TechnicalSkills = stringListField(skills, "technical_skills")
		result.SoftSkills = stringListField(skills, "soft_skills")
		result.Skills = stringListField(skills, "all_skills")
	case []any:
		result.Skills = asStringList(skills)
	}
	// algunos modelos aplanan las listas en el nivel superior
	if len(result.TechnicalSkills) == 0 {
		result.TechnicalSkills = stringListField(root, "technical_skills")
	}
	if len(result.SoftSkills) == 0 {
		result.SoftSkills = stringListField(root, "soft_skills")
	}

	skipped := 0
	for _, obj := range asObjectList(root["work_experience"]) {
		we := domain.WorkExperience{
			Company:      stringField(obj, "company"),
			Position:     stringField(obj, "position"),
			StartDate:    stringField(obj, "start_date"),
			EndDate:      stringField(obj, "end_date"),
			Duration:     stringField(obj, "duration"),
			Description:  stringField(obj, "description"),
			Achievements: stringListField(obj, "achievements"),
			Technologies: stringListField(obj, "technologies"),
		}
		if we.Company == "" && we.Position == "" {
			skipped++
			continue
		}
		result.WorkExperience = append(result.WorkExperience, we)
	}

	for _, obj := range asObjectList(root["education"]) {
		ed := domain.Education{
			Institution:        stringField(obj, "institution"),
			Degree:             stringField(obj, "degree"),
			FieldOfStudy:       stringField(obj, "field_of_study"),
			StartDate:          stringField(obj, "start_date"),
			EndDate:            stringField(obj, "end_date"),
			GPA:                stringField(obj, "gpa"),
			Honors:             stringField(obj, "honors"),
			RelevantCoursework: stringListField(obj, "relevant_coursework"),
		}
		if ed.Institution == "" && ed.Degree == "" {
			skipped++
			continue
		}
		result.Education = append(result.Education, ed)
	}

	for _, obj := range asObjectList(root["certifications"]) {
		c := domain.Certification{
			Name:         stringField(obj, "name"),
			Issuer:       stringField(obj, "issuer"),
			IssueDate:    stringField(obj, "issue_date"),
			ExpiryDate:   stringField(obj, "expiry_date"),
			CredentialID: stringField(obj, "credential_id"),
		}
		if c.Name == "" {
			skipped++
			continue
		}
		result.Certifications = append(result.Certifications, c)
	}

	langs, _ := root["languages"].([]any)
	for _, item := range langs {
		switch l := item.(type) {
		case map[string]any:
			if name := stringField(l, "language"); name != "" {
				result.Languages = append(result.Languages, domain.Language{Language: name, Proficiency: stringField(l, "proficiency")})
			}
		case string:
			if l != "" {
				result.Languages = append(result.Languages, domain.Language{Language: l})
			}
		}
	}

	for _, obj := range asObjectList(root["projects"]) {
		p := domain.Project{
			Name:         stringField(obj, "name"),
			Description:  stringField(obj, "description"),
			Technologies: stringListField(obj, "technologies"),
			URL:          stringField(obj, "url"),
			Date:         stringField(obj, "date"),
		}
		if p.Name == "" {
			skipped++
			continue
		}
		result.Projects = append(result.Projects, p)
	}

	for _, obj := range asObjectList(root["volunteer_experience"]) {
		v := domain.VolunteerExperience{
			Organization: stringField(obj, "organization"),
			Role:         stringField(obj, "role"),
			Description:  stringField(obj, "description"),
			Date:         stringField(obj, "date"),
		}
		if v.Organization == "" && v.Role == "" {
			skipped++
			continue
		}
		result.VolunteerExperience = append(result.VolunteerExperience, v)
	}

	result.Awards = stringListField(root, "awards")
	result.Interests = stringListField(root, "interests")

	if skipped > 0 {
		result.AddNote(fmt.Sprintf("Skipped %d incomplete entr(ies) in extracted data", skipped))
	}

	result.Normalize()
	return result
}
