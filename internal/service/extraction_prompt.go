package service

import (
	"fmt"
	"strings"
)

// extractionSchemaSkeleton es el documento que se le pide al modelo.
const extractionSchemaSkeleton = `{
  "personal_info": {
    "name": "Full name",
    "email": "email@example.com",
    "phone": "Phone number",
    "location": "City, Country",
    "linkedin": "LinkedIn URL",
    "website": "Personal website URL",
    "github": "GitHub URL"
  },
  "professional_summary": "Short professional summary",
  "skills": {
    "technical_skills": ["Technical skill"],
    "soft_skills": ["Soft skill"],
    "all_skills": ["Every skill mentioned"]
  },
  "work_experience": [
    {
      "company": "Company name",
      "position": "Job title",
      "start_date": "Start date as written",
      "end_date": "End date as written or Present",
      "duration": "e.g. 3 years",
      "description": "What the role involved",
      "achievements": ["Quantified achievement"],
      "technologies": ["Technology used"]
    }
  ],
  "education": [
    {
      "institution": "School or university",
      "degree": "Degree",
      "field_of_study": "Field",
      "start_date": "Start date",
      "end_date": "End date",
      "gpa": "GPA if stated",
      "honors": "Honors if any",
      "relevant_coursework": ["Course"]
    }
  ],
  "certifications": [
    {
      "name": "Certification name",
      "issuer": "Issuing organization",
      "issue_date": "Issue date",
      "expiry_date": "Expiry date",
      "credential_id": "Credential id"
    }
  ],
  "languages": [
    {"language": "Language", "proficiency": "Native|Fluent|Intermediate|Basic"}
  ],
  "projects": [
    {
      "name": "Project name",
      "description": "What it does",
      "technologies": ["Technology"],
      "url": "Project URL",
      "date": "Date"
    }
  ],
  "awards": ["Award"],
  "volunteer_experience": [
    {"organization": "Organization", "role": "Role", "description": "Description", "date": "Date"}
  ],
  "interests": ["Interest"]
}`

// buildExtractionPrompt arma el prompt unico de la etapa de extraccion.
func buildExtractionPrompt(cvText string) string {
	var b strings.Builder
	b.WriteString("You are an expert CV/resume parser. Extract structured information from the CV below.\n\n")
	b.WriteString("CV Text:\n\"\"\"\n")
	b.WriteString(strings.TrimSpace(cvText))
	b.WriteString("\n\"\"\"\n\n")
	fmt.Fprintf(&b, "Return ONLY valid JSON (no markdown, no explanation) with this exact structure:\n%s\n\n", extractionSchemaSkeleton)
	b.WriteString(`Rules:
- Copy names, companies, dates and numbers exactly as written; never invent data.
- Keep numeric results in achievements verbatim (e.g. "30% latency reduction").
- Use empty strings for missing text fields and empty arrays for missing lists.
- Put every skill in all_skills and split them into technical_skills and soft_skills.
- List work experience from most recent to oldest.`)
	return b.String()
}
