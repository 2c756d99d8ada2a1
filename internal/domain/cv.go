package domain

// PersonalInfo agrupa los datos de contacto extraidos del CV. Todos opcionales.
type PersonalInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

// WorkExperience es una entrada de historial laboral. Las fechas quedan como texto libre.
type WorkExperience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements"`
	Technologies []string `json:"technologies"`
}

type Education struct {
	Institution        string   `json:"institution"`
	Degree             string   `json:"degree,omitempty"`
	FieldOfStudy       string   `json:"field_of_study,omitempty"`
	StartDate          string   `json:"start_date,omitempty"`
	EndDate            string   `json:"end_date,omitempty"`
	GPA                string   `json:"gpa,omitempty"`
	Honors             string   `json:"honors,omitempty"`
	RelevantCoursework []string `json:"relevant_coursework"`
}

// Certification requiere Name; el resto es opcional.
type Certification struct {
	Name         string `json:"name"`
	Issuer       string `json:"issuer,omitempty"`
	IssueDate    string `json:"issue_date,omitempty"`
	ExpiryDate   string `json:"expiry_date,omitempty"`
	CredentialID string `json:"credential_id,omitempty"`
}

type Language struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url,omitempty"`
	Date         string   `json:"date,omitempty"`
}

type VolunteerExperience struct {
	Organization string `json:"organization"`
	Role         string `json:"role,omitempty"`
	Description  string `json:"description,omitempty"`
	Date         string `json:"date,omitempty"`
}

// CVAnalysisResult es el perfil tipado que produce el pipeline de extraccion.
// Se muta durante las etapas de mejora y limpieza; despues es de solo lectura.
type CVAnalysisResult struct {
	PersonalInfo        PersonalInfo          `json:"personal_info"`
	ProfessionalSummary string                `json:"professional_summary,omitempty"`
	WorkExperience      []WorkExperience      `json:"work_experience"`
	Education           []Education           `json:"education"`
	Certifications      []Certification       `json:"certifications"`
	Skills              []string              `json:"skills"`
	TechnicalSkills     []string              `json:"technical_skills"`
	SoftSkills          []string              `json:"soft_skills"`
	Languages           []Language            `json:"languages"`
	Projects            []Project             `json:"projects"`
	Awards              []string              `json:"awards"`
	VolunteerExperience []VolunteerExperience `json:"volunteer_experience"`
	Interests           []string              `json:"interests"`
	AnalysisConfidence  float64               `json:"analysis_confidence"`
	ExtractedSections   []string              `json:"extracted_sections"`
	ProcessingNotes     []string              `json:"processing_notes"`
}

// NewCVAnalysisResult devuelve un resultado vacio ya normalizado.
func NewCVAnalysisResult() *CVAnalysisResult {
	r := &CVAnalysisResult{}
	r.Normalize()
	return r
}

// Normalize garantiza listas no nulas y la confianza dentro de [0,1].
func (r *CVAnalysisResult) Normalize() {
	if r.WorkExperience == nil {
		r.WorkExperience = []WorkExperience{}
	}
	for i := range r.WorkExperience {
		r.WorkExperience[i].Achievements = nonNilStrings(r.WorkExperience[i].Achievements)
		r.WorkExperience[i].Technologies = nonNilStrings(r.WorkExperience[i].Technologies)
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	for i := range r.Education {
		r.Education[i].RelevantCoursework = nonNilStrings(r.Education[i].RelevantCoursework)
	}
	if r.Certifications == nil {
		r.Certifications = []Certification{}
	}
	if r.Languages == nil {
		r.Languages = []Language{}
	}
	if r.Projects == nil {
		r.Projects = []Project{}
	}
	for i := range r.Projects {
		r.Projects[i].Technologies = nonNilStrings(r.Projects[i].Technologies)
	}
	if r.VolunteerExperience == nil {
		r.VolunteerExperience = []VolunteerExperience{}
	}
	r.Skills = nonNilStrings(r.Skills)
	r.TechnicalSkills = nonNilStrings(r.TechnicalSkills)
	r.SoftSkills = nonNilStrings(r.SoftSkills)
	r.Awards = nonNilStrings(r.Awards)
	r.Interests = nonNilStrings(r.Interests)
	r.ExtractedSections = nonNilStrings(r.ExtractedSections)
	r.ProcessingNotes = nonNilStrings(r.ProcessingNotes)
	r.AnalysisConfidence = ClampScore(r.AnalysisConfidence)
}

// AddNote agrega una nota legible para el usuario final.
func (r *CVAnalysisResult) AddNote(note string) {
	r.ProcessingNotes = append(r.ProcessingNotes, note)
}

// AllSkills une las tres listas de skills sin repetir (comparacion exacta).
func (r *CVAnalysisResult) AllSkills() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, list := range [][]string{r.Skills, r.TechnicalSkills, r.SoftSkills} {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// ClampScore acota un puntaje heuristico a [0,1].
func ClampScore(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
