package service

import (
	"fmt"
	"strings"

	"cv-portfolio/internal/domain"
)

// cleanResult normaliza contacto, URLs y listas de skills. Muta r.
func cleanResult(r *domain.CVAnalysisResult) {
	pi := &r.PersonalInfo

	if email := strings.TrimSpace(pi.Email); email != "" {
		if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
			r.AddNote(fmt.Sprintf("Invalid email format removed: %s", email))
			email = ""
		}
		pi.Email = email
	}

	if pi.Phone != "" {
		pi.Phone = cleanPhone(pi.Phone)
	}

	pi.LinkedIn = ensureScheme(pi.LinkedIn)
	pi.GitHub = ensureScheme(pi.GitHub)
	pi.Website = ensureScheme(pi.Website)

	r.Skills = dedupeExact(r.Skills)
	r.TechnicalSkills = dedupeExact(r.TechnicalSkills)
	r.SoftSkills = dedupeExact(r.SoftSkills)
}

// cleanPhone conserva digitos, +, -, parentesis y espacios.
func cleanPhone(phone string) string {
	var b strings.Builder
	for _, ch := range phone {
		switch {
		case ch >= '0' && ch <= '9', ch == '+', ch == '-', ch == '(', ch == ')', ch == ' ':
			b.WriteRune(ch)
		}
	}
	return strings.TrimSpace(b.String())
}

func ensureScheme(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u
	}
	return "https://" + u
}

// dedupeExact quita repetidos (comparacion exacta, case-sensitive) conservando la primera aparicion.
func dedupeExact(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
