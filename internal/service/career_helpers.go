package service

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"cv-portfolio/internal/domain"
)

var yearsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*years?`)

// estimateYearsOfExperience suma "N years" de cada entrada; 1 por entrada sin duracion legible.
func estimateYearsOfExperience(entries []domain.WorkExperience) float64 {
	total := 0.0
	for _, we := range entries {
		total += entryYears(we)
	}
	return total
}

func entryYears(we domain.WorkExperience) float64 {
	m := yearsPattern.FindStringSubmatch(we.Duration)
	if len(m) < 2 {
		return 1
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 1
	}
	return v
}

// skillTokens parte un skill en tokens en minusculas, conservando + # . para c++, c#, node.js.
func skillTokens(skill string) []string {
	return strings.FieldsFunc(strings.ToLower(skill), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.')
	})
}

// matchesVocabulary compara el skill completo y luego token a token contra el vocabulario.
// Entradas cortas como "c", "r" o "go" solo valen solas o con una version ("Go 1.22"),
// para no atrapar "R&D" o "Go-to-market".
func matchesVocabulary(skill string, vocab map[string]struct{}) bool {
	lower := strings.ToLower(strings.TrimSpace(skill))
	if lower == "" {
		return false
	}
	if _, ok := vocab[lower]; ok {
		return true
	}
	tokens := skillTokens(lower)
	for i, tok := range tokens {
		tok = strings.TrimSuffix(tok, ".")
		if _, ok := vocab[tok]; !ok {
			continue
		}
		if !isAmbiguousToken(tok) || onlyVersionsBesides(tokens, i) {
			return true
		}
	}
	return false
}

func isAmbiguousToken(tok string) bool {
	if len(tok) > 2 {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func onlyVersionsBesides(tokens []string, skip int) bool {
	for i, tok := range tokens {
		if i == skip {
			continue
		}
		for _, r := range tok {
			if !unicode.IsDigit(r) && r != '.' {
				return false
			}
		}
	}
	return true
}

func vocabulary(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

var (
	programmingLanguageVocab = vocabulary(
		"go", "golang", "python", "java", "javascript", "typescript", "c", "c++", "c#", "ruby", "php",
		"rust", "kotlin", "swift", "scala", "r", "perl", "elixir", "haskell", "dart", "sql", "bash",
	)
	frameworkVocab = vocabulary(
		"react", "angular", "vue", "svelte", "next.js", "django", "flask", "fastapi", "spring", "rails",
		"express", "node.js", "nodejs", "laravel", ".net", "gin", "fiber", "tensorflow", "pytorch", "flutter",
	)
	databaseVocab = vocabulary(
		"postgresql", "postgres", "mysql", "mariadb", "mongodb", "redis", "sqlite", "oracle", "cassandra",
		"dynamodb", "elasticsearch", "neo4j", "mssql", "couchdb", "bigquery", "snowflake",
	)
	cloudVocab = vocabulary(
		"aws", "azure", "gcp", "google cloud", "heroku", "cloudflare", "digitalocean", "lambda", "s3", "ec2",
		"bedrock", "openshift",
	)
	toolVocab = vocabulary(
		"git", "docker", "kubernetes", "k8s", "terraform", "ansible", "jenkins", "jira", "figma", "linux",
		"grafana", "prometheus", "kafka", "rabbitmq", "github", "gitlab", "webpack", "postman", "helm",
	)
	softSkillVocab = vocabulary(
		"leadership", "communication", "teamwork", "collaboration", "mentoring", "problem-solving",
		"problem solving", "management", "negotiation", "adaptability", "creativity", "presentation",
		"time management", "critical thinking", "empathy", "ownership",
	)
)
