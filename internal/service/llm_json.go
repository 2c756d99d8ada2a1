package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	errEmptyModelText = errors.New("empty model response")
	errNoJSONFound    = errors.New("no json object found")

	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// CleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func CleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado, ignorando llaves dentro de strings.
// Si el primer candidato no cierra, prueba desde la siguiente llave.
func extractFirstJSONObject(input string) string {
	offset := 0
	for offset < len(input) {
		idx := strings.IndexByte(input[offset:], '{')
		if idx == -1 {
			return ""
		}
		start := offset + idx
		if end := balancedObjectEnd(input, start); end > 0 {
			return input[start:end]
		}
		offset = start + 1
	}
	return ""
}

func balancedObjectEnd(input string, start int) int {
	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
			if depth < 0 {
				return -1
			}
		}
	}
	return -1
}

// parseLLMJSON intenta el texto limpio completo y luego el primer objeto balanceado.
func parseLLMJSON(raw string) (any, error) {
	cleaned := CleanLLMJSONResponse(raw)
	if cleaned == "" {
		return nil, errEmptyModelText
	}

	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err == nil {
		return v, nil
	}
	for _, src := range []string{cleaned, raw} {
		obj := extractFirstJSONObject(src)
		if obj == "" {
			continue
		}
		var candidate any
		if err := json.Unmarshal([]byte(obj), &candidate); err == nil {
			return candidate, nil
		}
	}
	return nil, errNoJSONFound
}

// parseLLMJSONObject es parseLLMJSON pero exige un objeto en el nivel superior.
func parseLLMJSONObject(raw string) (map[string]any, error) {
	v, err := parseLLMJSON(raw)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected json object, got %T", v)
	}
	return m, nil
}

// Helpers tolerantes para leer documentos JSON genericos.

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return asString(m[key])
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// asStringList acepta una lista (descarta vacios y no-escalares) o un string suelto.
func asStringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringListField(m map[string]any, key string) []string {
	if m == nil {
		return []string{}
	}
	return asStringList(m[key])
}

// asObjectList devuelve solo los elementos que son objetos.
func asObjectList(v any) []map[string]any {
	out := []map[string]any{}
	items, ok := v.([]any)
	if !ok {
		if single, ok := v.(map[string]any); ok {
			return append(out, single)
		}
		return out
	}
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
