package service

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// cvExtractionJSONSchema describe el documento esperado. Es deliberadamente laxo:
// las violaciones se reportan como notas, no cortan el pipeline.
const cvExtractionJSONSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "personal_info": {
      "type": "object",
      "properties": {
        "name": {"type": ["string", "null"]},
        "email": {"type": ["string", "null"]},
        "phone": {"type": ["string", "null"]},
        "location": {"type": ["string", "null"]},
        "linkedin": {"type": ["string", "null"]},
        "website": {"type": ["string", "null"]},
        "github": {"type": ["string", "null"]}
      }
    },
    "professional_summary": {"type": ["string", "null"]},
    "skills": {
      "type": ["object", "array"],
      "properties": {
        "technical_skills": {"$ref": "#/definitions/stringList"},
        "soft_skills": {"$ref": "#/definitions/stringList"},
        "all_skills": {"$ref": "#/definitions/stringList"}
      }
    },
    "work_experience": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "company": {"type": ["string", "null"]},
          "position": {"type": ["string", "null"]},
          "achievements": {"$ref": "#/definitions/stringList"},
          "technologies": {"$ref": "#/definitions/stringList"}
        }
      }
    },
    "education": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "institution": {"type": ["string", "null"]},
          "relevant_coursework": {"$ref": "#/definitions/stringList"}
        }
      }
    },
    "certifications": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {"name": {"type": "string"}}
      }
    },
    "languages": {"type": "array", "items": {"type": "object"}},
    "projects": {"type": "array", "items": {"type": "object"}},
    "awards": {"type": "array"},
    "volunteer_experience": {"type": "array", "items": {"type": "object"}},
    "interests": {"type": "array"}
  },
  "definitions": {
    "stringList": {"type": ["array", "null"], "items": {"type": ["string", "number"]}}
  }
}`

const maxSchemaNotes = 5

var (
	extractionSchemaOnce sync.Once
	extractionSchema     *gojsonschema.Schema
	extractionSchemaErr  error
)

func loadExtractionSchema() (*gojsonschema.Schema, error) {
	extractionSchemaOnce.Do(func() {
		extractionSchema, extractionSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(cvExtractionJSONSchema))
	})
	return extractionSchema, extractionSchemaErr
}

// validateExtractionDocument devuelve una nota por violacion (maximo maxSchemaNotes).
func validateExtractionDocument(doc any) ([]string, error) {
	schema, err := loadExtractionSchema()
	if err != nil {
		return nil, fmt.Errorf("load extraction schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate extraction document: %w", err)
	}
	if res.Valid() {
		return nil, nil
	}

	notes := []string{}
	for i, e := range res.Errors() {
		if i == maxSchemaNotes {
			notes = append(notes, fmt.Sprintf("Schema validation: %d more issue(s) omitted", len(res.Errors())-maxSchemaNotes))
			break
		}
		notes = append(notes, "Schema validation: "+e.String())
	}
	return notes, nil
}
