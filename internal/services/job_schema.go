package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"sjaggi1/resume-parser/internal/models"
)

const jobDescriptionSchema = `{
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "company": {"type": "string"},
    "description": {"type": "string"},
    "requirements": {"$ref": "#/definitions/requirementSet"},
    "skills": {"$ref": "#/definitions/requirementSet"},
    "experience": {
      "type": "object",
      "properties": {
        "minimum": {"type": "number", "minimum": 0},
        "preferred": {"type": "number", "minimum": 0},
        "level": {"type": "string"}
      }
    }
  },
  "definitions": {
    "requirementSet": {
      "type": "object",
      "properties": {
        "required": {"type": "array", "items": {"type": "string"}},
        "preferred": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var jobSchemaLoader = gojsonschema.NewStringLoader(jobDescriptionSchema)

// ParseJobDescription validates raw JSON against the job description schema
// and decodes it.
func ParseJobDescription(raw []byte) (*models.JobDescription, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("%w: job description is required", models.ErrInvalidInput)
	}

	result, err := gojsonschema.Validate(jobSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: job description is not valid JSON: %v", models.ErrInvalidInput, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, strings.Join(msgs, "; "))
	}

	var job models.JobDescription
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return &job, nil
}
