package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/services"
)

func TestParseJobDescription(t *testing.T) {
	raw := []byte(`{
		"title": "Backend Engineer",
		"company": "Acme",
		"skills": {"required": ["Go", "PostgreSQL"], "preferred": ["Kafka"]},
		"requirements": {"required": ["Bachelor degree"]},
		"experience": {"minimum": 3, "preferred": 6, "level": "senior"}
	}`)

	job, err := services.ParseJobDescription(raw)

	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, job.Skills.Required)
	assert.Equal(t, []string{"Kafka"}, job.Skills.Preferred)
	assert.Equal(t, []string{"Bachelor degree"}, job.Requirements.Required)
	assert.Equal(t, 3.0, job.Experience.Minimum)
	assert.Equal(t, 6.0, job.Experience.Preferred)
}

func TestParseJobDescription_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		contains string
	}{
		{name: "empty", raw: "  ", contains: "required"},
		{name: "not json", raw: "{title", contains: "not valid JSON"},
		{name: "missing title", raw: `{"company": "Acme"}`, contains: "title"},
		{name: "empty title", raw: `{"title": ""}`, contains: "title"},
		{name: "skills not strings", raw: `{"title": "x", "skills": {"required": [1, 2]}}`, contains: "skills.required"},
		{name: "negative experience", raw: `{"title": "x", "experience": {"minimum": -1}}`, contains: "experience.minimum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.ParseJobDescription([]byte(tt.raw))

			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
