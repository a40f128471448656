package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/services"
	"sjaggi1/resume-parser/mocks"
)

const structurerInput = `Jane Doe
jane.doe@example.com

Experience
Platform Engineer at Acme Corp
2019 - Present
- Ran Kubernetes clusters with Go tooling
`

func newStructurer(t *testing.T, completer services.Completer) services.ProfileStructurer {
	t.Helper()
	s, err := services.NewProfileStructurer(completer, services.StructurerConfig{MaxTokens: 2000, Temperature: 0.2}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestStructure_NoModelDegradesToPatterns(t *testing.T) {
	result := newStructurer(t, nil).Structure(context.Background(), structurerInput, services.StructureOptions{ExtractTechnologies: true})

	assert.Equal(t, models.StructuredByFallback, result.Method)
	assert.ErrorIs(t, result.Degraded, models.ErrStructuringDegraded)
	assert.Empty(t, result.ModelUsed)
	assert.Equal(t, "Jane Doe", result.Profile.PersonalInfo.Name)
	assert.Equal(t, models.SourceFallback, result.Provenance["personalInfo.name"])
	assert.Equal(t, []string{"Go", "Kubernetes"}, result.Profile.Skills)
	require.Len(t, result.Profile.Experience, 1)
	assert.Equal(t, "Acme Corp", result.Profile.Experience[0].Company)
	assert.NotNil(t, result.Profile.Education)
}

func TestStructure_ModelAnswerMergedWithFallback(t *testing.T) {
	llm := &mocks.MockLLMProvider{ProviderName: "gemini"}
	llm.On("Complete", mock.Anything, mock.MatchedBy(func(req services.CompletionRequest) bool {
		return req.JSON && req.MaxTokens == 2000
	})).Return("```json\n"+`{
  "personalInfo": {"name": "Jane A. Doe", "contact": {"email": null, "phone": "+49 30 1234567"}},
  "summary": "Platform engineer.",
  "skills": ["Go", "go", "Kubernetes", " "],
  "experience": [],
  "education": null
}`+"\n```", nil)

	result := newStructurer(t, llm).Structure(context.Background(), structurerInput, services.StructureOptions{ExtractTechnologies: true})

	require.NoError(t, result.Degraded)
	assert.Equal(t, models.StructuredByModel, result.Method)
	assert.Equal(t, "gemini", result.ModelUsed)

	p := result.Profile
	assert.Equal(t, "Jane A. Doe", p.PersonalInfo.Name)
	assert.Equal(t, "jane.doe@example.com", p.PersonalInfo.Contact.Email)
	assert.Equal(t, "+49 30 1234567", p.PersonalInfo.Contact.Phone)
	assert.Equal(t, "Platform engineer.", p.Summary.Text)
	assert.Equal(t, []string{"Go", "Kubernetes"}, p.Skills)
	require.Len(t, p.Experience, 1)

	assert.Equal(t, models.SourceModel, result.Provenance["personalInfo.name"])
	assert.Equal(t, models.SourceFallback, result.Provenance["personalInfo.contact.email"])
	assert.Equal(t, models.SourceModel, result.Provenance["skills"])
	assert.Equal(t, models.SourceFallback, result.Provenance["experience"])
	assert.NotContains(t, result.Provenance, "education")
}

func TestStructure_ModelDatesNormalized(t *testing.T) {
	llm := &mocks.MockLLMProvider{ProviderName: "gemini"}
	llm.On("Complete", mock.Anything, mock.Anything).Return(`{
  "personalInfo": {"name": "Jane Doe"},
  "experience": [
    {"title": "Platform Engineer", "company": "Acme Corp", "startDate": "Jan 2020", "endDate": "Present"},
    {"title": "Intern", "company": "Initech", "startDate": "06/2018", "endDate": "Summer break"}
  ],
  "education": [
    {"institution": "State University", "degree": "BSc", "startDate": "2014", "endDate": "May 2018"}
  ]
}`, nil)

	result := newStructurer(t, llm).Structure(context.Background(), structurerInput, services.StructureOptions{})

	require.NoError(t, result.Degraded)
	require.Len(t, result.Profile.Experience, 2)
	assert.Equal(t, "2020-01", result.Profile.Experience[0].StartDate)
	assert.Empty(t, result.Profile.Experience[0].EndDate)
	assert.Equal(t, "2018-06", result.Profile.Experience[1].StartDate)
	assert.Equal(t, "Summer break", result.Profile.Experience[1].EndDate)
	require.Len(t, result.Profile.Education, 1)
	assert.Equal(t, "2014", result.Profile.Education[0].StartDate)
	assert.Equal(t, "2018-05", result.Profile.Education[0].EndDate)

	// Normalized model dates count toward total experience.
	processed := services.NewPostProcessor(zap.NewNop()).Process(result.Profile)
	assert.Greater(t, processed.Summary.TotalYearsOfExperience, 4.0)
}

func TestStructure_ModelErrorDegrades(t *testing.T) {
	llm := new(mocks.MockLLMProvider)
	llm.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("upstream 500"))

	result := newStructurer(t, llm).Structure(context.Background(), structurerInput, services.StructureOptions{ExtractTechnologies: true})

	assert.Equal(t, models.StructuredByFallback, result.Method)
	assert.ErrorIs(t, result.Degraded, models.ErrStructuringDegraded)
	assert.Contains(t, result.Degraded.Error(), "upstream 500")
	assert.Equal(t, "Jane Doe", result.Profile.PersonalInfo.Name)
}

func TestStructure_SchemaViolationDegrades(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"skills not a list", `{"skills": "Go, Rust"}`},
		{"experience item not an object", `{"experience": ["Acme"]}`},
		{"not json", `I could not read this resume.`},
		{"blank", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := new(mocks.MockLLMProvider)
			llm.On("Complete", mock.Anything, mock.Anything).Return(tt.response, nil)

			result := newStructurer(t, llm).Structure(context.Background(), structurerInput, services.StructureOptions{})

			assert.Equal(t, models.StructuredByFallback, result.Method)
			assert.ErrorIs(t, result.Degraded, models.ErrStructuringDegraded)
		})
	}
}

func TestStructure_TechnologiesDisabled(t *testing.T) {
	llm := new(mocks.MockLLMProvider)
	llm.On("Complete", mock.Anything, mock.Anything).Return(`{"skills": ["Go", "Rust"]}`, nil)

	result := newStructurer(t, llm).Structure(context.Background(), structurerInput, services.StructureOptions{ExtractTechnologies: false})

	assert.Equal(t, models.StructuredByModel, result.Method)
	assert.Equal(t, []string{}, result.Profile.Skills)
	assert.NotContains(t, result.Provenance, "skills")
}

func TestEnhance(t *testing.T) {
	llm := &mocks.MockLLMProvider{ProviderName: "openai"}
	llm.On("Complete", mock.Anything, mock.MatchedBy(func(req services.CompletionRequest) bool {
		return req.MaxTokens == 500 && !req.JSON
	})).Return("  Seasoned platform engineer.  ", nil)

	enh, err := newStructurer(t, llm).Enhance(context.Background(), models.Profile{})

	require.NoError(t, err)
	assert.Equal(t, "Seasoned platform engineer.", enh.Summary)
	assert.Equal(t, "openai", enh.Model)
	assert.False(t, enh.CreatedAt.IsZero())
}

func TestEnhance_Failures(t *testing.T) {
	_, err := newStructurer(t, nil).Enhance(context.Background(), models.Profile{})
	assert.ErrorIs(t, err, models.ErrFeatureUnavailable)

	llm := new(mocks.MockLLMProvider)
	llm.On("Complete", mock.Anything, mock.Anything).Return("", nil)
	_, err = newStructurer(t, llm).Enhance(context.Background(), models.Profile{})
	assert.Error(t, err)
}
