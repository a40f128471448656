package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/models"
)

func newTestPostProcessor() *PostProcessor {
	p := NewPostProcessor(zap.NewNop())
	p.now = func() time.Time { return time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC) }
	return p
}

func TestTotalExperience(t *testing.T) {
	p := newTestPostProcessor()

	tests := []struct {
		name    string
		entries []models.ExperienceEntry
		want    float64
	}{
		{"current role", []models.ExperienceEntry{{StartDate: "2018-01"}}, 6.0},
		{"no entries", nil, 0.0},
		{"year only dates span the whole year", []models.ExperienceEntry{{StartDate: "2020", EndDate: "2020"}}, 0.9},
		{"end before start counts zero", []models.ExperienceEntry{{StartDate: "2022-06", EndDate: "2021-01"}}, 0.0},
		{"unparseable entry skipped", []models.ExperienceEntry{
			{StartDate: "sometime", EndDate: "2020-01"},
			{StartDate: "2019-01", EndDate: "2020-01"},
		}, 1.0},
		{"missing start skipped", []models.ExperienceEntry{{EndDate: "2020-01"}}, 0.0},
		{"sums entries", []models.ExperienceEntry{
			{StartDate: "2015-01", EndDate: "2017-07"},
			{StartDate: "2017-07", EndDate: "2020-01"},
		}, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.TotalExperience(tt.entries))
		})
	}
}

func TestCareerLevel(t *testing.T) {
	assert.Equal(t, CareerLevelEntry, CareerLevel(0))
	assert.Equal(t, CareerLevelEntry, CareerLevel(1.9))
	assert.Equal(t, CareerLevelMid, CareerLevel(2))
	assert.Equal(t, CareerLevelSenior, CareerLevel(5))
	assert.Equal(t, CareerLevelLead, CareerLevel(10))
}

func TestProcess_FlagsAndScores(t *testing.T) {
	profile := models.Profile{
		PersonalInfo: models.PersonalInfo{
			Name: "Jane Doe",
			Contact: models.Contact{
				Email: "jane@example.com",
				Phone: "12-34",
			},
		},
		Summary:    models.Summary{Text: "  Engineer.  "},
		Experience: []models.ExperienceEntry{{Title: "Engineer", StartDate: "2018-01"}},
		Skills:     []string{"Go"},
	}

	out := newTestPostProcessor().Process(profile)

	require.NotNil(t, out.PersonalInfo.Contact.EmailValid)
	assert.True(t, *out.PersonalInfo.Contact.EmailValid)
	require.NotNil(t, out.PersonalInfo.Contact.PhoneValid)
	assert.False(t, *out.PersonalInfo.Contact.PhoneValid)

	assert.Equal(t, "Engineer.", out.Summary.Text)
	assert.Equal(t, 6.0, out.Summary.TotalYearsOfExperience)
	require.NotNil(t, out.Summary.Insights)
	assert.Equal(t, CareerLevelSenior, out.Summary.Insights.CareerLevel)

	require.NotNil(t, out.ConfidenceScores)
	assert.Equal(t, 0.85, out.ConfidenceScores.Overall)
	assert.Equal(t, 0.90, out.ConfidenceScores.Contact)
	assert.Equal(t, 0.85, out.ConfidenceScores.Experience)
	assert.Equal(t, 0.4, out.ConfidenceScores.Education)
	assert.Equal(t, 0.75, out.ConfidenceScores.Skills)

	assert.Equal(t, "Jane Doe", out.Name)
	require.NotNil(t, out.ContactInfo)
	assert.Equal(t, "jane@example.com", out.ContactInfo.Email)
	assert.Equal(t, models.NotFound, out.ContactInfo.LinkedIn)

	// The input is never mutated.
	assert.Nil(t, profile.PersonalInfo.Contact.EmailValid)
	assert.Nil(t, profile.ConfidenceScores)
}

func TestProcess_EmptyProfile(t *testing.T) {
	out := newTestPostProcessor().Process(models.Profile{})

	assert.Nil(t, out.PersonalInfo.Contact.EmailValid)
	assert.Nil(t, out.PersonalInfo.Contact.PhoneValid)
	assert.Equal(t, 0.0, out.Summary.TotalYearsOfExperience)
	assert.Equal(t, CareerLevelEntry, out.Summary.Insights.CareerLevel)
	assert.Equal(t, 0.5, out.ConfidenceScores.Contact)
	assert.Equal(t, 0.3, out.ConfidenceScores.Experience)
	assert.Equal(t, 0.2, out.ConfidenceScores.Skills)
	assert.Equal(t, models.NotFound, out.Name)
	assert.Equal(t, models.NotFound, out.ContactInfo.Email)
}

func TestProcess_Idempotent(t *testing.T) {
	p := newTestPostProcessor()
	profile := models.Profile{
		PersonalInfo: models.PersonalInfo{Contact: models.Contact{Email: "bad@", Phone: "+4915112345678"}},
		Experience:   []models.ExperienceEntry{{StartDate: "2021-05", EndDate: "2023-05"}},
		Education:    []models.EducationEntry{{Degree: "BSc"}},
	}

	once := p.Process(profile)
	twice := p.Process(once)

	assert.Equal(t, once, twice)
	assert.False(t, *once.PersonalInfo.Contact.EmailValid)
	assert.True(t, *once.PersonalInfo.Contact.PhoneValid)
	assert.Equal(t, 2.0, once.Summary.TotalYearsOfExperience)
}

func TestProcess_ClearsValidityForBlankContact(t *testing.T) {
	p := newTestPostProcessor()
	profile := p.Process(models.Profile{PersonalInfo: models.PersonalInfo{Contact: models.Contact{
		Email: "jane@example.com",
		Phone: "+15551234567",
	}}})
	require.NotNil(t, profile.PersonalInfo.Contact.EmailValid)
	require.NotNil(t, profile.PersonalInfo.Contact.PhoneValid)

	profile.PersonalInfo.Contact.Email = ""
	profile.PersonalInfo.Contact.Phone = ""
	out := p.Process(profile)

	assert.Nil(t, out.PersonalInfo.Contact.EmailValid)
	assert.Nil(t, out.PersonalInfo.Contact.PhoneValid)
	assert.Equal(t, models.NotFound, out.ContactInfo.Email)
}
