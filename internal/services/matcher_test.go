package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/services"
)

func matchProfile(years float64, skills ...string) models.Profile {
	return models.Profile{
		Summary: models.Summary{
			Text:                   "Built distributed systems for payments.",
			TotalYearsOfExperience: years,
		},
		Skills: skills,
		Experience: []models.ExperienceEntry{
			{Title: "Backend Engineer", Company: "Acme", Description: []string{"Operated PostgreSQL clusters"}},
		},
	}
}

func backendJob() models.JobDescription {
	return models.JobDescription{
		Title:        "Senior Backend Engineer",
		Skills:       models.RequirementSet{Required: []string{"Golang", "Kubernetes", "Rust"}, Preferred: []string{"Terraform"}},
		Requirements: models.RequirementSet{Required: []string{"Experience building distributed systems"}},
		Experience:   models.ExperienceRequirement{Minimum: 3, Preferred: 8},
	}
}

func TestMatch_Scores(t *testing.T) {
	result := services.NewMatchScorer().Match(matchProfile(6, "Go", "Kubernetes", "PostgreSQL"), backendJob(), models.MatchOptions{})

	assert.Equal(t, 66.7, result.CategoryScores[services.CategorySkills].Score)
	assert.Equal(t, 92.0, result.CategoryScores[services.CategoryExperience].Score)
	assert.Equal(t, 100.0, result.CategoryScores[services.CategoryRequirements].Score)
	assert.Equal(t, 0.0, result.CategoryScores[services.CategoryPreferred].Score)
	assert.Equal(t, 0.40, result.CategoryScores[services.CategorySkills].Weight)

	assert.Equal(t, 69.7, result.OverallScore)
	assert.Equal(t, models.RecommendationModerate, result.Recommendation)
	assert.Equal(t, []string{"Experience level", "Role requirements"}, result.StrengthAreas)

	require.Len(t, result.GapAnalysis.CriticalGaps, 1)
	assert.Equal(t, "Rust", result.GapAnalysis.CriticalGaps[0].Missing)
	assert.Equal(t, models.SeverityCritical, result.GapAnalysis.CriticalGaps[0].Severity)
	require.Len(t, result.GapAnalysis.MinorGaps, 1)
	assert.Equal(t, "Terraform", result.GapAnalysis.MinorGaps[0].Missing)

	assert.Empty(t, result.Explanation)
	assert.Empty(t, result.CategoryScores[services.CategorySkills].Matched)
}

func TestMatch_EmptyJobIsFullScore(t *testing.T) {
	result := services.NewMatchScorer().Match(models.Profile{}, models.JobDescription{Title: "Anything"}, models.MatchOptions{})

	assert.Equal(t, 100.0, result.OverallScore)
	assert.Equal(t, models.RecommendationStrong, result.Recommendation)
	assert.Len(t, result.StrengthAreas, 4)
	assert.Empty(t, result.GapAnalysis.CriticalGaps)
	assert.NotNil(t, result.GapAnalysis.MinorGaps)
}

func TestMatch_ExperienceBelowMinimumIsCriticalGap(t *testing.T) {
	result := services.NewMatchScorer().Match(matchProfile(1.5, "Go", "Kubernetes", "Rust"), backendJob(), models.MatchOptions{})

	assert.Equal(t, 40.0, result.CategoryScores[services.CategoryExperience].Score)

	var categories []string
	for _, g := range result.GapAnalysis.CriticalGaps {
		categories = append(categories, g.Category)
	}
	assert.Contains(t, categories, services.CategoryExperience)
}

func TestMatch_MonotonicInYears(t *testing.T) {
	scorer := services.NewMatchScorer()
	job := backendJob()

	previous := -1.0
	for years := 0.0; years <= 15; years += 0.5 {
		score := scorer.Match(matchProfile(years, "Go"), job, models.MatchOptions{}).OverallScore
		assert.GreaterOrEqual(t, score, previous, "score dropped at %.1f years", years)
		previous = score
	}
}

func TestMatch_MonotonicInCandidateSkills(t *testing.T) {
	scorer := services.NewMatchScorer()
	job := backendJob()

	fewer := scorer.Match(matchProfile(4, "Go"), job, models.MatchOptions{}).OverallScore
	more := scorer.Match(matchProfile(4, "Go", "Rust", "Terraform"), job, models.MatchOptions{}).OverallScore

	assert.Greater(t, more, fewer)
}

func TestMatch_HeldSkillInRequiredListNeverLowersScore(t *testing.T) {
	scorer := services.NewMatchScorer()
	profile := matchProfile(4, "Go", "Kubernetes", "PostgreSQL")

	tests := []struct {
		name     string
		required []string
		added    string
	}{
		{name: "empty required list", required: nil, added: "Go"},
		{name: "all missing", required: []string{"Rust", "Elixir"}, added: "Kubernetes"},
		{name: "partly matched", required: []string{"Golang", "Rust"}, added: "PostgreSQL"},
		{name: "already listed", required: []string{"Kubernetes", "Rust"}, added: "Kubernetes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := backendJob()
			job.Skills.Required = tt.required
			before := scorer.Match(profile, job, models.MatchOptions{}).OverallScore

			job.Skills.Required = append(append([]string{}, tt.required...), tt.added)
			after := scorer.Match(profile, job, models.MatchOptions{}).OverallScore

			assert.GreaterOrEqual(t, after, before)
		})
	}
}

func TestMatch_Deterministic(t *testing.T) {
	scorer := services.NewMatchScorer()
	profile := matchProfile(6, "Go", "Kubernetes")
	opts := models.MatchOptions{IncludeExplanation: true, DetailedBreakdown: true}

	assert.Equal(t, scorer.Match(profile, backendJob(), opts), scorer.Match(profile, backendJob(), opts))
}

func TestMatch_DetailedBreakdownAndExplanation(t *testing.T) {
	result := services.NewMatchScorer().Match(matchProfile(6, "Go", "Kubernetes"), backendJob(), models.MatchOptions{
		IncludeExplanation: true,
		DetailedBreakdown:  true,
	})

	skills := result.CategoryScores[services.CategorySkills]
	assert.Equal(t, []string{"Golang", "Kubernetes"}, skills.Matched)
	assert.Equal(t, []string{"Rust"}, skills.Missing)
	assert.Equal(t, "2 of 3 required skills matched", skills.Explanation)

	assert.Contains(t, result.Explanation, "Senior Backend Engineer")
	assert.Contains(t, result.Explanation, "1 critical and 1 minor gaps")
}

func TestMatch_Confidence(t *testing.T) {
	scorer := services.NewMatchScorer()
	job := models.JobDescription{Title: "x"}

	assert.Equal(t, 0.5, scorer.Match(models.Profile{}, job, models.MatchOptions{}).Confidence)

	fallback := models.Profile{Metadata: models.Metadata{ParsingMethod: models.StructuredByFallback}}
	assert.Equal(t, 0.4, scorer.Match(fallback, job, models.MatchOptions{}).Confidence)

	scored := models.Profile{ConfidenceScores: &models.ConfidenceScores{Skills: 0.75, Experience: 0.85, Education: 0.80}}
	assert.Equal(t, 0.8, scorer.Match(scored, job, models.MatchOptions{}).Confidence)
}

func TestMatch_RequirementKeywordCoverage(t *testing.T) {
	job := models.JobDescription{
		Title:        "x",
		Requirements: models.RequirementSet{Required: []string{"PostgreSQL administration", "Mobile iOS development"}},
	}

	result := services.NewMatchScorer().Match(matchProfile(0), job, models.MatchOptions{DetailedBreakdown: true})

	req := result.CategoryScores[services.CategoryRequirements]
	assert.Equal(t, []string{"PostgreSQL administration"}, req.Matched)
	assert.Equal(t, []string{"Mobile iOS development"}, req.Missing)
	assert.Equal(t, 50.0, req.Score)
}
