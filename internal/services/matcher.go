package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"sjaggi1/resume-parser/internal/models"
)

// Category names and weights. Weights sum to 1.
const (
	CategorySkills       = "skills"
	CategoryExperience   = "experience"
	CategoryRequirements = "requirements"
	CategoryPreferred    = "preferred"

	weightSkills       = 0.40
	weightExperience   = 0.25
	weightRequirements = 0.20
	weightPreferred    = 0.15

	strongMatchThreshold   = 80.0
	moderateMatchThreshold = 60.0

	// A requirement is met when this share of its keywords appears in the profile.
	requirementKeywordCoverage = 0.5
)

var skillAliases = map[string]string{
	"golang":              "go",
	"js":                  "javascript",
	"nodejs":              "node.js",
	"node":                "node.js",
	"ts":                  "typescript",
	"postgres":            "postgresql",
	"k8s":                 "kubernetes",
	"ml":                  "machine learning",
	"gcp":                 "google cloud",
	"amazon web services": "aws",
}

var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "with": {}, "for": {}, "of": {}, "in": {}, "to": {},
	"or": {}, "a": {}, "an": {}, "on": {}, "at": {}, "as": {}, "be": {},
	"experience": {}, "years": {}, "year": {}, "knowledge": {}, "strong": {},
	"good": {}, "understanding": {}, "ability": {}, "skills": {}, "working": {},
}

// MatchScorer scores a profile against a job description. It holds no state;
// equal inputs always produce equal results.
type MatchScorer struct{}

func NewMatchScorer() *MatchScorer {
	return &MatchScorer{}
}

type categoryOutcome struct {
	score   float64
	matched []string
	missing []string
	detail  string
}

func (m *MatchScorer) Match(profile models.Profile, job models.JobDescription, opts models.MatchOptions) models.MatchResult {
	held := newSkillSet(profile.Skills)
	corpus := profileKeywords(profile)
	years := profile.Summary.TotalYearsOfExperience

	skills := coverage(job.Skills.Required, func(s string) bool { return held.has(s) || corpus.hasPhrase(s) })
	skills.detail = fmt.Sprintf("%d of %d required skills matched", len(skills.matched), len(job.Skills.Required))

	experience := scoreExperience(years, job.Experience)

	requirements := coverage(job.Requirements.Required, func(r string) bool { return held.has(r) || corpus.covers(r) })
	requirements.detail = fmt.Sprintf("%d of %d requirements met", len(requirements.matched), len(job.Requirements.Required))

	preferredItems := append(append([]string{}, job.Skills.Preferred...), job.Requirements.Preferred...)
	preferred := coverage(preferredItems, func(p string) bool { return held.has(p) || corpus.covers(p) })
	preferred.detail = fmt.Sprintf("%d of %d preferred qualifications met", len(preferred.matched), len(preferredItems))

	outcomes := []struct {
		name    string
		weight  float64
		outcome categoryOutcome
	}{
		{CategorySkills, weightSkills, skills},
		{CategoryExperience, weightExperience, experience},
		{CategoryRequirements, weightRequirements, requirements},
		{CategoryPreferred, weightPreferred, preferred},
	}

	result := models.MatchResult{
		CategoryScores: make(map[string]models.CategoryScore, len(outcomes)),
		StrengthAreas:  []string{},
		GapAnalysis: models.GapAnalysis{
			CriticalGaps: []models.Gap{},
			MinorGaps:    []models.Gap{},
		},
	}

	overall := 0.0
	for _, c := range outcomes {
		overall += c.outcome.score * c.weight

		cs := models.CategoryScore{Score: round1(c.outcome.score), Weight: c.weight}
		if opts.DetailedBreakdown {
			cs.Explanation = c.outcome.detail
			cs.Matched = c.outcome.matched
			cs.Missing = c.outcome.missing
		}
		result.CategoryScores[c.name] = cs

		if c.outcome.score >= strongMatchThreshold {
			result.StrengthAreas = append(result.StrengthAreas, strengthLabel(c.name, c.outcome))
		}
	}

	for _, s := range skills.missing {
		result.GapAnalysis.CriticalGaps = append(result.GapAnalysis.CriticalGaps, models.Gap{
			Category:   CategorySkills,
			Missing:    s,
			Severity:   models.SeverityCritical,
			Suggestion: fmt.Sprintf("Gain hands-on experience with %s", s),
		})
	}
	for _, r := range requirements.missing {
		result.GapAnalysis.CriticalGaps = append(result.GapAnalysis.CriticalGaps, models.Gap{
			Category:   CategoryRequirements,
			Missing:    r,
			Severity:   models.SeverityCritical,
			Suggestion: fmt.Sprintf("Highlight or build experience covering: %s", r),
		})
	}
	if job.Experience.Minimum > 0 && years < job.Experience.Minimum {
		result.GapAnalysis.CriticalGaps = append(result.GapAnalysis.CriticalGaps, models.Gap{
			Category:   CategoryExperience,
			Missing:    fmt.Sprintf("%.1f years of experience (has %.1f)", job.Experience.Minimum, years),
			Severity:   models.SeverityCritical,
			Suggestion: fmt.Sprintf("Roles typically require %.1f more years of relevant experience", job.Experience.Minimum-years),
		})
	}
	for _, p := range preferred.missing {
		result.GapAnalysis.MinorGaps = append(result.GapAnalysis.MinorGaps, models.Gap{
			Category:   CategoryPreferred,
			Missing:    p,
			Severity:   models.SeverityMinor,
			Suggestion: fmt.Sprintf("Consider adding %s to strengthen the application", p),
		})
	}

	result.OverallScore = round1(clamp(overall, 0, 100))
	result.Recommendation = recommendationFor(result.OverallScore)
	result.Confidence = matchConfidence(profile)

	if opts.IncludeExplanation {
		result.Explanation = explain(result, job)
	}

	return result
}

func coverage(items []string, met func(string) bool) categoryOutcome {
	var out categoryOutcome
	total := 0
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		total++
		if met(item) {
			out.matched = append(out.matched, item)
		} else {
			out.missing = append(out.missing, item)
		}
	}
	if total == 0 {
		out.score = 100
		return out
	}
	out.score = float64(len(out.matched)) / float64(total) * 100
	return out
}

// scoreExperience grows monotonically with years: up to 80 while below the
// minimum, then 80 to 100 between the minimum and the preferred level.
func scoreExperience(years float64, req models.ExperienceRequirement) categoryOutcome {
	out := categoryOutcome{detail: fmt.Sprintf("%.1f years of experience", years)}
	minimum, preferred := req.Minimum, req.Preferred

	switch {
	case minimum <= 0 && preferred <= 0:
		out.score = 100
	case years < minimum:
		out.score = 80 * math.Max(years, 0) / minimum
		out.detail = fmt.Sprintf("%.1f years of experience, %.1f required", years, minimum)
	case preferred > minimum:
		out.score = 80 + 20*math.Min(1, (years-math.Max(minimum, 0))/(preferred-math.Max(minimum, 0)))
		out.detail = fmt.Sprintf("%.1f years of experience, %.1f preferred", years, preferred)
	default:
		out.score = 100
	}
	return out
}

func strengthLabel(category string, o categoryOutcome) string {
	switch category {
	case CategorySkills:
		if len(o.matched) > 0 {
			return fmt.Sprintf("Required skills: %s", strings.Join(o.matched, ", "))
		}
		return "Required skills"
	case CategoryExperience:
		return "Experience level"
	case CategoryRequirements:
		return "Role requirements"
	default:
		return "Preferred qualifications"
	}
}

func recommendationFor(score float64) models.Recommendation {
	switch {
	case score >= strongMatchThreshold:
		return models.RecommendationStrong
	case score >= moderateMatchThreshold:
		return models.RecommendationModerate
	default:
		return models.RecommendationWeak
	}
}

// matchConfidence reflects how much of the profile the score could rely on.
// Pattern-extracted profiles are trusted less.
func matchConfidence(profile models.Profile) float64 {
	confidence := 0.5
	if cs := profile.ConfidenceScores; cs != nil {
		confidence = (cs.Skills + cs.Experience + cs.Education) / 3
	}
	if profile.Metadata.ParsingMethod == models.StructuredByFallback {
		confidence *= 0.8
	}
	return math.Round(clamp(confidence, 0, 1)*100) / 100
}

func explain(r models.MatchResult, job models.JobDescription) string {
	names := make([]string, 0, len(r.CategoryScores))
	for name := range r.CategoryScores {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %.1f", name, r.CategoryScores[name].Score))
	}

	title := job.Title
	if title == "" {
		title = "the role"
	}
	return fmt.Sprintf("Overall %.1f (%s) for %s. Category scores: %s. %d critical and %d minor gaps.",
		r.OverallScore, r.Recommendation, title, strings.Join(parts, ", "),
		len(r.GapAnalysis.CriticalGaps), len(r.GapAnalysis.MinorGaps))
}

type skillSet map[string]struct{}

func newSkillSet(skills []string) skillSet {
	set := make(skillSet, len(skills))
	for _, s := range skills {
		if key := canonicalSkill(s); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

func (s skillSet) has(skill string) bool {
	_, ok := s[canonicalSkill(skill)]
	return ok
}

func canonicalSkill(s string) string {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if alias, ok := skillAliases[key]; ok {
		return alias
	}
	return key
}

// keywordSet holds every token and canonical skill found in a profile.
type keywordSet struct {
	tokens map[string]struct{}
	text   string
}

func profileKeywords(p models.Profile) keywordSet {
	var b strings.Builder
	write := func(s string) {
		b.WriteString(strings.ToLower(s))
		b.WriteString(" \n ")
	}

	write(p.Summary.Text)
	for _, s := range p.Skills {
		write(s)
		write(canonicalSkill(s))
	}
	for _, e := range p.Experience {
		write(e.Title)
		write(e.Company)
		for _, d := range e.Description {
			write(d)
		}
	}
	for _, e := range p.Education {
		write(e.Degree)
		write(e.FieldOfStudy)
		write(e.Institution)
	}

	text := b.String()
	tokens := make(map[string]struct{})
	for _, t := range tokenize(text) {
		tokens[t] = struct{}{}
	}
	return keywordSet{tokens: tokens, text: text}
}

// hasPhrase reports whether every keyword of phrase appears in the profile.
func (k keywordSet) hasPhrase(phrase string) bool {
	words := tokenize(canonicalSkill(phrase))
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if _, ok := k.tokens[w]; !ok {
			return false
		}
	}
	return true
}

func (k keywordSet) covers(requirement string) bool {
	words := keywords(requirement)
	if len(words) == 0 {
		return false
	}
	found := 0
	for _, w := range words {
		if _, ok := k.tokens[w]; ok {
			found++
		}
	}
	return float64(found)/float64(len(words)) >= requirementKeywordCoverage
}

// tokenize keeps '+', '#' and inner dots so "c++", "c#" and "node.js" survive.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "."); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func keywords(s string) []string {
	var out []string
	for _, t := range tokenize(s) {
		if len(t) < 2 {
			continue
		}
		if _, stop := stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
