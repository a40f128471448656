package models

type Recommendation string

const (
	RecommendationStrong   Recommendation = "strong match"
	RecommendationModerate Recommendation = "moderate match"
	RecommendationWeak     Recommendation = "weak match"
)

type GapSeverity string

const (
	SeverityCritical GapSeverity = "critical"
	SeverityMinor    GapSeverity = "minor"
)

// MatchOptions only change how much of the result is reported.
type MatchOptions struct {
	IncludeExplanation bool `json:"includeExplanation"`
	DetailedBreakdown  bool `json:"detailedBreakdown"`
}

type MatchResult struct {
	OverallScore   float64                  `json:"overallScore"`
	Confidence     float64                  `json:"confidence"`
	CategoryScores map[string]CategoryScore `json:"categoryScores"`
	StrengthAreas  []string                 `json:"strengthAreas"`
	GapAnalysis    GapAnalysis              `json:"gapAnalysis"`
	Recommendation Recommendation           `json:"recommendation"`
	Explanation    string                   `json:"explanation,omitempty"`
}

type CategoryScore struct {
	Score       float64  `json:"score"`
	Weight      float64  `json:"weight"`
	Explanation string   `json:"explanation,omitempty"`
	Matched     []string `json:"matched,omitempty"`
	Missing     []string `json:"missing,omitempty"`
}

type GapAnalysis struct {
	CriticalGaps []Gap `json:"criticalGaps"`
	MinorGaps    []Gap `json:"minorGaps"`
}

type Gap struct {
	Category   string      `json:"category"`
	Missing    string      `json:"missing"`
	Severity   GapSeverity `json:"severity"`
	Suggestion string      `json:"suggestion"`
}
