package services

import (
	"fmt"
	"strings"

	"sjaggi1/resume-parser/internal/models"
)

const (
	// maxPromptResumeRunes keeps long resumes inside the model's context window.
	maxPromptResumeRunes = 12000

	// EmptySummaryPlaceholder is summarized when a profile has no textual signal.
	EmptySummaryPlaceholder = "This resume contains structured information but no text summary."
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildProfileExtractionPrompt asks the model for the profile as a JSON object
// matching profileSchema.
func (pb *PromptBuilder) BuildProfileExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert resume parser. Extract the candidate's information from the resume below.

RESUME:
%s

Return ONLY a JSON object in the following format. Omit any field you cannot find instead of guessing:
{
  "personalInfo": {
    "name": "<full name>",
    "contact": {
      "email": "<email>",
      "phone": "<phone>",
      "linkedin": "<linkedin url>",
      "location": "<city, country>",
      "portfolio": "<personal site or github url>"
    }
  },
  "summary": "<2-3 sentence professional summary>",
  "skills": ["<skill>", "..."],
  "experience": [
    {
      "title": "<job title>",
      "company": "<company>",
      "location": "<location>",
      "startDate": "<YYYY-MM>",
      "endDate": "<YYYY-MM, omit if current position>",
      "description": ["<responsibility or achievement>"]
    }
  ],
  "education": [
    {
      "institution": "<school>",
      "degree": "<degree>",
      "fieldOfStudy": "<field>",
      "startDate": "<YYYY-MM>",
      "endDate": "<YYYY-MM>"
    }
  ]
}

Dates must use the YYYY-MM format. Do not invent information that is not in the resume.`,
		truncateRunes(resumeText, maxPromptResumeRunes))
}

// BuildSummaryPrompt concatenates whatever textual signal the profile has.
func (pb *PromptBuilder) BuildSummaryPrompt(profile *models.Profile) string {
	var b strings.Builder

	if profile.Summary.Text != "" {
		b.WriteString(profile.Summary.Text)
		b.WriteString("\n")
	}
	for _, exp := range profile.Experience {
		parts := []string{exp.Title, exp.Company}
		parts = append(parts, exp.Description...)
		b.WriteString(joinNonEmpty(parts, ", "))
		b.WriteString("\n")
	}
	for _, edu := range profile.Education {
		b.WriteString(joinNonEmpty([]string{edu.Degree, edu.FieldOfStudy, edu.Institution}, ", "))
		b.WriteString("\n")
	}
	if len(profile.Skills) > 0 {
		b.WriteString("Skills: ")
		b.WriteString(strings.Join(profile.Skills, ", "))
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		text = EmptySummaryPlaceholder
	}

	return "Summarize this candidate profile concisely: " + text
}

// BuildSearchDocument is the text embedded for similar-candidate search.
func (pb *PromptBuilder) BuildSearchDocument(profile *models.Profile) string {
	var b strings.Builder

	if profile.PersonalInfo.Name != "" {
		fmt.Fprintf(&b, "Candidate: %s\n\n", profile.PersonalInfo.Name)
	}
	if profile.Summary.Text != "" {
		fmt.Fprintf(&b, "%s\n\n", profile.Summary.Text)
	}
	if len(profile.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n\n", strings.Join(profile.Skills, ", "))
	}
	for _, exp := range profile.Experience {
		fmt.Fprintf(&b, "%s\n", joinNonEmpty([]string{exp.Title, exp.Company}, " at "))
		for _, d := range exp.Description {
			fmt.Fprintf(&b, "%s\n", d)
		}
		b.WriteString("\n")
	}
	for _, edu := range profile.Education {
		fmt.Fprintf(&b, "%s\n\n", joinNonEmpty([]string{edu.Degree, edu.FieldOfStudy, edu.Institution}, ", "))
	}

	return strings.TrimSpace(b.String())
}

func joinNonEmpty(parts []string, sep string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
