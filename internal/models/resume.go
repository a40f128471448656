package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// NotFound is the placeholder used by the flattened view for missing values.
const NotFound = "Not found"

type StructuringMethod string

const (
	StructuredByModel    StructuringMethod = "model"
	StructuredByFallback StructuringMethod = "fallback"
)

// FieldSource records which path produced a profile field.
type FieldSource string

const (
	SourceModel    FieldSource = "model"
	SourceFallback FieldSource = "fallback"
	SourceUser     FieldSource = "user"
)

type Profile struct {
	PersonalInfo     PersonalInfo      `json:"personalInfo"`
	Summary          Summary           `json:"summary"`
	Experience       []ExperienceEntry `json:"experience"`
	Education        []EducationEntry  `json:"education"`
	Skills           []string          `json:"skills"`
	RawText          string            `json:"rawText,omitempty"`
	Metadata         Metadata          `json:"metadata"`
	AIEnhancements   *AIEnhancements   `json:"aiEnhancements,omitempty"`
	ConfidenceScores *ConfidenceScores `json:"confidenceScores,omitempty"`

	// Flattened view derived by post-processing.
	Name        string       `json:"name,omitempty"`
	ContactInfo *FlatContact `json:"contact_info,omitempty"`
}

type PersonalInfo struct {
	Name    string  `json:"name,omitempty"`
	Contact Contact `json:"contact"`
}

type Contact struct {
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	LinkedIn   string `json:"linkedin,omitempty"`
	Location   string `json:"location,omitempty"`
	Portfolio  string `json:"portfolio,omitempty"`
	EmailValid *bool  `json:"emailValid,omitempty"`
	PhoneValid *bool  `json:"phoneValid,omitempty"`
}

type FlatContact struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LinkedIn  string `json:"linkedin"`
	Location  string `json:"location"`
	Portfolio string `json:"portfolio"`
}

// ExperienceEntry dates use YYYY-MM. An empty EndDate means a current position.
type ExperienceEntry struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location,omitempty"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate,omitempty"`
	Description []string `json:"description,omitempty"`
}

type EducationEntry struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
}

// Summary always decodes to an object. A bare JSON string becomes Text and any
// other non-object value yields the zero Summary.
type Summary struct {
	Text                   string           `json:"text"`
	TotalYearsOfExperience float64          `json:"totalYearsOfExperience"`
	Insights               *SummaryInsights `json:"insights,omitempty"`
}

type SummaryInsights struct {
	CareerLevel string `json:"careerLevel"`
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = Summary{}
		return nil
	}

	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Summary{Text: text}
		return nil
	case '{':
		type plain Summary
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*s = Summary(p)
		return nil
	default:
		*s = Summary{}
		return nil
	}
}

type Metadata struct {
	FileName         string                 `json:"fileName"`
	FileSize         int64                  `json:"fileSize"`
	FileType         string                 `json:"fileType"`
	FileHash         string                 `json:"fileHash"`
	UploadedAt       time.Time              `json:"uploadedAt"`
	ProcessedAt      *time.Time             `json:"processedAt,omitempty"`
	ProcessingTime   float64                `json:"processingTime"`
	RawTextLength    int                    `json:"rawTextLength"`
	ExtractionMethod ExtractionMethod       `json:"extractionMethod,omitempty"`
	ParsingMethod    StructuringMethod      `json:"parsingMethod,omitempty"`
	DegradedReason   string                 `json:"degradedReason,omitempty"`
	ModelUsed        string                 `json:"modelUsed,omitempty"`
	FieldProvenance  map[string]FieldSource `json:"fieldProvenance,omitempty"`
}

type AIEnhancements struct {
	Summary   string    `json:"summary"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ConfidenceScores struct {
	Overall    float64 `json:"overall"`
	Contact    float64 `json:"contact"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	Skills     float64 `json:"skills"`
}

// Clone returns a deep copy so later stages never alias an earlier stage's value.
func (p Profile) Clone() Profile {
	out := p

	if p.PersonalInfo.Contact.EmailValid != nil {
		v := *p.PersonalInfo.Contact.EmailValid
		out.PersonalInfo.Contact.EmailValid = &v
	}
	if p.PersonalInfo.Contact.PhoneValid != nil {
		v := *p.PersonalInfo.Contact.PhoneValid
		out.PersonalInfo.Contact.PhoneValid = &v
	}
	if p.Summary.Insights != nil {
		v := *p.Summary.Insights
		out.Summary.Insights = &v
	}

	if p.Experience != nil {
		out.Experience = make([]ExperienceEntry, len(p.Experience))
		for i, e := range p.Experience {
			e.Description = append([]string(nil), e.Description...)
			out.Experience[i] = e
		}
	}
	if p.Education != nil {
		out.Education = append([]EducationEntry(nil), p.Education...)
	}
	if p.Skills != nil {
		out.Skills = append([]string(nil), p.Skills...)
	}

	if p.Metadata.ProcessedAt != nil {
		v := *p.Metadata.ProcessedAt
		out.Metadata.ProcessedAt = &v
	}
	if p.Metadata.FieldProvenance != nil {
		out.Metadata.FieldProvenance = make(map[string]FieldSource, len(p.Metadata.FieldProvenance))
		for k, v := range p.Metadata.FieldProvenance {
			out.Metadata.FieldProvenance[k] = v
		}
	}
	if p.AIEnhancements != nil {
		v := *p.AIEnhancements
		out.AIEnhancements = &v
	}
	if p.ConfidenceScores != nil {
		v := *p.ConfidenceScores
		out.ConfidenceScores = &v
	}
	if p.ContactInfo != nil {
		v := *p.ContactInfo
		out.ContactInfo = &v
	}

	return out
}
