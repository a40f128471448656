package models

type JobDescription struct {
	Title        string                `json:"title"`
	Company      string                `json:"company,omitempty"`
	Description  string                `json:"description,omitempty"`
	Requirements RequirementSet        `json:"requirements"`
	Skills       RequirementSet        `json:"skills"`
	Experience   ExperienceRequirement `json:"experience"`
}

type RequirementSet struct {
	Required  []string `json:"required"`
	Preferred []string `json:"preferred"`
}

// ExperienceRequirement values are in years.
type ExperienceRequirement struct {
	Minimum   float64 `json:"minimum"`
	Preferred float64 `json:"preferred"`
	Level     string  `json:"level,omitempty"`
}
