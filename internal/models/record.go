package models

import (
	"time"

	"gorm.io/datatypes"
)

type ResumeStatus string

const (
	StatusQueued     ResumeStatus = "queued"
	StatusProcessing ResumeStatus = "processing"
	StatusCompleted  ResumeStatus = "completed"
	StatusFailed     ResumeStatus = "failed"
)

// ParseOptions are the caller's per-upload switches.
type ParseOptions struct {
	ExtractTechnologies bool `json:"extractTechnologies"`
	EnhanceWithAI       bool `json:"enhanceWithAI"`
	PerformOCR          bool `json:"performOCR"`
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		ExtractTechnologies: true,
		EnhanceWithAI:       true,
		PerformOCR:          true,
	}
}

// ResumeRecord is the stored unit keyed by the generated resume ID.
type ResumeRecord struct {
	ID               string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	Status           ResumeStatus     `gorm:"type:varchar(20);not null;default:'queued';index" json:"status"`
	CurrentStep      string           `gorm:"type:varchar(50)" json:"currentStep,omitempty"`
	Progress         int              `json:"progress"`
	FileName         string           `gorm:"type:text" json:"fileName"`
	FileExtension    string           `gorm:"type:varchar(10)" json:"fileExtension"`
	FileSize         int64            `json:"fileSize"`
	FileHash         string           `gorm:"type:varchar(64);index" json:"fileHash"`
	StorageKey       string           `gorm:"type:text" json:"-"`
	Options          datatypes.JSON   `json:"options"`
	ExtractedText    string           `gorm:"type:text" json:"-"`
	ExtractionMethod ExtractionMethod `gorm:"type:varchar(20)" json:"extractionMethod,omitempty"`
	Profile          *Profile         `gorm:"type:text;serializer:json" json:"profile,omitempty"`
	ErrorCode        string           `gorm:"type:varchar(40)" json:"errorCode,omitempty"`
	ErrorMessage     string           `gorm:"type:text" json:"errorMessage,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	CompletedAt      *time.Time       `json:"completedAt,omitempty"`
}

func (ResumeRecord) TableName() string {
	return "resumes"
}
