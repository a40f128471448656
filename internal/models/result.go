package models

import "time"

type UploadResponse struct {
	ResumeID string       `json:"resumeId"`
	Status   ResumeStatus `json:"status"`
	Message  string       `json:"message"`
	FileName string       `json:"fileName"`
	FileHash string       `json:"fileHash"`
}

type ResumeResponse struct {
	ResumeID     string       `json:"resumeId"`
	Status       ResumeStatus `json:"status"`
	Profile      *Profile     `json:"data,omitempty"`
	ErrorCode    string       `json:"errorCode,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
}

type StatusResponse struct {
	ResumeID       string       `json:"resumeId"`
	Status         ResumeStatus `json:"status"`
	Progress       int          `json:"progress"`
	CurrentStep    string       `json:"currentStep,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	CompletedAt    *time.Time   `json:"completedAt,omitempty"`
	ProcessingTime float64      `json:"processingTime"`
	ErrorCode      string       `json:"errorCode,omitempty"`
	ErrorMessage   string       `json:"errorMessage,omitempty"`
}

type MatchRequest struct {
	JobDescription *JobDescription `json:"jobDescription"`
	Options        MatchOptions    `json:"options"`
}

type MatchResponse struct {
	MatchID         string      `json:"matchId"`
	ResumeID        string      `json:"resumeId"`
	JobTitle        string      `json:"jobTitle"`
	MatchingResults MatchResult `json:"matchingResults"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SearchHit struct {
	ResumeID string  `json:"resumeId"`
	Score    float32 `json:"score"`
	Name     string  `json:"name,omitempty"`
	Snippet  string  `json:"snippet"`
}

type SearchResponse struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}

type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Environment string            `json:"environment"`
	Uptime      float64           `json:"uptime"`
	Timestamp   time.Time         `json:"timestamp"`
	Services    map[string]string `json:"services"`
}
