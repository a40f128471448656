package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"sjaggi1/resume-parser/internal/models"
)

type memoryResumeRepository struct {
	mu      sync.RWMutex
	records map[string]*models.ResumeRecord
}

// NewMemoryResumeRepository keeps records for the lifetime of the process.
func NewMemoryResumeRepository() ResumeRepository {
	return &memoryResumeRepository{
		records: make(map[string]*models.ResumeRecord),
	}
}

func (m *memoryResumeRepository) Create(rec *models.ResumeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.ID]; exists {
		return fmt.Errorf("failed to create resume: duplicate id %s", rec.ID)
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.records[rec.ID] = cloneRecord(rec)
	return nil
}

func (m *memoryResumeRepository) FindByID(id string) (*models.ResumeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("resume %s: %w", id, models.ErrNotFound)
	}
	return cloneRecord(rec), nil
}

func (m *memoryResumeRepository) UpdateStatus(id string, status models.ResumeStatus, step string, progress int) error {
	return m.mutate(id, func(rec *models.ResumeRecord) {
		rec.Status = status
		rec.CurrentStep = step
		rec.Progress = progress
	})
}

func (m *memoryResumeRepository) ClaimForProcessing(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok || rec.Status != models.StatusQueued {
		return false, nil
	}
	rec.Status = models.StatusProcessing
	rec.CurrentStep = "extracting"
	rec.Progress = 10
	rec.UpdatedAt = time.Now()
	return true, nil
}

func (m *memoryResumeRepository) UpdateExtraction(id string, text string, method models.ExtractionMethod) error {
	return m.mutate(id, func(rec *models.ResumeRecord) {
		rec.ExtractedText = text
		rec.ExtractionMethod = method
		rec.CurrentStep = "structuring"
		rec.Progress = 50
	})
}

func (m *memoryResumeRepository) UpdateResult(id string, profile *models.Profile) error {
	return m.mutate(id, func(rec *models.ResumeRecord) {
		now := time.Now()
		rec.Status = models.StatusCompleted
		rec.CurrentStep = "completed"
		rec.Progress = 100
		rec.Profile = cloneProfile(profile)
		rec.CompletedAt = &now
		rec.ErrorCode = ""
		rec.ErrorMessage = ""
	})
}

func (m *memoryResumeRepository) SaveProfile(id string, profile *models.Profile) error {
	return m.mutate(id, func(rec *models.ResumeRecord) {
		rec.Profile = cloneProfile(profile)
	})
}

func (m *memoryResumeRepository) UpdateError(id string, code string, errorMsg string) error {
	return m.mutate(id, func(rec *models.ResumeRecord) {
		now := time.Now()
		rec.Status = models.StatusFailed
		rec.CurrentStep = "failed"
		rec.ErrorCode = code
		rec.ErrorMessage = errorMsg
		rec.CompletedAt = &now
	})
}

func (m *memoryResumeRepository) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("resume %s: %w", id, models.ErrNotFound)
	}
	delete(m.records, id)
	return nil
}

func (m *memoryResumeRepository) FindPendingJobs(limit int) ([]models.ResumeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var recs []models.ResumeRecord
	for _, rec := range m.records {
		if rec.Status == models.StatusQueued {
			recs = append(recs, *cloneRecord(rec))
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (m *memoryResumeRepository) mutate(id string, fn func(rec *models.ResumeRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("resume %s: %w", id, models.ErrNotFound)
	}
	fn(rec)
	rec.UpdatedAt = time.Now()
	return nil
}

func cloneRecord(rec *models.ResumeRecord) *models.ResumeRecord {
	out := *rec
	out.Options = append([]byte(nil), rec.Options...)
	out.Profile = cloneProfile(rec.Profile)
	if rec.CompletedAt != nil {
		t := *rec.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

func cloneProfile(p *models.Profile) *models.Profile {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}
