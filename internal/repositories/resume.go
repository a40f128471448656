package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sjaggi1/resume-parser/internal/models"
)

type ResumeRepository interface {
	Create(rec *models.ResumeRecord) error
	FindByID(id string) (*models.ResumeRecord, error)
	UpdateStatus(id string, status models.ResumeStatus, step string, progress int) error
	// ClaimForProcessing moves a queued record to processing. It returns false
	// when another worker already claimed it or the record left the queue.
	ClaimForProcessing(id string) (bool, error)
	UpdateExtraction(id string, text string, method models.ExtractionMethod) error
	UpdateResult(id string, profile *models.Profile) error
	SaveProfile(id string, profile *models.Profile) error
	UpdateError(id string, code string, errorMsg string) error
	Delete(id string) error
	FindPendingJobs(limit int) ([]models.ResumeRecord, error)
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(rec *models.ResumeRecord) error {
	if err := r.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

func (r *resumeRepository) FindByID(id string) (*models.ResumeRecord, error) {
	var rec models.ResumeRecord
	if err := r.db.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resume %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}
	return &rec, nil
}

func (r *resumeRepository) UpdateStatus(id string, status models.ResumeStatus, step string, progress int) error {
	return r.update(id, map[string]interface{}{
		"status":       status,
		"current_step": step,
		"progress":     progress,
	})
}

func (r *resumeRepository) ClaimForProcessing(id string) (bool, error) {
	result := r.db.Model(&models.ResumeRecord{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":       models.StatusProcessing,
			"current_step": "extracting",
			"progress":     10,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim resume: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *resumeRepository) UpdateExtraction(id string, text string, method models.ExtractionMethod) error {
	return r.update(id, map[string]interface{}{
		"extracted_text":    text,
		"extraction_method": method,
		"current_step":      "structuring",
		"progress":          50,
	})
}

func (r *resumeRepository) UpdateResult(id string, profile *models.Profile) error {
	now := time.Now()
	rec := models.ResumeRecord{
		Status:       models.StatusCompleted,
		CurrentStep:  "completed",
		Progress:     100,
		Profile:      profile,
		CompletedAt:  &now,
		ErrorCode:    "",
		ErrorMessage: "",
	}
	// Select forces the zero-valued error columns to be cleared on reprocess.
	result := r.db.Model(&models.ResumeRecord{}).
		Where("id = ?", id).
		Select("status", "current_step", "progress", "profile", "completed_at", "error_code", "error_message", "updated_at").
		Updates(&rec)
	if result.Error != nil {
		return fmt.Errorf("failed to update result: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resume %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *resumeRepository) SaveProfile(id string, profile *models.Profile) error {
	result := r.db.Model(&models.ResumeRecord{}).
		Where("id = ?", id).
		Select("profile", "updated_at").
		Updates(&models.ResumeRecord{Profile: profile})
	if result.Error != nil {
		return fmt.Errorf("failed to save profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resume %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *resumeRepository) UpdateError(id string, code string, errorMsg string) error {
	now := time.Now()
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"current_step":  "failed",
		"error_code":    code,
		"error_message": errorMsg,
		"completed_at":  &now,
	})
}

func (r *resumeRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.ResumeRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete resume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resume %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *resumeRepository) FindPendingJobs(limit int) ([]models.ResumeRecord, error) {
	var recs []models.ResumeRecord
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}
	return recs, nil
}

func (r *resumeRepository) update(id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := r.db.Model(&models.ResumeRecord{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update resume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resume %s: %w", id, models.ErrNotFound)
	}
	return nil
}
