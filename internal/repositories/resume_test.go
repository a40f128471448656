package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sjaggi1/resume-parser/internal/models"
)

func newSQLiteRepository(t *testing.T) ResumeRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "resumes.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ResumeRecord{}))
	return NewResumeRepository(db)
}

func allRepositories(t *testing.T) map[string]ResumeRepository {
	return map[string]ResumeRepository{
		"memory": NewMemoryResumeRepository(),
		"sqlite": newSQLiteRepository(t),
	}
}

func newRecord(createdAt time.Time) *models.ResumeRecord {
	return &models.ResumeRecord{
		ID:            uuid.NewString(),
		Status:        models.StatusQueued,
		FileName:      "resume.txt",
		FileExtension: "txt",
		FileSize:      120,
		Options:       datatypes.JSON(`{"enhanceWithAI":true}`),
		CreatedAt:     createdAt,
	}
}

func TestResumeRepository_Lifecycle(t *testing.T) {
	for name, repo := range allRepositories(t) {
		t.Run(name, func(t *testing.T) {
			rec := newRecord(time.Now())
			require.NoError(t, repo.Create(rec))

			claimed, err := repo.ClaimForProcessing(rec.ID)
			require.NoError(t, err)
			assert.True(t, claimed)

			claimed, err = repo.ClaimForProcessing(rec.ID)
			require.NoError(t, err)
			assert.False(t, claimed, "second claim must lose")

			require.NoError(t, repo.UpdateExtraction(rec.ID, "extracted text", models.MethodGeneric))

			profile := &models.Profile{
				PersonalInfo: models.PersonalInfo{Name: "Jane Doe"},
				Skills:       []string{"Go"},
			}
			require.NoError(t, repo.UpdateResult(rec.ID, profile))

			got, err := repo.FindByID(rec.ID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusCompleted, got.Status)
			assert.Equal(t, 100, got.Progress)
			assert.Equal(t, "extracted text", got.ExtractedText)
			assert.Equal(t, models.MethodGeneric, got.ExtractionMethod)
			require.NotNil(t, got.Profile)
			assert.Equal(t, "Jane Doe", got.Profile.PersonalInfo.Name)
			assert.NotNil(t, got.CompletedAt)
			assert.JSONEq(t, `{"enhanceWithAI":true}`, string(got.Options))

			profile.Skills = append(profile.Skills, "SQL")
			require.NoError(t, repo.SaveProfile(rec.ID, profile))
			got, err = repo.FindByID(rec.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{"Go", "SQL"}, got.Profile.Skills)
		})
	}
}

func TestResumeRepository_UpdateError(t *testing.T) {
	for name, repo := range allRepositories(t) {
		t.Run(name, func(t *testing.T) {
			rec := newRecord(time.Now())
			require.NoError(t, repo.Create(rec))

			require.NoError(t, repo.UpdateError(rec.ID, "INSUFFICIENT_TEXT", "too short"))

			got, err := repo.FindByID(rec.ID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusFailed, got.Status)
			assert.Equal(t, "INSUFFICIENT_TEXT", got.ErrorCode)
			assert.Equal(t, "too short", got.ErrorMessage)
		})
	}
}

func TestResumeRepository_NotFound(t *testing.T) {
	for name, repo := range allRepositories(t) {
		t.Run(name, func(t *testing.T) {
			missing := uuid.NewString()

			_, err := repo.FindByID(missing)
			assert.ErrorIs(t, err, models.ErrNotFound)
			assert.ErrorIs(t, repo.Delete(missing), models.ErrNotFound)
			assert.ErrorIs(t, repo.UpdateStatus(missing, models.StatusProcessing, "x", 1), models.ErrNotFound)

			rec := newRecord(time.Now())
			require.NoError(t, repo.Create(rec))
			require.NoError(t, repo.Delete(rec.ID))

			_, err = repo.FindByID(rec.ID)
			assert.ErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestResumeRepository_FindPendingJobs(t *testing.T) {
	for name, repo := range allRepositories(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Now().Add(-time.Hour)
			older := newRecord(base)
			newer := newRecord(base.Add(time.Minute))
			done := newRecord(base.Add(-time.Minute))
			done.Status = models.StatusCompleted

			require.NoError(t, repo.Create(newer))
			require.NoError(t, repo.Create(older))
			require.NoError(t, repo.Create(done))

			pending, err := repo.FindPendingJobs(10)
			require.NoError(t, err)
			require.Len(t, pending, 2)
			assert.Equal(t, older.ID, pending[0].ID)
			assert.Equal(t, newer.ID, pending[1].ID)

			pending, err = repo.FindPendingJobs(1)
			require.NoError(t, err)
			assert.Len(t, pending, 1)
		})
	}
}

func TestMemoryResumeRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryResumeRepository()
	rec := newRecord(time.Now())
	rec.Profile = &models.Profile{Skills: []string{"Go"}}
	require.NoError(t, repo.Create(rec))

	got, err := repo.FindByID(rec.ID)
	require.NoError(t, err)
	got.Profile.Skills[0] = "Rust"
	got.Status = models.StatusFailed

	again, err := repo.FindByID(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", again.Profile.Skills[0])
	assert.Equal(t, models.StatusQueued, again.Status)
}
