package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/repositories"
	"sjaggi1/resume-parser/internal/services"
	"sjaggi1/resume-parser/mocks"
)

const plainResume = `Jane Doe
jane.doe@example.com
+1 (555) 123-4567

SUMMARY
Backend engineer building distributed systems in Go and Python.

EXPERIENCE
Senior Engineer at Acme Corp
Jan 2020 - Present
Built ingestion services on Kubernetes and PostgreSQL.

SKILLS
Go, Python, PostgreSQL, Docker, Kubernetes
`

type serviceFixture struct {
	svc     services.ResumeService
	repo    repositories.ResumeRepository
	storage services.StorageService
	queue   *mocks.MockJobQueue
}

func newServiceFixture(t *testing.T, indexer services.ResumeIndexer) *serviceFixture {
	t.Helper()

	storage, err := services.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	structurer, err := services.NewProfileStructurer(nil, services.StructurerConfig{}, zap.NewNop())
	require.NoError(t, err)

	repo := repositories.NewMemoryResumeRepository()
	deps := services.ResumeServiceDeps{
		Repo:       repo,
		Storage:    storage,
		Extractor:  services.NewTextExtractor(new(mocks.MockPDFParser), nil, 0, zap.NewNop()),
		Structurer: structurer,
		Log:        zap.NewNop(),
	}
	if indexer != nil {
		deps.Indexer = indexer
	}
	svc := services.NewResumeService(deps, services.ResumeServiceConfig{
		MaxFileSize:         1024,
		AllowedExtensions:   []string{"pdf", "docx", "txt"},
		EnableAIEnhancement: true,
	})

	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueJob", mock.Anything).Return()
	svc.AttachQueue(queue)

	return &serviceFixture{svc: svc, repo: repo, storage: storage, queue: queue}
}

func (f *serviceFixture) submitAndProcess(t *testing.T, body string) string {
	t.Helper()
	resp, err := f.svc.Submit(context.Background(), "cv.txt", []byte(body), models.DefaultParseOptions())
	require.NoError(t, err)
	require.NoError(t, f.svc.ProcessResume(context.Background(), resp.ResumeID))
	return resp.ResumeID
}

func TestResumeService_SubmitValidation(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "cv.txt", nil, models.DefaultParseOptions())
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.Submit(ctx, "cv.txt", make([]byte, 2048), models.DefaultParseOptions())
	assert.ErrorIs(t, err, models.ErrFileTooLarge)

	_, err = f.svc.Submit(ctx, "cv.exe", []byte("MZ"), models.DefaultParseOptions())
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)

	f.queue.AssertNotCalled(t, "EnqueueJob", mock.Anything)
}

func TestResumeService_SubmitQueuesRecord(t *testing.T) {
	f := newServiceFixture(t, nil)

	resp, err := f.svc.Submit(context.Background(), "cv.txt", []byte(plainResume), models.DefaultParseOptions())

	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, resp.Status)
	assert.Equal(t, services.FileHash([]byte(plainResume)), resp.FileHash)
	f.queue.AssertCalled(t, "EnqueueJob", resp.ResumeID)

	status, err := f.svc.Status(context.Background(), resp.ResumeID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, status.Status)

	stored, err := f.storage.Load(context.Background(), services.StorageKey(resp.ResumeID, "cv.txt"))
	require.NoError(t, err)
	assert.Equal(t, plainResume, string(stored))
}

func TestResumeService_ProcessResume(t *testing.T) {
	f := newServiceFixture(t, nil)
	id := f.submitAndProcess(t, plainResume)

	rec, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, rec.Status)
	assert.Equal(t, 100, rec.Progress)
	require.NotNil(t, rec.Profile)

	p := rec.Profile
	assert.Equal(t, "Jane Doe", p.PersonalInfo.Name)
	assert.Equal(t, "jane.doe@example.com", p.PersonalInfo.Contact.Email)
	assert.Contains(t, p.Skills, "Kubernetes")
	assert.Equal(t, models.StructuredByFallback, p.Metadata.ParsingMethod)
	assert.Equal(t, models.MethodGeneric, p.Metadata.ExtractionMethod)
	assert.Equal(t, "cv.txt", p.Metadata.FileName)
	assert.NotEmpty(t, p.Metadata.DegradedReason)
	assert.Nil(t, p.AIEnhancements)
	assert.NotNil(t, p.ConfidenceScores)
	assert.Greater(t, p.Summary.TotalYearsOfExperience, 0.0)
	require.NotNil(t, p.ContactInfo)
	assert.Equal(t, "jane.doe@example.com", p.ContactInfo.Email)

	// A second claim is a no-op.
	require.NoError(t, f.svc.ProcessResume(context.Background(), id))
}

func TestResumeService_ProcessResume_InsufficientText(t *testing.T) {
	f := newServiceFixture(t, nil)
	resp, err := f.svc.Submit(context.Background(), "cv.txt", []byte("too short"), models.DefaultParseOptions())
	require.NoError(t, err)

	err = f.svc.ProcessResume(context.Background(), resp.ResumeID)

	assert.ErrorIs(t, err, models.ErrInsufficientText)
	status, err := f.svc.Status(context.Background(), resp.ResumeID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status.Status)
	assert.Equal(t, "INSUFFICIENT_TEXT", status.ErrorCode)
}

func TestResumeService_Update(t *testing.T) {
	f := newServiceFixture(t, nil)
	id := f.submitAndProcess(t, plainResume)

	profile, err := f.svc.Update(context.Background(), id, []byte(`{
		"skills": ["Go", "Rust"],
		"personalInfo": {"name": "Jane Q. Doe"},
		"metadata": {"fileName": "hacked.pdf"},
		"unknownField": true
	}`))

	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, profile.Skills)
	assert.Equal(t, "Jane Q. Doe", profile.PersonalInfo.Name)
	// One-level merge keeps the untouched contact block.
	assert.Equal(t, "jane.doe@example.com", profile.PersonalInfo.Contact.Email)
	assert.Equal(t, "cv.txt", profile.Metadata.FileName)
	assert.Equal(t, models.SourceUser, profile.Metadata.FieldProvenance["skills"])
	assert.Equal(t, models.SourceUser, profile.Metadata.FieldProvenance["personalInfo"])
	assert.Equal(t, "Jane Q. Doe", profile.Name)

	rec, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, rec.Profile.Skills)

	_, err = f.svc.Update(context.Background(), id, []byte(`[1,2]`))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestResumeService_NotReady(t *testing.T) {
	f := newServiceFixture(t, nil)
	resp, err := f.svc.Submit(context.Background(), "cv.txt", []byte(plainResume), models.DefaultParseOptions())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.svc.Update(ctx, resp.ResumeID, []byte(`{"skills": []}`))
	assert.ErrorIs(t, err, models.ErrNotReady)

	_, err = f.svc.Match(ctx, resp.ResumeID, models.JobDescription{Title: "Engineer"}, models.MatchOptions{})
	assert.ErrorIs(t, err, models.ErrNotReady)

	assert.ErrorIs(t, f.svc.Reprocess(ctx, resp.ResumeID), models.ErrNotReady)
}

func TestResumeService_Reprocess(t *testing.T) {
	f := newServiceFixture(t, nil)
	id := f.submitAndProcess(t, plainResume)

	require.NoError(t, f.svc.Reprocess(context.Background(), id))

	status, err := f.svc.Status(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, status.Status)
	f.queue.AssertNumberOfCalls(t, "EnqueueJob", 2)

	// The stored upload is gone, so success proves the cached text was used.
	require.NoError(t, f.storage.Delete(context.Background(), services.StorageKey(id, "cv.txt")))
	require.NoError(t, f.svc.ProcessResume(context.Background(), id))

	rec, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, rec.Status)
}

func TestResumeService_Match(t *testing.T) {
	f := newServiceFixture(t, nil)
	id := f.submitAndProcess(t, plainResume)

	resp, err := f.svc.Match(context.Background(), id, models.JobDescription{
		Title:  "Backend Engineer",
		Skills: models.RequirementSet{Required: []string{"Go", "Kubernetes"}},
	}, models.MatchOptions{IncludeExplanation: true})

	require.NoError(t, err)
	assert.Equal(t, id, resp.ResumeID)
	assert.Equal(t, "Backend Engineer", resp.JobTitle)
	assert.NotEmpty(t, resp.MatchID)
	assert.Equal(t, 100.0, resp.MatchingResults.CategoryScores[services.CategorySkills].Score)
}

func TestResumeService_Delete(t *testing.T) {
	f := newServiceFixture(t, nil)
	id := f.submitAndProcess(t, plainResume)
	f.queue.On("Cancel", id).Return(false).Once()

	require.NoError(t, f.svc.Delete(context.Background(), id))

	_, err := f.svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.storage.Load(context.Background(), services.StorageKey(id, "cv.txt"))
	assert.ErrorIs(t, err, models.ErrNotFound)
	f.queue.AssertExpectations(t)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), id), models.ErrNotFound)
}

func TestResumeService_ParseDocument(t *testing.T) {
	f := newServiceFixture(t, nil)

	profile, err := f.svc.ParseDocument(context.Background(), models.NewRawDocument([]byte(plainResume), "cv.txt"), models.ParseOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", profile.PersonalInfo.Name)
	assert.Empty(t, profile.Skills)
	assert.NotNil(t, profile.Metadata.ProcessedAt)

	_, err = f.svc.ParseDocument(context.Background(), models.NewRawDocument([]byte("x"), "cv.rtf"), models.ParseOptions{})
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestResumeService_Search(t *testing.T) {
	t.Run("unavailable without index", func(t *testing.T) {
		f := newServiceFixture(t, nil)

		_, err := f.svc.Search(context.Background(), "go engineer", 5)

		assert.ErrorIs(t, err, models.ErrFeatureUnavailable)
	})

	t.Run("indexes and names hits", func(t *testing.T) {
		indexer := new(mocks.MockResumeIndexer)
		indexer.On("Index", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f := newServiceFixture(t, indexer)
		id := f.submitAndProcess(t, plainResume)

		indexer.On("Search", mock.Anything, "go engineer", 5).Return([]models.SearchHit{
			{ResumeID: id, Score: 0.9, Snippet: "Go"},
			{ResumeID: "deleted", Score: 0.8},
		}, nil)

		resp, err := f.svc.Search(context.Background(), "go engineer", 5)

		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "Jane Doe", resp.Results[0].Name)
		indexer.AssertCalled(t, "Index", mock.Anything, id, mock.Anything)
	})

	t.Run("index failure does not fail processing", func(t *testing.T) {
		indexer := new(mocks.MockResumeIndexer)
		indexer.On("Index", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("qdrant down"))
		f := newServiceFixture(t, indexer)
		id := f.submitAndProcess(t, plainResume)

		rec, err := f.svc.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, rec.Status)
	})
}
