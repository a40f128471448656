package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/repositories"
)

// rawTextLimit bounds the raw text kept on a profile.
const rawTextLimit = 5000

// JobQueue hands accepted uploads to the background worker.
type JobQueue interface {
	EnqueueJob(resumeID string)
	Cancel(resumeID string) bool
}

type ResumeService interface {
	JobProcessor
	// AttachQueue connects the worker once both sides exist.
	AttachQueue(q JobQueue)

	Submit(ctx context.Context, filename string, data []byte, opts models.ParseOptions) (*models.UploadResponse, error)
	ParseDocument(ctx context.Context, doc models.RawDocument, opts models.ParseOptions) (*models.Profile, error)
	Get(ctx context.Context, id string) (*models.ResumeRecord, error)
	Status(ctx context.Context, id string) (*models.StatusResponse, error)
	Update(ctx context.Context, id string, patch []byte) (*models.Profile, error)
	Reprocess(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Match(ctx context.Context, id string, job models.JobDescription, opts models.MatchOptions) (*models.MatchResponse, error)
	Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error)
}

type ResumeServiceConfig struct {
	MaxFileSize         int64
	AllowedExtensions   []string
	EnableOCR           bool
	EnableAIEnhancement bool
}

// ResumeServiceDeps lists the collaborators. Storage and Indexer may be nil.
type ResumeServiceDeps struct {
	Repo          repositories.ResumeRepository
	Storage       StorageService
	Extractor     TextExtractor
	Structurer    ProfileStructurer
	PostProcessor *PostProcessor
	Matcher       *MatchScorer
	Indexer       ResumeIndexer
	Log           *zap.Logger
}

type resumeService struct {
	ResumeServiceDeps
	cfg   ResumeServiceConfig
	queue JobQueue
	now   func() time.Time
}

func NewResumeService(deps ResumeServiceDeps, cfg ResumeServiceConfig) ResumeService {
	if deps.PostProcessor == nil {
		deps.PostProcessor = NewPostProcessor(deps.Log)
	}
	if deps.Matcher == nil {
		deps.Matcher = NewMatchScorer()
	}
	return &resumeService{
		ResumeServiceDeps: deps,
		cfg:               cfg,
		now:               time.Now,
	}
}

func (s *resumeService) AttachQueue(q JobQueue) {
	s.queue = q
}

// documentInfo is the upload metadata copied onto the profile.
type documentInfo struct {
	fileName   string
	fileSize   int64
	extension  string
	fileHash   string
	uploadedAt time.Time
}

func (s *resumeService) Submit(ctx context.Context, filename string, data []byte, opts models.ParseOptions) (*models.UploadResponse, error) {
	ext := models.ExtensionOf(filename)
	if err := s.checkUpload(ext, int64(len(data))); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	hash := FileHash(data)
	key := ""

	if s.Storage != nil {
		key = StorageKey(id, filename)
		if err := s.Storage.Save(ctx, key, data, models.MimeType(ext)); err != nil {
			return nil, fmt.Errorf("failed to store upload: %w", err)
		}
	}

	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	rec := &models.ResumeRecord{
		ID:            id,
		Status:        models.StatusQueued,
		CurrentStep:   "queued",
		FileName:      filename,
		FileExtension: ext,
		FileSize:      int64(len(data)),
		FileHash:      hash,
		StorageKey:    key,
		Options:       datatypes.JSON(optsJSON),
	}
	if err := s.Repo.Create(rec); err != nil {
		if key != "" {
			_ = s.Storage.Delete(ctx, key)
		}
		return nil, err
	}

	s.Log.Info("resume accepted",
		zap.String("resume_id", id),
		zap.String("file", filename),
		zap.Int("bytes", len(data)),
	)

	if s.queue != nil {
		s.queue.EnqueueJob(id)
	}

	return &models.UploadResponse{
		ResumeID: id,
		Status:   models.StatusQueued,
		Message:  "Resume uploaded successfully. Processing started.",
		FileName: filename,
		FileHash: hash,
	}, nil
}

func (s *resumeService) checkUpload(ext string, size int64) error {
	if size == 0 {
		return fmt.Errorf("%w: file is empty", models.ErrInvalidInput)
	}
	if s.cfg.MaxFileSize > 0 && size > s.cfg.MaxFileSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", models.ErrFileTooLarge, size, s.cfg.MaxFileSize)
	}
	if len(s.cfg.AllowedExtensions) > 0 {
		for _, allowed := range s.cfg.AllowedExtensions {
			if allowed == ext {
				return nil
			}
		}
		return fmt.Errorf("%w: .%s is not an allowed extension", models.ErrUnsupportedFormat, ext)
	}
	return nil
}

// ProcessResume runs extraction, structuring and post-processing for a queued
// record. Extraction failures mark the record failed; structuring never does.
func (s *resumeService) ProcessResume(ctx context.Context, id string) error {
	claimed, err := s.Repo.ClaimForProcessing(id)
	if err != nil {
		return err
	}
	if !claimed {
		s.Log.Debug("resume already claimed or not queued", zap.String("resume_id", id))
		return nil
	}

	start := s.now()
	log := s.Log.With(zap.String("resume_id", id))

	rec, err := s.Repo.FindByID(id)
	if err != nil {
		return err
	}
	opts := s.decodeOptions(id, rec.Options)

	text, method := rec.ExtractedText, rec.ExtractionMethod
	if text == "" {
		extracted, err := s.extract(ctx, rec, opts)
		if err != nil {
			return s.fail(ctx, id, err)
		}
		text, method = extracted.Text, extracted.Method
		if err := s.Repo.UpdateExtraction(id, text, method); err != nil {
			return s.fail(ctx, id, err)
		}
		log.Info("text extracted", zap.String("method", string(method)), zap.Int("chars", extracted.CharCount))
	} else {
		if err := s.Repo.UpdateStatus(id, models.StatusProcessing, "structuring", 50); err != nil {
			return s.fail(ctx, id, err)
		}
		log.Info("reusing cached text", zap.String("method", string(method)))
	}

	info := documentInfo{
		fileName:   rec.FileName,
		fileSize:   rec.FileSize,
		extension:  rec.FileExtension,
		fileHash:   rec.FileHash,
		uploadedAt: rec.CreatedAt,
	}
	profile := s.buildProfile(ctx, text, method, info, opts, start)

	if err := ctx.Err(); err != nil {
		log.Info("processing cancelled", zap.Error(err))
		return err
	}

	if err := s.Repo.UpdateResult(id, &profile); err != nil {
		return s.fail(ctx, id, err)
	}

	if s.Indexer != nil {
		if err := s.Indexer.Index(ctx, id, profile); err != nil {
			log.Warn("failed to index resume for search", zap.Error(err))
		}
	}

	log.Info("resume processed",
		zap.String("parsing_method", string(profile.Metadata.ParsingMethod)),
		zap.Float64("processing_time", profile.Metadata.ProcessingTime),
	)
	return nil
}

func (s *resumeService) extract(ctx context.Context, rec *models.ResumeRecord, opts models.ParseOptions) (models.ExtractedText, error) {
	if s.Storage == nil || rec.StorageKey == "" {
		return models.ExtractedText{}, fmt.Errorf("%w: original upload is not available", models.ErrExtraction)
	}

	data, err := s.Storage.Load(ctx, rec.StorageKey)
	if err != nil {
		return models.ExtractedText{}, fmt.Errorf("%w: %w", models.ErrExtraction, err)
	}

	doc := models.RawDocument{Data: data, Extension: rec.FileExtension, Filename: rec.FileName}
	return s.Extractor.Extract(ctx, doc, ExtractOptions{PerformOCR: opts.PerformOCR && s.cfg.EnableOCR})
}

func (s *resumeService) fail(ctx context.Context, id string, cause error) error {
	if ctx.Err() != nil {
		// Cancelled by delete or shutdown; the record may already be gone.
		return ctx.Err()
	}

	code := models.ErrorCode(cause)
	if err := s.Repo.UpdateError(id, code, cause.Error()); err != nil && !errors.Is(err, models.ErrNotFound) {
		s.Log.Error("failed to record processing error", zap.String("resume_id", id), zap.Error(err))
	}
	return cause
}

// ParseDocument runs the whole pipeline synchronously without touching the
// record store.
func (s *resumeService) ParseDocument(ctx context.Context, doc models.RawDocument, opts models.ParseOptions) (*models.Profile, error) {
	if err := s.checkUpload(doc.Extension, int64(len(doc.Data))); err != nil {
		return nil, err
	}

	start := s.now()
	extracted, err := s.Extractor.Extract(ctx, doc, ExtractOptions{PerformOCR: opts.PerformOCR && s.cfg.EnableOCR})
	if err != nil {
		return nil, err
	}

	info := documentInfo{
		fileName:   doc.Filename,
		fileSize:   int64(len(doc.Data)),
		extension:  doc.Extension,
		fileHash:   FileHash(doc.Data),
		uploadedAt: start.UTC(),
	}
	profile := s.buildProfile(ctx, extracted.Text, extracted.Method, info, opts, start)
	return &profile, nil
}

func (s *resumeService) buildProfile(
	ctx context.Context,
	text string,
	method models.ExtractionMethod,
	info documentInfo,
	opts models.ParseOptions,
	start time.Time,
) models.Profile {
	result := s.Structurer.Structure(ctx, text, StructureOptions{ExtractTechnologies: opts.ExtractTechnologies})

	profile := result.Profile
	profile.RawText = truncateRunes(text, rawTextLimit)
	profile.Metadata = models.Metadata{
		FileName:         info.fileName,
		FileSize:         info.fileSize,
		FileType:         models.MimeType(info.extension),
		FileHash:         info.fileHash,
		UploadedAt:       info.uploadedAt,
		RawTextLength:    len([]rune(text)),
		ExtractionMethod: method,
		ParsingMethod:    result.Method,
		ModelUsed:        result.ModelUsed,
		FieldProvenance:  result.Provenance,
	}
	if result.Degraded != nil {
		profile.Metadata.DegradedReason = result.Degraded.Error()
	}

	profile = s.PostProcessor.Process(profile)

	if opts.EnhanceWithAI && s.cfg.EnableAIEnhancement {
		enhancement, err := s.Structurer.Enhance(ctx, profile)
		if err != nil {
			s.Log.Warn("ai enhancement skipped", zap.String("file", info.fileName), zap.Error(err))
		} else {
			profile.AIEnhancements = enhancement
		}
	}

	processedAt := s.now().UTC()
	profile.Metadata.ProcessedAt = &processedAt
	profile.Metadata.ProcessingTime = math.Round(processedAt.Sub(start).Seconds()*100) / 100

	return profile
}

func (s *resumeService) Get(_ context.Context, id string) (*models.ResumeRecord, error) {
	return s.Repo.FindByID(id)
}

func (s *resumeService) Status(_ context.Context, id string) (*models.StatusResponse, error) {
	rec, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	resp := &models.StatusResponse{
		ResumeID:     rec.ID,
		Status:       rec.Status,
		Progress:     rec.Progress,
		CurrentStep:  rec.CurrentStep,
		CreatedAt:    rec.CreatedAt,
		CompletedAt:  rec.CompletedAt,
		ErrorCode:    rec.ErrorCode,
		ErrorMessage: rec.ErrorMessage,
	}

	switch {
	case rec.Profile != nil && rec.Status == models.StatusCompleted:
		resp.ProcessingTime = rec.Profile.Metadata.ProcessingTime
	case rec.CompletedAt != nil:
		resp.ProcessingTime = math.Round(rec.CompletedAt.Sub(rec.CreatedAt).Seconds()*100) / 100
	default:
		resp.ProcessingTime = math.Round(s.now().Sub(rec.CreatedAt).Seconds()*100) / 100
	}
	return resp, nil
}

// Keys a caller may not overwrite; they are derived or owned by the pipeline.
var protectedProfileKeys = map[string]struct{}{
	"metadata":         {},
	"confidenceScores": {},
	"rawText":          {},
	"name":             {},
	"contact_info":     {},
}

// Update merges a partial profile into the stored one and re-runs
// post-processing. Only top-level keys that already exist are applied, and
// nested objects are merged one level deep.
func (s *resumeService) Update(_ context.Context, id string, patch []byte) (*models.Profile, error) {
	rec, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusCompleted || rec.Profile == nil {
		return nil, fmt.Errorf("%w: status is %s", models.ErrNotReady, rec.Status)
	}

	var updates map[string]json.RawMessage
	if err := json.Unmarshal(patch, &updates); err != nil {
		return nil, fmt.Errorf("%w: update must be a JSON object: %v", models.ErrInvalidInput, err)
	}

	currentJSON, err := json.Marshal(rec.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	var current map[string]json.RawMessage
	if err := json.Unmarshal(currentJSON, &current); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	var applied []string
	for key, value := range updates {
		if _, protected := protectedProfileKeys[key]; protected {
			continue
		}
		existing, ok := current[key]
		if !ok {
			continue
		}
		merged, err := mergeOneLevel(existing, value)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", models.ErrInvalidInput, key, err)
		}
		current[key] = merged
		applied = append(applied, key)
	}

	mergedJSON, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged profile: %w", err)
	}
	var profile models.Profile
	if err := json.Unmarshal(mergedJSON, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	if profile.Metadata.FieldProvenance == nil {
		profile.Metadata.FieldProvenance = make(map[string]models.FieldSource)
	}
	for _, key := range applied {
		profile.Metadata.FieldProvenance[key] = models.SourceUser
	}

	profile = s.PostProcessor.Process(profile)
	if err := s.Repo.SaveProfile(id, &profile); err != nil {
		return nil, err
	}

	s.Log.Info("profile updated", zap.String("resume_id", id), zap.Strings("fields", applied))
	return &profile, nil
}

// mergeOneLevel overlays patch on existing when both are objects, and
// replaces existing otherwise.
func mergeOneLevel(existing, patch json.RawMessage) (json.RawMessage, error) {
	var base, overlay map[string]json.RawMessage
	if json.Unmarshal(existing, &base) != nil || json.Unmarshal(patch, &overlay) != nil || base == nil || overlay == nil {
		if !json.Valid(patch) {
			return nil, errors.New("invalid JSON value")
		}
		return patch, nil
	}
	for k, v := range overlay {
		base[k] = v
	}
	return json.Marshal(base)
}

// Reprocess re-queues a finished record. Cached extracted text is reused so
// only structuring and post-processing run again.
func (s *resumeService) Reprocess(_ context.Context, id string) error {
	rec, err := s.Repo.FindByID(id)
	if err != nil {
		return err
	}
	if rec.Status == models.StatusQueued || rec.Status == models.StatusProcessing {
		return fmt.Errorf("%w: status is %s", models.ErrNotReady, rec.Status)
	}

	if err := s.Repo.UpdateStatus(id, models.StatusQueued, "queued", 0); err != nil {
		return err
	}
	if s.queue != nil {
		s.queue.EnqueueJob(id)
	}

	s.Log.Info("resume queued for reprocessing", zap.String("resume_id", id))
	return nil
}

// Delete cancels any in-flight processing and removes the record, the stored
// upload and the search index entries.
func (s *resumeService) Delete(ctx context.Context, id string) error {
	rec, err := s.Repo.FindByID(id)
	if err != nil {
		return err
	}

	if s.queue != nil && s.queue.Cancel(id) {
		s.Log.Info("cancelled in-flight processing", zap.String("resume_id", id))
	}

	if err := s.Repo.Delete(id); err != nil {
		return err
	}

	if s.Storage != nil && rec.StorageKey != "" {
		if err := s.Storage.Delete(ctx, rec.StorageKey); err != nil {
			s.Log.Warn("failed to delete stored upload", zap.String("resume_id", id), zap.Error(err))
		}
	}
	if s.Indexer != nil {
		if err := s.Indexer.Remove(ctx, id); err != nil {
			s.Log.Warn("failed to remove resume from search index", zap.String("resume_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *resumeService) Match(_ context.Context, id string, job models.JobDescription, opts models.MatchOptions) (*models.MatchResponse, error) {
	rec, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusCompleted || rec.Profile == nil {
		return nil, fmt.Errorf("%w: status is %s", models.ErrNotReady, rec.Status)
	}

	result := s.Matcher.Match(*rec.Profile, job, opts)
	return &models.MatchResponse{
		MatchID:         uuid.New().String(),
		ResumeID:        id,
		JobTitle:        job.Title,
		MatchingResults: result,
		CreatedAt:       s.now().UTC(),
	}, nil
}

func (s *resumeService) Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error) {
	if s.Indexer == nil {
		return nil, fmt.Errorf("%w: similar-candidate search requires QDRANT_URL and an embedding provider", models.ErrFeatureUnavailable)
	}

	hits, err := s.Indexer.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchHit, 0, len(hits))
	for _, h := range hits {
		rec, err := s.Repo.FindByID(h.ResumeID)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.Profile != nil {
			h.Name = rec.Profile.PersonalInfo.Name
		}
		results = append(results, h)
	}

	return &models.SearchResponse{Query: query, Results: results}, nil
}

// FileHash is the SHA-256 hex digest used as the content address.
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// decodeOptions falls back to the defaults when the stored options are
// missing or unreadable.
func (s *resumeService) decodeOptions(id string, raw datatypes.JSON) models.ParseOptions {
	opts := models.DefaultParseOptions()
	if len(raw) == 0 {
		return opts
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		s.Log.Warn("stored parse options are unreadable, using defaults",
			zap.String("resume_id", id), zap.Error(err))
		return models.DefaultParseOptions()
	}
	return opts
}
