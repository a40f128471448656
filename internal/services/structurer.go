package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/logger"
	"sjaggi1/resume-parser/internal/models"
)

// profileSchema bounds what the model may return. Every field is optional so a
// partial answer still validates; wrong shapes do not.
const profileSchema = `{
  "type": "object",
  "properties": {
    "personalInfo": {
      "type": ["object", "null"],
      "properties": {
        "name": {"type": ["string", "null"]},
        "contact": {
          "type": ["object", "null"],
          "properties": {
            "email": {"type": ["string", "null"]},
            "phone": {"type": ["string", "null"]},
            "linkedin": {"type": ["string", "null"]},
            "location": {"type": ["string", "null"]},
            "portfolio": {"type": ["string", "null"]}
          }
        }
      }
    },
    "summary": {"type": ["string", "object", "null"]},
    "skills": {"type": ["array", "null"], "items": {"type": "string"}},
    "experience": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": ["string", "null"]},
          "company": {"type": ["string", "null"]},
          "location": {"type": ["string", "null"]},
          "startDate": {"type": ["string", "null"]},
          "endDate": {"type": ["string", "null"]},
          "description": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "education": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "institution": {"type": ["string", "null"]},
          "degree": {"type": ["string", "null"]},
          "fieldOfStudy": {"type": ["string", "null"]},
          "startDate": {"type": ["string", "null"]},
          "endDate": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

type StructureOptions struct {
	ExtractTechnologies bool
}

// StructureResult reports how the profile was produced. Degraded is non-nil
// exactly when Method is fallback and wraps models.ErrStructuringDegraded.
type StructureResult struct {
	Profile    models.Profile
	Method     models.StructuringMethod
	Degraded   error
	Provenance map[string]models.FieldSource
	ModelUsed  string
}

type ProfileStructurer interface {
	Structure(ctx context.Context, text string, opts StructureOptions) StructureResult
	Enhance(ctx context.Context, profile models.Profile) (*models.AIEnhancements, error)
}

type StructurerConfig struct {
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

type profileStructurer struct {
	completer     Completer
	promptBuilder *PromptBuilder
	schema        *gojsonschema.Schema
	cfg           StructurerConfig
	log           *zap.Logger
	now           func() time.Time
}

// NewProfileStructurer builds the structurer. completer may be nil, in which
// case every call degrades to pattern extraction.
func NewProfileStructurer(completer Completer, cfg StructurerConfig, log *zap.Logger) (ProfileStructurer, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile profile schema: %w", err)
	}
	return &profileStructurer{
		completer:     completer,
		promptBuilder: NewPromptBuilder(),
		schema:        schema,
		cfg:           cfg,
		log:           log,
		now:           time.Now,
	}, nil
}

func (s *profileStructurer) Structure(ctx context.Context, text string, opts StructureOptions) StructureResult {
	fallback := ExtractWithPatterns(text, opts.ExtractTechnologies)

	modelProfile, err := s.structureWithModel(ctx, text)
	if err != nil {
		s.log.Warn("model structuring degraded, using pattern extraction", zap.Error(err))
		profile, provenance := mergeProfiles(nil, &fallback)
		return StructureResult{
			Profile:    profile,
			Method:     models.StructuredByFallback,
			Degraded:   fmt.Errorf("%w: %w", models.ErrStructuringDegraded, err),
			Provenance: provenance,
		}
	}

	if !opts.ExtractTechnologies {
		modelProfile.Skills = nil
	}

	profile, provenance := mergeProfiles(modelProfile, &fallback)
	return StructureResult{
		Profile:    profile,
		Method:     models.StructuredByModel,
		Provenance: provenance,
		ModelUsed:  s.completer.Name(),
	}
}

func (s *profileStructurer) structureWithModel(ctx context.Context, text string) (*models.Profile, error) {
	if s.completer == nil {
		return nil, errors.New("no language model configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt := s.promptBuilder.BuildProfileExtractionPrompt(text)
	s.log.Debug("requesting profile from model", zap.Int("prompt_chars", len(prompt)))

	response, err := s.completer.Complete(ctx, CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Timeout:     s.cfg.Timeout,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return nil, errors.New("model returned an empty response")
	}

	return s.decodeProfile(response)
}

// decodeProfile strips markdown fences, validates the JSON against
// profileSchema and decodes it into a partial profile.
func (s *profileStructurer) decodeProfile(response string) (*models.Profile, error) {
	raw := extractJSON(response)

	result, err := s.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w (response: %s)", err, logger.TruncateForLog(response, 200))
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("model output failed schema validation: %s", strings.Join(msgs, "; "))
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode model output: %w", err)
	}

	for i := range profile.Experience {
		e := &profile.Experience[i]
		e.StartDate, e.EndDate = normalizeModelDate(e.StartDate), normalizeModelDate(e.EndDate)
	}
	for i := range profile.Education {
		e := &profile.Education[i]
		e.StartDate, e.EndDate = normalizeModelDate(e.StartDate), normalizeModelDate(e.EndDate)
	}

	// Only the content fields are trusted from the model.
	return &models.Profile{
		PersonalInfo: profile.PersonalInfo,
		Summary:      models.Summary{Text: strings.TrimSpace(profile.Summary.Text)},
		Experience:   profile.Experience,
		Education:    profile.Education,
		Skills:       profile.Skills,
	}, nil
}

// Enhance asks the model for a short synopsis. Callers treat failure as
// best-effort and leave aiEnhancements absent.
func (s *profileStructurer) Enhance(ctx context.Context, profile models.Profile) (*models.AIEnhancements, error) {
	if s.completer == nil {
		return nil, fmt.Errorf("%w: no language model configured", models.ErrFeatureUnavailable)
	}

	maxTokens := s.cfg.MaxTokens
	if maxTokens <= 0 || maxTokens > 500 {
		maxTokens = 500
	}

	synopsis, err := s.completer.Complete(ctx, CompletionRequest{
		Prompt:      s.promptBuilder.BuildSummaryPrompt(&profile),
		MaxTokens:   maxTokens,
		Temperature: s.cfg.Temperature,
		Timeout:     s.cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate synopsis: %w", err)
	}
	synopsis = strings.TrimSpace(synopsis)
	if synopsis == "" {
		return nil, errors.New("model returned an empty synopsis")
	}

	return &models.AIEnhancements{
		Summary:   synopsis,
		Model:     s.completer.Name(),
		CreatedAt: s.now().UTC(),
	}, nil
}

// mergeProfiles resolves each field by precedence: the model's value when it
// is present, the fallback's otherwise. model may be nil.
func mergeProfiles(model, fallback *models.Profile) (models.Profile, map[string]models.FieldSource) {
	if model == nil {
		model = &models.Profile{}
	}
	provenance := make(map[string]models.FieldSource)

	pickString := func(field, m, f string) string {
		if strings.TrimSpace(m) != "" {
			provenance[field] = models.SourceModel
			return strings.TrimSpace(m)
		}
		if strings.TrimSpace(f) != "" {
			provenance[field] = models.SourceFallback
			return strings.TrimSpace(f)
		}
		return ""
	}

	mc, fc := model.PersonalInfo.Contact, fallback.PersonalInfo.Contact

	var out models.Profile
	out.PersonalInfo.Name = pickString("personalInfo.name", model.PersonalInfo.Name, fallback.PersonalInfo.Name)
	out.PersonalInfo.Contact = models.Contact{
		Email:     pickString("personalInfo.contact.email", mc.Email, fc.Email),
		Phone:     pickString("personalInfo.contact.phone", mc.Phone, fc.Phone),
		LinkedIn:  pickString("personalInfo.contact.linkedin", mc.LinkedIn, fc.LinkedIn),
		Location:  pickString("personalInfo.contact.location", mc.Location, fc.Location),
		Portfolio: pickString("personalInfo.contact.portfolio", mc.Portfolio, fc.Portfolio),
	}
	out.Summary.Text = pickString("summary", model.Summary.Text, fallback.Summary.Text)

	out.Skills = pickSlice(provenance, "skills", dedupeStrings(model.Skills), fallback.Skills)
	out.Experience = pickSlice(provenance, "experience", model.Experience, fallback.Experience)
	out.Education = pickSlice(provenance, "education", model.Education, fallback.Education)

	if out.Skills == nil {
		out.Skills = []string{}
	}
	if out.Experience == nil {
		out.Experience = []models.ExperienceEntry{}
	}
	if out.Education == nil {
		out.Education = []models.EducationEntry{}
	}

	return out.Clone(), provenance
}

func pickSlice[T any](provenance map[string]models.FieldSource, field string, m, f []T) []T {
	if len(m) > 0 {
		provenance[field] = models.SourceModel
		return m
	}
	if len(f) > 0 {
		provenance[field] = models.SourceFallback
		return f
	}
	return nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// extractJSON pulls the JSON payload out of a model reply that may be wrapped
// in markdown code fences or surrounded by prose.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}

// normalizeModelDate brings model dates into the fallback's YYYY-MM form.
// Open-ended markers become empty; unrecognized values are kept as given.
func normalizeModelDate(raw string) string {
	normalized, _ := NormalizeDate(raw)
	return normalized
}
