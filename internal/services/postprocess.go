package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/models"
)

// Career levels derived from total years of experience.
const (
	CareerLevelEntry  = "entry"
	CareerLevelMid    = "mid"
	CareerLevelSenior = "senior"
	CareerLevelLead   = "lead"
)

// PostProcessor adds validation flags, computed experience, confidence scores
// and the flattened view. Process is total and idempotent.
type PostProcessor struct {
	log *zap.Logger
	now func() time.Time
}

func NewPostProcessor(log *zap.Logger) *PostProcessor {
	return &PostProcessor{log: log, now: time.Now}
}

func (p *PostProcessor) Process(profile models.Profile) models.Profile {
	out := profile.Clone()
	contact := &out.PersonalInfo.Contact

	if contact.Email != "" {
		valid := IsValidEmail(contact.Email)
		if !valid {
			p.log.Warn("invalid email detected", zap.String("email", contact.Email))
		}
		contact.EmailValid = &valid
	} else {
		contact.EmailValid = nil
	}

	if contact.Phone != "" {
		valid := IsValidPhone(contact.Phone)
		if !valid {
			p.log.Warn("invalid phone detected", zap.String("phone", contact.Phone))
		}
		contact.PhoneValid = &valid
	} else {
		contact.PhoneValid = nil
	}

	years := p.TotalExperience(out.Experience)
	out.Summary.Text = strings.TrimSpace(out.Summary.Text)
	out.Summary.TotalYearsOfExperience = years
	out.Summary.Insights = &models.SummaryInsights{CareerLevel: CareerLevel(years)}

	out.ConfidenceScores = &models.ConfidenceScores{
		Overall:    0.85,
		Contact:    score(hasContact(*contact), 0.90, 0.5),
		Experience: score(len(out.Experience) > 0, 0.85, 0.3),
		Education:  score(len(out.Education) > 0, 0.80, 0.4),
		Skills:     score(len(out.Skills) > 0, 0.75, 0.2),
	}

	out.Name = orNotFound(out.PersonalInfo.Name)
	out.ContactInfo = &models.FlatContact{
		Email:     orNotFound(contact.Email),
		Phone:     orNotFound(contact.Phone),
		LinkedIn:  orNotFound(contact.LinkedIn),
		Location:  orNotFound(contact.Location),
		Portfolio: orNotFound(contact.Portfolio),
	}

	return out
}

// TotalExperience sums max(0, end-start) months over entries with a parseable
// start date. An empty end date means the position is current.
func (p *PostProcessor) TotalExperience(entries []models.ExperienceEntry) float64 {
	now := p.now()
	totalMonths := 0

	for _, exp := range entries {
		if strings.TrimSpace(exp.StartDate) == "" {
			continue
		}

		startYear, startMonth, ok := parseYearMonth(exp.StartDate, 1)
		if !ok {
			p.log.Warn("could not parse experience dates",
				zap.String("start", exp.StartDate), zap.String("end", exp.EndDate))
			continue
		}

		endYear, endMonth := now.Year(), int(now.Month())
		if strings.TrimSpace(exp.EndDate) != "" {
			endYear, endMonth, ok = parseYearMonth(exp.EndDate, 12)
			if !ok {
				p.log.Warn("could not parse experience dates",
					zap.String("start", exp.StartDate), zap.String("end", exp.EndDate))
				continue
			}
		}

		months := (endYear-startYear)*12 + (endMonth - startMonth)
		if months > 0 {
			totalMonths += months
		}
	}

	return math.Round(float64(totalMonths)/12*10) / 10
}

// parseYearMonth reads YYYY-MM or YYYY; a missing month takes defaultMonth.
func parseYearMonth(s string, defaultMonth int) (int, int, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")

	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1900 || year > 2200 {
		return 0, 0, false
	}
	if len(parts) == 1 {
		return year, defaultMonth, true
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

func CareerLevel(years float64) string {
	switch {
	case years < 2:
		return CareerLevelEntry
	case years < 5:
		return CareerLevelMid
	case years < 10:
		return CareerLevelSenior
	default:
		return CareerLevelLead
	}
}

func hasContact(c models.Contact) bool {
	return c.Email != "" || c.Phone != "" || c.LinkedIn != "" || c.Location != "" || c.Portfolio != ""
}

func score(present bool, high, low float64) float64 {
	if present {
		return high
	}
	return low
}

func orNotFound(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.NotFound
	}
	return s
}
