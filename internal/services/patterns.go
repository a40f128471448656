package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"sjaggi1/resume-parser/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}`)

	labeledNamePattern     = regexp.MustCompile(`(?im)^\s*(?:full\s+)?name\s*[:\-]\s*([A-Za-z][A-Za-z .'\-]{1,60}?)\s*$`)
	labeledPhonePattern    = regexp.MustCompile(`(?im)(?:phone|tel|telephone|mobile|cell)\s*[:\-]?\s*(\+?[\d][\d\s().\-]{5,20}\d)`)
	phonePattern           = regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)
	labeledLocationPattern = regexp.MustCompile(`(?im)^\s*(?:location|address|based in)\s*[:\-]\s*(.+?)\s*$`)
	linkedInPattern        = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_\-%]+/?`)
	githubPattern          = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[A-Za-z0-9_\-]+`)
	urlPattern             = regexp.MustCompile(`(?i)https?://[^\s,;)>\]]+`)

	monthPattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	datePattern  = `(?:` + monthPattern + `\.?\s+\d{4}|\d{4}[-/.](?:1[0-2]|0?[1-9])|(?:1[0-2]|0?[1-9])[-/.]\d{4}|\d{4})`

	dateRangePattern  = regexp.MustCompile(`(?i)(` + datePattern + `)\s*(?:-|–|—|to|until)\s*(` + datePattern + `|present|current|now|today)`)
	yearPattern       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	monthYearPattern  = regexp.MustCompile(`^([a-z]+)\.?\s+(\d{4})$`)
	yearMonthPattern  = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})$`)
	monthFirstPattern = regexp.MustCompile(`^(\d{1,2})[-/.](\d{4})$`)
	yearOnlyPattern   = regexp.MustCompile(`^(\d{4})$`)

	degreeAbbrevPattern = regexp.MustCompile(`(?:^|[^A-Za-z])((?:B|M)\.?\s?(?:Sc|S|A|Tech|Eng|E)\.?|Ph\.?\s?D\.?|MBA)(?:[^A-Za-z]|$)`)
	degreeWordPattern   = regexp.MustCompile(`(?i)\b(bachelor(?:'s)?(?:\s+of\s+(?:science|arts|engineering|technology|business administration))?|master(?:'s)?(?:\s+of\s+(?:science|arts|engineering|technology|business administration))?|doctorate|doctor of philosophy|associate(?:'s)? degree|diploma)\b`)
	fieldOfStudyPattern = regexp.MustCompile(`\b(?:in|of)\s+([A-Z][A-Za-z&]*(?:\s+[A-Z&][A-Za-z&]*)*)`)
	institutionPattern  = regexp.MustCompile(`(?i)\b(?:university|college|institute|school|academy|polytechnic)\b`)
)

type skillPattern struct {
	name    string
	pattern *regexp.Regexp
}

func wordSkill(name string) skillPattern {
	return skillPattern{name: name, pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)}
}

// skillVocabulary is matched in order; the first match of each entry is kept.
var skillVocabulary = []skillPattern{
	wordSkill("Python"),
	wordSkill("Java"),
	{name: "JavaScript", pattern: regexp.MustCompile(`(?i:\bjavascript\b)|\bJS\b`)},
	wordSkill("TypeScript"),
	{name: "Go", pattern: regexp.MustCompile(`\bGo\b|(?i:\bgolang\b)`)},
	wordSkill("Rust"),
	{name: "C++", pattern: regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9])c\+\+`)},
	{name: "C#", pattern: regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9])c#`)},
	wordSkill("Ruby"),
	wordSkill("PHP"),
	wordSkill("Kotlin"),
	wordSkill("Swift"),
	wordSkill("Scala"),
	wordSkill("SQL"),
	wordSkill("PostgreSQL"),
	wordSkill("MySQL"),
	wordSkill("MongoDB"),
	wordSkill("Redis"),
	wordSkill("Kafka"),
	wordSkill("GraphQL"),
	wordSkill("Machine Learning"),
	wordSkill("Deep Learning"),
	wordSkill("TensorFlow"),
	wordSkill("PyTorch"),
	wordSkill("FastAPI"),
	wordSkill("Django"),
	wordSkill("Flask"),
	wordSkill("Spring"),
	wordSkill("React"),
	wordSkill("Angular"),
	wordSkill("Vue"),
	{name: "Node.js", pattern: regexp.MustCompile(`(?i)\bnode(?:\.js|js)?\b`)},
	wordSkill("Docker"),
	wordSkill("Kubernetes"),
	wordSkill("Terraform"),
	wordSkill("AWS"),
	wordSkill("GCP"),
	wordSkill("Azure"),
	wordSkill("Linux"),
	wordSkill("Git"),
	{name: "CI/CD", pattern: regexp.MustCompile(`(?i)\bci\s*/\s*cd\b`)},
}

type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionSummary
	sectionExperience
	sectionEducation
	sectionSkills
	sectionOther
)

var sectionHeaders = map[string]sectionKind{
	"summary":                 sectionSummary,
	"professional summary":    sectionSummary,
	"profile":                 sectionSummary,
	"objective":               sectionSummary,
	"career objective":        sectionSummary,
	"about":                   sectionSummary,
	"about me":                sectionSummary,
	"experience":              sectionExperience,
	"work experience":         sectionExperience,
	"professional experience": sectionExperience,
	"employment":              sectionExperience,
	"employment history":      sectionExperience,
	"work history":            sectionExperience,
	"education":               sectionEducation,
	"academic background":     sectionEducation,
	"qualifications":          sectionEducation,
	"skills":                  sectionSkills,
	"technical skills":        sectionSkills,
	"core competencies":       sectionSkills,
	"projects":                sectionOther,
	"certifications":          sectionOther,
	"languages":               sectionOther,
	"interests":               sectionOther,
	"references":              sectionOther,
	"awards":                  sectionOther,
	"publications":            sectionOther,
	"volunteering":            sectionOther,
}

type section struct {
	kind  sectionKind
	lines []string
}

// splitSections groups lines under the most recent recognised header.
// Lines before the first header land in a sectionNone block.
func splitSections(lines []string) []section {
	sections := []section{{kind: sectionNone}}
	for _, line := range lines {
		if kind, ok := headerKind(line); ok {
			sections = append(sections, section{kind: kind})
			continue
		}
		last := &sections[len(sections)-1]
		last.lines = append(last.lines, line)
	}
	return sections
}

func headerKind(line string) (sectionKind, bool) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimRight(strings.TrimSpace(line), ":")))
	kind, ok := sectionHeaders[key]
	return kind, ok
}

func linesOf(sections []section, kind sectionKind) ([]string, bool) {
	var out []string
	found := false
	for _, s := range sections {
		if s.kind == kind {
			found = true
			out = append(out, s.lines...)
		}
	}
	return out, found
}

// ExtractWithPatterns is the deterministic extraction used when the model is
// unavailable and to fill fields the model left empty.
func ExtractWithPatterns(text string, extractSkills bool) models.Profile {
	lines := splitLines(text)
	sections := splitSections(lines)

	var p models.Profile
	p.PersonalInfo.Name = extractName(text, lines)
	p.PersonalInfo.Contact = models.Contact{
		Email:     emailPattern.FindString(text),
		Phone:     extractPhone(text),
		LinkedIn:  linkedInPattern.FindString(text),
		Location:  firstSubmatch(labeledLocationPattern, text),
		Portfolio: extractPortfolio(text),
	}

	if summary, ok := linesOf(sections, sectionSummary); ok {
		p.Summary.Text = strings.Join(nonEmpty(summary), " ")
	}

	if extractSkills {
		p.Skills = matchSkills(text)
	}

	eduLines, hasEducation := linesOf(sections, sectionEducation)
	expLines, hasExperience := linesOf(sections, sectionExperience)
	if !hasExperience {
		// Without headers, scan everything that is not known to be education.
		for _, s := range sections {
			if s.kind != sectionEducation {
				expLines = append(expLines, s.lines...)
			}
		}
	}
	p.Experience = extractExperience(expLines)
	p.Education = extractEducation(eduLines, hasEducation, lines)

	return p
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		out = append(out, strings.TrimSpace(l))
	}
	return out
}

func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func firstSubmatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func extractName(text string, lines []string) string {
	if name := firstSubmatch(labeledNamePattern, text); name != "" {
		return name
	}

	// Resumes usually open with the candidate's name on its own line.
	seen := 0
	for _, line := range lines {
		if line == "" {
			continue
		}
		seen++
		if seen > 5 {
			break
		}
		if looksLikeName(line) {
			return line
		}
	}
	return ""
}

func looksLikeName(line string) bool {
	if _, isHeader := headerKind(line); isHeader {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		runes := []rune(w)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) && r != '.' && r != '\'' && r != '-' {
				return false
			}
		}
	}
	return true
}

// NormalizePhone keeps a leading plus and the digits.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func extractPhone(text string) string {
	candidate := firstSubmatch(labeledPhonePattern, text)
	if candidate == "" {
		candidate = phonePattern.FindString(text)
	}
	if candidate == "" {
		return ""
	}
	phone := NormalizePhone(candidate)
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return ""
	}
	return phone
}

func extractPortfolio(text string) string {
	if gh := githubPattern.FindString(text); gh != "" {
		return gh
	}
	for _, u := range urlPattern.FindAllString(text, -1) {
		if !strings.Contains(strings.ToLower(u), "linkedin.com") {
			return strings.TrimRight(u, ".")
		}
	}
	return ""
}

func matchSkills(text string) []string {
	var skills []string
	for _, s := range skillVocabulary {
		if s.pattern.MatchString(text) {
			skills = append(skills, s.name)
		}
	}
	return skills
}

var bulletPrefixes = []string{"-", "•", "*", "–", "·", "▪", "●"}

func stripBullet(line string) (string, bool) {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(strings.TrimPrefix(line, p)), true
		}
	}
	return line, false
}

func extractExperience(lines []string) []models.ExperienceEntry {
	var entries []models.ExperienceEntry
	var current *models.ExperienceEntry

	for i, line := range lines {
		if line == "" {
			continue
		}

		loc := dateRangePattern.FindStringSubmatchIndex(line)
		if loc == nil {
			if current == nil {
				continue
			}
			desc, isBullet := stripBullet(line)
			if !isBullet && nextIsDated(lines, i) {
				// This line is the heading of the next entry.
				continue
			}
			if desc != "" {
				current.Description = append(current.Description, desc)
			}
			continue
		}

		start, _ := NormalizeDate(line[loc[2]:loc[3]])
		end, _ := NormalizeDate(line[loc[4]:loc[5]])

		rest := strings.TrimSpace(line[:loc[0]] + " " + line[loc[1]:])
		rest = strings.Trim(rest, " ,|-–—()[]:")
		if rest == "" {
			rest = previousHeading(lines, i)
		}
		title, company := splitTitleCompany(rest)

		entries = append(entries, models.ExperienceEntry{
			Title:     title,
			Company:   company,
			StartDate: start,
			EndDate:   end,
		})
		current = &entries[len(entries)-1]
	}
	return entries
}

func nextIsDated(lines []string, i int) bool {
	for j := i + 1; j < len(lines); j++ {
		if lines[j] == "" {
			continue
		}
		return dateRangePattern.MatchString(lines[j])
	}
	return false
}

func previousHeading(lines []string, i int) string {
	for j := i - 1; j >= 0; j-- {
		if lines[j] == "" {
			continue
		}
		if _, isBullet := stripBullet(lines[j]); isBullet || dateRangePattern.MatchString(lines[j]) {
			return ""
		}
		if _, isHeader := headerKind(lines[j]); isHeader {
			return ""
		}
		return lines[j]
	}
	return ""
}

var titleCompanySeparators = []string{" at ", " @ ", " | ", "|", " - ", " – ", " — ", ", "}

func splitTitleCompany(s string) (string, string) {
	for _, sep := range titleCompanySeparators {
		if idx := strings.Index(s, sep); idx > 0 {
			title := strings.TrimSpace(s[:idx])
			company := strings.Trim(strings.TrimSpace(s[idx+len(sep):]), ",|-–— ")
			return title, company
		}
	}
	return strings.TrimSpace(s), ""
}

func extractEducation(sectionLines []string, hasSection bool, allLines []string) []models.EducationEntry {
	candidates := sectionLines
	if !hasSection {
		candidates = allLines
	}

	var entries []models.EducationEntry
	for i, line := range candidates {
		if line == "" {
			continue
		}
		degree := matchDegree(line)
		if degree == "" {
			continue
		}
		if !hasSection && !institutionPattern.MatchString(line) {
			continue
		}

		entry := models.EducationEntry{
			Degree:       degree,
			FieldOfStudy: fieldOfStudy(line, degree),
			Institution:  institutionFrom(line),
		}
		if entry.Institution == "" && i+1 < len(candidates) && institutionPattern.MatchString(candidates[i+1]) {
			entry.Institution = strings.Trim(candidates[i+1], " ,|")
		}

		if loc := dateRangePattern.FindStringSubmatchIndex(line); loc != nil {
			entry.StartDate, _ = NormalizeDate(line[loc[2]:loc[3]])
			entry.EndDate, _ = NormalizeDate(line[loc[4]:loc[5]])
		} else if years := yearPattern.FindAllString(line, -1); len(years) > 0 {
			entry.EndDate = years[len(years)-1]
		}

		entries = append(entries, entry)
	}
	return entries
}

func matchDegree(line string) string {
	if m := degreeWordPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := degreeAbbrevPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// fieldOfStudy reads "in X" or "of X" after the degree, so "Bachelor of
// Science in Physics" yields Physics.
func fieldOfStudy(line, degree string) string {
	rest := line
	if idx := strings.Index(line, degree); idx >= 0 {
		rest = line[idx+len(degree):]
	}
	return firstSubmatch(fieldOfStudyPattern, rest)
}

func institutionFrom(line string) string {
	if loc := dateRangePattern.FindStringIndex(line); loc != nil {
		line = line[:loc[0]] + line[loc[1]:]
	}
	parts := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == '|' || r == '–' || r == '—' || r == '(' || r == ')'
	})
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if idx := strings.Index(strings.ToLower(part), " at "); idx >= 0 {
			part = strings.TrimSpace(part[idx+4:])
		}
		if institutionPattern.MatchString(part) {
			return strings.TrimSpace(yearPattern.ReplaceAllString(part, ""))
		}
	}
	return ""
}

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// NormalizeDate converts the date shapes found in resumes to YYYY-MM, or YYYY
// when only the year is known. Open-ended markers ("present") yield "" and true.
func NormalizeDate(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "present", "current", "now", "today":
		return "", true
	}

	if m := monthYearPattern.FindStringSubmatch(s); m != nil && len(m[1]) >= 3 {
		if month, ok := monthNumbers[m[1][:3]]; ok {
			return fmt.Sprintf("%s-%02d", m[2], month), true
		}
	}
	if m := yearMonthPattern.FindStringSubmatch(s); m != nil {
		if month, err := strconv.Atoi(m[2]); err == nil && month >= 1 && month <= 12 {
			return fmt.Sprintf("%s-%02d", m[1], month), true
		}
	}
	if m := monthFirstPattern.FindStringSubmatch(s); m != nil {
		if month, err := strconv.Atoi(m[1]); err == nil && month >= 1 && month <= 12 {
			return fmt.Sprintf("%s-%02d", m[2], month), true
		}
	}
	if m := yearOnlyPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return strings.TrimSpace(raw), false
}
