package standardize

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Similarity cutoffs for fuzzy canonical matching. Splitting demands a much
// closer match than post-split normalization does.
const (
	programCutoff    = 0.78
	universityCutoff = 0.80
	splitCutoff      = 0.88
)

var ErrNoResolver = errors.New("no resolution model configured")

var (
	whitespaceRe     = regexp.MustCompile(`\s+`)
	trailingAbbrevRe = regexp.MustCompile(`\s*\([A-Z]{2,}\)\s*$`)
	leadingDeptRe    = regexp.MustCompile(`(?i)^(department|dept\.?)\s+of\s+`)

	universityKeywordRe = regexp.MustCompile(`(?i)\b(university|college|institute|school|polytechnic|academy|conservatory|seminary)\b` +
		`|\b(MIT|UCLA|USC|NYU|CUNY|SUNY|UCSF|UCSD|UCI|UCR|UCD|UCSB|UCSC|UCB|UBC|EPFL|ETH|Caltech|Emory|Purdue|Rutgers|Drexel|Brandeis|Tufts|Vanderbilt|Georgetown|Stanford|Harvard|Yale|Princeton|Columbia|Cornell|Dartmouth|Brown|Rice|Duke|Oxford|Cambridge)\b`)
)

// High-signal abbreviation expansions, checked against the whole university
// string before any other normalization.
var universityAbbreviations = []struct {
	pattern *regexp.Regexp
	name    string
}{
	{regexp.MustCompile(`(?i)^mcg(\.|ill)?$`), "McGill University"},
	{regexp.MustCompile(`(?i)^(ubc|u\.?b\.?c\.?)$`), "University of British Columbia"},
	{regexp.MustCompile(`(?i)^uoft$`), "University of Toronto"},
}

var universityFixes = map[string]string{
	"McGiill University":             "McGill University",
	"Mcgill University":              "McGill University",
	"University Of British Columbia": "University of British Columbia",
}

var programFixes = map[string]string{
	"Mathematic":   "Mathematics",
	"Info Studies": "Information Studies",
	"CS":           "Computer Science",
	"Comp Sci":     "Computer Science",
}

type smallWord struct {
	re    *regexp.Regexp
	lower string
}

// Connective words lowered after title casing.
var (
	programSmallWords    = compileSmallWords("And", "Of", "In", "For", "The", "With", "To")
	universitySmallWords = compileSmallWords("Of", "And", "In", "For", "The", "At", "De", "Du", "Des")
)

func compileSmallWords(words ...string) []smallWord {
	compiled := make([]smallWord, 0, len(words))
	for _, word := range words {
		compiled = append(compiled, smallWord{
			re:    regexp.MustCompile(`\b` + word + `\b`),
			lower: strings.ToLower(word),
		})
	}
	return compiled
}

// Standardizer resolves free-text program and university strings into
// canonical pairs. The rule path handles the common shapes; ambiguous inputs
// fall back to a cached model call.
type Standardizer struct {
	rules    *Rules
	cache    *Cache
	resolver Resolver
}

func NewStandardizer(rules *Rules, cache *Cache, resolver Resolver) *Standardizer {
	return &Standardizer{
		rules:    rules,
		cache:    cache,
		resolver: resolver,
	}
}

// Run resolves the combined program-and-university text. The rule path is
// tried first; when it cannot confidently resolve both sides, the bounded
// cache is consulted and, on a miss, the model collaborator is invoked and
// its answer cached. A resolver failure is returned to the caller, who keeps
// the entry with empty canonical fields rather than dropping it.
func (s *Standardizer) Run(ctx context.Context, text string) (Result, error) {
	if result, ok := s.ruleResolve(text); ok {
		return result, nil
	}

	if cached, ok := s.cache.Get(text); ok {
		return cached, nil
	}

	if s.resolver == nil {
		return Result{}, ErrNoResolver
	}

	result, err := s.resolver.Resolve(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve program text: %w", err)
	}

	result.Program = s.normalizeProgram(result.Program)
	result.University = s.normalizeUniversity(result.University)

	s.cache.Add(text, result)

	return result, nil
}

// ruleResolve attempts the fast path: right-scan splitting plus canonical
// normalization. Returns false when the input is too ambiguous to resolve
// without the model.
func (s *Standardizer) ruleResolve(text string) (Result, bool) {
	if strings.TrimSpace(text) == "" {
		return Result{Program: "Unknown", University: "Unknown"}, true
	}

	rawProgram, rawUniversity := s.smartSplit(text)
	if rawUniversity == "" {
		return Result{}, false
	}

	result := Result{
		Program:    s.normalizeProgram(rawProgram),
		University: s.normalizeUniversity(rawUniversity),
	}

	if result.University != "Unknown" && result.Program != "" {
		return result, true
	}

	return Result{}, false
}

// smartSplit splits a combined "program, university" string by scanning
// comma parts from the right for the university portion, so multi-comma
// program names like "Criminology, Law and Society, Temple University"
// split correctly.
func (s *Standardizer) smartSplit(text string) (string, string) {
	text = strings.Trim(strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " ")), ",")

	parts := []string{}
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	if len(parts) <= 1 {
		return text, ""
	}

	for i := len(parts) - 1; i >= 1; i-- {
		candidate := strings.Join(parts[i:], ", ")

		if s.rules.HasUniversity(candidate) {
			return strings.Join(parts[:i], ", "), candidate
		}
		if match, ok := s.rules.MatchUniversity(candidate, splitCutoff); ok {
			return strings.Join(parts[:i], ", "), match
		}
		if universityKeywordRe.MatchString(candidate) {
			return strings.Join(parts[:i], ", "), candidate
		}
	}

	return parts[0], strings.Join(parts[1:], ", ")
}

func (s *Standardizer) normalizeProgram(name string) string {
	p := strings.TrimSpace(name)

	if fix, ok := programFixes[p]; ok {
		p = fix
	}

	p = trailingAbbrevRe.ReplaceAllString(p, "")
	p = leadingDeptRe.ReplaceAllString(p, "")
	p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), ","))
	p = titleCase(p, programSmallWords)

	if p == "" {
		return ""
	}
	if s.rules.HasProgram(p) {
		return p
	}
	if match, ok := s.rules.MatchProgram(p, programCutoff); ok {
		return match
	}

	return p
}

func (s *Standardizer) normalizeUniversity(name string) string {
	u := strings.TrimSpace(name)

	for _, abbrev := range universityAbbreviations {
		if abbrev.pattern.MatchString(u) {
			u = abbrev.name
			break
		}
	}

	if fix, ok := universityFixes[u]; ok {
		u = fix
	}

	u = strings.TrimSpace(trailingAbbrevRe.ReplaceAllString(u, ""))
	u = titleCase(u, universitySmallWords)

	// Title casing mangles mixed-case names ("McGill" -> "Mcgill"); the fix
	// map catches those artifacts, so it is consulted again here.
	if fix, ok := universityFixes[u]; ok {
		u = fix
	}

	if s.rules.HasUniversity(u) {
		return u
	}
	if match, ok := s.rules.MatchUniversity(u, universityCutoff); ok {
		return match
	}
	if u == "" {
		return "Unknown"
	}

	return u
}

// titleCase title-cases every word, lowers the listed connective words, and
// re-uppercases the first character.
func titleCase(text string, smallWords []smallWord) string {
	if text == "" {
		return ""
	}

	text = cases.Title(language.AmericanEnglish).String(text)

	for _, word := range smallWords {
		text = word.re.ReplaceAllString(text, word.lower)
	}

	runes := []rune(text)
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]

	return string(runes)
}
