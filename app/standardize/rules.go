package standardize

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"
)

// Rules holds the canonical reference lists the rule path matches against.
type Rules struct {
	Programs     []string `yaml:"programs"`
	Universities []string `yaml:"universities"`
}

// LoadRules reads the canonical name lists from a YAML file. A missing file
// is not an error: the standardizer then relies on keyword heuristics and
// the fallback path alone.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Rules{}, nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &rules, nil
}

func (r *Rules) HasProgram(name string) bool {
	return contains(r.Programs, name)
}

func (r *Rules) HasUniversity(name string) bool {
	return contains(r.Universities, name)
}

// MatchProgram returns the canonical program closest to name, if its
// similarity clears the cutoff.
func (r *Rules) MatchProgram(name string, cutoff float64) (string, bool) {
	return bestMatch(name, r.Programs, cutoff)
}

// MatchUniversity returns the canonical university closest to name, if its
// similarity clears the cutoff.
func (r *Rules) MatchUniversity(name string, cutoff float64) (string, bool) {
	return bestMatch(name, r.Universities, cutoff)
}

func contains(list []string, name string) bool {
	for _, candidate := range list {
		if candidate == name {
			return true
		}
	}
	return false
}

func bestMatch(name string, candidates []string, cutoff float64) (string, bool) {
	if name == "" || len(candidates) == 0 {
		return "", false
	}

	best := ""
	bestScore := 0.0

	for _, candidate := range candidates {
		if score := similarity(name, candidate); score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if bestScore < cutoff {
		return "", false
	}

	return best, true
}

// similarity is a normalized edit-distance score in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 0
	}

	distance := levenshtein.ComputeDistance(a, b)

	return 1 - float64(distance)/float64(longest)
}
