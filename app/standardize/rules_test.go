package standardize

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canon.yml")

	content := `programs:
  - Computer Science
  - Information Studies
universities:
  - McGill University
  - University of British Columbia
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Expected no error writing fixture, got: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(rules.Programs) != 2 {
		t.Errorf("Expected 2 programs, got: %d", len(rules.Programs))
	}
	if len(rules.Universities) != 2 {
		t.Errorf("Expected 2 universities, got: %d", len(rules.Universities))
	}
	if !rules.HasProgram("Computer Science") {
		t.Error("Expected 'Computer Science' in programs")
	}
	if !rules.HasUniversity("McGill University") {
		t.Error("Expected 'McGill University' in universities")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "absent.yml"))

	if err != nil {
		t.Fatalf("Expected missing file to degrade to empty rules, got: %v", err)
	}
	if len(rules.Programs) != 0 || len(rules.Universities) != 0 {
		t.Errorf("Expected empty rules, got: %d programs, %d universities", len(rules.Programs), len(rules.Universities))
	}
}

func TestLoadRulesInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yml")

	if err := os.WriteFile(path, []byte("programs: [unclosed"), 0644); err != nil {
		t.Fatalf("Expected no error writing fixture, got: %v", err)
	}

	if _, err := LoadRules(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestMatchUniversity(t *testing.T) {
	rules := &Rules{
		Universities: []string{"Stanford University", "McGill University"},
	}

	match, ok := rules.MatchUniversity("Stanford Universty", 0.80)
	if !ok {
		t.Fatal("Expected fuzzy match for close misspelling")
	}
	if match != "Stanford University" {
		t.Errorf("Expected 'Stanford University', got: %s", match)
	}

	if _, ok := rules.MatchUniversity("Completely Different Place", 0.80); ok {
		t.Error("Expected no match below the cutoff")
	}
	if _, ok := rules.MatchUniversity("", 0.80); ok {
		t.Error("Expected no match for empty input")
	}
}

func TestSimilarity(t *testing.T) {
	if got := similarity("same", "same"); got != 1 {
		t.Errorf("Expected similarity 1 for identical strings, got: %f", got)
	}
	if got := similarity("abc", "xyz"); got != 0 {
		t.Errorf("Expected similarity 0 for disjoint strings, got: %f", got)
	}

	got := similarity("Stanford University", "Stanford Universty")
	if got < 0.9 || got >= 1 {
		t.Errorf("Expected similarity just below 1 for a single dropped letter, got: %f", got)
	}
}
