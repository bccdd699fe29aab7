package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"labgen-server/models"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CAP Theorem!!", "CAP_Theorem"},
		{"NoSQL Database", "NoSQL_Database"},
		{"a  b", "a_b"},
		{"trailing dots..", "trailing_dots"},
		{"trailing__", "trailing"},
		{"semi;colon/slash", "semicolonslash"},
		{"keep-these.chars_ok", "keep-these.chars_ok"},
		{"", ""},
	}
	for _, tt := range tests {
		got := SanitizeFilename(tt.in, DefaultMaxFilenameLength)
		if got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
		// Sanitizing an already-sanitized name must be a no-op.
		if again := SanitizeFilename(got, DefaultMaxFilenameLength); again != got {
			t.Errorf("SanitizeFilename not idempotent for %q: %q then %q", tt.in, got, again)
		}
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("ab", 80)
	got := SanitizeFilename(long, DefaultMaxFilenameLength)
	if len([]rune(got)) != DefaultMaxFilenameLength {
		t.Errorf("expected %d runes, got %d", DefaultMaxFilenameLength, len([]rune(got)))
	}
	// Truncation must not leave a trailing separator behind.
	if got := SanitizeFilename("aaaa_bbbb", 5); got != "aaaa" {
		t.Errorf("expected truncation to strip the trailing underscore, got %q", got)
	}
}

func sampleResult(success bool) models.GenerationResult {
	lab := models.Lab{
		Title:         "Hands-On Lab: CAP Theorem",
		Topic:         "Introduction to NoSQL Databases",
		Difficulty:    models.DifficultyMedium,
		EstimatedTime: 45,
		Sections: []models.Section{
			{
				Concept:          "CAP Theorem",
				Title:            "Exploring CAP Theorem",
				Difficulty:       models.DifficultyMedium,
				ScaffoldingLevel: models.ScaffoldingMedium,
				Exercises: []models.Exercise{
					{
						Type:        models.ExerciseGuided,
						Hints:       2,
						Description: "Trade consistency for availability",
						StarterCode: "# starter\n",
						Solution:    "# solution\n",
						TestCases:   []models.TestCase{},
					},
				},
				LearningObjectives: []string{"Understand CAP Theorem"},
				Background:         "consistency availability partitioning",
			},
		},
		Prerequisites: []string{"Basic programming knowledge"},
		Technologies:  []string{"Python"},
	}
	result := models.GenerationResult{
		Lab: lab,
		Metadata: models.GenerationMetadata{
			ConceptName:       "CAP Theorem",
			ConceptDefinition: "consistency availability partitioning",
			SourceTopic:       "Introduction to NoSQL Databases",
			ModelUsed:         "template",
		},
		Success: success,
	}
	if !success {
		result.Error = "completion request failed"
	}
	return result
}

func TestOrganizeLabOutput(t *testing.T) {
	dir := t.TempDir()
	result := sampleResult(true)

	files, err := OrganizeLabOutput(result, dir, "CAP Theorem!!")
	if err != nil {
		t.Fatalf("OrganizeLabOutput failed: %v", err)
	}

	wantDir := filepath.Join(dir, "CAP_Theorem")
	if files.ConceptDir != wantDir {
		t.Errorf("concept dir = %q, want %q", files.ConceptDir, wantDir)
	}
	if files.FullLabFile != filepath.Join(wantDir, "CAP_Theorem_lab.json") {
		t.Errorf("unexpected full lab file path %q", files.FullLabFile)
	}
	if files.SimplifiedFile != filepath.Join(wantDir, SimplifiedFilename) {
		t.Errorf("unexpected simplified file path %q", files.SimplifiedFile)
	}

	// The full artifact carries the result envelope.
	fullData, err := os.ReadFile(files.FullLabFile)
	if err != nil {
		t.Fatalf("failed to read full artifact: %v", err)
	}
	var roundTripped models.GenerationResult
	if err := json.Unmarshal(fullData, &roundTripped); err != nil {
		t.Fatalf("full artifact is not valid JSON: %v", err)
	}
	if !roundTripped.Success || roundTripped.Metadata.ConceptName != "CAP Theorem" {
		t.Errorf("full artifact lost the result envelope: %+v", roundTripped.Metadata)
	}

	// The simplified artifact round-trips to the exact same lab.
	simpleData, err := os.ReadFile(files.SimplifiedFile)
	if err != nil {
		t.Fatalf("failed to read simplified artifact: %v", err)
	}
	var lab models.Lab
	if err := json.Unmarshal(simpleData, &lab); err != nil {
		t.Fatalf("simplified artifact is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(lab, result.Lab) {
		t.Errorf("simplified artifact did not round-trip:\ngot  %+v\nwant %+v", lab, result.Lab)
	}
	if strings.Contains(string(simpleData), `"metadata"`) {
		t.Error("simplified artifact must not carry generation metadata")
	}
}

func TestBuildSummaryReport(t *testing.T) {
	ok := sampleResult(true)
	failed := sampleResult(false)
	failed.Metadata.ConceptName = "Sharding"

	report := BuildSummaryReport([]models.GenerationResult{ok, failed, ok})
	if report.TotalLabs != 3 || report.Successful != 2 || report.Failed != 1 {
		t.Errorf("unexpected counts: total=%d successful=%d failed=%d",
			report.TotalLabs, report.Successful, report.Failed)
	}
	if len(report.Labs) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(report.Labs))
	}
	if report.Labs[1].Concept != "Sharding" || report.Labs[1].Success {
		t.Errorf("row order not preserved: %+v", report.Labs[1])
	}
	if report.Labs[1].Error == "" {
		t.Error("failed row should carry the error message")
	}
	if report.Labs[0].NumSections != 1 || report.Labs[0].EstimatedTime != 45 {
		t.Errorf("unexpected successful row: %+v", report.Labs[0])
	}
}

func TestWriteSummaryReport(t *testing.T) {
	dir := t.TempDir()
	report := BuildSummaryReport([]models.GenerationResult{sampleResult(true)})

	path, err := WriteSummaryReport(report, dir)
	if err != nil {
		t.Fatalf("WriteSummaryReport failed: %v", err)
	}
	if path != filepath.Join(dir, SummaryFilename) {
		t.Errorf("unexpected report path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	var parsed models.SummaryReport
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if parsed.TotalLabs != 1 || parsed.Successful != 1 {
		t.Errorf("report did not round-trip: %+v", parsed)
	}
}
