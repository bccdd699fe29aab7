package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"labgen-server/models"
)

// DefaultMaxFilenameLength bounds sanitized names used for directories and
// artifact files.
const DefaultMaxFilenameLength = 100

// Artifact filenames written per concept and per run.
const (
	SimplifiedFilename = "lab_content.json"
	SummaryFilename    = "generation_summary.json"
)

// SavedFiles reports where a concept's artifacts were written.
type SavedFiles struct {
	ConceptDir     string `json:"concept_dir"`
	FullLabFile    string `json:"full_lab_file"`
	SimplifiedFile string `json:"simplified_file"`
}

// SanitizeFilename transforms a concept name into a filesystem-safe name:
// spaces become underscores, anything outside [alphanumeric _ - .] is
// dropped, underscore runs collapse to one, the result is truncated to
// maxLength and trailing underscores or periods are stripped. The transform
// is idempotent.
func SanitizeFilename(name string, maxLength int) string {
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range strings.ReplaceAll(name, " ", "_") {
		ok := r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
		if !ok {
			continue
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}
	sanitized := b.String()
	if runes := []rune(sanitized); len(runes) > maxLength {
		sanitized = string(runes[:maxLength])
	}
	return strings.TrimRight(sanitized, "_.")
}

// saveJSON writes v as indented JSON to path.
func saveJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// OrganizeLabOutput writes a generation result under a per-concept directory:
// a full artifact (<sanitized>_lab.json with lab, metadata, success, error)
// and a simplified one (lab_content.json with just the lab fields).
func OrganizeLabOutput(result models.GenerationResult, outputDir, conceptName string) (SavedFiles, error) {
	sanitized := SanitizeFilename(conceptName, DefaultMaxFilenameLength)
	conceptDir := filepath.Join(outputDir, sanitized)
	if err := os.MkdirAll(conceptDir, 0o755); err != nil {
		return SavedFiles{}, fmt.Errorf("failed to create output directory %s: %w", conceptDir, err)
	}
	fullFile := filepath.Join(conceptDir, sanitized+"_lab.json")
	if err := saveJSON(result, fullFile); err != nil {
		return SavedFiles{}, err
	}
	simplifiedFile := filepath.Join(conceptDir, SimplifiedFilename)
	if err := saveJSON(result.Lab, simplifiedFile); err != nil {
		return SavedFiles{}, err
	}
	return SavedFiles{
		ConceptDir:     conceptDir,
		FullLabFile:    fullFile,
		SimplifiedFile: simplifiedFile,
	}, nil
}

// BuildSummaryReport aggregates per-concept outcomes into the run summary.
// One row per result, in result order.
func BuildSummaryReport(results []models.GenerationResult) models.SummaryReport {
	report := models.SummaryReport{
		TotalLabs: len(results),
		Labs:      make([]models.LabSummary, 0, len(results)),
	}
	for _, r := range results {
		if r.Success {
			report.Successful++
		} else {
			report.Failed++
		}
		report.Labs = append(report.Labs, models.LabSummary{
			Concept:       r.Metadata.ConceptName,
			Topic:         r.Metadata.SourceTopic,
			Title:         r.Lab.Title,
			Difficulty:    r.Lab.Difficulty,
			EstimatedTime: r.Lab.EstimatedTime,
			NumSections:   len(r.Lab.Sections),
			Success:       r.Success,
			Error:         r.Error,
		})
	}
	return report
}

// WriteSummaryReport saves the run summary as generation_summary.json under
// outputDir and returns the file path.
func WriteSummaryReport(report models.SummaryReport, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	path := filepath.Join(outputDir, SummaryFilename)
	if err := saveJSON(report, path); err != nil {
		return "", err
	}
	return path, nil
}
