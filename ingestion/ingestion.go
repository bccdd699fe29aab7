package ingestion

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"labgen-server/models"
)

// exportTheory mirrors one entry of the knowledge graph export: a topic with
// its nested concepts. text_evidence is carried by the export but is not part
// of the concept record contract, so it is read and discarded.
type exportTheory struct {
	Topic    string          `json:"topic" yaml:"topic"`
	Concepts []exportConcept `json:"concepts" yaml:"concepts"`
}

type exportConcept struct {
	Name         string `json:"name" yaml:"name"`
	Definition   string `json:"definition" yaml:"definition"`
	TextEvidence string `json:"text_evidence" yaml:"text_evidence"`
}

type conceptExport struct {
	Theories []exportTheory `json:"theories" yaml:"theories"`
}

// LoadConcepts reads a knowledge graph export file and flattens the nested
// theory/concept structure into an ordered concept list. Order follows the
// export, so callers may rely on index-based limiting ("first N concepts").
// A missing topic defaults to "Unknown" and records with an empty name are
// skipped with a warning. JSON is the primary format; .yaml
// and .yml exports with the same structure are also accepted.
func LoadConcepts(exportPath string) ([]models.Concept, error) {
	data, err := os.ReadFile(exportPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read concept export %s: %w", exportPath, err)
	}
	var export conceptExport
	switch strings.ToLower(filepath.Ext(exportPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &export); err != nil {
			return nil, fmt.Errorf("failed to parse YAML export %s: %w", exportPath, err)
		}
	default:
		if err := json.Unmarshal(data, &export); err != nil {
			return nil, fmt.Errorf("failed to parse JSON export %s: %w", exportPath, err)
		}
	}
	var concepts []models.Concept
	for _, theory := range export.Theories {
		topic := theory.Topic
		if topic == "" {
			topic = "Unknown"
		}
		for _, c := range theory.Concepts {
			// A concept record without a name cannot be generated, filed or
			// looked up; drop it rather than fail the whole export.
			if c.Name == "" {
				log.Printf("Skipping concept with empty name under topic %q in %s", topic, exportPath)
				continue
			}
			concepts = append(concepts, models.Concept{
				Name:       c.Name,
				Definition: c.Definition,
				Topic:      topic,
			})
		}
	}
	log.Printf("Loaded %d concepts from %s", len(concepts), exportPath)
	return concepts, nil
}

// FindConcept looks up a concept by name, case-insensitively. The second
// return value reports whether a match was found.
func FindConcept(concepts []models.Concept, name string) (models.Concept, bool) {
	for _, c := range concepts {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return models.Concept{}, false
}

// Limit returns the first n concepts. n <= 0 means no limit.
func Limit(concepts []models.Concept, n int) []models.Concept {
	if n <= 0 || n >= len(concepts) {
		return concepts
	}
	return concepts[:n]
}
