package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"labgen-server/models"
)

const sampleExportJSON = `{
  "theories": [
    {
      "topic": "Introduction to NoSQL Databases",
      "concepts": [
        {"name": "NoSQL Database", "definition": "non-relational databases", "text_evidence": "page 3"},
        {"name": "CAP Theorem", "definition": "consistency availability partitioning"}
      ]
    },
    {
      "concepts": [
        {"name": "Orphan Concept", "definition": ""}
      ]
    }
  ]
}`

func writeExport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write export fixture: %v", err)
	}
	return path
}

func TestLoadConceptsFlattensExport(t *testing.T) {
	path := writeExport(t, "export.json", sampleExportJSON)
	concepts, err := LoadConcepts(path)
	if err != nil {
		t.Fatalf("LoadConcepts failed: %v", err)
	}

	want := []models.Concept{
		{Name: "NoSQL Database", Definition: "non-relational databases", Topic: "Introduction to NoSQL Databases"},
		{Name: "CAP Theorem", Definition: "consistency availability partitioning", Topic: "Introduction to NoSQL Databases"},
		{Name: "Orphan Concept", Definition: "", Topic: "Unknown"},
	}
	if len(concepts) != len(want) {
		t.Fatalf("expected %d concepts, got %d", len(want), len(concepts))
	}
	for i, w := range want {
		if concepts[i] != w {
			t.Errorf("concept %d: got %+v, want %+v", i, concepts[i], w)
		}
	}
}

func TestLoadConceptsYAML(t *testing.T) {
	path := writeExport(t, "export.yaml", `
theories:
  - topic: Big Data
    concepts:
      - name: MapReduce
        definition: split-apply-combine at scale
        text_evidence: chapter 2
`)
	concepts, err := LoadConcepts(path)
	if err != nil {
		t.Fatalf("LoadConcepts failed on YAML: %v", err)
	}
	if len(concepts) != 1 {
		t.Fatalf("expected 1 concept, got %d", len(concepts))
	}
	want := models.Concept{Name: "MapReduce", Definition: "split-apply-combine at scale", Topic: "Big Data"}
	if concepts[0] != want {
		t.Errorf("got %+v, want %+v", concepts[0], want)
	}
}

func TestLoadConceptsSkipsEmptyNames(t *testing.T) {
	path := writeExport(t, "export.json", `{
  "theories": [
    {
      "topic": "NoSQL",
      "concepts": [
        {"name": "", "definition": "unnamed record"},
        {"name": "CAP Theorem", "definition": "consistency availability partitioning"}
      ]
    }
  ]
}`)
	concepts, err := LoadConcepts(path)
	if err != nil {
		t.Fatalf("LoadConcepts failed: %v", err)
	}
	if len(concepts) != 1 {
		t.Fatalf("expected the unnamed record to be dropped, got %d concepts", len(concepts))
	}
	if concepts[0].Name != "CAP Theorem" {
		t.Errorf("kept the wrong record: %+v", concepts[0])
	}
}

func TestLoadConceptsErrors(t *testing.T) {
	if _, err := LoadConcepts(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing export file")
	}

	path := writeExport(t, "bad.json", "{ this is not json")
	if _, err := LoadConcepts(path); err == nil {
		t.Error("expected an error for an unparseable export file")
	}
}

func TestFindConceptCaseInsensitive(t *testing.T) {
	concepts := []models.Concept{
		{Name: "NoSQL Database", Topic: "NoSQL"},
		{Name: "CAP Theorem", Topic: "NoSQL"},
	}

	got, found := FindConcept(concepts, "cap theorem")
	if !found {
		t.Fatal("expected a case-insensitive match")
	}
	if got.Name != "CAP Theorem" {
		t.Errorf("expected the original record, got %+v", got)
	}

	if _, found := FindConcept(concepts, "Sharding"); found {
		t.Error("expected no match for an unknown concept")
	}
}

func TestLimit(t *testing.T) {
	concepts := []models.Concept{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	if got := Limit(concepts, 2); len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Errorf("Limit(2) should keep the first two in order, got %+v", got)
	}
	if got := Limit(concepts, 0); len(got) != 3 {
		t.Errorf("Limit(0) should keep everything, got %d", len(got))
	}
	if got := Limit(concepts, 10); len(got) != 3 {
		t.Errorf("limit larger than the list should keep everything, got %d", len(got))
	}
}
