package generator

import (
	"context"
	"fmt"
	"strings"

	"labgen-server/models"
	"labgen-server/utils"
)

// difficultyRule maps a keyword found in a concept name or definition to a
// difficulty level. Rules are scanned in order and the first match wins, so
// the table order is part of the classifier contract: "System Design" with
// definition "a database technique" resolves to hard via "system", not medium
// via "database".
type difficultyRule struct {
	Keyword    string
	Difficulty string
}

// canonicalDifficultyTable is the fixed, ordered keyword table. Hard concepts
// first, then medium, then easy.
var canonicalDifficultyTable = []difficultyRule{
	{"system", models.DifficultyHard},
	{"algorithm", models.DifficultyHard},
	{"model", models.DifficultyHard},
	{"database", models.DifficultyMedium},
	{"processing", models.DifficultyMedium},
	{"analysis", models.DifficultyMedium},
	{"framework", models.DifficultyMedium},
	{"technique", models.DifficultyMedium},
	{"data", models.DifficultyEasy},
	{"storage", models.DifficultyEasy},
}

// Static defaults for template-generated labs. Configurable in principle, but
// these values are the parity baseline.
var (
	defaultPrerequisites = []string{"Basic programming knowledge", "Understanding of databases"}
	defaultTechnologies  = []string{"Python", "Jupyter Notebook"}
)

// TemplateGenerator is the deterministic, rule-based strategy. It needs no
// external service and classifies, times and templates a lab purely from the
// concept record.
type TemplateGenerator struct {
	table         []difficultyRule
	prerequisites []string
	technologies  []string
}

// NewTemplateGenerator returns a template generator using the canonical
// keyword table and default prerequisites/technologies.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{
		table:         canonicalDifficultyTable,
		prerequisites: defaultPrerequisites,
		technologies:  defaultTechnologies,
	}
}

func (g *TemplateGenerator) Name() string { return "template" }

// determineDifficulty classifies a concept. The keyword table is consulted
// first (case-insensitive, over name then definition); only when no keyword
// matches does the definition-length fallback apply.
func (g *TemplateGenerator) determineDifficulty(conceptName, definition string) string {
	nameLower := strings.ToLower(conceptName)
	defLower := strings.ToLower(definition)
	for _, rule := range g.table {
		if strings.Contains(nameLower, rule.Keyword) || strings.Contains(defLower, rule.Keyword) {
			return rule.Difficulty
		}
	}
	// Length fallback: longer definitions tend to describe harder concepts.
	switch {
	case len(definition) > 200:
		return models.DifficultyHard
	case len(definition) > 100:
		return models.DifficultyMedium
	default:
		return models.DifficultyEasy
	}
}

// estimateTime returns the lab time estimate in minutes: a base per
// difficulty plus 15 minutes for every section beyond the first.
func (g *TemplateGenerator) estimateTime(difficulty string, numSections int) int {
	base := 45
	switch difficulty {
	case models.DifficultyEasy:
		base = 30
	case models.DifficultyMedium:
		base = 45
	case models.DifficultyHard:
		base = 60
	}
	return base + (numSections-1)*15
}

// createExercises builds the exercise list for a concept: always one guided
// exercise (3 hints when easy, otherwise 2), plus one challenge exercise with
// a single hint for medium and hard concepts. This strategy never emits
// exploration exercises.
func (g *TemplateGenerator) createExercises(conceptName, difficulty string) []models.Exercise {
	guidedHints := 2
	if difficulty == models.DifficultyEasy {
		guidedHints = 3
	}
	exercises := []models.Exercise{
		{
			Type:        models.ExerciseGuided,
			Hints:       guidedHints,
			Description: fmt.Sprintf("Implement a basic example demonstrating %s", conceptName),
			StarterCode: fmt.Sprintf("# TODO: Implement %s\n# Your code here\n", conceptName),
			Solution:    fmt.Sprintf("# Solution for %s\n# Implementation details\n", conceptName),
			TestCases: []models.TestCase{
				{Input: "test_input", Expected: "expected_output"},
			},
		},
	}
	if difficulty == models.DifficultyMedium || difficulty == models.DifficultyHard {
		exercises = append(exercises, models.Exercise{
			Type:        models.ExerciseChallenge,
			Hints:       1,
			Description: fmt.Sprintf("Apply %s to solve a real-world problem", conceptName),
			StarterCode: fmt.Sprintf("# Challenge: Advanced %s\n", conceptName),
			Solution:    "# Advanced solution\n",
			TestCases:   []models.TestCase{},
		})
	}
	return exercises
}

// Generate builds a template-based lab for a concept. Any constructed lab
// that fails validation is replaced by the canonical fallback with
// Success=false; the method itself never fails.
func (g *TemplateGenerator) Generate(ctx context.Context, concept models.Concept, personalization string) models.GenerationResult {
	difficulty := g.determineDifficulty(concept.Name, concept.Definition)
	title := fmt.Sprintf("Hands-On Lab: %s", concept.Name)
	if personalization != "" {
		title = fmt.Sprintf("Hands-On Lab: %s in %s", concept.Name, utils.TitleCase(personalization))
	}
	section := models.Section{
		Concept:          concept.Name,
		Title:            fmt.Sprintf("Exploring %s", concept.Name),
		Difficulty:       difficulty,
		ScaffoldingLevel: models.ScaffoldingMedium,
		Exercises:        g.createExercises(concept.Name, difficulty),
		LearningObjectives: []string{
			fmt.Sprintf("Understand the fundamentals of %s", concept.Name),
			fmt.Sprintf("Apply %s in practical scenarios", concept.Name),
			fmt.Sprintf("Implement solutions using %s", concept.Name),
		},
		Background: concept.Definition,
	}
	lab := models.Lab{
		Title:                  title,
		Topic:                  concept.Topic,
		Difficulty:             difficulty,
		EstimatedTime:          g.estimateTime(difficulty, 1),
		Sections:               []models.Section{section},
		Prerequisites:          g.prerequisites,
		Technologies:           g.technologies,
		PersonalizationContext: personalization,
	}
	if err := lab.Validate(); err != nil {
		return fallbackResult(concept, g.Name(), fmt.Errorf("template lab failed validation: %w", err))
	}
	return models.GenerationResult{
		Lab: lab,
		Metadata: models.GenerationMetadata{
			ConceptName:            concept.Name,
			ConceptDefinition:      concept.Definition,
			SourceTopic:            concept.Topic,
			ModelUsed:              g.Name(),
			PersonalizationApplied: personalization != "",
		},
		Success: true,
	}
}
