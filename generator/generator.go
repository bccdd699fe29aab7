package generator

import (
	"context"
	"fmt"

	"labgen-server/models"
)

// Generator produces a complete lab for one concept. Implementations never
// return an error: every failure is converted into a fallback result with
// Success=false so a batch run always yields one result per concept.
type Generator interface {
	// Name identifies the strategy ("template" or a model identifier) and is
	// recorded in the result metadata as model_used.
	Name() string
	Generate(ctx context.Context, concept models.Concept, personalization string) models.GenerationResult
}

// TextCompleter is the narrow capability the prompted generator depends on:
// prompt in, text out, fallible, possibly slow. Vendor clients and test fakes
// both satisfy it.
type TextCompleter interface {
	Model() string
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// FallbackLab builds the canonical minimal lab substituted whenever real
// generation fails. Its shape is fixed: tests and downstream consumers rely on
// these exact field values.
func FallbackLab(conceptName, topic string) models.Lab {
	return models.Lab{
		Title:         fmt.Sprintf("Introduction to %s", conceptName),
		Topic:         topic,
		Difficulty:    models.DifficultyMedium,
		EstimatedTime: 45,
		Sections: []models.Section{
			{
				Concept:          conceptName,
				Title:            fmt.Sprintf("Exploring %s", conceptName),
				Difficulty:       models.DifficultyMedium,
				ScaffoldingLevel: models.ScaffoldingMedium,
				Exercises: []models.Exercise{
					{
						Type:        models.ExerciseGuided,
						Hints:       3,
						Description: fmt.Sprintf("Learn the basics of %s", conceptName),
						StarterCode: "# TODO: Implement your solution here\n",
						Solution:    "# Solution will be provided",
						TestCases:   []models.TestCase{},
					},
				},
				LearningObjectives: []string{fmt.Sprintf("Understand %s", conceptName)},
				Background:         fmt.Sprintf("This lab introduces %s", conceptName),
			},
		},
		Prerequisites: []string{"Basic programming knowledge"},
		Technologies:  []string{"Python", "Jupyter Notebook"},
	}
}

// fallbackResult wraps the canonical fallback lab with failure metadata.
func fallbackResult(concept models.Concept, modelUsed string, genErr error) models.GenerationResult {
	return models.GenerationResult{
		Lab: FallbackLab(concept.Name, concept.Topic),
		Metadata: models.GenerationMetadata{
			ConceptName:            concept.Name,
			ConceptDefinition:      concept.Definition,
			SourceTopic:            concept.Topic,
			ModelUsed:              modelUsed,
			PersonalizationApplied: false,
		},
		Success: false,
		Error:   genErr.Error(),
	}
}
