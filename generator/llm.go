package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"labgen-server/models"
)

// PromptedGenerator builds a natural-language instruction for a concept,
// sends it to an external text-completion service and parses the reply into
// a lab. It depends only on the TextCompleter capability, so tests can inject
// a fake service.
type PromptedGenerator struct {
	completer   TextCompleter
	temperature float64
}

// NewPromptedGenerator wires a prompted generator to a text-completion
// service. Temperature is the sampling control passed on every call.
func NewPromptedGenerator(completer TextCompleter, temperature float64) *PromptedGenerator {
	return &PromptedGenerator{completer: completer, temperature: temperature}
}

func (g *PromptedGenerator) Name() string { return g.completer.Model() }

// buildPrompt assembles the generation instruction. It embeds the concept
// record, the optional personalization theme and the exact JSON shape the
// service must return.
func (g *PromptedGenerator) buildPrompt(concept models.Concept, personalization string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert educator creating hands-on coding labs for big data and database concepts.

Generate a personalized lab for the following concept:

**Concept**: %s
**Definition**: %s
**Topic**: %s
`, concept.Name, concept.Definition, concept.Topic)
	if personalization != "" {
		fmt.Fprintf(&b, `
**Personalization Context**: %s

Please incorporate this context into the lab examples and scenarios to make it more engaging and relatable.
For example, if the context is "gaming", use gaming-related examples like player databases, leaderboards, etc.
`, personalization)
	}
	b.WriteString(`

Create a comprehensive lab with the following structure:

1. **Title**: An engaging title that captures the essence of the lab
2. **Difficulty**: Choose from 'easy', 'medium', or 'hard' based on concept complexity
3. **Estimated Time**: Realistic time estimate in minutes (15-180)
4. **Sections**: Create 1-3 sections, each with:
   - A specific aspect of the concept to explore
   - Appropriate difficulty level
   - Scaffolding level (low/medium/high) based on complexity
   - 1-3 exercises with:
     * Type: 'guided' (step-by-step), 'challenge' (minimal guidance), or 'exploration' (open-ended)
     * Number of hints (0-5)
     * Description of what to implement
     * Starter code template
     * Reference solution
     * Test cases for validation

5. **Prerequisites**: List any required knowledge
6. **Technologies**: List technologies/tools used (e.g., Python, MongoDB, Jupyter)

Make the lab practical, hands-on, and focused on real-world applications of the concept.
Include code examples that students can actually run and modify.

Return ONLY valid JSON matching this exact structure:
{
  "title": "string",
  "topic": "string",
  "difficulty": "easy|medium|hard",
  "estimated_time": number,
  "sections": [
    {
      "concept": "string",
      "title": "string",
      "difficulty": "easy|medium|hard",
      "scaffolding_level": "low|medium|high",
      "exercises": [
        {
          "type": "guided|challenge|exploration",
          "hints": number,
          "description": "string",
          "starter_code": "string",
          "solution": "string",
          "test_cases": [{"input": "...", "expected": "..."}]
        }
      ],
      "learning_objectives": ["string"],
      "background": "string"
    }
  ],
  "prerequisites": ["string"],
  "technologies": ["string"],
  "personalization_context": "string or null"
}
`)
	return b.String()
}

// extractJSON trims a model reply down to the JSON document it contains.
// Models frequently wrap JSON in markdown code fences or add prose around it.
func extractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if start := strings.Index(s, "```"); start >= 0 {
		s = s[start+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}
	// Fall back to the outermost braces when prose surrounds the document.
	if !strings.HasPrefix(s, "{") {
		first := strings.Index(s, "{")
		last := strings.LastIndex(s, "}")
		if first >= 0 && last > first {
			s = s[first : last+1]
		}
	}
	return s
}

// parseLab decodes and validates a service reply. A malformed document, a
// missing required field or an out-of-range enum value are all the same kind
// of failure to the caller.
func parseLab(reply string) (models.Lab, error) {
	var lab models.Lab
	if err := json.Unmarshal([]byte(extractJSON(reply)), &lab); err != nil {
		return models.Lab{}, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := lab.Validate(); err != nil {
		return models.Lab{}, fmt.Errorf("response does not conform to the lab schema: %w", err)
	}
	return lab, nil
}

// Generate prompts the external service and parses its reply. Any failure on
// the call or parse path yields the canonical fallback lab with
// Success=false; no retry is attempted.
func (g *PromptedGenerator) Generate(ctx context.Context, concept models.Concept, personalization string) models.GenerationResult {
	prompt := g.buildPrompt(concept, personalization)
	reply, err := g.completer.Complete(ctx, prompt, g.temperature)
	if err != nil {
		return fallbackResult(concept, g.Name(), fmt.Errorf("text generation failed: %w", err))
	}
	lab, err := parseLab(reply)
	if err != nil {
		return fallbackResult(concept, g.Name(), err)
	}
	if personalization != "" && lab.PersonalizationContext == "" {
		lab.PersonalizationContext = personalization
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
