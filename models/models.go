package models

import (
	"fmt"
	"time"
)

// Exercise type values. 'guided' is step-by-step, 'challenge' gives minimal
// guidance, 'exploration' is open-ended.
const (
	ExerciseGuided      = "guided"
	ExerciseChallenge   = "challenge"
	ExerciseExploration = "exploration"
)

// Difficulty levels shared by labs and sections.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Scaffolding levels describe how much guidance a section provides.
const (
	ScaffoldingLow    = "low"
	ScaffoldingMedium = "medium"
	ScaffoldingHigh   = "high"
)

// Hint count bounds per exercise.
const (
	MinHints = 0
	MaxHints = 5
)

// Estimated lab time bounds in minutes.
const (
	MinEstimatedTime = 15
	MaxEstimatedTime = 180
)

// Concept is the input record driving generation: one concept pulled from the
// knowledge graph export.
type Concept struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
	Topic      string `json:"topic"`
}

// TestCase is a single (input, expected output) pair attached to an exercise.
type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// Exercise is one practice unit inside a lab section.
type Exercise struct {
	Type        string     `json:"type"`
	Hints       int        `json:"hints"`
	Description string     `json:"description,omitempty"`
	StarterCode string     `json:"starter_code,omitempty"`
	Solution    string     `json:"solution,omitempty"`
	TestCases   []TestCase `json:"test_cases"`
}

// Section is a subdivision of a lab focused on one concept facet.
type Section struct {
	Concept            string     `json:"concept"`
	Title              string     `json:"title"`
	Difficulty         string     `json:"difficulty"`
	ScaffoldingLevel   string     `json:"scaffolding_level"`
	Exercises          []Exercise `json:"exercises"`
	LearningObjectives []string   `json:"learning_objectives,omitempty"`
	Background         string     `json:"background,omitempty"`
}

// Lab is the complete generated artifact for one concept.
type Lab struct {
	Title                  string    `json:"title"`
	Topic                  string    `json:"topic"`
	Difficulty             string    `json:"difficulty"`
	EstimatedTime          int       `json:"estimated_time"`
	Sections               []Section `json:"sections"`
	Prerequisites          []string  `json:"prerequisites,omitempty"`
	Technologies           []string  `json:"technologies,omitempty"`
	PersonalizationContext string    `json:"personalization_context,omitempty"`
}

// GenerationMetadata records provenance for a generated lab. Not shown to the
// learner.
type GenerationMetadata struct {
	ConceptName            string `json:"concept_name"`
	ConceptDefinition      string `json:"concept_definition"`
	SourceTopic            string `json:"source_topic"`
	ModelUsed              string `json:"model_used"`
	PersonalizationApplied bool   `json:"personalization_applied"`
}

// GenerationResult is the unit handed to the output organizer. Lab is always
// present; on failure it holds the fallback lab and Error describes what broke.
type GenerationResult struct {
	Lab      Lab                `json:"lab"`
	Metadata GenerationMetadata `json:"metadata"`
	Success  bool               `json:"success"`
	Error    string             `json:"error,omitempty"`
}

// LabSummary is one row in the generation summary report.
type LabSummary struct {
	Concept       string `json:"concept"`
	Topic         string `json:"topic"`
	Title         string `json:"title"`
	Difficulty    string `json:"difficulty"`
	EstimatedTime int    `json:"estimated_time"`
	NumSections   int    `json:"num_sections"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

// SummaryReport aggregates the outcome of a batch run.
type SummaryReport struct {
	TotalLabs  int          `json:"total_labs"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Labs       []LabSummary `json:"labs"`
}

// ErrorLog represents an entry in the error_logs table
type ErrorLog struct {
	ID           int       `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	Concept      string    `json:"concept"`
	ErrorMessage string    `json:"error_message"`
}

// GenerateLabRequest is the API payload for on-demand single-concept generation.
type GenerateLabRequest struct {
	Concept         string `json:"concept" binding:"required"`
	Personalization string `json:"personalization"`
}

// ValidDifficulty reports whether d is one of the three allowed levels.
func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// ValidScaffolding reports whether s is one of the three allowed levels.
func ValidScaffolding(s string) bool {
	return s == ScaffoldingLow || s == ScaffoldingMedium || s == ScaffoldingHigh
}

// ValidExerciseType reports whether t is one of the three allowed types.
func ValidExerciseType(t string) bool {
	return t == ExerciseGuided || t == ExerciseChallenge || t == ExerciseExploration
}

// Validate checks the exercise invariants: a known type and a hint count in
// [0, 5]. Returns a descriptive error on the first violation.
func (e Exercise) Validate() error {
	if !ValidExerciseType(e.Type) {
		return fmt.Errorf("invalid exercise type %q: must be one of guided, challenge, exploration", e.Type)
	}
	if e.Hints < MinHints || e.Hints > MaxHints {
		return fmt.Errorf("invalid hint count %d: must be between %d and %d", e.Hints, MinHints, MaxHints)
	}
	return nil
}

// Validate checks the section invariants: a non-empty concept name, valid
// difficulty and scaffolding levels, and at least one valid exercise.
func (s Section) Validate() error {
	if s.Concept == "" {
		return fmt.Errorf("section concept name must not be empty")
	}
	if !ValidDifficulty(s.Difficulty) {
		return fmt.Errorf("invalid section difficulty %q: must be one of easy, medium, hard", s.Difficulty)
	}
	if !ValidScaffolding(s.ScaffoldingLevel) {
		return fmt.Errorf("invalid scaffolding level %q: must be one of low, medium, high", s.ScaffoldingLevel)
	}
	if len(s.Exercises) == 0 {
		return fmt.Errorf("section %q must contain at least one exercise", s.Concept)
	}
	for i, e := range s.Exercises {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("section %q exercise %d: %w", s.Concept, i+1, err)
		}
	}
	return nil
}

// Validate checks the lab invariants: valid difficulty, estimated time within
// [15, 180] minutes, and at least one valid section.
func (l Lab) Validate() error {
	if !ValidDifficulty(l.Difficulty) {
		return fmt.Errorf("invalid lab difficulty %q: must be one of easy, medium, hard", l.Difficulty)
	}
	if l.EstimatedTime < MinEstimatedTime || l.EstimatedTime > MaxEstimatedTime {
		return fmt.Errorf("invalid estimated time %d: must be between %d and %d minutes", l.EstimatedTime, MinEstimatedTime, MaxEstimatedTime)
	}
	if len(l.Sections) == 0 {
		return fmt.Errorf("lab %q must contain at least one section", l.Title)
	}
	for i, s := range l.Sections {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("lab %q section %d: %w", l.Title, i+1, err)
		}
	}
	return nil
}
