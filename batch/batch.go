package batch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"labgen-server/db"
	"labgen-server/generator"
	"labgen-server/models"
	"labgen-server/output"
)

// Runner drives a full generation run: one generator invocation per concept,
// strictly sequential, output order equal to input order. A failed concept
// never halts the batch; its fallback result is recorded and the loop
// continues. Pool may be nil, which disables run-history recording.
type Runner struct {
	Generator generator.Generator
	OutputDir string
	Pool      *pgxpool.Pool
}

// Run processes every concept in order and writes the per-concept artifacts
// plus the summary report. The returned report has exactly one row per input
// concept. The error is non-nil only for run-level failures (an unwritable
// summary report); per-concept failures are carried inside the report.
func (r *Runner) Run(ctx context.Context, concepts []models.Concept, personalization string) (models.SummaryReport, error) {
	total := len(concepts)
	start := time.Now()
	log.Printf("Starting lab generation for %d concepts (generator=%s)", total, r.Generator.Name())
	results := make([]models.GenerationResult, 0, total)
	for i, concept := range concepts {
		if i == 0 || (i+1)%10 == 0 {
			log.Printf("Progress: %d/%d (elapsed %s)", i+1, total, time.Since(start).Round(time.Second))
		}
		result := r.Generator.Generate(ctx, concept, personalization)
		if result.Success {
			log.Printf("  %d. %s: generated %q", i+1, concept.Name, result.Lab.Title)
		} else {
			log.Printf("  %d. %s: fallback used: %s", i+1, concept.Name, result.Error)
			db.LogError(r.Pool, "generation", concept.Name, result.Error)
		}
		if _, err := output.OrganizeLabOutput(result, r.OutputDir, concept.Name); err != nil {
			// The result still counts toward the summary; only the artifact
			// write failed.
			log.Printf("  %d. %s: failed to write artifacts: %v", i+1, concept.Name, err)
			db.LogError(r.Pool, "batch", concept.Name, err.Error())
		}
		results = append(results, result)
	}
	report := output.BuildSummaryReport(results)
	summaryPath, err := output.WriteSummaryReport(report, r.OutputDir)
	if err != nil {
		return report, fmt.Errorf("failed to write summary report: %w", err)
	}
	if _, err := db.RecordRun(r.Pool, r.Generator.Name(), personalization, r.OutputDir, report); err != nil {
		log.Printf("Warning: failed to record run history: %v", err)
	}
	db.LogAdminEvent(r.Pool, "system", "batch_generation", r.OutputDir,
		fmt.Sprintf("Generated %d labs (%d successful, %d failed)", report.TotalLabs, report.Successful, report.Failed))
	log.Printf("Finished lab generation: %d total, %d successful, %d failed in %s (summary: %s)",
		report.TotalLabs, report.Successful, report.Failed, time.Since(start).Round(time.Millisecond), summaryPath)
	return report, nil
}
