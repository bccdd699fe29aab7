package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"labgen-server/batch"
	"labgen-server/db"
	"labgen-server/ingestion"
	"labgen-server/models"
	"labgen-server/output"
	"labgen-server/utils"
)

// batchRequest is the optional admin payload for a manual batch trigger.
type batchRequest struct {
	Personalization string `json:"personalization"`
	Limit           int    `json:"limit"`
}

// TriggerBatch runs a full generation batch over the loaded concepts.
// POST /admin/generate
func TriggerBatch(runner *batch.Runner, concepts []models.Concept, defaultPersonalization string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req batchRequest
		// Empty body is fine; defaults apply.
		_ = c.ShouldBindJSON(&req)
		personalization := utils.FirstNonEmpty(req.Personalization, defaultPersonalization)
		selected := ingestion.Limit(concepts, req.Limit)
		actor, _ := c.Get("user_email")
		db.LogAdminEvent(runner.Pool, toString(actor), "batch_triggered", runner.OutputDir, "Manual batch generation requested")
		report, err := runner.Run(c.Request.Context(), selected, personalization)
		if err != nil {
			log.Printf("Batch run error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": report})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// AdminDashboard renders the dashboard with the latest run summary. The
// summary comes from the database when one is configured, otherwise from the
// generation_summary.json in the output directory.
// GET /admin/dashboard
func AdminDashboard(pool *pgxpool.Pool, outputDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := latestReport(pool, outputDir)
		c.HTML(http.StatusOK, "admin_dashboard", gin.H{
			"Title":  "Lab Generation Dashboard",
			"Report": report,
			"Time":   time.Now().Format(time.RFC1123),
		})
	}
}

// AdminErrorLogs lists recent recorded errors.
// GET /admin/error_logs
func AdminErrorLogs(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pool == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error log recording is disabled (no database configured)"})
			return
		}
		rows, err := pool.Query(context.Background(), `
			SELECT id, timestamp, source, COALESCE(concept, ''), error_message
			FROM error_logs ORDER BY timestamp DESC LIMIT 100
		`)
		if err != nil {
			log.Printf("Error querying error logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve error logs"})
			return
		}
		defer rows.Close()
		var logs []models.ErrorLog
		for rows.Next() {
			var e models.ErrorLog
			if err := rows.Scan(&e.ID, &e.Timestamp, &e.Source, &e.Concept, &e.ErrorMessage); err != nil {
				log.Printf("Error scanning error log row: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process error logs"})
				return
			}
			logs = append(logs, e)
		}
		c.JSON(http.StatusOK, logs)
	}
}

// latestReport prefers the recorded run history over the summary file.
func latestReport(pool *pgxpool.Pool, outputDir string) *models.SummaryReport {
	if pool != nil {
		if report, err := db.LatestRun(pool); err == nil && report != nil {
			return report
		}
	}
	data, err := os.ReadFile(filepath.Join(outputDir, output.SummaryFilename))
	if err != nil {
		return nil
	}
	var report models.SummaryReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil
	}
	return &report
}

func toString(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return "unknown"
}
