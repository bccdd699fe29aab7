package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"labgen-server/models"
)

// InitDB initializes the PostgreSQL database connection pool. The database
// only holds operational records (run history, error logs, admin events);
// lab artifacts themselves live as flat JSON files.
func InitDB(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	// Ping the database to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("Successfully connected to PostgreSQL database!")
	return pool, nil
}

// CreateSchema sets up the operational tables.
// In a production environment, use a proper migration tool (e.g., golang-migrate).
func CreateSchema(pool *pgxpool.Pool) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS generation_runs (
		id SERIAL PRIMARY KEY,
		started_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		generator VARCHAR(255) NOT NULL,
		personalization TEXT,
		total_labs INT NOT NULL,
		successful INT NOT NULL,
		failed INT NOT NULL,
		output_dir TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_labs (
		id SERIAL PRIMARY KEY,
		run_id INT NOT NULL,
		concept VARCHAR(255) NOT NULL,
		topic TEXT,
		title TEXT,
		difficulty VARCHAR(20),
		estimated_time INT,
		num_sections INT,
		success BOOLEAN NOT NULL,
		error_message TEXT,
		FOREIGN KEY (run_id) REFERENCES generation_runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS error_logs (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		source TEXT NOT NULL, -- e.g., "ingestion", "generation", "batch"
		concept VARCHAR(255),
		error_message TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS admin_events (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		action VARCHAR(255),
		actor VARCHAR(255), -- User email or 'system'
		target TEXT,        -- e.g., concept name, output dir
		notes TEXT
	);
	`
	_, err := pool.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}
	return nil
}

// RecordRun stores a completed batch run and its per-concept rows. Returns
// the run id. A nil pool disables recording.
func RecordRun(pool *pgxpool.Pool, generator, personalization, outputDir string, report models.SummaryReport) (int, error) {
	if pool == nil {
		return 0, nil
	}
	var runID int
	err := pool.QueryRow(context.Background(), `
		INSERT INTO generation_runs (generator, personalization, total_labs, successful, failed, output_dir)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
	`, generator, personalization, report.TotalLabs, report.Successful, report.Failed, outputDir).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert generation run: %w", err)
	}
	for _, lab := range report.Labs {
		_, err := pool.Exec(context.Background(), `
			INSERT INTO run_labs (run_id, concept, topic, title, difficulty, estimated_time, num_sections, success, error_message)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, runID, lab.Concept, lab.Topic, lab.Title, lab.Difficulty, lab.EstimatedTime, lab.NumSections, lab.Success, lab.Error)
		if err != nil {
			return runID, fmt.Errorf("failed to insert run lab row for %s: %w", lab.Concept, err)
		}
	}
	return runID, nil
}

// LatestRun fetches the most recent batch run summary, or nil when none
// exists yet.
func LatestRun(pool *pgxpool.Pool) (*models.SummaryReport, error) {
	if pool == nil {
		return nil, nil
	}
	var runID int
	report := &models.SummaryReport{}
	err := pool.QueryRow(context.Background(), `
		SELECT id, total_labs, successful, failed FROM generation_runs ORDER BY started_at DESC LIMIT 1
	`).Scan(&runID, &report.TotalLabs, &report.Successful, &report.Failed)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	rows, err := pool.Query(context.Background(), `
		SELECT concept, topic, title, difficulty, estimated_time, num_sections, success, COALESCE(error_message, '')
		FROM run_labs WHERE run_id = $1 ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run labs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lab models.LabSummary
		if err := rows.Scan(&lab.Concept, &lab.Topic, &lab.Title, &lab.Difficulty, &lab.EstimatedTime, &lab.NumSections, &lab.Success, &lab.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run lab row: %w", err)
		}
		report.Labs = append(report.Labs, lab)
	}
	return report, nil
}

// LogError adds an entry to the error_logs table. Best-effort: failures are
// logged, never propagated. A nil pool disables recording.
func LogError(pool *pgxpool.Pool, source, concept, errMsg string) {
	if pool == nil {
		return
	}
	_, err := pool.Exec(context.Background(), `
		INSERT INTO error_logs (source, concept, error_message)
		VALUES ($1, $2, $3)
	`, source, concept, errMsg)
	if err != nil {
		log.Printf("ERROR: Failed to log error to database: %v. Original error: %s", err, errMsg)
	}
}

// LogAdminEvent adds an entry to the admin_events table. Best-effort, like
// LogError. A nil pool disables recording.
func LogAdminEvent(pool *pgxpool.Pool, actor, action, target, notes string) {
	if pool == nil {
		return
	}
	_, err := pool.Exec(context.Background(), `
		INSERT INTO admin_events (action, actor, target, notes)
		VALUES ($1, $2, $3, $4)
	`, action, actor, target, notes)
	if err != nil {
		log.Printf("ERROR: Failed to log admin event to database: %v. Event: %s by %s on %s", err, action, actor, target)
	}
}
