package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"labgen-server/batch"
	"labgen-server/config"
	"labgen-server/db"
	"labgen-server/generator"
	"labgen-server/handlers"
	"labgen-server/ingestion"
	"labgen-server/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	// Select the generation strategy. A missing API key for the prompted
	// generator is a fatal configuration error, checked once here.
	var gen generator.Generator
	switch cfg.Generator {
	case "template":
		gen = generator.NewTemplateGenerator()
	case "openai":
		completer, err := generator.NewOpenAICompleter(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
		if err != nil {
			log.Fatalf("Error configuring text-generation service: %v", err)
		}
		gen = generator.NewPromptedGenerator(completer, cfg.OpenAI.Temperature)
	default:
		log.Fatalf("Unknown generator %q: must be 'template' or 'openai'", cfg.Generator)
	}
	// Load the concept export. An unreadable or unparseable export is fatal.
	concepts, err := ingestion.LoadConcepts(cfg.ExportPath)
	if err != nil {
		log.Fatalf("Error loading concept export: %v", err)
	}
	// Optional run-history database. Empty DATABASE_URL disables recording.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = db.InitDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pool.Close()
		if err := db.CreateSchema(pool); err != nil {
			log.Fatalf("Error creating database schema: %v", err)
		}
	} else {
		log.Println("DATABASE_URL not set, run-history recording disabled")
	}
	runner := &batch.Runner{
		Generator: gen,
		OutputDir: cfg.OutputDir,
		Pool:      pool,
	}
	// Optionally run the full batch before serving.
	if cfg.BatchOnStart {
		selected := ingestion.Limit(concepts, cfg.ConceptLimit)
		if _, err := runner.Run(context.Background(), selected, cfg.Personalize); err != nil {
			log.Printf("Batch run error: %v", err)
		}
	}
	// Set Gin mode
	gin.SetMode(cfg.GinMode)
	// Initialize Gin router
	router := gin.Default()
	// Load HTML templates for admin UI
	renderer := multitemplate.NewRenderer()
	renderer.AddFromFiles("admin_dashboard", "templates/layout.html", "templates/admin_dashboard.html")
	router.HTMLRender = renderer
	// Middleware
	router.Use(middleware.Logger()) // Custom logger middleware
	authMiddleware := middleware.AuthMiddleware(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)
	// API Routes (version 1)
	apiV1 := router.Group("/api/v1")
	apiV1.Use(authMiddleware) // Apply auth to all API routes
	{
		apiV1.GET("/concepts", handlers.GetConcepts(concepts))
		apiV1.POST("/labs", handlers.GenerateLab(concepts, gen, cfg.OutputDir, pool))
	}
	// Admin Routes
	admin := router.Group("/admin")
	admin.Use(authMiddleware)
	admin.Use(middleware.RoleCheckMiddleware([]string{"admin", "instructor"})) // Role-based access control for admin routes
	{
		admin.GET("/dashboard", handlers.AdminDashboard(pool, cfg.OutputDir))
		admin.POST("/generate", handlers.TriggerBatch(runner, concepts, cfg.Personalize))
		admin.GET("/error_logs", handlers.AdminErrorLogs(pool))
	}
	// Start the server
	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}
	// Goroutine to gracefully shut down the server
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()
	log.Printf("LABGEN Server starting on %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server startup error: %v", err)
	}
	log.Println("Server exited gracefully.")
}
