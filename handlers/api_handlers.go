package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"labgen-server/db"
	"labgen-server/generator"
	"labgen-server/ingestion"
	"labgen-server/models"
	"labgen-server/output"
)

// GetConcepts lists the loaded concept records.
// GET /api/v1/concepts?limit=N
func GetConcepts(concepts []models.Concept) gin.HandlerFunc {
	return func(c *gin.Context) {
		limited := concepts
		if limitStr := c.Query("limit"); limitStr != "" {
			limit, err := strconv.Atoi(limitStr)
			if err != nil || limit < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
				return
			}
			limited = ingestion.Limit(concepts, limit)
		}
		c.JSON(http.StatusOK, gin.H{"total": len(concepts), "concepts": limited})
	}
}

// GenerateLab generates a lab for a single named concept and writes its
// artifacts. The concept lookup is case-insensitive; an unknown concept is a
// 404, not a generation failure.
// POST /api/v1/labs
func GenerateLab(concepts []models.Concept, gen generator.Generator, outputDir string, pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.GenerateLabRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
			return
		}
		concept, found := ingestion.FindConcept(concepts, req.Concept)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Concept %q not found", req.Concept)})
			return
		}
		result := gen.Generate(c.Request.Context(), concept, req.Personalization)
		if !result.Success {
			db.LogError(pool, "generation", concept.Name, result.Error)
		}
		saved, err := output.OrganizeLabOutput(result, outputDir, concept.Name)
		if err != nil {
			log.Printf("Error writing lab artifacts for %s: %v", concept.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write lab artifacts"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": result, "files": saved})
	}
}
