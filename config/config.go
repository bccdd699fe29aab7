package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	ServerPort   string        `mapstructure:"SERVER_PORT"`
	GinMode      string        `mapstructure:"GIN_MODE"`
	DatabaseURL  string        `mapstructure:"DATABASE_URL"`
	ExportPath   string        `mapstructure:"EXPORT_PATH"`
	OutputDir    string        `mapstructure:"OUTPUT_DIR"`
	Generator    string        `mapstructure:"GENERATOR"`
	Personalize  string        `mapstructure:"PERSONALIZE"`
	ConceptLimit int           `mapstructure:"CONCEPT_LIMIT"`
	BatchOnStart bool          `mapstructure:"BATCH_ON_START"`
	Auth         AuthConfig    `mapstructure:"AUTH"`
	OpenAI       OpenAIConfig  `mapstructure:"OPENAI"`
}

// AuthConfig holds JWT-related configuration for the API and admin surfaces
type AuthConfig struct {
	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`
	Issuer        string `mapstructure:"ISSUER"`
}

// OpenAIConfig holds the external text-generation service configuration.
// APIKey defaults to empty; when the "openai" generator is selected an empty
// key is a fatal startup error.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"API_KEY"`
	Model       string        `mapstructure:"MODEL"`
	Temperature float64       `mapstructure:"TEMPERATURE"`
	Timeout     time.Duration `mapstructure:"TIMEOUT"`
}

// LoadConfig loads configuration from environment variables and config.yaml
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config") // config.yaml
	viper.SetConfigType("yaml")   // yaml
	viper.AddConfigPath(".")      // Search for config in current directory
	// Set defaults
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("GIN_MODE", "debug") // gin.DebugMode, gin.ReleaseMode, gin.TestMode
	viper.SetDefault("DATABASE_URL", "") // Empty disables run-history recording
	viper.SetDefault("EXPORT_PATH", "./complete_neo4j_export_no_embeddings.json")
	viper.SetDefault("OUTPUT_DIR", "./batch_output")
	viper.SetDefault("GENERATOR", "template") // "template" or "openai"
	viper.SetDefault("PERSONALIZE", "")       // e.g. "gaming", "music", "sports"
	viper.SetDefault("CONCEPT_LIMIT", 0)      // 0 processes every concept
	viper.SetDefault("BATCH_ON_START", false)
	viper.SetDefault("AUTH.JWT_SIGNING_KEY", "your-super-secret-labgen-jwt-key") // IMPORTANT: Change this in production
	viper.SetDefault("AUTH.ISSUER", "labgen.example.com")
	viper.SetDefault("OPENAI.API_KEY", "") // Registers the key so LABGEN_OPENAI.API_KEY is picked up from the environment
	viper.SetDefault("OPENAI.MODEL", "gpt-4")
	viper.SetDefault("OPENAI.TEMPERATURE", 0.7)
	viper.SetDefault("OPENAI.TIMEOUT", "60s")
	// Read from config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("config.yaml not found, using environment variables and defaults")
		} else {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	}
	// Override with environment variables (e.g., LABGEN_OUTPUT_DIR)
	viper.SetEnvPrefix("LABGEN") // Look for LABGEN_SERVER_PORT, LABGEN_OPENAI.API_KEY etc.
	viper.AutomaticEnv()
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if cfg.OpenAI.Temperature < 0 || cfg.OpenAI.Temperature > 1 {
		return nil, fmt.Errorf("OPENAI.TEMPERATURE must be between 0.0 and 1.0, got %.2f", cfg.OpenAI.Temperature)
	}
	return &cfg, nil
}
