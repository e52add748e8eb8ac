package config

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

// CompletionConfig configures the optional text-completion provider used for
// article companion blurbs. APIKey holds the name of the environment variable
// carrying the key; the resolved key replaces it during LoadConfig.
type CompletionConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // Per-call deadline for the provider
}

// SearchConfig tunes the search aggregator.
type SearchConfig struct {
	MaxResults    int `mapstructure:"max_results"`    // 0 = unlimited
	ExcerptRadius int `mapstructure:"excerpt_radius"` // Runes kept around a body match
}

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string // "memory" or a SQLite file path
	}
	Search     SearchConfig     `mapstructure:"search"`
	Completion CompletionConfig `mapstructure:"completion"`
}

// AppConfig is the global configuration instance.
var AppConfig Config

// LoadConfig loads configuration from file and environment variables.
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../config") // For running from locations like tests

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "memory")
	viper.SetDefault("search.max_results", 50)
	viper.SetDefault("search.excerpt_radius", 40)
	viper.SetDefault("completion.model", "gpt-4o-mini")
	viper.SetDefault("completion.timeout_seconds", 10)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration into AppConfig struct: %v", err)
	}

	// Environment variable overrides
	if port := os.Getenv("SERVER_PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable SERVER_PORT: %s", port)
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		AppConfig.Database.DSN = dsn
		log.Printf("INFO: [Config] Database DSN overridden by environment variable DATABASE_DSN.")
	}

	// The completion api_key field names an environment variable, never the key
	// itself; resolve it here.
	if envVarName := AppConfig.Completion.APIKey; envVarName != "" {
		if envValue := os.Getenv(envVarName); envValue != "" {
			AppConfig.Completion.APIKey = envValue
			log.Printf("INFO: [Config] Loaded completion API key from environment variable '%s'.", envVarName)
		} else {
			AppConfig.Completion.APIKey = ""
			log.Printf("WARN: [Config] Completion API key environment variable '%s' is not set; companion texts will use the fallback policy.", envVarName)
		}
	}

	log.Println("INFO: [Config] Configuration loading complete.")
}
