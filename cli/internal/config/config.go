package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

// Config holds the application configuration
type Config struct {
	DatabaseURL string
	Provider    string
	Debug       bool
}

// LoadConfig loads configuration from various sources
func LoadConfig() (*Config, error) {
	// Find home directory
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	// Set config file paths
	viper.SetConfigName(".ccs-upgrade")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "ccs-calendarserver"))

	// Set environment variable prefix
	viper.SetEnvPrefix("CCS")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("provider", "postgresql")
	viper.SetDefault("debug", false)

	// Try to read config file (ignore if not found)
	_ = viper.ReadInConfig()

	// Load .env file if it exists
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	// Load .env.local if it exists (higher priority)
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Provider:    viper.GetString("provider"),
		Debug:       viper.GetBool("debug"),
	}
	if url := viper.GetString("database_url"); cfg.DatabaseURL == "" && url != "" {
		cfg.DatabaseURL = url
	}

	return cfg, nil
}
