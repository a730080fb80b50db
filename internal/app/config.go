package app

import (
	"github.com/Brooks-Cole/brooks-books/internal/platform/envutil"
	"github.com/Brooks-Cole/brooks-books/internal/platform/neo4jdb"
	"github.com/Brooks-Cole/brooks-books/internal/services"
)

type Config struct {
	ServiceName string
	Environment string
	LogMode     string
	Port        string

	// SeriesPatternsFile optionally extends the built-in series
	// detection patterns.
	SeriesPatternsFile string

	Auth  services.AuthConfig
	Neo4j neo4jdb.Config
}

func LoadConfig() Config {
	return Config{
		ServiceName:        envutil.String("SERVICE_NAME", "brooks-books"),
		Environment:        envutil.String("ENVIRONMENT", "development"),
		LogMode:            envutil.String("LOG_MODE", "development"),
		Port:               envutil.String("PORT", "8080"),
		SeriesPatternsFile: envutil.String("SERIES_PATTERNS_FILE", ""),
		Auth:               services.AuthConfigFromEnv(),
		Neo4j:              neo4jdb.ConfigFromEnv(),
	}
}
