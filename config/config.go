package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Graph    GraphConfig
	Redis    RedisConfig
	Loader   LoaderConfig
	Ready    ReadyConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
}

type GraphConfig struct {
	URI          string
	User         string
	Password     string
	Database     string
	MaxPoolSize  int
	QueryTimeout time.Duration
	SchemaFile   string
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	CacheTTL     time.Duration
	WarmSchedule string
}

type LoaderConfig struct {
	GapPolicy string
	EventMode string
	FailFast  bool
	Workers   int
}

// ReadyConfig bounds the startup polling of both stores.
type ReadyConfig struct {
	MaxRetries int
	Delay      time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 50),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 100),
			CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "app"),
			Password: getEnv("POSTGRES_PASSWORD", "password"),
			Name:     getEnv("POSTGRES_DB", "shop"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
		Graph: GraphConfig{
			URI:          getEnv("NEO4J_URI", "bolt://localhost:7687"),
			User:         getEnv("NEO4J_USER", "neo4j"),
			Password:     getEnv("NEO4J_PASSWORD", "password"),
			Database:     getEnv("NEO4J_DATABASE", ""),
			MaxPoolSize:  getEnvAsInt("NEO4J_MAX_POOL_SIZE", 50),
			QueryTimeout: getEnvAsDuration("GRAPH_QUERY_TIMEOUT", 15*time.Second),
			SchemaFile:   getEnv("GRAPH_SCHEMA_FILE", "schema.cypher"),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", ""),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			CacheTTL:     getEnvAsDuration("CACHE_TTL", 5*time.Minute),
			WarmSchedule: getEnv("CACHE_WARM_SCHEDULE", "0 */10 * * * *"),
		},
		Loader: LoaderConfig{
			GapPolicy: getEnv("LOADER_GAP_POLICY", "skip"),
			EventMode: getEnv("LOADER_EVENT_MODE", "append"),
			FailFast:  getEnvAsBool("LOADER_FAIL_FAST", false),
			Workers:   getEnvAsInt("LOADER_WORKERS", 1),
		},
		Ready: ReadyConfig{
			MaxRetries: getEnvAsInt("READY_MAX_RETRIES", 30),
			Delay:      getEnvAsDuration("READY_DELAY", 2*time.Second),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}

	if c.Graph.URI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}

	switch c.Loader.GapPolicy {
	case "skip", "abort":
	default:
		return fmt.Errorf("LOADER_GAP_POLICY must be skip or abort, got %q", c.Loader.GapPolicy)
	}

	switch c.Loader.EventMode {
	case "append", "merge":
	default:
		return fmt.Errorf("LOADER_EVENT_MODE must be append or merge, got %q", c.Loader.EventMode)
	}

	if c.Loader.Workers < 1 {
		return fmt.Errorf("LOADER_WORKERS must be at least 1")
	}

	if c.Graph.QueryTimeout <= 0 {
		return fmt.Errorf("GRAPH_QUERY_TIMEOUT must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
