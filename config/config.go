package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SentimentAPIURL string
	ProbeTimeout    time.Duration
	RequestTimeout  time.Duration

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	InputPath     string
	CSVOutputPath string

	PersistEnabled   bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	AWSRegion  string
	S3Endpoint string

	ScrapeURL      string
	ScrapeSelector string
	ScrapeProduct  string
	ScrapePages    int
	ChromeBin      string

	HTTPAddr string
	Debug    bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		SentimentAPIURL: strings.TrimRight(getEnv("SENTIMENT_API_URL", "http://127.0.0.1:5000"), "/"),
		ProbeTimeout:    time.Duration(getEnvInt("PROBE_TIMEOUT_MS", 5000)) * time.Millisecond,
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_MS", 30000)) * time.Millisecond,

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		InputPath:     getEnv("INPUT_PATH", ""),
		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/enriched_reviews.csv"),

		PersistEnabled:   getEnvBool("PERSIST_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "sentiment"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "sentiment123"),
		PostgresDB:       getEnv("POSTGRES_DB", "reviews_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		AWSRegion:  getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint: getEnv("S3_ENDPOINT", ""),

		ScrapeURL:      getEnv("SCRAPE_URL", ""),
		ScrapeSelector: getEnv("SCRAPE_SELECTOR", `[data-hook="review-body"]`),
		ScrapeProduct:  getEnv("SCRAPE_PRODUCT", ""),
		ScrapePages:    getEnvInt("SCRAPE_PAGES", 1),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		Debug:    strings.EqualFold(getEnv("LOG_LEVEL", "info"), "debug"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
