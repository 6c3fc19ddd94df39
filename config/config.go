package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process-wide settings read from the environment.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisPassword  string
	JwtSecret      string
	LogLevel       string
	Storage        string // "mongo" or "memory"
	RatesFile      string
	NotifyChannel  string
	PlacesFile     string // optional YAML seed for the in-memory catalog
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env when present, then the environment, falling back to defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	port := getEnv("PORT", ":8080")
	if port[0] != ':' {
		port = ":" + port
	}

	return &Config{
		Port:           port,
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "itinera"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		JwtSecret:      getEnv("JWT_SECRET", "your_secret_key"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Storage:        getEnv("STORAGE", "mongo"),
		RatesFile:      getEnv("RATES_FILE", ""),
		NotifyChannel:  getEnv("NOTIFY_CHANNEL", "itinerary-notifications"),
		PlacesFile:     getEnv("PLACES_FILE", ""),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}
