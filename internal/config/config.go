package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort     string // Application port
	DBUser      string // Database user
	DBPassword  string // Database password
	DBHost      string // Database host
	DBPort      string // Database port
	DBName      string // Database name
	JWTSecret   string // JWT secret key
	JWTTTLHours int    // Access token lifetime in hours
	RedisAddr   string // Redis server address
	RedisPass   string // Redis password
	RedisDB     int    // Redis database number
	SMTPHost    string // SMTP server host
	SMTPPort    int    // SMTP server port
	SMTPUser    string // SMTP username
	SMTPPass    string // SMTP password
	EmailFrom   string // Sender address for confirmation codes
	PageSize    int    // Default page size for list endpoints
	IsProd      bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	return &Config{
		AppPort:     os.Getenv("APP_PORT"),                    // Application port
		DBUser:      os.Getenv("DB_USER"),                     // Database user
		DBPassword:  os.Getenv("DB_PASSWORD"),                 // Database password
		DBHost:      os.Getenv("DB_HOST"),                     // Database host
		DBPort:      os.Getenv("DB_PORT"),                     // Database port
		DBName:      os.Getenv("DB_NAME"),                     // Database name
		JWTSecret:   os.Getenv("JWT_SECRET"),                  // JWT secret key
		JWTTTLHours: intEnv("JWT_TTL_HOURS", 24),              // Token lifetime, 24h by default
		RedisAddr:   os.Getenv("REDIS_ADDR"),                  // Redis server address
		RedisPass:   os.Getenv("REDIS_PASS"),                  // Redis password
		RedisDB:     redisDB,                                  // Redis database number
		SMTPHost:    os.Getenv("SMTP_HOST"),                   // SMTP server host
		SMTPPort:    smtpPort,                                 // SMTP server port
		SMTPUser:    os.Getenv("SMTP_USER"),                   // SMTP username
		SMTPPass:    os.Getenv("SMTP_PASS"),                   // SMTP password
		EmailFrom:   os.Getenv("EMAIL_FROM"),                  // Sender address
		PageSize:    intEnv("PAGE_SIZE", 20),                  // Default page size
		IsProd:      os.Getenv("IS_PROD") == "true",           // Is production environment
	}
}

// intEnv reads an integer environment variable with a fallback default
func intEnv(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// DSN assembles the MySQL data source name from the DB fields
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}
