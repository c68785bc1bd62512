package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	JWTSecret  string
	OriginURL  string

	APIBaseURL string
	APITimeout time.Duration

	PickProvince string
	PickDistrict string
	PickWard     string
	PickAddress  string

	DefaultItemWeightGrams int
	CartSnapshotTTL        time.Duration
	PaymentMethodsCacheTTL time.Duration
	SessionIdleTimeout     time.Duration

	KafkaBrokers    []string
	KafkaOrderTopic string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

var AppConfig *Config

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	AppConfig = &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		Port:       getEnv("APP_PORT", getEnv("PORT", "8082")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "pcb_shop"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		OriginURL:  getEnv("ORIGIN_URL", ""),

		APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api"), "/"),
		APITimeout: getDuration("API_TIMEOUT", 15*time.Second),

		PickProvince: getEnv("PICK_PROVINCE", ""),
		PickDistrict: getEnv("PICK_DISTRICT", ""),
		PickWard:     getEnv("PICK_WARD", ""),
		PickAddress:  getEnv("PICK_ADDRESS", ""),

		DefaultItemWeightGrams: getInt("DEFAULT_ITEM_WEIGHT_GRAMS", 200),
		CartSnapshotTTL:        getDuration("CART_SNAPSHOT_TTL", 30*24*time.Hour),
		PaymentMethodsCacheTTL: getDuration("PAYMENT_METHODS_CACHE_TTL", 5*time.Minute),
		SessionIdleTimeout:     getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),

		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order.submitted"),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		SMTPFrom: getEnv("SMTP_FROM", ""),
	}

	log.Println("Configuration loaded successfully")
	log.Printf("Environment: %s", AppConfig.AppEnv)
	log.Printf("Server will run on port: %s", AppConfig.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
