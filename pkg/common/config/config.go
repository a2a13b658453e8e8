package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers     []string
	KafkaGroupID     string
	VitalsKafkaTopic string

	// Monitoring thresholds (defaults match the shipped rule set)
	HeartRateThreshold   int
	SpO2Threshold        int
	StressScoreThreshold int
	SleepHoursThreshold  float64
	ThresholdsFile       string
	VerificationSteps    int
	DirectCriticalAlerts bool

	// Simulator
	SimulatorUserID       int
	SimulatorScenario     string
	TimeCompressionFactor int

	// Retention
	VitalsRetention time.Duration
	CleanupInterval time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "guardian"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "guardian123"),
		PostgresDB:       getEnv("POSTGRES_DB", "guardian"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "guardian-ai"),
		VitalsKafkaTopic: getEnv("VITALS_KAFKA_TOPIC", "vitals.samples"),

		HeartRateThreshold:   getIntEnv("HEART_RATE_THRESHOLD", 100),
		SpO2Threshold:        getIntEnv("SPO2_THRESHOLD", 94),
		StressScoreThreshold: getIntEnv("STRESS_SCORE_THRESHOLD", 60),
		SleepHoursThreshold:  getFloatEnv("SLEEP_HOURS_THRESHOLD", 6.0),
		ThresholdsFile:       getEnv("THRESHOLDS_FILE", ""),
		VerificationSteps:    getIntEnv("VERIFICATION_STEPS", 3),
		DirectCriticalAlerts: getBoolEnv("DIRECT_CRITICAL_ALERTS", false),

		SimulatorUserID:       getIntEnv("SIMULATOR_USER_ID", 1),
		SimulatorScenario:     getEnv("SIMULATOR_SCENARIO", "NORMAL"),
		TimeCompressionFactor: getIntEnv("TIME_COMPRESSION_FACTOR", 30),

		VitalsRetention: getDuration("VITALS_RETENTION", 30*24*time.Hour),
		CleanupInterval: getDuration("CLEANUP_INTERVAL", 12*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
