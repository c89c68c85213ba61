package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Difficulty levels used across question generation and scoring.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ScoringConfig holds the bounds and multipliers for the scoring engine.
type ScoringConfig struct {
	MinScorePerQuestion int
	MaxScorePerQuestion int
	FallbackScore       int

	// Keyed by difficulty. Hard >= Medium >= Easy.
	DifficultyMultipliers map[string]float64

	PartialCreditEnabled bool
	MinAnswerLength      int
	MaxAnswerLength      int
	OverLengthLeniency   float64
}

// QuestionConfig bounds the question set and supplies per-difficulty defaults.
type QuestionConfig struct {
	MinQuestionCount     int
	MaxQuestionCount     int
	DefaultQuestionCount int

	// Seconds; applied when a question carries no time limit.
	DefaultTimeLimits map[string]int
	// Weight multiplier per difficulty, used by the scoring engine.
	DifficultyWeights map[string]float64
}

// QueueConfig tunes the task queue and its workers.
type QueueConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
	AwaitTimeout   time.Duration
	ResultTTL      time.Duration
	WorkersPerKind int

	MaxResumeLength int
	MaxAnswerLength int
}

// Config is the process-wide configuration, loaded once at startup.
type Config struct {
	Provider      string
	RedisAddr     string
	RedisPassword string
	PostgresDSN   string

	// Hex-encoded 32-byte key for candidate field encryption.
	FieldKey string

	SessionTTL     time.Duration
	ExpirySchedule string

	Scoring   ScoringConfig
	Questions QuestionConfig
	Queue     QueueConfig
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider:      getEnvOrDefault("AI_PROVIDER", "gemini"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		PostgresDSN:   getEnvOrDefault("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=interview port=5432 sslmode=disable"),
		FieldKey:      os.Getenv("FIELD_ENCRYPTION_KEY"),

		SessionTTL:     getEnvDuration("SESSION_TTL", 2*time.Hour),
		ExpirySchedule: getEnvOrDefault("SESSION_EXPIRY_SCHEDULE", "@every 10m"),

		Scoring:   defaultScoring(),
		Questions: defaultQuestions(),
		Queue:     defaultQueue(),
	}

	config.Scoring.PartialCreditEnabled = getEnvBool("PARTIAL_CREDIT_ENABLED", true)
	config.Questions.DefaultQuestionCount = getEnvInt("DEFAULT_QUESTION_COUNT", 5)

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func defaultScoring() ScoringConfig {
	return ScoringConfig{
		MinScorePerQuestion: 0,
		MaxScorePerQuestion: 100,
		FallbackScore:       50,
		DifficultyMultipliers: map[string]float64{
			DifficultyEasy:   1.0,
			DifficultyMedium: 1.2,
			DifficultyHard:   1.5,
		},
		PartialCreditEnabled: true,
		MinAnswerLength:      100,
		MaxAnswerLength:      2000,
		OverLengthLeniency:   0.9,
	}
}

func defaultQuestions() QuestionConfig {
	return QuestionConfig{
		MinQuestionCount:     3,
		MaxQuestionCount:     10,
		DefaultQuestionCount: 5,
		DefaultTimeLimits: map[string]int{
			DifficultyEasy:   120,
			DifficultyMedium: 180,
			DifficultyHard:   300,
		},
		DifficultyWeights: map[string]float64{
			DifficultyEasy:   1.0,
			DifficultyMedium: 1.25,
			DifficultyHard:   1.5,
		},
	}
}

func defaultQueue() QueueConfig {
	return QueueConfig{
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		AttemptTimeout: 30 * time.Second,
		AwaitTimeout:   2 * time.Minute,
		ResultTTL:      5 * time.Minute,
		WorkersPerKind: 2,

		MaxResumeLength: 3000,
		MaxAnswerLength: 2000,
	}
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	if config.Scoring.MinScorePerQuestion >= config.Scoring.MaxScorePerQuestion {
		return errors.New("scoring: min score must be below max score")
	}
	if config.Questions.MinQuestionCount > config.Questions.MaxQuestionCount {
		return errors.New("questions: min count must not exceed max count")
	}
	if config.Questions.DefaultQuestionCount < config.Questions.MinQuestionCount ||
		config.Questions.DefaultQuestionCount > config.Questions.MaxQuestionCount {
		return errors.New("questions: default count must be within [min, max]")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
