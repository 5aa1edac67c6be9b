// Package config reads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const DefaultInitialTime = 250

type Config struct {
	Port           string
	InitialTime    int // per-player time budget in seconds
	QuestionsPath  string
	LeaderboardDSN string
	StaticDir      string
}

func Load() Config {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	return Config{
		Port:           getEnv("ALPHADUEL_PORT", "3000"),
		InitialTime:    getEnvAsInt("ALPHADUEL_INITIAL_TIME", DefaultInitialTime),
		QuestionsPath:  getEnv("ALPHADUEL_QUESTIONS", "questions.yaml"),
		LeaderboardDSN: getEnv("ALPHADUEL_LEADERBOARD_DB", "leaderboard.db"),
		StaticDir:      getEnv("ALPHADUEL_STATIC_DIR", "public"),
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
