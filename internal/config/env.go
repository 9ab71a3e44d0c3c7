package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// EnvConfig holds overrides read from the environment. Zero values mean unset.
type EnvConfig struct {
	File      string `env:"VOCABDRILL_FILE"`
	Words     int    `env:"VOCABDRILL_WORDS"`
	Filter    string `env:"VOCABDRILL_FILTER"`
	DB        string `env:"VOCABDRILL_DB"`
	LogLevel  string `env:"VOCABDRILL_LOG_LEVEL"`
	LogFormat string `env:"VOCABDRILL_LOG_FORMAT"`
}

// LoadEnv loads dotenv (when the file exists) into the process environment
// and reads the overrides. Variables already set win over the file.
func LoadEnv(dotenv string) (EnvConfig, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return EnvConfig{}, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}
	var cfg EnvConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}
