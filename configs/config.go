package configs

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/smizereens/TMDB/configs/loader"
)

type TMDBConfig struct {
	Token string `validate:"required"`
	Path  string `validate:"required"`
}

type TelegramConfig struct {
	Token             string        `validate:"required"`
	ConnectionTimeout time.Duration `validate:"required"`
	SendRate          float64       `validate:"required"`
}

type MetricsConfig struct {
	Addr string
}

type Config struct {
	TMDB    TMDBConfig
	TG      TelegramConfig
	Metrics MetricsConfig
	Env     string
}

func MustLoad(loader loader.ConfigLoader) *Config {
	env := flag.String("env", "dev", "Environment type")
	flag.Parse()

	const op = "configs.MustLoad"
	envs, err := loader.Load()
	if err != nil {
		log.Fatalf("%s: config load failed: %+v", op, err)
	}
	cfg := &Config{
		TMDB: TMDBConfig{
			Token: envs["TMDB_API_KEY"],
			Path:  getEnvAsString(envs["TMDB_PATH"], "https://api.themoviedb.org/3/"),
		},
		TG: TelegramConfig{
			Token:             envs["TELEGRAM_BOT_TOKEN"],
			ConnectionTimeout: getEnvAsDuration(envs["TELEGRAM_CONNECTION_TIMEOUT"], 30*time.Second),
			SendRate:          getEnvAsFloat(envs["TELEGRAM_SEND_RATE"], 10),
		},
		Metrics: MetricsConfig{
			Addr: getEnvAsString(envs["METRICS_ADDR"], ":8080"),
		},
		Env: *env,
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("%s: config validation failed: %+v", op, err)
	}

	return cfg
}

func validateConfig(cfg *Config) error {
	if cfg.TMDB.Token == "" || cfg.TG.Token == "" {
		return fmt.Errorf("missing required configuration")
	}
	return nil
}

func getEnvAsString(strValue string, defaultValue string) string {
	if strValue == "" {
		return defaultValue
	}
	return strValue
}

func getEnvAsDuration(strValue string, defaultValue time.Duration) time.Duration {
	const op = "configs.getEnvAsDuration"
	if strValue == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("%s:Invalid value for %s, using default: %v", op, strValue, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(strValue string, defaultValue float64) float64 {
	const op = "configs.getEnvAsFloat"
	if strValue == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		log.Printf("%s:Invalid value for %s, using default: %v", op, strValue, defaultValue)
		return defaultValue
	}
	return value
}
