package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultAPIBaseURL = "http://localhost:5000"

type Config struct {
	APIBaseURL      string
	RequestTimeout  time.Duration
	AppEnv          string
	StateDir        string
	ConfirmRedirect time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		APIBaseURL:      getenv("NEXT_PUBLIC_API_URL", defaultAPIBaseURL),
		RequestTimeout:  time.Duration(getenvInt("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		AppEnv:          getenv("APP_ENV", "development"),
		StateDir:        getenv("STATE_DIR", defaultStateDir()),
		ConfirmRedirect: time.Duration(getenvInt("CONFIRM_REDIRECT_SECONDS", 3)) * time.Second,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".buyit"
	}
	return filepath.Join(home, ".buyit")
}
