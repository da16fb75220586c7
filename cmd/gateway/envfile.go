package main

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const gatewayEnvFilePathEnv = "NESTMIND_ENV_FILE"

// loadEnvFile applies the dotenv file without overriding variables that are
// already set. A missing file is not an error.
func loadEnvFile() (string, int, error) {
	path := strings.TrimSpace(os.Getenv(gatewayEnvFilePathEnv))
	if path == "" {
		path = ".env"
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return path, 0, nil
		}
		return path, 0, err
	}

	loaded := 0
	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err == nil {
			loaded++
		}
	}
	return path, loaded, nil
}
