package common

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads KEY=VALUE pairs into the environment. Existing
// environment variables are preserved. A missing file is not an error so
// the tools work both locally (with .env) and in CI (without).
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}
