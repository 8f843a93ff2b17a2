package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvLoader implements Provider with .env file support
type DotEnvLoader struct {
	*Loader
	envFiles []string
}

// NewDotEnvLoader creates a new configuration loader with .env file support
func NewDotEnvLoader(envFiles ...string) Provider {
	// Default to .env file in current directory if none specified
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	return &DotEnvLoader{
		Loader:   &Loader{envLoader: &OSEnvLoader{}},
		envFiles: envFiles,
	}
}

// NewDotEnvLoaderWithEnv creates a loader with custom environment loader and .env support
func NewDotEnvLoaderWithEnv(envLoader EnvLoader, envFiles ...string) Provider {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	return &DotEnvLoader{
		Loader:   &Loader{envLoader: envLoader},
		envFiles: envFiles,
	}
}

// Load loads configuration from .env file(s) and environment variables
func (d *DotEnvLoader) Load() (*Config, error) {
	// Load all .env files at once to ensure proper override behavior
	existingFiles := []string{}
	for _, envFile := range d.envFiles {
		if _, err := os.Stat(envFile); err == nil {
			existingFiles = append(existingFiles, envFile)
		}
	}

	// godotenv.Overload with multiple files ensures that .env files override
	// any existing environment variables
	if len(existingFiles) > 0 {
		if err := godotenv.Overload(existingFiles...); err != nil {
			absPath := existingFiles[0]
			if len(existingFiles) > 1 {
				absPath = "multiple files: " + strings.Join(existingFiles, ", ")
			}
			return nil, NewEnvFileError(absPath, err)
		}
	}

	// Load from environment variables (including those loaded from .env)
	return d.LoadFromEnv()
}

// EnvFileError represents an error loading a .env file
type EnvFileError struct {
	FilePath string
	Err      error
}

func NewEnvFileError(filePath string, err error) *EnvFileError {
	return &EnvFileError{
		FilePath: filePath,
		Err:      err,
	}
}

func (e *EnvFileError) Error() string {
	return fmt.Sprintf("failed to load .env file %s: %v", e.FilePath, e.Err)
}

func (e *EnvFileError) Unwrap() error {
	return e.Err
}
