package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	configpkg "github.com/minhyannv/velocity-agent-go/pkg/config"
)

const dotEnvPath = ".env"

// parseCLIConfig loads .env and resolves the runtime config from the environment.
func parseCLIConfig() (configpkg.Config, error) {
	if err := loadDotEnv(dotEnvPath); err != nil {
		return configpkg.Config{}, err
	}
	return configpkg.FromEnv(os.LookupEnv)
}

// loadDotEnv copies key=value pairs from path into the environment without
// overriding variables that are already set. Comment lines and lines without
// "=" are skipped. A missing file is not an error.
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var kept strings.Builder
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		kept.WriteString(line)
		kept.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	values, err := godotenv.Unmarshal(kept.String())
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}
