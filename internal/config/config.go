// config.go
//
// Farm bookkeeping data service: crops, expenses, income and profit per account
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of farm-ledger.
// farm-ledger is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// farm-ledger is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with farm-ledger.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionExpiration is the session lifetime when SESSION_EXPIRATION is unset
const DefaultSessionExpiration = 24 * time.Hour

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // sqlite, sqlite-pure, mysql, mariadb, postgres, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string // file path for the sqlite types
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBMigrate         string // auto or goose
	DBLogLevel        string // silent, error, warn, info

	// Session configuration
	SessionCookieName   string
	SessionExpiration   time.Duration
	SessionCookieSecure bool

	// Credential hashing
	BcryptCost int
}

// Load loads configuration from environment variables, after applying ENV_FILE (default .env)
// when that file exists.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		log.Printf("[config] no %s file, using process environment", envFile)
	}

	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		DBType:              strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBDatabase:          getEnv("DB_DATABASE", "farm_db.db"),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:   getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBMigrate:           strings.ToLower(getEnv("DB_MIGRATE", "auto")),
		DBLogLevel:          strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "farm_session"),
		SessionExpiration:   getEnvAsDuration("SESSION_EXPIRATION", DefaultSessionExpiration),
		SessionCookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", false),
		BcryptCost:          getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and value ranges
func (cfg *Config) Validate() error {
	if cfg.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if !cfg.IsSQLite() && cfg.DBUser == "" {
		return fmt.Errorf("DB_USER is required for DB_TYPE %s", cfg.DBType)
	}
	if cfg.DBMigrate != "auto" && cfg.DBMigrate != "goose" {
		return fmt.Errorf("DB_MIGRATE must be auto or goose, got %q", cfg.DBMigrate)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.DBConnectionLimit < 1 {
		return fmt.Errorf("DB_CONNECTION_LIMIT must be positive")
	}
	return nil
}

// IsSQLite reports whether the configured database is a local sqlite file
func (cfg *Config) IsSQLite() bool {
	return cfg.DBType == "sqlite" || cfg.DBType == "sqlite-pure"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
