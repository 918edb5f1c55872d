/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"auction-bidding-go/internal/models"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

func Load() (*models.Config, error) {
	cfg := &models.Config{
		Database: models.DatabaseConfig{
			Backend:      strings.ToLower(getEnvString("DB_BACKEND", BackendSQLite)),
			Path:         getEnvString("DATABASE_PATH", "auctions.db"),
			PostgresURL:  getEnvString("DATABASE_URL", ""),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		Engine: models.EngineConfig{
			MaxCommitAttempts: getEnvInt("ENGINE_MAX_COMMIT_ATTEMPTS", 3),
		},
		Scheduler: models.SchedulerConfig{
			Enabled:         getEnvBool("SCHEDULER_ENABLED", true),
			OutboxBatchSize: getEnvInt("SCHEDULER_OUTBOX_BATCH_SIZE", 50),
			ListingsFile:    getEnvString("LISTINGS_FILE", "listings.yaml"),
		},
		Server: models.ServerConfig{
			Addr: getEnvString("SERVER_ADDR", ":8080"),
		},
		Redis: models.RedisConfig{
			Addr:     getEnvString("REDIS_ADDR", ""),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Nats: models.NatsConfig{
			URL:           getEnvString("NATS_URL", ""),
			Stream:        getEnvString("NATS_STREAM", "AUCTION_ORDERS"),
			SubjectPrefix: getEnvString("NATS_SUBJECT_PREFIX", "auctions"),
		},
	}

	durations := []struct {
		key          string
		defaultValue time.Duration
		target       *time.Duration
	}{
		{"DB_CONN_MAX_LIFETIME", 5 * time.Minute, &cfg.Database.ConnMaxLifetime},
		{"DB_CONN_MAX_IDLE_TIME", 30 * time.Second, &cfg.Database.ConnMaxIdleTime},
		{"DB_PING_TIMEOUT", 5 * time.Second, &cfg.Database.PingTimeout},
		{"DB_BUSY_TIMEOUT", 5 * time.Second, &cfg.Database.BusyTimeout},
		{"ENGINE_SNIPING_WINDOW", 10 * time.Minute, &cfg.Engine.SnipingWindow},
		{"ENGINE_EXTENSION_DURATION", 10 * time.Minute, &cfg.Engine.ExtensionDuration},
		{"ENGINE_LOCK_TIMEOUT", 2 * time.Second, &cfg.Engine.LockTimeout},
		{"SCHEDULER_TICK_INTERVAL", 30 * time.Second, &cfg.Scheduler.TickInterval},
		{"SCHEDULER_OUTBOX_INTERVAL", 15 * time.Second, &cfg.Scheduler.OutboxInterval},
		{"SERVER_READ_TIMEOUT", 10 * time.Second, &cfg.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", 10 * time.Second, &cfg.Server.WriteTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", 30 * time.Second, &cfg.Server.ShutdownTimeout},
	}
	for _, d := range durations {
		value, err := getEnvDuration(d.key, d.defaultValue)
		if err != nil {
			return nil, err
		}
		*d.target = value
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *models.Config) error {
	switch cfg.Database.Backend {
	case BackendSQLite:
		if cfg.Database.Path == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if cfg.Database.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown DB_BACKEND %q (want %s or %s)", cfg.Database.Backend, BackendSQLite, BackendPostgres)
	}
	if cfg.Engine.MaxCommitAttempts < 1 {
		return fmt.Errorf("ENGINE_MAX_COMMIT_ATTEMPTS must be at least 1")
	}
	if cfg.Scheduler.TickInterval <= 0 {
		return fmt.Errorf("SCHEDULER_TICK_INTERVAL must be positive")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
