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


package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"auction-bidding-go/internal/api"
	"auction-bidding-go/internal/config"
	"auction-bidding-go/internal/database"
	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/notify"
	"auction-bidding-go/internal/postgres"
	"auction-bidding-go/internal/scheduler"
	"auction-bidding-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

// Services is the wired application: storage, engine, outbound
// notifications and the scheduler that drives auctions over time.
type Services struct {
	Store     store.Store
	Engine    *engine.Engine
	Auctions  *api.AuctionService
	Scheduler *scheduler.Scheduler

	closers []func()
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// OpenStore connects the configured storage backend.
func OpenStore(ctx context.Context, cfg models.DatabaseConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pg, err := postgres.NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.BackendSQLite, "":
		db, err := database.NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Backend)
	}
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	st, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	services := &Services{Store: st}
	services.closers = append(services.closers, st.Close)

	var dispatcher engine.EventDispatcher = notify.LogDispatcher{}
	if cfg.Redis.Addr != "" {
		publisher, err := notify.NewEventPublisher(ctx, cfg.Redis)
		if err != nil {
			services.Close()
			return nil, err
		}
		services.closers = append(services.closers, func() {
			if err := publisher.Close(); err != nil {
				zap.L().Warn("Failed to close Redis publisher", zap.Error(err))
			}
		})
		dispatcher = publisher
	} else {
		zap.L().Info("REDIS_ADDR not set, auction events go to the log only")
	}

	var notifier scheduler.OrderNotifier = notify.LogOrderNotifier{}
	if cfg.Nats.URL != "" {
		publisher, err := notify.NewOrderPublisher(ctx, cfg.Nats)
		if err != nil {
			services.Close()
			return nil, err
		}
		services.closers = append(services.closers, publisher.Close)
		notifier = publisher
	} else {
		zap.L().Info("NATS_URL not set, sold auctions are logged instead of published")
	}

	services.Engine = engine.New(st, dispatcher, nil, cfg.Engine)
	services.Auctions = api.NewAuctionService(services.Engine, st)
	services.Scheduler = scheduler.New(scheduler.Config{
		Engine:          services.Engine,
		Store:           st,
		Notifier:        notifier,
		TickInterval:    cfg.Scheduler.TickInterval,
		OutboxInterval:  cfg.Scheduler.OutboxInterval,
		OutboxBatchSize: cfg.Scheduler.OutboxBatchSize,
	})

	zap.L().Info("Services initialized",
		zap.String("backend", cfg.Database.Backend),
		zap.Duration("sniping_window", cfg.Engine.SnipingWindow),
		zap.Duration("lock_timeout", cfg.Engine.LockTimeout))

	return services, nil
}

// Close releases connections in reverse order of creation.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
