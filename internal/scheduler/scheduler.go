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


package scheduler

import (
	"context"
	"sync"
	"time"

	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/store"

	"go.uber.org/zap"
)

const (
	DefaultTickInterval    = 30 * time.Second
	DefaultOutboxInterval  = 15 * time.Second
	DefaultOutboxBatchSize = 50
)

// OrderNotifier hands a sold auction over to order processing.
type OrderNotifier interface {
	NotifyAuctionSold(ctx context.Context, notification models.OrderNotification) error
}

// Repository is the part of the store the scheduler reads from directly.
// All auction writes go through the engine.
type Repository interface {
	FindPendingDue(ctx context.Context, now time.Time) ([]models.Auction, error)
	FindExpiredOpen(ctx context.Context, now time.Time) ([]models.Auction, error)
	store.OrderOutbox
}

// Config contains configuration for Scheduler
type Config struct {
	Engine          *engine.Engine
	Store           Repository
	Notifier        OrderNotifier
	TickInterval    time.Duration
	OutboxInterval  time.Duration
	OutboxBatchSize int
}

// Scheduler drives auctions through their time-based transitions and relays
// queued order notifications.
type Scheduler struct {
	engine   *engine.Engine
	store    Repository
	notifier OrderNotifier

	tickInterval    time.Duration
	outboxInterval  time.Duration
	outboxBatchSize int

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}

	mu       sync.Mutex
	started  bool
	stopped  bool
	stopOnce sync.Once
}

func New(cfg Config) *Scheduler {
	s := &Scheduler{
		engine:          cfg.Engine,
		store:           cfg.Store,
		notifier:        cfg.Notifier,
		tickInterval:    cfg.TickInterval,
		outboxInterval:  cfg.OutboxInterval,
		outboxBatchSize: cfg.OutboxBatchSize,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
	if s.tickInterval <= 0 {
		s.tickInterval = DefaultTickInterval
	}
	if s.outboxInterval <= 0 {
		s.outboxInterval = DefaultOutboxInterval
	}
	if s.outboxBatchSize <= 0 {
		s.outboxBatchSize = DefaultOutboxBatchSize
	}
	return s
}

// Start runs one tick immediately and then keeps ticking until Stop is
// called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		zap.L().Warn("Auction scheduler already started or stopped")
		return
	}
	s.started = true
	s.mu.Unlock()

	zap.L().Info("Starting auction scheduler",
		zap.Duration("tick_interval", s.tickInterval),
		zap.Duration("outbox_interval", s.outboxInterval))

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		s.relayLoop(ctx)
	}()
	go func() {
		s.tickLoop(ctx)
		<-relayDone
		close(s.doneChan)
	}()
}

// Stop gracefully stops both loops and waits for them to exit. It is safe
// to call more than once and on a scheduler that was never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		zap.L().Info("Stopping auction scheduler")
		close(s.stopChan)
	})
	if started {
		<-s.doneChan
	}
	zap.L().Info("Auction scheduler stopped")
}

func (s *Scheduler) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.Tick(ctx)

	for {
		select {
		case <-ticker.C:
			s.Tick(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) relayLoop(ctx context.Context) {
	ticker := time.NewTicker(s.outboxInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RelayOrderNotifications(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}
