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


package notify

import (
	"context"
	"fmt"
	"time"

	"auction-bidding-go/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 5 * time.Second

// EventPublisher fans committed auction events out over Redis pub/sub so
// that live subscribers (websocket gateways, dashboards) can follow bidding.
type EventPublisher struct {
	client *redis.Client
}

func NewEventPublisher(ctx context.Context, cfg models.RedisConfig) (*EventPublisher, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	zap.L().Info("Redis event publisher connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &EventPublisher{client: client}, nil
}

// Dispatch publishes event on its auction's channel.
func (p *EventPublisher) Dispatch(ctx context.Context, event models.Event) error {
	data, err := encodeEvent(event, time.Now())
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, EventChannel(event.AuctionRef()), data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type(), err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.client.Close()
}
