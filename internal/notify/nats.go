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
	"encoding/json"
	"fmt"
	"time"

	"auction-bidding-go/internal/models"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const (
	DefaultStream        = "AUCTION_ORDERS"
	DefaultSubjectPrefix = "auctions"

	streamSetupTimeout = 10 * time.Second
)

// OrderPublisher notifies the order side of a sale through a JetStream
// stream. The notification id is used as the message id, so a redelivery
// from the outbox is dropped by the server's duplicate window.
type OrderPublisher struct {
	conn          *nats.Conn
	js            jetstream.JetStream
	subjectPrefix string
}

func NewOrderPublisher(ctx context.Context, cfg models.NatsConfig) (*OrderPublisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	stream := cfg.Stream
	if stream == "" {
		stream = DefaultStream
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("auction-bidding"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	setupCtx, cancel := context.WithTimeout(ctx, streamSetupTimeout)
	defer cancel()

	_, err = js.CreateOrUpdateStream(setupCtx, jetstream.StreamConfig{
		Name:        stream,
		Description: "Sold auctions awaiting order creation",
		Subjects:    []string{prefix + ".sold.*"},
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.WorkQueuePolicy,
		MaxAge:      7 * 24 * time.Hour,
		Duplicates:  time.Hour,
		Replicas:    1,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create/update stream %s: %w", stream, err)
	}

	zap.L().Info("JetStream order publisher ready",
		zap.String("stream", stream),
		zap.String("subject_prefix", prefix))

	return &OrderPublisher{conn: conn, js: js, subjectPrefix: prefix}, nil
}

func (p *OrderPublisher) NotifyAuctionSold(ctx context.Context, notification models.OrderNotification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal order notification: %w", err)
	}

	subject := SoldSubject(p.subjectPrefix, notification.AuctionId)
	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(notification.Id))
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	zap.L().Debug("Order notification published",
		zap.String("subject", subject),
		zap.String("stream", ack.Stream),
		zap.Uint64("sequence", ack.Sequence),
		zap.Bool("duplicate", ack.Duplicate))
	return nil
}

func (p *OrderPublisher) Close() {
	p.conn.Close()
}
