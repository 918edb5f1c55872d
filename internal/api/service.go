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


package api

import (
	"context"
	"errors"
	"fmt"

	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/store"
)

var (
	// ErrInvalidRequest marks input that failed validation before reaching
	// the engine or the store.
	ErrInvalidRequest  = errors.New("invalid request")
	ErrProductNotFound = errors.New("product not found")
	ErrNotSeller       = errors.New("seller does not own product")
)

// AuctionService is the application surface shared by the HTTP server and
// the CLI. Bids and state changes go through the engine; reads go to the
// store directly.
type AuctionService struct {
	engine *engine.Engine
	store  store.Store
}

func NewAuctionService(eng *engine.Engine, st store.Store) *AuctionService {
	return &AuctionService{
		engine: eng,
		store:  st,
	}
}

func (s *AuctionService) HealthCheck(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
