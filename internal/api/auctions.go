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
	"strings"

	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateAuction lists a product for auction. The auction starts PENDING
// and the scheduler activates it once its start date is reached.
func (s *AuctionService) CreateAuction(ctx context.Context, req models.CreateAuctionRequest) (*models.Auction, error) {
	if err := validateCreateAuction(req); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, req.ProductId)
	if err != nil {
		return nil, err
	}
	if product.SellerId != req.SellerId {
		return nil, fmt.Errorf("product %s: %w", req.ProductId, ErrNotSeller)
	}

	auction := &models.Auction{
		Id:                uuid.New().String(),
		ProductId:         req.ProductId,
		StartingPrice:     req.StartingPrice,
		ReservePrice:      req.ReservePrice,
		CurrentPrice:      req.StartingPrice,
		BidIncrement:      req.BidIncrement,
		StartDate:         req.StartDate.UTC(),
		EndDate:           req.EndDate.UTC(),
		Status:            models.StatusPending,
		AutoExtendEnabled: req.AutoExtendEnabled,
	}

	if err := s.store.CreateAuction(ctx, auction); err != nil {
		if errors.Is(err, store.ErrProductHasOpenAuction) {
			return nil, err
		}
		zap.L().Error("Failed to create auction",
			zap.String("product_id", req.ProductId),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}
	return auction, nil
}

func validateCreateAuction(req models.CreateAuctionRequest) error {
	if strings.TrimSpace(req.ProductId) == "" || strings.TrimSpace(req.SellerId) == "" {
		return invalid("product_id and seller_id are required")
	}
	if !req.BidIncrement.IsPositive() {
		return invalid("bid_increment must be positive")
	}
	if req.ReservePrice != nil && req.ReservePrice.LessThan(req.StartingPrice) {
		return invalid("reserve_price %s is below starting_price %s", req.ReservePrice, req.StartingPrice)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return invalid("start_date and end_date are required")
	}
	if !req.EndDate.After(req.StartDate) {
		return invalid("end_date must be after start_date")
	}
	return nil
}

// ListAuctions returns auctions matching filter: all, active, closed or
// pending. An empty filter means all.
func (s *AuctionService) ListAuctions(ctx context.Context, filter string) ([]models.Auction, error) {
	f, ok := models.ParseAuctionFilter(filter)
	if !ok {
		return nil, invalid("unknown status filter %q", filter)
	}

	auctions, err := s.store.ListAuctions(ctx, f, s.engine.Now())
	if err != nil {
		zap.L().Error("Failed to list auctions", zap.String("filter", string(f)), zap.Error(err))
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	if auctions == nil {
		auctions = []models.Auction{}
	}
	return auctions, nil
}

func (s *AuctionService) GetAuction(ctx context.Context, auctionId string) (*models.Auction, error) {
	if auctionId == "" {
		return nil, invalid("auction_id is required")
	}
	auction, err := s.store.GetAuction(ctx, auctionId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("auction %s: %w", auctionId, engine.ErrAuctionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

// CloseAuction ends an open auction now and resolves it to SOLD or UNSOLD.
func (s *AuctionService) CloseAuction(ctx context.Context, auctionId string) (*models.Auction, error) {
	if auctionId == "" {
		return nil, invalid("auction_id is required")
	}
	return s.engine.ForceClose(ctx, auctionId)
}

// DeleteAuction removes an auction together with its bids.
func (s *AuctionService) DeleteAuction(ctx context.Context, auctionId string) error {
	if auctionId == "" {
		return invalid("auction_id is required")
	}
	return s.engine.Delete(ctx, auctionId)
}
