package common

import (
	"context"
	"fmt"

	"auction-bidding-go/internal/api"
	"auction-bidding-go/internal/models"

	"go.uber.org/zap"
)

// SelectAuctions returns a single auction when auctionId is set, otherwise
// every auction matching the status filter.
func SelectAuctions(ctx context.Context, svc *api.AuctionService, auctionId, status string, logger *zap.Logger) ([]models.Auction, error) {
	if auctionId != "" {
		logger.Info("Looking up auction", zap.String("auction_id", auctionId))
		auction, err := svc.GetAuction(ctx, auctionId)
		if err != nil {
			return nil, fmt.Errorf("auction not found: %w", err)
		}
		return []models.Auction{*auction}, nil
	}

	auctions, err := svc.ListAuctions(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	logger.Info("Retrieved auctions", zap.String("status", status), zap.Int("count", len(auctions)))
	return auctions, nil
}
