package api

import (
	"context"
	"fmt"
	"strings"

	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"

	"go.uber.org/zap"
)

// PlaceBid submits a bid through the engine. Engine errors are returned
// unchanged so callers can match them with errors.Is/As.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionId string, req models.PlaceBidRequest) (*models.BidOutcome, error) {
	bidderId := strings.TrimSpace(req.BidderId)
	if auctionId == "" || bidderId == "" {
		return nil, invalid("auction_id and bidder_id are required")
	}

	var opts []engine.BidOption
	if req.MaxAmount != nil {
		opts = append(opts, engine.WithMaxAmount(*req.MaxAmount))
	}
	return s.engine.PlaceBid(ctx, auctionId, bidderId, req.Amount, opts...)
}

// GetBids returns an auction's bids, highest first.
func (s *AuctionService) GetBids(ctx context.Context, auctionId string) ([]models.Bid, error) {
	if _, err := s.GetAuction(ctx, auctionId); err != nil {
		return nil, err
	}
	bids, err := s.store.FindBidsByAuction(ctx, auctionId)
	if err != nil {
		zap.L().Error("Failed to get bids", zap.String("auction_id", auctionId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve bids: %w", err)
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	return bids, nil
}

// GetWinningBid returns the current winning bid, or nil when the auction
// has none yet.
func (s *AuctionService) GetWinningBid(ctx context.Context, auctionId string) (*models.Bid, error) {
	if auctionId == "" {
		return nil, invalid("auction_id is required")
	}
	return s.engine.CurrentWinningBid(ctx, auctionId)
}

func (s *AuctionService) GetNextMinimumBid(ctx context.Context, auctionId string) (*models.NextMinimumBid, error) {
	if auctionId == "" {
		return nil, invalid("auction_id is required")
	}
	minimum, err := s.engine.NextMinimumBid(ctx, auctionId)
	if err != nil {
		return nil, err
	}
	return &models.NextMinimumBid{
		AuctionId: auctionId,
		Minimum:   minimum,
		Currency:  money.Currency,
	}, nil
}
