package scheduler

import (
	"context"
	"errors"

	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TickResult summarizes one pass over due auctions.
type TickResult struct {
	Activated int
	Sold      int
	Unsold    int
	Failed    int
}

// Tick activates every PENDING auction whose start date has passed, then
// closes every open auction whose end date has passed. A failure on one
// auction is logged and does not stop the rest of the pass.
func (s *Scheduler) Tick(ctx context.Context) TickResult {
	var result TickResult
	ctx = models.WithRequestContext(ctx, &models.RequestContext{
		RequestId: uuid.New().String(),
		Source:    "scheduler",
	})
	now := s.engine.Now()

	due, err := s.store.FindPendingDue(ctx, now)
	if err != nil {
		zap.L().Error("Failed to find auctions due to start", zap.Error(err))
		result.Failed++
	}
	for _, auction := range due {
		activated, err := s.engine.ActivateIfDue(ctx, auction.Id)
		if err != nil {
			logTransitionFailure("activate", auction.Id, err)
			result.Failed++
			continue
		}
		if activated {
			result.Activated++
		}
	}

	expired, err := s.store.FindExpiredOpen(ctx, now)
	if err != nil {
		zap.L().Error("Failed to find expired auctions", zap.Error(err))
		result.Failed++
	}
	for _, auction := range expired {
		closed, err := s.engine.CloseIfExpired(ctx, auction.Id)
		if err != nil {
			logTransitionFailure("close", auction.Id, err)
			result.Failed++
			continue
		}
		if closed == nil {
			continue
		}
		if closed.Status == models.StatusSold {
			result.Sold++
		} else {
			result.Unsold++
		}
	}

	if result != (TickResult{}) {
		zap.L().Info("Scheduler tick complete",
			zap.Int("activated", result.Activated),
			zap.Int("sold", result.Sold),
			zap.Int("unsold", result.Unsold),
			zap.Int("failed", result.Failed))
	}
	return result
}

func logTransitionFailure(action, auctionId string, err error) {
	// Contention means a bid or another scheduler holds the auction; the
	// next tick retries.
	if errors.Is(err, engine.ErrContention) {
		zap.L().Warn("Auction busy, retrying next tick",
			zap.String("action", action),
			zap.String("auction_id", auctionId),
			zap.Error(err))
		return
	}
	zap.L().Error("Auction transition failed",
		zap.String("action", action),
		zap.String("auction_id", auctionId),
		zap.Error(err))
}
