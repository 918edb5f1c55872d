package scheduler

import (
	"context"

	"go.uber.org/zap"
)

// RelayOrderNotifications delivers queued sale notifications to the order
// notifier. Undelivered notifications stay queued and are retried on the
// next pass. It returns the number delivered.
func (s *Scheduler) RelayOrderNotifications(ctx context.Context) int {
	if s.notifier == nil {
		return 0
	}

	pending, err := s.store.PendingOrderNotifications(ctx, s.outboxBatchSize)
	if err != nil {
		zap.L().Error("Failed to load pending order notifications", zap.Error(err))
		return 0
	}

	delivered := 0
	for _, n := range pending {
		if err := s.notifier.NotifyAuctionSold(ctx, n); err != nil {
			zap.L().Warn("Order notification failed",
				zap.String("notification_id", n.Id),
				zap.String("auction_id", n.AuctionId),
				zap.Int("attempts", n.Attempts+1),
				zap.Error(err))
			if err := s.store.RecordOrderNotificationFailure(ctx, n.Id); err != nil {
				zap.L().Error("Failed to record notification failure",
					zap.String("notification_id", n.Id),
					zap.Error(err))
			}
			continue
		}

		if err := s.store.MarkOrderNotificationDelivered(ctx, n.Id, s.engine.Now()); err != nil {
			zap.L().Error("Failed to mark notification delivered",
				zap.String("notification_id", n.Id),
				zap.Error(err))
			continue
		}
		delivered++
		zap.L().Info("Order notified",
			zap.String("auction_id", n.AuctionId),
			zap.String("winner_id", n.WinnerId),
			zap.String("final_price", n.FinalPrice.String()))
	}
	return delivered
}
