package engine

import (
	"context"

	"auction-bidding-go/internal/models"

	"go.uber.org/zap"
)

// EventDispatcher receives domain events after the change they describe
// has been committed.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event models.Event) error
}

// Delivery is best effort: a failed dispatch is logged and the committed
// change stands.
func (e *Engine) dispatch(ctx context.Context, events []models.Event) {
	if e.dispatcher == nil {
		return
	}
	for _, event := range events {
		if err := e.dispatcher.Dispatch(ctx, event); err != nil {
			zap.L().Warn("Failed to dispatch auction event",
				zap.String("event", event.Type()),
				zap.String("auction_id", event.AuctionRef()),
				zap.Error(err))
		}
	}
}
