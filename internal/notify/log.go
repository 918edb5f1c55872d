package notify

import (
	"context"
	"errors"

	"auction-bidding-go/internal/models"

	"go.uber.org/zap"
)

// LogDispatcher writes events to the structured log. It is the fallback
// when no Redis is configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, event models.Event) error {
	zap.L().Info("Auction event",
		zap.String("event", event.Type()),
		zap.String("auction_id", event.AuctionRef()),
		zap.Any("data", event))
	return nil
}

// LogOrderNotifier records sales in the log instead of publishing them.
type LogOrderNotifier struct{}

func (LogOrderNotifier) NotifyAuctionSold(_ context.Context, n models.OrderNotification) error {
	zap.L().Info("Auction sold, order pending",
		zap.String("notification_id", n.Id),
		zap.String("auction_id", n.AuctionId),
		zap.String("product_id", n.ProductId),
		zap.String("winner_id", n.WinnerId),
		zap.String("final_price", n.FinalPrice.String()),
		zap.String("currency", n.Currency),
		zap.Time("sold_at", n.SoldAt))
	return nil
}

// Dispatcher is the event sink shape shared with the engine.
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.Event) error
}

// Multi sends each event to every dispatcher and joins their errors.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, event models.Event) error {
	var errs []error
	for _, d := range m {
		if err := d.Dispatch(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
