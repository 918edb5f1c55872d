package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"
	"auction-bidding-go/internal/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ engine.EventDispatcher  = (*EventPublisher)(nil)
	_ engine.EventDispatcher  = LogDispatcher{}
	_ engine.EventDispatcher  = Multi(nil)
	_ scheduler.OrderNotifier = (*OrderPublisher)(nil)
	_ scheduler.OrderNotifier = LogOrderNotifier{}
)

type countingDispatcher struct {
	calls int
	err   error
}

func (d *countingDispatcher) Dispatch(context.Context, models.Event) error {
	d.calls++
	return d.err
}

func TestEncodeEvent(t *testing.T) {
	placedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	event := models.BidPlaced{
		AuctionId:    "auction-1",
		BidId:        "bid-1",
		BidderId:     "bidder-1",
		Amount:       money.MustParse("130"),
		PreviousBest: money.MustParse("120"),
		TotalBids:    2,
		PlacedAt:     placedAt,
	}

	data, err := encodeEvent(event, placedAt)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "auction.bid_placed", decoded["type"])
	assert.Equal(t, "auction-1", decoded["auction_id"])

	payload, ok := decoded["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "130.00", payload["amount"])
	assert.Equal(t, "120.00", payload["previous_price"])
	assert.Equal(t, "bidder-1", payload["bidder_id"])
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "auction_events:a-1", EventChannel("a-1"))
	assert.Equal(t, "auctions.sold.a-1", SoldSubject("auctions", "a-1"))
}

func TestMulti(t *testing.T) {
	event := models.AuctionActivated{AuctionId: "a-1", ActivatedAt: time.Now()}

	t.Run("Success", func(t *testing.T) {
		first, second := &countingDispatcher{}, &countingDispatcher{}
		require.NoError(t, Multi{first, second, LogDispatcher{}}.Dispatch(context.Background(), event))
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 1, second.calls)
	})

	t.Run("Failure does not stop delivery", func(t *testing.T) {
		boom := errors.New("redis down")
		failing, ok := &countingDispatcher{err: boom}, &countingDispatcher{}

		err := Multi{failing, ok}.Dispatch(context.Background(), event)

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, ok.calls)
	})
}

func TestConstructorsRequireAddress(t *testing.T) {
	_, err := NewEventPublisher(context.Background(), models.RedisConfig{})
	assert.Error(t, err)

	_, err = NewOrderPublisher(context.Background(), models.NatsConfig{})
	assert.Error(t, err)
}

func TestLogOrderNotifier(t *testing.T) {
	err := LogOrderNotifier{}.NotifyAuctionSold(context.Background(), models.OrderNotification{
		Id:         "n-1",
		AuctionId:  "a-1",
		FinalPrice: money.MustParse("10"),
		Currency:   money.Currency,
	})
	assert.NoError(t, err)
}
