package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"auction-bidding-go/internal/models"
)

// Envelope is the wire shape of a published auction event.
type Envelope struct {
	Type      string       `json:"type"`
	AuctionId string       `json:"auction_id"`
	SentAt    time.Time    `json:"sent_at"`
	Data      models.Event `json:"data"`
}

func encodeEvent(event models.Event, now time.Time) ([]byte, error) {
	data, err := json.Marshal(Envelope{
		Type:      event.Type(),
		AuctionId: event.AuctionRef(),
		SentAt:    now.UTC(),
		Data:      event,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.Type(), err)
	}
	return data, nil
}

// EventChannel is the pub/sub channel live events for one auction go to.
func EventChannel(auctionId string) string {
	return "auction_events:" + auctionId
}

// SoldSubject is the JetStream subject a sale for auctionId is published on.
func SoldSubject(prefix, auctionId string) string {
	return fmt.Sprintf("%s.sold.%s", prefix, auctionId)
}
