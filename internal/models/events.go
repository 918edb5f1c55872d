package models

import (
	"time"

	"auction-bidding-go/internal/money"
)

// Event is a domain event emitted after an auction change commits
type Event interface {
	Type() string
	AuctionRef() string
}

type BidPlaced struct {
	AuctionId    string      `json:"auction_id"`
	BidId        string      `json:"bid_id"`
	BidderId     string      `json:"bidder_id"`
	Amount       money.Money `json:"amount"`
	PreviousBest money.Money `json:"previous_price"`
	TotalBids    int         `json:"total_bids"`
	PlacedAt     time.Time   `json:"placed_at"`
}

func (e BidPlaced) Type() string       { return "auction.bid_placed" }
func (e BidPlaced) AuctionRef() string { return e.AuctionId }

type AuctionExtended struct {
	AuctionId      string    `json:"auction_id"`
	PreviousEnd    time.Time `json:"previous_end_date"`
	NewEnd         time.Time `json:"new_end_date"`
	ExtensionCount int       `json:"extension_count"`
}

func (e AuctionExtended) Type() string       { return "auction.extended" }
func (e AuctionExtended) AuctionRef() string { return e.AuctionId }

type AuctionActivated struct {
	AuctionId   string    `json:"auction_id"`
	ActivatedAt time.Time `json:"activated_at"`
}

func (e AuctionActivated) Type() string       { return "auction.activated" }
func (e AuctionActivated) AuctionRef() string { return e.AuctionId }

type AuctionClosed struct {
	AuctionId  string        `json:"auction_id"`
	Status     AuctionStatus `json:"status"`
	WinnerId   string        `json:"winner_id,omitempty"`
	FinalPrice money.Money   `json:"final_price"`
	TotalBids  int           `json:"total_bids"`
	ClosedAt   time.Time     `json:"closed_at"`
}

func (e AuctionClosed) Type() string       { return "auction.closed" }
func (e AuctionClosed) AuctionRef() string { return e.AuctionId }
