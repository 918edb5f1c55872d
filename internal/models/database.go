package models

import (
	"time"

	"auction-bidding-go/internal/money"
)

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	StatusPending  AuctionStatus = "PENDING"
	StatusActive   AuctionStatus = "ACTIVE"
	StatusExtended AuctionStatus = "EXTENDED"
	StatusEnded    AuctionStatus = "ENDED"
	StatusSold     AuctionStatus = "SOLD"
	StatusUnsold   AuctionStatus = "UNSOLD"
)

// AcceptsBids reports whether bids may be placed in this state.
func (s AuctionStatus) AcceptsBids() bool {
	return s == StatusActive || s == StatusExtended
}

// IsOpen reports whether the auction has not reached a terminal state yet.
func (s AuctionStatus) IsOpen() bool {
	return s == StatusPending || s == StatusActive || s == StatusExtended
}

// IsClosed reports whether the auction is SOLD or UNSOLD.
func (s AuctionStatus) IsClosed() bool {
	return s == StatusSold || s == StatusUnsold
}

func (s AuctionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusExtended, StatusEnded, StatusSold, StatusUnsold:
		return true
	}
	return false
}

// Product is the slice of the catalog this service needs: who sells it
type Product struct {
	Id        string    `db:"id" json:"id"`
	SellerId  string    `db:"seller_id" json:"seller_id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Auction represents a timed auction for one product
type Auction struct {
	Id                string        `db:"id" json:"id"`
	ProductId         string        `db:"product_id" json:"product_id"`
	StartingPrice     money.Money   `db:"starting_price" json:"starting_price"`
	ReservePrice      *money.Money  `db:"reserve_price" json:"reserve_price,omitempty"`
	CurrentPrice      money.Money   `db:"current_price" json:"current_price"`
	BidIncrement      money.Money   `db:"bid_increment" json:"bid_increment"`
	StartDate         time.Time     `db:"start_date" json:"start_date"`
	EndDate           time.Time     `db:"end_date" json:"end_date"`
	Status            AuctionStatus `db:"status" json:"status"`
	AutoExtendEnabled bool          `db:"auto_extend_enabled" json:"auto_extend_enabled"`
	ReservePriceMet   bool          `db:"reserve_price_met" json:"reserve_price_met"`
	WinnerId          string        `db:"winner_id" json:"winner_id,omitempty"`
	TotalBids         int           `db:"total_bids" json:"total_bids"`
	ExtensionCount    int           `db:"extension_count" json:"extension_count"`
	ClosedAt          *time.Time    `db:"closed_at" json:"closed_at,omitempty"`
	Version           int64         `db:"version" json:"version"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// NextMinimumBid is the smallest amount the next bid must reach. It fails
// only when the sum is not representable.
func (a *Auction) NextMinimumBid() (money.Money, error) {
	return a.CurrentPrice.Add(a.BidIncrement)
}

// MeetsReserve reports whether amount satisfies the reserve price. An
// auction without a reserve is satisfied by any accepted bid.
func (a *Auction) MeetsReserve(amount money.Money) bool {
	if a.ReservePrice == nil {
		return true
	}
	return amount.GreaterThanOrEqual(*a.ReservePrice)
}

// Bid represents one accepted bid
type Bid struct {
	Id        string       `db:"id" json:"id"`
	AuctionId string       `db:"auction_id" json:"auction_id"`
	BidderId  string       `db:"bidder_id" json:"bidder_id"`
	Amount    money.Money  `db:"amount" json:"amount"`
	BidDate   time.Time    `db:"bid_date" json:"bid_date"`
	IsWinning bool         `db:"is_winning" json:"is_winning"`
	IsAutoBid bool         `db:"is_auto_bid" json:"is_auto_bid"`
	MaxAmount *money.Money `db:"max_amount" json:"max_amount,omitempty"`
}

// OrderNotification is an outbox row telling the order side an auction sold
type OrderNotification struct {
	Id          string      `db:"id" json:"id"`
	AuctionId   string      `db:"auction_id" json:"auction_id"`
	ProductId   string      `db:"product_id" json:"product_id"`
	WinnerId    string      `db:"winner_id" json:"winner_id"`
	FinalPrice  money.Money `db:"final_price" json:"final_price"`
	Currency    string      `db:"currency" json:"currency"`
	SoldAt      time.Time   `db:"sold_at" json:"sold_at"`
	Attempts    int         `db:"attempts" json:"-"`
	DeliveredAt *time.Time  `db:"delivered_at" json:"-"`
}

// AuctionFilter selects which auctions a listing returns
type AuctionFilter string

const (
	FilterAll     AuctionFilter = "all"
	FilterActive  AuctionFilter = "active"
	FilterClosed  AuctionFilter = "closed"
	FilterPending AuctionFilter = "pending"
)

func ParseAuctionFilter(s string) (AuctionFilter, bool) {
	switch AuctionFilter(s) {
	case "", FilterAll:
		return FilterAll, true
	case FilterActive, FilterClosed, FilterPending:
		return AuctionFilter(s), true
	}
	return "", false
}
