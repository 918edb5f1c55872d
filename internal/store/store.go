package store

import (
	"context"
	"errors"
	"time"

	"auction-bidding-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("record not found")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrProductHasOpenAuction  = errors.New("product already has an open auction")
	// ErrBusy means the backend could not obtain its write lock in time.
	ErrBusy = errors.New("storage busy")
)

// AuctionRepository persists auction records. Every write is checked
// against the Version the caller read; a mismatch returns
// ErrConcurrentModification and on success the caller's Version is bumped.
type AuctionRepository interface {
	CreateAuction(ctx context.Context, auction *models.Auction) error
	GetAuction(ctx context.Context, auctionId string) (*models.Auction, error)
	SaveAuction(ctx context.Context, auction *models.Auction) error
	DeleteAuction(ctx context.Context, auctionId string) error
	ListAuctions(ctx context.Context, filter models.AuctionFilter, now time.Time) ([]models.Auction, error)

	// FindActive returns ACTIVE or EXTENDED auctions whose end date is after now.
	FindActive(ctx context.Context, now time.Time) ([]models.Auction, error)
	// FindExpiredOpen returns ACTIVE or EXTENDED auctions whose end date is at or before now.
	FindExpiredOpen(ctx context.Context, now time.Time) ([]models.Auction, error)
	// FindPendingDue returns PENDING auctions whose start date is at or before now.
	FindPendingDue(ctx context.Context, now time.Time) ([]models.Auction, error)
}

// BidRepository persists bids.
type BidRepository interface {
	// CommitBid atomically inserts bid as the winning bid, clears the
	// previous winner, and saves auction with the version check.
	CommitBid(ctx context.Context, auction *models.Auction, bid *models.Bid) error
	// FindWinningBid returns nil, nil when the auction has no bids.
	FindWinningBid(ctx context.Context, auctionId string) (*models.Bid, error)
	// FindBidsByAuction returns bids ordered by amount, highest first.
	FindBidsByAuction(ctx context.Context, auctionId string) ([]models.Bid, error)
}

// ProductCatalog answers who sells a product.
type ProductCatalog interface {
	SellerOf(ctx context.Context, productId string) (string, error)
	GetProduct(ctx context.Context, productId string) (*models.Product, error)
	UpsertProduct(ctx context.Context, product models.Product) (*models.Product, error)
}

// OrderOutbox records sold auctions for delivery to the order side.
type OrderOutbox interface {
	// CloseAuction saves the closed auction and, when notification is not
	// nil, queues it in the same transaction.
	CloseAuction(ctx context.Context, auction *models.Auction, notification *models.OrderNotification) error
	PendingOrderNotifications(ctx context.Context, limit int) ([]models.OrderNotification, error)
	MarkOrderNotificationDelivered(ctx context.Context, notificationId string, deliveredAt time.Time) error
	RecordOrderNotificationFailure(ctx context.Context, notificationId string) error
}

// Store is the full persistence surface one backend provides.
type Store interface {
	AuctionRepository
	BidRepository
	ProductCatalog
	OrderOutbox
	Ping(ctx context.Context) error
	Close()
}
