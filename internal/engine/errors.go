package engine

import (
	"errors"
	"fmt"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"
)

var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrAuctionNotOpen  = errors.New("auction is not open for bidding")
	ErrAuctionExpired  = errors.New("auction has expired")
	ErrSelfBid         = errors.New("seller cannot bid on their own auction")
	ErrBidTooLow       = errors.New("bid is below the minimum")
	ErrContention      = errors.New("auction is busy")
	ErrInvalidBid      = errors.New("invalid bid")
)

// AuctionNotOpenError reports the status that prevented the operation.
type AuctionNotOpenError struct {
	AuctionId string
	Status    models.AuctionStatus
}

func (e *AuctionNotOpenError) Error() string {
	return fmt.Sprintf("auction %s is %s: %s", e.AuctionId, e.Status, ErrAuctionNotOpen)
}

func (e *AuctionNotOpenError) Is(target error) bool {
	return target == ErrAuctionNotOpen
}

// BidTooLowError carries the minimum acceptable amount so callers can retry.
type BidTooLowError struct {
	AuctionId string
	Amount    money.Money
	Minimum   money.Money
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid %s on auction %s is below the minimum of %s", e.Amount, e.AuctionId, e.Minimum)
}

func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}

// ContentionError means the per-auction lock or the optimistic commit could
// not be won in time. Nothing was written; the caller may retry.
type ContentionError struct {
	AuctionId string
	Attempts  int
	Cause     error
}

func (e *ContentionError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("auction %s is busy after %d attempts: %v", e.AuctionId, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("auction %s is busy: %v", e.AuctionId, e.Cause)
}

func (e *ContentionError) Unwrap() error {
	return e.Cause
}

func (e *ContentionError) Is(target error) bool {
	return target == ErrContention
}

func (e *ContentionError) Retryable() bool {
	return true
}

// IsRetryable reports whether err is worth retrying unchanged.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}
