package store

import (
	"database/sql"
	"fmt"
	"time"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"
)

// AuctionColumns lists the auctions table columns in AuctionRow scan order.
const AuctionColumns = `id, product_id, starting_price, reserve_price, current_price, bid_increment,
		start_date, end_date, status, auto_extend_enabled, reserve_price_met, winner_id,
		total_bids, extension_count, closed_at, version, created_at, updated_at`

// BidColumns lists the bids table columns in BidRow scan order.
const BidColumns = `id, auction_id, bidder_id, amount, bid_date, is_winning, is_auto_bid, max_amount`

// NotificationColumns lists the order_notifications columns in NotificationRow scan order.
const NotificationColumns = `id, auction_id, product_id, winner_id, final_price, currency, sold_at, attempts, delivered_at`

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// AuctionRow is the column-level shape of an auction. Amounts are minor units.
type AuctionRow struct {
	Id                string
	ProductId         string
	StartingPrice     int64
	ReservePrice      sql.NullInt64
	CurrentPrice      int64
	BidIncrement      int64
	StartDate         time.Time
	EndDate           time.Time
	Status            string
	AutoExtendEnabled bool
	ReservePriceMet   bool
	WinnerId          sql.NullString
	TotalBids         int
	ExtensionCount    int
	ClosedAt          sql.NullTime
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ScanAuction(s Scanner) (*models.Auction, error) {
	var r AuctionRow
	err := s.Scan(&r.Id, &r.ProductId, &r.StartingPrice, &r.ReservePrice, &r.CurrentPrice, &r.BidIncrement,
		&r.StartDate, &r.EndDate, &r.Status, &r.AutoExtendEnabled, &r.ReservePriceMet, &r.WinnerId,
		&r.TotalBids, &r.ExtensionCount, &r.ClosedAt, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r.ToAuction()
}

func (r AuctionRow) ToAuction() (*models.Auction, error) {
	a := &models.Auction{
		Id:                r.Id,
		ProductId:         r.ProductId,
		StartDate:         r.StartDate.UTC(),
		EndDate:           r.EndDate.UTC(),
		Status:            models.AuctionStatus(r.Status),
		AutoExtendEnabled: r.AutoExtendEnabled,
		ReservePriceMet:   r.ReservePriceMet,
		WinnerId:          r.WinnerId.String,
		TotalBids:         r.TotalBids,
		ExtensionCount:    r.ExtensionCount,
		Version:           r.Version,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
	if !a.Status.Valid() {
		return nil, fmt.Errorf("auction %s has unknown status %q", r.Id, r.Status)
	}

	var err error
	if a.StartingPrice, err = money.FromMinorUnits(r.StartingPrice); err != nil {
		return nil, fmt.Errorf("auction %s starting_price: %w", r.Id, err)
	}
	if a.CurrentPrice, err = money.FromMinorUnits(r.CurrentPrice); err != nil {
		return nil, fmt.Errorf("auction %s current_price: %w", r.Id, err)
	}
	if a.BidIncrement, err = money.FromMinorUnits(r.BidIncrement); err != nil {
		return nil, fmt.Errorf("auction %s bid_increment: %w", r.Id, err)
	}
	if r.ReservePrice.Valid {
		reserve, err := money.FromMinorUnits(r.ReservePrice.Int64)
		if err != nil {
			return nil, fmt.Errorf("auction %s reserve_price: %w", r.Id, err)
		}
		a.ReservePrice = &reserve
	}
	if r.ClosedAt.Valid {
		closedAt := r.ClosedAt.Time.UTC()
		a.ClosedAt = &closedAt
	}
	return a, nil
}

// NullableMinorUnits converts an optional amount for a nullable column.
func NullableMinorUnits(m *money.Money) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: m.MinorUnits(), Valid: true}
}

func NullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func NullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func ScanBid(s Scanner) (*models.Bid, error) {
	var (
		b         models.Bid
		amount    int64
		maxAmount sql.NullInt64
	)
	if err := s.Scan(&b.Id, &b.AuctionId, &b.BidderId, &amount, &b.BidDate, &b.IsWinning, &b.IsAutoBid, &maxAmount); err != nil {
		return nil, err
	}
	var err error
	if b.Amount, err = money.FromMinorUnits(amount); err != nil {
		return nil, fmt.Errorf("bid %s amount: %w", b.Id, err)
	}
	if maxAmount.Valid {
		m, err := money.FromMinorUnits(maxAmount.Int64)
		if err != nil {
			return nil, fmt.Errorf("bid %s max_amount: %w", b.Id, err)
		}
		b.MaxAmount = &m
	}
	b.BidDate = b.BidDate.UTC()
	return &b, nil
}

func ScanNotification(s Scanner) (*models.OrderNotification, error) {
	var (
		n           models.OrderNotification
		finalPrice  int64
		deliveredAt sql.NullTime
	)
	if err := s.Scan(&n.Id, &n.AuctionId, &n.ProductId, &n.WinnerId, &finalPrice, &n.Currency, &n.SoldAt, &n.Attempts, &deliveredAt); err != nil {
		return nil, err
	}
	var err error
	if n.FinalPrice, err = money.FromMinorUnits(finalPrice); err != nil {
		return nil, fmt.Errorf("notification %s final_price: %w", n.Id, err)
	}
	n.SoldAt = n.SoldAt.UTC()
	if deliveredAt.Valid {
		t := deliveredAt.Time.UTC()
		n.DeliveredAt = &t
	}
	return &n, nil
}
