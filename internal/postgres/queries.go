package postgres

import "auction-bidding-go/internal/store"

const schema = `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auctions (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id),
		starting_price BIGINT NOT NULL CHECK (starting_price >= 0),
		reserve_price BIGINT,
		current_price BIGINT NOT NULL,
		bid_increment BIGINT NOT NULL CHECK (bid_increment > 0),
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		auto_extend_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		reserve_price_met BOOLEAN NOT NULL DEFAULT FALSE,
		winner_id TEXT,
		total_bids INTEGER NOT NULL DEFAULT 0,
		extension_count INTEGER NOT NULL DEFAULT 0,
		closed_at TIMESTAMPTZ,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (reserve_price IS NULL OR reserve_price >= starting_price),
		CHECK (current_price >= starting_price)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_auctions_open_product
		ON auctions(product_id) WHERE status IN ('PENDING', 'ACTIVE', 'EXTENDED');
	CREATE INDEX IF NOT EXISTS idx_auctions_status_end ON auctions(status, end_date);
	CREATE INDEX IF NOT EXISTS idx_auctions_status_start ON auctions(status, start_date);

	CREATE TABLE IF NOT EXISTS bids (
		id TEXT PRIMARY KEY,
		auction_id TEXT NOT NULL REFERENCES auctions(id) ON DELETE CASCADE,
		bidder_id TEXT NOT NULL,
		amount BIGINT NOT NULL CHECK (amount > 0),
		bid_date TIMESTAMPTZ NOT NULL,
		is_winning BOOLEAN NOT NULL DEFAULT FALSE,
		is_auto_bid BOOLEAN NOT NULL DEFAULT FALSE,
		max_amount BIGINT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_bids_winning ON bids(auction_id) WHERE is_winning;
	CREATE INDEX IF NOT EXISTS idx_bids_auction_amount ON bids(auction_id, amount DESC);

	CREATE TABLE IF NOT EXISTS order_notifications (
		id TEXT PRIMARY KEY,
		auction_id TEXT NOT NULL UNIQUE,
		product_id TEXT NOT NULL,
		winner_id TEXT NOT NULL,
		final_price BIGINT NOT NULL,
		currency TEXT NOT NULL,
		sold_at TIMESTAMPTZ NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		delivered_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_order_notifications_pending
		ON order_notifications(sold_at) WHERE delivered_at IS NULL;
`

const (
	queryUpsertProduct = `
		INSERT INTO products (id, seller_id, title, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET seller_id = EXCLUDED.seller_id, title = EXCLUDED.title
		RETURNING id, seller_id, title, created_at`

	queryGetProduct = `
		SELECT id, seller_id, title, created_at
		FROM products
		WHERE id = $1`

	queryInsertAuction = `
		INSERT INTO auctions (` + store.AuctionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	queryGetAuction = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE id = $1`

	queryLockAuction = `SELECT version FROM auctions WHERE id = $1 FOR UPDATE`

	queryUpdateAuction = `
		UPDATE auctions
		SET current_price = $1, reserve_price_met = $2, winner_id = $3, total_bids = $4,
		    end_date = $5, status = $6, extension_count = $7, closed_at = $8,
		    version = version + 1, updated_at = $9
		WHERE id = $10 AND version = $11`

	queryDeleteAuction = `DELETE FROM auctions WHERE id = $1`

	queryListAuctions = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		ORDER BY created_at DESC`

	queryListClosedAuctions = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE status IN ('ENDED', 'SOLD', 'UNSOLD')
		ORDER BY closed_at DESC NULLS LAST`

	queryListPendingAuctions = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE status = 'PENDING'
		ORDER BY start_date`

	queryFindActive = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE status IN ('ACTIVE', 'EXTENDED') AND end_date > $1
		ORDER BY end_date`

	queryFindExpiredOpen = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE status IN ('ACTIVE', 'EXTENDED') AND end_date <= $1
		ORDER BY end_date`

	queryFindPendingDue = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE status = 'PENDING' AND start_date <= $1
		ORDER BY start_date`

	queryClearWinningBid = `
		UPDATE bids SET is_winning = FALSE
		WHERE auction_id = $1 AND is_winning`

	queryInsertBid = `
		INSERT INTO bids (` + store.BidColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	queryGetWinningBid = `
		SELECT ` + store.BidColumns + `
		FROM bids
		WHERE auction_id = $1 AND is_winning`

	queryGetBidsByAuction = `
		SELECT ` + store.BidColumns + `
		FROM bids
		WHERE auction_id = $1
		ORDER BY amount DESC, bid_date ASC`

	queryInsertNotification = `
		INSERT INTO order_notifications (` + store.NotificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	queryPendingNotifications = `
		SELECT ` + store.NotificationColumns + `
		FROM order_notifications
		WHERE delivered_at IS NULL
		ORDER BY sold_at
		LIMIT $1`

	queryMarkNotificationDelivered = `
		UPDATE order_notifications SET delivered_at = $1, attempts = attempts + 1
		WHERE id = $2 AND delivered_at IS NULL`

	queryRecordNotificationFailure = `
		UPDATE order_notifications SET attempts = attempts + 1
		WHERE id = $1`
)
