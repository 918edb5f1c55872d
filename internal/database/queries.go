/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import "auction-bidding-go/internal/store"

const schema = `
	-- Products are owned by the catalog; only the seller is needed here
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auctions (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id),
		starting_price INTEGER NOT NULL CHECK (starting_price >= 0),
		reserve_price INTEGER,
		current_price INTEGER NOT NULL,
		bid_increment INTEGER NOT NULL CHECK (bid_increment > 0),
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		auto_extend_enabled BOOLEAN NOT NULL DEFAULT 1,
		reserve_price_met BOOLEAN NOT NULL DEFAULT 0,
		winner_id TEXT,
		total_bids INTEGER NOT NULL DEFAULT 0,
		extension_count INTEGER NOT NULL DEFAULT 0,
		closed_at TIMESTAMP,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		CHECK (reserve_price IS NULL OR reserve_price >= starting_price),
		CHECK (current_price >= starting_price)
	);

	-- One open auction per product
	CREATE UNIQUE INDEX IF NOT EXISTS idx_auctions_open_product
		ON auctions(product_id) WHERE status IN ('PENDING', 'ACTIVE', 'EXTENDED');
	CREATE INDEX IF NOT EXISTS idx_auctions_status_end ON auctions(status, end_date);
	CREATE INDEX IF NOT EXISTS idx_auctions_status_start ON auctions(status, start_date);

	CREATE TABLE IF NOT EXISTS bids (
		id TEXT PRIMARY KEY,
		auction_id TEXT NOT NULL REFERENCES auctions(id) ON DELETE CASCADE,
		bidder_id TEXT NOT NULL,
		amount INTEGER NOT NULL CHECK (amount > 0),
		bid_date TIMESTAMP NOT NULL,
		is_winning BOOLEAN NOT NULL DEFAULT 0,
		is_auto_bid BOOLEAN NOT NULL DEFAULT 0,
		max_amount INTEGER
	);

	-- At most one winning bid per auction
	CREATE UNIQUE INDEX IF NOT EXISTS idx_bids_winning ON bids(auction_id) WHERE is_winning = 1;
	CREATE INDEX IF NOT EXISTS idx_bids_auction_amount ON bids(auction_id, amount DESC);

	CREATE TABLE IF NOT EXISTS order_notifications (
		id TEXT PRIMARY KEY,
		auction_id TEXT NOT NULL UNIQUE,
		product_id TEXT NOT NULL,
		winner_id TEXT NOT NULL,
		final_price INTEGER NOT NULL,
		currency TEXT NOT NULL,
		sold_at TIMESTAMP NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		delivered_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_order_notifications_pending ON order_notifications(delivered_at, sold_at);
`

const (
	// Product queries
	queryUpsertProduct = `
		INSERT INTO products (id, seller_id, title, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET seller_id = excluded.seller_id, title = excluded.title`

	queryGetProduct = `
		SELECT id, seller_id, title, created_at
		FROM products
		WHERE id = ?`

	// Auction queries
	queryInsertAuction = `
		INSERT INTO auctions (` + store.AuctionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetAuction = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE id = ?`

	queryUpdateAuction = `
		UPDATE auctions
		SET current_price = ?, reserve_price_met = ?, winner_id = ?, total_bids = ?,
		    end_date = ?, status = ?, extension_count = ?, closed_at = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	queryDeleteAuction = `DELETE FROM auctions WHERE id = ?`

	queryListAuctions = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		ORDER BY created_at DESC`

	queryListClosedAuctions = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE status IN ('ENDED', 'SOLD', 'UNSOLD')
		ORDER BY closed_at DESC`

	queryListPendingAuctions = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE status = 'PENDING'
		ORDER BY start_date`

	queryFindActive = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE status IN ('ACTIVE', 'EXTENDED') AND end_date > ?
		ORDER BY end_date`

	queryFindExpiredOpen = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE status IN ('ACTIVE', 'EXTENDED') AND end_date <= ?
		ORDER BY end_date`

	queryFindPendingDue = `
		SELECT ` + store.AuctionColumns + `
		FROM auctions
		WHERE status = 'PENDING' AND start_date <= ?
		ORDER BY start_date`

	// Bid queries
	queryClearWinningBid = `
		UPDATE bids SET is_winning = 0
		WHERE auction_id = ? AND is_winning = 1`

	queryInsertBid = `
		INSERT INTO bids (` + store.BidColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetWinningBid = `
		SELECT ` + store.BidColumns + `
		FROM bids
		WHERE auction_id = ? AND is_winning = 1`

	queryGetBidsByAuction = `
		SELECT ` + store.BidColumns + `
		FROM bids
		WHERE auction_id = ?
		ORDER BY amount DESC, bid_date ASC`

	queryDeleteBidsByAuction = `DELETE FROM bids WHERE auction_id = ?`

	// Order outbox queries
	queryInsertNotification = `
		INSERT INTO order_notifications (` + store.NotificationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryPendingNotifications = `
		SELECT ` + store.NotificationColumns + `
		FROM order_notifications
		WHERE delivered_at IS NULL
		ORDER BY sold_at
		LIMIT ?`

	queryMarkNotificationDelivered = `
		UPDATE order_notifications SET delivered_at = ?, attempts = attempts + 1
		WHERE id = ? AND delivered_at IS NULL`

	queryRecordNotificationFailure = `
		UPDATE order_notifications SET attempts = attempts + 1
		WHERE id = ?`
)
