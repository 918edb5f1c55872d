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

package models

import (
	"time"

	"auction-bidding-go/internal/money"
)

// BidOutcome is the result of an accepted bid
type BidOutcome struct {
	Bid          Bid           `json:"bid"`
	CurrentPrice money.Money   `json:"current_price"`
	Extended     bool          `json:"extended"`
	EndDate      time.Time     `json:"end_date"`
	Status       AuctionStatus `json:"status"`
}

// CreateAuctionRequest is what a seller submits to list a product
type CreateAuctionRequest struct {
	ProductId         string       `json:"product_id" yaml:"product_id"`
	SellerId          string       `json:"seller_id" yaml:"seller_id"`
	StartingPrice     money.Money  `json:"starting_price" yaml:"starting_price"`
	ReservePrice      *money.Money `json:"reserve_price,omitempty" yaml:"reserve_price,omitempty"`
	BidIncrement      money.Money  `json:"bid_increment" yaml:"bid_increment"`
	StartDate         time.Time    `json:"start_date" yaml:"start_date"`
	EndDate           time.Time    `json:"end_date" yaml:"end_date"`
	AutoExtendEnabled bool         `json:"auto_extend_enabled" yaml:"auto_extend_enabled"`
}

// RegisterProductRequest adds a product to the catalog. Id is generated
// when empty.
type RegisterProductRequest struct {
	Id       string `json:"id,omitempty" yaml:"id,omitempty"`
	SellerId string `json:"seller_id" yaml:"seller_id"`
	Title    string `json:"title" yaml:"title"`
}

// PlaceBidRequest is the body of a bid submission
type PlaceBidRequest struct {
	BidderId  string       `json:"bidder_id"`
	Amount    money.Money  `json:"amount"`
	MaxAmount *money.Money `json:"max_amount,omitempty"`
}

// NextMinimumBid is returned by the next-minimum-bid lookup
type NextMinimumBid struct {
	AuctionId string      `json:"auction_id"`
	Minimum   money.Money `json:"minimum_bid"`
	Currency  string      `json:"currency"`
}
