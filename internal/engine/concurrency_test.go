package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bidResult struct {
	bidder  string
	amount  money.Money
	outcome *models.BidOutcome
	err     error
}

func placeConcurrently(eng *Engine, auctionId string, amounts map[string]string) []bidResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []bidResult
		start   = make(chan struct{})
	)
	for bidder, amount := range amounts {
		wg.Add(1)
		go func(bidder string, amount money.Money) {
			defer wg.Done()
			<-start
			outcome, err := eng.PlaceBid(context.Background(), auctionId, bidder, amount)
			mu.Lock()
			results = append(results, bidResult{bidder: bidder, amount: amount, outcome: outcome, err: err})
			mu.Unlock()
		}(bidder, money.MustParse(amount))
	}
	close(start)
	wg.Wait()
	return results
}

func TestPlaceBid_ConcurrentPair(t *testing.T) {
	for run := 0; run < 10; run++ {
		t.Run(fmt.Sprintf("run %d", run), func(t *testing.T) {
			eng, db, _, _ := setup(t)
			ctx := context.Background()
			auction := createAuction(t, db, auctionSpec{})

			results := placeConcurrently(eng, auction.Id, map[string]string{
				"bidder-120": "120.00",
				"bidder-130": "130.00",
			})

			for _, r := range results {
				switch r.bidder {
				case "bidder-130":
					// 130 clears the minimum whichever order the commits land in
					require.NoError(t, r.err)
				case "bidder-120":
					if r.err != nil {
						assert.ErrorIs(t, r.err, ErrBidTooLow)
					}
				}
			}

			stored, err := db.GetAuction(ctx, auction.Id)
			require.NoError(t, err)
			assert.Equal(t, "130.00", stored.CurrentPrice.String())
			assert.Equal(t, "bidder-130", stored.WinnerId)
			assert.Equal(t, 1, countWinning(t, db, auction.Id))

			bids, err := db.FindBidsByAuction(ctx, auction.Id)
			require.NoError(t, err)
			assert.Equal(t, len(bids), stored.TotalBids)
		})
	}
}

func TestPlaceBid_ManyConcurrentBidders(t *testing.T) {
	eng, db, _, _ := setup(t)
	ctx := context.Background()
	auction := createAuction(t, db, auctionSpec{})

	amounts := make(map[string]string)
	for i := 1; i <= 25; i++ {
		amounts[fmt.Sprintf("bidder-%02d", i)] = fmt.Sprintf("%d.00", 100+i*10)
	}

	results := placeConcurrently(eng, auction.Id, amounts)

	accepted := 0
	highest := money.Zero
	for _, r := range results {
		if r.err != nil {
			assert.True(t, errors.Is(r.err, ErrBidTooLow) || errors.Is(r.err, ErrContention),
				"unexpected rejection for %s: %v", r.bidder, r.err)
			continue
		}
		accepted++
		if highest.LessThan(r.amount) {
			highest = r.amount
		}
	}

	stored, err := db.GetAuction(ctx, auction.Id)
	require.NoError(t, err)
	assert.Equal(t, accepted, stored.TotalBids)
	assert.True(t, stored.CurrentPrice.Equal(highest), "current %s, highest accepted %s", stored.CurrentPrice, highest)
	assert.Equal(t, 1, countWinning(t, db, auction.Id))

	// commit order equals bid date order, and every accepted bid cleared the previous one by the increment
	bids, err := db.FindBidsByAuction(ctx, auction.Id)
	require.NoError(t, err)
	require.Len(t, bids, accepted)
	for i := 1; i < len(bids); i++ {
		floor, err := bids[i].Amount.Add(auction.BidIncrement)
		require.NoError(t, err)
		assert.True(t, bids[i-1].Amount.GreaterThanOrEqual(floor))
	}
	assert.True(t, bids[0].IsWinning)
}

func TestPlaceBid_IndependentAuctionsDoNotBlock(t *testing.T) {
	db := openTestStore(t)
	eng := New(db, nil, NewManualClock(testStart), models.EngineConfig{LockTimeout: 50 * time.Millisecond})
	busy := createAuction(t, db, auctionSpec{})
	free := createAuction(t, db, auctionSpec{})

	release, err := eng.locks.acquire(context.Background(), busy.Id, 0)
	require.NoError(t, err)
	defer release()

	_, err = eng.PlaceBid(context.Background(), free.Id, "bidder-1", money.MustParse("110.00"))
	assert.NoError(t, err)
}
