package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"auction-bidding-go/internal/database"
	"auction-bidding-go/internal/engine"
	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	mu        sync.Mutex
	fail      bool
	delivered []models.OrderNotification
}

func (n *fakeNotifier) NotifyAuctionSold(_ context.Context, notification models.OrderNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("order service unavailable")
	}
	n.delivered = append(n.delivered, notification)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.delivered)
}

type fixture struct {
	db        *database.Service
	engine    *engine.Engine
	clock     *engine.ManualClock
	notifier  *fakeNotifier
	scheduler *Scheduler
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "scheduler.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		PingTimeout:  5 * time.Second,
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	clock := engine.NewManualClock(testNow)
	eng := engine.New(db, nil, clock, models.EngineConfig{LockTimeout: 5 * time.Second})
	notifier := &fakeNotifier{}
	return &fixture{
		db:       db,
		engine:   eng,
		clock:    clock,
		notifier: notifier,
		scheduler: New(Config{
			Engine:         eng,
			Store:          db,
			Notifier:       notifier,
			TickInterval:   10 * time.Millisecond,
			OutboxInterval: 10 * time.Millisecond,
		}),
	}
}

func (f *fixture) createAuction(t *testing.T, status models.AuctionStatus, start, end time.Time, reserve string) *models.Auction {
	t.Helper()
	ctx := context.Background()
	productId := uuid.New().String()
	_, err := f.db.UpsertProduct(ctx, models.Product{Id: productId, SellerId: "seller-1", Title: "Lot"})
	require.NoError(t, err)

	auction := &models.Auction{
		Id:                uuid.New().String(),
		ProductId:         productId,
		StartingPrice:     money.MustParse("50.00"),
		CurrentPrice:      money.MustParse("50.00"),
		BidIncrement:      money.MustParse("5.00"),
		StartDate:         start,
		EndDate:           end,
		Status:            status,
		AutoExtendEnabled: true,
	}
	if reserve != "" {
		r := money.MustParse(reserve)
		auction.ReservePrice = &r
	}
	require.NoError(t, f.db.CreateAuction(ctx, auction))
	return auction
}

func TestTick(t *testing.T) {
	t.Run("Activates due auctions", func(t *testing.T) {
		f := setup(t)
		ctx := context.Background()
		due := f.createAuction(t, models.StatusPending, testNow.Add(-time.Minute), testNow.Add(time.Hour), "")
		later := f.createAuction(t, models.StatusPending, testNow.Add(time.Hour), testNow.Add(2*time.Hour), "")

		result := f.scheduler.Tick(ctx)

		assert.Equal(t, TickResult{Activated: 1}, result)
		got, err := f.db.GetAuction(ctx, due.Id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, got.Status)
		got, err = f.db.GetAuction(ctx, later.Id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status)
	})

	t.Run("Closes expired auctions", func(t *testing.T) {
		f := setup(t)
		ctx := context.Background()
		start, end := testNow.Add(-time.Hour), testNow.Add(time.Hour)
		sold := f.createAuction(t, models.StatusActive, start, end, "60.00")
		reserveMissed := f.createAuction(t, models.StatusActive, start, end, "500.00")
		noBids := f.createAuction(t, models.StatusActive, start, end, "")

		_, err := f.engine.PlaceBid(ctx, sold.Id, "bidder-1", money.MustParse("60.00"))
		require.NoError(t, err)
		_, err = f.engine.PlaceBid(ctx, reserveMissed.Id, "bidder-2", money.MustParse("60.00"))
		require.NoError(t, err)

		f.clock.Set(end)
		result := f.scheduler.Tick(ctx)

		assert.Equal(t, TickResult{Sold: 1, Unsold: 2}, result)
		for id, want := range map[string]models.AuctionStatus{
			sold.Id:          models.StatusSold,
			reserveMissed.Id: models.StatusUnsold,
			noBids.Id:        models.StatusUnsold,
		} {
			got, err := f.db.GetAuction(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, want, got.Status, "auction %s", id)
		}

		second := f.scheduler.Tick(ctx)
		assert.Equal(t, TickResult{}, second)
	})

	t.Run("Activates and closes in one pass", func(t *testing.T) {
		f := setup(t)
		ctx := context.Background()
		auction := f.createAuction(t, models.StatusPending, testNow.Add(-2*time.Hour), testNow.Add(-time.Hour), "")

		result := f.scheduler.Tick(ctx)

		assert.Equal(t, TickResult{Activated: 1, Unsold: 1}, result)
		got, err := f.db.GetAuction(ctx, auction.Id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusUnsold, got.Status)
	})
}

func TestRelayOrderNotifications(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	auction := f.createAuction(t, models.StatusActive, testNow.Add(-time.Hour), testNow.Add(time.Hour), "")
	_, err := f.engine.PlaceBid(ctx, auction.Id, "bidder-1", money.MustParse("75.00"))
	require.NoError(t, err)
	f.clock.Set(auction.EndDate)
	f.scheduler.Tick(ctx)

	t.Run("Failure keeps notification queued", func(t *testing.T) {
		f.notifier.fail = true
		assert.Equal(t, 0, f.scheduler.RelayOrderNotifications(ctx))

		pending, err := f.db.PendingOrderNotifications(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, 1, pending[0].Attempts)
	})

	t.Run("Success marks delivered", func(t *testing.T) {
		f.notifier.fail = false
		assert.Equal(t, 1, f.scheduler.RelayOrderNotifications(ctx))
		require.Equal(t, 1, f.notifier.count())

		n := f.notifier.delivered[0]
		assert.Equal(t, auction.Id, n.AuctionId)
		assert.Equal(t, auction.ProductId, n.ProductId)
		assert.Equal(t, "bidder-1", n.WinnerId)
		assert.Equal(t, "75.00", n.FinalPrice.String())
		assert.Equal(t, money.Currency, n.Currency)

		pending, err := f.db.PendingOrderNotifications(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
		assert.Equal(t, 0, f.scheduler.RelayOrderNotifications(ctx))
	})
}

func TestStartStop(t *testing.T) {
	f := setup(t)
	auction := f.createAuction(t, models.StatusActive, testNow.Add(-time.Hour), testNow.Add(time.Hour), "")
	_, err := f.engine.PlaceBid(context.Background(), auction.Id, "bidder-1", money.MustParse("55.00"))
	require.NoError(t, err)
	f.clock.Set(auction.EndDate)

	f.scheduler.Start(context.Background())
	require.Eventually(t, func() bool {
		return f.notifier.count() == 1
	}, 5*time.Second, 10*time.Millisecond)
	f.scheduler.Stop()

	got, err := f.db.GetAuction(context.Background(), auction.Id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSold, got.Status)
}

func TestStopIsIdempotent(t *testing.T) {
	t.Run("Never started", func(t *testing.T) {
		f := setup(t)
		done := make(chan struct{})
		go func() {
			f.scheduler.Stop()
			f.scheduler.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Stop blocked on a scheduler that was never started")
		}

		// a stopped scheduler does not start again
		f.scheduler.Start(context.Background())
		f.scheduler.Stop()
	})

	t.Run("Started then stopped twice", func(t *testing.T) {
		f := setup(t)
		f.scheduler.Start(context.Background())
		f.scheduler.Start(context.Background())

		done := make(chan struct{})
		go func() {
			f.scheduler.Stop()
			f.scheduler.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Stop did not return")
		}
	})
}
