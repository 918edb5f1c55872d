package common

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintAuctions(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	auction := func(id string, status models.AuctionStatus) models.Auction {
		return models.Auction{
			Id:           id,
			ProductId:    "product-" + id,
			CurrentPrice: money.MustParse("100.00"),
			BidIncrement: money.MustParse("5.00"),
			StartDate:    start,
			EndDate:      start.Add(time.Hour),
			Status:       status,
		}
	}

	t.Run("Separates entries", func(t *testing.T) {
		out := captureStdout(t, func() {
			PrintAuctions([]models.Auction{auction("a1", models.StatusActive), auction("a2", models.StatusSold)})
		})

		assert.Equal(t, 1, strings.Count(out, "├"))
		assert.Contains(t, out, "a1")
		assert.Contains(t, out, "└  "+ColorCyan)
	})

	t.Run("Single entry has no separator", func(t *testing.T) {
		out := captureStdout(t, func() {
			PrintAuctions([]models.Auction{auction("a1", models.StatusPending)})
		})

		assert.NotContains(t, out, "├")
		assert.Contains(t, out, "reserve none")
	})
}
