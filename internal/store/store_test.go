package store

import (
	"errors"
	"fmt"
	"testing"
)

// Compile-time checks that the interfaces are importable and usable.
func TestStoreInterfaceExists(t *testing.T) {
	var _ Store
	var _ AuctionRepository
	var _ BidRepository
	var _ ProductCatalog
	var _ OrderOutbox
}

func TestSentinelErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("auction update failed - %w", ErrConcurrentModification)
	if !errors.Is(wrapped, ErrConcurrentModification) {
		t.Errorf("Expected wrapped error to match ErrConcurrentModification")
	}
	if errors.Is(wrapped, ErrNotFound) {
		t.Errorf("Did not expect wrapped error to match ErrNotFound")
	}
}
