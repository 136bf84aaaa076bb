package health

import (
	"context"

	"github.com/felixgeelhaar/authdemo/internal/store"
)

// StoreChecker verifies the session slot can be read.
type StoreChecker struct {
	slot store.Store
}

// NewStoreChecker creates a StoreChecker.
func NewStoreChecker(slot store.Store) *StoreChecker {
	return &StoreChecker{slot: slot}
}

// Name returns "store".
func (c *StoreChecker) Name() string {
	return "store"
}

// Check reads the slot without interpreting it.
func (c *StoreChecker) Check(ctx context.Context) *Result {
	data, err := c.slot.Read(ctx)
	if err != nil {
		return Unhealthy("session store unreadable").WithDetail("error", err.Error())
	}
	if data == nil {
		return Healthy("session store empty").WithDetail("bytes", 0)
	}
	return Healthy("session stored").WithDetail("bytes", len(data))
}
