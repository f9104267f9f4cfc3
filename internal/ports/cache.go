package ports

import (
	"context"
	"fmt"
	"time"
)

// Cache is a key-value store for usecases. A zero ttl keeps the value until overwritten.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// VettingStageKey is where the last known stage of a vetting is cached.
func VettingStageKey(vettingID uint64) string {
	return fmt.Sprintf("vetting:%d:stage", vettingID)
}
