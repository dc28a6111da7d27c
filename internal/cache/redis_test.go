package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Without Init the package client is nil; every helper must degrade to a
// no-op so the API keeps serving from Postgres.
func TestNoClientDegradesGracefully(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, GetClient())
	assert.False(t, IsHealthy())

	data, ok := GetCached(ctx, "jobs:list:1:")
	assert.False(t, ok)
	assert.Nil(t, data)

	SetCached(ctx, "jobs:list:1:", []byte("[]"), time.Second)
	InvalidatePattern(ctx, "jobs:*")
	InvalidateJobCaches(ctx)
	InvalidateUnitEntryCaches(ctx)
	InvalidatePriceBookCaches(ctx)
	InvalidateUserCaches(ctx)
}
