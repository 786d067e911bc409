package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
)

func newCache(t *testing.T) (*TicketCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTicketCache(client, "test", time.Minute, nil), mr
}

var tech = domain.Identity{Email: "tech@example.vn", StaffCode: "NV01"}

func TestSetGet(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	q := Query{Type: domain.TicketTypeDelivery, Bucket: domain.BucketAssigned, Page: 1, PageSize: 20}
	page := domain.TicketPage{Items: []domain.TicketSummary{{ID: "DH1", Title: "Cty A"}}, Total: 1, Page: 1, PageSize: 20}

	_, ok := c.Get(ctx, tech, q)
	assert.False(t, ok)

	c.Set(ctx, tech, q, page)
	got, ok := c.Get(ctx, tech, q)
	require.True(t, ok)
	assert.Equal(t, "DH1", got.Items[0].ID)
	assert.Equal(t, 1, got.Total)

	other := q
	other.Bucket = domain.BucketCompleted
	_, ok = c.Get(ctx, tech, other)
	assert.False(t, ok, "entries are independent per tab")

	for _, key := range mr.Keys() {
		assert.False(t, strings.Contains(key, "tech@example.vn"), "key %q leaks email", key)
	}

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, tech, q)
	assert.False(t, ok)
}

func TestInvalidateIsPerIdentity(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	q := Query{Type: domain.TicketTypeMaintenance, Bucket: domain.BucketInProgress}
	someoneElse := domain.Identity{Email: "other@example.vn", StaffCode: "NV02"}

	c.Set(ctx, tech, q, domain.TicketPage{Total: 3})
	c.Set(ctx, someoneElse, q, domain.TicketPage{Total: 5})

	require.NoError(t, c.Invalidate(ctx, tech))
	_, ok := c.Get(ctx, tech, q)
	assert.False(t, ok)
	got, ok := c.Get(ctx, someoneElse, q)
	require.True(t, ok)
	assert.Equal(t, 5, got.Total)
}

func TestDisabledCache(t *testing.T) {
	var nilCache *TicketCache
	assert.False(t, nilCache.Enabled())
	_, ok := nilCache.Get(context.Background(), tech, Query{})
	assert.False(t, ok)
	assert.NoError(t, nilCache.Invalidate(context.Background(), tech))

	c := NewTicketCache(nil, "", time.Minute, nil)
	c.Set(context.Background(), tech, Query{}, domain.TicketPage{})
	assert.False(t, c.Enabled())
}
