package cache

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

func newMemoryCache(t *testing.T, ttl time.Duration) *ReportCache {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	c, err := NewReportCache(domain.CacheConfig{
		Enabled:     true,
		DefaultTTL:  ttl,
		MemoryItems: 4,
	}, logger)
	require.NoError(t, err)
	return c
}

func TestReportCache_SetAndGet(t *testing.T) {
	c := newMemoryCache(t, time.Minute)
	ctx := context.Background()

	document := []byte("%PDF-1.4 rendered report")
	c.Set(ctx, "report:abc", document)

	got, ok := c.Get(ctx, "report:abc")
	assert.True(t, ok)
	assert.Equal(t, document, got)
}

func TestReportCache_Miss(t *testing.T) {
	c := newMemoryCache(t, time.Minute)

	_, ok := c.Get(context.Background(), "report:missing")
	assert.False(t, ok)
}

func TestReportCache_ExpiredEntry(t *testing.T) {
	c := newMemoryCache(t, time.Nanosecond)
	ctx := context.Background()

	c.Set(ctx, "report:short", []byte("doc"))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "report:short")
	assert.False(t, ok)
}

func TestReportCache_LRUEviction(t *testing.T) {
	c := newMemoryCache(t, time.Minute)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c", "d", "e"} {
		c.Set(ctx, "report:"+key, []byte(key))
	}

	// Capacity is 4, so the oldest entry is gone.
	_, ok := c.Get(ctx, "report:a")
	assert.False(t, ok)

	got, ok := c.Get(ctx, "report:e")
	assert.True(t, ok)
	assert.Equal(t, []byte("e"), got)
}

func TestReportCache_PingWithoutRedis(t *testing.T) {
	c := newMemoryCache(t, time.Minute)
	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}
