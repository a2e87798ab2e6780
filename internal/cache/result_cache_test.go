package cache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

func TestResultCache_SetGet(t *testing.T) {
	c := NewResultCache(time.Minute)
	require.True(t, c.Enabled())

	analysis := domain.Analysis{
		ID:              uuid.New(),
		Provider:        "mock",
		ImageHash:       "abc",
		ConfidenceScore: 72.5,
	}

	key := Key("mock", "abc")
	assert.Equal(t, "mock:abc", key)

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, analysis)

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, analysis, got)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Get(Key("deepface", "abc"))
	assert.False(t, ok, "keys are scoped per provider")
}

func TestResultCache_Expires(t *testing.T) {
	c := NewResultCache(20 * time.Millisecond)

	c.Set("k", domain.Analysis{Provider: "mock"})
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestResultCache_Flush(t *testing.T) {
	c := NewResultCache(time.Minute)
	c.Set("a", domain.Analysis{})
	c.Set("b", domain.Analysis{})
	require.Equal(t, 2, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
}

func TestResultCache_Disabled(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		c := NewResultCache(ttl)
		assert.False(t, c.Enabled())

		c.Set("k", domain.Analysis{Provider: "mock"})
		_, ok := c.Get("k")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
		c.Flush()
	}
}
