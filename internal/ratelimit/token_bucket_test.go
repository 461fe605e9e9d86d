package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketTTLCoversTwoDrainCycles(t *testing.T) {
	// 5 tokens at 1/s drains in 5s; TTL holds state for twice that.
	assert.Equal(t, 10*time.Second, bucketTTL(1, 5))
	// Fractional drain rounds up before doubling.
	assert.Equal(t, 3*time.Second, bucketTTL(2, 3))
	// Never below one second, even for fast buckets.
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}

func TestCastScriptReplyValues(t *testing.T) {
	// Redis returns integers for whole values and strings stay zero.
	assert.EqualValues(t, 1, castToInt(int64(1)))
	assert.EqualValues(t, 3, castToInt(3))
	assert.EqualValues(t, 2, castToInt(2.9))
	assert.EqualValues(t, 0, castToInt("2"))

	assert.EqualValues(t, 2.5, castToFloat(2.5))
	assert.EqualValues(t, 4, castToFloat(int64(4)))
	assert.EqualValues(t, 0, castToFloat("4"))
}

func TestAllowRejectsBadArguments(t *testing.T) {
	var nilBucket *TokenBucket
	_, err := nilBucket.Allow(t.Context(), "k", 1, 1)
	require.Error(t, err)

	bucket := NewTokenBucket(nil)
	require.Nil(t, bucket)
}
