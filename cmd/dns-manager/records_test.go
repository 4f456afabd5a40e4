package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTTL(t *testing.T) {
	ttl, err := checkTTL(300)
	require.NoError(t, err)
	assert.Equal(t, uint32(300), ttl)
	ttl, err = checkTTL(math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxInt32), ttl)
	for _, value := range []uint{0, math.MaxInt32 + 1, math.MaxUint32} {
		_, err := checkTTL(value)
		assert.Error(t, err, "%d", value)
	}
}
