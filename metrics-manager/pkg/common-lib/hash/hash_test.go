package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashGroupToShard(t *testing.T) {
	for i := 0; i < 100; i++ {
		shard := HashGroupToShard("ns-1", i, 16)
		assert.True(t, shard >= 0 && shard < 16)
		assert.Equal(t, shard, HashGroupToShard("ns-1", i, 16), "shard must be stable")
	}

	assert.Equal(t, 0, HashGroupToShard("ns-1", 1, 1))
	assert.Equal(t, 0, HashGroupToShard("ns-1", 1, 0))
}

func TestHashGroupToShard_Spread(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 256; i++ {
		seen[HashGroupToShard("ns-"+string(rune('a'+i%26)), i, 8)] = true
	}
	assert.Greater(t, len(seen), 1)
}
