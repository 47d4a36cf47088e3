package memory

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

func TestDescriptorCache_GetSet(t *testing.T) {
	c := NewDescriptorCache(4)

	key := types.GroupKey{NsId: "ns-1", VnfMemberIndex: 1}
	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, "scale_cirros_vnf")
	name, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "scale_cirros_vnf", name)

	// same ns, other member index is a different entry
	_, ok = c.Get(types.GroupKey{NsId: "ns-1", VnfMemberIndex: 2})
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestDescriptorCache_DefaultShards(t *testing.T) {
	c := NewDescriptorCache(0)
	assert.Equal(t, DefaultShardNum, len(c.shards))
}

func TestDescriptorCache_Snapshot(t *testing.T) {
	c := NewDescriptorCache(8)
	c.Set(types.GroupKey{NsId: "ns-b", VnfMemberIndex: 1}, "sg-b1")
	c.Set(types.GroupKey{NsId: "ns-a", VnfMemberIndex: 2}, "sg-a2")
	c.Set(types.GroupKey{NsId: "ns-a", VnfMemberIndex: 1}, "sg-a1")

	entries := c.Snapshot()
	assert.Equal(t, 3, len(entries))
	assert.Equal(t, "sg-a1", entries[0].ScalingGroupDescriptor)
	assert.Equal(t, "sg-a2", entries[1].ScalingGroupDescriptor)
	assert.Equal(t, "sg-b1", entries[2].ScalingGroupDescriptor)
}

func TestDescriptorCache_ConcurrentAccess(t *testing.T) {
	c := NewDescriptorCache(DefaultShardNum)

	var wg sync.WaitGroup
	for w := 0; w < 20; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := types.GroupKey{NsId: "ns-" + strconv.Itoa(i%10), VnfMemberIndex: i % 20}
				c.Set(key, "sg-"+key.String())
				name, ok := c.Get(key)
				assert.True(t, ok)
				assert.Equal(t, "sg-"+key.String(), name)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, c.Len())
}
