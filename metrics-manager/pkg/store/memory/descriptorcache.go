/*
Copyright 2019 Authors of OSM Autoscaler.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package memory

import (
	"sort"
	"sync"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/hash"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/interfaces/store"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

const DefaultShardNum = 16

type shard struct {
	mu      sync.RWMutex
	entries map[types.GroupKey]string
}

// DescriptorCache is a sharded map keyed by (ns_id, vnf_member_index).
//
// Concurrent delivery units may resolve the same key at the same time; both
// writers carry the same descriptor name, so the last write wins harmlessly.
// The per shard lock only keeps the map itself consistent.
type DescriptorCache struct {
	shards []*shard
}

func NewDescriptorCache(shardNum int) *DescriptorCache {
	if shardNum <= 0 {
		shardNum = DefaultShardNum
	}
	c := &DescriptorCache{shards: make([]*shard, shardNum)}
	for i := 0; i < shardNum; i++ {
		c.shards[i] = &shard{entries: make(map[types.GroupKey]string)}
	}
	return c
}

func (c *DescriptorCache) shardFor(key types.GroupKey) *shard {
	return c.shards[hash.HashGroupToShard(key.NsId, key.VnfMemberIndex, len(c.shards))]
}

func (c *DescriptorCache) Get(key types.GroupKey) (string, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.entries[key]
	return name, ok
}

func (c *DescriptorCache) Set(key types.GroupKey, descriptorName string) {
	s := c.shardFor(key)
	s.mu.Lock()
	s.entries[key] = descriptorName
	s.mu.Unlock()
}

func (c *DescriptorCache) Len() int {
	count := 0
	for _, s := range c.shards {
		s.mu.RLock()
		count += len(s.entries)
		s.mu.RUnlock()
	}
	return count
}

// Snapshot returns all entries ordered by ns_id then vnf_member_index
func (c *DescriptorCache) Snapshot() []store.DescriptorEntry {
	entries := make([]store.DescriptorEntry, 0)
	for _, s := range c.shards {
		s.mu.RLock()
		for k, v := range s.entries {
			entries = append(entries, store.DescriptorEntry{NsId: k.NsId, VnfMemberIndex: k.VnfMemberIndex, ScalingGroupDescriptor: v})
		}
		s.mu.RUnlock()
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].NsId != entries[j].NsId {
			return entries[i].NsId < entries[j].NsId
		}
		return entries[i].VnfMemberIndex < entries[j].VnfMemberIndex
	})
	return entries
}

var _ store.DescriptorCache = (*DescriptorCache)(nil)
