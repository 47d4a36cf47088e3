package store

import (
	"context"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

const (
	Preserve_Descriptor_KeyPrefix = "ScalingGroupDescriptor"
)

// DescriptorCache is the in-process lookup of scaling group descriptor names.
// An entry is never evicted once set: a running network service keeps its descriptors.
type DescriptorCache interface {
	Get(key types.GroupKey) (string, bool)
	Set(key types.GroupKey, descriptorName string)
}

// DescriptorStore is an optional out-of-process tier shared by collector restarts
type DescriptorStore interface {
	GetDescriptor(ctx context.Context, key types.GroupKey) (string, bool, error)
	PersistDescriptor(ctx context.Context, key types.GroupKey, descriptorName string) error
}

// DescriptorEntry is one cache entry as exposed by the status endpoint
type DescriptorEntry struct {
	NsId                   string `json:"ns_id"`
	VnfMemberIndex         int    `json:"vnf_member_index"`
	ScalingGroupDescriptor string `json:"scaling_group_descriptor"`
}
