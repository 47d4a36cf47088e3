package aggregrator

import (
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

// Aggregate groups the samples of one polling tick by (ns_id, vnf_member_index).
//
// Groups keep the order in which their key first appears, the load is the sum of
// the group's sample values and the timestamp is that of the last sample seen.
// The descriptor of every result is left empty for the dispatcher to resolve.
func Aggregate(samples []types.Sample) []types.AggregateResult {
	results := make([]types.AggregateResult, 0)
	positions := make(map[types.GroupKey]int)

	for i := range samples {
		s := &samples[i]
		key := s.GetKey()

		pos, ok := positions[key]
		if !ok {
			pos = len(results)
			positions[key] = pos
			results = append(results, types.AggregateResult{
				NsId:           s.NsId,
				VnfMemberIndex: s.VnfMemberIndex,
			})
		}

		r := &results[pos]
		r.TotalLoad += s.Value
		r.VduCount++
		r.Timestamp = s.Timestamp
	}

	return results
}
