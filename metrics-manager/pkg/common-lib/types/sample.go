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

package types

import (
	"fmt"
	"math"
	"time"
)

// PredictorTimeLayout is the timestamp layout the predictor expects, in process local time
const PredictorTimeLayout = "2006-01-02 15:04:05"

// Sample is one cpu utilization observation of a single VDU as returned by the metrics store
type Sample struct {
	NsId           string
	VnfMemberIndex int
	VduName        string
	// load percentage
	Value float64
	// epoch seconds, fractional part kept as reported
	Timestamp float64
}

// GroupKey identifies the VNF member of a network service that a set of VDUs belongs to
//
type GroupKey struct {
	NsId           string
	VnfMemberIndex int
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s/%d", k.NsId, k.VnfMemberIndex)
}

func (s *Sample) GetKey() GroupKey {
	return GroupKey{NsId: s.NsId, VnfMemberIndex: s.VnfMemberIndex}
}

// AggregateResult is the load of one (ns_id, vnf_member_index) group for a single polling tick
type AggregateResult struct {
	NsId                   string
	VnfMemberIndex         int
	TotalLoad              float64
	VduCount               int
	ScalingGroupDescriptor string
	// timestamp of the last sample seen for the group
	Timestamp float64
}

func (r *AggregateResult) GetKey() GroupKey {
	return GroupKey{NsId: r.NsId, VnfMemberIndex: r.VnfMemberIndex}
}

// PredictorMetric is the body posted to the predictor ingestion endpoint
type PredictorMetric struct {
	NsId                   string  `json:"ns_id"`
	VnfMemberIndex         int     `json:"vnf_member_index"`
	ScalingGroupDescriptor string  `json:"scaling_group_descriptor"`
	VduCount               int     `json:"vdu_count"`
	CpuLoad                float64 `json:"cpu_load"`
	Timestamp              string  `json:"timestamp"`
}

func NewPredictorMetric(r *AggregateResult) *PredictorMetric {
	return &PredictorMetric{
		NsId:                   r.NsId,
		VnfMemberIndex:         r.VnfMemberIndex,
		ScalingGroupDescriptor: r.ScalingGroupDescriptor,
		VduCount:               r.VduCount,
		CpuLoad:                r.TotalLoad,
		Timestamp:              FormatTimestamp(r.Timestamp),
	}
}

// FormatTimestamp renders epoch seconds in local time using PredictorTimeLayout
func FormatTimestamp(epoch float64) string {
	sec, frac := math.Modf(epoch)
	return time.Unix(int64(sec), int64(frac*1e9)).Local().Format(PredictorTimeLayout)
}
