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

package aggregrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	utilnet "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/clientSdk/util/net"
	distributor "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/interfaces/distributor"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/metrics"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

// Aggregator is the polling loop: every granularity interval it pulls the cpu
// samples from the metrics store, aggregates them per VNF member and hands the
// results to the event processor without waiting for their delivery.
type Aggregator struct {
	source         SampleSource
	EventProcessor distributor.Interface
	interval       time.Duration
	recorder       *metrics.Recorder
}

// Initialize aggregator
//
func NewAggregator(source SampleSource, eventProcessor distributor.Interface, interval time.Duration, recorder *metrics.Recorder) *Aggregator {
	return &Aggregator{
		source:         source,
		EventProcessor: eventProcessor,
		interval:       interval,
		recorder:       recorder,
	}
}

// Run alternates between fetching and waiting until ctx is cancelled, which
// only happens on process termination. No tick failure stops the loop.
func (a *Aggregator) Run(ctx context.Context) error {
	klog.V(3).Infof("Starting loop pulling cpu samples every %v", a.interval)
	defer klog.V(3).Infof("Exiting loop pulling cpu samples")

	for {
		a.pollOnce(ctx)

		klog.V(3).Infof("Going to sleep for the next %v", a.interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.interval):
		}
	}
}

// pollOnce runs one fetching phase and returns the number of dispatched groups
func (a *Aggregator) pollOnce(ctx context.Context) int {
	tickId := uuid.New().String()

	start := time.Now()
	samples, err := a.source.Query(ctx)
	if err != nil {
		a.recorder.Tick(metrics.TickOutcome_Error, 0)
		klog.Warningf("[%s] Failed to query metrics store (%s), retrying in %v. error %v", tickId, utilnet.Classify(err), a.interval, err)
		return 0
	}

	if len(samples) == 0 {
		a.recorder.Tick(metrics.TickOutcome_Empty, 0)
		klog.Warningf("[%s] No results yet. Retrying in %v", tickId, a.interval)
		return 0
	}

	a.recorder.Tick(metrics.TickOutcome_Data, len(samples))
	klog.Infof("[%s] Got %d VDUs to get cpu load, query duration: %v", tickId, len(samples), time.Since(start))

	if klog.V(4).Enabled() {
		for _, s := range samples {
			klog.V(4).Infof("[%s] ns-id is %s. %s has %v recorded at %s", tickId, s.NsId, s.VduName, s.Value, types.FormatTimestamp(s.Timestamp))
		}
	}

	results := Aggregate(samples)
	for _, r := range results {
		klog.Infof("[%s] Total load for ns_id:%s, vnf_member_index:%d, num_of_vdus:%d is %v",
			tickId, r.NsId, r.VnfMemberIndex, r.VduCount, r.TotalLoad)
	}
	a.recorder.Groups(len(results))

	accepted := a.EventProcessor.Dispatch(ctx, tickId, results)
	if accepted != len(results) {
		klog.Warningf("[%s] Only %d of %d groups were accepted for delivery", tickId, accepted, len(results))
	}
	return accepted
}
