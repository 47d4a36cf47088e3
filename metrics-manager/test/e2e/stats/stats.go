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

package stats

import (
	"time"

	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/metrics"
)

// deliveries older than this are counted as late
const LateDeliveryThreshold = 5 * time.Second

type DeliveryStats struct {
	TestDuration           time.Duration
	NumberOfMetrics        int
	NumberOfGroups         int
	NumberOfLateDeliveries int
	// from the sample timestamp to the predictor receiving the metric
	DeliveryDelayPerMetric *metrics.LatencyMetrics
}

func NewDeliveryStats() *DeliveryStats {
	return &DeliveryStats{DeliveryDelayPerMetric: metrics.NewLatencyMetrics()}
}

func (ds *DeliveryStats) PrintStats() {
	klog.Infof("[Metrics][Delivery]Test lasted: %v. Metrics received: %v, distinct groups: %v, delivered later than %v: %v",
		ds.TestDuration, ds.NumberOfMetrics, ds.NumberOfGroups, LateDeliveryThreshold, ds.NumberOfLateDeliveries)
	summary := ds.DeliveryDelayPerMetric.GetSummary()
	klog.Infof("[Metrics][Delivery] perc50 %v, perc90 %v, perc99 %v. Total count %v",
		summary.P50, summary.P90, summary.P99, summary.TotalCount)
}

type DescriptorQueryStats struct {
	QueryInterval       time.Duration
	NumberOfDescriptors int
	NumberOfFailures    int
	QueryLatency        *metrics.LatencyMetrics
}

func NewDescriptorQueryStats() *DescriptorQueryStats {
	return &DescriptorQueryStats{QueryLatency: metrics.NewLatencyMetrics()}
}

func (qs *DescriptorQueryStats) PrintStats() {
	summary := qs.QueryLatency.GetSummary()
	klog.Infof("[Metrics][Descriptors]QueryInterval: %v, descriptors cached at last query: %v, failed queries: %v, perc50: %v, perc90: %v, perc99: %v. Total count %v",
		qs.QueryInterval, qs.NumberOfDescriptors, qs.NumberOfFailures, summary.P50, summary.P90, summary.P99, summary.TotalCount)
}
