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

package metrics

import (
	"math"
	"sort"
	"sync"
	"time"

	"k8s.io/klog/v2"
)

type LatencyReport struct {
	TotalCount int
	P50        time.Duration
	P90        time.Duration
	P99        time.Duration
}

// LatencyMetrics keeps every observed latency of one checkpoint until Reset
type LatencyMetrics struct {
	mu        sync.Mutex
	latencies []time.Duration
}

func NewLatencyMetrics() *LatencyMetrics {
	return &LatencyMetrics{
		latencies: make([]time.Duration, 0),
	}
}

func (m *LatencyMetrics) AddLatencyMetrics(newLatency time.Duration) {
	m.mu.Lock()
	m.latencies = append(m.latencies, newLatency)
	m.mu.Unlock()
}

func (m *LatencyMetrics) Reset() {
	m.mu.Lock()
	m.latencies = m.latencies[:0]
	m.mu.Unlock()
}

func (m *LatencyMetrics) GetSummary() *LatencyReport {
	m.mu.Lock()
	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	m.mu.Unlock()

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	count := len(sorted)
	if count == 0 {
		return &LatencyReport{}
	}
	return &LatencyReport{
		TotalCount: count,
		P50:        sorted[int(math.Ceil(float64(count*50)/100))-1],
		P90:        sorted[int(math.Ceil(float64(count*90)/100))-1],
		P99:        sorted[int(math.Ceil(float64(count*99)/100))-1],
	}
}

// DeliveryLatencies holds one LatencyMetrics per delivery checkpoint
type DeliveryLatencies struct {
	checkpoints [Len_DeliveryCheckpoint]*LatencyMetrics
}

func NewDeliveryLatencies() *DeliveryLatencies {
	d := &DeliveryLatencies{}
	for i := range d.checkpoints {
		d.checkpoints[i] = NewLatencyMetrics()
	}
	return d
}

func (d *DeliveryLatencies) Add(checkpoint DeliveryCheckpoint, latency time.Duration) {
	if d == nil || checkpoint < 0 || checkpoint >= Len_DeliveryCheckpoint {
		return
	}
	d.checkpoints[checkpoint].AddLatencyMetrics(latency)
}

func (d *DeliveryLatencies) Summary(checkpoint DeliveryCheckpoint) *LatencyReport {
	return d.checkpoints[checkpoint].GetSummary()
}

// PrintLatencyReport logs the percentiles of every checkpoint and starts a new window
func (d *DeliveryLatencies) PrintLatencyReport() {
	metrics_Message := "[Metrics][%s] perc50 %v, perc90 %v, perc99 %v. Total count %v"
	for i := DeliveryCheckpoint(0); i < Len_DeliveryCheckpoint; i++ {
		summary := d.checkpoints[i].GetSummary()
		d.checkpoints[i].Reset()
		klog.Infof(metrics_Message, i.Name(), summary.P50, summary.P90, summary.P99, summary.TotalCount)
	}
}
