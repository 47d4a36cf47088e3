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
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "osm_metrics_collector"

	DeliveryResult_Created = "created"
	DeliveryResult_Failed  = "failed"
	DeliveryResult_Dropped = "dropped"
	DeliveryResult_NoSGD   = "unresolved"

	TickOutcome_Data  = "data"
	TickOutcome_Empty = "empty"
	TickOutcome_Error = "error"
)

// Recorder exports the collector pipeline state to Prometheus.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	ticks            *prometheus.CounterVec
	samples          prometheus.Counter
	groups           prometheus.Counter
	deliveries       *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	tokenRefreshes   prometheus.Counter
	resolveFailures  *prometheus.CounterVec
	deliveryLatency  prometheus.Histogram
	deliveryQueueLen prometheus.Gauge

	// percentile report printed by the collector
	Latencies *DeliveryLatencies
}

func NewRecorder(registry prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Polling ticks by outcome (data, empty, error).",
		}, []string{"outcome"}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "VDU cpu samples fetched from the metrics store.",
		}),
		groups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_total",
			Help:      "Aggregated (ns_id, vnf_member_index) groups handed to the dispatcher.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Predictor deliveries by result.",
		}, []string{"result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "descriptor_cache_lookups_total",
			Help:      "Scaling group descriptor cache lookups by result (hit, miss).",
		}, []string{"result"}),
		tokenRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nbi_token_refreshes_total",
			Help:      "Re-authentications against the NBI after an unauthorized response.",
		}),
		resolveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "descriptor_resolve_failures_total",
			Help:      "Failed scaling group descriptor resolutions by reason.",
		}, []string{"reason"}),
		deliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_latency_seconds",
			Help:      "Time from dispatch to predictor response.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		deliveryQueueLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delivery_queue_length",
			Help:      "Aggregate results waiting for a delivery worker.",
		}),
		Latencies: NewDeliveryLatencies(),
	}

	collectors := []prometheus.Collector{
		r.ticks, r.samples, r.groups, r.deliveries, r.cacheLookups,
		r.tokenRefreshes, r.resolveFailures, r.deliveryLatency, r.deliveryQueueLen,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector metric: %w", err)
		}
	}

	return r, nil
}

func (r *Recorder) Tick(outcome string, samples int) {
	if r == nil {
		return
	}
	r.ticks.WithLabelValues(outcome).Inc()
	r.samples.Add(float64(samples))
}

func (r *Recorder) Groups(n int) {
	if r == nil {
		return
	}
	r.groups.Add(float64(n))
}

func (r *Recorder) Delivery(result string) {
	if r == nil {
		return
	}
	r.deliveries.WithLabelValues(result).Inc()
}

func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		r.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (r *Recorder) TokenRefresh() {
	if r == nil {
		return
	}
	r.tokenRefreshes.Inc()
}

func (r *Recorder) ResolveFailure(reason string) {
	if r == nil {
		return
	}
	r.resolveFailures.WithLabelValues(reason).Inc()
}

func (r *Recorder) Checkpoint(checkpoint DeliveryCheckpoint, since time.Time) {
	if r == nil {
		return
	}
	elapsed := time.Since(since)
	r.Latencies.Add(checkpoint, elapsed)
	if checkpoint == Predictor_Posted {
		r.deliveryLatency.Observe(elapsed.Seconds())
	}
}

func (r *Recorder) QueueLength(n int) {
	if r == nil {
		return
	}
	r.deliveryQueueLen.Set(float64(n))
}
