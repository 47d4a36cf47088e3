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

package distributor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/interfaces/distributor"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/metrics"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

const (
	DefaultMaxDeliveries = 8
	DefaultQueueSize     = 256
)

// DescriptorResolver maps a VNF member to the name of its scaling group descriptor
type DescriptorResolver interface {
	Resolve(ctx context.Context, nsId string, vnfMemberIndex int) (string, error)
}

type Config struct {
	// number of concurrent delivery units
	MaxDeliveries int
	// results waiting for a free delivery unit before new ones are dropped
	QueueSize int
	// deliveries per second across all units, 0 is unlimited
	Rate float64
}

type delivery struct {
	tickId   string
	result   types.AggregateResult
	enqueued time.Time
}

// ResourceDistributor delivers aggregate results to the predictor, one
// independent unit of work per result. Delivery is at most once.
type ResourceDistributor struct {
	resolver DescriptorResolver
	sink     Sink
	recorder *metrics.Recorder
	limiter  *rate.Limiter
	workers  int

	queue   chan *delivery
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	stopped bool
}

var _ distributor.Interface = &ResourceDistributor{}

func NewResourceDistributor(cfg Config, resolver DescriptorResolver, sink Sink, recorder *metrics.Recorder) *ResourceDistributor {
	if cfg.MaxDeliveries <= 0 {
		cfg.MaxDeliveries = DefaultMaxDeliveries
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.Rate > 0 {
		burst := int(cfg.Rate)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}

	return &ResourceDistributor{
		resolver: resolver,
		sink:     sink,
		recorder: recorder,
		limiter:  limiter,
		workers:  cfg.MaxDeliveries,
		queue:    make(chan *delivery, cfg.QueueSize),
	}
}

// Start launches the delivery units. They run until Stop is called; ctx bounds
// every network call they make.
func (dis *ResourceDistributor) Start(ctx context.Context) {
	dis.mu.Lock()
	defer dis.mu.Unlock()
	if dis.started || dis.stopped {
		return
	}
	dis.started = true

	klog.V(3).Infof("Starting %d delivery units, queue size %d", dis.workers, cap(dis.queue))
	for i := 0; i < dis.workers; i++ {
		dis.wg.Add(1)
		go func() {
			defer dis.wg.Done()
			for d := range dis.queue {
				dis.recorder.QueueLength(len(dis.queue))
				dis.deliver(ctx, d)
			}
		}()
	}
}

// Stop closes the queue and waits for queued and in flight deliveries.
// Results dispatched afterwards are dropped.
func (dis *ResourceDistributor) Stop() {
	dis.mu.Lock()
	if dis.stopped {
		dis.mu.Unlock()
		return
	}
	dis.stopped = true
	close(dis.queue)
	dis.mu.Unlock()

	dis.wg.Wait()
	klog.V(3).Infof("Delivery units stopped")
}

// Dispatch never blocks: a result that finds the queue full is dropped.
func (dis *ResourceDistributor) Dispatch(ctx context.Context, tickId string, results []types.AggregateResult) int {
	dis.mu.RLock()
	defer dis.mu.RUnlock()

	accepted := 0
	for i := range results {
		if dis.stopped || ctx.Err() != nil {
			dis.drop(tickId, &results[i], "collector is shutting down")
			continue
		}

		d := &delivery{tickId: tickId, result: results[i], enqueued: time.Now()}
		select {
		case dis.queue <- d:
			accepted++
		default:
			dis.drop(tickId, &results[i], types.ErrMsg_DeliveryQueueFull)
		}
	}
	dis.recorder.QueueLength(len(dis.queue))
	return accepted
}

func (dis *ResourceDistributor) drop(tickId string, r *types.AggregateResult, reason string) {
	dis.recorder.Delivery(metrics.DeliveryResult_Dropped)
	klog.Errorf("[Critical] [%s] Dropping metric for %s: %s", tickId, r.GetKey(), reason)
}

// deliver resolves the scaling group descriptor of one result and posts it
func (dis *ResourceDistributor) deliver(ctx context.Context, d *delivery) {
	dis.recorder.Checkpoint(metrics.Dispatcher_Dequeued, d.enqueued)
	r := &d.result

	name, err := dis.resolver.Resolve(ctx, r.NsId, r.VnfMemberIndex)
	if err != nil {
		dis.recorder.Delivery(metrics.DeliveryResult_NoSGD)
		if errors.Is(err, types.Error_ScalingDataMissing) {
			klog.Errorf("[%s] %v", d.tickId, err)
		} else {
			klog.Errorf("[%s] Abandoning metric for %s, cannot resolve scaling group descriptor: %v", d.tickId, r.GetKey(), err)
		}
		return
	}
	dis.recorder.Checkpoint(metrics.Descriptor_Resolved, d.enqueued)
	r.ScalingGroupDescriptor = name
	klog.Infof("[%s] Scale-group-desc-name for ns_id:%s, vnf_member_index:%d is %s", d.tickId, r.NsId, r.VnfMemberIndex, name)

	if err := dis.limiter.Wait(ctx); err != nil {
		dis.drop(d.tickId, r, err.Error())
		return
	}

	metric := types.NewPredictorMetric(r)
	requestId := uuid.New().String()
	err = dis.sink.Post(ctx, requestId, metric)
	dis.recorder.Checkpoint(metrics.Predictor_Posted, d.enqueued)
	if err != nil {
		dis.recorder.Delivery(metrics.DeliveryResult_Failed)
		klog.Errorf("[Critical] [%s] Error while posting metric to predictor, request id %s. %v", d.tickId, requestId, err)
		return
	}

	dis.recorder.Delivery(metrics.DeliveryResult_Created)
	klog.Infof("[%s] Metric posted successfully to predictor. Metric: %+v", d.tickId, *metric)
}
