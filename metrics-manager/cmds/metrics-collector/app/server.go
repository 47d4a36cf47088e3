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
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/aggregrator"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/interfaces/store"
	localMetrics "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/metrics"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/distributor"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/nbi"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/service-api/endpoints"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/store/memory"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/store/redis"
)

const shutdownTimeout = 10 * time.Second

// Run wires the collector and blocks until ctx is cancelled or a component fails
func Run(ctx context.Context, c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := localMetrics.NewRecorder(registry)
	if err != nil {
		return err
	}

	cache := memory.NewDescriptorCache(memory.DefaultShardNum)

	var persisted store.DescriptorStore
	if c.RedisAddr != "" {
		client, err := redis.NewRedisClient(ctx, c.RedisAddr, c.RedisDb)
		if err != nil {
			// the in-process cache is enough to run
			klog.Warningf("Descriptor store disabled: %v", err)
		} else {
			defer client.Close()
			persisted = client
			klog.Infof("Using redis at %s as descriptor store", c.RedisAddr)
		}
	}

	nbiConfig := nbi.Config{
		AuthenticationURL:  c.NbiAuthenticationUrl,
		BaseURL:            c.NbiSocketAddr,
		Username:           c.NbiUsername,
		Password:           c.NbiPassword,
		RequestTimeout:     c.RequestTimeout,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
	httpClient := nbi.NewHTTPClient(nbiConfig)
	tokens := nbi.NewTokenManager(nbiConfig, httpClient, recorder)
	if _, err := tokens.Authenticate(ctx); err != nil {
		klog.Errorf("Initial NBI authentication failed, retrying on first resolution. error %v", err)
	}
	resolver := nbi.NewResolver(c.NbiSocketAddr, httpClient, tokens, cache, persisted, recorder)

	sink := distributor.NewPredictorClient(c.PredictorUrl, c.RequestTimeout)
	dist := distributor.NewResourceDistributor(distributor.Config{
		MaxDeliveries: c.MaxDeliveries,
		QueueSize:     c.DeliveryQueueSize,
		Rate:          c.DeliveryRate,
	}, resolver, sink, recorder)

	source := aggregrator.NewPrometheusClient(aggregrator.Config{
		ServiceUrl:     c.PrometheusUrl(),
		MetricName:     c.CpuMetricName,
		RequestTimeout: c.RequestTimeout,
	})
	aggregator := aggregrator.NewAggregator(source, dist, c.Granularity, recorder)

	r := mux.NewRouter().StrictSlash(true)
	endpoints.NewInstaller(cache, registry).Install(r)

	address := c.StatusAddress()
	server := &http.Server{
		Handler:      r,
		Addr:         address,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	klog.V(3).Infof("Starting the status server ...")
	g.Go(func() error {
		klog.Infof("Serving status at %s", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	klog.V(3).Infof("Starting the delivery units ...")
	dist.Start(gctx)

	klog.V(3).Infof("Starting the Aggregator ...")
	g.Go(func() error {
		err := aggregator.Run(gctx)
		// deliveries already queued are completed or abandoned with the context
		dist.Stop()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if c.LatencyReportInterval > 0 {
		klog.V(3).Infof("Starting the delivery latency reporting routine...")
		g.Go(func() error {
			ticker := time.NewTicker(c.LatencyReportInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					recorder.Latencies.PrintLatencyReport()
				}
			}
		})
	}

	return g.Wait()
}
