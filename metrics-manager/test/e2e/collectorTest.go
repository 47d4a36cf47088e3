package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/service-api/endpoints"
	apitypes "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/service-api/types"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/e2e/stats"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/handlers"
	simulatorTypes "github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/types"
)

const (
	deliveries  = "deliveries"
	descriptors = "descriptors"
)

type testConfig struct {
	simulatorUrl  string
	statusUrl     string
	testDuration  time.Duration
	pollInterval  time.Duration
	action        string
	requestTimout time.Duration
}

func main() {
	flag.Usage = printUsage

	cfg := testConfig{}
	flag.StringVar(&cfg.simulatorUrl, "simulator_url", "http://localhost:9119", "OSM simulator address")
	flag.StringVar(&cfg.statusUrl, "status_url", "http://localhost:"+endpoints.DefaultStatusPort, "Metrics collector status address")
	flag.DurationVar(&cfg.testDuration, "test_duration", 2*time.Minute, "Test duration, default 2 minutes")
	flag.DurationVar(&cfg.pollInterval, "poll_interval", time.Second, "Interval between two checks, default 1 second")
	flag.StringVar(&cfg.action, "action", "", "action to perform, can be deliveries or descriptors, default to both")
	flag.DurationVar(&cfg.requestTimout, "request_timeout", 10*time.Second, "Timeout for each request")

	if !flag.Parsed() {
		klog.InitFlags(nil)
		flag.Parse()
	}
	klog.StartFlushDaemon(time.Second * 1)
	defer klog.Flush()

	cfg.simulatorUrl = strings.TrimSuffix(cfg.simulatorUrl, "/")
	cfg.statusUrl = strings.TrimSuffix(cfg.statusUrl, "/")
	client := &http.Client{Timeout: cfg.requestTimout}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.testDuration)
	defer cancel()

	deliveryStats := stats.NewDeliveryStats()
	queryStats := stats.NewDescriptorQueryStats()
	queryStats.QueryInterval = cfg.pollInterval

	switch cfg.action {
	case deliveries:
		checkDeliveries(ctx, client, cfg, deliveryStats)
		deliveryStats.PrintStats()
	case descriptors:
		queryDescriptors(ctx, client, cfg, queryStats)
		queryStats.PrintStats()
	default:
		done := make(chan struct{})
		go func() {
			defer close(done)
			queryDescriptors(ctx, client, cfg, queryStats)
		}()
		checkDeliveries(ctx, client, cfg, deliveryStats)
		<-done
		deliveryStats.PrintStats()
		queryStats.PrintStats()
	}
}

// function to print the usage info for the collector end to end test
func printUsage() {
	fmt.Println("Usage: ")
	fmt.Println("--simulator_url=http://127.0.0.1:9119 --status_url=http://127.0.0.1:8081 --test_duration=2m --action=deliveries|descriptors")

	os.Exit(0)
}

// checkDeliveries follows the metrics received by the simulated predictor
func checkDeliveries(ctx context.Context, client *http.Client, cfg testConfig, ds *stats.DeliveryStats) {
	start := time.Now()
	seen := 0
	groups := make(map[types.GroupKey]bool)

	ticker := time.NewTicker(cfg.pollInterval)
	defer ticker.Stop()
	for {
		received := make([]simulatorTypes.ReceivedMetric, 0)
		if err := getJSON(ctx, client, cfg.simulatorUrl+handlers.ReceivedPath, &received); err != nil {
			klog.Errorf("failed to get received metrics. error %v", err)
		}

		for _, m := range received[min(seen, len(received)):] {
			groups[types.GroupKey{NsId: m.NsId, VnfMemberIndex: m.VnfMemberIndex}] = true
			sampled, err := time.ParseInLocation(types.PredictorTimeLayout, m.Timestamp, time.Local)
			if err != nil {
				klog.Errorf("metric %s has a malformed timestamp %q", m.RequestId, m.Timestamp)
				continue
			}
			delay := m.ReceivedAt.Sub(sampled)
			if delay > stats.LateDeliveryThreshold {
				ds.NumberOfLateDeliveries++
				klog.V(3).Infof("metric %s delivered %v after sampling", m.RequestId, delay)
			}
			ds.DeliveryDelayPerMetric.AddLatencyMetrics(delay)
		}
		if len(received) > seen {
			seen = len(received)
		}

		ds.NumberOfMetrics = seen
		ds.NumberOfGroups = len(groups)

		select {
		case <-ctx.Done():
			ds.TestDuration = time.Since(start)
			return
		case <-ticker.C:
		}
	}
}

// queryDescriptors measures the latency of the collector descriptor listing
func queryDescriptors(ctx context.Context, client *http.Client, cfg testConfig, qs *stats.DescriptorQueryStats) {
	ticker := time.NewTicker(cfg.pollInterval)
	defer ticker.Stop()
	for {
		resp := apitypes.DescriptorListResponse{}
		start := time.Now()
		err := getJSON(ctx, client, cfg.statusUrl+endpoints.DescriptorsPath, &resp)
		if err != nil {
			if ctx.Err() == nil {
				qs.NumberOfFailures++
				klog.Errorf("failed to list descriptors. error %v", err)
			}
		} else {
			qs.QueryLatency.AddLatencyMetrics(time.Since(start))
			qs.NumberOfDescriptors = resp.Count
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
