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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"k8s.io/klog/v2"

	utilerrors "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/clientSdk/util/errors"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

const (
	QueryPath           = "/api/v1/query"
	DefaultCpuMetric    = "osm_cpu_utilization"
	prometheusStatus_OK = "success"
)

var queryFailure = utilerrors.NewClientErrorReporter(http.MethodGet, types.Error_UnexpectedStatus)

// Config contains the metrics store settings of the collector
type Config struct {
	ServiceUrl     string
	MetricName     string
	RequestTimeout time.Duration
}

// SampleSource returns the samples of the current polling window
type SampleSource interface {
	Query(ctx context.Context) ([]types.Sample, error)
}

type queryResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   struct {
		Result []vectorEntry `json:"result"`
	} `json:"data"`
}

type vectorEntry struct {
	Metric map[string]string `json:"metric"`
	// [ <epoch seconds>, "<value>" ]
	Value []json.RawMessage `json:"value"`
}

// prometheusClient implements SampleSource with an instant query
type prometheusClient struct {
	config     Config
	queryURL   string
	httpClient *http.Client
}

// NewPrometheusClient returns a reference to the prometheusClient object
func NewPrometheusClient(cfg Config) *prometheusClient {
	if cfg.MetricName == "" {
		cfg.MetricName = DefaultCpuMetric
	}
	q := url.Values{}
	q.Set("query", cfg.MetricName)

	return &prometheusClient{
		config:     cfg,
		queryURL:   strings.TrimSuffix(cfg.ServiceUrl, "/") + QueryPath + "?" + q.Encode(),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Query fetches the instant vector of the cpu metric.
// Entries that cannot be converted to a Sample are skipped.
func (c *prometheusClient) Query(ctx context.Context) ([]types.Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, queryFailure.AsError(c.queryURL, resp.StatusCode, bodyBytes)
	}

	var qr queryResponse
	if err = json.Unmarshal(bodyBytes, &qr); err != nil {
		return nil, fmt.Errorf("decode metrics store response: %w", err)
	}
	if qr.Status != "" && qr.Status != prometheusStatus_OK {
		return nil, fmt.Errorf("metrics store query failed: %s", qr.Error)
	}

	samples := make([]types.Sample, 0, len(qr.Data.Result))
	for _, entry := range qr.Data.Result {
		sample, err := entry.toSample()
		if err != nil {
			klog.Warningf("Skipping metrics store entry %v. error %v", entry.Metric, err)
			continue
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

func (e *vectorEntry) toSample() (types.Sample, error) {
	s := types.Sample{
		NsId:    e.Metric["ns_id"],
		VduName: e.Metric["vdu_name"],
	}
	if s.NsId == "" {
		return s, fmt.Errorf("missing ns_id label")
	}

	index, err := strconv.Atoi(strings.TrimSpace(e.Metric["vnf_member_index"]))
	if err != nil {
		return s, fmt.Errorf("invalid vnf_member_index label: %w", err)
	}
	s.VnfMemberIndex = index

	if len(e.Value) != 2 {
		return s, fmt.Errorf("expected [timestamp, value], got %d elements", len(e.Value))
	}
	if err = json.Unmarshal(e.Value[0], &s.Timestamp); err != nil {
		return s, fmt.Errorf("invalid timestamp: %w", err)
	}

	var raw string
	if err = json.Unmarshal(e.Value[1], &raw); err != nil {
		return s, fmt.Errorf("invalid value: %w", err)
	}
	if s.Value, err = strconv.ParseFloat(raw, 64); err != nil {
		return s, fmt.Errorf("invalid value: %w", err)
	}

	return s, nil
}

var _ SampleSource = (*prometheusClient)(nil)
