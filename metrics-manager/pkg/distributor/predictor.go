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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"k8s.io/klog/v2"

	utilerrors "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/clientSdk/util/errors"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

const (
	DefaultPredictorUrl = "http://predictors:8000/api/metrics/predict/"
	RequestIdHeader     = "X-Request-ID"

	// cap on the response body quoted in error logs
	maxErrorBodyBytes = 4096
)

var predictorRejection = utilerrors.NewClientErrorReporter(http.MethodPost, types.Error_SinkDeliveryFailure)

// Sink accepts one aggregated metric per call
type Sink interface {
	Post(ctx context.Context, requestId string, metric *types.PredictorMetric) error
}

type PredictorClient struct {
	url        string
	httpClient *http.Client
}

func NewPredictorClient(url string, requestTimeout time.Duration) *PredictorClient {
	return &PredictorClient{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Post sends the metric as JSON. Only 201 Created counts as accepted.
func (c *PredictorClient) Post(ctx context.Context, requestId string, metric *types.PredictorMetric) error {
	body, err := json.Marshal(metric)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if requestId != "" {
		req.Header.Set(RequestIdHeader, requestId)
	}

	klog.V(6).Infof("[%s] POST %s %s", requestId, c.url, body)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if resp.StatusCode != http.StatusCreated {
		return predictorRejection.AsError(c.url, resp.StatusCode, respBody)
	}
	return nil
}
