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

package nbi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"k8s.io/klog/v2"

	utilnet "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/clientSdk/util/net"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/metrics"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

// Config contains what is needed to talk to the OSM north bound interface
type Config struct {
	AuthenticationURL  string
	BaseURL            string
	Username           string
	Password           string
	RequestTimeout     time.Duration
	InsecureSkipVerify bool
}

// NewHTTPClient returns the client shared by the token manager and the resolver.
// OSM deployments usually serve the NBI with a self signed certificate.
func NewHTTPClient(cfg Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}
	return &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: transport,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Id string `json:"id"`
}

// TokenManager acquires and holds the NBI bearer token
type TokenManager struct {
	cfg        Config
	httpClient *http.Client
	recorder   *metrics.Recorder

	mu    sync.Mutex
	token string
}

func NewTokenManager(cfg Config, httpClient *http.Client, recorder *metrics.Recorder) *TokenManager {
	return &TokenManager{
		cfg:        cfg,
		httpClient: httpClient,
		recorder:   recorder,
	}
}

// Authenticate logs in to the NBI and replaces the held token
func (tm *TokenManager) Authenticate(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.authenticateLocked(ctx)
}

// Token returns the held token, logging in first if none is held
func (tm *TokenManager) Token(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.token != "" {
		return tm.token, nil
	}
	return tm.authenticateLocked(ctx)
}

// Refresh discards a token the NBI rejected and logs in again.
// When another caller already replaced the stale token the newer one is returned as is.
func (tm *TokenManager) Refresh(ctx context.Context, stale string) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.token != "" && tm.token != stale {
		klog.V(6).Infof("Token already refreshed by a concurrent request")
		return tm.token, nil
	}
	tm.token = ""
	tm.recorder.TokenRefresh()
	return tm.authenticateLocked(ctx)
}

func (tm *TokenManager) authenticateLocked(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{Username: tm.cfg.Username, Password: tm.cfg.Password})
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.Error_AuthFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.cfg.AuthenticationURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.Error_AuthFailure, err)
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/json")

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		klog.Errorf("Failed to reach NBI authentication endpoint %s (%s). error %v", tm.cfg.AuthenticationURL, utilnet.Classify(err), err)
		return "", fmt.Errorf("%w: %v", types.Error_AuthFailure, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", types.Error_AuthFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		klog.Errorf("NBI rejected login of user %s. status %v", tm.cfg.Username, resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", types.Error_AuthFailure, resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err = json.Unmarshal(bodyBytes, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", types.Error_AuthFailure, err)
	}
	if tokenResp.Id == "" {
		return "", fmt.Errorf("%w: empty token in response", types.Error_AuthFailure)
	}

	tm.token = tokenResp.Id
	klog.Infof("Got NBI token for user %s", tm.cfg.Username)
	return tm.token, nil
}
