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
	"errors"
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	PrometheusIp   string
	PrometheusPort string
	CpuMetricName  string
	// polling interval of the metrics store
	Granularity time.Duration

	NbiAuthenticationUrl string
	// base address of the NBI, e.g. https://osm:9999
	NbiSocketAddr      string
	NbiUsername        string
	NbiPassword        string
	InsecureSkipVerify bool

	PredictorUrl string

	// optional second tier for descriptor names, disabled when empty
	RedisAddr string
	RedisDb   int

	RequestTimeout    time.Duration
	MaxDeliveries     int
	DeliveryQueueSize int
	DeliveryRate      float64

	StatusIp              string
	StatusPort            string
	LatencyReportInterval time.Duration
}

var (
	Error_MissingPrometheus = errors.New("prometheus address is missing")
	Error_BadGranularity    = errors.New("granularity must be positive")
)

// Validate checks the configuration before any component is created
func (c *Config) Validate() error {
	if c.PrometheusIp == "" || c.PrometheusPort == "" {
		return Error_MissingPrometheus
	}
	if c.Granularity <= 0 {
		return fmt.Errorf("%w, got %v", Error_BadGranularity, c.Granularity)
	}

	urls := []struct {
		name  string
		value string
	}{
		{name: "nbi authentication url", value: c.NbiAuthenticationUrl},
		{name: "nbi socket address", value: c.NbiSocketAddr},
		{name: "predictor url", value: c.PredictorUrl},
	}
	for _, u := range urls {
		if err := validateUrl(u.value); err != nil {
			return fmt.Errorf("%s %q: %w", u.name, u.value, err)
		}
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.MaxDeliveries <= 0 || c.DeliveryQueueSize <= 0 {
		return fmt.Errorf("max deliveries and delivery queue must be positive, got %d and %d", c.MaxDeliveries, c.DeliveryQueueSize)
	}
	if c.DeliveryRate < 0 {
		return fmt.Errorf("delivery rate cannot be negative, got %v", c.DeliveryRate)
	}
	return nil
}

func (c *Config) PrometheusUrl() string {
	return fmt.Sprintf("http://%s:%s", c.PrometheusIp, c.PrometheusPort)
}

func (c *Config) StatusAddress() string {
	return fmt.Sprintf("%s:%s", c.StatusIp, c.StatusPort)
}

// String hides the NBI password
func (c Config) String() string {
	if c.NbiPassword != "" {
		c.NbiPassword = "******"
	}
	type plain Config
	return fmt.Sprintf("%+v", plain(c))
}

func validateUrl(raw string) error {
	if raw == "" {
		return errors.New("is missing")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is missing")
	}
	return nil
}
