package app

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		PrometheusIp:         "prometheus",
		PrometheusPort:       "9091",
		Granularity:          30 * time.Second,
		NbiAuthenticationUrl: "https://osm:9999/osm/admin/v1/tokens",
		NbiSocketAddr:        "https://osm:9999",
		NbiUsername:          "admin",
		NbiPassword:          "secret",
		PredictorUrl:         "http://predictors:8000/api/metrics/predict/",
		RequestTimeout:       30 * time.Second,
		MaxDeliveries:        8,
		DeliveryQueueSize:    256,
		StatusIp:             "0.0.0.0",
		StatusPort:           "8081",
	}
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		isValid bool
	}{
		{name: "valid", mutate: func(c *Config) {}, isValid: true},
		{name: "missing prometheus ip", mutate: func(c *Config) { c.PrometheusIp = "" }},
		{name: "zero granularity", mutate: func(c *Config) { c.Granularity = 0 }},
		{name: "missing authentication url", mutate: func(c *Config) { c.NbiAuthenticationUrl = "" }},
		{name: "nbi address without scheme", mutate: func(c *Config) { c.NbiSocketAddr = "osm:9999" }},
		{name: "predictor url without host", mutate: func(c *Config) { c.PredictorUrl = "http:///predict" }},
		{name: "zero request timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }},
		{name: "no delivery units", mutate: func(c *Config) { c.MaxDeliveries = 0 }},
		{name: "negative rate", mutate: func(c *Config) { c.DeliveryRate = -1 }},
		{name: "fractional rate", mutate: func(c *Config) { c.DeliveryRate = 0.5 }, isValid: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			if tt.isValid {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}

func TestConfig_ValidateSentinels(t *testing.T) {
	c := validConfig()
	c.PrometheusPort = ""
	assert.ErrorIs(t, c.Validate(), Error_MissingPrometheus)

	c = validConfig()
	c.Granularity = -time.Second
	assert.ErrorIs(t, c.Validate(), Error_BadGranularity)
}

func TestConfig_Addresses(t *testing.T) {
	c := validConfig()
	assert.Equal(t, "http://prometheus:9091", c.PrometheusUrl())
	assert.Equal(t, "0.0.0.0:8081", c.StatusAddress())
}

func TestConfig_StringHidesPassword(t *testing.T) {
	c := validConfig()
	s := fmt.Sprintf("%v", c)

	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, "https://osm:9999")
	// the config itself is unchanged
	assert.Equal(t, "secret", c.NbiPassword)
}

func splitHostPort(t *testing.T, rawUrl string) (string, string) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		t.Fatal(err)
	}
	return u.Hostname(), u.Port()
}
