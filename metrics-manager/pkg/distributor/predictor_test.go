package distributor

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

func TestPredictorClient_Post(t *testing.T) {
	predictor, server := newFakePredictor(t, http.StatusCreated)
	c := NewPredictorClient(server.URL, time.Second)

	metric := &types.PredictorMetric{NsId: "ns1", VnfMemberIndex: 1, ScalingGroupDescriptor: "sgd", VduCount: 1, CpuLoad: 2.5, Timestamp: "2019-06-18 22:20:01"}
	assert.NoError(t, c.Post(context.Background(), "req-1", metric))

	assert.Equal(t, []types.PredictorMetric{*metric}, predictor.metrics())
	assert.Equal(t, []string{"req-1"}, predictor.ids())
}

func TestPredictorClient_Rejected(t *testing.T) {
	_, server := newFakePredictor(t, http.StatusServiceUnavailable)
	c := NewPredictorClient(server.URL, time.Second)

	err := c.Post(context.Background(), "req-1", &types.PredictorMetric{NsId: "ns1"})
	assert.ErrorIs(t, err, types.Error_SinkDeliveryFailure)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "stored")
}

func TestPredictorClient_Unreachable(t *testing.T) {
	c := NewPredictorClient("http://127.0.0.1:1/api/metrics/predict/", time.Second)

	err := c.Post(context.Background(), "req-1", &types.PredictorMetric{NsId: "ns1"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, types.Error_SinkDeliveryFailure)
}
