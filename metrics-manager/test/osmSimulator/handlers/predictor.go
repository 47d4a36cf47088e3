package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/data"
)

// PredictorHandler stores the posted metrics. A FailureRate share of the
// requests is answered with 503 to exercise the collector's error path.
type PredictorHandler struct {
	predictions *data.Predictions
	failureRate float64

	rndLock sync.Mutex
	rnd     *rand.Rand
}

func NewPredictorHandler(predictions *data.Predictions, failureRate float64) *PredictorHandler {
	return &PredictorHandler{
		predictions: predictions,
		failureRate: failureRate,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *PredictorHandler) Predict(resp http.ResponseWriter, req *http.Request) {
	var m types.PredictorMetric
	if err := json.NewDecoder(req.Body).Decode(&m); err != nil {
		writeJSON(resp, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	if m.NsId == "" || m.ScalingGroupDescriptor == "" {
		writeJSON(resp, http.StatusBadRequest, map[string]string{"detail": "ns_id and scaling_group_descriptor are required"})
		return
	}

	if h.shouldFail() {
		writeJSON(resp, http.StatusServiceUnavailable, map[string]string{"detail": "predictor busy"})
		return
	}

	h.predictions.Add(m, req.Header.Get(RequestIdHeader))
	klog.V(6).Infof("Received metric %+v", m)
	writeJSON(resp, http.StatusCreated, m)
}

func (h *PredictorHandler) shouldFail() bool {
	if h.failureRate <= 0 {
		return false
	}
	h.rndLock.Lock()
	defer h.rndLock.Unlock()
	return h.rnd.Float64() < h.failureRate
}

func (h *PredictorHandler) Received(resp http.ResponseWriter, req *http.Request) {
	writeJSON(resp, http.StatusOK, h.predictions.List(req.URL.Query().Get(NsIdParameter)))
}
