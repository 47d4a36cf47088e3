package handlers

import (
	"net/http"
	"time"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/data"
	simulatorTypes "github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/types"
)

// PrometheusHandler answers instant queries with a fresh load for every VDU
type PrometheusHandler struct {
	topology *data.Topology
}

func NewPrometheusHandler(topology *data.Topology) *PrometheusHandler {
	return &PrometheusHandler{topology: topology}
}

func (h *PrometheusHandler) Query(resp http.ResponseWriter, req *http.Request) {
	ret := simulatorTypes.QueryResponse{}
	query := req.URL.Query().Get(QueryParameter)
	if query == "" {
		ret.Status = "error"
		ret.Error = "no query specified"
		writeJSON(resp, http.StatusBadRequest, ret)
		return
	}

	ret.Status = "success"
	ret.Data.ResultType = "vector"
	ret.Data.Result = h.topology.Samples(query, time.Now())
	writeJSON(resp, http.StatusOK, ret)
}
