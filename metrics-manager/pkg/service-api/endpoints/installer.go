package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/interfaces/store"
	apitypes "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/service-api/types"
)

// DescriptorLister exposes the resolved scaling group descriptors
type DescriptorLister interface {
	Snapshot() []store.DescriptorEntry
}

type Installer struct {
	descriptors DescriptorLister
	gatherer    prometheus.Gatherer
}

func NewInstaller(descriptors DescriptorLister, gatherer prometheus.Gatherer) *Installer {
	return &Installer{descriptors: descriptors, gatherer: gatherer}
}

// Install registers the status handlers on r
func (i *Installer) Install(r *mux.Router) {
	r.HandleFunc(HealthzPath, i.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc(DescriptorsPath, i.DescriptorsHandler)
	r.Handle(MetricsPath, promhttp.HandlerFor(i.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Setup pprof handlers.
	r.HandleFunc(PprofPathPrefix, pprof.Index)
	r.HandleFunc(PprofPathPrefix+"cmdline", pprof.Cmdline)
	r.HandleFunc(PprofPathPrefix+"profile", pprof.Profile)
	r.HandleFunc(PprofPathPrefix+"symbol", pprof.Symbol)
	r.HandleFunc(PprofPathPrefix+"trace", pprof.Trace)
	r.PathPrefix(PprofPathPrefix).HandlerFunc(pprof.Index)
}

func (i *Installer) HealthHandler(resp http.ResponseWriter, req *http.Request) {
	i.writeJSON(resp, http.StatusOK, apitypes.HealthResponse{Status: apitypes.HealthStatusOk})
}

// DescriptorsHandler lists the cached descriptors, optionally only those of one network service
func (i *Installer) DescriptorsHandler(resp http.ResponseWriter, req *http.Request) {
	klog.V(6).Infof("handle %s. URL path: %s", DescriptorsPath, req.URL.Path)

	if req.Method != http.MethodGet {
		resp.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	nsId := req.URL.Query().Get(NsIdParameter)
	entries := make([]store.DescriptorEntry, 0)
	for _, e := range i.descriptors.Snapshot() {
		if nsId == "" || e.NsId == nsId {
			entries = append(entries, e)
		}
	}

	i.writeJSON(resp, http.StatusOK, apitypes.DescriptorListResponse{
		Count:       len(entries),
		Descriptors: entries,
	})
}

func (i *Installer) writeJSON(resp http.ResponseWriter, status int, body interface{}) {
	ret, err := json.Marshal(body)
	if err != nil {
		klog.Errorf("error marshal response. error %v", err)
		resp.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(status)
	resp.Write(ret)
}
