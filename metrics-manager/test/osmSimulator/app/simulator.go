package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/data"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/handlers"
)

type SimulatorConfig struct {
	NsNum         int
	MembersPerNs  int
	VdusPerMember int
	Username      string
	Password      string
	// authorized NBI requests per token, 0 for never expiring tokens
	TokenMaxUses int
	// share of predictor requests answered with 503
	PredictorFailureRate float64
	MasterPort           string
}

// Simulator serves the NBI, the metrics store and the predictor on one router
type Simulator struct {
	Topology    *data.Topology
	Predictions *data.Predictions
	Nbi         *handlers.NbiHandler
}

func NewSimulator(c *SimulatorConfig) *Simulator {
	topology := data.NewTopology(c.NsNum, c.MembersPerNs, c.VdusPerMember)
	return &Simulator{
		Topology:    topology,
		Predictions: data.NewPredictions(),
		Nbi:         handlers.NewNbiHandler(topology, c.Username, c.Password, c.TokenMaxUses),
	}
}

func (s *Simulator) Router(c *SimulatorConfig) *mux.Router {
	ph := handlers.NewPrometheusHandler(s.Topology)
	pr := handlers.NewPredictorHandler(s.Predictions, c.PredictorFailureRate)

	// create a new serve mux and register the handlers
	sm := mux.NewRouter().StrictSlash(true)

	// handlers for GET API
	//
	getRouter := sm.Methods(http.MethodGet).Subrouter()
	getRouter.HandleFunc(handlers.VnfInstancesPath, s.Nbi.VnfInstances)
	getRouter.HandleFunc(handlers.VnfdPath, s.Nbi.Vnfd)
	getRouter.HandleFunc(handlers.QueryPath, ph.Query)
	getRouter.HandleFunc(handlers.ReceivedPath, pr.Received)

	// handlers for POST API
	//
	postRouter := sm.Methods(http.MethodPost).Subrouter()
	postRouter.HandleFunc(handlers.TokensPath, s.Nbi.Login)
	postRouter.HandleFunc(handlers.PredictPath, pr.Predict)

	return sm
}

func Run(c *SimulatorConfig) error {
	s := NewSimulator(c)

	var bindAddress = ":" + c.MasterPort

	// Define HTTP Server
	server := &http.Server{
		Addr:         bindAddress,
		Handler:      s.Router(c),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		klog.Infof("Starting OSM simulator server on port (%v)", c.MasterPort)
		errCh <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigChan:
		klog.Infof("Received %v, graceful shutdown", sig)
	}

	tc, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(tc); err != nil {
		klog.Errorf("The HTTP server is not gracefully shutdown : %v", err)
		return err
	}
	klog.Infof("Simulator received %d metrics", s.Predictions.Len())
	return nil
}
