package data

import (
	"sync"
	"time"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
	simulatorTypes "github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/types"
)

// Predictions keeps every metric the simulated predictor accepted
type Predictions struct {
	lock     sync.RWMutex
	received []simulatorTypes.ReceivedMetric
}

func NewPredictions() *Predictions {
	return &Predictions{received: make([]simulatorTypes.ReceivedMetric, 0)}
}

func (p *Predictions) Add(m types.PredictorMetric, requestId string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.received = append(p.received, simulatorTypes.ReceivedMetric{
		PredictorMetric: m,
		RequestId:       requestId,
		ReceivedAt:      time.Now(),
	})
}

// List returns a copy of the metrics received so far, filtered on nsId when not empty
func (p *Predictions) List(nsId string) []simulatorTypes.ReceivedMetric {
	p.lock.RLock()
	defer p.lock.RUnlock()
	ret := make([]simulatorTypes.ReceivedMetric, 0, len(p.received))
	for _, m := range p.received {
		if nsId == "" || m.NsId == nsId {
			ret = append(ret, m)
		}
	}
	return ret
}

func (p *Predictions) Len() int {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return len(p.received)
}
