package types

import (
	"time"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

// LoginRequest is the body of the NBI token request
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	ProjectId string `json:"project_id,omitempty"`
}

type TokenResponse struct {
	Id      string  `json:"id"`
	Expires float64 `json:"expires"`
}

// VnfInstance is one VNF record of the NBI ns lifecycle API
type VnfInstance struct {
	Id                string `json:"_id"`
	NsrIdRef          string `json:"nsr-id-ref"`
	MemberVnfIndexRef string `json:"member-vnf-index-ref"`
	VnfdId            string `json:"vnfd-id"`
	VnfdRef           string `json:"vnfd-ref"`
}

// VnfdCatalog is the descriptor document of a VNF package
type VnfdCatalog struct {
	Catalog struct {
		Vnfd []Vnfd `yaml:"vnfd"`
	} `yaml:"vnfd:vnfd-catalog"`
}

type Vnfd struct {
	Id                     string                   `yaml:"id"`
	Name                   string                   `yaml:"name"`
	Vdu                    []VduDescriptor          `yaml:"vdu"`
	ScalingGroupDescriptor []ScalingGroupDescriptor `yaml:"scaling-group-descriptor,omitempty"`
}

type VduDescriptor struct {
	Id    string `yaml:"id"`
	Count int    `yaml:"count"`
}

type ScalingGroupDescriptor struct {
	Name             string `yaml:"name"`
	MinInstanceCount int    `yaml:"min-instance-count"`
	MaxInstanceCount int    `yaml:"max-instance-count"`
}

// QueryResponse is the instant query answer of the metrics store
type QueryResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   struct {
		ResultType string        `json:"resultType"`
		Result     []VectorEntry `json:"result"`
	} `json:"data"`
}

type VectorEntry struct {
	Metric map[string]string `json:"metric"`
	// [ <epoch seconds>, "<value>" ]
	Value [2]interface{} `json:"value"`
}

// ReceivedMetric is a metric accepted by the simulated predictor
type ReceivedMetric struct {
	types.PredictorMetric
	RequestId  string    `json:"request_id"`
	ReceivedAt time.Time `json:"received_at"`
}
