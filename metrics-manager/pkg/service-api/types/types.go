package types

import "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/interfaces/store"

const HealthStatusOk = "ok"

type HealthResponse struct {
	Status string `json:"status"`
}

// DescriptorListResponse is the content returned by the descriptors API call
type DescriptorListResponse struct {
	Count       int                     `json:"count"`
	Descriptors []store.DescriptorEntry `json:"descriptors"`
}
