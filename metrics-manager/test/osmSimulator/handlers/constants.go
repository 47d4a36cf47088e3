package handlers

// URL Path
const (
	TokensPath       = "/osm/admin/v1/tokens"
	VnfInstancesPath = "/osm/nslcm/v1/vnf_instances"
	VnfdPath         = "/osm/vnfpkgm/v1/vnf_packages/{vnfdId}/vnfd"
	QueryPath        = "/api/v1/query"
	PredictPath      = "/api/metrics/predict/"
	ReceivedPath     = "/api/metrics/received"

	NsrIdRefParameter = "nsr-id-ref"
	QueryParameter    = "query"
	NsIdParameter     = "ns_id"
	RequestIdHeader   = "X-Request-ID"
)
