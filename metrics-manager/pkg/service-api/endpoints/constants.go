/*
Copyright 2019 Authors of OSM Autoscaler.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package endpoints

// URL path
const (
	HealthzPath     = "/healthz"
	MetricsPath     = "/metrics"
	DescriptorsPath = "/descriptors"
	PprofPathPrefix = "/debug/pprof/"

	// DefaultStatusPort is the default port of the collector status server
	DefaultStatusPort = "8081"

	NsIdParameter = "ns_id"
)
