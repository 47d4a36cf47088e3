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

package nbi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	utilerrors "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/clientSdk/util/errors"
	utilnet "github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/clientSdk/util/net"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/interfaces/store"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/metrics"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"
)

const (
	VnfInstancesPath = "/osm/nslcm/v1/vnf_instances"
	VnfPackagesPath  = "/osm/vnfpkgm/v1/vnf_packages"
	NsrIdRefParam    = "nsr-id-ref"

	// number of requests tried with a fresh token before giving up
	MaxAuthAttempts = 3
)

var unexpectedResponse = utilerrors.NewClientErrorReporter(http.MethodGet, types.Error_UnexpectedStatus)

// MemberIndex accepts member-vnf-index-ref as a JSON string or number
type MemberIndex string

func (m *MemberIndex) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MemberIndex(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = MemberIndex(n.String())
	return nil
}

// VnfInstance is the part of an NBI vnf record the resolver needs
type VnfInstance struct {
	Id                string      `json:"_id"`
	MemberVnfIndexRef MemberIndex `json:"member-vnf-index-ref"`
	VnfdId            string      `json:"vnfd-id"`
}

type vnfdDocument struct {
	Catalog struct {
		Vnfd []struct {
			Id                     string `yaml:"id"`
			ScalingGroupDescriptor []struct {
				Name string `yaml:"name"`
			} `yaml:"scaling-group-descriptor"`
		} `yaml:"vnfd"`
	} `yaml:"vnfd:vnfd-catalog"`
}

// Resolver maps (ns_id, vnf_member_index) to the name of the scaling group descriptor
// of the VNF package, caching every successful resolution for the process lifetime.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenManager
	cache      store.DescriptorCache
	// optional second tier, may be nil
	persisted store.DescriptorStore
	recorder  *metrics.Recorder
}

func NewResolver(baseURL string, httpClient *http.Client, tokens *TokenManager, cache store.DescriptorCache,
	persisted store.DescriptorStore, recorder *metrics.Recorder) *Resolver {
	return &Resolver{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		cache:      cache,
		persisted:  persisted,
		recorder:   recorder,
	}
}

func (r *Resolver) Resolve(ctx context.Context, nsId string, vnfMemberIndex int) (string, error) {
	key := types.GroupKey{NsId: nsId, VnfMemberIndex: vnfMemberIndex}

	if name, ok := r.cache.Get(key); ok {
		klog.V(4).Infof("Using cache for scaling group descriptor of %v", key)
		r.recorder.CacheLookup(true)
		return name, nil
	}
	r.recorder.CacheLookup(false)

	if r.persisted != nil {
		name, found, err := r.persisted.GetDescriptor(ctx, key)
		if err != nil {
			klog.Warningf("Descriptor store lookup for %v failed, querying NBI. error %v", key, err)
		} else if found {
			r.cache.Set(key, name)
			return name, nil
		}
	}

	name, err := r.resolveFromNBI(ctx, key)
	if err != nil {
		r.recorder.ResolveFailure(types.FailureReason(err))
		return "", err
	}

	r.cache.Set(key, name)
	if r.persisted != nil {
		if err := r.persisted.PersistDescriptor(ctx, key, name); err != nil {
			klog.Warningf("Failed to persist descriptor of %v. error %v", key, err)
		}
	}
	return name, nil
}

func (r *Resolver) resolveFromNBI(ctx context.Context, key types.GroupKey) (string, error) {
	query := url.Values{}
	query.Set(NsrIdRefParam, key.NsId)
	vnfsURL := r.baseURL + VnfInstancesPath + "?" + query.Encode()

	body, err := r.getAuthorized(ctx, vnfsURL, "application/json")
	if err != nil {
		return "", err
	}

	var vnfs []VnfInstance
	if err = json.Unmarshal(body, &vnfs); err != nil {
		return "", fmt.Errorf("decode vnf instances of ns %s: %w", key.NsId, err)
	}

	klog.Infof("Found %d VNFs for %s. Checking which VNF belongs to %d", len(vnfs), key.NsId, key.VnfMemberIndex)
	wanted := strconv.Itoa(key.VnfMemberIndex)
	for _, vnf := range vnfs {
		if string(vnf.MemberVnfIndexRef) != wanted {
			continue
		}
		return r.fetchScalingGroupName(ctx, key, vnf.VnfdId)
	}

	return "", &types.ScalingDataMissingError{NsId: key.NsId, VnfMemberIndex: key.VnfMemberIndex, Reason: "no vnf instance with this member index"}
}

// The first scaling group descriptor of the first vnfd is authoritative
func (r *Resolver) fetchScalingGroupName(ctx context.Context, key types.GroupKey, vnfdId string) (string, error) {
	vnfdURL := fmt.Sprintf("%s%s/%s/vnfd", r.baseURL, VnfPackagesPath, url.PathEscape(vnfdId))

	body, err := r.getAuthorized(ctx, vnfdURL, "application/yaml,text/plain")
	if err != nil {
		return "", err
	}

	var doc vnfdDocument
	if err = yaml.NewDecoder(bytes.NewReader(body)).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode vnfd %s: %w", vnfdId, err)
	}

	if len(doc.Catalog.Vnfd) == 0 || len(doc.Catalog.Vnfd[0].ScalingGroupDescriptor) == 0 ||
		doc.Catalog.Vnfd[0].ScalingGroupDescriptor[0].Name == "" {
		return "", &types.ScalingDataMissingError{NsId: key.NsId, VnfMemberIndex: key.VnfMemberIndex,
			Reason: fmt.Sprintf("vnfd %s has no scaling-group-descriptor", vnfdId)}
	}

	return doc.Catalog.Vnfd[0].ScalingGroupDescriptor[0].Name, nil
}

// getAuthorized issues a GET with the current bearer token. An unauthorized
// response refreshes the token and the retry carries the new one.
func (r *Resolver) getAuthorized(ctx context.Context, target string, accept string) ([]byte, error) {
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxAuthAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Add("Accept", accept)
		req.Header.Add("Authorization", "Bearer "+token)

		klog.V(6).Infof("GET %s (attempt %d)", target, attempt)
		resp, err := r.httpClient.Do(req)
		if err != nil {
			klog.Errorf("Failed to reach NBI at %s (%s). error %v", target, utilnet.Classify(err), err)
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil
		case http.StatusUnauthorized:
			klog.Warningf("NBI rejected token for %s, re-authenticating (attempt %d of %d)", target, attempt, MaxAuthAttempts)
			token, err = r.tokens.Refresh(ctx, token)
			if err != nil {
				return nil, err
			}
		default:
			return nil, unexpectedResponse.AsError(target, resp.StatusCode, body)
		}
	}

	return nil, fmt.Errorf("%w: GET %s after %d attempts", types.Error_AuthRetriesExhausted, target, MaxAuthAttempts)
}
