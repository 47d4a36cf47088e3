package nbi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/metrics"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/store/memory"
)

const testVnfd = `vnfd:vnfd-catalog:
  vnfd:
  - id: cirros_vnfd
    scaling-group-descriptor:
    - name: scale_cirros_vnfd
      max-instance-count: 10
    - name: second_group
`

// fakeNBI serves the authentication, vnf instance and vnf package endpoints
type fakeNBI struct {
	authCalls      int32
	inventoryCalls int32
	vnfdCalls      int32

	mu sync.Mutex
	// number of upcoming inventory requests answered with 401
	rejectInventory int
	rejectLogin     bool
	tokenSeq        int
	validToken      string
	vnfs            map[string][]map[string]interface{}
	vnfds           map[string]string
	lastAuthHeader  string
}

func newFakeNBI() *fakeNBI {
	return &fakeNBI{
		vnfs: map[string][]map[string]interface{}{
			"ns-1": {
				{"_id": "vnf-a", "member-vnf-index-ref": "1", "vnfd-id": "cirros_vnfd"},
				{"_id": "vnf-b", "member-vnf-index-ref": 2, "vnfd-id": "other_vnfd"},
			},
		},
		vnfds: map[string]string{
			"cirros_vnfd": testVnfd,
			"other_vnfd":  `{"vnfd:vnfd-catalog": {"vnfd": [{"id": "other_vnfd", "scaling-group-descriptor": [{"name": "scale_other"}]}]}}`,
			"bare_vnfd":   "vnfd:vnfd-catalog:\n  vnfd:\n  - id: bare_vnfd\n",
		},
	}
}

func (f *fakeNBI) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/osm/admin/v1/tokens", f.login).Methods(http.MethodPost)
	r.HandleFunc(VnfInstancesPath, f.inventory).Methods(http.MethodGet)
	r.HandleFunc(VnfPackagesPath+"/{vnfdId}/vnfd", f.vnfd).Methods(http.MethodGet)
	return r
}

func (f *fakeNBI) login(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.authCalls, 1)
	var creds loginRequest
	json.NewDecoder(r.Body).Decode(&creds)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectLogin || creds.Username != "admin" || creds.Password != "admin" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.tokenSeq++
	f.validToken = fmt.Sprintf("token-%d", f.tokenSeq)
	json.NewEncoder(w).Encode(map[string]string{"id": f.validToken})
}

func (f *fakeNBI) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAuthHeader = r.Header.Get("Authorization")
	return f.lastAuthHeader == "Bearer "+f.validToken
}

func (f *fakeNBI) inventory(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.inventoryCalls, 1)

	f.mu.Lock()
	reject := f.rejectInventory > 0
	if reject {
		f.rejectInventory--
	}
	f.mu.Unlock()

	if reject || !f.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	vnfs := f.vnfs[r.URL.Query().Get(NsrIdRefParam)]
	f.mu.Unlock()
	if vnfs == nil {
		vnfs = []map[string]interface{}{}
	}
	json.NewEncoder(w).Encode(vnfs)
}

func (f *fakeNBI) vnfd(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.vnfdCalls, 1)
	if !f.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	doc, ok := f.vnfds[mux.Vars(r)["vnfdId"]]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write([]byte(doc))
}

func (f *fakeNBI) setRejectInventory(n int) {
	f.mu.Lock()
	f.rejectInventory = n
	f.mu.Unlock()
}

func (f *fakeNBI) setRejectLogin(reject bool) {
	f.mu.Lock()
	f.rejectLogin = reject
	f.mu.Unlock()
}

func (f *fakeNBI) setVnfs(nsId string, vnfs []map[string]interface{}) {
	f.mu.Lock()
	f.vnfs[nsId] = vnfs
	f.mu.Unlock()
}

func (f *fakeNBI) authHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuthHeader
}

func (f *fakeNBI) calls() (auth, inventory, vnfd int32) {
	return atomic.LoadInt32(&f.authCalls), atomic.LoadInt32(&f.inventoryCalls), atomic.LoadInt32(&f.vnfdCalls)
}

func (f *fakeNBI) resetCalls() {
	atomic.StoreInt32(&f.authCalls, 0)
	atomic.StoreInt32(&f.inventoryCalls, 0)
	atomic.StoreInt32(&f.vnfdCalls, 0)
}

type testEnv struct {
	nbi      *fakeNBI
	server   *httptest.Server
	tokens   *TokenManager
	cache    *memory.DescriptorCache
	resolver *Resolver
}

func newTestEnv(t *testing.T, recorder *metrics.Recorder) *testEnv {
	f := newFakeNBI()
	server := httptest.NewServer(f.router())
	t.Cleanup(server.Close)

	cfg := Config{
		AuthenticationURL: server.URL + "/osm/admin/v1/tokens",
		BaseURL:           server.URL,
		Username:          "admin",
		Password:          "admin",
		RequestTimeout:    5 * time.Second,
	}
	client := NewHTTPClient(cfg)
	tokens := NewTokenManager(cfg, client, recorder)
	cache := memory.NewDescriptorCache(4)

	return &testEnv{
		nbi:      f,
		server:   server,
		tokens:   tokens,
		cache:    cache,
		resolver: NewResolver(cfg.BaseURL, client, tokens, cache, nil, recorder),
	}
}
