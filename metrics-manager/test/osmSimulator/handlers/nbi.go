package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/data"
	simulatorTypes "github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/types"
)

// NbiHandler simulates the OSM north bound interface.
// A token is rejected once it was used TokenMaxUses times, 0 never expires it.
type NbiHandler struct {
	topology     *data.Topology
	username     string
	password     string
	tokenMaxUses int

	lock   sync.Mutex
	tokens map[string]int
	logins int
}

func NewNbiHandler(topology *data.Topology, username, password string, tokenMaxUses int) *NbiHandler {
	return &NbiHandler{
		topology:     topology,
		username:     username,
		password:     password,
		tokenMaxUses: tokenMaxUses,
		tokens:       make(map[string]int),
	}
}

func (h *NbiHandler) Login(resp http.ResponseWriter, req *http.Request) {
	var login simulatorTypes.LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&login); err != nil {
		resp.WriteHeader(http.StatusBadRequest)
		return
	}
	if login.Username != h.username || login.Password != h.password {
		klog.V(3).Infof("Rejected login of user %q", login.Username)
		resp.WriteHeader(http.StatusUnauthorized)
		return
	}

	token := uuid.New().String()
	h.lock.Lock()
	h.tokens[token] = 0
	h.logins++
	h.lock.Unlock()

	klog.V(6).Infof("Issued token %s", token)
	writeJSON(resp, http.StatusOK, simulatorTypes.TokenResponse{
		Id:      token,
		Expires: float64(time.Now().Add(time.Hour).Unix()),
	})
}

// Logins returns the number of successful authentications
func (h *NbiHandler) Logins() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.logins
}

func (h *NbiHandler) authorize(req *http.Request) bool {
	token := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")

	h.lock.Lock()
	defer h.lock.Unlock()
	uses, ok := h.tokens[token]
	if !ok {
		return false
	}
	if h.tokenMaxUses > 0 && uses >= h.tokenMaxUses {
		delete(h.tokens, token)
		klog.V(3).Infof("Token %s expired after %d uses", token, uses)
		return false
	}
	h.tokens[token] = uses + 1
	return true
}

func (h *NbiHandler) VnfInstances(resp http.ResponseWriter, req *http.Request) {
	if !h.authorize(req) {
		resp.WriteHeader(http.StatusUnauthorized)
		return
	}

	nsId := req.URL.Query().Get(NsrIdRefParameter)
	writeJSON(resp, http.StatusOK, h.topology.VnfInstances(nsId))
}

func (h *NbiHandler) Vnfd(resp http.ResponseWriter, req *http.Request) {
	if !h.authorize(req) {
		resp.WriteHeader(http.StatusUnauthorized)
		return
	}

	doc, ok := h.topology.VnfdDocument(mux.Vars(req)["vnfdId"])
	if !ok {
		resp.WriteHeader(http.StatusNotFound)
		return
	}
	resp.Header().Set("Content-Type", "text/plain")
	resp.WriteHeader(http.StatusOK)
	resp.Write(doc)
}

func writeJSON(resp http.ResponseWriter, status int, body interface{}) {
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
