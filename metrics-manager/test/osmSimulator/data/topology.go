package data

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	simulatorTypes "github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/types"
)

// namespace of the deterministic ids handed out by the simulator
var idSpace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

// Member is one VNF of a network service
type Member struct {
	Index         int
	VnfInstanceId string
	VnfdId        string
	VnfdName      string
	// empty when the package declares no scaling group
	ScalingGroup string
	Vdus         []string
}

type NetworkService struct {
	NsId    string
	Members []*Member
}

// Topology is the set of running network services the simulator reports on.
// Ids are derived from the positions, so two topologies of the same size are equal.
type Topology struct {
	Services []*NetworkService

	byNs   map[string]*NetworkService
	byVnfd map[string]*Member

	rndLock sync.Mutex
	rnd     *rand.Rand
}

func NewTopology(nsNum, membersPerNs, vdusPerMember int) *Topology {
	t := &Topology{
		Services: make([]*NetworkService, 0, nsNum),
		byNs:     make(map[string]*NetworkService, nsNum),
		byVnfd:   make(map[string]*Member, nsNum*membersPerNs),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for i := 0; i < nsNum; i++ {
		ns := &NetworkService{NsId: newId("ns", i)}
		for j := 1; j <= membersPerNs; j++ {
			vnfdName := fmt.Sprintf("vnf%d_vnfd", j)
			m := &Member{
				Index:         j,
				VnfInstanceId: newId(ns.NsId+"/vnf", j),
				VnfdId:        newId(ns.NsId+"/vnfd", j),
				VnfdName:      vnfdName,
				ScalingGroup:  vnfdName + "-autoscale",
				Vdus:          make([]string, vdusPerMember),
			}
			for k := range m.Vdus {
				m.Vdus[k] = fmt.Sprintf("%s-%d-vdu%d", ns.NsId[:8], j, k+1)
			}
			ns.Members = append(ns.Members, m)
			t.byVnfd[m.VnfdId] = m
		}
		t.Services = append(t.Services, ns)
		t.byNs[ns.NsId] = ns
	}

	klog.V(3).Infof("Generated %d network services, %d members each, %d VDUs per member", nsNum, membersPerNs, vdusPerMember)
	return t
}

func newId(kind string, i int) string {
	return uuid.NewSHA1(idSpace, []byte(kind+"-"+strconv.Itoa(i))).String()
}

// DropScalingGroup removes the scaling group descriptor of one member's package.
// Call it before the topology is served.
func (t *Topology) DropScalingGroup(nsId string, vnfMemberIndex int) {
	if m, ok := t.Member(nsId, vnfMemberIndex); ok {
		m.ScalingGroup = ""
	}
}

func (t *Topology) Member(nsId string, vnfMemberIndex int) (*Member, bool) {
	ns, ok := t.byNs[nsId]
	if !ok {
		return nil, false
	}
	for _, m := range ns.Members {
		if m.Index == vnfMemberIndex {
			return m, true
		}
	}
	return nil, false
}

// GroupCount is the number of (ns_id, vnf_member_index) groups
func (t *Topology) GroupCount() int {
	return len(t.byVnfd)
}

// VnfInstances returns the VNF records of a network service, empty if unknown
func (t *Topology) VnfInstances(nsId string) []simulatorTypes.VnfInstance {
	vnfs := make([]simulatorTypes.VnfInstance, 0)
	ns, ok := t.byNs[nsId]
	if !ok {
		return vnfs
	}
	for _, m := range ns.Members {
		vnfs = append(vnfs, simulatorTypes.VnfInstance{
			Id:                m.VnfInstanceId,
			NsrIdRef:          nsId,
			MemberVnfIndexRef: strconv.Itoa(m.Index),
			VnfdId:            m.VnfdId,
			VnfdRef:           m.VnfdName,
		})
	}
	return vnfs
}

// VnfdDocument renders the descriptor of a VNF package as YAML
func (t *Topology) VnfdDocument(vnfdId string) ([]byte, bool) {
	m, ok := t.byVnfd[vnfdId]
	if !ok {
		return nil, false
	}

	vnfd := simulatorTypes.Vnfd{Id: m.VnfdName, Name: m.VnfdName}
	vnfd.Vdu = append(vnfd.Vdu, simulatorTypes.VduDescriptor{Id: m.VnfdName + "-VM", Count: len(m.Vdus)})
	if m.ScalingGroup != "" {
		vnfd.ScalingGroupDescriptor = []simulatorTypes.ScalingGroupDescriptor{
			{Name: m.ScalingGroup, MinInstanceCount: 0, MaxInstanceCount: 10},
		}
	}

	doc := simulatorTypes.VnfdCatalog{}
	doc.Catalog.Vnfd = []simulatorTypes.Vnfd{vnfd}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		klog.Errorf("Failed to render vnfd %s. error %v", vnfdId, err)
		return nil, false
	}
	return out, true
}

// Samples returns one cpu utilization entry per VDU, stamped with now
func (t *Topology) Samples(metricName string, now time.Time) []simulatorTypes.VectorEntry {
	t.rndLock.Lock()
	defer t.rndLock.Unlock()

	ts := float64(now.UnixNano()) / 1e9
	entries := make([]simulatorTypes.VectorEntry, 0)
	for _, ns := range t.Services {
		for _, m := range ns.Members {
			for _, vdu := range m.Vdus {
				load := float64(t.rnd.Intn(10000)) / 100
				entries = append(entries, simulatorTypes.VectorEntry{
					Metric: map[string]string{
						"__name__":         metricName,
						"ns_id":            ns.NsId,
						"vnf_member_index": strconv.Itoa(m.Index),
						"vdu_name":         vdu,
					},
					Value: [2]interface{}{ts, strconv.FormatFloat(load, 'f', 2, 64)},
				})
			}
		}
	}
	return entries
}
