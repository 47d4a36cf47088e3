package hash

import (
	"hash/fnv"
	"strconv"
)

// HashGroupToShard maps a (ns_id, vnf_member_index) pair onto [0, shards)
func HashGroupToShard(nsId string, vnfMemberIndex int, shards int) int {
	if shards <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(nsId))
	h.Write([]byte{'/'})
	h.Write([]byte(strconv.Itoa(vnfMemberIndex)))
	return int(h.Sum32() % uint32(shards))
}
