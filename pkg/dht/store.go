package dht

import (
	"encoding/json"
	"math"
	"math/big"
	"sort"
	"sync"

	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto"
)

// entry is one locally stored Change, dual-keyed by its change-hash key
// and its author's address key (§4.7).
type entry struct {
	key        NodeID
	addressKey NodeID
	change     *change.Change
	difficulty float64
}

// localStore is the per-node dual-keyed storage and eviction policy
// described by §4.7. It is safe for concurrent use.
type localStore struct {
	mu        sync.RWMutex
	nodeID    NodeID
	verifier  fabriccrypto.Verifier
	byKey     map[NodeID]*entry
	byAddress map[NodeID]map[NodeID]*entry
}

func newLocalStore(nodeID NodeID, verifier fabriccrypto.Verifier) *localStore {
	return &localStore{
		nodeID:    nodeID,
		verifier:  verifier,
		byKey:     map[NodeID]*entry{},
		byAddress: map[NodeID]map[NodeID]*entry{},
	}
}

// Set implements §4.7's set(key, value): value is parsed as a Change;
// a key mismatch or a failed signature verification is a silent drop,
// never an error, so that validation failures cannot be used to
// fingerprint what a peer holds.
func (s *localStore) Set(key NodeID, payload []byte) {
	var c change.Change
	if err := json.Unmarshal(payload, &c); err != nil {
		return
	}
	if HashKey([]byte(c.ChangeID.String())) != key {
		return
	}
	if !change.VerifyChange(&c, s.verifier) {
		return
	}

	difficulty, err := change.GetPoWDifficulty(c.ChangeID, c.ProofOfWork)
	if err != nil {
		difficulty = 0
	}

	addressKey := HashKey([]byte(c.Address.String()))
	e := &entry{key: key, addressKey: addressKey, change: &c, difficulty: difficulty}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[key] = e
	if s.byAddress[addressKey] == nil {
		s.byAddress[addressKey] = map[NodeID]*entry{}
	}
	s.byAddress[addressKey][key] = e
}

// Get implements §4.7's get(key).
func (s *localStore) Get(key NodeID) (*change.Change, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	return e.change, true
}

// GetChanges implements §4.7's get_changes(address_digest, after_key?):
// up to ksize keys whose stored change's address hashes to
// addressDigest, in ascending key order, strictly after afterKey when
// given.
func (s *localStore) GetChanges(addressDigest NodeID, afterKey *NodeID, ksize int) []*change.Change {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.byAddress[addressDigest]
	keys := make([]NodeID, 0, len(bucket))
	for k := range bucket {
		if afterKey != nil && !afterKey.Less(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	if len(keys) > ksize {
		keys = keys[:ksize]
	}

	out := make([]*change.Change, len(keys))
	for i, k := range keys {
		out[i] = bucket[k].change
	}
	return out
}

// Cull implements §4.7's cull(): compute, for every stored entry, the
// PoW-weighted distance from this node to the closer of its two keys,
// sort ascending, and retain only the first maxEntries.
func (s *localStore) Cull(maxEntries int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.byKey) <= maxEntries {
		return
	}

	entries := make([]*entry, 0, len(s.byKey))
	for _, e := range s.byKey {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return weightedDistance(entries[i], s.nodeID).Cmp(weightedDistance(entries[j], s.nodeID)) < 0
	})

	survivors := entries[:maxEntries]
	keep := make(map[NodeID]bool, len(survivors))
	for _, e := range survivors {
		keep[e.key] = true
	}

	for key, e := range s.byKey {
		if !keep[key] {
			delete(s.byKey, key)
			if bucket := s.byAddress[e.addressKey]; bucket != nil {
				delete(bucket, key)
				if len(bucket) == 0 {
					delete(s.byAddress, e.addressKey)
				}
			}
		}
	}
}

// weightedDistance is min(distance(key,node_id),
// distance(address_key,node_id)) / 2^difficulty, as a big.Float so the
// 160-bit distance divides cleanly regardless of magnitude.
func weightedDistance(e *entry, nodeID NodeID) *big.Float {
	keyDist := Distance(e.key, nodeID)
	addrDist := Distance(e.addressKey, nodeID)

	closer := keyDist
	if addrDist.Less(keyDist) {
		closer = addrDist
	}

	numerator := new(big.Float).SetInt(new(big.Int).SetBytes(closer[:]))
	divisor := big.NewFloat(math.Pow(2, e.difficulty))
	return new(big.Float).Quo(numerator, divisor)
}

// Len returns the number of stored entries.
func (s *localStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}
