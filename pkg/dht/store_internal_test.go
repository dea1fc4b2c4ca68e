package dht

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guarantor-network/fabric/pkg/change"
)

// TestCull_PrefersHighestDifficulty is scenario S5, exercised as a
// white-box test against localStore so the author-address distance can
// be held constant across every entry while only difficulty varies
// (constructing 100 genuinely mined, verifiably signed Changes with
// precisely controlled keyspace distances is not practical; the
// eviction math under test lives entirely in weightedDistance/Cull).
func TestCull_PrefersHighestDifficulty(t *testing.T) {
	nodeID := NodeID{}
	addressKey := NodeID{0x01} // identical for every entry: constant address distance

	s := newLocalStore(nodeID, nil)

	for difficulty := 1; difficulty <= 10; difficulty++ {
		for i := 0; i < 10; i++ {
			var key NodeID
			// key's leading byte always exceeds addressKey's, so
			// dist(key,nodeID) > dist(addressKey,nodeID) lexicographically
			// and the min() in weightedDistance always resolves to the
			// constant address distance, isolating difficulty as the only
			// variable.
			key[0] = 0x02
			key[1] = byte(difficulty)
			key[2] = byte(i)

			e := &entry{
				key:        key,
				addressKey: addressKey,
				change:     &change.Change{ChangeID: change.NewChangeID("0000000000000000000000000000000000000000000000000000000000000000"[:64])},
				difficulty: float64(difficulty),
			}
			s.byKey[key] = e
			if s.byAddress[addressKey] == nil {
				s.byAddress[addressKey] = map[NodeID]*entry{}
			}
			s.byAddress[addressKey][key] = e
		}
	}
	require.Equal(t, 100, s.Len())

	s.Cull(10)
	require.Equal(t, 10, s.Len())

	for _, e := range s.byKey {
		require.Equal(t, 10.0, e.difficulty)
	}
}

func TestWeightedDistance_HigherDifficultyIsSmaller(t *testing.T) {
	nodeID := NodeID{}
	key := NodeID{0x01}
	weak := &entry{key: key, addressKey: NodeID{0xaa}, difficulty: 1}
	strong := &entry{key: key, addressKey: NodeID{0xaa}, difficulty: 10}

	require.True(t, weightedDistance(strong, nodeID).Cmp(weightedDistance(weak, nodeID)) < 0)
}
