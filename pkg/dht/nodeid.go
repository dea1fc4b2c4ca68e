// Package dht is the Kademlia-style storage overlay (§4.7): a 160-bit
// SHA-1 keyspace, dual-keyed storage (by change-hash key and by
// author-address key), and proof-of-work-weighted eviction on top of
// the usual get/set/find-node contract.
package dht

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // keyspace hash, not a security boundary
	"encoding/hex"
)

// IDLength is the keyspace width in bytes: SHA-1's 160 bits.
const IDLength = sha1.Size

// NodeID is a point in the 160-bit Kademlia keyspace.
type NodeID [IDLength]byte

// HashKey derives the keyspace key for an arbitrary byte string, e.g.
// SHA1(change_id) or SHA1(address) (§4.7).
func HashKey(data []byte) NodeID {
	return NodeID(sha1.Sum(data)) //nolint:gosec
}

// String renders the id as lowercase hex.
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// Less orders two ids by their big-endian byte value, used for
// get_changes's "ascending key order" and for cursor comparisons.
func (id NodeID) Less(other NodeID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// Distance is the XOR (Kademlia) distance between two ids.
func Distance(a, b NodeID) NodeID {
	var d NodeID
	for i := range d {
		d[i] = a[i] ^ b[i]
	}
	return d
}

// DistanceLess reports whether distance a is strictly smaller than
// distance b, comparing the XOR results as big-endian unsigned
// integers.
func DistanceLess(a, b NodeID) bool {
	return a.Less(b)
}
