package dht

import (
	"context"

	"github.com/guarantor-network/fabric/pkg/change"
)

// Peer is a remote participant this node can push stores to and query
// get_changes on. A production transport implements this over a real
// wire protocol; for tests and single-process bring-up, *Node itself
// satisfies Peer, so one Node can sit directly in another Node's peer
// table with no separate adapter type.
type Peer interface {
	ID() NodeID
	Store(ctx context.Context, key NodeID, payload []byte) error
	GetChanges(ctx context.Context, addressDigest NodeID, afterKey *NodeID, ksize int) ([]*change.Change, error)
}
