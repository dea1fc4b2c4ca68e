package dht

import (
	"context"
	"sort"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/google/uuid"

	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto"
)

// DefaultKSize and DefaultAlpha are the classic Kademlia bucket size
// and lookup concurrency §4.7 inherits without modification.
const (
	DefaultKSize = 20
	DefaultAlpha = 3
)

// Node is one participant in the storage overlay.
type Node struct {
	id       NodeID
	ksize    int
	alpha    int
	store    *localStore
	peers    map[NodeID]Peer
	log      hclog.Logger
	newRetry func() backoff.BackOff
}

// Option configures a Node at construction.
type Option func(*Node)

// WithKSize overrides the bucket size (default DefaultKSize).
func WithKSize(k int) Option { return func(n *Node) { n.ksize = k } }

// WithAlpha overrides the lookup concurrency (default DefaultAlpha).
func WithAlpha(a int) Option { return func(n *Node) { n.alpha = a } }

// WithLogger sets the structured logger used for overlay diagnostics.
func WithLogger(l hclog.Logger) Option { return func(n *Node) { n.log = l } }

// NewNode constructs a Node identified by id, validating incoming
// stores with verifier.
func NewNode(id NodeID, verifier fabriccrypto.Verifier, opts ...Option) *Node {
	n := &Node{
		id:    id,
		ksize: DefaultKSize,
		alpha: DefaultAlpha,
		store: newLocalStore(id, verifier),
		peers: map[NodeID]Peer{},
		log:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.newRetry == nil {
		n.newRetry = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = defaultRetryInterval
			b.Multiplier = 2
			b.MaxElapsedTime = 0
			return backoff.WithMaxRetries(b, defaultMaxRetries)
		}
	}
	return n
}

// ID returns this node's keyspace identifier.
func (n *Node) ID() NodeID { return n.id }

// AddPeer registers a known peer for propagation and lookups.
func (n *Node) AddPeer(p Peer) {
	n.peers[p.ID()] = p
}

// closestPeers returns up to count known peers ordered by ascending
// distance to target.
func (n *Node) closestPeers(target NodeID, count int) []Peer {
	peers := make([]Peer, 0, len(n.peers))
	for _, p := range n.peers {
		peers = append(peers, p)
	}
	sort.Slice(peers, func(i, j int) bool {
		return DistanceLess(Distance(peers[i].ID(), target), Distance(peers[j].ID(), target))
	})
	if len(peers) > count {
		peers = peers[:count]
	}
	return peers
}

// Set implements §4.7's set(key, value) for this node's own local
// store; used both by direct local writes and as the target of an
// incoming network Store RPC.
func (n *Node) Set(key NodeID, payload []byte) {
	n.store.Set(key, payload)
}

// Store implements the Peer interface directly, so a *Node can be
// placed straight into another Node's peer table with no adapter type.
func (n *Node) Store(_ context.Context, key NodeID, payload []byte) error {
	n.store.Set(key, payload)
	return nil
}

// Get implements §4.7's get(key) against this node's local store.
func (n *Node) Get(key NodeID) (*change.Change, bool) {
	return n.store.Get(key)
}

// GetChanges implements §4.7's get_changes(address_digest, after_key?)
// against this node's local store, and as the Peer interface method
// remote callers invoke over the RPC `get_changes`.
func (n *Node) GetChanges(_ context.Context, addressDigest NodeID, afterKey *NodeID, ksize int) ([]*change.Change, error) {
	if ksize <= 0 {
		ksize = n.ksize
	}
	return n.store.GetChanges(addressDigest, afterKey, ksize), nil
}

// Cull implements §4.7's cull(). Set, Store and Publish do not call it;
// entries are evicted only when a caller invokes Cull.
func (n *Node) Cull(maxEntries int) {
	n.store.Cull(maxEntries)
}

// Len returns the number of entries currently held locally.
func (n *Node) Len() int {
	return n.store.Len()
}

// Publish implements the §4.7 protocol augmentation: store locally,
// then propagate to the ksize peers closest to SHA1(change_id) AND the
// ksize peers closest to SHA1(change.address), so the change becomes
// reachable both by its own hash and by address-scoped enumeration.
// Network failures at individual peers are aggregated but non-fatal;
// Publish only returns ErrNetwork when peers are known and none of them
// acknowledged the store.
func (n *Node) Publish(ctx context.Context, c *change.Change) (acked int, err error) {
	payload, dumpErr := change.DumpsChange(c)
	if dumpErr != nil {
		return 0, &Error{Op: "Publish", Err: dumpErr}
	}

	key := HashKey([]byte(c.ChangeID.String()))
	addressKey := HashKey([]byte(c.Address.String()))
	n.store.Set(key, payload)

	targets := dedupePeers(append(n.closestPeers(key, n.ksize), n.closestPeers(addressKey, n.ksize)...))
	if len(targets) == 0 {
		return 0, nil
	}

	var merr *multierror.Error
	requestID := uuid.NewString()
	for _, p := range targets {
		if storeErr := n.retryStore(ctx, p, key, payload); storeErr != nil {
			n.log.Warn("publish: peer store failed", "request_id", requestID, "peer", p.ID().String(), "error", storeErr)
			merr = multierror.Append(merr, &Error{Op: "Publish", Err: ErrNetwork, Msg: p.ID().String() + ": " + storeErr.Error()})
			continue
		}
		acked++
	}

	if acked == 0 {
		return 0, merr.ErrorOrNil()
	}
	return acked, nil
}

// retryStore wraps a single peer Store RPC in the node's retry policy.
func (n *Node) retryStore(ctx context.Context, p Peer, key NodeID, payload []byte) error {
	return backoff.Retry(func() error {
		return p.Store(ctx, key, payload)
	}, backoff.WithContext(n.newRetry(), ctx))
}

func dedupePeers(peers []Peer) []Peer {
	seen := make(map[NodeID]bool, len(peers))
	out := make([]Peer, 0, len(peers))
	for _, p := range peers {
		if seen[p.ID()] {
			continue
		}
		seen[p.ID()] = true
		out = append(out, p)
	}
	return out
}
