package dht

import "time"

// defaultRetryInterval and defaultMaxRetries are the §4.7 RPC retry
// defaults: 100ms initial backoff doubling each attempt, capped at 5
// retries.
const (
	defaultRetryInterval = 100 * time.Millisecond
	defaultMaxRetries    = 5
)
