// Package docsearch is a secondary, enrichment-only full-text index
// layered on top of the DAL: the prefix index in pkg/searchindex is the
// spec-required lookup structure, but documents also carry free-text
// bodies (Identity and GenericDocument property bags) worth a real
// full-text engine. Callers that don't need full-text search can ignore
// this package entirely.
package docsearch

import "context"

// Hit is one full-text match.
type Hit struct {
	ChangeID string
	Score    float64
}

// Index is the full-text search contract this package exposes; Bleve is
// the default implementation (pkg/docsearch/bleve).
type Index interface {
	// IndexDocument adds or replaces the full-text body for a change_id.
	IndexDocument(ctx context.Context, changeID, doctype string, fields map[string]interface{}) error
	// Search runs a free-text query and returns matches ranked by score.
	Search(ctx context.Context, doctype, query string, limit int) ([]Hit, error)
	// Close releases the index's resources.
	Close() error
}
