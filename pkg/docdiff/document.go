// Package docdiff replays Change chains into typed Documents and
// computes the Operation needed to move a document from one state to
// another (§4.3).
package docdiff

import "sync"

// Document is a typed record materialized from a chain of Changes.
// Concrete implementations (Identity, GenericDocument) wrap a plain
// field dictionary and know their own doctype name.
type Document interface {
	// Doctype returns this document's fully-qualified "module:ClassName"
	// name.
	Doctype() string
	// Fields returns the flat dictionary this document was built from,
	// the form MakeDiff/ApplyDiffs operate on.
	Fields() map[string]interface{}
}

// Constructor builds a Document of a registered doctype from its final
// field dictionary.
type Constructor func(fields map[string]interface{}) Document

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// RegisterDoctype associates a doctype name with the constructor that
// turns a replayed field dictionary into a typed Document. Call during
// package init; registration is not safe to race against BuildDocument.
func RegisterDoctype(doctype string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[doctype] = ctor
}

// lookupConstructor returns the constructor registered for doctype.
func lookupConstructor(doctype string) (Constructor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[doctype]
	return ctor, ok
}

func init() {
	RegisterDoctype("guarantor.schemas:Identity", func(fields map[string]interface{}) Document {
		return newIdentity(fields)
	})
	RegisterDoctype("guarantor.schemas:GenericDocument", func(fields map[string]interface{}) Document {
		return newGenericDocument(fields)
	})
}
