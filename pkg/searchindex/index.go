// Package searchindex is the in-memory prefix-search index over
// Document fields (§4.5): one sorted list of IndexItem per declared
// (doctype, field) pair, plus a pending buffer merged in at query time.
package searchindex

import (
	"sort"
	"strings"
	"sync"

	"github.com/guarantor-network/fabric/pkg/change"
)

// IndexItem is a single (stem, change_id) entry.
type IndexItem struct {
	Stem     string
	ChangeID change.ChangeID
}

// fieldKey identifies one (doctype, field_path) declared index.
type fieldKey struct {
	doctype string
	field   string
}

// sortedList holds the committed, sorted entries for one fieldKey plus
// a pending buffer of entries appended since the last query.
type sortedList struct {
	items   []IndexItem
	pending []IndexItem
}

// Index is the engine described by §4.5. The zero value is not usable;
// construct with New.
type Index struct {
	mu       sync.RWMutex
	declared map[string][]string // doctype -> field paths
	lists    map[fieldKey]*sortedList
}

// New returns an empty Index with no declared fields.
func New() *Index {
	return &Index{
		declared: map[string][]string{},
		lists:    map[fieldKey]*sortedList{},
	}
}

// Declare registers the field paths to index for a doctype. Calling it
// again for the same doctype replaces the prior declaration.
func (idx *Index) Declare(doctype string, fieldPaths ...string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.declared[doctype] = append([]string(nil), fieldPaths...)
	for _, f := range fieldPaths {
		key := fieldKey{doctype: doctype, field: f}
		if _, ok := idx.lists[key]; !ok {
			idx.lists[key] = &sortedList{}
		}
	}
}

// UpdateIndexes extracts each declared field from fields, expands it to
// a set of terms, and appends (term, changeID) to the pending buffer for
// every declared (doctype, field) pair (§4.5).
func (idx *Index) UpdateIndexes(doctype string, changeID change.ChangeID, fields map[string]interface{}) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, fieldPath := range idx.declared[doctype] {
		value, ok := extractField(fields, fieldPath)
		if !ok {
			continue
		}
		key := fieldKey{doctype: doctype, field: fieldPath}
		list := idx.lists[key]
		for _, term := range expandTerms(value) {
			list.pending = append(list.pending, IndexItem{Stem: term, ChangeID: changeID})
		}
	}
}

// QueryIndex merges any pending items into the sorted list for each
// candidate field, then returns every item whose stem starts with
// searchTerm, in ascending (stem, change_id) order. An empty fields
// slice searches every field declared for doctype. Declaring no fields
// for doctype is ErrInvalidQuery.
func (idx *Index) QueryIndex(doctype, searchTerm string, fields []string) ([]IndexItem, error) {
	idx.mu.Lock()
	candidates := fields
	if len(candidates) == 0 {
		candidates = idx.declared[doctype]
	}
	if len(candidates) == 0 {
		idx.mu.Unlock()
		return nil, &Error{Op: "QueryIndex", Err: ErrInvalidQuery, Msg: "no fields declared for doctype " + doctype}
	}

	var merged []IndexItem
	for _, f := range candidates {
		key := fieldKey{doctype: doctype, field: f}
		list := idx.lists[key]
		if list == nil {
			continue
		}
		idx.mergeLocked(list)
		merged = append(merged, prefixMatches(list.items, searchTerm)...)
	}
	idx.mu.Unlock()

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Stem != merged[j].Stem {
			return merged[i].Stem < merged[j].Stem
		}
		return merged[i].ChangeID.String() < merged[j].ChangeID.String()
	})
	return merged, nil
}

// mergeLocked folds list.pending into list.items, sorted, and clears
// pending. Callers must hold idx.mu for writing.
func (idx *Index) mergeLocked(list *sortedList) {
	if len(list.pending) == 0 {
		return
	}
	list.items = append(list.items, list.pending...)
	list.pending = nil
	sort.Slice(list.items, func(i, j int) bool {
		if list.items[i].Stem != list.items[j].Stem {
			return list.items[i].Stem < list.items[j].Stem
		}
		return list.items[i].ChangeID.String() < list.items[j].ChangeID.String()
	})
}

// prefixMatches returns the contiguous run of sorted items whose Stem
// starts with prefix, found via a lower-bound binary search and then a
// linear scan that stops at the first non-match (§4.5's "stop at the
// first non-prefix match").
func prefixMatches(items []IndexItem, prefix string) []IndexItem {
	lower := sort.Search(len(items), func(i int) bool {
		return items[i].Stem >= prefix
	})

	var out []IndexItem
	for i := lower; i < len(items); i++ {
		if !strings.HasPrefix(items[i].Stem, prefix) {
			break
		}
		out = append(out, items[i])
	}
	return out
}

// extractField navigates a dotted field path into a nested
// map[string]interface{}, returning the leaf string value.
func extractField(fields map[string]interface{}, path string) (string, bool) {
	segments := strings.Split(path, ".")
	var current interface{} = fields
	for _, seg := range segments {
		m, ok := current.(map[string]interface{})
		if !ok {
			return "", false
		}
		current, ok = m[seg]
		if !ok {
			return "", false
		}
	}
	s, ok := current.(string)
	return s, ok
}

// expandTerms expands a raw field value into the term set §4.5
// specifies: the raw value, its lowercase form (if different), the
// domain part of an "@"-separated value, and every whitespace token
// beyond the first.
func expandTerms(value string) []string {
	terms := []string{value}

	lower := strings.ToLower(value)
	if lower != value {
		terms = append(terms, lower)
	}

	if at := strings.IndexByte(value, '@'); at >= 0 && at+1 < len(value) {
		terms = append(terms, value[at+1:])
	}

	fields := strings.Fields(value)
	if len(fields) > 1 {
		terms = append(terms, fields[1:]...)
	}

	return dedupe(terms)
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
