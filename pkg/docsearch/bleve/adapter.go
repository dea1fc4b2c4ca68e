// Package bleve is the default docsearch.Index, an embedded full-text
// engine grounded on this system's Bleve search adapter pattern: a
// single document mapping over a flattened field bag, opened once at
// startup and reused for every index/search call.
package bleve

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/guarantor-network/fabric/pkg/docsearch"
)

// Adapter implements docsearch.Index over a single Bleve index rooted at
// Path, mixing every doctype into one corpus and filtering by a
// doctype term at query time.
type Adapter struct {
	index bleve.Index
	path  string
}

var _ docsearch.Index = (*Adapter)(nil)

// document is the flattened shape indexed for every change.
type document struct {
	Doctype string                 `json:"doctype"`
	Fields  map[string]interface{} `json:"fields"`
}

// Open opens or creates the Bleve index at path.
func Open(path string) (*Adapter, error) {
	idx, err := openOrCreate(path)
	if err != nil {
		return nil, err
	}
	return &Adapter{index: idx, path: path}, nil
}

func openOrCreate(path string) (bleve.Index, error) {
	if _, err := os.Stat(path); err == nil {
		return bleve.Open(path)
	}
	return bleve.New(path, documentMapping())
}

func documentMapping() mapping.IndexMapping {
	fieldMapping := bleve.NewTextFieldMapping()
	docMapping := bleve.NewDocumentMapping()
	docMapping.DefaultAnalyzer = "standard"
	docMapping.AddFieldMappingsAt("doctype", bleve.NewKeywordFieldMapping())
	docMapping.DefaultMapping = docMapping
	_ = fieldMapping

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// IndexDocument implements docsearch.Index.
func (a *Adapter) IndexDocument(_ context.Context, changeID, doctype string, fields map[string]interface{}) error {
	return a.index.Index(changeID, document{Doctype: doctype, Fields: fields})
}

// Search implements docsearch.Index.
func (a *Adapter) Search(_ context.Context, doctype, queryString string, limit int) ([]docsearch.Hit, error) {
	textQuery := bleve.NewMatchQuery(queryString)
	doctypeQuery := bleve.NewTermQuery(doctype)
	doctypeQuery.SetField("doctype")

	conjunction := bleve.NewConjunctionQuery(textQuery, doctypeQuery)
	req := bleve.NewSearchRequestOptions(conjunction, limit, 0, false)

	result, err := a.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	hits := make([]docsearch.Hit, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = docsearch.Hit{ChangeID: h.ID, Score: h.Score}
	}
	return hits, nil
}

// Close implements docsearch.Index.
func (a *Adapter) Close() error {
	return a.index.Close()
}
