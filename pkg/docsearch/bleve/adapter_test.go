package bleve_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guarantor-network/fabric/pkg/docsearch/bleve"
)

func TestAdapter_IndexAndSearchRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.bleve")
	a, err := bleve.Open(path)
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	err = a.IndexDocument(ctx, "change-1", "guarantor.schemas:GenericDocument", map[string]interface{}{
		"title": "Hello, World!",
	})
	require.NoError(t, err)

	hits, err := a.Search(ctx, "guarantor.schemas:GenericDocument", "Hello", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "change-1", hits[0].ChangeID)
}
