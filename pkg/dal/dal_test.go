package dal_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/changestore"
	"github.com/guarantor-network/fabric/pkg/dal"
	"github.com/guarantor-network/fabric/pkg/docdiff"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto/secp256k1"
	"github.com/guarantor-network/fabric/pkg/searchindex"
)

const dalTestWIF = "5KYZdUEo39z3FPrtuX2QbbwGnNP5zTd7yyr2SC1j299sBCnWjss"

func newTestDAL(t *testing.T) *dal.DAL {
	t.Helper()
	key, err := secp256k1.ParseWIF(dalTestWIF)
	require.NoError(t, err)

	store, err := changestore.Open(afero.NewOsFs(), t.TempDir(), secp256k1.NewVerifier())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	idx := searchindex.New()
	idx.Declare("guarantor.schemas:GenericDocument", "title")

	return dal.New(store, idx, secp256k1.NewVerifier(), dal.WithAuthoringKey(key), dal.WithDifficulty(1))
}

func TestDAL_NewUpdateSaveGetRoundTrip(t *testing.T) {
	d := newTestDAL(t)
	ctx := context.Background()

	w, err := d.NewDocument(ctx, "guarantor.schemas:GenericDocument", map[string]interface{}{
		"title": "Hello, World!",
		"props": map[string]interface{}{},
	})
	require.NoError(t, err)
	require.Empty(t, w.Committed)
	require.Len(t, w.Staged, 1)

	w, err = d.Save(w)
	require.NoError(t, err)
	require.Len(t, w.Committed, 1)
	require.Empty(t, w.Staged)

	head := w.Head()

	w, err = d.Update(ctx, w, "guarantor.schemas:GenericDocument", map[string]interface{}{
		"title": "Hallo, Welt!",
		"props": map[string]interface{}{},
	})
	require.NoError(t, err)
	w, err = d.Save(w)
	require.NoError(t, err)

	reloaded, err := d.Get(w.Head())
	require.NoError(t, err)
	generic := reloaded.Doc.(docdiff.GenericDocument)
	require.Equal(t, "Hallo, Welt!", generic.Title)

	require.NotEqual(t, head.String(), w.Head().String())
}

func TestDAL_FindOne_ReturnsHighestRev(t *testing.T) {
	d := newTestDAL(t)
	ctx := context.Background()

	w, err := d.NewDocument(ctx, "guarantor.schemas:GenericDocument", map[string]interface{}{
		"title": "matchable",
		"props": map[string]interface{}{},
	})
	require.NoError(t, err)
	w, err = d.Save(w)
	require.NoError(t, err)

	w, err = d.Update(ctx, w, "guarantor.schemas:GenericDocument", map[string]interface{}{
		"title": "matchable",
		"props": map[string]interface{}{"n": 2},
	})
	require.NoError(t, err)
	w, err = d.Save(w)
	require.NoError(t, err)

	found, err := d.FindOne("guarantor.schemas:GenericDocument", map[string]string{"title": "matchable"})
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, w.Head().String(), found.Head().String())
}

func TestDAL_Get_MissingHeadIsCorruptChain(t *testing.T) {
	d := newTestDAL(t)
	missing := change.NewChangeID("5555555555555555555555555555555555555555555555555555555555555555"[:64])

	_, err := d.Get(missing)
	require.ErrorIs(t, err, dal.ErrCorruptChain)
}

func TestDAL_NewDocument_RequiresAuthoringKey(t *testing.T) {
	store, err := changestore.Open(afero.NewOsFs(), t.TempDir(), secp256k1.NewVerifier())
	require.NoError(t, err)
	defer store.Close()

	d := dal.New(store, searchindex.New(), secp256k1.NewVerifier())
	_, err = d.NewDocument(context.Background(), "guarantor.schemas:GenericDocument", map[string]interface{}{})
	require.ErrorIs(t, err, dal.ErrNoAuthoringKey)
}
