package changestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/changestore"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto/secp256k1"
)

const storeTestWIF = "5KYZdUEo39z3FPrtuX2QbbwGnNP5zTd7yyr2SC1j299sBCnWjss"

func openTestStore(t *testing.T) *changestore.BoltStore {
	t.Helper()
	dir := t.TempDir()
	s, err := changestore.Open(afero.NewOsFs(), dir, secp256k1.NewVerifier())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func makeTestChange(t *testing.T, parentID change.ChangeID, parentRev change.Rev, title string) *change.Change {
	t.Helper()
	key, err := secp256k1.ParseWIF(storeTestWIF)
	require.NoError(t, err)
	c, err := change.MakeChange(context.Background(), key, time.Now(), "guarantor.schemas:GenericDocument", change.OpReset,
		map[string]interface{}{"title": title, "props": map[string]interface{}{}}, parentID, parentRev, 1)
	require.NoError(t, err)
	return c
}

func TestBoltStore_PostGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	c := makeTestChange(t, change.ChangeID{}, change.Rev{}, "hello")

	require.NoError(t, s.Post(c))

	got, err := s.Get(c.ChangeID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.ChangeID.Equal(c.ChangeID))
}

func TestBoltStore_GetMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)
	id, err := change.ParseChangeID("ab00000000000000000000000000000000000000000000000000000000000000"[:64])
	require.NoError(t, err)

	got, err := s.Get(id)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestBoltStore_PostSamePayloadIsNoOp(t *testing.T) {
	s := openTestStore(t)
	c := makeTestChange(t, change.ChangeID{}, change.Rev{}, "hello")

	require.NoError(t, s.Post(c))
	require.NoError(t, s.Post(c))
}

func TestBoltStore_PostConflictingPayloadErrors(t *testing.T) {
	s := openTestStore(t)
	c := makeTestChange(t, change.ChangeID{}, change.Rev{}, "hello")
	require.NoError(t, s.Post(c))

	tampered := *c
	tampered.ProofOfWork = "POWv0$999999$000000000000000"
	err := s.Post(&tampered)
	require.Error(t, err)
}

func TestBoltStore_ReadOnlyRefusesPost(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewOsFs()

	rw, err := changestore.Open(fs, dir, secp256k1.NewVerifier())
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := changestore.Open(fs, dir, secp256k1.NewVerifier(), changestore.ReadOnly())
	require.NoError(t, err)
	defer ro.Close()

	c := makeTestChange(t, change.ChangeID{}, change.Rev{}, "hello")
	err = ro.Post(c)
	require.ErrorIs(t, err, changestore.ErrNotWritable)
}

func TestBoltStore_IterChangesWalksAncestorsAndStopsAtReset(t *testing.T) {
	s := openTestStore(t)

	c1 := makeTestChange(t, change.ChangeID{}, change.Rev{}, "root")
	require.NoError(t, s.Post(c1))
	c2 := makeTestChange(t, c1.ChangeID, c1.Rev, "child")
	require.NoError(t, s.Post(c2))

	// Both changes are resets, so with earlyExit the walk stops right
	// after yielding the head.
	var visited []string
	err := s.IterChanges(c2.ChangeID, true, func(c *change.Change) bool {
		visited = append(visited, c.ChangeID.String())
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []string{c2.ChangeID.String()}, visited)

	// Without earlyExit the walk follows parent_id back to the root.
	visited = nil
	err = s.IterChanges(c2.ChangeID, false, func(c *change.Change) bool {
		visited = append(visited, c.ChangeID.String())
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []string{c2.ChangeID.String(), c1.ChangeID.String()}, visited)
}
