package docdiff_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/docdiff"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto/secp256k1"
)

const testWIF = "5KYZdUEo39z3FPrtuX2QbbwGnNP5zTd7yyr2SC1j299sBCnWjss"

// TestBuildDocument_Replay is scenario S3: posting a reset to
// {title:"Hello, World!"} then a reset to {title:"Hallo, Welt!"}
// replays to the latest title.
func TestBuildDocument_Replay(t *testing.T) {
	key, err := secp256k1.ParseWIF(testWIF)
	require.NoError(t, err)

	c1, err := change.MakeChange(context.Background(), key, time.Now(), "guarantor.schemas:GenericDocument", change.OpReset,
		map[string]interface{}{"title": "Hello, World!", "props": map[string]interface{}{}}, change.ChangeID{}, change.Rev{}, 1)
	require.NoError(t, err)

	c2, err := change.MakeChange(context.Background(), key, time.Now().Add(time.Minute), "guarantor.schemas:GenericDocument", change.OpReset,
		map[string]interface{}{"title": "Hallo, Welt!", "props": map[string]interface{}{}}, c1.ChangeID, c1.Rev, 1)
	require.NoError(t, err)

	doc, err := docdiff.BuildDocument([]*change.Change{c1, c2})
	require.NoError(t, err)

	generic, ok := doc.(docdiff.GenericDocument)
	require.True(t, ok)
	require.Equal(t, "Hallo, Welt!", generic.Title)
}

func TestBuildDocument_OutOfOrderInputSortsByRev(t *testing.T) {
	key, err := secp256k1.ParseWIF(testWIF)
	require.NoError(t, err)

	c1, err := change.MakeChange(context.Background(), key, time.Now(), "guarantor.schemas:GenericDocument", change.OpReset,
		map[string]interface{}{"title": "first", "props": map[string]interface{}{}}, change.ChangeID{}, change.Rev{}, 1)
	require.NoError(t, err)

	c2, err := change.MakeChange(context.Background(), key, time.Now().Add(time.Minute), "guarantor.schemas:GenericDocument", change.OpReset,
		map[string]interface{}{"title": "second", "props": map[string]interface{}{}}, c1.ChangeID, c1.Rev, 1)
	require.NoError(t, err)

	doc, err := docdiff.BuildDocument([]*change.Change{c2, c1})
	require.NoError(t, err)

	generic := doc.(docdiff.GenericDocument)
	require.Equal(t, "second", generic.Title)
}

func TestApplyDiffs_UnsupportedOpcodeIsFatal(t *testing.T) {
	_, err := docdiff.ApplyDiffs(map[string]interface{}{}, []change.Operation{
		{Opcode: change.OpDictDiff, Opdata: map[string]interface{}{}},
	})
	require.ErrorIs(t, err, docdiff.ErrUnsupportedOperation)
}

func TestMakeDiff_AlwaysReset(t *testing.T) {
	op := docdiff.MakeDiff(map[string]interface{}{"a": 1}, map[string]interface{}{"a": 2})
	require.Equal(t, change.OpReset, op.Opcode)
	require.Equal(t, map[string]interface{}{"a": 2}, op.Opdata)
}

func TestDocumentsEqual(t *testing.T) {
	a := docdiff.GenericDocument{Title: "x", Props: map[string]interface{}{}}
	b := docdiff.GenericDocument{Title: "x", Props: map[string]interface{}{}}
	require.True(t, docdiff.DocumentsEqual(a, b))

	c := docdiff.GenericDocument{Title: "y", Props: map[string]interface{}{}}
	require.False(t, docdiff.DocumentsEqual(a, c))
}
