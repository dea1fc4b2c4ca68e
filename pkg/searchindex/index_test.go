package searchindex_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/searchindex"
)

func identityFields(name, email string) map[string]interface{} {
	return map[string]interface{}{
		"address": "unused",
		"props": map[string]interface{}{
			"name":  name,
			"email": email,
		},
	}
}

// TestQueryIndex_BobMatchesNameAndEmail is scenario S4.
func TestQueryIndex_BobMatchesNameAndEmail(t *testing.T) {
	idx := searchindex.New()
	idx.Declare("guarantor.schemas:Identity", "props.name", "props.email")

	idA := change.NewChangeID("1111111111111111111111111111111111111111111111111111111111111111"[:64])
	idB := change.NewChangeID("2222222222222222222222222222222222222222222222222222222222222222"[:64])

	idx.UpdateIndexes("guarantor.schemas:Identity", idA, identityFields("Alice", "alice@mail.com"))
	idx.UpdateIndexes("guarantor.schemas:Identity", idB, identityFields("Bob", "bob@mail.com"))

	items, err := idx.QueryIndex("guarantor.schemas:Identity", "bob", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)

	stems := map[string]bool{}
	for _, it := range items {
		require.True(t, it.ChangeID.Equal(idB))
		stems[it.Stem] = true
	}
	require.Equal(t, map[string]bool{"bob": true, "bob@mail.com": true}, stems)
}

func TestQueryIndex_UnknownDoctypeIsInvalidQuery(t *testing.T) {
	idx := searchindex.New()
	_, err := idx.QueryIndex("no.such:Doctype", "x", nil)
	require.ErrorIs(t, err, searchindex.ErrInvalidQuery)
}

func TestQueryIndex_PrefixStopsAtFirstMismatch(t *testing.T) {
	idx := searchindex.New()
	idx.Declare("guarantor.schemas:GenericDocument", "title")

	id1 := change.NewChangeID("3333333333333333333333333333333333333333333333333333333333333333"[:64])
	id2 := change.NewChangeID("4444444444444444444444444444444444444444444444444444444444444444"[:64])

	idx.UpdateIndexes("guarantor.schemas:GenericDocument", id1, map[string]interface{}{"title": "apple pie"})
	idx.UpdateIndexes("guarantor.schemas:GenericDocument", id2, map[string]interface{}{"title": "banana"})

	items, err := idx.QueryIndex("guarantor.schemas:GenericDocument", "app", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "apple pie", items[0].Stem)
}
