package triple_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/triple"
)

func TestKeysForArtifactFieldsMatchSource(t *testing.T) {
	entity := triple.NewEntityPart("did:key:zDan")
	art := triple.Artifact{The: "email", Of: entity, Is: triple.StringValue("dan@example.com")}

	ek, ak, vk, err := triple.KeysForArtifact(art)
	require.NoError(t, err)

	require.Equal(t, entity, ek.Entity())
	require.Equal(t, "email", ek.Attribute().String())
	require.Equal(t, triple.TypeString, ek.ValueType())

	require.Equal(t, "email", ak.Attribute().String())
	require.Equal(t, entity, ak.Entity())

	require.Equal(t, triple.TypeString, vk.ValueType())
	require.Equal(t, "email", vk.Attribute().String())
	require.Equal(t, entity, vk.Entity())
	require.Equal(t, triple.NewValueReferencePart(art.Is), vk.ValueReference())
}

func TestSelectorRoutesToMostConstrainedIndex(t *testing.T) {
	require.Equal(t, triple.IndexEntity, (triple.Selector{Entity: "did:key:zEve"}).Route())
	require.Equal(t, triple.IndexValue, (triple.Selector{Value: triple.StringValue("x")}).Route())
	require.Equal(t, triple.IndexAttribute, (triple.Selector{Attribute: "name"}).Route())
	require.Equal(t, triple.IndexAttribute, (triple.Selector{}).Route())

	// Entity always wins even when a value constraint is also set.
	sel := triple.Selector{Entity: "did:key:zEve", Value: triple.StringValue("x")}
	require.Equal(t, triple.IndexEntity, sel.Route())
}

func TestSelectorMatches(t *testing.T) {
	entity := triple.NewEntityPart("did:key:zFay")
	art := triple.Artifact{The: "role", Of: entity, Is: triple.StringValue("admin")}

	require.True(t, (triple.Selector{Entity: "did:key:zFay"}).Matches(art))
	require.False(t, (triple.Selector{Entity: "did:key:zOther"}).Matches(art))
	require.True(t, (triple.Selector{Attribute: "role"}).Matches(art))
	require.True(t, (triple.Selector{Value: triple.StringValue("admin")}).Matches(art))
	require.False(t, (triple.Selector{Value: triple.StringValue("user")}).Matches(art))
}
