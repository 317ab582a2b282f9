package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialog-db/dialog-db-sub004/triple"
)

func TestValueFromJSONRoundTripsEachSupportedType(t *testing.T) {
	cases := []struct {
		json string
		want triple.Value
	}{
		{`{"type":"string","data":"hello"}`, triple.StringValue("hello")},
		{`{"type":"symbol","data":"db/type"}`, triple.SymbolValue("db/type")},
		{`{"type":"bool","data":true}`, triple.BoolValue(true)},
		{`{"type":"int64","data":-42}`, triple.Int64Value(-42)},
		{`{"type":"uint64","data":42}`, triple.Uint64Value(42)},
		{`{"type":"float64","data":1.5}`, triple.Float64Value(1.5)},
		{`{"type":"bytes","data":"aGVsbG8="}`, triple.BytesValue("hello")},
	}
	for _, c := range cases {
		var vj valueJSON
		require.NoError(t, json.Unmarshal([]byte(c.json), &vj))
		got, err := valueFromJSON(vj)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func TestValueFromJSONRejectsUnknownType(t *testing.T) {
	_, err := valueFromJSON(valueJSON{Type: "nonsense"})
	require.Error(t, err)
}

func TestValueToJSONThenFromJSONRoundTrips(t *testing.T) {
	original := triple.StringValue("round trip")
	decoded, err := valueFromJSON(valueToJSON(original))
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestArtifactJSONToArtifactSetsEntityPart(t *testing.T) {
	aj := artifactJSON{Entity: "alice", Attribute: "name", Value: valueJSON{Type: "string", Data: []byte(`"Alice"`)}}
	a, err := aj.toArtifact()
	require.NoError(t, err)
	require.Equal(t, "name", a.The)
	require.Equal(t, triple.NewEntityPart("alice"), a.Of)
	require.Equal(t, triple.StringValue("Alice"), a.Is)
}

func TestEntityPartDisplayRoundTripsShortEntity(t *testing.T) {
	part := triple.NewEntityPart("alice")
	require.Equal(t, "alice", entityPartDisplay(part))
}

func TestSelectorFileToSelectorLeavesUnsetFieldsUnconstrained(t *testing.T) {
	sel, err := selectorFile{Attribute: "name"}.toSelector()
	require.NoError(t, err)
	require.Equal(t, "", sel.Entity)
	require.Equal(t, "name", sel.Attribute)
	require.Nil(t, sel.Value)
}
