package homie_test

import (
	"testing"

	"homiegraf/internal/homie"
)

func TestMappingTable_PropertyWinsOverDatatype(t *testing.T) {
	table := homie.NewMappingTable()
	table.AddDatatypeMapping(homie.DatatypeEnum, homie.EnumMap{"low": 1})
	table.AddPropertyMapping("therm1", "main", "mode", homie.EnumMap{"low": 10})

	m := table.Resolve("therm1", "main", "mode", homie.DatatypeEnum)
	if m["low"] != 10 {
		t.Errorf("Resolve() low = %v, want property mapping (10) over datatype mapping", m["low"])
	}

	// Other properties of the same datatype still get the datatype mapping.
	m = table.Resolve("therm1", "main", "fan", homie.DatatypeEnum)
	if m["low"] != 1 {
		t.Errorf("Resolve() low = %v, want datatype mapping (1)", m["low"])
	}
}

func TestMappingTable_NoMatch(t *testing.T) {
	table := homie.NewMappingTable()
	table.AddDatatypeMapping(homie.DatatypeEnum, homie.EnumMap{"low": 1})

	if m := table.Resolve("d", "n", "p", homie.DatatypeString); m != nil {
		t.Errorf("Resolve() = %v, want nil for unmapped datatype", m)
	}
}

func TestMappingTable_NilSafe(t *testing.T) {
	var table *homie.MappingTable
	if m := table.Resolve("d", "n", "p", homie.DatatypeEnum); m != nil {
		t.Errorf("nil table Resolve() = %v, want nil", m)
	}
	if table.Len() != 0 {
		t.Errorf("nil table Len() = %d, want 0", table.Len())
	}
}
