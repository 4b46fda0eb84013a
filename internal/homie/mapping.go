package homie

// EnumMap maps string literals to their numeric substitutes, e.g.
// {standby: 0, low: 1, high: 2}. A nil EnumMap means no remapping.
type EnumMap map[string]float64

// MappingTable resolves which EnumMap applies to a property update.
// Mappings are keyed either by the exact (device, node, property) triple
// or by datatype name; a property match always wins over a datatype match.
//
// The table is built once at startup from configuration and is read-only
// afterwards, so it needs no locking.
type MappingTable struct {
	byProperty map[propertyKey]EnumMap
	byDatatype map[Datatype]EnumMap
}

// NewMappingTable creates an empty mapping table.
func NewMappingTable() *MappingTable {
	return &MappingTable{
		byProperty: make(map[propertyKey]EnumMap),
		byDatatype: make(map[Datatype]EnumMap),
	}
}

// AddPropertyMapping registers a mapping for one exact property.
// Later registrations for the same property replace earlier ones.
func (t *MappingTable) AddPropertyMapping(device, node, property string, m EnumMap) {
	t.byProperty[propertyKey{device, node, property}] = m
}

// AddDatatypeMapping registers a mapping for every property of the given
// declared datatype.
func (t *MappingTable) AddDatatypeMapping(datatype Datatype, m EnumMap) {
	t.byDatatype[datatype] = m
}

// Resolve returns the mapping for a property update, or nil if none is
// configured. Safe to call on a nil table.
func (t *MappingTable) Resolve(device, node, property string, datatype Datatype) EnumMap {
	if t == nil {
		return nil
	}
	if m, ok := t.byProperty[propertyKey{device, node, property}]; ok {
		return m
	}
	return t.byDatatype[datatype]
}

// Len returns the number of registered mappings (for startup logging).
func (t *MappingTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byProperty) + len(t.byDatatype)
}
