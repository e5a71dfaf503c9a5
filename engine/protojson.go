package engine

import (
	"bytes"
	"encoding/json"
)

// ProtoJson is the partially-materialized result tree of §3: a fully
// resolved PureJson leaf, a Deferred hole awaiting a sub-mapping, or one
// of the two composite shapes. All four tags are closed (isProtoJson).
type ProtoJson interface {
	isProtoJson()
}

// PureJson is a fully resolved JSON value — no further work needed.
type PureJson struct {
	Value Json
}

func (*PureJson) isProtoJson() {}

// DeferredJson is a hole in the proto tree: Name will be resolved by
// some Mapping's Subobject entry for (Tpe, Name), which will run Query
// against a cursor derived from Cursor (§4.4).
type DeferredJson struct {
	Cursor Cursor
	Tpe    Type
	Name   string
	Query  Query

	// TargetMapping pins completion to a specific Mapping (set by a
	// Component node crossing an explicit boundary); nil means
	// completion should look the field up on the ambient Mapping via
	// LookupSubobject, as an ordinary unresolved Select does.
	TargetMapping Mapping
}

func (*DeferredJson) isProtoJson() {}

// ProtoField is one named child of a ProtoObject, carried as a slice (not
// a map) so that field emission order (§5) survives normalization and
// completion.
type ProtoField struct {
	Name  string
	Value ProtoJson
}

// ProtoObject is a partially-materialized object: each field may itself
// be pure, deferred, or composite.
type ProtoObject struct {
	Fields []ProtoField
}

func (*ProtoObject) isProtoJson() {}

// ProtoArray is a partially-materialized list.
type ProtoArray struct {
	Elements []ProtoJson
}

func (*ProtoArray) isProtoJson() {}

// FromFields builds a ProtoObject, collapsing to PureJson when every
// field is already pure (§8 law 5: proto purity).
func FromFields(fields []ProtoField) ProtoJson {
	om := NewOrderedMap()
	allPure := true
	for _, f := range fields {
		pj, ok := f.Value.(*PureJson)
		if !ok {
			allPure = false
			continue
		}
		om.Set(f.Name, pj.Value)
	}
	if allPure {
		return &PureJson{Value: om}
	}
	return &ProtoObject{Fields: fields}
}

// FromValues builds a ProtoArray, collapsing to PureJson when every
// element is already pure.
func FromValues(elements []ProtoJson) ProtoJson {
	values := make([]Json, 0, len(elements))
	allPure := true
	for _, e := range elements {
		pj, ok := e.(*PureJson)
		if !ok {
			allPure = false
			continue
		}
		values = append(values, pj.Value)
	}
	if allPure {
		return &PureJson{Value: values}
	}
	return &ProtoArray{Elements: elements}
}

// OrderedMap is a JSON object that preserves field insertion order,
// needed because plain map[string]interface{} marshaling in Go sorts
// keys alphabetically, which would violate the field-emission-order
// guarantee of §5.
type OrderedMap struct {
	keys   []string
	values map[string]Json
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]Json)}
}

func (m *OrderedMap) Set(key string, value Json) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *OrderedMap) Get(key string) (Json, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap) Keys() []string { return m.keys }

func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
