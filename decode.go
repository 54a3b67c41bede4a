package amulec

import (
	"fmt"

	"github.com/go-amule/amulec/internal/wire/packet"
	"github.com/go-amule/amulec/internal/wire/tag"
)

// field describes how one entry of a response's tag tree projects onto a
// result record. A scalar field copies a single tag's value; a list field
// collects every child tag matching childTag into an ordered slice.
type field struct {
	tagName  uint16
	name     string
	isList   bool
	childTag uint16
}

func scalarField(tagName uint16, name string) field {
	return field{tagName: tagName, name: name}
}

func listField(tagName uint16, name string, childTag uint16) field {
	return field{tagName: tagName, name: name, isList: true, childTag: childTag}
}

func opcodeIn(op uint8, okOpcodes []uint8) bool {
	for _, o := range okOpcodes {
		if o == op {
			return true
		}
	}
	return false
}

// linearDecode accepts p iff its opcode is in okOpcodes, then projects a
// tag_name -> field_name mapping over p's top-level tags.
func linearDecode(p *packet.Packet, okOpcodes []uint8, fields []field) (map[string]any, bool) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if t := p.Tag(f.tagName); t != nil {
			out[f.name] = t.Value
		}
	}
	return out, opcodeIn(p.Opcode, okOpcodes)
}

// listDecode accepts p iff its opcode is in okOpcodes, then finds every
// top-level tag named itemTag and projects fields over each one's
// children, keyed by the item tag's own scalar value.
func listDecode(p *packet.Packet, okOpcodes []uint8, itemTag uint16, fields []field) (map[string]map[string]any, bool) {
	items := make(map[string]map[string]any)
	for _, t := range p.Tags {
		if t.Name != itemTag {
			continue
		}
		item := make(map[string]any, len(fields))
		for _, f := range fields {
			if f.isList {
				var values []any
				for _, st := range t.Children {
					if st.Name == f.childTag {
						values = append(values, st.Value)
					}
				}
				if values != nil {
					item[f.name] = values
				}
				continue
			}
			if st := t.Child(f.tagName); st != nil {
				item[f.name] = st.Value
			}
		}
		items[itemKey(t)] = item
	}
	return items, opcodeIn(p.Opcode, okOpcodes)
}

// itemKey renders an item tag's scalar value as a map key. Item tags are
// almost always hash16 (already a hex string), but the conversion is kept
// generic so a differently-typed item tag still produces a usable key.
func itemKey(t *tag.Tag) string {
	if s, ok := t.Str(); ok {
		return s
	}
	return fmt.Sprintf("%v", t.Value)
}

func asUint32(m map[string]any, key string) uint32 {
	return valueAsUint32(m[key])
}

// valueAsUint32 widens any of the tag scalar types to uint32, defaulting to
// 0 for anything else (including a missing value, i.e. nil).
func valueAsUint32(v any) uint32 {
	switch v := v.(type) {
	case uint8:
		return uint32(v)
	case uint16:
		return uint32(v)
	case uint32:
		return v
	case uint64:
		return uint32(v)
	default:
		return 0
	}
}

func asUint64(m map[string]any, key string) uint64 {
	switch v := m[key].(type) {
	case uint8:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint32:
		return uint64(v)
	case uint64:
		return v
	default:
		return 0
	}
}

func asString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func asStringSlice(m map[string]any, key string) []string {
	raw, _ := m[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
