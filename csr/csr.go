// Package csr provides RISC-V control/status register definitions and
// bit-range arithmetic.
//
// This package implements the value objects shared by the schema loader,
// the hart-config enricher, and the decode engine:
//   - Field: a named bit range within a register, with mask arithmetic
//   - Definition: one named CSR with its ordered field list
//   - Table: the name-indexed collection of definitions
//   - ParseRange: normalization of the schema's bit-range encodings
//
// Usage:
//
//	r, err := csr.ParseRange("31..12")
//	// r == csr.BitRange{High: 31, Low: 12}, r.Mask() == 0xFFFFF000
package csr

import (
	"sort"
	"strings"
)

// BitRange represents a contiguous bit range within a register.
// High and Low are inclusive bit indices with High >= Low.
type BitRange struct {
	// High is the most significant bit index of the range.
	High int
	// Low is the least significant bit index of the range.
	Low int
}

// Width returns the number of bits covered by the range.
func (r BitRange) Width() int {
	return r.High - r.Low + 1
}

// Mask returns the range as a bitmask: Width contiguous one-bits with the
// lowest set bit at position Low. Ranges 64 bits wide or wider saturate
// to a full 64-bit mask shifted into place.
func (r BitRange) Mask() uint64 {
	w := r.Width()
	if w >= 64 {
		return ^uint64(0) << uint(r.Low)
	}
	return ((uint64(1) << uint(w)) - 1) << uint(r.Low)
}

// Field represents a named bit range within a register.
type Field struct {
	// Name is the field name, unique within a register by convention.
	// Uniqueness is not enforced; the schema is trusted here.
	Name string

	// Bits is the normalized bit range the field occupies.
	Bits BitRange

	// Description is the free-text description from the schema.
	Description string

	// Type is the schema-declared type tag, often empty.
	Type string

	// ResetValue is the schema-declared reset value, if any. It is
	// carried through as decoded (number or string), never interpreted.
	ResetValue any

	// Alias is an alternative field name, if the schema declares one.
	Alias string

	// Access is the access-type classification. It starts unset and is
	// set at most once by a hart-config enrichment pass.
	Access AccessType

	// Legal is the legal-value payload attached alongside Access. Only
	// meaningful for WARL, ro_constant and ro_variable fields.
	Legal any
}

// Width returns the field width in bits.
func (f *Field) Width() int {
	return f.Bits.Width()
}

// Mask returns the field's bitmask within the register.
func (f *Field) Mask() uint64 {
	return f.Bits.Mask()
}

// ContainsAny reports whether any bit of mask falls inside the field.
func (f *Field) ContainsAny(mask uint64) bool {
	return f.Mask()&mask != 0
}

// ChangedBits returns the bits of xorMask that fall inside the field.
func (f *Field) ChangedBits(xorMask uint64) uint64 {
	return f.Mask() & xorMask
}

// SetAccessIfUnset sets the field's access type and legal-value payload
// if and only if no access type has been set yet. It returns true when
// the write happened. Enrichment passes must use this instead of
// assigning Access directly so that the first writer always wins.
func (f *Field) SetAccessIfUnset(access AccessType, legal any) bool {
	if f.Access != AccessUnset {
		return false
	}
	f.Access = access
	f.Legal = legal
	return true
}

// Definition represents one named CSR and its field layout.
// The name is fixed at construction; fields may be appended during
// loading and enriched in place afterwards, but never removed.
type Definition struct {
	// Name is the canonical register name.
	Name string

	// LongName is the human-readable register name.
	LongName string

	// Length is the register width in bits (32 or 64).
	Length int

	// Description is the free-text description from the schema.
	Description string

	// Writable reports whether the register is writable.
	Writable bool

	// PrivMode is the privilege-mode tag from the schema.
	PrivMode string

	// DefinedBy is the provenance marker, carried through unmodified.
	DefinedBy any

	// Fields holds the register's fields in schema insertion order,
	// which is not necessarily bit order.
	Fields []*Field
}

// DefaultLength is the register width assumed when the schema does not
// declare one.
const DefaultLength = 64

// NewDefinition creates a Definition with the default 64-bit length.
func NewDefinition(name string) *Definition {
	return &Definition{
		Name:   name,
		Length: DefaultLength,
	}
}

// AddField appends a field to the definition, preserving insertion order.
func (d *Definition) AddField(f *Field) {
	d.Fields = append(d.Fields, f)
}

// Field returns the field with the given name, matching exact case first
// and falling back to a case-insensitive search. It returns nil when no
// field matches.
func (d *Definition) Field(name string) *Field {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	for _, f := range d.Fields {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// Table is a name-indexed collection of register definitions. It is
// built once by the loader, optionally enriched in place, and then
// treated as read-only for the lifetime of all decode calls.
type Table struct {
	byName map[string]*Definition
}

// NewTable creates an empty definition table.
func NewTable() *Table {
	return &Table{byName: make(map[string]*Definition)}
}

// Put inserts a definition. A definition with the same name replaces the
// previous one (last write wins).
func (t *Table) Put(d *Definition) {
	t.byName[d.Name] = d
}

// Get returns the definition with the given name. Exact-case matches are
// preferred; when none exists, a case-insensitive match is returned.
func (t *Table) Get(name string) (*Definition, bool) {
	if d, ok := t.byName[name]; ok {
		return d, true
	}
	for k, d := range t.byName {
		if strings.EqualFold(k, name) {
			return d, true
		}
	}
	return nil, false
}

// Len returns the number of definitions in the table.
func (t *Table) Len() int {
	return len(t.byName)
}

// Names returns all register names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for k := range t.byName {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
