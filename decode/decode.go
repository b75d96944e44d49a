// Package decode turns raw register values into field-level
// observations and changesets.
//
// All operations are pure functions of a definition and integer inputs:
// they never mutate the definition, perform no I/O, and are safe to call
// concurrently against the same frozen definition table.
//
// Usage:
//
//	fields := decode.Value(def, 0xA00002000)
//	changes := decode.XorMask(def, ref^dut)
//	diffs := decode.Compare(def, ref, dut)
package decode

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/sarchlab/udbcsr/csr"
)

// FieldValue is one field's observation within a decoded register value.
// The JSON names match the tool's machine-readable output format.
type FieldValue struct {
	// Name is the field name.
	Name string `json:"name"`
	// MSB is the field's most significant bit index.
	MSB int `json:"msb"`
	// LSB is the field's least significant bit index.
	LSB int `json:"lsb"`
	// Width is the field width in bits.
	Width int `json:"width"`
	// Value is the extracted unsigned field value, shifted down to bit 0.
	Value uint64 `json:"value"`
	// Hex is Value rendered as 0x-prefixed hexadecimal.
	Hex string `json:"hex"`
	// Bin is Value rendered as 0b-prefixed binary.
	Bin string `json:"bin"`
	// Access is the field's access-type token ("warl", ...), if set.
	Access string `json:"access,omitempty"`
	// Desc is the field description from the schema.
	Desc string `json:"desc"`
}

// FieldChange is one field's entry in an XOR changeset.
type FieldChange struct {
	// Name is the field name.
	Name string `json:"name"`
	// MSB is the field's most significant bit index.
	MSB int `json:"msb"`
	// LSB is the field's least significant bit index.
	LSB int `json:"lsb"`
	// Width is the field width in bits.
	Width int `json:"width"`
	// ChangedMask is the XOR mask restricted to the field's bits, in
	// register bit positions.
	ChangedMask uint64 `json:"changed_mask"`
	// ChangedRel is ChangedMask shifted down by LSB: the changed bit
	// pattern relative to the field's own origin.
	ChangedRel uint64 `json:"changed_rel"`
	// ChangedBits is the number of changed bits within the field.
	ChangedBits int `json:"changed_bits_count"`
	// Desc is the field description from the schema.
	Desc string `json:"desc"`
}

// FieldDiff pairs one field's observations from two register snapshots.
type FieldDiff struct {
	// Name is the field name.
	Name string `json:"field"`
	// A is the field observation from the first value.
	A FieldValue `json:"a"`
	// B is the field observation from the second value.
	B FieldValue `json:"b"`
}

// Value decodes a register value into per-field observations, ordered by
// descending most significant bit. The ordering is a presentation
// convenience; fields with equal MSB keep their schema order.
func Value(def *csr.Definition, value uint64) []FieldValue {
	out := make([]FieldValue, 0, len(def.Fields))
	for _, f := range sortedFields(def) {
		raw := (value & f.Mask()) >> uint(f.Bits.Low)
		out = append(out, FieldValue{
			Name:   f.Name,
			MSB:    f.Bits.High,
			LSB:    f.Bits.Low,
			Width:  f.Width(),
			Value:  raw,
			Hex:    fmt.Sprintf("%#x", raw),
			Bin:    fmt.Sprintf("%#b", raw),
			Access: f.Access.String(),
			Desc:   f.Description,
		})
	}
	return out
}

// XorMask decodes an XOR delta (before ^ after) into a changeset: one
// entry per field whose mask intersects the delta, in descending MSB
// order.
func XorMask(def *csr.Definition, xorMask uint64) []FieldChange {
	var out []FieldChange
	for _, f := range sortedFields(def) {
		changed := f.ChangedBits(xorMask)
		if changed == 0 {
			continue
		}
		out = append(out, FieldChange{
			Name:        f.Name,
			MSB:         f.Bits.High,
			LSB:         f.Bits.Low,
			Width:       f.Width(),
			ChangedMask: changed,
			ChangedRel:  changed >> uint(f.Bits.Low),
			ChangedBits: bits.OnesCount64(changed),
			Desc:        f.Description,
		})
	}
	return out
}

// Compare decodes two register values and returns the fields whose
// extracted values differ. Both decodes use the identical field
// ordering, so observations are paired positionally.
func Compare(def *csr.Definition, valueA, valueB uint64) []FieldDiff {
	decodedA := Value(def, valueA)
	decodedB := Value(def, valueB)

	var out []FieldDiff
	for i := range decodedA {
		if decodedA[i].Value != decodedB[i].Value {
			out = append(out, FieldDiff{
				Name: decodedA[i].Name,
				A:    decodedA[i],
				B:    decodedB[i],
			})
		}
	}
	return out
}

// sortedFields returns the definition's fields in descending MSB order
// without touching the definition's own slice.
func sortedFields(def *csr.Definition) []*csr.Field {
	fields := make([]*csr.Field, len(def.Fields))
	copy(fields, def.Fields)
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Bits.High > fields[j].Bits.High
	})
	return fields
}
