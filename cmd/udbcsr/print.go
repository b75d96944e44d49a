package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/sarchlab/udbcsr/csr"
	"github.com/sarchlab/udbcsr/decode"
)

// parseInt parses an integer in hex (0x), binary (0b), octal (0o) or
// decimal notation.
func parseInt(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 0, 64)
}

// bitsLabel renders a bit range as [msb:lsb], or [msb] for a single bit.
func bitsLabel(msb, lsb int) string {
	if msb == lsb {
		return fmt.Sprintf("[%d]", msb)
	}
	return fmt.Sprintf("[%d:%d]", msb, lsb)
}

// printDecode pretty-prints decoded field observations. Compact mode
// puts all fields on one line; the default is one aligned row per field.
func printDecode(name string, decoded []decode.FieldValue, compact bool) {
	fmt.Printf("CSR: %s\n", name)
	if compact {
		parts := make([]string, 0, len(decoded))
		for _, f := range decoded {
			parts = append(parts, fmt.Sprintf("%s%s=%s", f.Name, bitsLabel(f.MSB, f.LSB), f.Bin))
		}
		fmt.Println(strings.Join(parts, ", "))
		return
	}
	for _, f := range decoded {
		fmt.Printf(" %-20s [%2d:%2d] = %6s / %3d / %10s", f.Name, f.MSB, f.LSB, f.Hex, f.Value, f.Bin)
		if f.Access != "" {
			fmt.Printf("  (%s)", f.Access)
		}
		fmt.Println()
	}
}

// printDecodeTree renders the register and its decoded fields as a tree.
func printDecodeTree(def *csr.Definition, value uint64, decoded []decode.FieldValue) {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s = %#x", def.Name, value))

	for _, f := range decoded {
		branch := tree.AddBranch(fmt.Sprintf("%s %s", f.Name, bitsLabel(f.MSB, f.LSB)))
		branch.AddNode(fmt.Sprintf("value: %s / %d / %s", f.Hex, f.Value, f.Bin))
		if f.Access != "" {
			branch.AddNode("access: " + f.Access)
		}
		if f.Desc != "" {
			branch.AddNode(f.Desc)
		}
	}

	fmt.Print(tree.String())
}

// printDiff pretty-prints an XOR changeset.
func printDiff(name string, changes []decode.FieldChange) {
	fmt.Printf("CSR: %s (fields with changes)\n", name)
	for _, c := range changes {
		fmt.Printf(" %-20s [%2d:%2d] changed_mask=%#10x rel=%#6x bits_changed=%2d  %s\n",
			c.Name, c.MSB, c.LSB, c.ChangedMask, c.ChangedRel, c.ChangedBits, c.Desc)
	}
}

// printCompare pretty-prints field-by-field differences of two values.
func printCompare(name string, diffs []decode.FieldDiff) {
	fmt.Printf("CSR: %s (field differences)\n", name)
	for _, d := range diffs {
		fmt.Printf(" %-20s [%2d:%2d] = %6s / %3d / %10s vs %6s / %3d / %10s  %q\n",
			d.Name, d.A.MSB, d.A.LSB,
			d.A.Hex, d.A.Value, d.A.Bin,
			d.B.Hex, d.B.Value, d.B.Bin,
			d.A.Desc)
	}
}
