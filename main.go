// Package main provides the entry point for udbcsr.
// udbcsr decodes RISC-V CSR values into named bitfields using
// riscv-unified-db register schemas.
//
// For the full CLI, use: go run ./cmd/udbcsr
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("udbcsr - RISC-V CSR bitfield decoder")
	fmt.Println("")
	fmt.Println("Usage: udbcsr [command] --spec <csr-schema-dir> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  decode     Decode a CSR value into bitfields")
	fmt.Println("  diff       List fields changed by an XOR mask")
	fmt.Println("  compare    Compare two CSR values field by field")
	fmt.Println("  list       List the known CSR names")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/udbcsr' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/udbcsr' instead.")
	}
}
