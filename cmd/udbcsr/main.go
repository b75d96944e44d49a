// Package main provides the udbcsr command-line tool.
//
// udbcsr decodes RISC-V CSR values into named bitfields using a
// directory of register schema documents, and diffs register snapshots
// field by field. It is the debugging front end for tracking down
// register-level mismatches between a reference model and a device or
// simulator under test.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sarchlab/udbcsr/csr"
	"github.com/sarchlab/udbcsr/decode"
	"github.com/sarchlab/udbcsr/schema"
)

// app carries the flag values shared by all subcommands.
type app struct {
	specDir string
	cfgPath string
	xlen    int
	jsonOut bool
	compact bool
	tree    bool
	verbose bool

	logger zerolog.Logger
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "udbcsr",
		Short: "Decode RISC-V CSR values using riscv-unified-db schemas",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(a.verbose)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.specDir, "spec", "", "Path to the CSR schema directory")
	pf.StringVar(&a.cfgPath, "cfg", "", "Optional hart config file for access-type enrichment")
	pf.IntVar(&a.xlen, "xlen", 64, "Register width in bits (32 or 64)")
	pf.BoolVar(&a.jsonOut, "json", false, "Output machine-readable JSON")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging")
	_ = rootCmd.MarkPersistentFlagRequired("spec")

	rootCmd.AddCommand(
		a.newDecodeCmd(),
		a.newDiffCmd(),
		a.newCompareCmd(),
		a.newListCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Logger().Level(level)
}

func (a *app) newDecodeCmd() *cobra.Command {
	var csrName, value string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a CSR value into bitfields",
		Run: func(cmd *cobra.Command, args []string) {
			def := a.lookupCSR(csrName)
			val := a.parseValue(value)

			decoded := decode.Value(def, val)
			switch {
			case a.jsonOut:
				printJSON(map[string]any{
					"csr":     def.Name,
					"value":   a.formatValue(val),
					"decoded": decoded,
				})
			case a.tree:
				printDecodeTree(def, val, decoded)
			default:
				printDecode(def.Name, decoded, a.compact)
			}
		},
	}

	cmd.Flags().StringVar(&csrName, "csr", "", "CSR name (e.g. mstatus)")
	cmd.Flags().StringVar(&value, "value", "", "Value (hex 0x..., bin 0b..., or decimal)")
	cmd.Flags().BoolVar(&a.compact, "compact", false, "One-line output")
	cmd.Flags().BoolVar(&a.tree, "tree", false, "Render the register as a field tree")
	_ = cmd.MarkFlagRequired("csr")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func (a *app) newDiffCmd() *cobra.Command {
	var csrName, xor string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "List fields changed by an XOR mask (before ^ after)",
		Run: func(cmd *cobra.Command, args []string) {
			def := a.lookupCSR(csrName)
			xorMask := a.parseValue(xor)

			changes := decode.XorMask(def, xorMask)
			if a.jsonOut {
				printJSON(map[string]any{
					"csr":     def.Name,
					"xor":     a.formatValue(xorMask),
					"changes": changes,
				})
				return
			}
			printDiff(def.Name, changes)
		},
	}

	cmd.Flags().StringVar(&csrName, "csr", "", "CSR name")
	cmd.Flags().StringVar(&xor, "xor", "", "XOR mask value (hex/bin/dec)")
	_ = cmd.MarkFlagRequired("csr")
	_ = cmd.MarkFlagRequired("xor")

	return cmd
}

func (a *app) newCompareCmd() *cobra.Command {
	var csrName, value1, value2 string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two CSR values and show differing fields",
		Run: func(cmd *cobra.Command, args []string) {
			def := a.lookupCSR(csrName)
			valA := a.parseValue(value1)
			valB := a.parseValue(value2)

			diffs := decode.Compare(def, valA, valB)
			if a.jsonOut {
				printJSON(map[string]any{
					"csr":         def.Name,
					"value1":      a.formatValue(valA),
					"value2":      a.formatValue(valB),
					"differences": diffs,
				})
				return
			}
			printCompare(def.Name, diffs)
		},
	}

	cmd.Flags().StringVar(&csrName, "csr", "", "CSR name")
	cmd.Flags().StringVar(&value1, "value1", "", "First value (hex/bin/dec)")
	cmd.Flags().StringVar(&value2, "value2", "", "Second value (hex/bin/dec)")
	_ = cmd.MarkFlagRequired("csr")
	_ = cmd.MarkFlagRequired("value1")
	_ = cmd.MarkFlagRequired("value2")

	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the known CSR names",
		Run: func(cmd *cobra.Command, args []string) {
			table := a.buildTable()
			names := table.Names()
			if a.jsonOut {
				printJSON(map[string]any{"csrs": names})
				return
			}
			for _, name := range names {
				fmt.Println(name)
			}
		},
	}
}

// buildTable loads the schema directory and runs the optional hart
// config enrichment. Load diagnostics are logged, never fatal.
func (a *app) buildTable() *csr.Table {
	table, diags, err := schema.Build(a.specDir, a.cfgPath, a.logger)
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to load CSR schemas")
		fmt.Fprintf(os.Stderr, "Error loading CSR schemas: %v\n", err)
		os.Exit(1)
	}
	for _, d := range diags {
		a.logger.Debug().Str("diagnostic", d.String()).Msg("schema load diagnostic")
	}
	return table
}

// lookupCSR builds the table and resolves one register by name. An
// unknown name exits with status 2 and a sample of the known names.
func (a *app) lookupCSR(name string) *csr.Definition {
	table := a.buildTable()

	def, ok := table.Get(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "CSR %q not found under %s. Available count: %d\n",
			name, a.specDir, table.Len())
		names := table.Names()
		if len(names) > 50 {
			names = names[:50]
		}
		fmt.Fprintf(os.Stderr, "Some available CSRs: %s\n", strings.Join(names, ", "))
		os.Exit(2)
	}
	return def
}

// formatValue renders a whole-register value as hex, zero-padded to the
// requested XLEN.
func (a *app) formatValue(v uint64) string {
	digits := a.xlen / 4
	if digits <= 0 {
		digits = 16
	}
	return fmt.Sprintf("0x%0*x", digits, v)
}

// parseValue parses a register value in hex (0x), binary (0b) or
// decimal notation, exiting with usage status on bad input.
func (a *app) parseValue(s string) uint64 {
	v, err := parseInt(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid value %q: %v\n", s, err)
		os.Exit(1)
	}
	return v
}

func printJSON(payload map[string]any) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error serializing output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
