// Package schema provides loading of CSR register definitions from a
// directory of schema documents.
//
// One file describes one register. Files are parsed according to their
// extension (.yaml/.yml, .json or .toml); documents that do not carry
// the "csr" kind discriminator are assumed to belong to a different
// document type and are skipped. Loading is best effort: a bad file or
// a bad field never aborts the batch, it is reported in the returned
// diagnostics list instead.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sarchlab/udbcsr/csr"
	"github.com/sarchlab/udbcsr/hartcfg"
)

// Diagnostic reports one skipped file or field during loading. When
// Field is empty the whole file was skipped.
type Diagnostic struct {
	// File is the base name of the schema file.
	File string
	// Field is the field name within the document, or empty for a
	// file-level diagnostic.
	Field string
	// Err is the reason the file or field was skipped.
	Err error
}

func (d Diagnostic) String() string {
	if d.Field == "" {
		return fmt.Sprintf("%s: %v", d.File, d.Err)
	}
	return fmt.Sprintf("%s: field %q: %v", d.File, d.Field, d.Err)
}

// decoders maps recognized file extensions to document decoders.
var decoders = map[string]func([]byte) (*document, error){
	".yaml": parseYAML,
	".yml":  parseYAML,
	".json": parseJSON,
	".toml": parseTOML,
}

// Loader loads register definitions from a schema directory.
type Loader struct {
	// Dir is the directory containing one schema document per register.
	Dir string

	// Logger receives per-file debug entries and the load summary.
	Logger zerolog.Logger
}

// NewLoader creates a Loader for the given directory with logging
// disabled.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir, Logger: zerolog.Nop()}
}

// Load enumerates the directory (no recursion), parses every file with a
// recognized extension and returns the definition table together with
// the diagnostics for everything that was skipped. Directory entries are
// visited in name order; when two files declare the same register name
// the later file wins.
//
// Only an unreadable directory fails the load as a whole.
func (l *Loader) Load() (*csr.Table, []Diagnostic, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	table := csr.NewTable()
	var diags []Diagnostic

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		decode, ok := decoders[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		data, err := os.ReadFile(filepath.Join(l.Dir, entry.Name()))
		if err != nil {
			diags = append(diags, Diagnostic{File: entry.Name(), Err: err})
			l.Logger.Debug().Str("file", entry.Name()).Err(err).Msg("skipping unreadable file")
			continue
		}

		doc, err := decode(data)
		if err != nil {
			diags = append(diags, Diagnostic{File: entry.Name(), Err: err})
			l.Logger.Debug().Str("file", entry.Name()).Err(err).Msg("skipping unparsable file")
			continue
		}

		// A parsed document without the register discriminator is some
		// other document kind sharing the directory, not an error.
		if doc.Kind != "csr" || doc.Name == "" {
			continue
		}

		def, fieldDiags := buildDefinition(entry.Name(), doc)
		diags = append(diags, fieldDiags...)
		table.Put(def)
		l.Logger.Debug().
			Str("file", entry.Name()).
			Str("csr", def.Name).
			Int("fields", len(def.Fields)).
			Msg("loaded register definition")
	}

	l.Logger.Info().
		Str("dir", l.Dir).
		Int("registers", table.Len()).
		Int("diagnostics", len(diags)).
		Msg("loaded CSR definitions")

	return table, diags, nil
}

// buildDefinition converts a parsed document into a Definition. Fields
// whose location is missing or malformed are skipped with a diagnostic;
// the rest of the document still loads.
func buildDefinition(file string, doc *document) (*csr.Definition, []Diagnostic) {
	def := &csr.Definition{
		Name:        doc.Name,
		LongName:    doc.LongName,
		Length:      doc.Length,
		Description: cleanDescription(doc.Description),
		Writable:    doc.Writable,
		PrivMode:    doc.PrivMode,
		DefinedBy:   doc.DefinedBy,
	}
	if def.Length == 0 {
		def.Length = csr.DefaultLength
	}

	var diags []Diagnostic
	for _, name := range doc.Fields.names {
		fd := doc.Fields.docs[name]

		// Width selection is by fallback, not by the caller's XLEN:
		// a generic location wins over the rv64 profile, which wins
		// over the rv32 profile.
		loc := fd.Location
		if loc == nil {
			loc = fd.LocationRV64
		}
		if loc == nil {
			loc = fd.LocationRV32
		}
		if loc == nil {
			diags = append(diags, Diagnostic{
				File:  file,
				Field: name,
				Err:   fmt.Errorf("field has no location"),
			})
			continue
		}

		bits, err := csr.ParseRange(loc)
		if err != nil {
			diags = append(diags, Diagnostic{File: file, Field: name, Err: err})
			continue
		}

		def.AddField(&csr.Field{
			Name:        name,
			Bits:        bits,
			Description: cleanDescription(fd.Description),
			Type:        fd.Type,
			ResetValue:  fd.ResetValue,
			Alias:       fd.Alias,
		})
	}

	return def, diags
}

// Build loads the definition table from dir and, when cfgPath is
// non-empty, runs the hart-config enrichment pass over it. After Build
// returns, the table should be treated as read-only; decode operations
// may then use it concurrently.
func Build(dir, cfgPath string, logger zerolog.Logger) (*csr.Table, []Diagnostic, error) {
	loader := &Loader{Dir: dir, Logger: logger}
	table, diags, err := loader.Load()
	if err != nil {
		return nil, diags, err
	}

	if cfgPath != "" {
		enricher := &hartcfg.Enricher{Path: cfgPath, Logger: logger}
		enricher.Enrich(table)
	}

	return table, diags, nil
}
