// Package hartcfg provides enrichment of loaded register definitions
// from a per-hart configuration document.
//
// The configuration is a single YAML or JSON document keyed by hart
// identifiers. One hart entry is selected and its per-register
// access-type information (WARL/WLRL/WPRI/WIRI/ro_* classifications and
// legal-value payloads) is merged into the already-loaded definitions.
// The merge is additive: a field whose access type is already set is
// never overwritten, so running the pass twice is harmless.
package hartcfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/udbcsr/csr"
)

// hartIDsKey is reserved in the configuration document and never names a
// hart entry.
const hartIDsKey = "hart_ids"

// Enricher merges one hart's configuration into a definition table.
type Enricher struct {
	// Path is the configuration document path. An empty or absent path
	// makes Enrich a no-op.
	Path string

	// Logger receives the warning when a present config cannot be used.
	Logger zerolog.Logger
}

// NewEnricher creates an Enricher for the given path with logging
// disabled.
func NewEnricher(path string) *Enricher {
	return &Enricher{Path: path, Logger: zerolog.Nop()}
}

// Enrich mutates the table in place with the access-type information of
// the first hart entry in the configuration document. Enrichment never
// fails the overall load: an absent file is a silent no-op, and an
// unreadable or unparsable file only logs a warning.
//
// Enrich is idempotent with respect to already-set access types; every
// write goes through Field.SetAccessIfUnset.
func (e *Enricher) Enrich(t *csr.Table) {
	if e.Path == "" {
		return
	}

	data, err := os.ReadFile(e.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		e.Logger.Warn().Str("path", e.Path).Err(err).
			Msg("hart config unreadable, skipping enrichment")
		return
	}

	doc, err := parseConfig(e.Path, data)
	if err != nil {
		e.Logger.Warn().Str("path", e.Path).Err(err).
			Msg("hart config unparsable, skipping enrichment")
		return
	}

	hartKey, hart := selectHart(doc)
	if hart == nil {
		e.Logger.Warn().Str("path", e.Path).
			Msg("hart config has no hart entry, skipping enrichment")
		return
	}

	enriched := 0
	for _, regName := range sortedKeys(hart) {
		def, ok := t.Get(regName)
		if !ok {
			continue
		}
		entry := asMap(hart[regName])
		if entry == nil {
			continue
		}

		// Prefer the 64-bit profile, fall back to 32-bit.
		sub := asMap(entry["rv64"])
		if sub == nil {
			sub = asMap(entry["rv32"])
		}
		if sub == nil {
			continue
		}

		enrichRegister(def, sub)
		enriched++
	}

	e.Logger.Debug().
		Str("path", e.Path).
		Str("hart", hartKey).
		Int("registers", enriched).
		Msg("applied hart config enrichment")
}

// parseConfig decodes the configuration document, selecting the decoder
// by extension (JSON for .json, YAML otherwise).
func parseConfig(path string, data []byte) (map[string]any, error) {
	var doc map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON hart config: %w", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML hart config: %w", err)
	}
	return doc, nil
}

// selectHart picks the first key, in sorted order, that looks like a
// hart entry: a "hart"-prefixed key other than the reserved hart_ids
// key, whose value is a mapping. Only one hart's data is used.
func selectHart(doc map[string]any) (string, map[string]any) {
	for _, key := range sortedKeys(doc) {
		if key == hartIDsKey || !strings.HasPrefix(key, "hart") {
			continue
		}
		if hart := asMap(doc[key]); hart != nil {
			return key, hart
		}
	}
	return "", nil
}

// enrichRegister applies one register's width-specific config object to
// its definition.
func enrichRegister(def *csr.Definition, sub map[string]any) {
	if typeDesc := asMap(sub["type"]); typeDesc != nil {
		access, legal := Classify(typeDesc)
		if access != csr.AccessUnset {
			if len(def.Fields) == 0 {
				def.AddField(synthesizeField(def, sub, access, legal))
			} else {
				for _, f := range def.Fields {
					f.SetAccessIfUnset(access, legal)
				}
			}
		}
	}

	switch fields := sub["fields"].(type) {
	case []any:
		for _, item := range fields {
			// A plain name carries no type descriptor, so there is
			// nothing to apply; single-pair mappings do.
			entry := asMap(item)
			for _, name := range sortedKeys(entry) {
				applyFieldConfig(def, name, asMap(entry[name]))
			}
		}
	case map[string]any:
		for _, name := range sortedKeys(fields) {
			applyFieldConfig(def, name, asMap(fields[name]))
		}
	}
}

// synthesizeField builds a whole-register field for a definition the
// schema gave no fields. The range defaults to the register's full
// declared width unless the config object narrows it with msb/lsb keys.
func synthesizeField(def *csr.Definition, sub map[string]any, access csr.AccessType, legal any) *csr.Field {
	msb := def.Length - 1
	lsb := 0
	if v, ok := intAt(sub, "msb"); ok {
		msb = v
	}
	if v, ok := intAt(sub, "lsb"); ok {
		lsb = v
	}

	f := &csr.Field{
		Name: def.Name,
		Bits: csr.BitRange{High: msb, Low: lsb},
	}
	f.SetAccessIfUnset(access, legal)
	return f
}

// applyFieldConfig classifies one named sub-entry's type descriptor and
// applies it to the matching existing field. Fields are matched by
// case-insensitive name; missing fields and descriptor-less entries are
// ignored.
func applyFieldConfig(def *csr.Definition, name string, desc map[string]any) {
	if desc == nil {
		return
	}

	typeDesc := asMap(desc["type"])
	if typeDesc == nil {
		typeDesc = desc
	}
	access, legal := Classify(typeDesc)
	if access == csr.AccessUnset {
		return
	}

	if f := def.Field(name); f != nil {
		f.SetAccessIfUnset(access, legal)
	}
}

// Classify maps a type descriptor to an access type and its legal-value
// payload. The descriptor carries at most one of the recognized keys:
//
//	warl        payload nested under "legal" in its value (may be absent)
//	wlrl        payload is the raw value
//	wpri, wiri  no payload
//	ro_constant, ro_variable
//	            payload is the raw value
//
// A descriptor matching none of the keys classifies as AccessUnset with
// no payload.
func Classify(desc map[string]any) (csr.AccessType, any) {
	if v, ok := desc["warl"]; ok {
		var legal any
		if m := asMap(v); m != nil {
			legal = m["legal"]
		}
		return csr.AccessWARL, legal
	}
	if v, ok := desc["wlrl"]; ok {
		return csr.AccessWLRL, v
	}
	if _, ok := desc["wpri"]; ok {
		return csr.AccessWPRI, nil
	}
	if _, ok := desc["wiri"]; ok {
		return csr.AccessWIRI, nil
	}
	if v, ok := desc["ro_constant"]; ok {
		return csr.AccessROConstant, v
	}
	if v, ok := desc["ro_variable"]; ok {
		return csr.AccessROVariable, v
	}
	return csr.AccessUnset, nil
}

// asMap returns the value as a string-keyed map, or nil.
func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out
	default:
		return nil
	}
}

// intAt reads an integer from a generic mapping, tolerating the numeric
// types the YAML and JSON decoders produce.
func intAt(m map[string]any, key string) (int, bool) {
	switch n := m[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// sortedKeys returns the map keys in sorted order. Hart selection and
// register iteration must be deterministic, and Go map iteration is not.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
