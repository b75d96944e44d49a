package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of one register schema file. The same
// shape is accepted in YAML, JSON and TOML; the file extension selects
// the decoder.
type document struct {
	Kind        string   `yaml:"kind" json:"kind" toml:"kind"`
	Name        string   `yaml:"name" json:"name" toml:"name"`
	LongName    string   `yaml:"long_name" json:"long_name" toml:"long_name"`
	Length      int      `yaml:"length" json:"length" toml:"length"`
	Description string   `yaml:"description" json:"description" toml:"description"`
	Writable    bool     `yaml:"writable" json:"writable" toml:"writable"`
	PrivMode    string   `yaml:"priv_mode" json:"priv_mode" toml:"priv_mode"`
	DefinedBy   any      `yaml:"definedBy" json:"definedBy" toml:"definedBy"`
	Fields      fieldMap `yaml:"fields" json:"fields" toml:"fields"`
}

// fieldDoc is one field descriptor from a document's fields table. The
// location values stay untyped until range normalization.
type fieldDoc struct {
	Location     any
	LocationRV64 any
	LocationRV32 any
	Description  string
	Type         string
	ResetValue   any
	Alias        string
}

// fieldMap is an order-preserving field-name -> descriptor table.
// Register fields must keep their document order, and none of the three
// decoders preserves map order on its own, so each format gets a custom
// unmarshalling path. Entries whose value is not a mapping are dropped,
// matching the loader's tolerance for schema variants.
type fieldMap struct {
	names []string
	docs  map[string]fieldDoc
}

func (m *fieldMap) add(name string, doc fieldDoc) {
	if m.docs == nil {
		m.docs = make(map[string]fieldDoc)
	}
	if _, exists := m.docs[name]; !exists {
		m.names = append(m.names, name)
	}
	m.docs[name] = doc
}

// UnmarshalYAML decodes a YAML mapping node, walking the node content
// directly to keep document order.
func (m *fieldMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("fields must be a mapping, got YAML kind %d", value.Kind)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var raw any
		if err := valNode.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", keyNode.Value, err)
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			continue // not a field descriptor
		}
		m.add(keyNode.Value, fieldDocFromMap(entry))
	}
	return nil
}

// UnmarshalJSON decodes a JSON object through the token stream to keep
// document order.
func (m *fieldMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fields must be an object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string) // object keys are always strings

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			continue // not a field descriptor
		}
		m.add(key, fieldDocFromMap(entry))
	}
	return nil
}

// UnmarshalTOML accepts the already-decoded table. TOML parsing loses
// key order here; the loader restores it from toml.MetaData afterwards.
func (m *fieldMap) UnmarshalTOML(v any) error {
	raw, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("fields must be a table, got %T", v)
	}
	for name, val := range raw {
		entry, ok := val.(map[string]any)
		if !ok {
			continue // not a field descriptor
		}
		m.add(name, fieldDocFromMap(entry))
	}
	return nil
}

// reorder rearranges the field names to match the given order. Names not
// present in the map are ignored; names missing from the order keep
// their current relative position at the end.
func (m *fieldMap) reorder(order []string) {
	seen := make(map[string]bool, len(order))
	reordered := make([]string, 0, len(m.names))
	for _, name := range order {
		if _, ok := m.docs[name]; ok && !seen[name] {
			reordered = append(reordered, name)
			seen[name] = true
		}
	}
	for _, name := range m.names {
		if !seen[name] {
			reordered = append(reordered, name)
		}
	}
	m.names = reordered
}

// fieldDocFromMap extracts the recognized descriptor keys from a generic
// mapping. Unknown keys are ignored.
func fieldDocFromMap(m map[string]any) fieldDoc {
	return fieldDoc{
		Location:     m["location"],
		LocationRV64: m["location_rv64"],
		LocationRV32: m["location_rv32"],
		Description:  stringAt(m, "description"),
		Type:         stringAt(m, "type"),
		ResetValue:   m["reset_value"],
		Alias:        stringAt(m, "alias"),
	}
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// cleanDescription collapses a multi-line schema description into a
// single line.
func cleanDescription(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}

// parseYAML decodes a YAML register document.
func parseYAML(data []byte) (*document, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML document: %w", err)
	}
	return &doc, nil
}

// parseJSON decodes a JSON register document.
func parseJSON(data []byte) (*document, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}
	return &doc, nil
}

// parseTOML decodes a TOML register document and restores the field
// order recorded by the parser metadata.
func parseTOML(data []byte) (*document, error) {
	var doc document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML document: %w", err)
	}
	var order []string
	for _, key := range md.Keys() {
		if len(key) == 2 && key[0] == "fields" {
			order = append(order, key[1])
		}
	}
	doc.Fields.reorder(order)
	return &doc, nil
}
