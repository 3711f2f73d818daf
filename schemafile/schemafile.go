// Package schemafile loads smartjson schemas from YAML or JSONC documents.
//
// A document maps field names to rules:
//
//	name:
//	  type: str
//	  required: true
//	address:
//	  type: dict
//	  schema:
//	    city: {type: str, required: true}
//	tags:
//	  type: list
//	  itemType: str
//
// Rule keys are type, required, schema, itemType and itemSchema; the
// snake_case spellings item_type and item_schema are accepted too. Every
// failure matches smartjson.ErrInvalidSchema.
package schemafile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"

	"github.com/reoring/smartjson"
)

// Load reads a schema file. ".yaml" and ".yml" files are YAML; anything
// else is JSON with comments and trailing commas allowed.
func Load(path string) (smartjson.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, invalid(path, err, "Cannot read schema file '%s'", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return ParseJSONC(data)
}

// ParseJSONC parses a JSON schema document that may contain // and /* */
// comments and trailing commas.
func ParseJSONC(data []byte) (smartjson.Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, invalid("", err, "Invalid JSON schema document")
	}
	return FromDocument(doc)
}

// ParseYAML parses a single-document YAML schema. Duplicate keys are
// rejected with their positions.
func ParseYAML(data []byte) (smartjson.Schema, error) {
	doc, err := decodeYAML(data)
	if err != nil {
		return nil, invalid("", err, "Invalid YAML schema document")
	}
	return FromDocument(doc)
}

// FromDocument builds a schema from a decoded document and checks it.
func FromDocument(doc any) (smartjson.Schema, error) {
	s, err := buildSchema(doc, "")
	if err != nil {
		return nil, err
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return s, nil
}

var ruleKeys = map[string]string{
	"type":        "type",
	"required":    "required",
	"schema":      "schema",
	"itemType":    "itemType",
	"item_type":   "itemType",
	"itemSchema":  "itemSchema",
	"item_schema": "itemSchema",
}

func buildSchema(doc any, path string) (smartjson.Schema, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, invalid(path, nil, "Schema at '%s' must be a mapping of field names to rules, got %T", orRoot(path), doc)
	}
	s := make(smartjson.Schema, len(m))
	for _, field := range sortedKeys(m) {
		cur := join(path, field)
		rm, ok := m[field].(map[string]any)
		if !ok {
			return nil, invalid(cur, nil, "Rule for field '%s' must be a mapping, got %T", cur, m[field])
		}
		var r smartjson.Rule
		seen := map[string]string{}
		for _, k := range sortedKeys(rm) {
			canon, known := ruleKeys[k]
			if !known {
				return nil, invalid(cur, nil, "Unknown rule key '%s' for field '%s'", k, cur)
			}
			if prev, dup := seen[canon]; dup {
				return nil, invalid(cur, nil, "Rule keys '%s' and '%s' for field '%s' conflict", prev, k, cur)
			}
			seen[canon] = k
			v := rm[k]
			switch canon {
			case "type", "itemType":
				name, ok := v.(string)
				if !ok {
					return nil, invalid(cur, nil, "Rule key '%s' for field '%s' must be a type name, got %T", k, cur, v)
				}
				if canon == "type" {
					r.Type = smartjson.TypeNamed(name)
				} else {
					r.ItemType = smartjson.TypeNamed(name)
				}
			case "required":
				b, ok := v.(bool)
				if !ok {
					return nil, invalid(cur, nil, "Rule key 'required' for field '%s' must be a boolean, got %T", cur, v)
				}
				r.Required = b
			case "schema":
				nested, err := buildSchema(v, cur)
				if err != nil {
					return nil, err
				}
				r.Schema = nested
			case "itemSchema":
				nested, err := buildSchema(v, cur+"[]")
				if err != nil {
					return nil, err
				}
				r.ItemSchema = nested
			}
		}
		s[field] = r
	}
	return s, nil
}

func invalid(path string, cause error, format string, args ...any) error {
	return &smartjson.Error{
		Code:    smartjson.CodeInvalidSchema,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
		Cause:   cause,
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func join(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func orRoot(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
