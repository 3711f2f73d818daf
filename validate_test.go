package smartjson_test

import (
	"errors"
	"testing"
	"time"

	"github.com/reoring/smartjson"
)

var addressSchema = smartjson.Schema{
	"name": {Type: smartjson.Str, Required: true},
	"age":  {Type: smartjson.Int},
	"address": {Type: smartjson.Dict, Schema: smartjson.Schema{
		"street": {Type: smartjson.Str, Required: true},
		"city":   {Type: smartjson.Str, Required: true},
	}},
}

// expectViolation asserts err is a schema validation error with exactly msg.
func expectViolation(t *testing.T, err error, msg string) {
	t.Helper()
	if !errors.Is(err, smartjson.ErrSchemaValidation) {
		t.Fatalf("expected schema validation error, got: %v", err)
	}
	if err.Error() != msg {
		t.Fatalf("message = %q, want %q", err.Error(), msg)
	}
}

func TestValidateParsed_Violations(t *testing.T) {
	orderSchema := smartjson.Schema{
		"items": {Type: smartjson.List, Required: true, ItemSchema: smartjson.Schema{
			"sku":   {Type: smartjson.Str, Required: true},
			"price": {Type: smartjson.Float},
		}},
		"tags": {Type: smartjson.List, ItemType: smartjson.Str},
	}
	cases := []struct {
		name   string
		schema smartjson.Schema
		data   string
		msg    string
	}{
		{"missing nested", addressSchema, `{"name":"A","age":1,"address":{"street":"x"}}`, "Missing required field: 'address.city'"},
		{"fields checked in name order", addressSchema, `{"age":"x"}`, "Invalid type for field 'age'. Expected 'int', got 'str'."},
		{"missing top level", addressSchema, `{"age":3}`, "Missing required field: 'name'"},
		{"null is a type", addressSchema, `{"name":null}`, "Invalid type for field 'name'. Expected 'str', got 'null'."},
		{"nested not a mapping", smartjson.Schema{"address": {Schema: smartjson.Schema{}}}, `{"address":"x"}`,
			"Invalid type for field 'address'. Expected a mapping for schema validation, got 'str'."},
		{"item type", orderSchema, `{"items":[],"tags":["a",1]}`, "Invalid type for item at 'tags[1]'. Expected 'str', got 'int'."},
		{"list expected", orderSchema, `{"items":{}}`, "Invalid type for field 'items'. Expected 'list', got 'dict'."},
		{"item not a mapping", orderSchema, `{"items":[{"sku":"a"},3]}`,
			"Invalid item type at 'items[1]'. Expected a mapping for schema validation, got 'int'."},
		{"item missing field", orderSchema, `{"items":[{"sku":"a"},{}]}`, "Missing required field: 'items[1].sku'"},
		{"item field type", orderSchema, `{"items":[{"sku":"a","price":"free"}]}`,
			"Invalid type for field 'items[0].price'. Expected 'float', got 'str'."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := smartjson.DeserializeString(tc.data, smartjson.DeserializeOpt{Schema: tc.schema})
			expectViolation(t, err, tc.msg)
			e, _ := smartjson.AsError(err)
			if e.Path == "" {
				t.Fatalf("violation without path: %+v", e)
			}
		})
	}
}

func TestValidateParsed_Accepts(t *testing.T) {
	cases := []struct {
		name   string
		schema smartjson.Schema
		data   string
	}{
		{"extra fields", addressSchema, `{"name":"A","zip":"123","address":{"street":"s","city":"c","floor":2}}`},
		{"optional absent", addressSchema, `{"name":"A"}`},
		{"int satisfies float", smartjson.Schema{"price": {Type: smartjson.Float}}, `{"price":3}`},
		{"any accepts null", smartjson.Schema{"x": {Type: smartjson.Any, Required: true}}, `{"x":null}`},
		{"native type maps to canonical", smartjson.Schema{"when": {Type: smartjson.TypeOf[string]()}}, `{"when":"x"}`},
		{"struct type is dict", smartjson.Schema{"p": {Type: smartjson.TypeOf[person]()}}, `{"p":{}}`},
		{"nil schema", nil, `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := smartjson.DeserializeString(tc.data, smartjson.DeserializeOpt{Schema: tc.schema}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateParsed_NonMappingRoot(t *testing.T) {
	err := smartjson.ValidateParsed([]any{1}, addressSchema)
	expectViolation(t, err, "Invalid data type at 'root'. Expected a mapping, got 'list'.")
}

type address struct {
	Street string
	City   *string
}

type customer struct {
	Name    string    `json:"name"`
	Age     int       `json:"age"`
	Joined  time.Time `json:"joined"`
	Address *address  `json:"address"`
	Tags    []string  `json:"tags"`
}

func TestValidateNative(t *testing.T) {
	city := "Paris"
	full := customer{
		Name:    "Ada",
		Age:     37,
		Joined:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Address: &address{Street: "Main", City: &city},
		Tags:    []string{"a"},
	}
	schema := smartjson.Schema{
		"name":   {Type: smartjson.Str, Required: true},
		"age":    {Type: smartjson.Int},
		"joined": {Type: smartjson.TypeOf[time.Time](), Required: true},
		"address": {Type: smartjson.TypeOf[address](), Schema: smartjson.Schema{
			"City": {Type: smartjson.Str, Required: true},
		}},
		"tags": {Type: smartjson.List, ItemType: smartjson.Str},
	}
	if err := smartjson.ValidateNative(full, schema); err != nil {
		t.Fatalf("valid customer: %v", err)
	}
	if err := smartjson.ValidateNative(&full, schema); err != nil {
		t.Fatalf("pointer to valid customer: %v", err)
	}

	noCity := full
	noCity.Address = &address{Street: "Main"}
	expectViolation(t, smartjson.ValidateNative(noCity, schema), "Missing required field: 'address.City'")

	wrongAge := smartjson.Schema{"age": {Type: smartjson.Str}}
	expectViolation(t, smartjson.ValidateNative(full, wrongAge), "Invalid type for field 'age'. Expected 'str', got 'int'.")

	strictFloat := smartjson.Schema{"age": {Type: smartjson.Float}}
	expectViolation(t, smartjson.ValidateNative(full, strictFloat), "Invalid type for field 'age'. Expected 'float', got 'int'.")

	m := map[string]any{"name": 3}
	expectViolation(t, smartjson.ValidateNative(m, smartjson.Schema{"name": schema["name"]}), "Invalid type for field 'name'. Expected 'str', got 'int'.")

	expectViolation(t, smartjson.ValidateNative(42, schema), "Invalid data type at 'root'. Expected a mapping, got 'int'.")
}

func TestSerialize_SchemaRejectsBeforeConversion(t *testing.T) {
	self := &ref{Name: "x"}
	self.Ref = self
	_, err := smartjson.Serialize(self, smartjson.SerializeOpt{Schema: smartjson.Schema{
		"Name": {Type: smartjson.Int},
	}})
	// The schema violation wins over the cycle because validation runs first.
	if !errors.Is(err, smartjson.ErrSchemaValidation) {
		t.Fatalf("expected schema validation error, got %v", err)
	}
}

func TestSchemaCheck(t *testing.T) {
	cases := []struct {
		name   string
		schema smartjson.Schema
		msg    string
	}{
		{"unknown type", smartjson.Schema{"a": {Type: smartjson.TypeNamed("text")}},
			"Unknown type 'text' specified in schema for field 'a'."},
		{"unknown item type", smartjson.Schema{"a": {Type: smartjson.List, ItemType: smartjson.TypeNamed("number")}},
			"Unknown item_type 'number' in list schema for field 'a'."},
		{"item rules need list", smartjson.Schema{"a": {Type: smartjson.Str, ItemType: smartjson.Str}},
			"Item rules for field 'a' require type 'list', got 'str'."},
		{"item rules without type", smartjson.Schema{"a": {ItemType: smartjson.Str}},
			"Item rules for field 'a' require type 'list', got 'none'."},
		{"nested needs mapping", smartjson.Schema{"a": {Type: smartjson.Int, Schema: smartjson.Schema{}}},
			"Nested schema for field 'a' requires a mapping type, got 'int'."},
		{"item schema needs mapping", smartjson.Schema{"a": {Type: smartjson.List, ItemType: smartjson.Str, ItemSchema: smartjson.Schema{}}},
			"Item schema for field 'a' requires a mapping item_type, got 'str'."},
		{"deep", smartjson.Schema{"a": {Type: smartjson.Dict, Schema: smartjson.Schema{"b": {Type: smartjson.TypeNamed("x")}}}},
			"Unknown type 'x' specified in schema for field 'a.b'."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.schema.Check()
			if !errors.Is(err, smartjson.ErrInvalidSchema) {
				t.Fatalf("expected invalid schema, got %v", err)
			}
			if errors.Is(err, smartjson.ErrSchemaValidation) {
				t.Fatalf("invalid schema must not match ErrSchemaValidation")
			}
			if err.Error() != tc.msg {
				t.Fatalf("message = %q, want %q", err.Error(), tc.msg)
			}
			// The same error surfaces from validation entry points.
			_, derr := smartjson.DeserializeString(`{}`, smartjson.DeserializeOpt{Schema: tc.schema})
			if !errors.Is(derr, smartjson.ErrInvalidSchema) {
				t.Fatalf("deserialize: expected invalid schema, got %v", derr)
			}
		})
	}
}

// Parsed JSON has one number type, so integer literals satisfy 'float';
// native Go values keep their declared kind.
func TestValidate_FloatAndIntegers(t *testing.T) {
	schema := smartjson.Schema{"price": {Type: smartjson.Float, Required: true}}

	for _, doc := range []map[string]any{
		{"price": int64(3)},
		{"price": 3.5},
	} {
		if err := smartjson.ValidateParsed(doc, schema); err != nil {
			t.Fatalf("parsed %v: %v", doc, err)
		}
	}
	expectViolation(t, smartjson.ValidateParsed(map[string]any{"price": "3"}, schema),
		"Invalid type for field 'price'. Expected 'float', got 'str'.")
	expectViolation(t, smartjson.ValidateParsed(map[string]any{"price": true}, schema),
		"Invalid type for field 'price'. Expected 'float', got 'bool'.")

	type item struct {
		Price int `json:"price"`
	}
	expectViolation(t, smartjson.ValidateNative(item{Price: 3}, schema),
		"Invalid type for field 'price'. Expected 'float', got 'int'.")
	if err := smartjson.ValidateNative(map[string]any{"price": 3.5}, schema); err != nil {
		t.Fatalf("native float: %v", err)
	}
}
