package smartjson

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
)

// Codec converts Go values to JSON and JSON to Node trees. A Codec is
// immutable after New and safe for concurrent use: every call owns its own
// conversion state.
type Codec struct {
	opts Options
	log  *slog.Logger
}

// New returns a Codec configured by opts. The registry, if any, is sealed.
func New(opts Options) *Codec {
	if opts.Registry != nil {
		opts.Registry.Seal()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Codec{opts: opts, log: logger}
}

var defaultCodec = New(Options{})

// Default returns the Codec used by the package-level functions.
func Default() *Codec { return defaultCodec }

// Options returns a copy of the codec's options.
func (c *Codec) Options() Options { return c.opts }

// Convert returns the JSON-compatible tree for v without emitting text.
// Ordered inputs (OrderedMap, list.List) stay *OrderedMap in the result.
// Complex numbers carry their Go text form, for example "(1+2i)", as
// "expression" next to "real" and "imag".
func (c *Codec) Convert(v any) (any, error) {
	out, err := c.newConversion().value(reflect.ValueOf(v), "")
	if err != nil {
		if isTaxonomy(err) {
			return nil, err
		}
		e := wrapError(CodeSerialization, err, "Failed to convert value of type '%s'", typeNameOf(v))
		e.TypeName = typeNameOf(v)
		return nil, e
	}
	if c.opts.TypeEnvelope && categorize(reflect.ValueOf(v)) == CategoryOpaque {
		out = map[string]any{typeBaseName(v, "object"): out}
	}
	return out, nil
}

// Tree validates v against schema (when non-nil), converts it and returns
// the plain tree of maps, slices and scalars handed to encoders. Values
// without a JSON representation are reported here.
func (c *Codec) Tree(v any, schema Schema) (any, error) {
	if schema != nil {
		if err := ValidateNative(v, schema); err != nil {
			return nil, err
		}
	}
	conv, err := c.Convert(v)
	if err != nil {
		return nil, err
	}
	tree := plainTree(conv)
	if err := checkEmittable(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Serialize renders v as JSON with sorted keys. A schema in opts is checked
// against v itself before conversion.
func (c *Codec) Serialize(v any, opts ...SerializeOpt) ([]byte, error) {
	opt := lastSerializeOpt(opts)
	c.log.Debug("serialize", "type", typeNameOf(v), "pretty", opt.Pretty, "schema", opt.Schema != nil)
	tree, err := c.Tree(v, opt.Schema)
	if err != nil {
		return nil, err
	}
	return emit(tree, opt.Pretty)
}

// SerializeToFile writes v as indented JSON to dir/filename, creating dir
// when needed, and returns the path written. An empty filename defaults to
// "<TypeName>.json", or "smart.json" for unnamed types.
func (c *Codec) SerializeToFile(v any, dir, filename string, opts ...SerializeOpt) (string, error) {
	if filename == "" {
		filename = typeBaseName(v, "smart") + ".json"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", wrapError(CodeSerialization, err, "Could not create directory '%s'", dir)
	}
	opt := lastSerializeOpt(opts)
	opt.Pretty = true
	data, err := c.Serialize(v, opt)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", wrapError(CodeSerialization, err, "Failed to serialize object of type '%s' to file '%s'", typeNameOf(v), path)
	}
	c.log.Debug("wrote file", "path", path, "bytes", len(data))
	return path, nil
}

// typeBaseName is the unqualified name of v's type after dereferencing, or
// fallback for unnamed types.
func typeBaseName(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	if name := baseType(reflect.TypeOf(v)).Name(); name != "" {
		return name
	}
	return fallback
}

// ---- package-level wrappers over Default() ----

// Serialize renders v with the default codec.
func Serialize(v any, opts ...SerializeOpt) ([]byte, error) {
	return Default().Serialize(v, opts...)
}

// SerializeToFile writes v with the default codec.
func SerializeToFile(v any, dir, filename string, opts ...SerializeOpt) (string, error) {
	return Default().SerializeToFile(v, dir, filename, opts...)
}

// Convert converts v with the default codec.
func Convert(v any) (any, error) { return Default().Convert(v) }

// Deserialize parses UTF-8 JSON bytes with the default codec.
func Deserialize(data []byte, opts ...DeserializeOpt) (*Node, error) {
	return Default().Deserialize(data, opts...)
}

// DeserializeString parses JSON text with the default codec.
func DeserializeString(s string, opts ...DeserializeOpt) (*Node, error) {
	return Default().DeserializeString(s, opts...)
}

// DeserializeMap builds a Node from already-parsed data with the default codec.
func DeserializeMap(m map[string]any, opts ...DeserializeOpt) (*Node, error) {
	return Default().DeserializeMap(m, opts...)
}

// DeserializeReader parses JSON from r with the default codec.
func DeserializeReader(r io.Reader, opts ...DeserializeOpt) (*Node, error) {
	return Default().DeserializeReader(r, opts...)
}

// DeserializeFile parses the JSON file at path with the default codec.
func DeserializeFile(path string, opts ...DeserializeOpt) (*Node, error) {
	return Default().DeserializeFile(path, opts...)
}
