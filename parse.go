package smartjson

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	eng "github.com/reoring/smartjson/internal/engine"
	"github.com/reoring/smartjson/source/gojson"
)

// Deserialize parses UTF-8 JSON bytes into a Node. A schema in opts is
// checked against the parsed data before the Node is built.
func (c *Codec) Deserialize(data []byte, opts ...DeserializeOpt) (*Node, error) {
	if !utf8.Valid(data) {
		return nil, newError(CodeDeserialization, "", "Input bytes could not be decoded using UTF-8")
	}
	v, err := c.parseJSON(data)
	if err != nil {
		return nil, wrapError(CodeDeserialization, err, "Invalid JSON format in input: %s", err)
	}
	return c.DeserializeValue(v, opts...)
}

// DeserializeString parses JSON text into a Node.
func (c *Codec) DeserializeString(s string, opts ...DeserializeOpt) (*Node, error) {
	return c.Deserialize([]byte(s), opts...)
}

// DeserializeMap builds a Node from an already-parsed mapping.
func (c *Codec) DeserializeMap(m map[string]any, opts ...DeserializeOpt) (*Node, error) {
	return c.DeserializeValue(m, opts...)
}

// DeserializeValue validates already-parsed data and builds a Node from it.
// Decoders for other wire formats end here.
func (c *Codec) DeserializeValue(v any, opts ...DeserializeOpt) (*Node, error) {
	opt := lastDeserializeOpt(opts)
	if opt.Schema != nil {
		if err := ValidateParsed(v, opt.Schema); err != nil {
			return nil, err
		}
	}
	return c.BuildNode(v)
}

// DeserializeReader reads r to the end and parses it. When MaxBytes is set
// at most MaxBytes+1 bytes are read.
func (c *Codec) DeserializeReader(r io.Reader, opts ...DeserializeOpt) (*Node, error) {
	if c.opts.MaxBytes > 0 {
		r = io.LimitReader(r, c.opts.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapError(CodeDeserialization, err, "I/O error reading input")
	}
	return c.Deserialize(data, opts...)
}

// DeserializeFile parses the JSON file at path.
func (c *Codec) DeserializeFile(path string, opts ...DeserializeOpt) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e := wrapError(CodeDeserialization, err, "JSON file not found: %s", path)
			e.Path = path
			return nil, e
		}
		return nil, wrapError(CodeDeserialization, err, "I/O error reading file '%s'", path)
	}
	c.log.Debug("deserialize file", "path", path, "bytes", len(data))
	if !utf8.Valid(data) {
		return nil, newError(CodeDeserialization, "", "File '%s' could not be decoded using UTF-8", path)
	}
	v, err := c.parseJSON(data)
	if err != nil {
		return nil, wrapError(CodeDeserialization, err, "Invalid JSON format in file '%s': %s", path, err)
	}
	return c.DeserializeValue(v, opts...)
}

// parseJSON decodes exactly one JSON document, enforcing the codec's depth,
// size and duplicate-key limits while tokens stream in.
func (c *Codec) parseJSON(data []byte) (any, error) {
	if c.opts.MaxBytes > 0 && int64(len(data)) > c.opts.MaxBytes {
		return nil, eng.IssueError{SimpleIssue: eng.SimpleIssue{Code: eng.CodeMaxBytes, Message: "max bytes exceeded"}}
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, io.ErrUnexpectedEOF
	}
	src := eng.WrapWithEnforcement(gojson.NewBytes(data), eng.EnforceOptions{
		OnDuplicate: toEngineDup(c.opts.Strictness.OnDuplicateKey),
		MaxDepth:    c.opts.maxDepth(),
		MaxBytes:    c.opts.MaxBytes,
		IssueSink: func(si eng.SimpleIssue) {
			if si.Code == eng.CodeDuplicateKey && c.opts.Strictness.OnDuplicateKey == Warn {
				c.log.Warn("duplicate JSON key", "path", si.Path, "message", si.Message)
			}
		},
	})
	c.log.Debug("deserialize", "bytes", len(data))
	return eng.DecodeDocument(src)
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Reject:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}
