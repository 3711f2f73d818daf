package smartjson

import "log/slog"

// DefaultMaxDepth bounds recursion for both conversion and parsing when
// Options.MaxDepth is zero.
const DefaultMaxDepth = 10000

// Severity expresses the severity level for duplicate JSON keys.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Reject
)

// Strictness configures enforcement for duplicate keys while parsing.
type Strictness struct {
	OnDuplicateKey Severity // Ignore, Warn (logged) or Reject.
}

// Options configures a Codec. The zero value is usable.
type Options struct {
	// Registry supplies custom handlers for values the converter does not
	// recognize. It is sealed by New.
	Registry *Registry
	// Logger receives debug records; nil disables logging.
	Logger *slog.Logger
	// MaxDepth bounds nesting during conversion and parsing (0 = DefaultMaxDepth,
	// negative = unlimited).
	MaxDepth int
	// MaxBytes caps the size of parsed input (0 = unlimited).
	MaxBytes int64
	// LegacyWrapping reproduces the one-element list wrapping of enumeration
	// (and root-list mapping) values.
	LegacyWrapping bool
	// TypeEnvelope wraps a top-level opaque value as {"<TypeName>": fields}.
	TypeEnvelope bool
	Strictness   Strictness
}

// SerializeOpt bundles per-call serialization options.
type SerializeOpt struct {
	Pretty bool   // 2-space indentation; keys are sorted either way.
	Schema Schema // Validated against the original value before conversion.
}

// DeserializeOpt bundles per-call deserialization options.
type DeserializeOpt struct {
	Schema Schema // Validated against the parsed data before the Node is built.
}

func (o Options) maxDepth() int {
	switch {
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	case o.MaxDepth < 0:
		return 0
	}
	return o.MaxDepth
}

func lastSerializeOpt(opts []SerializeOpt) SerializeOpt {
	var opt SerializeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}

func lastDeserializeOpt(opts []DeserializeOpt) DeserializeOpt {
	var opt DeserializeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}
