// Package codec encodes smartjson trees as CBOR (RFC 8949) instead of JSON.
// Values go through the same conversion, cycle detection and schema checks
// as smartjson.Serialize; decoded documents become *smartjson.Node trees
// exactly like parsed JSON.
package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/reoring/smartjson"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical data always
// produces identical bytes.
var encMode cbor.EncMode

// decMode decodes maps to map[string]any and integers to int64, matching
// the shapes the JSON parser produces.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		IntDec:          cbor.IntDecConvertSigned,
		MaxNestedLevels: smartjson.DefaultMaxDepth,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// MarshalCBOR converts v with c (the default codec when nil) and encodes
// the resulting tree. The last SerializeOpt's Schema is checked against v;
// Pretty has no meaning for CBOR and is ignored.
func MarshalCBOR(c *smartjson.Codec, v any, opts ...smartjson.SerializeOpt) ([]byte, error) {
	if c == nil {
		c = smartjson.Default()
	}
	var opt smartjson.SerializeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	tree, err := c.Tree(v, opt.Schema)
	if err != nil {
		return nil, err
	}
	data, err := encMode.Marshal(tree)
	if err != nil {
		return nil, &smartjson.Error{Code: smartjson.CodeSerialization, Message: "Failed to encode CBOR", Cause: err}
	}
	return data, nil
}

// UnmarshalCBOR decodes one CBOR data item and builds a Node from it with c
// (the default codec when nil), validating against the last option's schema.
func UnmarshalCBOR(c *smartjson.Codec, data []byte, opts ...smartjson.DeserializeOpt) (*smartjson.Node, error) {
	if c == nil {
		c = smartjson.Default()
	}
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
		return nil, &smartjson.Error{Code: smartjson.CodeDeserialization, Message: "Invalid CBOR input: " + err.Error(), Cause: err}
	}
	return c.DeserializeValue(v, opts...)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
