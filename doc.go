// Package smartjson is a cycle-safe codec between arbitrary Go values and
// JSON.
//
// Serialization walks any value (structs, maps, slices, sets, ordered maps,
// container/list queues, enumerations, times, dates, complex numbers, byte
// slices) into a tree of maps, slices and scalars and emits it with sorted
// keys. Reference cycles are reported as errors rather than followed.
// Deserialization parses JSON into a *Node, an attribute-addressable tree
// whose timestamp-shaped strings come back as time.Time or Date.
//
// Both directions accept an optional Schema: it is checked against the
// original Go value before serialization, and against the parsed data
// before a Node is built.
//
// Wire conventions kept for compatibility with existing documents:
//
//   - nil serializes as "" rather than null;
//   - a list.List serializes as an object keyed "0", "1", ...;
//   - times render as "YYYY-MM-DD HH:MM:SS[.ffffff]" and dates as
//     "YYYY-MM-DD".
//
// Typical usage:
//
//	data, err := smartjson.Serialize(order, smartjson.SerializeOpt{Pretty: true})
//	node, err := smartjson.Deserialize(data, smartjson.DeserializeOpt{Schema: orderSchema})
//	price, ok := node.Lookup("items[0].price")
//
// Errors are *Error values; match kinds with errors.Is against
// ErrSerialization, ErrCircularDependency, ErrDeserialization,
// ErrSchemaValidation, ErrUnsupportedType and ErrInvalidSchema.
package smartjson
