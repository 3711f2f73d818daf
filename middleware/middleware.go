// Package middleware decodes JSON request bodies into smartjson nodes at HTTP
// boundaries. Framework adapters live in the gin and echo subdirectories.
package middleware

import (
	"context"
	"net/http"

	"github.com/reoring/smartjson"
)

// DefaultMaxBodyBytes is the body limit used by DefaultOptions.
const DefaultMaxBodyBytes = 1 << 20

type ctxKeyNode struct{}

// ContextWithNode attaches a decoded body to the context.
func ContextWithNode(ctx context.Context, n *smartjson.Node) context.Context {
	return context.WithValue(ctx, ctxKeyNode{}, n)
}

// NodeFromContext retrieves the decoded body stored by ValidateJSON.
func NodeFromContext(ctx context.Context) (*smartjson.Node, bool) {
	n, ok := ctx.Value(ctxKeyNode{}).(*smartjson.Node)
	return n, ok
}

// DefaultOptions returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Bodies are capped at DefaultMaxBodyBytes
func DefaultOptions() smartjson.Options {
	return smartjson.Options{
		MaxBytes:   DefaultMaxBodyBytes,
		Strictness: smartjson.Strictness{OnDuplicateKey: smartjson.Reject},
	}
}

// Decode reads r's body with c (a codec built from DefaultOptions when nil)
// and validates it against schema.
func Decode(c *smartjson.Codec, r *http.Request, schema smartjson.Schema) (*smartjson.Node, error) {
	if c == nil {
		c = smartjson.New(DefaultOptions())
	}
	return c.DeserializeReader(r.Body, smartjson.DeserializeOpt{Schema: schema})
}

// ErrorPayload shapes an error for JSON responses.
func ErrorPayload(err error) map[string]any {
	body := map[string]any{"message": err.Error()}
	if e, ok := smartjson.AsError(err); ok {
		body["code"] = e.Code
		body["message"] = e.Message
		if e.Path != "" {
			body["path"] = e.Path
		}
	}
	return map[string]any{"error": body}
}

// WriteError answers with status and the JSON ErrorPayload for err.
func WriteError(w http.ResponseWriter, status int, err error) {
	data, merr := smartjson.Serialize(ErrorPayload(err))
	if merr != nil {
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// ValidateJSON decodes and validates the request body, stores the node in
// the request context and calls next; failures are answered with 400.
func ValidateJSON(c *smartjson.Codec, schema smartjson.Schema) func(http.Handler) http.Handler {
	if c == nil {
		c = smartjson.New(DefaultOptions())
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n, err := Decode(c, r, schema)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithNode(r.Context(), n)))
		})
	}
}
