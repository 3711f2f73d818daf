package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/smartjson"
	"github.com/reoring/smartjson/middleware"
)

// ValidateJSON decodes the request body with c (middleware.DefaultOptions when nil),
// validates it against schema and stores the node in the request context.
// On failure it aborts with 400 and the error payload.
func ValidateJSON(c *smartjson.Codec, schema smartjson.Schema) gin.HandlerFunc {
	if c == nil {
		c = smartjson.New(middleware.DefaultOptions())
	}
	return func(gc *gin.Context) {
		n, err := middleware.Decode(c, gc.Request, schema)
		if err != nil {
			gc.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(err))
			return
		}
		gc.Request = gc.Request.WithContext(middleware.ContextWithNode(gc.Request.Context(), n))
		gc.Next()
	}
}

// GetNode fetches the decoded body from gin.Context.
func GetNode(gc *gin.Context) (*smartjson.Node, bool) {
	return middleware.NodeFromContext(gc.Request.Context())
}
