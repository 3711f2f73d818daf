package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/smartjson"
	"github.com/reoring/smartjson/middleware"
)

// ValidateJSON decodes the request body with c (middleware.DefaultOptions when nil),
// stores the node in the request context on success, or returns 400 with the
// error payload.
func ValidateJSON(c *smartjson.Codec, schema smartjson.Schema) echo.MiddlewareFunc {
	if c == nil {
		c = smartjson.New(middleware.DefaultOptions())
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			n, err := middleware.Decode(c, ec.Request(), schema)
			if err != nil {
				return ec.JSON(http.StatusBadRequest, middleware.ErrorPayload(err))
			}
			ec.SetRequest(ec.Request().WithContext(middleware.ContextWithNode(ec.Request().Context(), n)))
			return next(ec)
		}
	}
}

// GetNode fetches the decoded body from echo.Context.
func GetNode(ec echo.Context) (*smartjson.Node, bool) {
	return middleware.NodeFromContext(ec.Request().Context())
}
