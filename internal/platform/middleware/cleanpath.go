package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// CleanPath collapses repeated slashes before routing, so that
// "/informe/imagen//1" reaches the "/informe/imagen/:id" route. Register it
// with e.Pre.
func CleanPath() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if strings.Contains(req.URL.Path, "//") {
				req.URL.Path = collapseSlashes(req.URL.Path)
				if req.URL.RawPath != "" {
					req.URL.RawPath = collapseSlashes(req.URL.RawPath)
				}
			}
			return next(c)
		}
	}
}

func collapseSlashes(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	prev := byte(0)
	for i := 0; i < len(p); i++ {
		if p[i] == '/' && prev == '/' {
			continue
		}
		prev = p[i]
		b.WriteByte(p[i])
	}
	return b.String()
}
