// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"restoledger/internal/core/apperror"
	"restoledger/pkg/logger"
)

// Recovery converts a panic in a handler into a 500 INTERNAL_ERROR.
// A panic inside a ledger transaction has already rolled it back by the
// time it reaches here, so no half-applied document survives.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				"route", c.FullPath(),
				"panic", rec,
				"stack", string(debug.Stack()),
			)

			appErr := apperror.NewInternal(fmt.Errorf("panic: %v", rec))
			if rid := c.GetString("request_id"); rid != "" {
				appErr = appErr.WithDetail("request_id", rid)
			}
			_ = c.Error(appErr)
			c.Abort()
		}()
		c.Next()
	}
}
