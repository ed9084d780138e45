package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
)

// dbctxFromGin threads the request's context.Context (carrying
// ctxutil.RequestData and any OpenTelemetry span) into the repo layer.
func dbctxFromGin(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}
