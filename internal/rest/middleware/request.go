package middleware

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/gin-gonic/gin"
)

func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// TenantMiddleware copies the caller identity headers into the request
// context. Authentication happens upstream at the gateway; this service
// trusts the forwarded headers.
func TenantMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	if tenantID := c.GetHeader(types.HeaderTenantID); tenantID != "" {
		ctx = types.SetTenantID(ctx, tenantID)
	}
	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = types.SetUserID(ctx, userID)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
