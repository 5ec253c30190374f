package middleware

import (
	"github.com/gin-gonic/gin"
)

// clientIP is the address requests are rate limited and logged under. Forwarding
// headers count only when they come from a proxy trusted via Engine.SetTrustedProxies,
// so a client cannot pick a fresh address per request.
func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return c.RemoteIP()
}
