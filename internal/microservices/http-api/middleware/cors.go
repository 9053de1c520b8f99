package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	AllowOrigin  = "*"
	AllowMethods = "GET, POST, OPTIONS"
	AllowHeaders = "Content-Type"
)

// CORS is installed on the whole engine: every response (404 included) gets
// the allow-origin header, and OPTIONS on any path is answered here as a
// preflight with the full header set and an empty body.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", AllowOrigin)

		if c.Request.Method == http.MethodOptions {
			setPolicyHeaders(c)
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// CORSPolicy adds the methods/headers pair to matched routes only.
func CORSPolicy() gin.HandlerFunc {
	return func(c *gin.Context) {
		setPolicyHeaders(c)
		c.Next()
	}
}

func setPolicyHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Methods", AllowMethods)
	c.Header("Access-Control-Allow-Headers", AllowHeaders)
}
