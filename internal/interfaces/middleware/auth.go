package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/pkg/auth"
	"github.com/rtCamp/next-crm/pkg/constants"
)

// TokenValidator parses session tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

func unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		constants.ResponseError: "Unauthorized",
		constants.FieldMessage:  message,
		"code":                  "UNAUTHORIZED",
		"data":                  nil,
	})
	c.Abort()
}

// RequireAuth is a middleware that validates JWT tokens
func RequireAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get token from Authorization header
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			unauthorized(c, "No authorization token provided")
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		tokenString := parts[1]
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		// Set user session in context
		c.Set(constants.ContextKeyUser, claims.User)
		c.Set(constants.ContextKeyToken, tokenString)

		c.Next()
	}
}

// Cors allows browser clients from any origin, credentials included
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept, X-Requested-With")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
