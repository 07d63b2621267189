package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CustomerIDContextKey is a gin context key for the authenticated customer identifier.
const CustomerIDContextKey = "customerID"

// TokenParser verifies an identity token and returns its subject.
type TokenParser interface {
	ParseToken(ctx context.Context, token string) (string, error)
}

type errorBody struct {
	Message string `json:"message"`
}

// OptionalAuth identifies the caller when a bearer token is present.
// Requests without a token continue anonymously; an invalid token is rejected.
func OptionalAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		customerID, err := parser.ParseToken(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: "Token is invalid"})
			return
		}

		c.Set(CustomerIDContextKey, customerID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
