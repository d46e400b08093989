package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// actorKey is the gin context key holding the authenticated actor's username
const actorKey = "actor"

// systemActor is recorded when no authenticated user is present
const systemActor = "system"

// ActorFromToken resolves the acting user from a Bearer token's subject claim.
// Requests without a token, or with one that fails verification, proceed as
// the system actor; access control lives at the gateway, this only attributes
// actions for the audit fields.
func ActorFromToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := systemActor

		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			if sub := subjectClaim(token, secret); sub != "" {
				actor = sub
			}
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// Actor returns the acting username for the request
func Actor(c *gin.Context) string {
	if actor := c.GetString(actorKey); actor != "" {
		return actor
	}
	return systemActor
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

func subjectClaim(tokenString, secret string) string {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
