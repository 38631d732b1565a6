package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Authentication mechanics live in the gateway in front of this
// service; it forwards the verified user as a header. This middleware
// only resolves that header into the request context.
const actorHeader = "X-Actor-ID"

const actorContextKey = "actor_id"

// ActorMiddleware extracts the acting user's id from the request
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(actorHeader)
		if actorID != "" {
			if _, err := uuid.Parse(actorID); err == nil {
				c.Set(actorContextKey, actorID)
			}
		}
		c.Next()
	}
}

// ActorRequired aborts requests that carry no valid actor id
func ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActorID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "actor identity required"})
			return
		}
		c.Next()
	}
}

// GetActorID returns the resolved actor id or an empty string
func GetActorID(c *gin.Context) string {
	if id, exists := c.Get(actorContextKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
