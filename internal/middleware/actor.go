package middleware

import "github.com/gin-gonic/gin"

// actorIDKey is the key used to store the acting user's ID in the Gin
// context. Authentication is out of scope for this service; callers
// identify themselves through the X-Actor-ID header for audit fields.
const actorIDKey = contextKey("actorID")

// defaultActorID is recorded when a caller supplies no identity.
const defaultActorID = "system"

// ActorMiddleware extracts the acting user ID from the X-Actor-ID
// header and stores it in the Gin context.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader("X-Actor-ID")
		if actorID == "" {
			actorID = defaultActorID
		}
		c.Set(string(actorIDKey), actorID)
		c.Next()
	}
}

// GetActorIDFromContext retrieves the acting user ID from the Gin context.
func GetActorIDFromContext(c *gin.Context) string {
	actorIDVal, exists := c.Get(string(actorIDKey))
	if !exists {
		return defaultActorID
	}
	actorID, ok := actorIDVal.(string)
	if !ok {
		return defaultActorID
	}
	return actorID
}
