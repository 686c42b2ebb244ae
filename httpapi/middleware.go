package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"newsroom/auth"
	"newsroom/domain"
)

const identityKey = "identity"

// bearerToken extracts the credential from the Authorization header,
// falling back to the "token" query parameter so that browser
// EventSource and websocket clients can authenticate too.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// AuthRequired rejects the request when no valid identity can be
// established.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := h.verifier.Verify(bearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or missing credentials"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// AuthOptional resolves the identity when a credential is present but
// lets anonymous requests through. Read endpoints use it so that
// visibility rules can still apply per caller.
func (h *Handler) AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		identity, err := h.verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or missing credentials"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireModerator gates moderation endpoints. AuthRequired must run
// first.
func (h *Handler) RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok || !domain.CanModerate(actor) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Access denied"})
			return
		}
		c.Next()
	}
}

// RequireAdmin gates account management endpoints. AuthRequired must run
// first.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok || actor.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Access denied"})
			return
		}
		c.Next()
	}
}

func currentActor(c *gin.Context) (domain.Actor, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return domain.Actor{}, false
	}
	identity, ok := value.(auth.Identity)
	if !ok {
		return domain.Actor{}, false
	}
	return identity.Actor(), true
}

// optionalActor returns nil for anonymous callers.
func optionalActor(c *gin.Context) *domain.Actor {
	actor, ok := currentActor(c)
	if !ok {
		return nil
	}
	return &actor
}
