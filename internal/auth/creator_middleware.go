package auth

import (
	"net/http"

	"tumatch/client/internal/store"

	"github.com/gin-gonic/gin"
)

// CreatorOnlyMiddleware rejects requests on the event named by the :id path
// parameter unless the caller created it. It must be used AFTER
// OptionalAuthMiddleware. Anonymous callers and unknown events pass through;
// the handler decides what to do with them.
func CreatorOnlyMiddleware(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.Next()
			return
		}

		event, err := s.Get(c.Request.Context(), store.Events, c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Failed to load event"})
			return
		}
		if event == nil {
			c.Next()
			return
		}

		if creator, _ := event["creator_id"].(string); creator != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Only the creator can delete this event"})
			return
		}

		c.Next()
	}
}
