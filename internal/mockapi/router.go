// Package mockapi serves the TUMatch REST API from the local entity store,
// either over HTTP or in-process through Transport.
package mockapi

import (
	"context"
	"net/http"
	"time"

	"tumatch/client/internal/auth"
	"tumatch/client/internal/handler"
	"tumatch/client/internal/logging"
	"tumatch/client/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Options configures the demo backend.
type Options struct {
	// JWTSecret enables bearer token parsing. Empty disables it.
	JWTSecret string
	// DefaultUserID answers /users/me without a token. Defaults to CurrentUserID.
	DefaultUserID string
	Logger        logrus.FieldLogger
	Now           func() time.Time
}

func (o *Options) defaults() {
	if o.DefaultUserID == "" {
		o.DefaultUserID = CurrentUserID
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// NewRouter builds the gin engine serving the API under /api.
func NewRouter(s *store.Store, opts Options) *gin.Engine {
	opts.defaults()
	h := handler.New(s,
		handler.WithLogger(opts.Logger),
		handler.WithDefaultUser(opts.DefaultUserID),
		handler.WithClock(opts.Now),
	)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Logger))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	api.Use(auth.OptionalAuthMiddleware(opts.JWTSecret))
	{
		userRoutes := api.Group("/users")
		{
			userRoutes.GET("", h.GetUsers)
			userRoutes.GET("/me", h.GetMe)
			userRoutes.GET("/:id", h.GetUserByID)
			userRoutes.GET("/:id/friendships", h.GetUserFriendships)
		}

		eventRoutes := api.Group("/events")
		{
			eventRoutes.GET("", h.GetEvents)
			eventRoutes.POST("", h.CreateEvent)
			eventRoutes.GET("/:id", h.GetEventByID)
			eventRoutes.DELETE("/:id", auth.CreatorOnlyMiddleware(s), h.DeleteEvent)
			eventRoutes.POST("/:id/join", h.JoinEvent)
			eventRoutes.DELETE("/:id/leave/:user_id", h.LeaveEvent)
			eventRoutes.GET("/:id/participants", h.GetEventParticipants)
		}

		friendshipRoutes := api.Group("/friendships")
		{
			friendshipRoutes.POST("", h.CreateFriendship)
			friendshipRoutes.PATCH("/:id", h.UpdateFriendship)
			friendshipRoutes.DELETE("/:id", h.DeleteFriendship)
		}

		momentRoutes := api.Group("/moments")
		{
			momentRoutes.GET("", h.GetMoments)
			momentRoutes.POST("", h.CreateMoment)
			momentRoutes.GET("/:id", h.GetMomentByID)
			momentRoutes.DELETE("/:id", h.DeleteMoment)
		}
	}

	return router
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"elapsed":    time.Since(start),
			"request_id": c.GetHeader("X-Request-ID"),
		}).Debug("handled request")
	}
}

// Open seeds s (only empty collections) and returns the router over it.
func Open(ctx context.Context, s *store.Store, opts Options) (*gin.Engine, error) {
	opts.defaults()
	if err := s.Init(ctx, Seed(opts.Now())); err != nil {
		return nil, err
	}
	return NewRouter(s, opts), nil
}
