// Package handler implements the REST contract of the TUMatch backend over
// the local entity store. It backs the offline mode and the tests.
package handler

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"tumatch/client/internal/auth"
	"tumatch/client/internal/logging"
	"tumatch/client/internal/models"
	"tumatch/client/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Detail string `json:"detail" example:"Event not found"`
}

// Handler serves the API over one store.
type Handler struct {
	store *store.Store
	log   logrus.FieldLogger
	now   func() time.Time
	// defaultUserID answers /users/me for anonymous callers.
	defaultUserID string

	// mu serializes check-then-write sequences such as joining.
	mu sync.Mutex
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(h *Handler) { h.log = log }
}

// WithDefaultUser sets the user /users/me resolves to without a token.
func WithDefaultUser(userID string) Option {
	return func(h *Handler) { h.defaultUserID = userID }
}

// WithClock overrides time.Now for joined_at stamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New creates a Handler over s.
func New(s *store.Store, opts ...Option) *Handler {
	h := &Handler{
		store: s,
		log:   logging.Discard(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Store returns the underlying entity store.
func (h *Handler) Store() *store.Store {
	return h.store
}

func (h *Handler) abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}

// internalError logs err and answers 500 with detail.
func (h *Handler) internalError(c *gin.Context, detail string, err error) {
	h.log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error(detail)
	h.abort(c, http.StatusInternalServerError, detail)
}

// callerID is the authenticated user, or the default user.
func (h *Handler) callerID(c *gin.Context) string {
	if id, ok := auth.UserID(c); ok {
		return id
	}
	return h.defaultUserID
}

func (h *Handler) getUser(ctx context.Context, id string) (*models.User, error) {
	rec, err := h.store.Get(ctx, store.Users, id)
	if err != nil || rec == nil {
		return nil, err
	}
	user, err := store.Decode[models.User](rec)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (h *Handler) usersByID(ctx context.Context) (map[string]models.User, error) {
	recs, err := h.store.List(ctx, store.Users, "", 0)
	if err != nil {
		return nil, err
	}
	users, err := store.DecodeAll[models.User](recs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// avatar returns the user's photo or a generated one.
func avatar(u models.User) string {
	if u.ProfilePhoto != "" {
		return u.ProfilePhoto
	}
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(u.FullName)
}
