package handler

import (
	"errors"
	"net/http"

	"tumatch/client/internal/models"
	"tumatch/client/internal/store"

	"github.com/gin-gonic/gin"
)

// FriendshipInput is the body of CreateFriendship.
type FriendshipInput struct {
	UserID   string `json:"user_id" binding:"required"`
	FriendID string `json:"friend_id" binding:"required"`
}

// CreateFriendship godoc
// @Summary      Send a friend request
// @Description  Creates a pending friendship from user_id to friend_id.
// @Tags         friendship
// @Accept       json
// @Produce      json
// @Param        input body FriendshipInput true "Friendship"
// @Success      201  {object}  models.Friendship
// @Failure      400  {object}  ErrorResponse "Friendship already exists"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /friendships [post]
func (h *Handler) CreateFriendship(c *gin.Context) {
	ctx := c.Request.Context()
	var input FriendshipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if input.UserID == input.FriendID {
		h.abort(c, http.StatusBadRequest, "Cannot befriend yourself")
		return
	}

	for _, id := range []string{input.UserID, input.FriendID} {
		u, err := h.getUser(ctx, id)
		if err != nil {
			h.internalError(c, "Failed to create friendship", err)
			return
		}
		if u == nil {
			h.abort(c, http.StatusNotFound, "User not found")
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	existing, err := h.friendshipsOf(c, input.UserID)
	if err != nil {
		h.internalError(c, "Failed to create friendship", err)
		return
	}
	for _, f := range existing {
		if f.Involves(input.UserID, input.FriendID) {
			h.abort(c, http.StatusBadRequest, "Friendship already exists")
			return
		}
	}

	created, err := h.store.Create(ctx, store.Friendships, store.Record{
		"user_id":   input.UserID,
		"friend_id": input.FriendID,
		"status":    string(models.StatusPending),
	})
	if err != nil {
		h.internalError(c, "Failed to create friendship", err)
		return
	}
	friendship, err := store.Decode[models.Friendship](created)
	if err != nil {
		h.internalError(c, "Failed to create friendship", err)
		return
	}
	c.JSON(http.StatusCreated, friendship)
}

// GetUserFriendships godoc
// @Summary      List a user's friendships
// @Description  Lists friendships where the user is on either side.
// @Tags         friendship
// @Produce      json
// @Param        id             path   string  true   "User ID"
// @Param        status_filter  query  string  false  "Filter by status (pending, accepted)"
// @Success      200  {array}   models.Friendship
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/friendships [get]
func (h *Handler) GetUserFriendships(c *gin.Context) {
	userID := c.Param("id")
	user, err := h.getUser(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, "Failed to fetch friendships", err)
		return
	}
	if user == nil {
		h.abort(c, http.StatusNotFound, "User not found")
		return
	}

	friendships, err := h.friendshipsOf(c, userID)
	if err != nil {
		h.internalError(c, "Failed to fetch friendships", err)
		return
	}
	if status := c.Query("status_filter"); status != "" {
		filtered := friendships[:0]
		for _, f := range friendships {
			if string(f.Status) == status {
				filtered = append(filtered, f)
			}
		}
		friendships = filtered
	}
	c.JSON(http.StatusOK, friendships)
}

// UpdateFriendship godoc
// @Summary      Accept or reject a friend request
// @Tags         friendship
// @Produce      json
// @Param        id             path   string  true  "Friendship ID"
// @Param        status_update  query  string  true  "accepted or rejected"
// @Success      200  {object}  models.Friendship
// @Failure      400  {object}  ErrorResponse "Invalid status"
// @Failure      404  {object}  ErrorResponse
// @Router       /friendships/{id} [patch]
func (h *Handler) UpdateFriendship(c *gin.Context) {
	status := models.FriendshipStatus(c.Query("status_update"))
	if status != models.StatusAccepted && status != models.StatusRejected {
		h.abort(c, http.StatusBadRequest, "Invalid status")
		return
	}

	updated, err := h.store.Update(c.Request.Context(), store.Friendships, c.Param("id"), store.Record{"status": string(status)})
	if errors.Is(err, store.ErrNotFound) {
		h.abort(c, http.StatusNotFound, "Friendship not found")
		return
	}
	if err != nil {
		h.internalError(c, "Failed to update friendship", err)
		return
	}
	friendship, err := store.Decode[models.Friendship](updated)
	if err != nil {
		h.internalError(c, "Failed to update friendship", err)
		return
	}
	c.JSON(http.StatusOK, friendship)
}

// DeleteFriendship godoc
// @Summary      Delete a friendship
// @Tags         friendship
// @Param        id   path  string  true  "Friendship ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /friendships/{id} [delete]
func (h *Handler) DeleteFriendship(c *gin.Context) {
	ctx := c.Request.Context()
	rec, err := h.store.Get(ctx, store.Friendships, c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to delete friendship", err)
		return
	}
	if rec == nil {
		h.abort(c, http.StatusNotFound, "Friendship not found")
		return
	}
	if err := h.store.Delete(ctx, store.Friendships, rec.ID()); err != nil {
		h.internalError(c, "Failed to delete friendship", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) friendshipsOf(c *gin.Context, userID string) ([]models.Friendship, error) {
	recs, err := h.store.List(c.Request.Context(), store.Friendships, "", 0)
	if err != nil {
		return nil, err
	}
	all, err := store.DecodeAll[models.Friendship](recs)
	if err != nil {
		return nil, err
	}
	out := make([]models.Friendship, 0, len(all))
	for _, f := range all {
		if f.UserID == userID || f.FriendID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}
