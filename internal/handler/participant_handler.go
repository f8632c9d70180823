package handler

import (
	"net/http"
	"time"

	"tumatch/client/internal/models"
	"tumatch/client/internal/store"

	"github.com/gin-gonic/gin"
)

// JoinInput is the body of JoinEvent. EventID is informative; the path wins.
type JoinInput struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id" binding:"required"`
}

type participantRecord struct {
	EventID  string                   `json:"event_id"`
	UserID   string                   `json:"user_id"`
	JoinedAt time.Time                `json:"joined_at"`
	Status   models.ParticipantStatus `json:"status"`
}

// JoinEvent godoc
// @Summary      Join an event
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        id    path  string     true  "Event ID"
// @Param        input body  JoinInput  true  "Participant"
// @Success      201  {object}  models.EventParticipant
// @Failure      400  {object}  ErrorResponse "Already joined this event / Event is full"
// @Failure      404  {object}  ErrorResponse
// @Router       /events/{id}/join [post]
func (h *Handler) JoinEvent(c *gin.Context) {
	ctx := c.Request.Context()
	var input JoinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.abort(c, http.StatusBadRequest, err.Error())
		return
	}

	event, ok := h.findEvent(c)
	if !ok {
		return
	}
	user, err := h.getUser(ctx, input.UserID)
	if err != nil {
		h.internalError(c, "Failed to join event", err)
		return
	}
	if user == nil {
		h.abort(c, http.StatusNotFound, "User not found")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	roster, err := h.store.Filter(ctx, store.EventParticipants, map[string]any{"event_id": event.ID})
	if err != nil {
		h.internalError(c, "Failed to join event", err)
		return
	}
	for _, r := range roster {
		if uid, _ := r["user_id"].(string); uid == user.ID {
			h.abort(c, http.StatusBadRequest, "Already joined this event")
			return
		}
	}
	if event.MaxParticipants != nil && *event.MaxParticipants > 0 && len(roster) >= *event.MaxParticipants {
		h.abort(c, http.StatusBadRequest, "Event is full")
		return
	}

	rec, err := store.Encode(participantRecord{
		EventID:  event.ID,
		UserID:   user.ID,
		JoinedAt: h.now().UTC(),
		Status:   models.ParticipantStatusJoined,
	})
	if err != nil {
		h.internalError(c, "Failed to join event", err)
		return
	}
	created, err := h.store.Create(ctx, store.EventParticipants, rec)
	if err != nil {
		h.internalError(c, "Failed to join event", err)
		return
	}
	participant, err := store.Decode[models.EventParticipant](created)
	if err != nil {
		h.internalError(c, "Failed to join event", err)
		return
	}

	c.JSON(http.StatusCreated, participant)
}

// LeaveEvent godoc
// @Summary      Leave an event
// @Tags         participants
// @Param        id       path  string  true  "Event ID"
// @Param        user_id  path  string  true  "User ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse "Participant not found"
// @Router       /events/{id}/leave/{user_id} [delete]
func (h *Handler) LeaveEvent(c *gin.Context) {
	ctx := c.Request.Context()

	h.mu.Lock()
	defer h.mu.Unlock()

	recs, err := h.store.Filter(ctx, store.EventParticipants, map[string]any{
		"event_id": c.Param("id"),
		"user_id":  c.Param("user_id"),
	})
	if err != nil {
		h.internalError(c, "Failed to leave event", err)
		return
	}
	if len(recs) == 0 {
		h.abort(c, http.StatusNotFound, "Participant not found")
		return
	}
	for _, r := range recs {
		if err := h.store.Delete(ctx, store.EventParticipants, r.ID()); err != nil {
			h.internalError(c, "Failed to leave event", err)
			return
		}
	}

	c.Status(http.StatusNoContent)
}

// GetEventParticipants godoc
// @Summary      List event participants
// @Description  Returns the authoritative roster of an event.
// @Tags         participants
// @Produce      json
// @Param        id   path  string  true  "Event ID"
// @Success      200  {array}   models.EventParticipant
// @Failure      404  {object}  ErrorResponse
// @Router       /events/{id}/participants [get]
func (h *Handler) GetEventParticipants(c *gin.Context) {
	event, ok := h.findEvent(c)
	if !ok {
		return
	}
	recs, err := h.store.Filter(c.Request.Context(), store.EventParticipants, map[string]any{"event_id": event.ID})
	if err != nil {
		h.internalError(c, "Failed to fetch participants", err)
		return
	}
	participants, err := store.DecodeAll[models.EventParticipant](recs)
	if err != nil {
		h.internalError(c, "Failed to fetch participants", err)
		return
	}
	c.JSON(http.StatusOK, participants)
}
