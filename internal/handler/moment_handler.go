package handler

import (
	"net/http"

	"tumatch/client/internal/models"
	"tumatch/client/internal/store"

	"github.com/gin-gonic/gin"
)

// MomentInput is the body of CreateMoment.
type MomentInput struct {
	UserID   string `json:"user_id" binding:"required"`
	EventID  string `json:"event_id" binding:"required"`
	PhotoURL string `json:"photo_url" binding:"required"`
	Caption  string `json:"caption"`
}

// CreateMoment godoc
// @Summary      Create a moment
// @Tags         moments
// @Accept       json
// @Produce      json
// @Param        input body MomentInput true "Moment"
// @Success      201  {object}  models.Moment
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /moments [post]
func (h *Handler) CreateMoment(c *gin.Context) {
	ctx := c.Request.Context()
	var input MomentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.abort(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.getUser(ctx, input.UserID)
	if err != nil {
		h.internalError(c, "Failed to create moment", err)
		return
	}
	if user == nil {
		h.abort(c, http.StatusNotFound, "User not found")
		return
	}
	event, err := h.store.Get(ctx, store.Events, input.EventID)
	if err != nil {
		h.internalError(c, "Failed to create moment", err)
		return
	}
	if event == nil {
		h.abort(c, http.StatusNotFound, "Event not found")
		return
	}

	created, err := h.store.Create(ctx, store.Moments, store.Record{
		"user_id":   input.UserID,
		"event_id":  input.EventID,
		"photo_url": input.PhotoURL,
		"caption":   input.Caption,
	})
	if err != nil {
		h.internalError(c, "Failed to create moment", err)
		return
	}
	moment, err := store.Decode[models.Moment](created)
	if err != nil {
		h.internalError(c, "Failed to create moment", err)
		return
	}
	c.JSON(http.StatusCreated, moment)
}

// GetMoments godoc
// @Summary      List moments
// @Description  Lists moments newest first.
// @Tags         moments
// @Produce      json
// @Param        user_id   query string false "Filter by user"
// @Param        event_id  query string false "Filter by event"
// @Param        skip      query int    false "Items to skip" default(0)
// @Param        limit     query int    false "Max items" default(100)
// @Success      200 {array} models.Moment
// @Router       /moments [get]
func (h *Handler) GetMoments(c *gin.Context) {
	recs, err := h.store.List(c.Request.Context(), store.Moments, "-created_at", 0)
	if err != nil {
		h.internalError(c, "Failed to fetch moments", err)
		return
	}
	moments, err := store.DecodeAll[models.Moment](recs)
	if err != nil {
		h.internalError(c, "Failed to fetch moments", err)
		return
	}

	userID, eventID := c.Query("user_id"), c.Query("event_id")
	filtered := moments[:0]
	for _, m := range moments {
		if userID != "" && m.UserID != userID {
			continue
		}
		if eventID != "" && m.EventID != eventID {
			continue
		}
		filtered = append(filtered, m)
	}
	c.JSON(http.StatusOK, Paginate(filtered, parsePage(c)))
}

// GetMomentByID godoc
// @Summary      Get a moment
// @Tags         moments
// @Produce      json
// @Param        id   path      string  true  "Moment ID"
// @Success      200  {object}  models.Moment
// @Failure      404  {object}  ErrorResponse
// @Router       /moments/{id} [get]
func (h *Handler) GetMomentByID(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), store.Moments, c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to fetch moment", err)
		return
	}
	if rec == nil {
		h.abort(c, http.StatusNotFound, "Moment not found")
		return
	}
	moment, err := store.Decode[models.Moment](rec)
	if err != nil {
		h.internalError(c, "Failed to fetch moment", err)
		return
	}
	c.JSON(http.StatusOK, moment)
}

// DeleteMoment godoc
// @Summary      Delete a moment
// @Tags         moments
// @Param        id   path  string  true  "Moment ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /moments/{id} [delete]
func (h *Handler) DeleteMoment(c *gin.Context) {
	ctx := c.Request.Context()
	rec, err := h.store.Get(ctx, store.Moments, c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to delete moment", err)
		return
	}
	if rec == nil {
		h.abort(c, http.StatusNotFound, "Moment not found")
		return
	}
	if err := h.store.Delete(ctx, store.Moments, rec.ID()); err != nil {
		h.internalError(c, "Failed to delete moment", err)
		return
	}
	c.Status(http.StatusNoContent)
}
