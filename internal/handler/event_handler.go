package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"tumatch/client/internal/models"
	"tumatch/client/internal/store"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// EventInput is the body of CreateEvent.
type EventInput struct {
	Title           string     `json:"title" binding:"required" example:"Coffee & Code"`
	Description     string     `json:"description"`
	Category        string     `json:"category" binding:"required" example:"Social"`
	Location        string     `json:"location" binding:"required" example:"Mensa"`
	ImageURL        string     `json:"image_url"`
	StartTime       time.Time  `json:"start_time" binding:"required"`
	EndTime         *time.Time `json:"end_time"`
	MaxParticipants *int       `json:"max_participants" binding:"omitempty,min=0"`
	CreatorID       string     `json:"creator_id" binding:"required"`
}

// eventRecord is the stored shape of an event; derived fields are computed on read.
type eventRecord struct {
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	Category        string             `json:"category"`
	Location        string             `json:"location"`
	ImageURL        string             `json:"image_url,omitempty"`
	StartTime       time.Time          `json:"start_time"`
	EndTime         *time.Time         `json:"end_time,omitempty"`
	MaxParticipants *int               `json:"max_participants,omitempty"`
	Status          models.EventStatus `json:"status"`
	CreatorID       string             `json:"creator_id"`
}

// endregion

// eventView holds what annotate needs besides the event itself.
type eventView struct {
	users   map[string]models.User
	rosters map[string][]models.EventParticipant
}

func (h *Handler) loadView(ctx context.Context) (*eventView, error) {
	users, err := h.usersByID(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := h.store.List(ctx, store.EventParticipants, "", 0)
	if err != nil {
		return nil, err
	}
	participants, err := store.DecodeAll[models.EventParticipant](recs)
	if err != nil {
		return nil, err
	}
	rosters := make(map[string][]models.EventParticipant)
	for _, p := range participants {
		rosters[p.EventID] = append(rosters[p.EventID], p)
	}
	return &eventView{users: users, rosters: rosters}, nil
}

// annotate fills the derived fields of e. preview bounds the participant
// preview (0 means all). participant_count always comes from the roster.
func (v *eventView) annotate(e *models.Event, preview int, currentUserID string) {
	roster := v.rosters[e.ID]
	e.ParticipantCount = len(roster)

	e.Participants = []models.ParticipantInfo{}
	for _, p := range roster {
		if preview > 0 && len(e.Participants) == preview {
			break
		}
		u, ok := v.users[p.UserID]
		if !ok {
			continue
		}
		e.Participants = append(e.Participants, models.ParticipantInfo{
			UserID: p.UserID,
			Name:   u.FullName,
			Photo:  avatar(u),
		})
	}

	e.OrganizerID = e.CreatorID
	if creator, ok := v.users[e.CreatorID]; ok {
		e.OrganizerName = creator.FullName
		e.OrganizerPhoto = creator.ProfilePhoto
		e.OrganizerDepartment = creator.Department
	}

	e.CurrentUserJoined = false
	if currentUserID != "" {
		for _, p := range roster {
			if p.UserID == currentUserID {
				e.CurrentUserJoined = true
				break
			}
		}
	}
}

// GetEvents godoc
// @Summary      List events
// @Description  Lists events with a participant preview. Filters are ANDed.
// @Tags         events
// @Produce      json
// @Param        category        query string false "Category"
// @Param        search          query string false "Search over title, description and location"
// @Param        creator_id      query string false "Creator"
// @Param        current_user_id query string false "Annotate current_user_joined for this user"
// @Param        skip            query int    false "Items to skip" default(0)
// @Param        limit           query int    false "Max items" default(100)
// @Success      200 {array} models.Event
// @Router       /events [get]
func (h *Handler) GetEvents(c *gin.Context) {
	ctx := c.Request.Context()
	recs, err := h.store.List(ctx, store.Events, "", 0)
	if err != nil {
		h.internalError(c, "Failed to fetch events", err)
		return
	}
	events, err := store.DecodeAll[models.Event](recs)
	if err != nil {
		h.internalError(c, "Failed to fetch events", err)
		return
	}

	category := c.Query("category")
	creatorID := c.Query("creator_id")
	search := strings.ToLower(c.Query("search"))
	filtered := events[:0]
	for _, e := range events {
		if category != "" && e.Category != category {
			continue
		}
		if creatorID != "" && e.CreatorID != creatorID {
			continue
		}
		if search != "" && !containsAny(search, e.Title, e.Description, e.Location) {
			continue
		}
		filtered = append(filtered, e)
	}
	events = Paginate(filtered, parsePage(c))

	view, err := h.loadView(ctx)
	if err != nil {
		h.internalError(c, "Failed to fetch events", err)
		return
	}
	currentUserID := c.Query("current_user_id")
	for i := range events {
		view.annotate(&events[i], 3, currentUserID)
	}

	c.JSON(http.StatusOK, events)
}

// GetEventByID godoc
// @Summary      Get an event
// @Description  Returns one event with all its participants.
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  models.Event
// @Failure      404  {object}  ErrorResponse
// @Router       /events/{id} [get]
func (h *Handler) GetEventByID(c *gin.Context) {
	ctx := c.Request.Context()
	event, ok := h.findEvent(c)
	if !ok {
		return
	}
	view, err := h.loadView(ctx)
	if err != nil {
		h.internalError(c, "Failed to fetch event", err)
		return
	}
	view.annotate(event, 0, h.callerID(c))
	c.JSON(http.StatusOK, event)
}

// CreateEvent godoc
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        input body EventInput true "Event Info"
// @Success      201  {object}  models.Event
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Creator not found"
// @Router       /events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	ctx := c.Request.Context()
	var input EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.abort(c, http.StatusBadRequest, err.Error())
		return
	}

	creator, err := h.getUser(ctx, input.CreatorID)
	if err != nil {
		h.internalError(c, "Failed to create event", err)
		return
	}
	if creator == nil {
		h.abort(c, http.StatusNotFound, "Creator not found")
		return
	}

	rec, err := store.Encode(eventRecord{
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		Location:        input.Location,
		ImageURL:        input.ImageURL,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		MaxParticipants: input.MaxParticipants,
		Status:          models.EventStatusActive,
		CreatorID:       input.CreatorID,
	})
	if err != nil {
		h.internalError(c, "Failed to create event", err)
		return
	}
	created, err := h.store.Create(ctx, store.Events, rec)
	if err != nil {
		h.internalError(c, "Failed to create event", err)
		return
	}
	event, err := store.Decode[models.Event](created)
	if err != nil {
		h.internalError(c, "Failed to create event", err)
		return
	}

	h.log.WithField("event_id", event.ID).Info("event created")
	c.JSON(http.StatusCreated, event)
}

// DeleteEvent godoc
// @Summary      Delete an event
// @Description  Deletes an event with its participants and moments. Only the creator may do so when authenticated.
// @Tags         events
// @Security     BearerAuth
// @Param        id   path  string  true  "Event ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /events/{id} [delete]
func (h *Handler) DeleteEvent(c *gin.Context) {
	ctx := c.Request.Context()
	if _, ok := h.findEvent(c); !ok {
		return
	}
	eventID := c.Param("id")

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, collection := range []string{store.EventParticipants, store.Moments} {
		recs, err := h.store.Filter(ctx, collection, map[string]any{"event_id": eventID})
		if err != nil {
			h.internalError(c, "Failed to delete event", err)
			return
		}
		for _, r := range recs {
			if err := h.store.Delete(ctx, collection, r.ID()); err != nil {
				h.internalError(c, "Failed to delete event", err)
				return
			}
		}
	}
	if err := h.store.Delete(ctx, store.Events, eventID); err != nil {
		h.internalError(c, "Failed to delete event", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// findEvent loads the :id event or answers 404.
func (h *Handler) findEvent(c *gin.Context) (*models.Event, bool) {
	rec, err := h.store.Get(c.Request.Context(), store.Events, c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to fetch event", err)
		return nil, false
	}
	if rec == nil {
		h.abort(c, http.StatusNotFound, "Event not found")
		return nil, false
	}
	event, err := store.Decode[models.Event](rec)
	if err != nil {
		h.internalError(c, "Failed to fetch event", err)
		return nil, false
	}
	return &event, true
}
