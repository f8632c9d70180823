package handler

import (
	"net/http"
	"strings"

	"tumatch/client/internal/models"
	"tumatch/client/internal/store"

	"github.com/gin-gonic/gin"
)

// GetUsers godoc
// @Summary      List users
// @Description  Lists users, optionally filtered by a search term over name, email and department.
// @Tags         users
// @Produce      json
// @Param        search query string false "Search term"
// @Param        skip   query int    false "Items to skip" default(0)
// @Param        limit  query int    false "Max items" default(100)
// @Success      200 {array} models.User
// @Router       /users [get]
func (h *Handler) GetUsers(c *gin.Context) {
	recs, err := h.store.List(c.Request.Context(), store.Users, "", 0)
	if err != nil {
		h.internalError(c, "Failed to fetch users", err)
		return
	}
	users, err := store.DecodeAll[models.User](recs)
	if err != nil {
		h.internalError(c, "Failed to fetch users", err)
		return
	}

	if search := strings.ToLower(c.Query("search")); search != "" {
		filtered := users[:0]
		for _, u := range users {
			if containsAny(search, u.FullName, u.Email, u.Department) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	c.JSON(http.StatusOK, Paginate(users, parsePage(c)))
}

// GetUserByID godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  models.User
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetUserByID(c *gin.Context) {
	user, err := h.getUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to fetch user", err)
		return
	}
	if user == nil {
		h.abort(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetMe godoc
// @Summary      Get current user
// @Description  Returns the user identified by the bearer token, or the default demo user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.getUser(c.Request.Context(), h.callerID(c))
	if err != nil {
		h.internalError(c, "Failed to fetch current user", err)
		return
	}
	if user == nil {
		h.abort(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
