package handlers

import (
	"errors"
	"net/http"

	"crewboard/auth"
	"crewboard/store"

	"github.com/gin-gonic/gin"
)

// SearchCrew handles: GET /search_crew
//
// Lists every "looking for a crew" message, oldest first.
func (h *Handlers) SearchCrew(c *gin.Context) {
	h.renderSearch(c, http.StatusOK)
}

func (h *Handlers) renderSearch(c *gin.Context, status int, flashes ...Flash) {
	msgs, err := h.store.ListMessages(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, status, "search_crew.html", "Looking for a crew", gin.H{"Messages": msgs}, flashes...)
}

// PostSearchMessage handles: POST /search_crew
//
// Form: message (required)
//
// Redirects back to the list so a refresh does not post twice.
func (h *Handlers) PostSearchMessage(c *gin.Context) {
	user := auth.CurrentUser(c)

	_, err := h.store.PostMessage(c.Request.Context(), user.ID, c.PostForm("message"))
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			h.renderSearch(c, http.StatusBadRequest, flashError(store.UserMessage(err)))
			return
		}
		h.fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/search_crew")
}
