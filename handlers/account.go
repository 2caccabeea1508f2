package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"crewboard/auth"
	"crewboard/model"
	"crewboard/store"

	"github.com/gin-gonic/gin"
)

// where to go after signing up
var signupDestinations = map[string]string{
	"create_crew": "/create_crew",
	"search_crew": "/search_crew",
}

// SignupForm handles: GET /signup
func (h *Handlers) SignupForm(c *gin.Context) {
	h.renderSignup(c, http.StatusOK, nil)
}

func (h *Handlers) renderSignup(c *gin.Context, status int, form map[string]string, flashes ...Flash) {
	crews, err := h.store.ListCrews(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, status, "signup.html", "Sign up", gin.H{
		"Crews": crews,
		"Form":  form,
	}, flashes...)
}

// Signup handles: POST /signup
//
// Form:
//
//   - username, email, password: required
//   - phone: optional
//   - crew: id of an existing crew to join, or empty
//   - redirect_after_signup: create_crew | search_crew | anything else (home)
//
// Response:
//
//   - 302: user created & logged in, redirected per redirect_after_signup
//   - 400: validation failed (duplicate username/email, missing field, unknown crew)
func (h *Handlers) Signup(c *gin.Context) {
	form := map[string]string{
		"username": strings.TrimSpace(c.PostForm("username")),
		"email":    strings.TrimSpace(c.PostForm("email")),
		"phone":    strings.TrimSpace(c.PostForm("phone")),
	}
	password := c.PostForm("password")

	if form["username"] == "" || form["email"] == "" || password == "" {
		h.renderSignup(c, http.StatusBadRequest, form, flashError(store.ErrMissingCredentials.Message))
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := &model.User{
		Username:     form["username"],
		Email:        form["email"],
		Phone:        form["phone"],
		PasswordHash: hash,
	}
	if id, err := strconv.ParseUint(strings.TrimSpace(c.PostForm("crew")), 10, 0); err == nil {
		crewID := uint(id)
		user.CrewID = &crewID
	}

	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrValidation) {
			h.renderSignup(c, http.StatusBadRequest, form, flashError(store.UserMessage(err)))
			return
		}
		h.fail(c, err)
		return
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		h.fail(c, err)
		return
	}

	dest, ok := signupDestinations[c.PostForm("redirect_after_signup")]
	if !ok {
		dest = "/"
	}
	c.Redirect(http.StatusFound, dest)
}

// LoginForm handles: GET /login
func (h *Handlers) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", "Log in", gin.H{
		"Next": c.Query("next"),
	})
}

// Login handles: POST /login
//
// Form: username, password, next (optional local path)
//
// Response:
//
//   - 302: logged in, redirected to next or home
//   - 401: unknown user or wrong password (one message for both)
func (h *Handlers) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := c.PostForm("next")

	user, err := h.store.UserByUsername(c.Request.Context(), username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		auth.RejectPassword(password)
		err = store.ErrBadCredentials
	case err != nil:
		h.fail(c, err)
		return
	case !auth.VerifyPassword(user.PasswordHash, password):
		err = store.ErrBadCredentials
	}

	if err != nil {
		requestLogger(c).
			WithField("username", username).
			Info("Login: failed")
		h.render(c, http.StatusUnauthorized, "login.html", "Log in", gin.H{
			"Next": next,
			"Form": map[string]string{"username": username},
		}, flashError("Login failed. Check your credentials or create an account."))
		return
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		h.fail(c, err)
		return
	}

	if !auth.IsLocalPath(next) {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

// Logout handles: GET /logout
func (h *Handlers) Logout(c *gin.Context) {
	h.sessions.Logout(c)
	c.Redirect(http.StatusFound, "/")
}
