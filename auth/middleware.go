package auth

import (
	"context"
	"net/http"
	"net/url"

	"crewboard/model"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "crewboard/current_user"

// UserLoader resolves the user behind a session.
type UserLoader interface {
	UserByID(ctx context.Context, id uint) (*model.User, error)
}

// AuthMiddleware is the only way handlers learn who the current user is.
type AuthMiddleware struct {
	users    UserLoader
	sessions *Sessions
}

func NewAuthMiddleware(users UserLoader, sessions *Sessions) *AuthMiddleware {
	return &AuthMiddleware{users: users, sessions: sessions}
}

// LoadUser attaches the session's user, if any, to the context.
// Sessions naming a user that cannot be loaded count as anonymous.
func (am *AuthMiddleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := am.sessions.UserID(c)
		if err == nil {
			user, err := am.users.UserByID(c.Request.Context(), userID)
			if err != nil {
				logger.WithContext(c).
					WithField("user_id", userID).
					WithError(err).
					Warn("LoadUser: session user not loaded")
			} else {
				c.Set(currentUserKey, user)
			}
		}
		c.Next()
	}
}

// RequireAuth redirects anonymous visitors to the login page,
// remembering where they wanted to go.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

// LoginURL returns the login page url that sends the user on to next.
func LoginURL(next string) string {
	if !IsLocalPath(next) || next == "/" {
		return "/login"
	}
	return "/login?" + url.Values{"next": {next}}.Encode()
}

// IsLocalPath reports whether p is a path on this site, safe to redirect to.
func IsLocalPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}
