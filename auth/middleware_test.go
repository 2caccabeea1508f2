package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crewboard/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[uint]*model.User

func (f fakeUsers) UserByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, assert.AnError
}

func TestMiddleware(t *testing.T) {
	s := newTestSessions(t)
	am := NewAuthMiddleware(fakeUsers{1: {Username: "alice"}}, s)

	r := gin.New()
	r.Use(am.LoadUser())
	r.GET("/whoami", func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/private", am.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})

	cookieFor := func(userID uint) *http.Cookie {
		token, err := s.sign(userID, time.Now())
		require.NoError(t, err)
		return &http.Cookie{Name: SessionCookieName, Value: token}
	}

	do := func(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, "anonymous", do("/whoami", nil).Body.String())
	assert.Equal(t, "alice", do("/whoami", cookieFor(1)).Body.String())
	assert.Equal(t, "anonymous", do("/whoami", cookieFor(2)).Body.String(), "unknown user")

	w := do("/private?x=1", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fprivate%3Fx%3D1", w.Header().Get("Location"))

	w = do("/private", cookieFor(1))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret", w.Body.String())
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/login", LoginURL(""))
	assert.Equal(t, "/login", LoginURL("/"))
	assert.Equal(t, "/login", LoginURL("//evil.example"))
	assert.Equal(t, "/login?next=%2Fcreate_crew", LoginURL("/create_crew"))
}

func TestIsLocalPath(t *testing.T) {
	for _, p := range []string{"/", "/search_crew", "/edit_crew/1?x=y"} {
		assert.True(t, IsLocalPath(p), p)
	}
	for _, p := range []string{"", "search_crew", "//evil.example", `/\evil.example`, "https://evil.example/"} {
		assert.False(t, IsLocalPath(p), p)
	}
}
