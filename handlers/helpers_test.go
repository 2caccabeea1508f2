package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"crewboard/audiofilestore"
	"crewboard/auth"
	"crewboard/store"

	"github.com/cdfmlr/crud/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	t      *testing.T
	store  *store.Store
	files  *audiofilestore.AudioFileStore
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.Open(filepath.Join(t.TempDir(), "crewboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	files, err := audiofilestore.NewAudioFileStore(filepath.Join(t.TempDir(), "uploads"), nil, 0)
	require.NoError(t, err)

	sessions, err := auth.NewSessions([]byte("test-secret"), time.Hour, false)
	require.NoError(t, err)

	r := router.NewRouter()
	r.SetHTMLTemplate(Templates())
	New(s, files, sessions).RegisterRoutes(r)

	return &testApp{t: t, store: s, files: files, router: r}
}

// browser keeps cookies between requests, like a real one.
type browser struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func (app *testApp) browser() *browser {
	return &browser{app: app, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.app.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// postMultipart posts fields plus, if filename is not empty, a file
// under the "mp3_file" field.
func (b *browser) postMultipart(path string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(b.app.t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("mp3_file", filename)
		require.NoError(b.app.t, err)
		_, err = fw.Write(content)
		require.NoError(b.app.t, err)
	}
	require.NoError(b.app.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func (b *browser) loggedIn() bool {
	_, ok := b.cookies[auth.SessionCookieName]
	return ok
}

// signup registers username and keeps the session.
func (b *browser) signup(username string) *httptest.ResponseRecorder {
	b.app.t.Helper()

	w := b.postForm("/signup", url.Values{
		"username":              {username},
		"email":                 {username + "@x.com"},
		"password":              {"pw-" + username},
		"crew":                  {""},
		"redirect_after_signup": {"index"},
	})
	require.Equal(b.app.t, http.StatusFound, w.Code, w.Body.String())
	return w
}

func (b *browser) createCrew(name string, filename string) *httptest.ResponseRecorder {
	return b.postMultipart("/create_crew", map[string]string{
		"name":        name,
		"photo":       "http://img",
		"description": "d",
	}, filename, []byte("fake mp3 bytes"))
}
