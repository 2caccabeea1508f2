// Package handlers implements the crewboard pages: one gin handler per
// user-facing action, each doing at most a couple of store operations and
// answering with a rendered page or a redirect.
package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"crewboard/audiofilestore"
	"crewboard/auth"
	"crewboard/store"

	"github.com/cdfmlr/crud/log"
	"github.com/gin-gonic/gin"
)

var logger = log.ZoneLogger("crewboard/handlers")

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

// Handlers carries everything a request needs. There is no global state:
// the store, the file store and the session issuer are passed in.
type Handlers struct {
	store    *store.Store
	files    *audiofilestore.AudioFileStore
	sessions *auth.Sessions
	auth     *auth.AuthMiddleware
}

func New(s *store.Store, files *audiofilestore.AudioFileStore, sessions *auth.Sessions) *Handlers {
	return &Handlers{
		store:    s,
		files:    files,
		sessions: sessions,
		auth:     auth.NewAuthMiddleware(s, sessions),
	}
}

// RegisterRoutes sets up every page route on r.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.Use(h.auth.LoadUser())

	r.GET("/", h.Index)
	r.GET("/healthz", h.Healthz)

	r.GET("/signup", h.SignupForm)
	r.POST("/signup", h.Signup)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	r.GET("/join_crew/:crew_id", h.ShowCrew)
	r.POST("/join_crew/:crew_id", h.auth.RequireAuth(), h.JoinCrew)

	protected := r.Group("", h.auth.RequireAuth())
	{
		protected.GET("/create_crew", h.CreateCrewForm)
		protected.POST("/create_crew", h.CreateCrew)
		protected.GET("/edit_crew/:crew_id", h.EditCrewForm)
		protected.POST("/edit_crew/:crew_id", h.EditCrew)
		protected.GET("/search_crew", h.SearchCrew)
		protected.POST("/search_crew", h.PostSearchMessage)
	}

	h.files.RegisterRoutes(r)
}

// render writes the named page. flashes are shown along with any
// notice left by a previous redirect.
func (h *Handlers) render(c *gin.Context, status int, page, title string, data gin.H, flashes ...Flash) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Form"]; !ok {
		data["Form"] = map[string]string{}
	}
	data["Title"] = title
	data["User"] = auth.CurrentUser(c)
	data["Flashes"] = append(popFlashes(c), flashes...)

	c.HTML(status, page, data)
}

// fail answers with the error page matching err's class.
func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.render(c, http.StatusNotFound, "error.html", "Not found", gin.H{
			"Message": "The page you asked for does not exist.",
		})
	default:
		requestLogger(c).
			WithField("path", c.Request.URL.Path).
			WithError(err).
			Error("request failed")
		h.render(c, http.StatusInternalServerError, "error.html", "Server error", gin.H{
			"Message": "Something went wrong. Please try again later.",
		})
	}
}

// crewIDParam parses :crew_id. Malformed ids are reported as not found.
func crewIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("crew_id"), 10, 0)
	if err != nil || id == 0 {
		return 0, store.ErrCrewNotFound
	}
	return uint(id), nil
}

// Healthz handles: GET /healthz
func (h *Handlers) Healthz(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
