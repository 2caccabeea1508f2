package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookieName = "crewboard_flash"

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string // "error" or "success"
	Message  string
}

func flashError(msg string) Flash   { return Flash{Category: "error", Message: msg} }
func flashSuccess(msg string) Flash { return Flash{Category: "success", Message: msg} }

// redirectWithFlash leaves f for the page at location and redirects there.
func redirectWithFlash(c *gin.Context, location string, f Flash) {
	if raw, err := json.Marshal([]Flash{f}); err == nil {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(flashCookieName, base64.RawURLEncoding.EncodeToString(raw), 0, "/", "", false, true)
	}
	c.Redirect(http.StatusFound, location)
}

// popFlashes returns the notices left for this request and clears them.
func popFlashes(c *gin.Context) []Flash {
	raw, err := c.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)

	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(b, &flashes); err != nil {
		return nil
	}
	return flashes
}
