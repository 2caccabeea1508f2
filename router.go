package main

import (
	"crewboard/audiofilestore"
	"crewboard/handlers"

	"github.com/cdfmlr/crud/router"
	"github.com/gin-gonic/gin"
)

// MakeRouter builds the engine. router.NewRouter brings gin.Recovery,
// the crud/http access log and the request id middleware.
func MakeRouter(cfg *CrewboardConfig, h *handlers.Handlers) *gin.Engine {
	r := router.NewRouter()

	if cfg.Uploads.MaxBytes > 0 {
		r.MaxMultipartMemory = cfg.Uploads.MaxBytes
	}

	r.SetHTMLTemplate(handlers.Templates())

	// pages & /uploads
	h.RegisterRoutes(r)

	return r
}

func makeFileStore(cfg *CrewboardConfig) (*audiofilestore.AudioFileStore, error) {
	return audiofilestore.NewAudioFileStore(
		cfg.Uploads.Dir, cfg.Uploads.AllowedExtensions, cfg.Uploads.MaxBytes)
}
