package handlers

import (
	"errors"
	"net/http"
	"strings"

	"crewboard/audiofilestore"
	"crewboard/auth"
	"crewboard/model"
	"crewboard/store"

	"github.com/gin-gonic/gin"
)

const (
	unsupportedFileMessage = "File type not allowed. Only MP3 files are accepted."
	fileTooLargeMessage    = "File too large."
)

// Index handles: GET /
//
// Lists every crew. Public.
func (h *Handlers) Index(c *gin.Context) {
	crews, err := h.store.ListCrews(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "index.html", "Crews", gin.H{"Crews": crews})
}

// CreateCrewForm handles: GET /create_crew
func (h *Handlers) CreateCrewForm(c *gin.Context) {
	h.render(c, http.StatusOK, "create_crew.html", "Create a crew", nil)
}

// CreateCrew handles: POST /create_crew
//
// Body: multipart/form-data
//
//   - name: required
//   - photo: URL of the crew photo
//   - description
//   - mp3_file: the crew's audio clip, must be an .mp3
//
// The file is stored first, then the crew is created and the current user
// made its member in one transaction. If that fails the file is removed.
func (h *Handlers) CreateCrew(c *gin.Context) {
	ctx := c.Request.Context()
	user := auth.CurrentUser(c)

	form := map[string]string{
		"name":        strings.TrimSpace(c.PostForm("name")),
		"photo":       strings.TrimSpace(c.PostForm("photo")),
		"description": strings.TrimSpace(c.PostForm("description")),
	}
	reject := func(status int, msg string) {
		h.render(c, status, "create_crew.html", "Create a crew", gin.H{"Form": form}, flashError(msg))
	}

	if form["name"] == "" {
		reject(http.StatusBadRequest, store.ErrMissingCrewName.Message)
		return
	}

	file, err := c.FormFile("mp3_file")
	if err != nil {
		reject(http.StatusUnsupportedMediaType, unsupportedFileMessage)
		return
	}

	filename, err := h.files.Save(file)
	if status, msg, rejected := uploadRejection(err); rejected {
		reject(status, msg)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	crew := &model.Crew{
		Name:        form["name"],
		Photo:       form["photo"],
		Description: form["description"],
		Mp3File:     filename,
		TrackTitle:  h.files.TrackTitle(filename),
	}
	if err := h.store.CreateCrew(ctx, user.ID, crew); err != nil {
		h.removeUpload(c, "CreateCrew", filename)
		h.fail(c, err)
		return
	}

	redirectWithFlash(c, "/", flashSuccess("Crew created!"))
}

// ShowCrew handles: GET /join_crew/:crew_id
//
// Shows the crew and its members, with a join button. Public.
func (h *Handlers) ShowCrew(c *gin.Context) {
	crew, ok := h.loadCrew(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "join_crew.html", crew.Name, gin.H{
		"Crew":     crew,
		"IsMember": auth.CurrentUser(c).InCrew(crew.ID),
	})
}

// JoinCrew handles: POST /join_crew/:crew_id
//
// Makes the current user a member of the crew, leaving any previous one.
func (h *Handlers) JoinCrew(c *gin.Context) {
	crewID, err := crewIDParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := auth.CurrentUser(c)
	if err := h.store.JoinCrew(c.Request.Context(), user.ID, crewID); err != nil {
		h.fail(c, err)
		return
	}

	redirectWithFlash(c, "/", flashSuccess("Welcome aboard!"))
}

// EditCrewForm handles: GET /edit_crew/:crew_id
func (h *Handlers) EditCrewForm(c *gin.Context) {
	crew, ok := h.loadCrew(c)
	if !ok {
		return
	}
	if !auth.CurrentUser(c).InCrew(crew.ID) {
		redirectWithFlash(c, "/", flashError(store.ErrNotCrewMember.Message))
		return
	}
	h.render(c, http.StatusOK, "edit_crew.html", "Edit "+crew.Name, gin.H{"Crew": crew})
}

// EditCrew handles: POST /edit_crew/:crew_id
//
// Body: multipart/form-data or urlencoded, every field optional
//
//   - name, photo, description: replaced when non-empty
//   - mp3_file: a new audio clip (file), or the name of a stored file (text)
//
// Only members of the crew may edit it; anybody else is sent home with a
// notice and nothing changes.
func (h *Handlers) EditCrew(c *gin.Context) {
	ctx := c.Request.Context()
	user := auth.CurrentUser(c)

	crew, ok := h.loadCrew(c)
	if !ok {
		return
	}
	if !user.InCrew(crew.ID) {
		redirectWithFlash(c, "/", flashError(store.ErrNotCrewMember.Message))
		return
	}

	patch := store.CrewPatch{
		Name:        nonEmpty(c.PostForm("name")),
		Photo:       nonEmpty(c.PostForm("photo")),
		Mp3File:     nonEmpty(c.PostForm("mp3_file")),
		Description: nonEmpty(c.PostForm("description")),
	}

	var uploaded string
	if file, err := c.FormFile("mp3_file"); err == nil {
		uploaded, err = h.files.Save(file)
		if status, msg, rejected := uploadRejection(err); rejected {
			h.render(c, status, "edit_crew.html", "Edit "+crew.Name,
				gin.H{"Crew": crew}, flashError(msg))
			return
		}
		if err != nil {
			h.fail(c, err)
			return
		}
		patch.Mp3File = &uploaded
	}

	// the title always follows the clip
	if patch.Mp3File != nil && (uploaded != "" || *patch.Mp3File != crew.Mp3File) {
		title := h.files.TrackTitle(*patch.Mp3File)
		patch.TrackTitle = &title
	}

	if _, err := h.store.UpdateCrew(ctx, user.ID, crew.ID, patch); err != nil {
		if uploaded != "" && uploaded != crew.Mp3File {
			h.removeUpload(c, "EditCrew", uploaded)
		}
		if errors.Is(err, store.ErrAuthorization) {
			redirectWithFlash(c, "/", flashError(store.UserMessage(err)))
			return
		}
		h.fail(c, err)
		return
	}

	redirectWithFlash(c, "/", flashSuccess("Crew updated."))
}

// uploadRejection maps a file intake error to the status and notice
// shown to the user. rejected is false for nil and unexpected errors.
func uploadRejection(err error) (status int, msg string, rejected bool) {
	switch {
	case errors.Is(err, audiofilestore.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType, unsupportedFileMessage, true
	case errors.Is(err, audiofilestore.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, fileTooLargeMessage, true
	}
	return 0, "", false
}

// removeUpload deletes a file written for a request that then failed.
func (h *Handlers) removeUpload(c *gin.Context, op, filename string) {
	if err := h.files.Remove(filename); err != nil {
		requestLogger(c).WithField("filename", filename).WithError(err).
			Warn(op + ": rollback: Remove failed")
	}
}

// loadCrew reads :crew_id and loads the crew, answering 404 itself
// when there is none.
func (h *Handlers) loadCrew(c *gin.Context) (*model.Crew, bool) {
	crewID, err := crewIDParam(c)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	crew, err := h.store.Crew(c.Request.Context(), crewID)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return crew, true
}

// nonEmpty returns a pointer to the trimmed s, or nil if it is empty.
func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
