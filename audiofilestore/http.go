package audiofilestore

import (
	"net/http"
	"os"

	"crewboard/model"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes exposes stored files at /uploads/:filename.
//
// Retrieval is public by intent: anyone knowing a file's name can fetch it.
func (a *AudioFileStore) RegisterRoutes(r gin.IRouter) {
	r.GET(model.UploadsServePath+"/:filename", a.GetUpload)
}

// GetUpload handles: GET /uploads/:filename
//
// Response:
//
//   - 200: the file
//   - 404: the name is not a sanitized filename, or no such file
func (a *AudioFileStore) GetUpload(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" || SecureFilename(filename) != filename {
		c.String(http.StatusNotFound, "not found")
		return
	}

	path := a.Path(filename)
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		c.String(http.StatusNotFound, "not found")
		return
	}

	c.File(path)
}
