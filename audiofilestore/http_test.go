package audiofilestore

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	a := newTestFileStore(t)
	require.NoError(t, os.WriteFile(a.Path("song.mp3"), []byte("audio"), 0644))

	r := gin.New()
	a.RegisterRoutes(r)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/uploads/song.mp3")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio", w.Body.String())

	assert.Equal(t, http.StatusNotFound, get("/uploads/missing.mp3").Code)
	assert.Equal(t, http.StatusNotFound, get("/uploads/.tmp").Code)
	assert.Equal(t, http.StatusNotFound, get("/uploads/..%2F..%2Fetc%2Fpasswd").Code)
}
