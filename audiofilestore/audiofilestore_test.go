package audiofilestore

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *AudioFileStore {
	t.Helper()

	a, err := NewAudioFileStore(filepath.Join(t.TempDir(), "uploads"), nil, 0)
	require.NoError(t, err)
	return a
}

// fileHeader builds the header of an uploaded file, as gin would get it.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("mp3_file", "upload.bin")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	fh := req.MultipartForm.File["mp3_file"][0]
	fh.Filename = filename // multipart drops directories, keep the raw name
	return fh
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name() == ".tmp" {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}

func TestNewAudioFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	a, err := NewAudioFileStore(dir, []string{" .MP3", "ogg", ""}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"mp3", "ogg"}, a.AllowedExtensions)
	assert.DirExists(t, dir)

	_, err = NewAudioFileStore("", nil, 0)
	assert.Error(t, err)
}

func TestAllowed(t *testing.T) {
	a := newTestFileStore(t)

	tests := []struct {
		filename string
		want     bool
	}{
		{"song.mp3", true},
		{"SONG.MP3", true},
		{"Song.Mp3", true},
		{"archive.tar.mp3", true},
		{".mp3", true},
		{"song.wav", false},
		{"song.mp3.exe", false},
		{"mp3", false},
		{"song.", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.Allowed(tt.filename), tt.filename)
	}
}

func TestSave(t *testing.T) {
	a := newTestFileStore(t)

	name, err := a.Save(fileHeader(t, "My Song.mp3", []byte("ID3 fake audio")))
	require.NoError(t, err)
	assert.Equal(t, "My_Song.mp3", name)

	got, err := os.ReadFile(filepath.Join(a.FileDir, "My_Song.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "ID3 fake audio", string(got))

	assert.Equal(t, []string{"My_Song.mp3"}, dirEntries(t, a.FileDir))
	tmp, err := os.ReadDir(filepath.Join(a.FileDir, ".tmp"))
	require.NoError(t, err)
	assert.Empty(t, tmp)
}

func TestSaveStripsPath(t *testing.T) {
	a := newTestFileStore(t)

	name, err := a.Save(fileHeader(t, "../../etc/evil.mp3", []byte("x")))
	require.NoError(t, err)
	assert.Equal(t, "evil.mp3", name)
	assert.FileExists(t, filepath.Join(a.FileDir, "evil.mp3"))
}

func TestSaveRejects(t *testing.T) {
	a := newTestFileStore(t)

	for _, filename := range []string{"song.wav", "song", "song.mp3.exe", ".mp3", "../.mp3"} {
		_, err := a.Save(fileHeader(t, filename, []byte("x")))
		assert.ErrorIs(t, err, ErrUnsupportedFileType, filename)
	}

	_, err := a.Save(nil)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	assert.Empty(t, dirEntries(t, a.FileDir), "rejected files must not be written")
}

func TestSaveTooLarge(t *testing.T) {
	a := newTestFileStore(t)
	a.MaxBytes = 4

	_, err := a.Save(fileHeader(t, "big.mp3", []byte("12345")))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Empty(t, dirEntries(t, a.FileDir))

	_, err = a.Save(fileHeader(t, "small.mp3", []byte("1234")))
	assert.NoError(t, err)
}

func TestSaveOverwrites(t *testing.T) {
	a := newTestFileStore(t)

	_, err := a.Save(fileHeader(t, "song.mp3", []byte("first")))
	require.NoError(t, err)
	_, err = a.Save(fileHeader(t, "song.mp3", []byte("second")))
	require.NoError(t, err)

	got, err := os.ReadFile(a.Path("song.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestRemove(t *testing.T) {
	a := newTestFileStore(t)

	name, err := a.Save(fileHeader(t, "song.mp3", []byte("x")))
	require.NoError(t, err)

	require.NoError(t, a.Remove(name))
	assert.NoFileExists(t, a.Path(name))

	assert.NoError(t, a.Remove(name), "removing twice is fine")
	assert.NoError(t, a.Remove("../outside.mp3"))
}

func TestTrackTitleWithoutTags(t *testing.T) {
	a := newTestFileStore(t)

	name, err := a.Save(fileHeader(t, "song.mp3", []byte("not really audio")))
	require.NoError(t, err)

	assert.Equal(t, "", a.TrackTitle(name))
	assert.Equal(t, "", a.TrackTitle("missing.mp3"))
	assert.Equal(t, "", a.TrackTitle("../song.mp3"))
	assert.Equal(t, "", a.TrackTitle(""))
}
