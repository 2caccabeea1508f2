// Package audiofilestore stores uploaded crew audio clips in a local directory.
// Exposure an AudioFileStore with the following methods:
//   - Allowed: check a filename against the extension allow-list
//   - Save: sanitize the name of an uploaded file and write it to FileDir
//   - Remove, TrackTitle: housekeeping & metadata for a stored file
//
// Exposure Routes:
//   - /uploads/:filename: public retrieval of a stored file
package audiofilestore

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"crewboard/model"

	"github.com/cdfmlr/crud/log"
)

var logger = log.ZoneLogger("crewboard/audiofilestore")

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// DefaultAllowedExtensions is the allow-list used when none is configured.
var DefaultAllowedExtensions = []string{"mp3"}

// AudioFileStore stores audio files in a local directory.
//
// Files are keyed by their sanitized name only: saving a file with the name
// of an existing one replaces it.
type AudioFileStore struct {
	FileDir           string
	AllowedExtensions []string // lower case, without the dot
	MaxBytes          int64    // 0: unlimited
}

// NewAudioFileStore creates the store, making FileDir if it does not exist.
func NewAudioFileStore(fileDir string, allowedExtensions []string, maxBytes int64) (*AudioFileStore, error) {
	if fileDir == "" {
		return nil, errors.New("NewAudioFileStore: empty fileDir")
	}
	if len(allowedExtensions) == 0 {
		allowedExtensions = DefaultAllowedExtensions
	}

	exts := make([]string, 0, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}

	if err := os.MkdirAll(fileDir, 0755); err != nil {
		return nil, fmt.Errorf("NewAudioFileStore: MkdirAll failed: %w", err)
	}

	return &AudioFileStore{
		FileDir:           fileDir,
		AllowedExtensions: exts,
		MaxBytes:          maxBytes,
	}, nil
}

// Allowed returns true if the filename has an extension
// and the extension (case-insensitive) is in the allow-list.
func (a *AudioFileStore) Allowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	ext := strings.ToLower(filename[i+1:])
	for _, allowed := range a.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Path returns the filepath of a stored file:
//
//	{FileDir}/{filename}
func (a *AudioFileStore) Path(filename string) string {
	return filepath.Join(a.FileDir, filename)
}

// Save validates the uploaded file and writes it to FileDir under its
// sanitized name. It returns that name.
//
// Files failing validation are never written: the error is
// ErrUnsupportedFileType or ErrFileTooLarge.
func (a *AudioFileStore) Save(file *multipart.FileHeader) (filename string, err error) {
	if file == nil || !a.Allowed(file.Filename) {
		return "", ErrUnsupportedFileType
	}

	filename = SecureFilename(file.Filename)
	if filename == "" || !a.Allowed(filename) {
		return "", ErrUnsupportedFileType
	}

	if a.MaxBytes > 0 && file.Size > a.MaxBytes {
		return "", ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("Save: Open failed: %w", err)
	}
	defer src.Close()

	if err := a.write(filename, src); err != nil {
		return "", fmt.Errorf("Save: %w", err)
	}

	logger.WithField("filename", filename).
		WithField("size", file.Size).
		Info("Save: success")

	return filename, nil
}

// write copies src into {FileDir}/.tmp first and renames it into place,
// so readers never see a partially written file.
func (a *AudioFileStore) write(filename string, src io.Reader) error {
	tmpDir, err := a.tmpDir()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(tmpDir, filename+".*")
	if err != nil {
		return fmt.Errorf("CreateTemp failed: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after the rename

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("Copy failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("Close failed: %w", err)
	}

	if err := os.Rename(tmp.Name(), a.Path(filename)); err != nil {
		return fmt.Errorf("Rename failed: %w", err)
	}
	return nil
}

func (a *AudioFileStore) tmpDir() (string, error) {
	tmp := filepath.Join(a.FileDir, ".tmp")
	if err := os.MkdirAll(tmp, 0755); err != nil {
		return "", fmt.Errorf("tmpDir: Mkdir failed: %w", err)
	}
	return tmp, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (a *AudioFileStore) Remove(filename string) error {
	if filename == "" || SecureFilename(filename) != filename {
		return nil
	}
	err := os.Remove(a.Path(filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// TrackTitle returns the title tagged in a stored audio file, or "".
// Names that are not already sanitized are never read.
func (a *AudioFileStore) TrackTitle(filename string) string {
	if filename == "" || SecureFilename(filename) != filename {
		return ""
	}
	title, err := model.TrackTitleFromAudioFile(a.Path(filename))
	if err != nil {
		logger.WithField("filename", filename).
			WithError(err).
			Debug("TrackTitle: no readable tags")
		return ""
	}
	return title
}
