package model

import (
	"net/url"
	"os"
	"path/filepath"
)

// this file defines local (fs) & remote (http) paths for uploaded files

const EnvCrewboardFilePath = "CREWBOARD_FILEPATH"

const (
	UploadsDirname   = "uploads"
	UploadsServePath = "/" + UploadsDirname
)

// DefaultUploadDir returns the directory path of uploaded files:
//
//	{CREWBOARD_FILEPATH}/uploads
//
// where {CREWBOARD_FILEPATH} is an environment variable,
// and defaults to the current directory (./).
func DefaultUploadDir() string {
	base, ok := os.LookupEnv(EnvCrewboardFilePath)
	if !ok {
		base = "."
	}
	return filepath.Join(base, UploadsDirname)
}

// UploadURL returns the relative url of an uploaded file:
//
//	/uploads/{filename}
func UploadURL(filename string) string {
	if filename == "" {
		return ""
	}
	return UploadsServePath + "/" + url.PathEscape(filename)
}

// Mp3FileURL returns the url the crew's audio clip is served from,
// or "" if the crew has none.
func (c *Crew) Mp3FileURL() string {
	return UploadURL(c.Mp3File)
}
