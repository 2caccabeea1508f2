package model

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// TrackTitleFromAudioFile reads the metadata of an audio file and returns
// a display title: "{artist} - {title}", or just the title when the artist
// is unknown.
//
// Files without readable tags return an error; callers treat the title as
// optional.
func TrackTitleFromAudioFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(m.Title())
	artist := strings.TrimSpace(m.Artist())

	switch {
	case title == "":
		return "", nil
	case artist == "":
		return title, nil
	default:
		return artist + " - " + title, nil
	}
}
