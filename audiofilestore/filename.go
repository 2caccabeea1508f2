package audiofilestore

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename returns a version of filename that is safe to store on a
// regular file system:
//
//   - directory components are dropped ("../../etc/passwd" -> "passwd")
//   - accents are folded to ASCII, other non-ASCII runes removed
//   - whitespace runs become "_", any other unsafe character is removed
//   - leading/trailing dots and underscores are trimmed
//
// The result may be empty.
func SecureFilename(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	if i := strings.LastIndex(filename, "/"); i >= 0 {
		filename = filename[i+1:]
	}

	filename = foldToASCII(filename)
	filename = strings.Join(strings.Fields(filename), "_")
	filename = unsafeFilenameChars.ReplaceAllString(filename, "")

	return strings.Trim(filename, "._")
}

func foldToASCII(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r < unicode.MaxASCII { // combining marks fall out here
			b.WriteRune(r)
		}
	}
	return b.String()
}
