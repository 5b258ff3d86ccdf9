package track

import (
	"path/filepath"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"
)

// displayName derives a track's display name from its ID3v2 title tag,
// falling back to the filename without extension.
func displayName(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
		if err == nil {
			title := strings.TrimSpace(tag.Title())
			tag.Close()
			if title != "" {
				return title
			}
		}
	}

	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
