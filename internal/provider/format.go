package provider

import (
	"fmt"
	"strings"

	"mangadventure/internal/media"
)

// FormatTile creates a display string for fzf selection.
func FormatTile(t media.Tile) string {
	if t.Subtitle == "" {
		return t.Title
	}
	return t.Title + " " + t.Subtitle
}

// FormatChapter creates a display string for a chapter, e.g.
// "Vol. 2 Ch. 12 - The End [Group]". The API's full title already carries
// the numbers, so it is used as is when present.
func FormatChapter(c media.Chapter) string {
	var parts []string
	if c.Name != "" {
		parts = append(parts, c.Name)
	} else {
		if c.HasVolume() {
			parts = append(parts, "Vol. "+media.FormatNumber(c.Volume))
		}
		parts = append(parts, "Ch. "+media.FormatNumber(c.Number))
	}
	if c.Group != "" {
		parts = append(parts, fmt.Sprintf("[%s]", c.Group))
	}
	return strings.Join(parts, " ")
}
