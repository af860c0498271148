package mangadventure

import (
	"fmt"
	"strconv"
	"strings"

	"mangadventure/internal/httputil"
	"mangadventure/internal/media"
)

// chapterRef is the legacy "series/volume/number" chapter identifier.
type chapterRef struct {
	Series string
	Volume float64
	Number float64
}

func encodeChapterID(series string, volume, number float64) string {
	return series + "/" + media.FormatNumber(volume) + "/" + media.FormatNumber(number)
}

func parseChapterID(id string) (chapterRef, error) {
	parts := strings.Split(id, "/")
	if len(parts) != 3 {
		return chapterRef{}, fmt.Errorf("chapter ID %q is not series/volume/number", id)
	}
	if err := httputil.ValidateSlug(parts[0]); err != nil {
		return chapterRef{}, fmt.Errorf("chapter ID %q: %w", id, err)
	}
	volume, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || volume < 0 {
		return chapterRef{}, fmt.Errorf("chapter ID %q: bad volume %q", id, parts[1])
	}
	number, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || number < 0 {
		return chapterRef{}, fmt.Errorf("chapter ID %q: bad number %q", id, parts[2])
	}
	return chapterRef{Series: parts[0], Volume: volume, Number: number}, nil
}
