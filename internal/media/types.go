// Package media defines the normalized records a content provider hands to
// its host. Providers fill in field values; rendering is the host's concern.
package media

import (
	"strconv"
	"time"
)

// Status values a provider may report for a series.
const (
	StatusLicensed  = "Licensed"
	StatusCompleted = "Completed"
	StatusOngoing   = "Ongoing"
	StatusUnknown   = "Unknown"
)

// Tile is a catalog entry as shown in directory listings and search results.
type Tile struct {
	ID       string `json:"id"`                 // Series slug
	Title    string `json:"title"`              // Display title
	Image    string `json:"image"`              // Cover URL
	Subtitle string `json:"subtitle,omitempty"` // e.g. "[LICENSED]"
}

// Detail is the full metadata record of a series.
type Detail struct {
	ID          string       `json:"id"`
	Titles      []string     `json:"titles"` // Main title first, then aliases
	Image       string       `json:"image"`
	Description string       `json:"description"`
	Author      string       `json:"author,omitempty"`
	Artist      string       `json:"artist,omitempty"`
	Status      string       `json:"status"`
	Mature      bool         `json:"mature"`
	LongStrip   bool         `json:"long_strip"`
	Views       int          `json:"views"`
	Tags        []TagSection `json:"tags,omitempty"`
	ShareURL    string       `json:"share_url"`
}

// Title returns the main title of the series.
func (d Detail) Title() string {
	if len(d.Titles) == 0 {
		return d.ID
	}
	return d.Titles[0]
}

// Chapter is a single chapter of a series.
type Chapter struct {
	ID        string    `json:"id"`
	SeriesID  string    `json:"series_id"`
	Number    float64   `json:"number"`
	Volume    float64   `json:"volume,omitempty"` // 0 means no volume
	Name      string    `json:"name"`
	Group     string    `json:"group,omitempty"`
	Language  string    `json:"language"`
	Published time.Time `json:"published"`
}

// HasVolume reports whether the chapter belongs to a volume.
func (c Chapter) HasVolume() bool {
	return c.Volume != 0
}

// Tag is a single search tag. The label doubles as its ID on some sources.
type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// TagSection groups tags under a heading.
type TagSection struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Tags  []Tag  `json:"tags"`
}

// PagedResults is one page of a paginated listing plus the cursor to pass
// back for the next page.
type PagedResults struct {
	Results []Tile `json:"results"`
	Cursor  Cursor `json:"cursor"`
}

// HomeSection is a named row of tiles on a provider's home page.
type HomeSection struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Items     []Tile `json:"items"`
	MoreItems bool   `json:"more_items"`
}

// SearchQuery describes a search request from the host.
type SearchQuery struct {
	Title        string   `json:"title"`
	IncludedTags []string `json:"included_tags,omitempty"`
	ExcludedTags []string `json:"excluded_tags,omitempty"`
}

// FormatNumber prints chapter and volume numbers without trailing zeros:
// 12 -> "12", 12.5 -> "12.5".
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
