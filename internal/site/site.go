// Package site holds per-site metadata for MangAdventure deployments.
// A Site is plain data; one adapter serves every site.
package site

import (
	"fmt"
	"sort"
	"strings"
)

// ContentRating is the audience a site targets.
type ContentRating string

const (
	Everyone ContentRating = "everyone"
	Mature   ContentRating = "mature"
)

// ChapterListStyle selects the endpoint used to list chapters.
type ChapterListStyle string

const (
	// ChaptersNested requests /series/{slug}/chapters.
	ChaptersNested ChapterListStyle = "nested"
	// ChaptersFlat requests /chapters?series={slug}.
	ChaptersFlat ChapterListStyle = "flat"
)

// PageListStyle selects the endpoint used to list the pages of a chapter.
type PageListStyle string

const (
	// PagesByID requests /chapters/{id}/pages.
	PagesByID PageListStyle = "by-id"
	// PagesByNumber requests /pages?series=&volume=&number=.
	PagesByNumber PageListStyle = "by-number"
)

// Site describes one MangAdventure deployment.
type Site struct {
	Name           string           `toml:"name" json:"name"`
	BaseURL        string           `toml:"base_url" json:"base_url"`
	Version        string           `toml:"version" json:"version"`
	Language       string           `toml:"language" json:"language"`
	Rating         ContentRating    `toml:"rating" json:"rating"`
	MatureCategory string           `toml:"mature_category" json:"mature_category,omitempty"`
	LongStrip      []string         `toml:"long_strip" json:"long_strip,omitempty"`
	ChapterList    ChapterListStyle `toml:"chapter_list" json:"chapter_list"`
	PageList       PageListStyle    `toml:"page_list" json:"page_list"`

	// CompositeIDs makes chapter IDs encode "series/volume/number" instead
	// of the opaque numeric id. Only older deployments need it.
	CompositeIDs bool `toml:"composite_ids" json:"composite_ids"`
}

// APIURL returns the root of the site's REST API.
func (s Site) APIURL() string {
	return strings.TrimRight(s.BaseURL, "/") + "/api/v2"
}

// UserAgent returns the user agent the API expects from this client.
func (s Site) UserAgent() string {
	return "Mozilla/5.0 (iPhone; like Mac OS X) Paperback-iOS/" + s.Version
}

// IsLongStrip reports whether the series is read as one vertical strip.
func (s Site) IsLongStrip(slug string) bool {
	for _, id := range s.LongStrip {
		if id == slug {
			return true
		}
	}
	return false
}

// Key returns the lookup key for the site: its lowercased name with spaces
// and dashes removed, e.g. "helveticascans".
func (s Site) Key() string {
	return Key(s.Name)
}

// Key normalizes a site name for lookups.
func Key(name string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(name))
}

// WithDefaults fills unset optional fields.
func (s Site) WithDefaults() Site {
	if s.Version == "" {
		s.Version = "0.4.0"
	}
	if s.Language == "" {
		s.Language = "gb"
	}
	if s.Rating == "" {
		s.Rating = Everyone
	}
	if s.ChapterList == "" {
		s.ChapterList = ChaptersNested
	}
	if s.PageList == "" {
		s.PageList = PagesByID
	}
	return s
}

// Validate checks the site is usable.
func (s Site) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("site name cannot be empty")
	}
	if !strings.HasPrefix(s.BaseURL, "https://") {
		return fmt.Errorf("site %q: base URL must use https, got %q", s.Name, s.BaseURL)
	}
	switch s.ChapterList {
	case ChaptersNested, ChaptersFlat:
	default:
		return fmt.Errorf("site %q: unknown chapter_list %q (valid: nested, flat)", s.Name, s.ChapterList)
	}
	switch s.PageList {
	case PagesByID, PagesByNumber:
	default:
		return fmt.Errorf("site %q: unknown page_list %q (valid: by-id, by-number)", s.Name, s.PageList)
	}
	if (s.PageList == PagesByNumber) != s.CompositeIDs {
		return fmt.Errorf("site %q: page_list %q and composite_ids must be used together", s.Name, PagesByNumber)
	}
	return nil
}

var scanlatorLongStrips = []string{
	"creepy-cat",
	"mad-webcomic",
	"mousou-telepathy",
	"please-take-my-brother-away",
	"three-video-messages",
}

// Builtin returns the sites that ship with the application, sorted by name.
func Builtin() []Site {
	sites := []Site{
		{
			Name:    "Arc-Relight",
			BaseURL: "https://arc-relight.com",
			Version: "0.4.0",
			Rating:  Everyone,
		},
		{
			Name:           "Assorted Scans",
			BaseURL:        "https://assortedscans.com",
			Version:        "0.3.0",
			Rating:         Mature,
			MatureCategory: "Hentai",
			LongStrip:      scanlatorLongStrips,
		},
		{
			Name:           "Helvetica Scans",
			BaseURL:        "https://helveticascans.com",
			Version:        "0.3.0",
			Rating:         Mature,
			MatureCategory: "Hentai",
			LongStrip:      scanlatorLongStrips,
		},
	}
	for i := range sites {
		sites[i] = sites[i].WithDefaults()
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Name < sites[j].Name })
	return sites
}
