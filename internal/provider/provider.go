// Package provider defines the interface for manga content providers
// and the registry the commands use to look them up.
package provider

import (
	"context"
	"time"

	"mangadventure/internal/media"
	"mangadventure/internal/provider/mangadventure"
	"mangadventure/internal/site"
)

// Provider is the interface that content providers must implement.
type Provider interface {
	// Info returns the site the provider serves.
	Info() site.Site

	// Directory returns the page of the series directory after cursor.
	Directory(ctx context.Context, cursor media.Cursor) (media.PagedResults, error)

	// ViewMore continues a home section.
	ViewMore(ctx context.Context, sectionID string, cursor media.Cursor) (media.PagedResults, error)

	// HomeSections publishes each home row, first empty and then filled.
	HomeSections(ctx context.Context, publish func(media.HomeSection)) error

	// Search lists series matching a title and category filter.
	Search(ctx context.Context, query media.SearchQuery, cursor media.Cursor) (media.PagedResults, error)

	// Tags returns the categories a search can include or exclude.
	Tags(ctx context.Context) (media.TagSection, error)

	// SeriesDetail returns the full record of a series.
	SeriesDetail(ctx context.Context, slug string) (media.Detail, error)

	// Chapters lists the chapters of a series.
	Chapters(ctx context.Context, slug string) ([]media.Chapter, error)

	// Pages returns the image URLs of a chapter in reading order.
	Pages(ctx context.Context, slug, chapterID string) ([]string, error)

	// ShareURL returns the public reader URL of a series.
	ShareURL(slug string) string

	// UpdatedSince filters slugs down to the series updated at or after since.
	UpdatedSince(ctx context.Context, since time.Time, slugs []string) ([]string, error)

	// LastUpdated maps each series updated at or after since to its latest
	// upload time.
	LastUpdated(ctx context.Context, since time.Time) (map[string]time.Time, error)

	SupportsTagExclusion() bool

	// Scheduler paces every request to the provider's site.
	Scheduler() mangadventure.Scheduler

	// Close stops background work. The provider is unusable afterwards.
	Close()
}

var _ Provider = (*mangadventure.Adapter)(nil)
