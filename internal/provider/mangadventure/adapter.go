// Package mangadventure implements a content provider on top of the REST
// API that every MangAdventure site exposes under /api/v2.
//
// One Adapter serves one site. It paces its requests through a scheduler,
// decodes the API's JSON and maps it onto the media records the host
// renders. The category list is cached for the adapter's lifetime.
package mangadventure

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"mangadventure/internal/httputil"
	"mangadventure/internal/media"
	"mangadventure/internal/site"
)

// Scheduler admits outbound requests. *httputil.Scheduler implements it.
type Scheduler interface {
	Schedule(ctx context.Context, req *http.Request, priority int) (*http.Response, error)
}

// Adapter is the MangAdventure content provider for a single site.
type Adapter struct {
	site      site.Site
	mapper    mapper
	scheduler Scheduler
	tags      tagCache
	logger    *log.Logger

	client  httputil.Doer
	rate    float64
	cleanup func()
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClient sets the HTTP client used for requests. Its timeout is the
// only timeout the adapter applies.
func WithClient(c httputil.Doer) Option {
	return func(a *Adapter) { a.client = c }
}

// WithRequestsPerSecond sets the request ceiling for the adapter's own
// scheduler.
func WithRequestsPerSecond(n float64) Option {
	return func(a *Adapter) { a.rate = n }
}

// WithScheduler makes the adapter share an existing scheduler instead of
// creating its own. WithClient and WithRequestsPerSecond are then ignored.
func WithScheduler(s Scheduler) Option {
	return func(a *Adapter) { a.scheduler = s }
}

// WithLogger logs every outbound request URL to l.
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// New returns an adapter for s.
func New(s site.Site, opts ...Option) *Adapter {
	s = s.WithDefaults()
	a := &Adapter{
		site:   s,
		mapper: mapper{site: s},
		rate:   httputil.DefaultRequestsPerSecond,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.scheduler == nil {
		if a.client == nil {
			a.client = httputil.NewClient(0)
		}
		sched := httputil.NewScheduler(a.client, a.rate)
		a.scheduler = sched
		a.cleanup = sched.Close
	}
	return a
}

// Close releases the adapter's scheduler if it owns one.
func (a *Adapter) Close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// Info returns the site the adapter serves.
func (a *Adapter) Info() site.Site {
	return a.site
}

// Scheduler returns the scheduler that paces the adapter's requests. Other
// requests to the same site, such as page images, should go through it too.
func (a *Adapter) Scheduler() Scheduler {
	return a.scheduler
}

// SupportsTagExclusion reports that searches may exclude categories.
func (a *Adapter) SupportsTagExclusion() bool { return true }

// SupportsSearchOperators reports that the API has no AND/OR operators.
func (a *Adapter) SupportsSearchOperators() bool { return false }

// Directory returns the page of the series directory after cursor. An
// exhausted cursor yields no results and no request.
func (a *Adapter) Directory(ctx context.Context, cursor media.Cursor) (media.PagedResults, error) {
	return a.directory(ctx, cursor, httputil.PriorityNormal)
}

func (a *Adapter) directory(ctx context.Context, cursor media.Cursor, priority int) (media.PagedResults, error) {
	if cursor.Exhausted() {
		return media.PagedResults{Results: []media.Tile{}, Cursor: cursor}, nil
	}

	params, page := nextPage(cursor)
	data, err := fetch[paginator[remoteSeries]](ctx, a, httputil.WithQuery(a.endpoint("series"), params), priority)
	if err != nil {
		return media.PagedResults{}, fmt.Errorf("listing series page %d: %w", page, err)
	}

	return media.PagedResults{
		Results: tiles(data.Results),
		Cursor:  advance(cursor, page, data.Last),
	}, nil
}

// ViewMore continues the home section sectionID. Section IDs are sort keys.
func (a *Adapter) ViewMore(ctx context.Context, sectionID string, cursor media.Cursor) (media.PagedResults, error) {
	cursor.Sort = sectionID
	return a.Directory(ctx, cursor)
}

// Search lists series matching query, keeping the cursor's sort order.
func (a *Adapter) Search(ctx context.Context, query media.SearchQuery, cursor media.Cursor) (media.PagedResults, error) {
	cursor.Filter = BuildFilter(query)
	return a.Directory(ctx, cursor)
}

// DefaultHomeSections returns the home page rows, empty. Their IDs are
// directory sort keys.
func DefaultHomeSections() []media.HomeSection {
	return []media.HomeSection{
		{ID: "title", Title: "All Series", MoreItems: true},
		{ID: "-views", Title: "Most Viewed", MoreItems: true},
		{ID: "-latest_upload", Title: "Latest Updates", MoreItems: true},
	}
}

// HomeSections fetches every home section concurrently. All sections are
// first published empty, in display order, then each again with its items
// as soon as its own fetch completes. publish calls are serialized. Failed
// sections are reported in the returned error without holding back the
// others.
func (a *Adapter) HomeSections(ctx context.Context, publish func(media.HomeSection)) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	emit := func(s media.HomeSection) {
		mu.Lock()
		defer mu.Unlock()
		publish(s)
	}

	sections := DefaultHomeSections()
	for _, section := range sections {
		emit(section)
	}

	for _, section := range sections {
		wg.Add(1)
		go func(section media.HomeSection) {
			defer wg.Done()

			page, err := a.directory(ctx, media.Cursor{Sort: section.ID}, httputil.PriorityBackground)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("home section %q: %w", section.Title, err))
				mu.Unlock()
				return
			}
			section.Items = page.Results
			emit(section)
		}(section)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Tags returns the site's categories, fetching them on first use.
func (a *Adapter) Tags(ctx context.Context) (media.TagSection, error) {
	return a.tags.get(ctx, func(ctx context.Context) (media.TagSection, error) {
		data, err := fetch[results[remoteCategory]](ctx, a, a.endpoint("categories"), httputil.PriorityBackground)
		if err != nil {
			return media.TagSection{}, fmt.Errorf("listing categories: %w", err)
		}
		return categoriesSection(data.Results), nil
	})
}

// SeriesDetail returns the full record of the series slug.
func (a *Adapter) SeriesDetail(ctx context.Context, slug string) (media.Detail, error) {
	if err := httputil.ValidateSlug(slug); err != nil {
		return media.Detail{}, fmt.Errorf("invalid series: %w", err)
	}

	data, err := fetch[remoteSeries](ctx, a, a.endpoint("series", slug), httputil.PriorityUser)
	if err != nil {
		return media.Detail{}, fmt.Errorf("getting series %s: %w", slug, err)
	}
	return a.mapper.detail(data), nil
}

// Chapters lists the chapters of slug in the order the API returns them.
func (a *Adapter) Chapters(ctx context.Context, slug string) ([]media.Chapter, error) {
	if err := httputil.ValidateSlug(slug); err != nil {
		return nil, fmt.Errorf("invalid series: %w", err)
	}

	var endpoint string
	switch a.site.ChapterList {
	case site.ChaptersFlat:
		endpoint = httputil.WithQuery(a.endpoint("chapters"), url.Values{"series": {slug}})
	default:
		endpoint = a.endpoint("series", slug, "chapters")
	}

	data, err := fetch[results[remoteChapter]](ctx, a, endpoint, httputil.PriorityUser)
	if err != nil {
		return nil, fmt.Errorf("getting chapters of %s: %w", slug, err)
	}
	return a.mapper.chapters(data.Results), nil
}

// Pages returns the image URLs of a chapter in reading order. The request
// marks the chapter as read on the server.
func (a *Adapter) Pages(ctx context.Context, slug, chapterID string) ([]string, error) {
	endpoint, err := a.pagesEndpoint(slug, chapterID)
	if err != nil {
		return nil, err
	}

	data, err := fetch[results[remotePage]](ctx, a, endpoint, httputil.PriorityUser)
	if err != nil {
		return nil, fmt.Errorf("getting pages of chapter %s: %w", chapterID, err)
	}
	return pageURLs(data.Results), nil
}

func (a *Adapter) pagesEndpoint(slug, chapterID string) (string, error) {
	if !a.site.CompositeIDs {
		if err := httputil.ValidateNumericID(chapterID); err != nil {
			return "", fmt.Errorf("invalid chapter: %w", err)
		}
		return httputil.WithQuery(a.endpoint("chapters", chapterID, "pages"), url.Values{"track": {"true"}}), nil
	}

	ref, err := parseChapterID(chapterID)
	if err != nil {
		return "", fmt.Errorf("invalid chapter: %w", err)
	}
	if slug != "" && slug != ref.Series {
		return "", fmt.Errorf("chapter %s does not belong to series %s", chapterID, slug)
	}
	params := url.Values{
		"series": {ref.Series},
		"volume": {media.FormatNumber(ref.Volume)},
		"number": {media.FormatNumber(ref.Number)},
		"track":  {"true"},
	}
	return httputil.WithQuery(a.endpoint("pages"), params), nil
}

// ShareURL returns the reader URL of slug on the site.
func (a *Adapter) ShareURL(slug string) string {
	return shareURL(a.site, slug)
}

// UpdatedSince returns the slugs among slugs that were updated at or after
// since, newest first.
func (a *Adapter) UpdatedSince(ctx context.Context, since time.Time, slugs []string) ([]string, error) {
	wanted := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		wanted[s] = true
	}

	var updated []string
	err := a.walkUpdates(ctx, since, func(slug string, _ time.Time) {
		if wanted[slug] {
			updated = append(updated, slug)
		}
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// LastUpdated maps every series updated at or after since to the time of
// its latest upload.
func (a *Adapter) LastUpdated(ctx context.Context, since time.Time) (map[string]time.Time, error) {
	updated := map[string]time.Time{}
	err := a.walkUpdates(ctx, since, func(slug string, at time.Time) {
		updated[slug] = at
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// walkUpdates visits the directory newest first. It stops at the first
// series older than since, on the last page, or on an empty page.
// Series without an upload time are skipped.
func (a *Adapter) walkUpdates(ctx context.Context, since time.Time, visit func(slug string, at time.Time)) error {
	cursor := media.Cursor{Sort: "-latest_upload"}
	for !cursor.Exhausted() {
		params, page := nextPage(cursor)
		data, err := fetch[paginator[remoteSeries]](ctx, a, httputil.WithQuery(a.endpoint("series"), params), httputil.PriorityBackground)
		if err != nil {
			return fmt.Errorf("checking updates, page %d: %w", page, err)
		}
		if len(data.Results) == 0 {
			return nil
		}
		cursor = advance(cursor, page, data.Last)

		for _, s := range data.Results {
			at := parseTime(s.Updated)
			if at.IsZero() {
				continue
			}
			if at.Before(since) {
				return nil
			}
			visit(s.Slug, at)
		}
	}
	return nil
}

func (a *Adapter) endpoint(segments ...string) string {
	return httputil.BuildURL(a.site.APIURL(), segments...)
}

// fetch schedules a GET of rawURL and decodes the JSON body into T.
func fetch[T any](ctx context.Context, a *Adapter, rawURL string, priority int) (T, error) {
	var zero T

	req, err := httputil.NewJSONRequest(ctx, rawURL, a.site.UserAgent())
	if err != nil {
		return zero, err
	}

	if a.logger != nil {
		a.logger.Printf("GET %s", rawURL)
	}

	resp, err := a.scheduler.Schedule(ctx, req, priority)
	if err != nil {
		return zero, &TransportError{URL: rawURL, Err: err}
	}

	return decode[T](resp)
}
