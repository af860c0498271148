package mangadventure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangadventure/internal/media"
	"mangadventure/internal/site"
)

func newTestAdapter(t *testing.T, handler http.Handler, modify ...func(*site.Site)) *Adapter {
	t.Helper()
	ts := httptest.NewTLSServer(handler)
	t.Cleanup(ts.Close)

	s := site.Site{
		Name:           "Test Scans",
		BaseURL:        ts.URL,
		Version:        "9.9.9",
		MatureCategory: "Hentai",
	}
	for _, m := range modify {
		m(&s)
	}

	a := New(s, WithClient(ts.Client()), WithRequestsPerSecond(1000))
	t.Cleanup(a.Close)
	return a
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func TestDirectoryLastPage(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "title", r.URL.Query().Get("sort"))
		assert.False(t, r.URL.Query().Has("title"))
		writeJSON(w, `{"results":[{"slug":"foo","title":"Foo","cover":"u"}],"total":1,"last":true}`)
	})
	a := newTestAdapter(t, mux)

	page, err := a.Directory(context.Background(), media.Cursor{})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, media.Tile{ID: "foo", Title: "Foo", Image: "u"}, page.Results[0])
	assert.True(t, page.Cursor.Exhausted())

	again, err := a.Directory(context.Background(), page.Cursor)
	require.NoError(t, err)
	assert.Empty(t, again.Results)
	assert.NotNil(t, again.Results)
	assert.True(t, again.Cursor.Exhausted())
	assert.Equal(t, int32(1), hits.Load(), "exhausted cursor must not reach the network")
}

func TestDirectoryAdvancesPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(w, `{"results":[{"slug":"a","title":"A","cover":"c"}],"total":2,"last":false}`)
		case "2":
			writeJSON(w, `{"results":[{"slug":"b","title":"B","cover":"c"}],"total":2,"last":true}`)
		default:
			http.Error(w, "bad page", http.StatusBadRequest)
		}
	})
	a := newTestAdapter(t, mux)
	ctx := context.Background()

	first, err := a.Directory(ctx, media.Cursor{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Cursor.Page)
	assert.False(t, first.Cursor.Exhausted())

	second, err := a.Directory(ctx, first.Cursor)
	require.NoError(t, err)
	require.Len(t, second.Results, 1)
	assert.Equal(t, "b", second.Results[0].ID)
	assert.True(t, second.Cursor.Exhausted())
}

func TestSearchSendsFilter(t *testing.T) {
	var got url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series", func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		writeJSON(w, `{"results":[],"total":0,"last":true}`)
	})
	a := newTestAdapter(t, mux)

	q := media.SearchQuery{Title: "cat", IncludedTags: []string{"Action"}, ExcludedTags: []string{"Romance"}}
	page, err := a.Search(context.Background(), q, media.Cursor{Sort: "-views"})
	require.NoError(t, err)

	assert.Equal(t, "cat", got.Get("title"))
	assert.Equal(t, "Action,-Romance", got.Get("categories"))
	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "-views", got.Get("sort"))
	require.NotNil(t, page.Cursor.Filter)
	assert.Equal(t, "Action,-Romance", page.Cursor.Filter.Categories)
}

func TestViewMoreUsesSectionSort(t *testing.T) {
	var sort string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series", func(w http.ResponseWriter, r *http.Request) {
		sort = r.URL.Query().Get("sort")
		writeJSON(w, `{"results":[],"total":0,"last":true}`)
	})
	a := newTestAdapter(t, mux)

	_, err := a.ViewMore(context.Background(), "-latest_upload", media.Cursor{})
	require.NoError(t, err)
	assert.Equal(t, "-latest_upload", sort)
}

func TestRequestHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series/{slug}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0 (iPhone; like Mac OS X) Paperback-iOS/9.9.9", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(w, `{"slug":"foo","title":"Foo","cover":"c"}`)
	})
	a := newTestAdapter(t, mux)

	_, err := a.SeriesDetail(context.Background(), "foo")
	require.NoError(t, err)
}

func TestSeriesDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series/{slug}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("slug") != "creepy-cat" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, `{
			"slug": "creepy-cat",
			"title": "Creepy Cat",
			"cover": "c",
			"categories": ["Hentai"],
			"licensed": true,
			"chapters": null
		}`)
	})
	a := newTestAdapter(t, mux, func(s *site.Site) { s.LongStrip = []string{"creepy-cat"} })
	ctx := context.Background()

	d, err := a.SeriesDetail(ctx, "creepy-cat")
	require.NoError(t, err)
	assert.Equal(t, media.StatusLicensed, d.Status)
	assert.True(t, d.Mature)
	assert.True(t, d.LongStrip)
	assert.Equal(t, a.ShareURL("creepy-cat"), d.ShareURL)

	_, err = a.SeriesDetail(ctx, "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "not found\n", re.Body)
	assert.Contains(t, re.URL, "/api/v2/series/missing")

	_, err = a.SeriesDetail(ctx, "../etc")
	assert.Error(t, err)
}

func TestChaptersNested(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series/{slug}/chapters", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "foo", r.PathValue("slug"))
		writeJSON(w, `{"results":[
			{"id":2,"series":"foo","number":2,"volume":1,"full_title":"Vol. 1, Ch. 2","final":true},
			{"id":1,"series":"foo","number":1,"volume":0,"full_title":"Ch. 1"}
		]}`)
	})
	a := newTestAdapter(t, mux)

	chapters, err := a.Chapters(context.Background(), "foo")
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, "2", chapters[0].ID)
	assert.Equal(t, "Vol. 1, Ch. 2 [END]", chapters[0].Name)
	assert.Equal(t, "gb", chapters[0].Language)
	assert.False(t, chapters[1].HasVolume())
}

func TestChaptersFlat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/chapters", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "foo", r.URL.Query().Get("series"))
		writeJSON(w, `{"results":[{"id":5,"series":"foo","number":1}]}`)
	})
	a := newTestAdapter(t, mux, func(s *site.Site) { s.ChapterList = site.ChaptersFlat })

	chapters, err := a.Chapters(context.Background(), "foo")
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, "5", chapters[0].ID)
}

func TestPagesByID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/chapters/{id}/pages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.PathValue("id"))
		assert.Equal(t, "true", r.URL.Query().Get("track"))
		writeJSON(w, `{"results":[
			{"id":1,"image":"https://cdn/1.png","number":1},
			{"id":2,"image":"https://cdn/2.png","number":2}
		]}`)
	})
	a := newTestAdapter(t, mux)
	ctx := context.Background()

	pages, err := a.Pages(ctx, "foo", "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/1.png", "https://cdn/2.png"}, pages)

	_, err = a.Pages(ctx, "foo", "foo/1/2")
	assert.Error(t, err)
}

func TestPagesByNumber(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/pages", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "foo", q.Get("series"))
		assert.Equal(t, "2", q.Get("volume"))
		assert.Equal(t, "12.5", q.Get("number"))
		assert.Equal(t, "true", q.Get("track"))
		writeJSON(w, `{"results":[{"id":1,"image":"https://cdn/1.png","number":1}]}`)
	})
	a := newTestAdapter(t, mux, func(s *site.Site) {
		s.PageList = site.PagesByNumber
		s.CompositeIDs = true
	})
	ctx := context.Background()

	pages, err := a.Pages(ctx, "foo", "foo/2/12.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/1.png"}, pages)

	_, err = a.Pages(ctx, "bar", "foo/2/12.5")
	assert.Error(t, err, "chapter of another series")
}

func TestTagsFetchedOnce(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/categories", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(50 * time.Millisecond)
		writeJSON(w, `{"results":[{"name":"Action","description":""},{"name":"Comedy","description":""}]}`)
	})
	a := newTestAdapter(t, mux)

	var wg sync.WaitGroup
	sections := make([]media.TagSection, 8)
	errs := make([]error, 8)
	for i := range sections {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sections[i], errs[i] = a.Tags(context.Background())
		}(i)
	}
	wg.Wait()

	for i := range sections {
		require.NoError(t, errs[i])
		assert.Equal(t, "categories", sections[i].ID)
		assert.Equal(t, "Categories", sections[i].Label)
		assert.Equal(t, []media.Tag{{ID: "Action", Label: "Action"}, {ID: "Comedy", Label: "Comedy"}}, sections[i].Tags)
	}

	// Callers get their own copy of the cached list.
	sections[0].Tags[0].Label = "changed"
	later, err := a.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Action", later.Tags[0].Label)
	assert.Equal(t, int32(1), hits.Load())
}

func TestTagsFailureNotCached(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/categories", func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		writeJSON(w, `{"results":[{"name":"Drama"}]}`)
	})
	a := newTestAdapter(t, mux)
	ctx := context.Background()

	_, err := a.Tags(ctx)
	require.Error(t, err)

	section, err := a.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, section.Tags, 1)
	assert.Equal(t, int32(2), hits.Load())
}

func TestHomeSectionsPartialFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series", func(w http.ResponseWriter, r *http.Request) {
		sort := r.URL.Query().Get("sort")
		if sort == "-views" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		writeJSON(w, fmt.Sprintf(`{"results":[{"slug":%q,"title":"T","cover":"c"}],"total":1,"last":true}`, "s"+sort))
	})
	a := newTestAdapter(t, mux)

	var published []media.HomeSection
	err := a.HomeSections(context.Background(), func(s media.HomeSection) {
		published = append(published, s)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Most Viewed")

	require.GreaterOrEqual(t, len(published), 3)
	assert.Equal(t, []string{"title", "-views", "-latest_upload"},
		[]string{published[0].ID, published[1].ID, published[2].ID})

	empty := map[string]int{}
	filled := map[string][]media.Tile{}
	for _, s := range published {
		if s.Items == nil {
			empty[s.ID]++
			continue
		}
		filled[s.ID] = s.Items
	}
	assert.Equal(t, map[string]int{"title": 1, "-views": 1, "-latest_upload": 1}, empty)
	require.Len(t, filled, 2)
	assert.Equal(t, "stitle", filled["title"][0].ID)
	assert.Equal(t, "s-latest_upload", filled["-latest_upload"][0].ID)
}

func TestUpdatedSince(t *testing.T) {
	since := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	var pages atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series", func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		assert.Equal(t, "-latest_upload", r.URL.Query().Get("sort"))
		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(w, `{"last":false,"results":[
				{"slug":"a","updated":"2024-01-12T00:00:00Z"},
				{"slug":"b","updated":"2024-01-11T00:00:00Z"},
				{"slug":"nodate"}
			]}`)
		case "2":
			writeJSON(w, `{"last":false,"results":[
				{"slug":"c","updated":"2024-01-10T00:00:00Z"},
				{"slug":"d","updated":"2024-01-01T00:00:00Z"}
			]}`)
		default:
			t.Errorf("page %s requested after an older series was seen", r.URL.Query().Get("page"))
			writeJSON(w, `{"last":true,"results":[]}`)
		}
	})
	a := newTestAdapter(t, mux)

	got, err := a.UpdatedSince(context.Background(), since, []string{"a", "c", "d", "nodate"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, got)
	assert.Equal(t, int32(2), pages.Load())
}

func TestLastUpdated(t *testing.T) {
	since := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(w, `{"last":false,"results":[
				{"slug":"a","updated":"2024-01-12T00:00:00Z"},
				{"slug":"nodate"},
				{"slug":"b","updated":"2024-01-11T08:00:00Z"}
			]}`)
		default:
			writeJSON(w, `{"last":false,"results":[
				{"slug":"c","updated":"2024-01-10T00:00:00Z"},
				{"slug":"d","updated":"2024-01-01T00:00:00Z"}
			]}`)
		}
	})
	a := newTestAdapter(t, mux)

	got, err := a.LastUpdated(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, map[string]time.Time{
		"a": time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		"b": time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC),
		"c": time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}, utcTimes(got))
}

func utcTimes(m map[string]time.Time) map[string]time.Time {
	out := make(map[string]time.Time, len(m))
	for k, v := range m {
		out[k] = v.UTC()
	}
	return out
}

func TestUpdatedSinceStopsOnEmptyPage(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, `{"last":false,"results":[]}`)
	})
	a := newTestAdapter(t, mux)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := a.UpdatedSince(ctx, time.Time{}, []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(1), hits.Load())

	uploads, err := a.LastUpdated(ctx, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, uploads)
	assert.Equal(t, int32(2), hits.Load())
}

type countingScheduler struct {
	client *http.Client
	n      atomic.Int32
}

func (c *countingScheduler) Schedule(ctx context.Context, req *http.Request, priority int) (*http.Response, error) {
	c.n.Add(1)
	return c.client.Do(req.WithContext(ctx))
}

func TestSchedulerSharedWithOtherRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"last":true,"results":[]}`)
	})
	mux.HandleFunc("GET /media/1.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png"))
	})
	ts := httptest.NewTLSServer(mux)
	defer ts.Close()

	sched := &countingScheduler{client: ts.Client()}
	a := New(site.Site{Name: "Test Scans", BaseURL: ts.URL}, WithScheduler(sched))
	defer a.Close()

	_, err := a.Directory(context.Background(), media.Cursor{})
	require.NoError(t, err)

	assert.Same(t, sched, a.Scheduler())
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/media/1.png", nil)
	require.NoError(t, err)
	resp, err := a.Scheduler().Schedule(context.Background(), req, 0)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(2), sched.n.Load())
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewTLSServer(http.NotFoundHandler())
	client := ts.Client()
	baseURL := ts.URL
	ts.Close()

	a := New(site.Site{Name: "Gone", BaseURL: baseURL}, WithClient(client), WithRequestsPerSecond(1000))
	defer a.Close()

	_, err := a.Directory(context.Background(), media.Cursor{})
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Contains(t, err.Error(), "listing series page 1")
}

func TestEmptyBodyIsDecodeError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/series", func(w http.ResponseWriter, r *http.Request) {})
	a := newTestAdapter(t, mux)

	_, err := a.Directory(context.Background(), media.Cursor{})
	var de *DecodeError
	require.True(t, errors.As(err, &de))
}

func TestCancelledContext(t *testing.T) {
	a := newTestAdapter(t, http.NotFoundHandler())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Directory(ctx, media.Cursor{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCapabilities(t *testing.T) {
	a := New(site.Site{Name: "x", BaseURL: "https://example.com/"})
	defer a.Close()

	assert.True(t, a.SupportsTagExclusion())
	assert.False(t, a.SupportsSearchOperators())
	assert.Equal(t, "https://example.com/reader/foo/", a.ShareURL("foo"))
	assert.Equal(t, "0.4.0", a.Info().Version)
	assert.Equal(t, "gb", a.Info().Language)
}
