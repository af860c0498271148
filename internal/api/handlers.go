package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"mangadventure/internal/media"
	"mangadventure/internal/site"
)

type siteResponse struct {
	site.Site
	Key                  string `json:"key"`
	SupportsTagExclusion bool   `json:"supports_tag_exclusion"`
}

type pageResponse struct {
	Results []media.Tile `json:"results"`
	Cursor  string       `json:"cursor"`
	HasMore bool         `json:"has_more"`
}

type homeResponse struct {
	Sections []media.HomeSection `json:"sections"`
	Errors   []string            `json:"errors,omitempty"`
}

func newPageResponse(p media.PagedResults) pageResponse {
	return pageResponse{
		Results: p.Results,
		Cursor:  p.Cursor.Encode(),
		HasMore: !p.Cursor.Exhausted(),
	}
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	all := s.providers.All()
	sites := make([]siteResponse, 0, len(all))
	for _, p := range all {
		sites = append(sites, describe(p.Info(), p.SupportsTagExclusion()))
	}
	RespondWithJSON(w, http.StatusOK, sites)
}

func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	p := providerFrom(r)
	RespondWithJSON(w, http.StatusOK, describe(p.Info(), p.SupportsTagExclusion()))
}

func describe(info site.Site, exclusion bool) siteResponse {
	return siteResponse{Site: info, Key: info.Key(), SupportsTagExclusion: exclusion}
}

// cursorParam decodes the "cursor" token. A "sort" parameter applies only
// when starting from the first page; afterwards the cursor carries it.
func cursorParam(r *http.Request) (media.Cursor, error) {
	q := r.URL.Query()
	cursor, err := media.DecodeCursor(q.Get("cursor"))
	if err != nil {
		return media.Cursor{}, err
	}
	if q.Get("cursor") == "" && q.Get("sort") != "" {
		cursor.Sort = q.Get("sort")
	}
	return cursor, nil
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	cursor, err := cursorParam(r)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid cursor")
		return
	}

	page, err := providerFrom(r).Directory(r.Context(), cursor)
	if err != nil {
		respondWithProviderError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, newPageResponse(page))
}

// handleHome collects every section before responding. A section that
// failed keeps its empty entry and its error is listed; the request fails
// only when no section loaded.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	var (
		sections []media.HomeSection
		index    = map[string]int{}
	)
	err := providerFrom(r).HomeSections(r.Context(), func(hs media.HomeSection) {
		if i, ok := index[hs.ID]; ok {
			sections[i] = hs
			return
		}
		index[hs.ID] = len(sections)
		sections = append(sections, hs)
	})

	resp := homeResponse{Sections: sections}
	if err == nil {
		RespondWithJSON(w, http.StatusOK, resp)
		return
	}

	loaded := false
	for _, hs := range sections {
		if hs.Items != nil {
			loaded = true
			break
		}
	}
	if !loaded {
		respondWithProviderError(w, err)
		return
	}
	resp.Errors = errorList(err)
	RespondWithJSON(w, http.StatusOK, resp)
}

// errorList splits a joined error into its messages.
func errorList(err error) []string {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []string{err.Error()}
	}
	var msgs []string
	for _, e := range joined.Unwrap() {
		msgs = append(msgs, strings.TrimSpace(e.Error()))
	}
	return msgs
}

// listParam reads a repeatable, comma-separated query parameter.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	cursor, err := cursorParam(r)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid cursor")
		return
	}

	query := media.SearchQuery{
		Title:        r.URL.Query().Get("title"),
		IncludedTags: listParam(r, "include"),
		ExcludedTags: listParam(r, "exclude"),
	}
	p := providerFrom(r)
	if len(query.ExcludedTags) > 0 && !p.SupportsTagExclusion() {
		RespondWithError(w, http.StatusBadRequest, "This site cannot exclude categories")
		return
	}

	page, err := p.Search(r.Context(), query, cursor)
	if err != nil {
		respondWithProviderError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, newPageResponse(page))
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	section, err := providerFrom(r).Tags(r.Context())
	if err != nil {
		respondWithProviderError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, section)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	detail, err := providerFrom(r).SeriesDetail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondWithProviderError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, detail)
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := providerFrom(r).Chapters(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondWithProviderError(w, err)
		return
	}
	if chapters == nil {
		chapters = []media.Chapter{}
	}
	RespondWithJSON(w, http.StatusOK, chapters)
}

// handlePages expects composite chapter IDs with their slashes escaped as
// %2F.
func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	chapterID, err := url.PathUnescape(chi.URLParam(r, "chapterID"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}

	pages, err := providerFrom(r).Pages(r.Context(), chi.URLParam(r, "slug"), chapterID)
	if err != nil {
		respondWithProviderError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string][]string{"pages": pages})
}
