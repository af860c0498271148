package mangadventure

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mangadventure/internal/media"
	"mangadventure/internal/site"
)

const (
	licensedSubtitle = "[LICENSED]"
	finalSuffix      = " [END]"
	listSeparator    = ", "
)

// mapper translates API records into media records for one site.
type mapper struct {
	site site.Site
}

// tile maps a series to a catalog tile. Only an explicit null chapter
// count marks the series as licensed; a missing count does not.
func tile(s remoteSeries) media.Tile {
	t := media.Tile{
		ID:    s.Slug,
		Title: s.Title,
		Image: s.Cover,
	}
	if s.Chapters.Null {
		t.Subtitle = licensedSubtitle
	}
	return t
}

func tiles(series []remoteSeries) []media.Tile {
	out := make([]media.Tile, 0, len(series))
	for _, s := range series {
		out = append(out, tile(s))
	}
	return out
}

func (m mapper) detail(s remoteSeries) media.Detail {
	d := media.Detail{
		ID:        s.Slug,
		Titles:    append([]string{s.Title}, s.Aliases...),
		Image:     s.Cover,
		Status:    seriesStatus(s),
		Mature:    isMature(s.Categories, m.site.MatureCategory),
		LongStrip: m.site.IsLongStrip(s.Slug),
		ShareURL:  shareURL(m.site, s.Slug),
	}
	if s.Description != nil {
		d.Description = plainText(*s.Description)
	}
	if len(s.Authors) > 0 {
		d.Author = strings.Join(s.Authors, listSeparator)
	}
	if len(s.Artists) > 0 {
		d.Artist = strings.Join(s.Artists, listSeparator)
	}
	if s.Views != nil {
		d.Views = *s.Views
	}
	if s.Categories != nil {
		d.Tags = []media.TagSection{categorySection(s.Categories)}
	}
	return d
}

// seriesStatus derives the display status. A licensed flag wins over
// everything, then an explicit status string, then the completed flag.
func seriesStatus(s remoteSeries) string {
	if s.Licensed != nil && *s.Licensed {
		return media.StatusLicensed
	}
	if s.Status != nil && *s.Status != "" {
		return titleCase(*s.Status)
	}
	if s.Completed != nil {
		if *s.Completed {
			return media.StatusCompleted
		}
		return media.StatusOngoing
	}
	return media.StatusUnknown
}

func titleCase(s string) string {
	return strings.ToUpper(s[:1]) + s[1:]
}

// isMature reports whether categories contain label. An empty label means
// the site never flags series as mature.
func isMature(categories []string, label string) bool {
	if label == "" {
		return false
	}
	for _, c := range categories {
		if c == label {
			return true
		}
	}
	return false
}

func categorySection(names []string) media.TagSection {
	tags := make([]media.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, media.Tag{ID: name, Label: name})
	}
	return media.TagSection{ID: "categories", Label: "Categories", Tags: tags}
}

func categoriesSection(categories []remoteCategory) media.TagSection {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return categorySection(names)
}

func (m mapper) chapter(c remoteChapter) media.Chapter {
	ch := media.Chapter{
		SeriesID:  c.Series,
		Number:    c.Number,
		Name:      c.FullTitle,
		Group:     strings.Join(c.Groups, listSeparator),
		Language:  m.site.Language,
		Published: parseTime(c.Published),
	}
	if c.Volume != nil {
		ch.Volume = *c.Volume
	}
	if c.Final {
		ch.Name += finalSuffix
	}
	if m.site.CompositeIDs {
		ch.ID = encodeChapterID(c.Series, ch.Volume, c.Number)
	} else {
		ch.ID = strconv.FormatInt(c.ID, 10)
	}
	return ch
}

func (m mapper) chapters(list []remoteChapter) []media.Chapter {
	out := make([]media.Chapter, 0, len(list))
	for _, c := range list {
		out = append(out, m.chapter(c))
	}
	return out
}

// pageURLs keeps the image URLs in the order the API returned them.
func pageURLs(pages []remotePage) []string {
	urls := make([]string, 0, len(pages))
	for _, p := range pages {
		urls = append(urls, p.Image)
	}
	return urls
}

// parseTime reads an API timestamp. Unparseable values yield the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// plainText strips markup from a series description.
func plainText(desc string) string {
	if !strings.ContainsAny(desc, "<&") {
		return strings.TrimSpace(desc)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
	if err != nil {
		return strings.TrimSpace(desc)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p").AppendHtml("\n")
	return strings.TrimSpace(doc.Text())
}

func shareURL(s site.Site, slug string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/reader/" + slug + "/"
}
