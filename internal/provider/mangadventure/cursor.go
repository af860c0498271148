package mangadventure

import (
	"net/url"
	"strconv"
	"strings"

	"mangadventure/internal/media"
)

// DefaultSort lists series by title, ascending.
const DefaultSort = "title"

// excludePrefix marks an excluded category in the combined filter.
const excludePrefix = "-"

// nextPage returns the query for the page following c, and that page's
// number. c must not be exhausted.
func nextPage(c media.Cursor) (url.Values, int) {
	page := c.Page + 1
	params := url.Values{}
	if c.Filter != nil {
		params.Set("title", c.Filter.Title)
		params.Set("categories", c.Filter.Categories)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("sort", sortKey(c.Sort))
	return params, page
}

// advance records that page was fetched. Once the server reports the last
// page the cursor stays exhausted.
func advance(c media.Cursor, page int, last bool) media.Cursor {
	c.Page = page
	c.Last = c.Last || last
	return c
}

func sortKey(sort string) string {
	if sort == "" {
		return DefaultSort
	}
	return sort
}

// BuildFilter turns a search query into the directory filter. The API takes
// a single categories parameter, so excluded names carry a "-" prefix:
// included ["Action"] and excluded ["Romance"] give "Action,-Romance".
func BuildFilter(q media.SearchQuery) *media.Filter {
	categories := make([]string, 0, len(q.IncludedTags)+len(q.ExcludedTags))
	categories = append(categories, q.IncludedTags...)
	for _, t := range q.ExcludedTags {
		categories = append(categories, excludePrefix+t)
	}
	return &media.Filter{
		Title:      q.Title,
		Categories: strings.Join(categories, ","),
	}
}
