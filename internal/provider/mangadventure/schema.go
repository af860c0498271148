package mangadventure

import (
	"bytes"
	"encoding/json"
)

// results wraps unpaginated API lists.
type results[T any] struct {
	Results []T `json:"results"`
}

// paginator wraps paginated API lists.
type paginator[T any] struct {
	Total   int  `json:"total"`
	Last    bool `json:"last"`
	Results []T  `json:"results"`
}

type remoteCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type remotePage struct {
	ID     int    `json:"id"`
	Image  string `json:"image"`
	Number int    `json:"number"`
	URL    string `json:"url"`
}

type remoteChapter struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Number    float64  `json:"number"`
	Volume    *float64 `json:"volume"`
	Published string   `json:"published"`
	Final     bool     `json:"final"`
	Series    string   `json:"series"`
	Groups    []string `json:"groups"`
	FullTitle string   `json:"full_title"`
	URL       string   `json:"url"`
}

type remoteSeries struct {
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Cover       string       `json:"cover"`
	Description *string      `json:"description"`
	Aliases     []string     `json:"aliases"`
	Authors     []string     `json:"authors"`
	Artists     []string     `json:"artists"`
	Categories  []string     `json:"categories"`
	Completed   *bool        `json:"completed"`
	Licensed    *bool        `json:"licensed"`
	Status      *string      `json:"status"`
	Views       *int         `json:"views"`
	Chapters    chapterCount `json:"chapters"`
	Updated     string       `json:"updated"`
}

// chapterCount keeps apart the three states of the "chapters" field:
// absent (count unknown), null (licensed, nothing to read) and a number.
type chapterCount struct {
	Present bool
	Null    bool
	Count   int
}

func (c *chapterCount) UnmarshalJSON(data []byte) error {
	c.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		c.Null = true
		return nil
	}
	return json.Unmarshal(data, &c.Count)
}
