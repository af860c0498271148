package media

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor is the pagination state a host passes back unchanged between
// consecutive "view more" calls. The zero value starts at the first page.
type Cursor struct {
	Page   int     `json:"page"`             // Last page fetched, 0 before the first fetch
	Sort   string  `json:"sort,omitempty"`   // Server-side sort key
	Last   bool    `json:"last,omitempty"`   // Set once the server reported the last page
	Filter *Filter `json:"filter,omitempty"` // nil for unfiltered browsing
}

// Filter narrows a directory listing.
type Filter struct {
	Title      string `json:"title,omitempty"`
	Categories string `json:"categories,omitempty"` // Comma-joined, "-" prefix excludes
}

// Exhausted reports whether no further pages can be fetched.
func (c Cursor) Exhausted() bool {
	return c.Last
}

// Encode returns the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor parses a token produced by Cursor.Encode. An empty token
// yields the zero cursor.
func DecodeCursor(token string) (Cursor, error) {
	var c Cursor
	if token == "" {
		return c, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, fmt.Errorf("decoding cursor: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing cursor: %w", err)
	}
	if c.Page < 0 {
		return Cursor{}, fmt.Errorf("invalid cursor page %d", c.Page)
	}
	return c, nil
}
