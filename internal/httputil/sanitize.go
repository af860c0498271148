package httputil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// slugPattern matches series slugs: letters, digits, hyphens, underscores.
	slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// numericIDPattern matches purely numeric IDs.
	numericIDPattern = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateURL checks that a URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateSlug checks that a series slug contains only safe characters.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if len(slug) > 256 {
		return fmt.Errorf("slug too long: %d characters", len(slug))
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug contains invalid characters: %q", slug)
	}
	return nil
}

// ValidateNumericID checks that an ID is purely numeric.
func ValidateNumericID(id string) error {
	if id == "" {
		return fmt.Errorf("numeric ID cannot be empty")
	}
	if !numericIDPattern.MatchString(id) {
		return fmt.Errorf("expected numeric ID, got %q", id)
	}
	return nil
}

// SanitizeFilename removes path traversal and dangerous characters from a filename.
// Returns just the base name, stripped of any directory components.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)

	replacer := strings.NewReplacer(
		"..", "_",
		"/", "_",
		"\\", "_",
		"\x00", "",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(name)

	if name == "" || name == "." || name == ".." {
		return "untitled"
	}

	return name
}

// SafeDownloadPath resolves and validates a download path ensuring it stays within the target directory.
func SafeDownloadPath(dir, filename string) (string, error) {
	sanitized := SanitizeFilename(filename)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	resolved, err := filepath.Abs(filepath.Join(absDir, sanitized))
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	if !strings.HasPrefix(resolved, absDir+string(filepath.Separator)) && resolved != absDir {
		return "", fmt.Errorf("path traversal detected: %q escapes %q", resolved, absDir)
	}

	return resolved, nil
}

// BuildURL constructs a URL from base and path components, encoding each
// path segment. A trailing slash on base is ignored.
func BuildURL(base string, pathSegments ...string) string {
	u := strings.TrimRight(base, "/")
	for _, seg := range pathSegments {
		u += "/" + url.PathEscape(seg)
	}
	return u
}

// WithQuery appends encoded query parameters to rawURL. Empty values are
// kept, since the API distinguishes "title=" from no title at all.
func WithQuery(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	return rawURL + "?" + params.Encode()
}
