// Package download saves chapter page images to disk. Requests go through
// the same scheduler as API calls, so downloads share the site's rate
// ceiling. Output paths are validated against directory traversal.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"mangadventure/internal/httputil"
	"mangadventure/internal/media"
	"mangadventure/internal/site"
)

// DefaultWorkers is the number of pages fetched concurrently.
const DefaultWorkers = 4

// maxImageSize caps a single page image.
const maxImageSize = 50 * 1024 * 1024

var imageExt = regexp.MustCompile(`^\.(jpe?g|png|gif|webp|avif)$`)

// Scheduler admits outbound requests. *httputil.Scheduler implements it.
type Scheduler interface {
	Schedule(ctx context.Context, req *http.Request, priority int) (*http.Response, error)
}

// Request describes one chapter download.
type Request struct {
	Site    site.Site
	Series  string // Display title, used for the directory name
	Chapter media.Chapter
	Pages   []string
	Workers int
}

// Chapter downloads every page of r into outputDir/<series>/<chapter>/ as
// 001.png, 002.jpg and so on, and returns the chapter directory. On failure
// the files already written are left in place and the first error is
// returned.
func Chapter(ctx context.Context, sched Scheduler, r Request, outputDir string) (string, error) {
	if len(r.Pages) == 0 {
		return "", fmt.Errorf("chapter %s has no pages", r.Chapter.ID)
	}

	seriesDir, err := httputil.SafeDownloadPath(outputDir, dirName(r.Series))
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	chapterDir, err := httputil.SafeDownloadPath(seriesDir, dirName(chapterLabel(r.Chapter)))
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.MkdirAll(chapterDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pageURL := range r.Pages {
		name := pageFileName(i+1, len(r.Pages), pageURL)
		g.Go(func() error {
			dest, err := httputil.SafeDownloadPath(chapterDir, name)
			if err != nil {
				return err
			}
			if err := fetchPage(ctx, sched, r.Site, pageURL, dest); err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return chapterDir, err
	}

	return chapterDir, nil
}

func fetchPage(ctx context.Context, sched Scheduler, s site.Site, pageURL, dest string) error {
	req, err := httputil.NewImageRequest(ctx, pageURL, s.UserAgent(), strings.TrimRight(s.BaseURL, "/")+"/")
	if err != nil {
		return err
	}

	resp, err := sched.Schedule(ctx, req, httputil.PriorityUser)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error %d from %s", resp.StatusCode, pageURL)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".page-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxImageSize+1))
	if err == nil && n > maxImageSize {
		err = fmt.Errorf("image larger than %d bytes", maxImageSize)
	}
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", filepath.Base(dest), err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s: %w", filepath.Base(dest), err)
	}
	return nil
}

// pageFileName zero-pads the page number so files sort in reading order.
func pageFileName(n, total int, pageURL string) string {
	width := len(fmt.Sprint(total))
	if width < 3 {
		width = 3
	}
	return fmt.Sprintf("%0*d%s", width, n, extension(pageURL))
}

func extension(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if !imageExt.MatchString(ext) {
		return ".jpg"
	}
	return ext
}

func chapterLabel(c media.Chapter) string {
	label := "Ch. " + media.FormatNumber(c.Number)
	if c.HasVolume() {
		label = "Vol. " + media.FormatNumber(c.Volume) + " " + label
	}
	return label
}

// dirName keeps slashes in titles from being read as path separators.
func dirName(name string) string {
	return httputil.SanitizeFilename(strings.NewReplacer("/", "_", "\\", "_").Replace(name))
}
