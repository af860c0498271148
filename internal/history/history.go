// Package history keeps the local reading history as a TSV file, one line
// per series holding the last chapter read. Writes are atomic (temp+rename).
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"mangadventure/internal/config"
	"mangadventure/internal/media"
)

// TSV columns: site, series, title, chapter id, chapter number, read at
const numColumns = 6

// Entry is the last chapter read in one series.
type Entry struct {
	Site      string    `json:"site"`
	Series    string    `json:"series"`
	Title     string    `json:"title"`
	ChapterID string    `json:"chapter_id"`
	Chapter   float64   `json:"chapter"`
	ReadAt    time.Time `json:"read_at"`
}

func (e Entry) sameSeries(site, series string) bool {
	return e.Site == site && e.Series == series
}

// Load reads the history file and returns all entries, most recently read
// first.
func Load() ([]Entry, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			continue // Skip malformed lines
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ReadAt.After(entries[j].ReadAt) })
	return entries, nil
}

// Save records entry as the last chapter read in its series, replacing any
// earlier entry for the same site and series.
func Save(entry Entry) error {
	entries, err := Load()
	if err != nil {
		return err
	}

	found := false
	for i, e := range entries {
		if e.sameSeries(entry.Site, entry.Series) {
			entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, entry)
	}

	return write(entries)
}

// Record saves chapter c of series as read now.
func Record(siteName string, d media.Detail, c media.Chapter) error {
	return Save(Entry{
		Site:      siteName,
		Series:    d.ID,
		Title:     d.Title(),
		ChapterID: c.ID,
		Chapter:   c.Number,
		ReadAt:    time.Now().UTC(),
	})
}

// Remove deletes the entry for a series.
func Remove(site, series string) error {
	entries, err := Load()
	if err != nil {
		return err
	}

	var filtered []Entry
	for _, e := range entries {
		if !e.sameSeries(site, series) {
			filtered = append(filtered, e)
		}
	}

	return write(filtered)
}

// write replaces the history file with entries.
func write(entries []Entry) error {
	path, err := config.HistoryPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "history-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writer := bufio.NewWriter(tmpFile)
	for _, e := range entries {
		if _, err := writer.WriteString(formatLine(e) + "\n"); err != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing history: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing history: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming history file: %w", err)
	}

	return nil
}

// FormatForDisplay creates display strings for fzf selection from history entries.
func FormatForDisplay(entries []Entry) []string {
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		items = append(items, fmt.Sprintf("%s - Ch. %s (%s)", e.Title, media.FormatNumber(e.Chapter), e.Site))
	}
	return items
}

// parseLine parses a TSV line into an Entry.
func parseLine(line string) (Entry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < numColumns {
		return Entry{}, fmt.Errorf("expected %d columns, got %d", numColumns, len(fields))
	}

	chapter, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("bad chapter number %q", fields[4])
	}
	readAt, err := time.Parse(time.RFC3339, fields[5])
	if err != nil {
		return Entry{}, fmt.Errorf("bad timestamp %q", fields[5])
	}

	return Entry{
		Site:      fields[0],
		Series:    fields[1],
		Title:     fields[2],
		ChapterID: fields[3],
		Chapter:   chapter,
		ReadAt:    readAt,
	}, nil
}

var fieldCleaner = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// formatLine converts an Entry to a TSV line.
func formatLine(e Entry) string {
	return strings.Join([]string{
		fieldCleaner.Replace(e.Site),
		fieldCleaner.Replace(e.Series),
		fieldCleaner.Replace(e.Title),
		fieldCleaner.Replace(e.ChapterID),
		media.FormatNumber(e.Chapter),
		e.ReadAt.UTC().Format(time.RFC3339),
	}, "\t")
}
