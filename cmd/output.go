package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"mangadventure/internal/media"
	"mangadventure/internal/provider"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

var mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// heading prints a section title, styled only on a terminal.
func heading(w io.Writer, title string) {
	if isTerminal(w) {
		title = headingStyle.Render(title)
	}
	fmt.Fprintln(w, title)
}

func muted(w io.Writer, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if isTerminal(w) {
		line = mutedStyle.Render(line)
	}
	fmt.Fprintln(w, line)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewTable(w)
	table.Configure(func(c *tablewriter.Config) {
		c.Header.Alignment.Global = tw.AlignLeft
		c.Row.Alignment.Global = tw.AlignLeft
		c.Header.Padding.Global = tw.Padding{Left: " ", Right: " "}
		c.Row.Padding.Global = tw.Padding{Left: " ", Right: " "}
	})
	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func printTiles(w io.Writer, tiles []media.Tile) error {
	rows := make([][]string, len(tiles))
	for i, t := range tiles {
		rows[i] = []string{t.ID, provider.FormatTile(t)}
	}
	return printTable(w, []string{"Slug", "Title"}, rows)
}

// printPage prints one directory page and the token that continues it.
func printPage(w io.Writer, page media.PagedResults) error {
	if flagJSON {
		return printJSON(w, struct {
			Results []media.Tile `json:"results"`
			Cursor  string       `json:"cursor"`
			HasMore bool         `json:"has_more"`
		}{page.Results, page.Cursor.Encode(), !page.Cursor.Exhausted()})
	}

	if len(page.Results) == 0 {
		fmt.Fprintln(w, "No series found.")
	} else if err := printTiles(w, page.Results); err != nil {
		return err
	}
	if !page.Cursor.Exhausted() {
		muted(w, "More results: --cursor %s", page.Cursor.Encode())
	}
	return nil
}

func printChapters(w io.Writer, chapters []media.Chapter) error {
	rows := make([][]string, len(chapters))
	for i, c := range chapters {
		published := ""
		if !c.Published.IsZero() {
			published = c.Published.Format("2006-01-02")
		}
		rows[i] = []string{c.ID, media.FormatNumber(c.Number), provider.FormatChapter(c), published}
	}
	return printTable(w, []string{"ID", "Number", "Chapter", "Published"}, rows)
}

func printDetail(w io.Writer, d media.Detail) {
	heading(w, d.Title())
	if len(d.Titles) > 1 {
		muted(w, "Also known as: %s", strings.Join(d.Titles[1:], ", "))
	}
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-10s %s\n", name+":", value)
		}
	}
	field("Status", d.Status)
	field("Author", d.Author)
	field("Artist", d.Artist)
	field("Views", strconv.Itoa(d.Views))
	if d.Mature {
		field("Rating", "Mature")
	}
	if d.LongStrip {
		field("Format", "Long strip")
	}
	for _, section := range d.Tags {
		labels := make([]string, len(section.Tags))
		for i, t := range section.Tags {
			labels[i] = t.Label
		}
		field(section.Label, strings.Join(labels, ", "))
	}
	field("Link", d.ShareURL)
	if d.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d.Description)
	}
}
