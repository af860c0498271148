package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mangadventure/internal/download"
	"mangadventure/internal/history"
	"mangadventure/internal/media"
	"mangadventure/internal/provider"
	"mangadventure/internal/ui"
)

const moreResults = "» More results"

// readRun is the default command: mangadventure <query>
func readRun(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	if query == "" {
		var err error
		query, err = ui.Input("Search")
		if err != nil {
			return fmt.Errorf("no search query provided")
		}
	}

	registry, p, err := openProvider()
	if err != nil {
		return err
	}
	defer registry.Close()

	debugf("searching for: %s", query)
	tile, err := pickSeries(cmd.Context(), p, media.SearchQuery{Title: query})
	if err != nil {
		return err
	}
	debugf("selected: %s (slug: %s)", tile.Title, tile.ID)

	return readSeries(cmd.Context(), p, tile.ID)
}

// pickSeries pages through search results until the user picks a series.
func pickSeries(ctx context.Context, p provider.Provider, query media.SearchQuery) (media.Tile, error) {
	var (
		tiles  []media.Tile
		cursor media.Cursor
	)
	for {
		page, err := p.Search(ctx, query, cursor)
		if err != nil {
			return media.Tile{}, fmt.Errorf("search failed: %w", err)
		}
		tiles = append(tiles, page.Results...)
		cursor = page.Cursor

		if len(tiles) == 0 {
			return media.Tile{}, fmt.Errorf("no series found for %q", query.Title)
		}

		items := make([]string, 0, len(tiles)+1)
		for _, t := range tiles {
			items = append(items, provider.FormatTile(t))
		}
		if !cursor.Exhausted() {
			items = append(items, moreResults)
		}

		idx, err := ui.Select("Series", items)
		if err != nil {
			return media.Tile{}, err
		}
		if idx < len(tiles) {
			return tiles[idx], nil
		}
	}
}

// readSeries lets the user pick a chapter of slug and reads it.
func readSeries(ctx context.Context, p provider.Provider, slug string) error {
	detail, err := p.SeriesDetail(ctx, slug)
	if err != nil {
		return err
	}
	if detail.Status == media.StatusLicensed {
		debugf("%s is licensed, chapters may be unavailable", detail.Title())
	}

	chapters, err := p.Chapters(ctx, slug)
	if err != nil {
		return err
	}
	if len(chapters) == 0 {
		return fmt.Errorf("no chapters available for %s", detail.Title())
	}

	chapter, err := ui.Pick("Chapter", chapters, provider.FormatChapter)
	if err != nil {
		return err
	}
	debugf("chapter: %s (ID: %s)", chapter.Name, chapter.ID)

	return readChapter(ctx, p, detail, chapter)
}

// readChapter saves the pages of c locally and records it in the history.
func readChapter(ctx context.Context, p provider.Provider, d media.Detail, c media.Chapter) error {
	pages, err := p.Pages(ctx, d.ID, c.ID)
	if err != nil {
		return err
	}
	debugf("%d pages", len(pages))

	if flagJSON {
		return printJSON(os.Stdout, map[string]any{
			"series":  d.Title(),
			"chapter": c,
			"pages":   pages,
		})
	}

	dir, err := saveChapter(ctx, p, d, c, pages)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved %d pages to %s\n", len(pages), dir)

	if cfg.History {
		if err := history.Record(p.Info().Name, d, c); err != nil {
			debugf("saving history failed: %v", err)
		}
	}
	return nil
}

func saveChapter(ctx context.Context, p provider.Provider, d media.Detail, c media.Chapter, pages []string) (string, error) {
	outDir, err := cfg.ExpandDownloadDir()
	if err != nil {
		return "", fmt.Errorf("resolving download dir: %w", err)
	}

	return download.Chapter(ctx, p.Scheduler(), download.Request{
		Site:    p.Info(),
		Series:  d.Title(),
		Chapter: c,
		Pages:   pages,
	}, outDir)
}
