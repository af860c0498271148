package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mangadventure/internal/media"
	"mangadventure/internal/provider"
	"mangadventure/internal/ui"
)

var flagAll bool

var downloadCmd = &cobra.Command{
	Use:   "download <slug> [chapter-id...]",
	Short: "Download chapters of a series",
	Long: `Download chapters of a series as numbered image files.
Without chapter IDs a chapter is picked with fzf, or every chapter with --all.`,
	Args: cobra.MinimumNArgs(1),
	RunE: downloadRun,
}

func init() {
	downloadCmd.Flags().BoolVarP(&flagAll, "all", "a", false, "Download every chapter")
}

func downloadRun(cmd *cobra.Command, args []string) error {
	registry, p, err := openProvider()
	if err != nil {
		return err
	}
	defer registry.Close()

	ctx := cmd.Context()
	slug := args[0]

	detail, err := p.SeriesDetail(ctx, slug)
	if err != nil {
		return err
	}
	chapters, err := p.Chapters(ctx, slug)
	if err != nil {
		return err
	}
	if len(chapters) == 0 {
		return fmt.Errorf("no chapters available for %s", detail.Title())
	}

	selected, err := selectChapters(chapters, args[1:])
	if err != nil {
		return err
	}

	for _, c := range selected {
		pages, err := p.Pages(ctx, slug, c.ID)
		if err != nil {
			return err
		}
		dir, err := saveChapter(ctx, p, detail, c, pages)
		if err != nil {
			return fmt.Errorf("downloading %s: %w", provider.FormatChapter(c), err)
		}
		fmt.Fprintf(os.Stderr, "Downloaded: %s\n", dir)
	}
	return nil
}

// selectChapters resolves the requested IDs against the chapter list.
func selectChapters(chapters []media.Chapter, ids []string) ([]media.Chapter, error) {
	if flagAll {
		return chapters, nil
	}
	if len(ids) == 0 {
		c, err := ui.Pick("Chapter", chapters, provider.FormatChapter)
		if err != nil {
			return nil, err
		}
		return []media.Chapter{c}, nil
	}

	byID := make(map[string]media.Chapter, len(chapters))
	for _, c := range chapters {
		byID[c.ID] = c
	}
	selected := make([]media.Chapter, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown chapter %q", id)
		}
		selected = append(selected, c)
	}
	return selected, nil
}
