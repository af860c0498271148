package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mangadventure/internal/media"
)

var (
	flagCursor  string
	flagSort    string
	flagInclude []string
	flagExclude []string
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "List the series directory one page at a time",
	Args:  cobra.NoArgs,
	RunE:  browseRun,
}

var searchCmd = &cobra.Command{
	Use:   "search [title]",
	Short: "Search series by title and category",
	Args:  cobra.ArbitraryArgs,
	RunE:  searchRun,
}

func init() {
	for _, c := range []*cobra.Command{browseCmd, searchCmd} {
		c.Flags().StringVar(&flagCursor, "cursor", "", "Continue from a previous page")
		c.Flags().StringVar(&flagSort, "sort", "", "Sort key: title, -views, -latest_upload")
	}
	searchCmd.Flags().StringSliceVarP(&flagInclude, "include", "i", nil, "Categories the series must have")
	searchCmd.Flags().StringSliceVarP(&flagExclude, "exclude", "e", nil, "Categories the series must not have")
}

// startCursor decodes --cursor, applying --sort when starting fresh.
func startCursor() (media.Cursor, error) {
	cursor, err := media.DecodeCursor(flagCursor)
	if err != nil {
		return media.Cursor{}, fmt.Errorf("invalid --cursor: %w", err)
	}
	if flagCursor == "" {
		cursor.Sort = flagSort
	}
	return cursor, nil
}

func browseRun(cmd *cobra.Command, args []string) error {
	cursor, err := startCursor()
	if err != nil {
		return err
	}

	registry, p, err := openProvider()
	if err != nil {
		return err
	}
	defer registry.Close()

	page, err := p.Directory(cmd.Context(), cursor)
	if err != nil {
		return fmt.Errorf("browsing %s: %w", p.Info().Name, err)
	}
	return printPage(os.Stdout, page)
}

func searchQuery(args []string) media.SearchQuery {
	return media.SearchQuery{
		Title:        strings.Join(args, " "),
		IncludedTags: flagInclude,
		ExcludedTags: flagExclude,
	}
}

func searchRun(cmd *cobra.Command, args []string) error {
	cursor, err := startCursor()
	if err != nil {
		return err
	}

	registry, p, err := openProvider()
	if err != nil {
		return err
	}
	defer registry.Close()

	query := searchQuery(args)
	if len(query.ExcludedTags) > 0 && !p.SupportsTagExclusion() {
		return fmt.Errorf("%s cannot exclude categories", p.Info().Name)
	}
	debugf("searching for %q, categories +%v -%v", query.Title, query.IncludedTags, query.ExcludedTags)

	page, err := p.Search(cmd.Context(), query, cursor)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printPage(os.Stdout, page)
}
