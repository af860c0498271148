package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var seriesCmd = &cobra.Command{
	Use:   "series <slug>",
	Short: "Show the details of a series",
	Args:  cobra.ExactArgs(1),
	RunE:  seriesRun,
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters <slug>",
	Short: "List the chapters of a series",
	Args:  cobra.ExactArgs(1),
	RunE:  chaptersRun,
}

var pagesCmd = &cobra.Command{
	Use:   "pages <slug> <chapter-id>",
	Short: "Print the page image URLs of a chapter",
	Long: `Print the page image URLs of a chapter in reading order.
The site counts the request as a read of the chapter.`,
	Args: cobra.ExactArgs(2),
	RunE: pagesRun,
}

func seriesRun(cmd *cobra.Command, args []string) error {
	registry, p, err := openProvider()
	if err != nil {
		return err
	}
	defer registry.Close()

	detail, err := p.SeriesDetail(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(os.Stdout, detail)
	}
	printDetail(os.Stdout, detail)
	return nil
}

func chaptersRun(cmd *cobra.Command, args []string) error {
	registry, p, err := openProvider()
	if err != nil {
		return err
	}
	defer registry.Close()

	chapters, err := p.Chapters(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(os.Stdout, chapters)
	}
	if len(chapters) == 0 {
		fmt.Println("No chapters available.")
		return nil
	}
	return printChapters(os.Stdout, chapters)
}

func pagesRun(cmd *cobra.Command, args []string) error {
	registry, p, err := openProvider()
	if err != nil {
		return err
	}
	defer registry.Close()

	pages, err := p.Pages(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(os.Stdout, pages)
	}
	for _, u := range pages {
		fmt.Println(u)
	}
	return nil
}
