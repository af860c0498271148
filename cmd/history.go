package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mangadventure/internal/history"
	"mangadventure/internal/media"
	"mangadventure/internal/ui"
)

var (
	flagHistoryList   bool
	flagHistoryRemove bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Continue reading from history",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().BoolVar(&flagHistoryList, "list", false, "Print the history instead of picking from it")
	historyCmd.Flags().BoolVar(&flagHistoryRemove, "remove", false, "Pick an entry to remove")
}

func historyRun(cmd *cobra.Command, args []string) error {
	entries, err := history.Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	if flagHistoryList || flagJSON {
		return printHistory(entries)
	}

	idx, err := ui.Select("History", history.FormatForDisplay(entries))
	if err != nil {
		return err
	}
	selected := entries[idx]

	if flagHistoryRemove {
		return history.Remove(selected.Site, selected.Series)
	}

	debugf("resuming: %s (site: %s, slug: %s)", selected.Title, selected.Site, selected.Series)

	registry, err := openRegistry()
	if err != nil {
		return err
	}
	defer registry.Close()

	p, err := registry.Get(selected.Site)
	if err != nil {
		return err
	}
	return readSeries(cmd.Context(), p, selected.Series)
}

func printHistory(entries []history.Entry) error {
	if flagJSON {
		return printJSON(os.Stdout, entries)
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Site, e.Title, media.FormatNumber(e.Chapter), e.ReadAt.Local().Format("2006-01-02 15:04")}
	}
	return printTable(os.Stdout, []string{"Site", "Series", "Chapter", "Read"}, rows)
}
