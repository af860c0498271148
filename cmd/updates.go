package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mangadventure/internal/history"
)

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "List series in the history updated since they were last read",
	Args:  cobra.NoArgs,
	RunE:  updatesRun,
}

type update struct {
	Site   string    `json:"site"`
	Series string    `json:"series"`
	Title  string    `json:"title"`
	ReadAt time.Time `json:"read_at"`
}

func updatesRun(cmd *cobra.Command, args []string) error {
	entries, err := history.Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	registry, err := openRegistry()
	if err != nil {
		return err
	}
	defer registry.Close()

	bySite := map[string][]history.Entry{}
	for _, e := range entries {
		bySite[e.Site] = append(bySite[e.Site], e)
	}

	var updates []update
	for siteName, list := range bySite {
		p, err := registry.Get(siteName)
		if err != nil {
			log.Printf("skipping %s: %v", siteName, err)
			continue
		}

		// One walk from the oldest read covers every entry.
		since := list[0].ReadAt
		for _, e := range list {
			if e.ReadAt.Before(since) {
				since = e.ReadAt
			}
		}

		uploads, err := p.LastUpdated(cmd.Context(), since)
		if err != nil {
			return fmt.Errorf("checking %s: %w", siteName, err)
		}
		found := updatedEntries(list, uploads)
		debugf("%s: %d of %d series updated since last read", siteName, len(found), len(list))
		updates = append(updates, found...)
	}

	if flagJSON {
		if updates == nil {
			updates = []update{}
		}
		return printJSON(os.Stdout, updates)
	}
	if len(updates) == 0 {
		fmt.Println("No updates.")
		return nil
	}
	rows := make([][]string, len(updates))
	for i, u := range updates {
		rows[i] = []string{u.Site, u.Series, u.Title, u.ReadAt.Local().Format("2006-01-02")}
	}
	return printTable(os.Stdout, []string{"Site", "Slug", "Series", "Last read"}, rows)
}

// updatedEntries keeps the entries whose series had an upload after the
// entry was read.
func updatedEntries(entries []history.Entry, uploads map[string]time.Time) []update {
	var out []update
	for _, e := range entries {
		at, ok := uploads[e.Series]
		if !ok || !at.After(e.ReadAt) {
			continue
		}
		out = append(out, update{Site: e.Site, Series: e.Series, Title: e.Title, ReadAt: e.ReadAt})
	}
	return out
}
