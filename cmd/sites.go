package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"mangadventure/internal/site"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the configured sites",
	Args:  cobra.NoArgs,
	RunE:  sitesRun,
}

func sitesRun(cmd *cobra.Command, args []string) error {
	sites := cfg.Sites()
	if flagJSON {
		return printJSON(os.Stdout, sites)
	}

	rows := make([][]string, len(sites))
	for i, s := range sites {
		marker := ""
		if s.Key() == site.Key(cfg.Site) {
			marker = "*"
		}
		rows[i] = []string{marker, s.Name, s.Key(), s.BaseURL, s.Version, string(s.Rating)}
	}
	return printTable(os.Stdout, []string{"", "Name", "Key", "URL", "Version", "Rating"}, rows)
}
