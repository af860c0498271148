package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"mangadventure/internal/media"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show the site's home sections",
	Args:  cobra.NoArgs,
	RunE:  homeRun,
}

func homeRun(cmd *cobra.Command, args []string) error {
	registry, p, err := openProvider()
	if err != nil {
		return err
	}
	defer registry.Close()

	var (
		order  []string
		byID   = map[string]media.HomeSection{}
		loaded int
	)
	err = p.HomeSections(cmd.Context(), func(s media.HomeSection) {
		if _, seen := byID[s.ID]; !seen {
			order = append(order, s.ID)
		}
		byID[s.ID] = s
		if s.Items == nil {
			return
		}
		loaded++
		// Sections print as they arrive; JSON waits for all of them.
		if !flagJSON {
			heading(os.Stdout, s.Title)
			if err := printTiles(os.Stdout, s.Items); err != nil {
				log.Printf("printing %s: %v", s.Title, err)
			}
			muted(os.Stdout, "More: mangadventure browse --sort %s", s.ID)
			fmt.Println()
		}
	})
	if err != nil {
		if loaded == 0 {
			return fmt.Errorf("loading home sections: %w", err)
		}
		log.Printf("some sections failed: %v", err)
	}

	if flagJSON {
		sections := make([]media.HomeSection, len(order))
		for i, id := range order {
			sections[i] = byID[id]
		}
		return printJSON(os.Stdout, sections)
	}
	return nil
}
