package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the categories a search can include or exclude",
	Args:  cobra.NoArgs,
	RunE:  tagsRun,
}

func tagsRun(cmd *cobra.Command, args []string) error {
	registry, p, err := openProvider()
	if err != nil {
		return err
	}
	defer registry.Close()

	section, err := p.Tags(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(os.Stdout, section)
	}
	heading(os.Stdout, section.Label)
	for _, t := range section.Tags {
		fmt.Println(t.Label)
	}
	return nil
}
