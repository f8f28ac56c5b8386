package forum

import (
	"os"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	forumCommand := &cobra.Command{
		Use:   "forum",
		Short: "Commands for the configured forums",
		Example: "  # List forums\n" +
			"  " + os.Args[0] + " forum list\n" +
			"  # Scrape one forum for a period\n" +
			"  " + os.Args[0] + " forum scrape 12 --from 2024-03-04 --to 2024-03-10",
	}

	forumCommand.AddCommand(initListCommand())
	forumCommand.AddCommand(initOpenCommand())
	forumCommand.AddCommand(initScrapeCommand())

	return forumCommand
}
