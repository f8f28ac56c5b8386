package thread

import (
	"os"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	threadCommand := &cobra.Command{
		Use:   "thread",
		Short: "Commands for threads kept in the archive database",
		Example: "  # Lists locked threads last answered by Ivan\n" +
			"  " + os.Args[0] + " thread list --author Ivan --locked\n" +
			"  # Opens an archived thread\n" +
			"  " + os.Args[0] + " thread open 42",
	}

	threadCommand.AddCommand(initListCommand())
	threadCommand.AddCommand(initOpenCommand())

	return threadCommand
}
