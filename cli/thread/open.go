package thread

import (
	"log"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/zvonler/adminreport/cli/common"
	"github.com/zvonler/adminreport/configuration"
)

func initOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <thread_id | thread_URL>",
		Short: "Opens an archived thread in a browser.",
		Args:  cobra.ExactArgs(1),
		Run:   runOpenCommand,
	}
}

func runOpenCommand(cmd *cobra.Command, args []string) {
	common.Settings()
	adb, err := configuration.OpenExistingDatabase()
	if err != nil {
		log.Fatal(err)
	}
	defer adb.Close()

	t, err := adb.FindThread(args[0])
	if err != nil {
		log.Fatal(err)
	}
	if err := browser.OpenURL(t.URL); err != nil {
		log.Fatal(err)
	}
}
