package thread

import (
	"fmt"
	"log"
	"time"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/zvonler/adminreport/cli/common"
	"github.com/zvonler/adminreport/configuration"
	"github.com/zvonler/adminreport/database"
)

var (
	filter    database.ThreadFilter
	sinceDays int
)

func initListCommand() *cobra.Command {
	listCommand := &cobra.Command{
		Use:   "list",
		Short: "Lists threads in the archive database",
		Run:   runListCommand,
	}

	listCommand.Flags().StringVar(&filter.ForumURL, "forum", "", "Only threads of this forum URL")
	listCommand.Flags().StringVar(&filter.TitleRegex, "title", "", "Only threads whose title matches this regular expression")
	listCommand.Flags().StringVar(&filter.LastAuthor, "author", "", "Only threads last answered by this nickname")
	listCommand.Flags().BoolVar(&filter.LockedOnly, "locked", false, "Only locked threads")
	listCommand.Flags().IntVar(&sinceDays, "since-days", 0, "Only threads with a post in the last N days")
	return listCommand
}

func runListCommand(cmd *cobra.Command, args []string) {
	common.Settings()
	adb, err := configuration.OpenExistingDatabase()
	if err != nil {
		log.Fatal(err)
	}
	defer adb.Close()

	if sinceDays > 0 {
		filter.ActiveSince = time.Now().AddDate(0, 0, -sinceDays)
	}

	threads, err := adb.ListThreads(filter)
	if err != nil {
		log.Fatal(err)
	}

	output := []string{"ID | Last post | Last author | Prefix | Locked | Title"}
	for _, t := range threads {
		last := "-"
		if !t.LastPostAt.IsZero() {
			last = t.LastPostAt.Format("2006-01-02 15:04")
		}
		output = append(output, fmt.Sprintf("%d | %s | %s | %s | %t | %s", t.ID, last, t.LastAuthor, t.Prefix, t.Locked, t.Title))
	}
	fmt.Println(columnize.SimpleFormat(output))
}
