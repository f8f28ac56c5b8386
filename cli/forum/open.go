package forum

import (
	"log"
	"strconv"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/zvonler/adminreport/cli/common"
	"github.com/zvonler/adminreport/xf_scraper"
)

func initOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <forum_id>",
		Short: "Opens a forum listing in a browser",
		Args:  cobra.ExactArgs(1),
		Run:   runOpenCommand,
	}
}

func runOpenCommand(cmd *cobra.Command, args []string) {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		log.Fatalf("Bad forum id %q: %v", args[0], err)
	}
	s := common.Settings()
	fs := xf_scraper.NewForumScraper(nil, s.ForumBaseURL, nil)
	if err := browser.OpenURL(fs.ForumURL(id)); err != nil {
		log.Fatal(err)
	}
}
