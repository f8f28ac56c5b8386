package forum

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zvonler/adminreport/cli/common"
	"github.com/zvonler/adminreport/configuration"
)

var archived bool

func initListCommand() *cobra.Command {
	listCommand := &cobra.Command{
		Use:   "list",
		Short: "Lists configured forums, or archived ones with --archived",
		Run:   runListCommand,
	}

	listCommand.Flags().BoolVar(&archived, "archived", false, "List forums in the archive database")
	return listCommand
}

func runListCommand(cmd *cobra.Command, args []string) {
	if archived {
		listArchived()
		return
	}

	cfg, err := configuration.LoadForumConfig(viper.GetString("config"))
	if err != nil {
		log.Println(err)
	}

	output := []string{"Group | ID | Title"}
	for _, g := range cfg.Groups {
		for _, f := range g.Forums {
			output = append(output, strings.Join([]string{g.Key, strconv.Itoa(f.ID), f.Title}, " | "))
		}
	}
	fmt.Println(columnize.SimpleFormat(output))
}

func listArchived() {
	common.Settings()
	adb, err := configuration.OpenExistingDatabase()
	if err != nil {
		log.Fatal(err)
	}
	defer adb.Close()

	forums, err := adb.Forums()
	if err != nil {
		log.Fatal(err)
	}

	output := []string{"ID | URL | Threads | Last scraped"}
	for _, f := range forums {
		last := "-"
		if !f.LastScraped.IsZero() {
			last = f.LastScraped.Format("2006-01-02 15:04")
		}
		output = append(output, fmt.Sprintf("%d | %s | %d | %s", f.ID, f.URL, f.Threads, last))
	}
	fmt.Println(columnize.SimpleFormat(output))
}
