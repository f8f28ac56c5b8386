package report

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/zvonler/adminreport/cli/common"
	"github.com/zvonler/adminreport/configuration"
	"github.com/zvonler/adminreport/session"
)

var (
	adminOpts session.AdminReportOptions
	runsLimit int
)

func NewCommand() *cobra.Command {
	reportCommand := &cobra.Command{
		Use:   "report",
		Short: "Builds paste-ready reports",
		Example: "  # Admin report from a saved dashboard page\n" +
			"  " + os.Args[0] + " report admin --dashboard stats.html --include-missing",
	}

	reportCommand.AddCommand(initAdminCommand())
	reportCommand.AddCommand(initForumCommand())
	reportCommand.AddCommand(initRunsCommand())

	return reportCommand
}

func initAdminCommand() *cobra.Command {
	adminCommand := &cobra.Command{
		Use:   "admin",
		Short: "Prints the weekly admin report",
		Args:  cobra.NoArgs,
		Run:   runAdminCommand,
	}

	adminCommand.Flags().BoolVar(&adminOpts.IncludeMissing, "include-missing", false, "Add roster admins missing from the dashboard table")
	adminCommand.Flags().BoolVar(&adminOpts.SyncRoster, "sync", false, "Refetch the admin roster")
	adminCommand.Flags().BoolVar(&adminOpts.LoadInactives, "inactives", false, "Refetch inactivity requests")
	adminCommand.Flags().BoolVar(&adminOpts.WithNotes, "notes", true, "Fetch notes for admins below the online norm")
	adminCommand.Flags().BoolVar(&adminOpts.WithForum, "forum", false, "Include forum replies per admin")
	return adminCommand
}

func runAdminCommand(cmd *cobra.Command, args []string) {
	env := common.NewEnv()
	defer env.Close()

	text, err := env.Session.AdminReport(context.Background(), adminOpts)
	if err != nil {
		env.Logger.Warnw("admin report incomplete", "error", err)
	}
	if text == "" {
		log.Fatal(err)
	}
	fmt.Println(text)
}

func initForumCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forum",
		Short: "Prints the forum statistics report",
		Args:  cobra.NoArgs,
		Run:   runForumCommand,
	}
}

func runForumCommand(cmd *cobra.Command, args []string) {
	env := common.NewEnv()
	defer env.Close()

	text, err := env.Session.ForumReport(context.Background())
	if err != nil {
		env.Logger.Warnw("forum report incomplete", "error", err)
	}
	fmt.Println(text)
}

func initRunsCommand() *cobra.Command {
	runsCommand := &cobra.Command{
		Use:   "runs",
		Short: "Lists archived forum aggregation runs",
		Args:  cobra.NoArgs,
		Run:   runRunsCommand,
	}
	runsCommand.Flags().IntVar(&runsLimit, "limit", 20, "Number of runs to list")
	return runsCommand
}

func runRunsCommand(cmd *cobra.Command, args []string) {
	common.Settings()
	adb, err := configuration.OpenExistingDatabase()
	if err != nil {
		log.Fatal(err)
	}
	defer adb.Close()

	runs, err := adb.Runs(runsLimit)
	if err != nil {
		log.Fatal(err)
	}

	output := []string{"Run | Period | Started | Status | Error"}
	for _, r := range runs {
		output = append(output, strings.Join([]string{
			r.RunID, r.PeriodKey, r.Started.Format("2006-01-02 15:04:05"), r.Status, r.Error,
		}, " | "))
	}
	fmt.Println(columnize.SimpleFormat(output))
}
