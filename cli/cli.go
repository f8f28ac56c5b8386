package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zvonler/adminreport/cli/admin"
	"github.com/zvonler/adminreport/cli/config"
	"github.com/zvonler/adminreport/cli/forum"
	"github.com/zvonler/adminreport/cli/parse"
	"github.com/zvonler/adminreport/cli/report"
	"github.com/zvonler/adminreport/cli/serve"
	"github.com/zvonler/adminreport/cli/thread"
)

var (
	dbPath     string
	configPath string
	logLevel   string
	dashboard  string
)

func NewCommand() *cobra.Command {
	reportCli := &cobra.Command{
		Use:     "adminreport",
		Short:   "Admin report CLI",
		Long:    "Builds the weekly admin and forum statistics reports",
		Example: fmt.Sprintf("  %s <command> [flags...]", os.Args[0]),
	}

	reportCli.PersistentFlags().StringVar(&dbPath, "database", "", "Archive database filename (archiving is off when empty)")
	reportCli.PersistentFlags().StringVar(&configPath, "config", "", "Forum configuration file (default adminreport.yaml)")
	reportCli.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	reportCli.PersistentFlags().StringVar(&dashboard, "dashboard", "", "Dashboard page URL or saved HTML file")
	viper.BindPFlag("database", reportCli.PersistentFlags().Lookup("database"))
	viper.BindPFlag("config", reportCli.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log-level", reportCli.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("dashboard", reportCli.PersistentFlags().Lookup("dashboard"))

	reportCli.AddCommand(admin.NewCommand())
	reportCli.AddCommand(config.NewCommand())
	reportCli.AddCommand(forum.NewCommand())
	reportCli.AddCommand(parse.NewCommand())
	reportCli.AddCommand(report.NewCommand())
	reportCli.AddCommand(serve.NewCommand())
	reportCli.AddCommand(thread.NewCommand())

	return reportCli
}
