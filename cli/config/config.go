package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/zvonler/adminreport/configuration"
)

func NewCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   "config",
		Short: "Commands for the forum configuration",
		Example: "  # Print the effective configuration\n" +
			"  " + os.Args[0] + " config show --config adminreport.yaml",
	}

	configCommand.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Prints the effective forum configuration as YAML",
		Args:  cobra.NoArgs,
		Run:   runShowCommand,
	})

	return configCommand
}

func runShowCommand(cmd *cobra.Command, args []string) {
	cfg, err := configuration.LoadForumConfig(viper.GetString("config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; showing defaults\n", err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(string(out))
	fmt.Print(configuration.ForumsHint(cfg))
}
