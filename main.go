package main

import (
	"log"

	"github.com/zvonler/adminreport/cli"
)

func main() {
	reportCmd := cli.NewCommand()
	if err := reportCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
