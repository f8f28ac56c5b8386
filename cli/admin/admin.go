package admin

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/zvonler/adminreport/cli/common"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/utils"
)

func NewCommand() *cobra.Command {
	adminCommand := &cobra.Command{
		Use:   "admin",
		Short: "Commands for inspecting the admin roster and inactivity",
		Example: "  # List the admin roster\n" +
			"  " + os.Args[0] + " admin list",
	}

	adminCommand.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Fetches and lists the admin roster",
		Args:  cobra.NoArgs,
		Run:   runListCommand,
	})
	adminCommand.AddCommand(&cobra.Command{
		Use:   "inactives",
		Short: "Fetches inactivity requests overlapping the dashboard period",
		Args:  cobra.NoArgs,
		Run:   runInactivesCommand,
	})

	return adminCommand
}

func runListCommand(cmd *cobra.Command, args []string) {
	env := common.NewEnv()
	defer env.Close()

	roster, err := env.Session.SyncRoster(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	metas := make([]model.AdminMeta, 0, len(roster.MetaByNick))
	for _, m := range roster.MetaByNick {
		metas = append(metas, m)
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].Level != metas[j].Level {
			return metas[i].Level > metas[j].Level
		}
		return model.NickKey(metas[i].Nickname) < model.NickKey(metas[j].Nickname)
	})

	output := []string{"Nickname | Level | VK"}
	for _, m := range metas {
		output = append(output, strings.Join([]string{
			m.Nickname, strconv.Itoa(m.Level), roster.VKByNick[model.NickKey(m.Nickname)],
		}, " | "))
	}
	fmt.Println(columnize.SimpleFormat(output))
}

func runInactivesCommand(cmd *cobra.Command, args []string) {
	env := common.NewEnv()
	defer env.Close()

	record, err := env.Session.LoadInactives(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	output := []string{"ID | Nickname | From | To | Approved | Days credited"}
	for _, row := range record.Entries {
		output = append(output, strings.Join([]string{
			strconv.FormatInt(row.ID, 10), row.Nick, utils.FormatDate(row.Start), utils.FormatDate(row.End),
			strconv.FormatBool(row.Approved), strconv.Itoa(record.DaysFor(row.Nick)),
		}, " | "))
	}
	fmt.Println(columnize.SimpleFormat(output))
}
