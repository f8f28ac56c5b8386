package forum

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/zvonler/adminreport/aggregate"
	"github.com/zvonler/adminreport/cli/common"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/utils"
	"github.com/zvonler/adminreport/xf_scraper"
)

var (
	fromDate     string
	toDate       string
	lookbackDays int
)

func initScrapeCommand() *cobra.Command {
	scrapeCommand := &cobra.Command{
		Use:   "scrape <forum_id>",
		Short: "Scrapes one forum for a period and prints its statistics",
		Args:  cobra.ExactArgs(1),
		Run:   runScrapeCommand,
	}

	scrapeCommand.Flags().StringVar(&fromDate, "from", "", "First day of the period (YYYY-MM-DD or DD.MM.YYYY)")
	scrapeCommand.Flags().StringVar(&toDate, "to", "", "Last day of the period")
	scrapeCommand.Flags().IntVar(&lookbackDays, "lookback-days", 7, "Period length ending today when --from is not given")
	return scrapeCommand
}

func scrapePeriod() model.Period {
	if fromDate == "" {
		now := time.Now()
		return model.NewPeriod(now.AddDate(0, 0, -(lookbackDays - 1)), now)
	}
	from, ok := utils.ParseDateFromAny(fromDate)
	if !ok {
		log.Fatalf("Bad --from date %q", fromDate)
	}
	to := from
	if toDate != "" {
		if to, ok = utils.ParseDateFromAny(toDate); !ok {
			log.Fatalf("Bad --to date %q", toDate)
		}
	}
	return model.NewPeriod(from, to)
}

func runScrapeCommand(cmd *cobra.Command, args []string) {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		log.Fatalf("Bad forum id %q: %v", args[0], err)
	}

	env := common.NewEnv()
	defer env.Close()

	period := scrapePeriod()
	fs := xf_scraper.NewForumScraper(env.Fetcher, env.Settings.ForumBaseURL, env.Logger).WithMetrics(env.Metrics)
	if env.Archive != nil {
		fs.WithArchive(env.Archive)
	}

	scan, err := fs.Scrape(context.Background(), id, period)
	if err != nil {
		log.Fatal(err)
	}

	fa := aggregate.NewForumAccumulator(id, period)
	fa.SetPages(scan.Pages)
	for _, t := range scan.Threads {
		fa.Add(t)
	}
	stats := fa.Finalize()

	output := []string{"Last post | Created | Last author | Prefix | Locked | Title"}
	for _, t := range scan.Threads {
		if !period.Contains(t.LastPostAt) {
			continue
		}
		output = append(output, fmt.Sprintf("%s | %s | %s | %s | %t | %s",
			formatTime(t.LastPostAt), formatTime(t.CreatedAt), t.LastAuthor, t.Prefix, t.Locked, t.Title))
	}
	fmt.Println(columnize.SimpleFormat(output))
	fmt.Println()

	fmt.Printf("Period %s - %s, %d pages, %d threads active\n",
		utils.FormatDate(period.Start), utils.FormatDate(period.End), stats.Pages, stats.Threads)
	fmt.Printf("On review %d, pinned %d, closed %d, open %d, average close time %s\n",
		stats.OnReview, stats.Pinned, stats.Closed, stats.Open, utils.FormatHmsTotal(stats.AvgCloseSeconds))
	for _, line := range aggregate.RankClosers(stats, 10) {
		fmt.Println(line)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
