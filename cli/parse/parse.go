package parse

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bit101/go-ansi"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zvonler/adminreport/dashboard"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/period"
	"github.com/zvonler/adminreport/utils"
	"github.com/zvonler/adminreport/xf_scraper"
)

var baseURL string

func NewCommand() *cobra.Command {
	parseCommand := &cobra.Command{
		Use:   "parse <file.html>",
		Short: "Parse a saved forum listing or dashboard page and describe its contents",
		Args:  cobra.ExactArgs(1),
		Example: "" +
			"  " + os.Args[0] + " parse forum-12.html\n" +
			"  " + os.Args[0] + " parse dashboard.html",
		Run: runParseCommand,
	}

	parseCommand.Flags().StringVar(&baseURL, "base-url", "https://forum.example/forums/0/", "URL relative links in a listing resolve against")
	return parseCommand
}

func paginateThreads(threads []model.Thread) {
	cmd := exec.Command("/usr/bin/less", "-FRX")
	cmd.Stdout = os.Stdout

	if stdin, err := cmd.StdinPipe(); err == nil {
		go func() {
			defer stdin.Close()

			for _, t := range threads {
				ansi.Fprintf(stdin, ansi.Green, "%s\n", t.Title)
				ansi.Fprintf(stdin, ansi.Red, "%s ", t.Starter)
				ansi.Fprintf(stdin, ansi.Green, "%s ", formatTime(t.CreatedAt))
				ansi.Fprintf(stdin, ansi.Yellow, "%s %s ", t.LastAuthor, formatTime(t.LastPostAt))
				ansi.Fprintf(stdin, ansi.Purple, "[%s] locked=%t sticky=%t\n", t.Prefix, t.Locked, t.Sticky)
				ansi.Fprintf(stdin, ansi.Cyan, "%s\n", t.URL)
				ansi.Fprintln(stdin, ansi.Blue, "--------")
			}
		}()
	} else {
		log.Fatal(err)
	}

	err := cmd.Run()
	if err != nil {
		log.Fatal(err)
	}
}

func printThreads(threads []model.Thread) {
	for _, t := range threads {
		fmt.Printf("%s\n%s (%s) %s\n", t.URL, t.Title, t.Prefix, formatTime(t.LastPostAt))
		fmt.Println("--------")
	}
}

func printDashboard(doc *goquery.Document) {
	if p, err := period.Resolve(doc); err == nil {
		fmt.Printf("Period: %s - %s (%d days)\n", utils.FormatDate(p.Start), utils.FormatDate(p.End), p.Days)
	} else {
		fmt.Println(err)
	}

	entries, err := dashboard.ParseAdminTable(doc)
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range entries {
		fmt.Printf("%-24s level %d  reports %5d  online %s\n", e.Nickname, e.Level, e.Reports, utils.FormatHmsTotal(e.Online()))
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func runParseCommand(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		log.Fatal(err)
	}

	pageURL, err := url.Parse(baseURL)
	if err != nil {
		log.Fatalf("Bad URL: %v", err)
	}

	page := xf_scraper.ParseListing(doc, pageURL)
	switch {
	case page.LoginWall:
		log.Fatal(model.ErrNotAuthorized)
	case len(page.Threads) > 0:
		if term.IsTerminal(int(os.Stdout.Fd())) {
			paginateThreads(page.Threads)
		} else {
			printThreads(page.Threads)
		}
		if page.NextURL != "" {
			fmt.Println("Next page:", page.NextURL)
		}
	default:
		printDashboard(doc)
	}
}
