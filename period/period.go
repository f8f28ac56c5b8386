// Package period reads the active reporting window from the dashboard page.
package period

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/utils"
)

type source struct {
	from, to string
	attrFrom string
	attrTo   string
	input    bool
}

// Candidate locations, tried in order; the first pair yielding two non-empty
// strings wins. Info labels come before the filter inputs.
var sources = []source{
	{from: "#period-start", to: "#period-end"},
	{from: ".period-info .period-from", to: ".period-info .period-to"},
	{from: "[data-period-start]", to: "[data-period-end]", attrFrom: "data-period-start", attrTo: "data-period-end"},
	{from: `input[name="date_from"]`, to: `input[name="date_to"]`, input: true},
	{from: `input[name="start_date"]`, to: `input[name="end_date"]`, input: true},
	{from: `input[name="from"]`, to: `input[name="to"]`, input: true},
}

// ExtractPeriodRange returns the raw from/to strings found on the page.
func ExtractPeriodRange(doc *goquery.Document) (from, to string, ok bool) {
	for _, s := range sources {
		from = read(doc, s.from, s.attrFrom, s.input)
		to = read(doc, s.to, s.attrTo, s.input)
		if from != "" && to != "" {
			return from, to, true
		}
	}
	return "", "", false
}

func read(doc *goquery.Document, selector, attr string, input bool) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	switch {
	case attr != "":
		v, _ := sel.Attr(attr)
		return strings.TrimSpace(v)
	case input:
		v, _ := sel.Attr("value")
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(sel.Text())
}

// Summary parses both endpoints into a Period, swapping them if reversed.
func Summary(from, to string) (model.Period, error) {
	start, ok := utils.ParseDateFromAny(from)
	if !ok {
		return model.Period{}, fmt.Errorf("%w: unparseable start %q", model.ErrPeriodNotFound, from)
	}
	end, ok := utils.ParseDateFromAny(to)
	if !ok {
		return model.Period{}, fmt.Errorf("%w: unparseable end %q", model.ErrPeriodNotFound, to)
	}
	return model.NewPeriod(start, end), nil
}

func Resolve(doc *goquery.Document) (model.Period, error) {
	from, to, ok := ExtractPeriodRange(doc)
	if !ok {
		return model.Period{}, model.ErrPeriodNotFound
	}
	return Summary(from, to)
}
