package sips

import (
	"fmt"
	"strings"

	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/intake"
)

type HistoryCmd struct {
	JSON bool `help:"Print machine-readable JSON."`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	days := t.History()
	if c.JSON {
		if days == nil {
			days = []intake.DayHistory{}
		}
		return printJSON(ctx, days)
	}
	if len(days) == 0 {
		ctx.Println("No sips logged yet.")
		return nil
	}
	for _, d := range days {
		ctx.Printf("%s  %dml\n", d.Day, d.TotalMl)
		chips := make([]string, len(d.Entries))
		for i, e := range d.Entries {
			chips[i] = fmt.Sprintf("%s +%d", e.Clock, e.VolumeMl)
		}
		ctx.Printf("  %s\n", strings.Join(chips, "  "))
	}
	return nil
}

type ChartCmd struct {
	Day   string `help:"Day to chart (YYYY-MM-DD or 'today')." default:"today"`
	Width int    `help:"Bar width in characters." default:"40"`
}

func (c *ChartCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	day := c.Day
	if day == "" || day == "today" {
		day = t.Today()
	}
	hours, err := t.Hourly(day)
	if err != nil {
		return err
	}

	width := c.Width
	if width < 1 {
		width = 40
	}
	max := intake.ChartMax(hours, int(t.Profile().CupMl))
	total := 0
	ctx.Printf("%s  (scale %dml)\n", day, max)
	for h, ml := range hours {
		total += ml
		n := ml * width / max
		if ml > 0 && n == 0 {
			n = 1
		}
		ctx.Printf("%02d │%s %s\n", h, strings.Repeat("█", n), label(ml))
	}
	ctx.Printf("total %dml\n", total)
	return nil
}

func label(ml int) string {
	if ml == 0 {
		return ""
	}
	return fmt.Sprintf("%dml", ml)
}
