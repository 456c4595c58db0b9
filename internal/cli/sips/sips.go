package sips

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/tracker"
)

type DrinkCmd struct {
	Ml int `help:"Volume in ml. Defaults to the profile cup size." default:"0"`
}

func (c *DrinkCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	var res tracker.Result
	if c.Ml == 0 {
		res, err = t.Drink()
	} else {
		res, err = t.DrinkMl(c.Ml)
	}
	if err != nil {
		return err
	}

	ctx.Printf("💧 +%dml\n", res.Event.VolumeMl)
	printSnapshot(ctx, res.Snapshot)
	printAward(ctx, res.Award)
	return nil
}

type UndoCmd struct{}

func (c *UndoCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	res, ok := t.Undo()
	if !ok {
		ctx.Println("Nothing to undo.")
		return nil
	}
	ctx.Printf("↩ Removed %dml logged at %s\n", res.Event.VolumeMl,
		res.Event.Timestamp.In(t.Location()).Format("15:04:05"))
	printSnapshot(ctx, res.Snapshot)
	return nil
}

// statusOutput is the --json shape, matching GET /api/today
type statusOutput struct {
	tracker.Snapshot
	Award *tracker.Award `json:"award,omitempty"`
}

type StatusCmd struct {
	JSON bool `help:"Print machine-readable JSON."`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	snap, award := t.Status()
	if c.JSON {
		return printJSON(ctx, statusOutput{Snapshot: snap, Award: award})
	}
	printSnapshot(ctx, snap)
	printAward(ctx, award)
	return nil
}

type GoalCmd struct {
	Ml *int `arg:"" optional:"" help:"New daily goal in ml. Omit to show the current goal."`
}

func (c *GoalCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	if c.Ml == nil {
		ctx.Printf("Daily goal: %dml\n", t.GoalMl())
		return nil
	}

	res, err := t.SetGoal(*c.Ml)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Daily goal set to %dml\n", res.Snapshot.GoalMl)
	printSnapshot(ctx, res.Snapshot)
	printAward(ctx, res.Award)
	return nil
}

type ResetCmd struct {
	Yes bool `help:"Confirm the reset." short:"y"`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		return errors.New("reset deletes every logged sip and the streak; re-run with --yes to confirm")
	}
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}
	if err := t.Reset(); err != nil {
		return err
	}
	ctx.Println("✓ Logged sips and streak cleared. Goal and profile kept.")
	return nil
}

func printSnapshot(ctx *cli.Context, s tracker.Snapshot) {
	ctx.Printf("%s  %s %d/%dml (%d%%)  🔥 %d\n",
		s.Day, bar(s.Ratio, 20), s.TotalMl, s.GoalMl, int(s.Ratio*100+0.5), s.Streak)
	ctx.Println(s.Hint.Message)
}

func printAward(ctx *cli.Context, a *tracker.Award) {
	if a != nil {
		ctx.Println(a.Message())
	}
}

func bar(ratio float64, width int) string {
	filled := int(ratio*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func printJSON(ctx *cli.Context, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}
