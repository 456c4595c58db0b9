package profile

import (
	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/models"
)

type ProfileCmd struct {
	Show ShowCmd `cmd:"" help:"Show the profile." default:"1"`
	Set  SetCmd  `cmd:"" help:"Update the profile."`
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}
	p := t.Profile()
	ctx.Printf("Cup size: %s\n", p.CupMl)
	if p.Gender != "" {
		ctx.Printf("Gender:   %s\n", p.Gender)
	}
	if p.Age > 0 {
		ctx.Printf("Age:      %d\n", p.Age)
	}
	ctx.Printf("Outfit:   %s\n", p.OutfitSummary())
	return nil
}

type SetCmd struct {
	Cup    string            `help:"Cup size: 50, 100 or 200 (ml)."`
	Gender *string           `help:"Gender (display only)."`
	Age    *int              `help:"Age (display only)."`
	Outfit map[string]string `help:"Outfit items as slot=item; an empty item clears the slot." mapsep:","`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	p := t.Profile()
	if c.Cup != "" {
		cup, err := models.ParseCupSize(c.Cup)
		if err != nil {
			return err
		}
		p.CupMl = cup
	}
	if c.Gender != nil {
		p.Gender = *c.Gender
	}
	if c.Age != nil {
		p.Age = *c.Age
	}
	for slot, item := range c.Outfit {
		if item == "" {
			delete(p.Outfit, slot)
			continue
		}
		p.Outfit[slot] = item
	}

	if err := t.SetProfile(p); err != nil {
		return err
	}
	ctx.Println("✓ Profile updated")
	return (&ShowCmd{}).Run(ctx)
}
