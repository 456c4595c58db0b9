package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/models"
)

func positiveInt(min int, what string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a whole number", what)
		}
		if n < min {
			return fmt.Errorf("%s must be at least %d", what, min)
		}
		return nil
	}
}

// NewGoalForm creates the daily goal form
func NewGoalForm(fm *GoalFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Daily goal (ml)").
				Value(&fm.GoalMl).
				Validate(positiveInt(1, "goal")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewReminderForm creates the reminder interval form
func NewReminderForm(fm *ReminderFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Remind me every (minutes)").
				Value(&fm.Minutes).
				Validate(positiveInt(constants.MinReminderMinutes, "interval")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewProfileForm creates the profile form
func NewProfileForm(fm *ProfileFormModel) *huh.Form {
	cups := make([]huh.Option[models.CupSize], 0, len(models.CupSizes))
	for _, c := range models.CupSizes {
		cups = append(cups, huh.NewOption(c.String(), c))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.CupSize]().
				Title("Cup size").
				Options(cups...).
				Value(&fm.CupMl),
			huh.NewSelect[string]().
				Title("Gender").
				Options(
					huh.NewOption("Prefer not to say", ""),
					huh.NewOption("Female", "female"),
					huh.NewOption("Male", "male"),
					huh.NewOption("Other", "other"),
				).
				Value(&fm.Gender),
			huh.NewInput().
				Title("Age").
				Description("Leave empty to skip").
				Value(&fm.Age).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return positiveInt(1, "age")(s)
				}),
		),
		huh.NewGroup(
			huh.NewInput().Title("Hat").Value(&fm.Hat),
			huh.NewInput().Title("Top").Value(&fm.Top),
			huh.NewInput().Title("Accessory").Value(&fm.Accessory),
		).Title("Outfit"),
	).WithTheme(huh.ThemeDracula())
}

// Profile converts the form into a profile, dropping empty outfit slots
func (fm *ProfileFormModel) Profile() (models.Profile, error) {
	p := models.Profile{
		CupMl:  fm.CupMl,
		Gender: fm.Gender,
		Outfit: map[string]string{},
	}
	if s := strings.TrimSpace(fm.Age); s != "" {
		age, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("invalid age %q", s)
		}
		p.Age = age
	}
	for slot, item := range map[string]string{
		models.OutfitHat:       fm.Hat,
		models.OutfitTop:       fm.Top,
		models.OutfitAccessory: fm.Accessory,
	} {
		if item = strings.TrimSpace(item); item != "" {
			p.Outfit[slot] = item
		}
	}
	return p, p.Validate()
}
