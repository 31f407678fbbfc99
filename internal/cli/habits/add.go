package habits

import (
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/validation"
)

type AddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name. Prompted for when omitted."`
	Description string `short:"d" help:"Short description."`
	Frequency   string `short:"f" help:"Frequency (daily|weekly|monthly|custom)." default:"daily"`
	Days        string `short:"w" help:"Comma-separated weekdays for custom habits (e.g. mon,wed,fri or 1,3,5)."`
	Quantity    string `short:"q" help:"Target amount per day." default:"1"`
	Measure     string `short:"m" help:"Unit of the target amount."`
	Category    string `short:"c" help:"Category."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	uid, err := ctx.UID()
	if err != nil {
		return err
	}

	days, err := cli.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}
	form := validation.HabitForm{
		Name:        c.Name,
		Description: c.Description,
		Frequency:   models.HabitFrequency(c.Frequency),
		CustomDays:  days,
		Quantity:    c.Quantity,
		Measure:     c.Measure,
		Category:    c.Category,
	}
	if form.Name == "" {
		if err := promptHabit(&form); err != nil {
			return err
		}
	}

	habit, err := validation.ValidateHabitForm(uid, form)
	if err != nil {
		return err
	}

	client, err := ctx.Client()
	if err != nil {
		return err
	}
	created, err := client.CreateHabit(ctx.Context(), habit)
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (ID: %s)\n", created.Name, created.ID)
	return nil
}

func promptHabit(f *validation.HabitForm) error {
	frequency := string(f.Frequency)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.Name),
			huh.NewInput().Title("Description").Value(&f.Description),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", string(models.FrequencyDaily)),
					huh.NewOption("Weekly", string(models.FrequencyWeekly)),
					huh.NewOption("Monthly", string(models.FrequencyMonthly)),
					huh.NewOption("Custom days", string(models.FrequencyCustom)),
				).
				Value(&frequency),
		),
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Days").
				Options(weekdayOptions()...).
				Value(&f.CustomDays),
		).WithHideFunc(func() bool { return frequency != string(models.FrequencyCustom) }),
		huh.NewGroup(
			huh.NewInput().Title("Quantity").Value(&f.Quantity),
			huh.NewInput().Title("Measure").Placeholder("vez").Value(&f.Measure),
			huh.NewInput().Title("Category").Value(&f.Category),
		),
	).WithTheme(huh.ThemeBase())

	if err := form.Run(); err != nil {
		return err
	}
	f.Frequency = models.HabitFrequency(frequency)
	return nil
}

func weekdayOptions() []huh.Option[int] {
	names := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	opts := make([]huh.Option[int], len(names))
	for i, n := range names {
		opts[i] = huh.NewOption(n, i)
	}
	return opts
}
