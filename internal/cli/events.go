package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/draytht/lvsk-calendar-extended/internal/common"
)

// Dates and times on the command line are read as UTC, matching how
// records are stored and how day windows are cut.
const (
	dayLayout  = "2006-01-02"
	timeLayout = "15:04"
)

func (a *App) eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Manage calendar events",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add an event; it syncs on the next pass",
				ArgsUsage: "TITLE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "event date (YYYY-MM-DD, default today)"},
					&cli.StringFlag{Name: "start", Usage: "start time (HH:MM)"},
					&cli.StringFlag{Name: "end", Usage: "end time (HH:MM, default one hour after start)"},
					&cli.BoolFlag{Name: "all-day", Usage: "all-day event"},
					&cli.StringFlag{Name: "desc", Usage: "description"},
				},
				Action: a.runEventAdd,
			},
			{
				Name:  "list",
				Usage: "List the events of one day",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "day to list (YYYY-MM-DD, default today)"},
				},
				Action: a.runEventList,
			},
			{
				Name:      "rm",
				Usage:     "Delete an event; the removal syncs on the next pass",
				ArgsUsage: "ID",
				Action:    a.runEventRemove,
			},
		},
	}
}

func (a *App) runEventAdd(c *cli.Context) error {
	title := c.Args().First()
	if title == "" {
		return fmt.Errorf("missing TITLE argument")
	}

	day, err := parseDay(c.String("date"))
	if err != nil {
		return err
	}

	allDay := c.Bool("all-day")
	var start, end time.Time
	if allDay {
		start = day
		end = day.Add(24 * time.Hour)
	} else {
		if c.String("start") == "" {
			return fmt.Errorf("either --start or --all-day is required")
		}
		start, err = atTime(day, c.String("start"))
		if err != nil {
			return err
		}
		end = start.Add(time.Hour)
		if s := c.String("end"); s != "" {
			end, err = atTime(day, s)
			if err != nil {
				return err
			}
		}
		if !end.After(start) {
			return fmt.Errorf("end %s is not after start %s", end.Format(timeLayout), start.Format(timeLayout))
		}
	}

	e, err := a.events.Create(c.Context, title, c.String("desc"), start, end, allDay)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Added event %q (%s); it syncs on the next pass.\n", e.Title, e.ID)
	return nil
}

func (a *App) runEventList(c *cli.Context) error {
	day, err := parseDay(c.String("date"))
	if err != nil {
		return err
	}

	list, err := a.events.Day(c.Context, day)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(c.App.Writer, "No events on %s.\n", day.Format(dayLayout))
		return nil
	}

	for _, e := range list {
		when := "all day"
		if !e.AllDay {
			when = e.StartTime.Format(timeLayout) + "-" + e.EndTime.Format(timeLayout)
		}
		fmt.Fprintf(c.App.Writer, "%s %-11s  %s  (%s)\n", dirtyMarker(e.Dirty), when, e.Title, e.ID)
	}
	return nil
}

func (a *App) runEventRemove(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("missing ID argument")
	}

	if err := a.events.Delete(c.Context, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("no event with id %s", id)
		}
		return err
	}

	fmt.Fprintf(c.App.Writer, "Deleted event %s; the removal syncs on the next pass.\n", id)
	return nil
}

// dirtyMarker flags records still waiting to be pushed.
func dirtyMarker(dirty bool) string {
	if dirty {
		return "*"
	}
	return " "
}

// parseDay reads a YYYY-MM-DD date as UTC midnight; empty means today.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	day, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q, want YYYY-MM-DD", s)
	}
	return day, nil
}

// atTime places an HH:MM clock reading on the given day.
func atTime(day time.Time, s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q, want HH:MM", s)
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}
