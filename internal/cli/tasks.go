package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/draytht/lvsk-calendar-extended/internal/common"
	"github.com/draytht/lvsk-calendar-extended/internal/models"
)

func (a *App) tasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Manage tasks",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a task; it syncs on the next pass",
				ArgsUsage: "TITLE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "notes", Usage: "free-form notes"},
					&cli.StringFlag{Name: "due", Usage: "due date (YYYY-MM-DD or YYYY-MM-DD HH:MM)"},
					&cli.IntFlag{Name: "priority", Usage: "list ordering weight, higher first"},
				},
				Action: a.runTaskAdd,
			},
			{
				Name:  "list",
				Usage: "List open and completed tasks",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "overdue", Usage: "only tasks past their due date"},
				},
				Action: a.runTaskList,
			},
			{
				Name:      "done",
				Usage:     "Toggle a task between pending and completed",
				ArgsUsage: "ID",
				Action:    a.runTaskDone,
			},
			{
				Name:      "rm",
				Usage:     "Delete a task; the removal syncs on the next pass",
				ArgsUsage: "ID",
				Action:    a.runTaskRemove,
			},
		},
	}
}

func (a *App) runTaskAdd(c *cli.Context) error {
	title := c.Args().First()
	if title == "" {
		return fmt.Errorf("missing TITLE argument")
	}

	var due *time.Time
	if s := c.String("due"); s != "" {
		t, err := parseDue(s)
		if err != nil {
			return err
		}
		due = &t
	}

	tk, err := a.tasks.Create(c.Context, title, c.String("notes"), due, c.Int("priority"))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Added task %q (%s); it syncs on the next pass.\n", tk.Title, tk.ID)
	return nil
}

func (a *App) runTaskList(c *cli.Context) error {
	var (
		list []*models.Task
		err  error
	)
	if c.Bool("overdue") {
		list, err = a.tasks.Overdue(c.Context, time.Now().UTC())
	} else {
		list, err = a.tasks.List(c.Context)
	}
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(c.App.Writer, "No tasks.")
		return nil
	}

	for _, tk := range list {
		box := "[ ]"
		if tk.Completed {
			box = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", dirtyMarker(tk.Dirty), box, tk.Title)
		if tk.Priority > 0 {
			line += fmt.Sprintf(" !%d", tk.Priority)
		}
		if tk.Due != nil {
			line += " due " + formatDue(*tk.Due)
		}
		fmt.Fprintf(c.App.Writer, "%s  (%s)\n", line, tk.ID)
	}
	return nil
}

func (a *App) runTaskDone(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("missing ID argument")
	}

	tk, err := a.tasks.Toggle(c.Context, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("no task with id %s", id)
		}
		return err
	}

	state := "pending"
	if tk.Completed {
		state = "done"
	}
	fmt.Fprintf(c.App.Writer, "Task %q is now %s.\n", tk.Title, state)
	return nil
}

func (a *App) runTaskRemove(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("missing ID argument")
	}

	if err := a.tasks.Delete(c.Context, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("no task with id %s", id)
		}
		return err
	}

	fmt.Fprintf(c.App.Writer, "Deleted task %s; the removal syncs on the next pass.\n", id)
	return nil
}

func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse(dayLayout+" "+timeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad due %q, want YYYY-MM-DD or YYYY-MM-DD HH:MM", s)
	}
	return t, nil
}

func formatDue(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format(dayLayout)
	}
	return t.Format(dayLayout + " " + timeLayout)
}
