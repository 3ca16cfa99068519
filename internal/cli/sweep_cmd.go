package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/Kamilla170/bloom/internal/service"
	"github.com/spf13/cobra"
)

// newSweepCmd exposes the daily batch sweeps. They are designed to be
// cron-driven: each run is idempotent within a calendar day.
func newSweepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the daily reminder sweeps",
	}

	runSweep := func(name string, fn func(context.Context, time.Time) (service.SweepStats, error)) error {
		stats, err := fn(context.Background(), time.Now())
		if err != nil {
			return fmt.Errorf("%s sweep: %w", name, err)
		}
		fmt.Printf("%s: selected=%d sent=%d failed=%d\n",
			name, stats.Selected, stats.Sent, stats.Failed)
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "watering",
			Short: "Send due watering reminders",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSweep("watering", app.Reminders.SweepWatering)
			},
		},
		&cobra.Command{
			Use:   "tasks",
			Short: "Send due growing-plan task reminders",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSweep("tasks", app.Reminders.SweepTasks)
			},
		},
		&cobra.Command{
			Use:   "nudge",
			Short: "Send monthly photo check-up nudges",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSweep("nudge", app.Reminders.SweepMonthlyNudge)
			},
		},
		&cobra.Command{
			Use:   "all",
			Short: "Run every sweep in order",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := runSweep("watering", app.Reminders.SweepWatering); err != nil {
					return err
				}
				if err := runSweep("tasks", app.Reminders.SweepTasks); err != nil {
					return err
				}
				return runSweep("nudge", app.Reminders.SweepMonthlyNudge)
			},
		},
	)
	return cmd
}
