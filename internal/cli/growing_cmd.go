package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGrowingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "growing",
		Short: "Manage grow-from-seed plans",
	}
	cmd.AddCommand(
		newGrowingCreateCmd(app),
		newGrowingListCmd(app),
		newGrowingShowCmd(app),
		newGrowingAdvanceCmd(app),
		newGrowingCompleteCmd(app),
		newGrowingDeleteCmd(app),
	)
	return cmd
}

func newGrowingCreateCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "create <plant-name>",
		Short: "Draft a growing plan and start its task chain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.Growing.CreatePlan(context.Background(), owner, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("Plan %s created with %d stages.\n", plan.ID, len(plan.Stages))
			if plan.PlanText != "" {
				fmt.Println()
				fmt.Println(plan.PlanText)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newGrowingListCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List growing plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Growing.ListPlans(context.Background(), owner)
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Println("No growing plans yet.")
				return nil
			}
			for _, g := range plans {
				fmt.Printf("%s  %-16s %s stage %d/%d since %s\n",
					g.ID, g.PlantName, g.Status, g.CurrentStage+1, len(g.Stages),
					g.StartedAt.Format("2006-01-02"))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newGrowingShowCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a plan's stages and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.Growing.GetPlan(context.Background(), owner, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s), started %s\n", g.PlantName, g.Status, g.StartedAt.Format("2006-01-02"))
			for i, stage := range g.Stages {
				marker := " "
				if i == g.CurrentStage && g.Status == "active" {
					marker = ">"
				}
				fmt.Printf("%s stage %d: %s (%d days)\n", marker, i+1, stage.Name, stage.DurationDays)
				for _, task := range stage.Tasks {
					fmt.Printf("    day %2d: %s\n", task.DayOffset, task.Title)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newGrowingAdvanceCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "advance <plan-id>",
		Short: "Move the plan to its next stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.Growing.AdvanceStage(context.Background(), owner, args[0])
			if err != nil {
				return err
			}
			if g.Status == "completed" {
				fmt.Println("Plan completed.")
				return nil
			}
			fmt.Printf("Now at stage %d/%d: %s\n",
				g.CurrentStage+1, len(g.Stages), g.Stages[g.CurrentStage].Name)
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newGrowingCompleteCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "complete <plan-id>",
		Short: "Mark a plan completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Growing.CompletePlan(context.Background(), owner, args[0])
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newGrowingDeleteCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "delete <plan-id>",
		Short: "Delete a plan and its reminders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Growing.DeletePlan(context.Background(), owner, args[0])
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
