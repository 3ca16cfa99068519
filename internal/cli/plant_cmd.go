package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Kamilla170/bloom/internal/service"
	"github.com/spf13/cobra"
)

func newPlantCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plant",
		Short: "Manage plants and photo diagnoses",
	}
	cmd.AddCommand(
		newPlantAnalyzeCmd(app),
		newPlantSaveCmd(app),
		newPlantListCmd(app),
		newPlantShowCmd(app),
		newPlantHistoryCmd(app),
		newPlantRenameCmd(app),
		newPlantDeleteCmd(app),
		newPlantWateredCmd(app),
		newPlantWaterAllCmd(app),
		newPlantSnoozeCmd(app),
		newPlantRemindersCmd(app),
	)
	return cmd
}

func newPlantAnalyzeCmd(app *App) *cobra.Command {
	var owner int64
	var plantID, question string

	cmd := &cobra.Command{
		Use:   "analyze <photo.jpg>",
		Short: "Run a photo diagnosis and hold the result for saving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading photo: %w", err)
			}
			res, err := app.Plants.AnalyzePhoto(context.Background(), service.AnalyzePhotoRequest{
				OwnerID:  owner,
				PlantID:  plantID,
				Image:    image,
				PhotoRef: args[0],
				Question: question,
			})
			if err != nil {
				return err
			}

			fmt.Println(res.DiagnosisText)
			fmt.Println()
			if res.SpeciesName != "" {
				fmt.Printf("Species:    %s\n", res.SpeciesName)
			}
			fmt.Printf("Confidence: %d%%\n", res.Confidence)
			fmt.Printf("State:      %s\n", res.Extraction.State)
			fmt.Printf("Watering:   every %d days\n", res.Extraction.EffectiveWateringIntervalDays)
			if res.NeedsRetry {
				fmt.Println("Note: low confidence, a clearer photo would help.")
			}
			fmt.Println("Run 'bloom plant save' to keep this result.")
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	cmd.Flags().StringVar(&plantID, "plant", "", "Existing plant ID for a re-analysis")
	cmd.Flags().StringVar(&question, "question", "", "Optional question about the plant")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPlantSaveCmd(app *App) *cobra.Command {
	var owner int64
	var name string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the pending analysis as a plant with a watering reminder",
		RunE: func(cmd *cobra.Command, args []string) error {
			plant, err := app.Plants.SavePending(context.Background(), owner, name)
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s (%s), watering every %d days.\n",
				plant.DisplayName(), plant.ID, plant.WateringInterval)
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	cmd.Flags().StringVar(&name, "name", "", "Custom plant name")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPlantListCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plants",
		RunE: func(cmd *cobra.Command, args []string) error {
			plants, err := app.Plants.List(context.Background(), owner)
			if err != nil {
				return err
			}
			if len(plants) == 0 {
				fmt.Println("No plants yet.")
				return nil
			}
			for _, p := range plants {
				fmt.Printf("%s  %-20s state=%s interval=%dd\n",
					p.ID, p.DisplayName(), p.State, p.WateringInterval)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPlantShowCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "show <plant-id>",
		Short: "Show plant details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Plants.Get(context.Background(), owner, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Name:        %s\n", p.DisplayName())
			if p.SpeciesName != "" {
				fmt.Printf("Species:     %s\n", p.SpeciesName)
			}
			fmt.Printf("State:       %s (since %s)\n", p.State, p.StateChangedAt.Format("2006-01-02"))
			fmt.Printf("Stage:       %s\n", p.GrowthStage)
			fmt.Printf("Watering:    every %d days\n", p.WateringInterval)
			if p.LastWateredAt != nil {
				fmt.Printf("Last water:  %s\n", p.LastWateredAt.Format("2006-01-02"))
			}
			if p.LastPhotoAnalysisAt != nil {
				fmt.Printf("Last photo:  %s\n", p.LastPhotoAnalysisAt.Format("2006-01-02"))
			}
			fmt.Printf("Reminders:   %v\n", p.ReminderEnabled)
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPlantHistoryCmd(app *App) *cobra.Command {
	var owner int64
	var limit int

	cmd := &cobra.Command{
		Use:   "history <plant-id>",
		Short: "Show the plant's state transition history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.Plants.History(context.Background(), owner, args[0], limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				from := "-"
				if e.PreviousState != nil {
					from = string(*e.PreviousState)
				}
				fmt.Printf("%s  %s -> %s", e.CreatedAt.Format("2006-01-02"), from, e.NewState)
				if e.Reason != "" {
					fmt.Printf("  (%s)", e.Reason)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	cmd.Flags().IntVar(&limit, "limit", 10, "Max entries")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPlantRenameCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "rename <plant-id> <name>",
		Short: "Rename a plant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Plants.Rename(context.Background(), owner, args[0], args[1])
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPlantDeleteCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "delete <plant-id>",
		Short: "Delete a plant and its reminders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Plants.Delete(context.Background(), owner, args[0])
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPlantWateredCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "watered <plant-id>",
		Short: "Acknowledge watering and reschedule the reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rem, err := app.Plants.MarkWatered(context.Background(), owner, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Next watering: %s\n", rem.NextDueAt.Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPlantWaterAllCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "water-all",
		Short: "Acknowledge watering for every plant",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.Plants.WaterAll(context.Background(), owner)
			if err != nil {
				return err
			}
			fmt.Printf("Watered %d plant(s).\n", n)
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPlantSnoozeCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "snooze <plant-id>",
		Short: "Push the watering reminder to tomorrow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rem, err := app.Reminders.Snooze(context.Background(), owner, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Snoozed until %s.\n", rem.NextDueAt.Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPlantRemindersCmd(app *App) *cobra.Command {
	var owner int64
	var enable bool

	cmd := &cobra.Command{
		Use:   "reminders <plant-id>",
		Short: "Enable or disable reminders for a plant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Plants.SetReminderEnabled(context.Background(), owner, args[0], enable)
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	cmd.Flags().BoolVar(&enable, "enable", true, "Enable (true) or disable (false)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
