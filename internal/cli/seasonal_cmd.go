package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSeasonalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seasonal",
		Short: "Seasonal watering interval recalibration",
	}

	cmd.AddCommand(newSeasonalRunCmd(app), newSeasonalPlantCmd(app))
	return cmd
}

func newSeasonalRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Recalibrate every species-identified plant",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.Seasonal.RecalibrateAll(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("examined=%d updated=%d unchanged=%d failed=%d\n",
				stats.Examined, stats.Updated, stats.Skipped, stats.Failed)
			return nil
		},
	}
}

func newSeasonalPlantCmd(app *App) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "plant <plant-id>",
		Short: "Recalibrate a single plant now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Seasonal.RecalibratePlant(context.Background(), owner, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: watering every %d days\n", p.DisplayName(), p.WateringInterval)
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner ID")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
