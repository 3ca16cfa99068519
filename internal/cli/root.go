package cli

import (
	"github.com/Kamilla170/bloom/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Plants    service.PlantService
	Reminders service.ReminderService
	Seasonal  service.SeasonalService
	Growing   service.GrowingService
}

// NewRootCmd creates the top-level "bloom" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "bloom",
		Short: "Plant-care engine: photo diagnosis, watering reminders, growing plans",
	}

	root.AddCommand(
		newPlantCmd(app),
		newSweepCmd(app),
		newSeasonalCmd(app),
		newGrowingCmd(app),
	)

	return root
}
