package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Kamilla170/bloom/internal/cli"
	"github.com/Kamilla170/bloom/internal/config"
	"github.com/Kamilla170/bloom/internal/db"
	"github.com/Kamilla170/bloom/internal/diagnosis"
	"github.com/Kamilla170/bloom/internal/llm"
	"github.com/Kamilla170/bloom/internal/messenger"
	"github.com/Kamilla170/bloom/internal/repository"
	"github.com/Kamilla170/bloom/internal/service"
	"github.com/joho/godotenv"
	maxbot "github.com/max-messenger/max-bot-api-client-go"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".bloom", "bloom.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	ownerRepo := repository.NewSQLiteOwnerRepo(database)
	plantRepo := repository.NewSQLitePlantRepo(database)
	planRepo := repository.NewSQLiteGrowingPlanRepo(database)
	reminderRepo := repository.NewSQLiteReminderRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Model client
	llmCfg := llm.DefaultConfig()
	llmCfg.Endpoint = cfg.Model.Endpoint
	llmCfg.APIKey = cfg.Model.APIKey
	setTimeout(llmCfg.Tasks, llm.TaskObserve, cfg.Model.ObserveTimeoutMs)
	setTimeout(llmCfg.Tasks, llm.TaskDiagnose, cfg.Model.DiagnoseTimeoutMs)
	setTimeout(llmCfg.Tasks, llm.TaskRecalibrate, cfg.Model.RecalibrateTimeoutMs)

	var observer llm.Observer = llm.NoopObserver{}
	if cfg.Model.LogCalls {
		observer = llm.NewLogObserver(os.Stderr)
	}
	client := llm.NewOpenAIClient(llmCfg, observer)

	pipeline := diagnosis.NewPipeline(client, diagnosis.Models{
		Vision:   cfg.Model.VisionModel,
		Primary:  cfg.Model.PrimaryModel,
		Fallback: cfg.Model.FallbackModel,
	}, nil, log)

	// Outbound messenger
	var msgr messenger.Messenger
	if cfg.BotToken != "" {
		api, err := maxbot.New(cfg.BotToken)
		if err != nil {
			return fmt.Errorf("creating bot client: %w", err)
		}
		msgr = messenger.NewMaxMessenger(api)
	} else {
		log.Warn("no bot token configured, reminders print to stdout")
		msgr = messenger.NewConsoleMessenger(os.Stdout)
	}

	// Wire services
	pending := service.NewPendingStore(time.Duration(cfg.PendingTTLMinutes) * time.Minute)
	reminderSvc := service.NewReminderService(uow, reminderRepo, plantRepo, ownerRepo,
		msgr, cfg.Reminder.MaxNags, cfg.Location(), nil, log)
	plantSvc := service.NewPlantService(plantRepo, ownerRepo, pipeline, reminderSvc, pending, nil, log)
	seasonalSvc := service.NewSeasonalService(plantRepo, pipeline, reminderSvc, nil, log)
	growingSvc := service.NewGrowingService(planRepo, ownerRepo, reminderSvc, pipeline, uow, nil, log)

	app := &cli.App{
		Plants:    plantSvc,
		Reminders: reminderSvc,
		Seasonal:  seasonalSvc,
		Growing:   growingSvc,
	}
	return cli.NewRootCmd(app).Execute()
}

func setTimeout(tasks map[llm.TaskType]llm.TaskConfig, task llm.TaskType, ms int) {
	if ms <= 0 {
		return
	}
	tc := tasks[task]
	tc.TimeoutMs = ms
	tasks[task] = tc
}
