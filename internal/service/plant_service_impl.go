package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Kamilla170/bloom/internal/diagnosis"
	"github.com/Kamilla170/bloom/internal/domain"
	"github.com/Kamilla170/bloom/internal/repository"
	"github.com/google/uuid"
)

type plantService struct {
	plants    repository.PlantRepo
	owners    repository.OwnerRepo
	pipeline  *diagnosis.Pipeline
	reminders ReminderService
	pending   *PendingStore
	now       func() time.Time
	log       *slog.Logger
}

// NewPlantService creates a PlantService. now may be nil for wall-clock
// time; log may be nil to discard.
func NewPlantService(
	plants repository.PlantRepo,
	owners repository.OwnerRepo,
	pipeline *diagnosis.Pipeline,
	reminders ReminderService,
	pending *PendingStore,
	now func() time.Time,
	log *slog.Logger,
) PlantService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &plantService{
		plants:    plants,
		owners:    owners,
		pipeline:  pipeline,
		reminders: reminders,
		pending:   pending,
		now:       now,
		log:       log,
	}
}

func (s *plantService) AnalyzePhoto(ctx context.Context, req AnalyzePhotoRequest) (*diagnosis.Result, error) {
	if err := s.owners.Ensure(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	analyzeReq := diagnosis.AnalyzeRequest{
		Image:    req.Image,
		Question: req.Question,
	}
	if req.PlantID != "" {
		plant, err := s.plants.GetForOwner(ctx, req.PlantID, req.OwnerID)
		if err != nil {
			return nil, err
		}
		analyzeReq.PreviousState = string(plant.State)
		analyzeReq.History = s.historySummary(ctx, plant.ID)
	}

	result, err := s.pipeline.Analyze(ctx, analyzeReq)
	if err != nil {
		return nil, err
	}

	// The newest analysis supersedes any unsaved one.
	s.pending.Put(&PendingAnalysis{
		OwnerID:   req.OwnerID,
		PlantID:   req.PlantID,
		PhotoRef:  req.PhotoRef,
		Result:    result,
		CreatedAt: s.now().UTC(),
	})

	s.log.Info("photo analyzed",
		"owner", req.OwnerID,
		"plant", req.PlantID,
		"source", result.Source,
		"confidence", result.Confidence,
		"interval", result.Extraction.EffectiveWateringIntervalDays)
	return result, nil
}

func (s *plantService) SavePending(ctx context.Context, ownerID int64, customName string) (*domain.Plant, error) {
	p, ok := s.pending.Get(ownerID)
	if !ok {
		return nil, fmt.Errorf("no pending analysis for owner %d", ownerID)
	}
	ex := p.Result.Extraction
	now := s.now().UTC()

	var plant *domain.Plant
	var prevState *domain.PlantState

	if p.PlantID != "" {
		existing, err := s.plants.GetForOwner(ctx, p.PlantID, ownerID)
		if err != nil {
			return nil, err
		}
		// The entry always carries the state held immediately before
		// this write; only the plant's first entry has none.
		st := existing.State
		prevState = &st
		if existing.State != ex.State {
			existing.StateChangedAt = now
		}
		if p.Result.SpeciesName != "" {
			existing.SpeciesName = p.Result.SpeciesName
		}
		if customName != "" {
			existing.CustomName = customName
		}
		existing.State = ex.State
		existing.GrowthStage = ex.GrowthStage
		existing.WateringInterval = ex.EffectiveWateringIntervalDays
		existing.BaseWateringInterval = ex.EffectiveWateringIntervalDays
		if p.PhotoRef != "" {
			existing.PhotoRef = p.PhotoRef
		}
		existing.LastPhotoAnalysisAt = &now
		existing.UpdatedAt = now
		if err := s.plants.Update(ctx, existing); err != nil {
			return nil, err
		}
		plant = existing
	} else {
		plant = &domain.Plant{
			ID:                   uuid.New().String(),
			OwnerID:              ownerID,
			SpeciesName:          p.Result.SpeciesName,
			CustomName:           customName,
			State:                ex.State,
			StateChangedAt:       now,
			GrowthStage:          ex.GrowthStage,
			WateringInterval:     ex.EffectiveWateringIntervalDays,
			BaseWateringInterval: ex.EffectiveWateringIntervalDays,
			LastPhotoAnalysisAt:  &now,
			PhotoRef:             p.PhotoRef,
			ReminderEnabled:      true,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := s.plants.Create(ctx, plant); err != nil {
			return nil, err
		}
	}

	entry := &domain.StateHistoryEntry{
		ID:                 uuid.New().String(),
		PlantID:            plant.ID,
		OwnerID:            ownerID,
		PreviousState:      prevState,
		NewState:           ex.State,
		Reason:             ex.StateReason,
		WateringAdjustment: ex.WateringAdjustmentDays,
		FeedingAdjustment:  ex.FeedingAdjustmentDays,
		Recommendations:    ex.Recommendations,
		PhotoRef:           p.PhotoRef,
		CreatedAt:          now,
	}
	if err := s.plants.AddStateHistory(ctx, entry); err != nil {
		return nil, err
	}

	if _, err := s.reminders.ScheduleWatering(ctx, plant, now); err != nil {
		return nil, err
	}

	s.pending.Clear(ownerID)
	s.log.Info("analysis saved",
		"owner", ownerID, "plant", plant.ID, "state", plant.State,
		"interval", plant.WateringInterval)
	return plant, nil
}

func (s *plantService) Pending(ownerID int64) (*PendingAnalysis, bool) {
	return s.pending.Get(ownerID)
}

func (s *plantService) DiscardPending(ownerID int64) {
	s.pending.Clear(ownerID)
}

func (s *plantService) MarkWatered(ctx context.Context, ownerID int64, plantID string) (*domain.Reminder, error) {
	plant, err := s.plants.GetForOwner(ctx, plantID, ownerID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	plant.LastWateredAt = &now
	plant.UpdatedAt = now
	if err := s.plants.Update(ctx, plant); err != nil {
		return nil, err
	}
	return s.reminders.ScheduleWatering(ctx, plant, now)
}

func (s *plantService) WaterAll(ctx context.Context, ownerID int64) (int, error) {
	plants, err := s.plants.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	watered := 0
	for _, p := range plants {
		if _, err := s.MarkWatered(ctx, ownerID, p.ID); err != nil {
			s.log.Warn("water-all skipped plant", "plant", p.ID, "error", err)
			continue
		}
		watered++
	}
	return watered, nil
}

func (s *plantService) Rename(ctx context.Context, ownerID int64, plantID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	plant, err := s.plants.GetForOwner(ctx, plantID, ownerID)
	if err != nil {
		return err
	}
	plant.CustomName = name
	plant.UpdatedAt = s.now().UTC()
	return s.plants.Update(ctx, plant)
}

func (s *plantService) Delete(ctx context.Context, ownerID int64, plantID string) error {
	return s.plants.Delete(ctx, plantID, ownerID)
}

func (s *plantService) List(ctx context.Context, ownerID int64) ([]*domain.Plant, error) {
	return s.plants.ListByOwner(ctx, ownerID)
}

func (s *plantService) Get(ctx context.Context, ownerID int64, plantID string) (*domain.Plant, error) {
	return s.plants.GetForOwner(ctx, plantID, ownerID)
}

func (s *plantService) History(ctx context.Context, ownerID int64, plantID string, limit int) ([]*domain.StateHistoryEntry, error) {
	if _, err := s.plants.GetForOwner(ctx, plantID, ownerID); err != nil {
		return nil, err
	}
	return s.plants.ListStateHistory(ctx, plantID, limit)
}

func (s *plantService) SetReminderEnabled(ctx context.Context, ownerID int64, plantID string, enabled bool) error {
	plant, err := s.plants.GetForOwner(ctx, plantID, ownerID)
	if err != nil {
		return err
	}
	plant.ReminderEnabled = enabled
	plant.UpdatedAt = s.now().UTC()
	return s.plants.Update(ctx, plant)
}

// historySummary condenses recent state transitions into prompt context.
func (s *plantService) historySummary(ctx context.Context, plantID string) string {
	entries, err := s.plants.ListStateHistory(ctx, plantID, 5)
	if err != nil || len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entries {
		from := "-"
		if e.PreviousState != nil {
			from = string(*e.PreviousState)
		}
		fmt.Fprintf(&b, "%s: %s -> %s", e.CreatedAt.Format("2006-01-02"), from, e.NewState)
		if e.Reason != "" {
			fmt.Fprintf(&b, " (%s)", e.Reason)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
