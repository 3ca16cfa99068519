package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kamilla170/bloom/internal/diagnosis"
	"github.com/Kamilla170/bloom/internal/domain"
	"github.com/Kamilla170/bloom/internal/repository"
)

type seasonalService struct {
	plants    repository.PlantRepo
	pipeline  *diagnosis.Pipeline
	reminders ReminderService
	now       func() time.Time
	log       *slog.Logger
}

// NewSeasonalService creates a SeasonalService.
func NewSeasonalService(
	plants repository.PlantRepo,
	pipeline *diagnosis.Pipeline,
	reminders ReminderService,
	now func() time.Time,
	log *slog.Logger,
) SeasonalService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &seasonalService{
		plants:    plants,
		pipeline:  pipeline,
		reminders: reminders,
		now:       now,
		log:       log,
	}
}

func (s *seasonalService) RecalibrateAll(ctx context.Context) (RecalibrateStats, error) {
	var stats RecalibrateStats
	plants, err := s.plants.ListSpeciesIdentified(ctx)
	if err != nil {
		return stats, err
	}
	stats.Examined = len(plants)

	for _, p := range plants {
		changed, err := s.recalibrate(ctx, p)
		if err != nil {
			stats.Failed++
			s.log.Warn("recalibration failed for plant", "plant", p.ID, "error", err)
			continue
		}
		if changed {
			stats.Updated++
		} else {
			stats.Skipped++
		}
	}

	s.log.Info("seasonal recalibration finished",
		"examined", stats.Examined, "updated", stats.Updated,
		"skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}

func (s *seasonalService) RecalibratePlant(ctx context.Context, ownerID int64, plantID string) (*domain.Plant, error) {
	p, err := s.plants.GetForOwner(ctx, plantID, ownerID)
	if err != nil {
		return nil, err
	}
	if !p.HasSpecies() {
		return nil, fmt.Errorf("plant %s has no identified species", plantID)
	}
	if _, err := s.recalibrate(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// recalibrate asks the model for a fresh interval and reschedules only
// when the answer differs. No change means no reminder churn.
func (s *seasonalService) recalibrate(ctx context.Context, p *domain.Plant) (bool, error) {
	fresh := s.pipeline.RecalibrateInterval(ctx, p.SpeciesName, p.WateringInterval)
	if fresh == p.WateringInterval {
		return false, nil
	}

	old := p.WateringInterval
	p.WateringInterval = fresh
	p.BaseWateringInterval = fresh
	p.UpdatedAt = s.now().UTC()
	if err := s.plants.Update(ctx, p); err != nil {
		return false, err
	}

	from := s.now().UTC()
	if p.LastWateredAt != nil {
		from = *p.LastWateredAt
	}
	if _, err := s.reminders.ScheduleWatering(ctx, p, from); err != nil {
		return false, err
	}

	s.log.Info("watering interval recalibrated",
		"plant", p.ID, "species", p.SpeciesName, "old", old, "new", fresh)
	return true, nil
}
