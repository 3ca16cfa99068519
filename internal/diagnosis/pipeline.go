// Package diagnosis implements the two-stage image diagnosis pipeline:
// a vision Observe step, a reasoning Diagnose step, and the retry and
// fallback policy that guarantees the caller always receives an
// actionable result.
package diagnosis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Kamilla170/bloom/internal/domain"
	"github.com/Kamilla170/bloom/internal/llm"
	"github.com/Kamilla170/bloom/internal/season"
)

// minObservePayload is the minimal plausible length of a vision payload.
// Anything shorter is treated as a failed call even when the transport
// succeeded.
const minObservePayload = 50

// confidenceThreshold gates the transition from Observe to Diagnose.
const confidenceThreshold = 50

// fallbackConfidence is the confidence attached to the generic fallback
// diagnosis.
const fallbackConfidence = 20

// Models names the models used by the pipeline. Fallback is applied to
// the reasoning step only on outright errors, never on low confidence.
type Models struct {
	Vision   string
	Primary  string
	Fallback string
}

// AnalyzeRequest is one diagnosis request.
type AnalyzeRequest struct {
	Image         []byte
	Question      string
	PreviousState string
	History       string
}

// Result is the outcome of one diagnosis request. It is transient: the
// caller decides whether to persist it.
type Result struct {
	VisionText    string
	DiagnosisText string // user-visible, interval marker stripped
	SpeciesName   string
	Confidence    int
	NeedsRetry    bool
	Extraction    Extraction
	Source        Source
}

type Source string

const (
	SourceModel      Source = "model"
	SourceVisionOnly Source = "vision_only"
	SourceFallback   Source = "fallback"
)

// Pipeline orchestrates the Observe and Diagnose steps.
type Pipeline struct {
	client llm.ModelClient
	models Models
	now    func() time.Time
	log    *slog.Logger
}

// NewPipeline creates a diagnosis pipeline. now may be nil for wall-clock
// time; log may be nil to discard.
func NewPipeline(client llm.ModelClient, models Models, now func() time.Time, log *slog.Logger) *Pipeline {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{client: client, models: models, now: now, log: log}
}

// Analyze runs the full pipeline. It never returns an error for model
// failures: the worst case is the generic fallback result. The returned
// error is reserved for context cancellation of the whole request.
func (p *Pipeline) Analyze(ctx context.Context, req AnalyzeRequest) (*Result, error) {
	sc := season.Current(p.now())
	seasonDefault := sc.FallbackInterval(domain.DefaultWateringInterval)

	// Bounded retry: at most one extra Observe attempt, whether the first
	// failed outright or merely came back under the confidence threshold.
	visionText, err := p.observe(ctx, req, sc)
	needsRetry := false
	if err != nil || ParseConfidence(visionText) < confidenceThreshold {
		if err != nil {
			p.log.Warn("observe failed, retrying", "error", err)
		} else {
			p.log.Info("observe confidence below threshold, retrying",
				"confidence", ParseConfidence(visionText))
		}
		visionText, err = p.observe(ctx, req, sc)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.log.Warn("observe failed twice, using generic fallback", "error", err)
			return p.fallbackResult(sc, seasonDefault), nil
		}
		if ParseConfidence(visionText) < confidenceThreshold {
			needsRetry = true
		}
	}

	confidence := ParseConfidence(visionText)
	species := ParseSpecies(visionText)

	diagText, err := p.diagnose(ctx, visionText, req.History, sc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Degrade gracefully: vision-only result with the season default.
		p.log.Warn("diagnose failed, degrading to vision-only result", "error", err)
		ex := Extract(visionText, nil, seasonDefault)
		return &Result{
			VisionText:    visionText,
			DiagnosisText: visionText,
			SpeciesName:   species,
			Confidence:    confidence,
			NeedsRetry:    needsRetry,
			Extraction:    ex,
			Source:        SourceVisionOnly,
		}, nil
	}

	var intervalPtr *int
	days, stripped, ok := ParseInterval(diagText)
	if ok {
		intervalPtr = &days
	}
	// State markers live in the vision payload; the reasoning text may
	// restate them. Extract over both so either source wins.
	ex := Extract(visionText+"\n"+diagText, intervalPtr, seasonDefault)

	return &Result{
		VisionText:    visionText,
		DiagnosisText: stripped,
		SpeciesName:   species,
		Confidence:    confidence,
		NeedsRetry:    needsRetry,
		Extraction:    ex,
		Source:        SourceModel,
	}, nil
}

// observe runs the vision step once.
func (p *Pipeline) observe(ctx context.Context, req AnalyzeRequest, sc season.Context) (string, error) {
	resp, err := p.client.Complete(ctx, llm.CompleteRequest{
		Task:         llm.TaskObserve,
		Model:        p.models.Vision,
		SystemPrompt: observeSystemPrompt,
		UserPrompt:   observeUserPrompt(req.Question, req.PreviousState, sc),
		ImageJPEG:    req.Image,
	})
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(resp.Text)) < minObservePayload {
		return "", llm.ErrInvalidOutput
	}
	return resp.Text, nil
}

// diagnose runs the reasoning step, falling back to the secondary model
// on outright errors only.
func (p *Pipeline) diagnose(ctx context.Context, observations, history string, sc season.Context) (string, error) {
	req := llm.CompleteRequest{
		Task:         llm.TaskDiagnose,
		Model:        p.models.Primary,
		SystemPrompt: diagnoseSystemPrompt,
		UserPrompt:   diagnoseUserPrompt(observations, history, sc),
	}
	resp, err := p.client.Complete(ctx, req)
	if err == nil {
		return resp.Text, nil
	}
	if ctx.Err() != nil || p.models.Fallback == "" || p.models.Fallback == p.models.Primary {
		return "", err
	}

	p.log.Warn("primary reasoning model failed, trying fallback",
		"primary", p.models.Primary, "fallback", p.models.Fallback, "error", err)
	req.Model = p.models.Fallback
	resp, err = p.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (p *Pipeline) fallbackResult(sc season.Context, seasonDefault int) *Result {
	text := fallbackObservation(sc, domain.ClampInterval(seasonDefault))
	days, stripped, _ := ParseInterval(text)
	ex := Extract(text, &days, seasonDefault)
	return &Result{
		VisionText:    text,
		DiagnosisText: stripped,
		SpeciesName:   "",
		Confidence:    fallbackConfidence,
		NeedsRetry:    true,
		Extraction:    ex,
		Source:        SourceFallback,
	}
}

// RecalibrateInterval asks the reasoning model for a fresh interval given
// a species and the current season. On any failure the current interval
// is returned unchanged; the result is always clamped.
func (p *Pipeline) RecalibrateInterval(ctx context.Context, speciesName string, currentInterval int) int {
	sc := season.Current(p.now())
	resp, err := p.client.Complete(ctx, llm.CompleteRequest{
		Task:         llm.TaskRecalibrate,
		Model:        p.models.Fallback,
		SystemPrompt: recalibrateSystemPrompt,
		UserPrompt:   recalibrateUserPrompt(speciesName, currentInterval, sc),
	})
	if err != nil {
		p.log.Warn("recalibration call failed, keeping interval",
			"species", speciesName, "error", err)
		return currentInterval
	}
	n, ok := firstInt(resp.Text)
	if !ok {
		p.log.Warn("recalibration returned no number, keeping interval",
			"species", speciesName, "answer", resp.Text)
		return currentInterval
	}
	return domain.ClampInterval(n)
}
