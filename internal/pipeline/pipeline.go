// Package pipeline implements the journal processing workflow: normalize,
// analyze, assess crisis, embed, store. Each run owns one Context that every
// stage extends in sequence. Stages are either degradable (failure swapped
// for a documented default, run continues) or fatal (run aborts, nothing is
// persisted).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/luminahealth/lumina-go/internal/metrics"
	"github.com/luminahealth/lumina-go/internal/models"
)

// ErrInvalidAnalysis marks analyzer output that failed schema validation.
// All downstream stages depend on emotion and pattern data, so this aborts
// the run.
var ErrInvalidAnalysis = errors.New("analysis failed - invalid response format")

// Generator produces text from a prompt. Implemented by llm.Model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder produces a semantic vector for text. Implemented by llm.Embedder.
// A nil Embedder disables the embedding stage.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Record is everything the store needs to persist one processed entry.
type Record struct {
	UserID             string
	RawEntry           string
	NormalizedEntry    string
	Emotions           models.EmotionProfile
	Patterns           []string
	TherapeuticInsight string
	Crisis             models.CrisisAssessment
	Embedding          []float32
	Tags               []string
	Timestamp          time.Time
}

// Recorder persists a processed entry and returns its assigned id.
// Implemented by store.Store.
type Recorder interface {
	Persist(ctx context.Context, rec *Record) (string, error)
}

// Stage identifies a pipeline stage for progress reporting and logging.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageAnalyze   Stage = "analyze"
	StageCrisis    Stage = "assess_crisis"
	StageEmbed     Stage = "generate_embedding"
	StageStore     Stage = "store_entry"
)

// Stages lists the workflow in execution order.
var Stages = []Stage{StageNormalize, StageAnalyze, StageCrisis, StageEmbed, StageStore}

// StageStatus reports a stage transition to progress observers.
type StageStatus int

const (
	StageRunning StageStatus = iota
	StageDone
	StageDegraded
)

// Context is the analysis state threaded through the stages. It is owned
// exclusively by one Process call and discarded after the response is built.
type Context struct {
	RawEntry        string
	UserID          string
	NormalizedEntry string
	Emotions        models.EmotionProfile
	Patterns        []string
	Insight         string
	Crisis          models.CrisisAssessment
	Embedding       []float32
	EntryID         string
	Tags            []string

	// Degraded records which stages fell back to a default, for logging
	// and the health report. Never surfaced to the end user.
	Degraded []Stage
}

// Pipeline orchestrates the processing stages over shared dependencies.
// Safe for concurrent use: all per-run state lives in the Context.
type Pipeline struct {
	gen          Generator
	embedder     Embedder
	store        Recorder
	logger       *slog.Logger
	collector    *metrics.Collector
	stageTimeout time.Duration
	crisisLLM    bool
	onStage      func(Stage, StageStatus)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEmbedder sets the optional embedding backend.
func WithEmbedder(e Embedder) Option {
	return func(p *Pipeline) { p.embedder = e }
}

// WithStageTimeout bounds each external call. Zero disables the per-stage
// timeout (the caller's context still applies).
func WithStageTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.stageTimeout = d }
}

// WithCrisisLLM toggles Tier-1 model-based crisis assessment. When false,
// only the keyword fallback runs.
func WithCrisisLLM(enabled bool) Option {
	return func(p *Pipeline) { p.crisisLLM = enabled }
}

// WithStageObserver registers a callback invoked on stage transitions.
func WithStageObserver(fn func(Stage, StageStatus)) Option {
	return func(p *Pipeline) { p.onStage = fn }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pipeline) { p.collector = c }
}

// New creates a Pipeline. Generator and Recorder are required; everything
// else has working defaults.
func New(gen Generator, store Recorder, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:          gen,
		store:        store,
		logger:       logger,
		stageTimeout: 30 * time.Second,
		crisisLLM:    true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Process runs one journal entry through the complete workflow.
//
// Degradable failures (normalization, Tier-1 crisis, embedding) are absorbed
// with documented defaults. Fatal failures (analysis validation, store write)
// abort the run and nothing is persisted. Context cancellation aborts the
// remaining stages and skips persistence.
func (p *Pipeline) Process(ctx context.Context, rawEntry, userID string, tags []string) (*models.JournalAnalysis, error) {
	text, err := models.ValidateEntryText(rawEntry)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, models.ErrEmptyUserID
	}

	jc := &Context{
		RawEntry: text,
		UserID:   userID,
		Tags:     tags,
	}

	type stageFn struct {
		name Stage
		run  func(context.Context, *Context) error
	}
	stages := []stageFn{
		{StageNormalize, p.normalize},
		{StageAnalyze, p.analyze},
		{StageCrisis, p.assessCrisis},
		{StageEmbed, p.generateEmbedding},
		{StageStore, p.storeEntry},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline canceled", "stage", s.name, "user_id", userID)
			return nil, fmt.Errorf("processing canceled before %s: %w", s.name, err)
		}

		p.notify(s.name, StageRunning)
		if err := s.run(ctx, jc); err != nil {
			p.logger.Error("pipeline stage failed", "stage", s.name, "user_id", userID, "error", err)
			return nil, err
		}
		if len(jc.Degraded) > 0 && jc.Degraded[len(jc.Degraded)-1] == s.name {
			p.notify(s.name, StageDegraded)
		} else {
			p.notify(s.name, StageDone)
		}
	}

	if p.collector != nil {
		p.collector.RecordEntry(jc.Crisis.CrisisDetected())
	}

	return &models.JournalAnalysis{
		EntryID:            jc.EntryID,
		UserID:             jc.UserID,
		Timestamp:          time.Now().UTC(),
		NormalizedJournal:  jc.NormalizedEntry,
		Emotions:           jc.Emotions,
		Patterns:           jc.Patterns,
		TherapeuticInsight: jc.Insight,
		Crisis:             jc.Crisis,
		CrisisDetected:     jc.Crisis.CrisisDetected(),
		EmbeddingReady:     jc.Embedding != nil,
		Tags:               jc.Tags,
	}, nil
}

// storeEntry persists the completed context. Fatal: by this point the
// analysis exists, but a failed write means no record and the computed
// analysis is lost (not retried).
func (p *Pipeline) storeEntry(ctx context.Context, jc *Context) error {
	start := time.Now()
	entryID, err := p.store.Persist(ctx, &Record{
		UserID:             jc.UserID,
		RawEntry:           jc.RawEntry,
		NormalizedEntry:    jc.NormalizedEntry,
		Emotions:           jc.Emotions,
		Patterns:           jc.Patterns,
		TherapeuticInsight: jc.Insight,
		Crisis:             jc.Crisis,
		Embedding:          jc.Embedding,
		Tags:               jc.Tags,
		Timestamp:          time.Now().UTC(),
	})
	if err != nil {
		p.recordFailure(metrics.OpDBWrite)
		return fmt.Errorf("storage failed: %w", err)
	}
	p.recordTiming(metrics.OpDBWrite, time.Since(start))

	jc.EntryID = entryID
	p.logger.Info("journal entry stored", "entry_id", entryID, "user_id", jc.UserID)
	return nil
}

// stageContext bounds an external call so a stalled dependency degrades a
// single run instead of starving the process.
func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.stageTimeout)
}

func (p *Pipeline) notify(stage Stage, status StageStatus) {
	if p.onStage != nil {
		p.onStage(stage, status)
	}
}

func (p *Pipeline) recordTiming(op string, d time.Duration) {
	if p.collector != nil {
		p.collector.RecordTiming(op, d)
	}
}

func (p *Pipeline) recordFailure(op string) {
	if p.collector != nil {
		p.collector.RecordFailure(op)
	}
}

func (jc *Context) markDegraded(stage Stage) {
	jc.Degraded = append(jc.Degraded, stage)
}
