// Package store implements the secure journal record store: field-level
// encryption on write, and transparent decoding of both historical record
// shapes on read. Callers only ever see the canonical JournalAnalysis form.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/luminahealth/lumina-go/internal/crypto"
	"github.com/luminahealth/lumina-go/internal/db"
	"github.com/luminahealth/lumina-go/internal/metrics"
	"github.com/luminahealth/lumina-go/internal/models"
	"github.com/luminahealth/lumina-go/internal/pipeline"
)

// SchemaVersion marks records written by this service. Legacy records
// (version 1, per-framework insight triple + boolean crisis flag) predate
// the marker entirely.
const SchemaVersion = "2"

// AgentVersion is stamped into record metadata.
const AgentVersion = "2.0.0"

// database is the subset of db.Client the store uses.
type database interface {
	CreateEntry(ctx context.Context, row *db.EntryRow) error
	GetEntry(ctx context.Context, userID, entryID string) (*db.EntryRow, error)
	ListEntries(ctx context.Context, userID string, limit, offset int) ([]db.EntryRow, error)
	CountEntries(ctx context.Context, userID string) (int, error)
	ListCrisisEntries(ctx context.Context, userID string, since time.Time) ([]db.EntryRow, error)
}

// ErrNotFound is returned when a requested entry does not exist for the user.
var ErrNotFound = db.ErrNotFound

// Store persists and retrieves encrypted journal records.
type Store struct {
	db        database
	cipher    *crypto.Cipher
	logger    *slog.Logger
	collector *metrics.Collector
}

// New creates a Store. The cipher must already be constructed: a missing
// encryption key is a startup failure, never a per-call error.
func New(database database, cipher *crypto.Cipher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: database, cipher: cipher, logger: logger}
}

// WithMetrics attaches a collector for read-path timings and returns the
// same store for chaining.
func (s *Store) WithMetrics(c *metrics.Collector) *Store {
	s.collector = c
	return s
}

// Compile-time check that Store satisfies the pipeline's Recorder.
var _ pipeline.Recorder = (*Store)(nil)

// Persist encrypts the sensitive fields and writes one immutable record.
// Returns the generated entry id.
func (s *Store) Persist(ctx context.Context, rec *pipeline.Record) (string, error) {
	entryID := uuid.NewString()

	encryptedRaw, err := s.cipher.Encrypt(rec.RawEntry)
	if err != nil {
		return "", fmt.Errorf("encrypt raw text: %w", err)
	}
	encryptedNormalized, err := s.cipher.Encrypt(rec.NormalizedEntry)
	if err != nil {
		return "", fmt.Errorf("encrypt normalized text: %w", err)
	}
	encryptedInsight, err := s.cipher.Encrypt(rec.TherapeuticInsight)
	if err != nil {
		return "", fmt.Errorf("encrypt insight: %w", err)
	}

	level := int(rec.Crisis.Level)
	reasoning := rec.Crisis.Reasoning
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	row := &db.EntryRow{
		EntryID:                 entryID,
		UserID:                  rec.UserID,
		CreatedAt:               rec.Timestamp,
		EncryptedRawText:        encryptedRaw,
		EncryptedNormalizedText: encryptedNormalized,
		EncryptedInsights:       encryptedInsight,
		Emotions:                emotionsToRow(rec.Emotions),
		Patterns:                rec.Patterns,
		CrisisDetected:          rec.Crisis.CrisisDetected(),
		CrisisLevel:             &level,
		CrisisIndicators:        rec.Crisis.Indicators,
		CrisisReasoning:         &reasoning,
		Embedding:               rec.Embedding,
		Tags:                    tags,
		Metadata: map[string]any{
			"schema_version":       SchemaVersion,
			"agent_version":        AgentVersion,
			"emotion_framework":    "ekman_6_emotions",
			"processing_timestamp": time.Now().UTC().Format(time.RFC3339),
			"crisis_level":         level,
		},
	}

	if err := s.db.CreateEntry(ctx, row); err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}

	s.logger.Info("journal record created",
		"entry_id", entryID, "user_id", rec.UserID, "crisis_level", level)
	return entryID, nil
}

// Entry returns one decoded record, scoped to the owning user.
func (s *Store) Entry(ctx context.Context, userID, entryID string) (*models.JournalAnalysis, error) {
	start := time.Now()
	row, err := s.db.GetEntry(ctx, userID, entryID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.recordReadFailure()
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	s.recordReadTiming(time.Since(start))
	return s.decode(row)
}

// History returns one page of a user's analysis history, newest first,
// with legacy-shaped rows normalized into the same response contract.
func (s *Store) History(ctx context.Context, userID string, page, pageSize int) (*models.JournalHistory, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	start := time.Now()
	total, err := s.db.CountEntries(ctx, userID)
	if err != nil {
		s.recordReadFailure()
		return nil, fmt.Errorf("count history: %w", err)
	}

	rows, err := s.db.ListEntries(ctx, userID, pageSize, offset)
	if err != nil {
		s.recordReadFailure()
		return nil, fmt.Errorf("list history: %w", err)
	}
	s.recordReadTiming(time.Since(start))

	entries := make([]models.JournalAnalysis, 0, len(rows))
	for i := range rows {
		entry, err := s.decode(&rows[i])
		if err != nil {
			// A single undecodable record should not hide the rest of
			// the history.
			s.logger.Error("skipping undecodable record",
				"entry_id", rows[i].EntryID, "user_id", userID, "error", err)
			continue
		}
		entries = append(entries, *entry)
	}

	return &models.JournalHistory{
		Entries:     entries,
		TotalCount:  total,
		Page:        page,
		PageSize:    pageSize,
		HasNext:     offset+pageSize < total,
		HasPrevious: offset > 0,
	}, nil
}

func (s *Store) recordReadTiming(d time.Duration) {
	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpDBRead, d)
	}
}

func (s *Store) recordReadFailure() {
	if s.collector != nil {
		s.collector.RecordFailure(metrics.OpDBRead)
	}
}

// CrisisHistory returns the crisis-only projection of a user's entries
// since the cutoff.
func (s *Store) CrisisHistory(ctx context.Context, userID string, since time.Time) ([]models.CrisisEntry, error) {
	start := time.Now()
	rows, err := s.db.ListCrisisEntries(ctx, userID, since)
	if err != nil {
		s.recordReadFailure()
		return nil, fmt.Errorf("crisis history: %w", err)
	}
	s.recordReadTiming(time.Since(start))

	entries := make([]models.CrisisEntry, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		assessment := decodeCrisis(row)
		profile, err := emotionsFromRow(row.Emotions)
		if err != nil {
			s.logger.Error("skipping record with bad emotion data",
				"entry_id", row.EntryID, "error", err)
			continue
		}
		entries = append(entries, models.CrisisEntry{
			EntryID:        row.EntryID,
			Timestamp:      row.CreatedAt,
			Level:          assessment.Level,
			Indicators:     assessment.Indicators,
			Reasoning:      assessment.Reasoning,
			PrimaryEmotion: profile.Primary,
		})
	}
	return entries, nil
}
