package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/luminahealth/lumina-go/internal/db"
	"github.com/luminahealth/lumina-go/internal/models"
	"github.com/luminahealth/lumina-go/internal/resources"
)

// legacyInsight is the version-1 per-framework insight triple. Records from
// that era stored an encrypted JSON object instead of a single string.
type legacyInsight struct {
	CBT string `json:"cbt"`
	DBT string `json:"dbt"`
	ACT string `json:"act"`
}

// emotionsToRow flattens an EmotionProfile into the stored object shape
// ({primary, secondary, analysis}).
func emotionsToRow(p models.EmotionProfile) map[string]any {
	data, err := json.Marshal(p)
	if err != nil {
		// EmotionProfile contains only marshalable fields.
		panic(fmt.Sprintf("marshal emotion profile: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic(fmt.Sprintf("unmarshal emotion profile: %v", err))
	}
	return m
}

// emotionsFromRow rebuilds an EmotionProfile from the stored object.
func emotionsFromRow(m map[string]any) (models.EmotionProfile, error) {
	var p models.EmotionProfile
	if m == nil {
		return p, fmt.Errorf("record has no emotion data")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return p, fmt.Errorf("re-encode emotion data: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode emotion data: %w", err)
	}
	return p, nil
}

// decodeCrisis rebuilds a crisis assessment from a stored row. Legacy rows
// carry only the boolean flag: a detected crisis maps to the high level and
// anything else to none, with the immediate-action flag and resource list
// re-derived from the level so old and new records answer identically.
func decodeCrisis(row *db.EntryRow) models.CrisisAssessment {
	level := models.LevelNone
	legacy := row.CrisisLevel == nil || !models.CrisisLevel(*row.CrisisLevel).Valid()
	if !legacy {
		level = models.CrisisLevel(*row.CrisisLevel)
	} else if row.CrisisDetected {
		level = models.LevelHigh
	}

	reasoning := ""
	switch {
	case row.CrisisReasoning != nil:
		reasoning = *row.CrisisReasoning
	case legacy:
		reasoning = "Legacy entry, keyword-based detection"
	}
	indicators := row.CrisisIndicators
	if indicators == nil {
		indicators = []string{}
	}

	return models.CrisisAssessment{
		Level:                 level,
		Indicators:            indicators,
		Reasoning:             reasoning,
		ImmediateActionNeeded: level.NeedsImmediateAction(),
		RecommendedResources:  resources.ForLevel(level),
	}
}

// decodeInsight decrypts the stored insight and normalizes the legacy
// per-framework object into a single narrative string.
func (s *Store) decodeInsight(encrypted string) (string, error) {
	plain, err := s.cipher.Decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt insight: %w", err)
	}

	trimmed := strings.TrimSpace(plain)
	if !strings.HasPrefix(trimmed, "{") {
		return plain, nil
	}
	var legacy legacyInsight
	if err := json.Unmarshal([]byte(trimmed), &legacy); err != nil {
		// Not the legacy object, just an insight that happens to start
		// with a brace.
		return plain, nil
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{legacy.CBT, legacy.DBT, legacy.ACT} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return plain, nil
	}
	return strings.Join(parts, " "), nil
}

// decode turns one stored row into the canonical analysis shape.
func (s *Store) decode(row *db.EntryRow) (*models.JournalAnalysis, error) {
	normalized, err := s.cipher.Decrypt(row.EncryptedNormalizedText)
	if err != nil {
		return nil, fmt.Errorf("decrypt normalized text: %w", err)
	}
	insight, err := s.decodeInsight(row.EncryptedInsights)
	if err != nil {
		return nil, err
	}
	profile, err := emotionsFromRow(row.Emotions)
	if err != nil {
		return nil, err
	}

	crisis := decodeCrisis(row)
	patterns := row.Patterns
	if patterns == nil {
		patterns = []string{}
	}

	return &models.JournalAnalysis{
		EntryID:            row.EntryID,
		UserID:             row.UserID,
		Timestamp:          row.CreatedAt,
		NormalizedJournal:  normalized,
		Emotions:           profile,
		Patterns:           patterns,
		TherapeuticInsight: insight,
		Crisis:             crisis,
		CrisisDetected:     crisis.CrisisDetected(),
		EmbeddingReady:     len(row.Embedding) > 0,
		Tags:               row.Tags,
	}, nil
}
