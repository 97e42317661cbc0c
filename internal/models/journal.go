package models

import (
	"fmt"
	"strings"
	"time"
)

// Entry text bounds enforced before any processing.
const (
	MinEntryLength = 10
	MaxEntryLength = 10000
)

// Sentinel validation errors for entry submission.
var (
	ErrEntryTooShort = fmt.Errorf("journal entry shorter than %d characters", MinEntryLength)
	ErrEntryTooLong  = fmt.Errorf("journal entry longer than %d characters", MaxEntryLength)
	ErrEmptyUserID   = fmt.Errorf("user id must not be empty")
)

// ValidateEntryText trims and bounds-checks raw journal text.
func ValidateEntryText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) < MinEntryLength {
		return "", ErrEntryTooShort
	}
	if len(text) > MaxEntryLength {
		return "", ErrEntryTooLong
	}
	return text, nil
}

// JournalAnalysis is the canonical analysis shape: the processing response
// and the normalized form every stored record decodes into, regardless of
// which historical layout it was written in.
type JournalAnalysis struct {
	EntryID            string           `json:"entry_id"`
	UserID             string           `json:"user_id"`
	Timestamp          time.Time        `json:"timestamp"`
	NormalizedJournal  string           `json:"normalized_journal"`
	Emotions           EmotionProfile   `json:"emotions"`
	Patterns           []string         `json:"patterns"`
	TherapeuticInsight string           `json:"therapeutic_insight"`
	Crisis             CrisisAssessment `json:"crisis_assessment"`
	CrisisDetected     bool             `json:"crisis_detected"`
	EmbeddingReady     bool             `json:"embedding_ready"`
	Tags               []string         `json:"tags,omitempty"`
}

// JournalHistory is one page of a user's analysis history.
type JournalHistory struct {
	Entries     []JournalAnalysis `json:"entries"`
	TotalCount  int               `json:"total_count"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	HasNext     bool              `json:"has_next"`
	HasPrevious bool              `json:"has_previous"`
}

// CrisisEntry is the crisis-only projection of a stored record, used by the
// crisis history filter query.
type CrisisEntry struct {
	EntryID        string      `json:"entry_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Level          CrisisLevel `json:"crisis_level"`
	Indicators     []string    `json:"crisis_indicators"`
	Reasoning      string      `json:"crisis_reasoning"`
	PrimaryEmotion Emotion     `json:"primary_emotion"`
}
