package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// EntryRow mirrors one journal_entry record as stored. Crisis fields are
// pointers because legacy records (written before graded assessment) carry
// only the crisis_detected boolean.
type EntryRow struct {
	ID                      *surrealmodels.RecordID `json:"id,omitempty"`
	EntryID                 string                  `json:"entry_id"`
	UserID                  string                  `json:"user_id"`
	CreatedAt               time.Time               `json:"created_at"`
	EncryptedRawText        string                  `json:"encrypted_raw_text"`
	EncryptedNormalizedText string                  `json:"encrypted_normalized_text"`
	EncryptedInsights       string                  `json:"encrypted_insights"`
	Emotions                map[string]any          `json:"emotions"`
	Patterns                []string                `json:"patterns"`
	CrisisDetected          bool                    `json:"crisis_detected"`
	CrisisLevel             *int                    `json:"crisis_level,omitempty"`
	CrisisIndicators        []string                `json:"crisis_indicators,omitempty"`
	CrisisReasoning         *string                 `json:"crisis_reasoning,omitempty"`
	Embedding               []float32               `json:"embedding_vector,omitempty"`
	Tags                    []string                `json:"tags"`
	Metadata                map[string]any          `json:"metadata,omitempty"`
}

// CreateEntry inserts one journal entry row.
func (c *Client) CreateEntry(ctx context.Context, row *EntryRow) error {
	_, err := surrealdb.Query[[]EntryRow](ctx, c.db, `
		CREATE journal_entry CONTENT $data
	`, map[string]any{"data": row})
	if err != nil {
		return fmt.Errorf("create entry: %w", wrapQueryError(err))
	}
	return nil
}

// GetEntry retrieves one entry by its entry_id, scoped to the owning user.
// Returns ErrNotFound when no such entry exists.
func (c *Client) GetEntry(ctx context.Context, userID, entryID string) (*EntryRow, error) {
	results, err := surrealdb.Query[[]EntryRow](ctx, c.db, `
		SELECT * FROM journal_entry WHERE user_id = $user AND entry_id = $entry LIMIT 1
	`, map[string]any{"user": userID, "entry": entryID})
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// ListEntries returns a user's entries ordered newest first.
func (c *Client) ListEntries(ctx context.Context, userID string, limit, offset int) ([]EntryRow, error) {
	results, err := surrealdb.Query[[]EntryRow](ctx, c.db, `
		SELECT * FROM journal_entry
		WHERE user_id = $user
		ORDER BY created_at DESC
		LIMIT $limit START $offset
	`, map[string]any{"user": userID, "limit": limit, "offset": offset})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []EntryRow{}, nil
	}
	return (*results)[0].Result, nil
}

type countRow struct {
	Count int `json:"count"`
}

// CountEntries returns the total number of entries for a user.
func (c *Client) CountEntries(ctx context.Context, userID string) (int, error) {
	results, err := surrealdb.Query[[]countRow](ctx, c.db, `
		SELECT count() AS count FROM journal_entry WHERE user_id = $user GROUP ALL
	`, map[string]any{"user": userID})
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}

// ListCrisisEntries returns a user's crisis-graded entries (level >= 3)
// since the cutoff, highest level first. Legacy rows surface through their
// crisis_detected boolean.
func (c *Client) ListCrisisEntries(ctx context.Context, userID string, since time.Time) ([]EntryRow, error) {
	results, err := surrealdb.Query[[]EntryRow](ctx, c.db, `
		SELECT * FROM journal_entry
		WHERE user_id = $user
		  AND created_at >= $since
		  AND (crisis_level >= 3 OR (crisis_level IS NONE AND crisis_detected = true))
		ORDER BY crisis_level DESC, created_at DESC
	`, map[string]any{"user": userID, "since": since})
	if err != nil {
		return nil, fmt.Errorf("list crisis entries: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []EntryRow{}, nil
	}
	return (*results)[0].Result, nil
}
