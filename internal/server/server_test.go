package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminahealth/lumina-go/internal/metrics"
	"github.com/luminahealth/lumina-go/internal/models"
	"github.com/luminahealth/lumina-go/internal/resources"
	"github.com/luminahealth/lumina-go/internal/store"
)

type stubProcessor struct {
	analysis *models.JournalAnalysis
	err      error
	lastUser string
	lastText string
	lastTags []string
}

func (s *stubProcessor) Process(ctx context.Context, rawEntry, userID string, tags []string) (*models.JournalAnalysis, error) {
	s.lastText = rawEntry
	s.lastUser = userID
	s.lastTags = tags
	if s.err != nil {
		return nil, s.err
	}
	return s.analysis, nil
}

type stubStore struct {
	history       *models.JournalHistory
	crisisEntries []models.CrisisEntry
	err           error
	lastPage      int
	lastPageSize  int
}

func (s *stubStore) Entry(ctx context.Context, userID, entryID string) (*models.JournalAnalysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.history == nil || len(s.history.Entries) == 0 {
		return nil, store.ErrNotFound
	}
	return &s.history.Entries[0], nil
}

func (s *stubStore) History(ctx context.Context, userID string, page, pageSize int) (*models.JournalHistory, error) {
	s.lastPage = page
	s.lastPageSize = pageSize
	return s.history, s.err
}

func (s *stubStore) CrisisHistory(ctx context.Context, userID string, since time.Time) ([]models.CrisisEntry, error) {
	return s.crisisEntries, s.err
}

func sampleAnalysis() *models.JournalAnalysis {
	return &models.JournalAnalysis{
		EntryID:           "entry-1",
		UserID:            "user-1",
		Timestamp:         time.Now().UTC(),
		NormalizedJournal: "Felt calmer after the walk.",
		Emotions: models.EmotionProfile{
			Primary:  models.EmotionJoy,
			Analysis: models.EmotionScores{Joy: 6},
		},
		Patterns:           []string{},
		TherapeuticInsight: "Walks seem to settle you. Keep one short walk in tomorrow's plan.",
		Crisis: models.CrisisAssessment{
			Level:                models.LevelNone,
			Indicators:           []string{},
			RecommendedResources: []string{},
		},
	}
}

func newTestServer(t *testing.T, processor Processor, store HistoryStore) *Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	srv, err := New(processor, store, metrics.NewCollector(), logger, Config{Host: "localhost", Port: 0, CrisisDetection: true})
	require.NoError(t, err)
	return srv
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, &stubStore{}, nil, nil, Config{})
	assert.Error(t, err)

	_, err = New(&stubProcessor{}, nil, nil, nil, Config{})
	assert.Error(t, err)
}

func TestCreateEntry(t *testing.T) {
	processor := &stubProcessor{analysis: sampleAnalysis()}
	srv := newTestServer(t, processor, &stubStore{})

	body := `{"user_id": "user-1", "entry_text": "Had a calm walk in the park today", "tags": ["evening"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journal/entry", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "user-1", processor.lastUser)
	assert.Equal(t, "Had a calm walk in the park today", processor.lastText)
	assert.Equal(t, []string{"evening"}, processor.lastTags)

	var got models.JournalAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "entry-1", got.EntryID)
	assert.Equal(t, models.EmotionJoy, got.Emotions.Primary)
}

func TestCreateEntryValidationError(t *testing.T) {
	processor := &stubProcessor{err: models.ErrEntryTooShort}
	srv := newTestServer(t, processor, &stubStore{})

	body := `{"user_id": "user-1", "entry_text": "short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journal/entry", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "shorter")
}

func TestCreateEntryProcessingFailure(t *testing.T) {
	processor := &stubProcessor{err: fmt.Errorf("storage failed: connection reset")}
	srv := newTestServer(t, processor, &stubStore{})

	body := `{"user_id": "user-1", "entry_text": "A long enough journal entry."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journal/entry", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Internal details never leak to the client.
	assert.Equal(t, "journal processing failed", resp.Error)
}

func TestHistoryEndpoint(t *testing.T) {
	store := &stubStore{history: &models.JournalHistory{
		Entries:    []models.JournalAnalysis{*sampleAnalysis()},
		TotalCount: 1,
		Page:       1,
		PageSize:   10,
	}}
	srv := newTestServer(t, &stubProcessor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/journal/entries?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.lastPage)
	assert.Equal(t, 10, store.lastPageSize)

	var got models.JournalHistory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.TotalCount)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "entry-1", got.Entries[0].EntryID)
}

func TestHistoryRequiresUserID(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/journal/entries", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryClampsPageParams(t *testing.T) {
	store := &stubStore{history: &models.JournalHistory{}}
	srv := newTestServer(t, &stubProcessor{}, store)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/journal/entries?user_id=user-1&page=-3&page_size=500", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.lastPage)
	assert.Equal(t, 50, store.lastPageSize)
}

func TestGetEntryEndpoint(t *testing.T) {
	withEntries := &stubStore{history: &models.JournalHistory{
		Entries: []models.JournalAnalysis{*sampleAnalysis()},
	}}
	srv := newTestServer(t, &stubProcessor{}, withEntries)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/journal/entries/entry-1?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.JournalAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "entry-1", got.EntryID)
}

func TestGetEntryNotFound(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/journal/entries/missing?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCrisisHistoryEndpoint(t *testing.T) {
	store := &stubStore{crisisEntries: []models.CrisisEntry{{
		EntryID:        "entry-9",
		Level:          models.LevelHigh,
		Indicators:     []string{"hopelessness"},
		PrimaryEmotion: models.EmotionSadness,
	}}}
	srv := newTestServer(t, &stubProcessor{}, store)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/journal/crisis/entries?user_id=user-1&days=90", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Entries    []models.CrisisEntry `json:"entries"`
		TotalCount int                  `json:"total_count"`
		PeriodDays int                  `json:"period_days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.TotalCount)
	assert.Equal(t, 90, got.PeriodDays)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, models.LevelHigh, got.Entries[0].Level)
}

func TestCrisisResourcesEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/journal/crisis/resources", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got resources.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "988", got.ImmediateHelp["suicide_prevention_lifeline"]["phone"])
	assert.NotEmpty(t, got.Note)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.True(t, got.Components["pipeline"])
	assert.True(t, got.Components["crisis_detection"])
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(0), got.EntriesTotal)
}
