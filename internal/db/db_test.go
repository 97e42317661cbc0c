// Package db provides integration tests for SurrealDB operations.
package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test_lumina",
		Database:  "test_journal",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

// testRow builds a complete current-shape row for one user.
func testRow(userID string, level int) *EntryRow {
	return &EntryRow{
		EntryID:                 uuid.NewString(),
		UserID:                  userID,
		CreatedAt:               time.Now().UTC(),
		EncryptedRawText:        "gAAAAAB-raw-token",
		EncryptedNormalizedText: "gAAAAAB-normalized-token",
		EncryptedInsights:       "gAAAAAB-insight-token",
		Emotions: map[string]any{
			"primary":   "sadness",
			"secondary": []any{"fear"},
			"analysis":  map[string]any{"joy": 1, "sadness": 6, "anger": 0, "fear": 4, "disgust": 0, "surprise": 0},
		},
		Patterns:         []string{"rumination"},
		CrisisDetected:   level >= 3,
		CrisisLevel:      intPtr(level),
		CrisisIndicators: []string{},
		CrisisReasoning:  strPtr("test reasoning"),
		Embedding:        []float32{0.1, 0.2, 0.3},
		Tags:             []string{"test"},
		Metadata:         map[string]any{"schema_version": "2"},
	}
}

func TestCreateAndGetEntry(t *testing.T) {
	ctx := context.Background()
	row := testRow("it-user-1", 1)

	require.NoError(t, testDB.CreateEntry(ctx, row))

	got, err := testDB.GetEntry(ctx, "it-user-1", row.EntryID)
	require.NoError(t, err)
	assert.Equal(t, row.EntryID, got.EntryID)
	assert.Equal(t, "gAAAAAB-raw-token", got.EncryptedRawText)
	assert.Equal(t, "sadness", got.Emotions["primary"])
	require.NotNil(t, got.CrisisLevel)
	assert.Equal(t, 1, *got.CrisisLevel)
	assert.Len(t, got.Embedding, 3)
}

func TestCreateEntryDuplicateID(t *testing.T) {
	ctx := context.Background()
	row := testRow("it-user-dup", 1)

	require.NoError(t, testDB.CreateEntry(ctx, row))
	err := testDB.CreateEntry(ctx, row)
	assert.Error(t, err, "unique index on entry_id must reject duplicates")
}

func TestGetEntryNotFound(t *testing.T) {
	ctx := context.Background()
	_, err := testDB.GetEntry(ctx, "it-user-1", uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEntriesOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	user := "it-user-paging"

	var ids []string
	for i := 0; i < 5; i++ {
		row := testRow(user, 1)
		row.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		require.NoError(t, testDB.CreateEntry(ctx, row))
		ids = append(ids, row.EntryID)
	}

	page, err := testDB.ListEntries(ctx, user, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].EntryID, "newest entry first")
	assert.Equal(t, ids[3], page[1].EntryID)

	rest, err := testDB.ListEntries(ctx, user, 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 3)

	count, err := testDB.CountEntries(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestListEntriesScopedToUser(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.CreateEntry(ctx, testRow("it-user-a", 1)))
	require.NoError(t, testDB.CreateEntry(ctx, testRow("it-user-b", 1)))

	rows, err := testDB.ListEntries(ctx, "it-user-a", 10, 0)
	require.NoError(t, err)
	for _, row := range rows {
		assert.Equal(t, "it-user-a", row.UserID)
	}
}

func TestCountEntriesEmpty(t *testing.T) {
	ctx := context.Background()
	count, err := testDB.CountEntries(ctx, "it-user-none")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestListCrisisEntries(t *testing.T) {
	ctx := context.Background()
	user := "it-user-crisis"

	require.NoError(t, testDB.CreateEntry(ctx, testRow(user, 1)))
	require.NoError(t, testDB.CreateEntry(ctx, testRow(user, 4)))

	// Legacy shape: boolean flag set, no graded level.
	legacy := testRow(user, 1)
	legacy.CrisisLevel = nil
	legacy.CrisisDetected = true
	require.NoError(t, testDB.CreateEntry(ctx, legacy))

	since := time.Now().UTC().Add(-time.Hour)
	rows, err := testDB.ListCrisisEntries(ctx, user, since)
	require.NoError(t, err)
	require.Len(t, rows, 2, "graded level 4 and legacy boolean rows both match")

	old, err := testDB.ListCrisisEntries(ctx, user, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, old)
}

func TestWipeData(t *testing.T) {
	ctx := context.Background()
	user := "it-user-wipe"
	require.NoError(t, testDB.CreateEntry(ctx, testRow(user, 1)))

	require.NoError(t, testDB.WipeData(ctx))

	count, err := testDB.CountEntries(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
