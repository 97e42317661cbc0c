package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminahealth/lumina-go/internal/models"
)

func TestForLevel(t *testing.T) {
	tests := []struct {
		name  string
		level models.CrisisLevel
		want  []string
	}{
		{
			name:  "level 1 recommends nothing",
			level: models.LevelNone,
			want:  []string{},
		},
		{
			name:  "level 2 recommends nothing",
			level: models.LevelMild,
			want:  []string{},
		},
		{
			name:  "level 3 omits emergency services",
			level: models.LevelModerate,
			want:  []string{Lifeline, TextLine},
		},
		{
			name:  "level 4 leads with the lifeline",
			level: models.LevelHigh,
			want:  []string{Lifeline, TextLine, Emergency},
		},
		{
			name:  "level 5 leads with emergency services",
			level: models.LevelImminent,
			want:  []string{Emergency911, Lifeline, TextLine},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForLevel(tt.level))
		})
	}
}

func TestForLevelNeverNil(t *testing.T) {
	// Sub-threshold levels return an empty slice, not nil: the field is
	// always present in serialized records.
	got := ForLevel(models.LevelNone)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadCatalog(t *testing.T) {
	catalog := Load()

	require.NotEmpty(t, catalog.ImmediateHelp)
	require.NotEmpty(t, catalog.MentalHealthResources)
	assert.NotEmpty(t, catalog.Note)

	lifeline, ok := catalog.ImmediateHelp["suicide_prevention_lifeline"]
	require.True(t, ok, "catalog must include the 988 lifeline")
	assert.Equal(t, "988", lifeline["phone"])

	emergency, ok := catalog.ImmediateHelp["emergency"]
	require.True(t, ok)
	assert.Equal(t, "911", emergency["phone"])
}
