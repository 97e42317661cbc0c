package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrisisLevelThresholds(t *testing.T) {
	tests := []struct {
		level           CrisisLevel
		valid           bool
		isCrisis        bool
		immediateAction bool
	}{
		{LevelNone, true, false, false},
		{LevelMild, true, false, false},
		{LevelModerate, true, true, false},
		{LevelHigh, true, true, true},
		{LevelImminent, true, true, true},
		{CrisisLevel(0), false, false, false},
		{CrisisLevel(6), false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.level.Valid())
			assert.Equal(t, tt.isCrisis, tt.level.IsCrisis())
			assert.Equal(t, tt.immediateAction, tt.level.NeedsImmediateAction())
		})
	}
}

func TestCrisisAssessmentValidate(t *testing.T) {
	ok := CrisisAssessment{Level: LevelHigh, ImmediateActionNeeded: true}
	assert.NoError(t, ok.Validate())

	lowOK := CrisisAssessment{Level: LevelMild, ImmediateActionNeeded: false}
	assert.NoError(t, lowOK.Validate())

	// The flag must be derived from the level, never free-standing.
	inconsistent := CrisisAssessment{Level: LevelMild, ImmediateActionNeeded: true}
	assert.Error(t, inconsistent.Validate())

	inconsistentHigh := CrisisAssessment{Level: LevelImminent, ImmediateActionNeeded: false}
	assert.Error(t, inconsistentHigh.Validate())

	outOfRange := CrisisAssessment{Level: 7, ImmediateActionNeeded: true}
	assert.Error(t, outOfRange.Validate())
}

func TestCrisisDetected(t *testing.T) {
	assert.False(t, CrisisAssessment{Level: LevelMild}.CrisisDetected())
	assert.True(t, CrisisAssessment{Level: LevelModerate}.CrisisDetected())
	assert.True(t, CrisisAssessment{Level: LevelImminent}.CrisisDetected())
}
