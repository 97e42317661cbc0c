package models

import "fmt"

// CrisisLevel is the ordinal 1-5 risk grade assigned to an entry.
// Comparison semantics are explicit: IsCrisis and NeedsImmediateAction
// encode the >=3 and >=4 thresholds used everywhere downstream.
type CrisisLevel int

const (
	// LevelNone means no crisis indicators, normal emotional expression.
	LevelNone CrisisLevel = 1
	// LevelMild means mild distress; monitoring recommended.
	LevelMild CrisisLevel = 2
	// LevelModerate means moderate concern; check-in within 24-48 hours.
	LevelModerate CrisisLevel = 3
	// LevelHigh means high risk; immediate intervention needed.
	LevelHigh CrisisLevel = 4
	// LevelImminent means imminent danger; emergency response required.
	LevelImminent CrisisLevel = 5
)

// Valid reports whether l is within the 1-5 scale.
func (l CrisisLevel) Valid() bool {
	return l >= LevelNone && l <= LevelImminent
}

// IsCrisis reports whether the level counts as a detected crisis (>= 3).
func (l CrisisLevel) IsCrisis() bool {
	return l >= LevelModerate
}

// NeedsImmediateAction reports whether intervention is required (>= 4).
func (l CrisisLevel) NeedsImmediateAction() bool {
	return l >= LevelHigh
}

func (l CrisisLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelMild:
		return "mild"
	case LevelModerate:
		return "moderate"
	case LevelHigh:
		return "high"
	case LevelImminent:
		return "imminent"
	default:
		return fmt.Sprintf("invalid(%d)", int(l))
	}
}

// CrisisAssessment is the graded risk assessment for one entry.
type CrisisAssessment struct {
	Level                 CrisisLevel `json:"level"`
	Indicators            []string    `json:"indicators"`
	Reasoning             string      `json:"reasoning"`
	ImmediateActionNeeded bool        `json:"immediate_action_needed"`
	RecommendedResources  []string    `json:"recommended_resources"`
}

// Validate checks the level range and the immediate-action invariant.
func (a CrisisAssessment) Validate() error {
	if !a.Level.Valid() {
		return fmt.Errorf("crisis level %d out of range [1,5]", int(a.Level))
	}
	if a.ImmediateActionNeeded != a.Level.NeedsImmediateAction() {
		return fmt.Errorf("immediate_action_needed=%t inconsistent with level %d",
			a.ImmediateActionNeeded, int(a.Level))
	}
	return nil
}

// CrisisDetected derives the boolean used by downstream consumers.
func (a CrisisAssessment) CrisisDetected() bool {
	return a.Level.IsCrisis()
}
