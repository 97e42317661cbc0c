// Package models defines the domain types for journal analysis.
// Shapes match the Python Lumina service's models/journal.py.
package models

import "fmt"

// Emotion is one of the six core emotions (Ekman's basic emotions).
type Emotion string

const (
	EmotionJoy      Emotion = "joy"
	EmotionSadness  Emotion = "sadness"
	EmotionAnger    Emotion = "anger"
	EmotionFear     Emotion = "fear"
	EmotionDisgust  Emotion = "disgust"
	EmotionSurprise Emotion = "surprise"
)

// CoreEmotions lists the fixed six-emotion vocabulary in canonical order.
var CoreEmotions = []Emotion{
	EmotionJoy,
	EmotionSadness,
	EmotionAnger,
	EmotionFear,
	EmotionDisgust,
	EmotionSurprise,
}

// EmotionDefinitions gives the short definition used in analysis prompts.
var EmotionDefinitions = map[Emotion]string{
	EmotionJoy:      "Happiness, contentment, satisfaction, pleasure",
	EmotionSadness:  "Grief, disappointment, melancholy, sorrow",
	EmotionAnger:    "Frustration, irritation, rage, annoyance",
	EmotionFear:     "Anxiety, worry, panic, nervousness",
	EmotionDisgust:  "Revulsion, contempt, aversion, distaste",
	EmotionSurprise: "Shock, amazement, confusion, astonishment",
}

// Valid reports whether e is one of the six core emotions.
func (e Emotion) Valid() bool {
	_, ok := EmotionDefinitions[e]
	return ok
}

// EmotionScores holds the 0-10 intensity for each of the six fixed dimensions.
// All six are always present; there is no variable subset.
type EmotionScores struct {
	Joy      int `json:"joy"`
	Sadness  int `json:"sadness"`
	Anger    int `json:"anger"`
	Fear     int `json:"fear"`
	Disgust  int `json:"disgust"`
	Surprise int `json:"surprise"`
}

// Validate checks that every intensity is within [0,10].
func (s EmotionScores) Validate() error {
	for emotion, score := range s.Map() {
		if score < 0 || score > 10 {
			return fmt.Errorf("emotion %q intensity %d out of range [0,10]", emotion, score)
		}
	}
	return nil
}

// Map returns the scores keyed by emotion name.
func (s EmotionScores) Map() map[Emotion]int {
	return map[Emotion]int{
		EmotionJoy:      s.Joy,
		EmotionSadness:  s.Sadness,
		EmotionAnger:    s.Anger,
		EmotionFear:     s.Fear,
		EmotionDisgust:  s.Disgust,
		EmotionSurprise: s.Surprise,
	}
}

// EmotionProfile is the complete emotional state for one entry: a primary
// emotion, ordered secondary emotions, and the six-dimension intensity scores.
type EmotionProfile struct {
	Primary   Emotion       `json:"primary"`
	Secondary []Emotion     `json:"secondary"`
	Analysis  EmotionScores `json:"analysis"`
}

// Validate enforces the vocabulary invariant: primary and all secondary
// labels must be core emotions, and all six intensities must be in range.
func (p EmotionProfile) Validate() error {
	if !p.Primary.Valid() {
		return fmt.Errorf("primary emotion %q not in core vocabulary", p.Primary)
	}
	for _, e := range p.Secondary {
		if !e.Valid() {
			return fmt.Errorf("secondary emotion %q not in core vocabulary", e)
		}
	}
	return p.Analysis.Validate()
}
