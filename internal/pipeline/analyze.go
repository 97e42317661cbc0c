package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/luminahealth/lumina-go/internal/metrics"
	"github.com/luminahealth/lumina-go/internal/models"
)

const analyzePromptTemplate = `You are a licensed mental health professional. Analyze this journal entry and provide structured therapeutic insights.

CORE EMOTIONS FRAMEWORK (rate 0-10 for each):
%s

Journal Entry: %q

Provide analysis in this EXACT JSON format:
{
    "emotions": {
        "primary": "one of the 6 core emotions above",
        "secondary": ["additional emotions from the 6 core emotions"],
        "analysis": {
            "joy": 0-10,
            "sadness": 0-10,
            "anger": 0-10,
            "fear": 0-10,
            "disgust": 0-10,
            "surprise": 0-10
        }
    },
    "patterns": [
        "specific cognitive or behavioral pattern 1",
        "specific cognitive or behavioral pattern 2"
    ],
    "therapeutic_insight": "A single, unified therapeutic insight that integrates the best of CBT (thought challenging), DBT (emotion regulation), and ACT (values-based action) approaches. Make it specific, actionable, and easy to understand. Start with acknowledging their experience, then provide one clear technique or strategy they can use today."
}

CRITICAL:
- Use ONLY the 6 core emotions listed above
- Provide ONE unified therapeutic insight, not separate CBT/DBT/ACT insights
- Make the insight practical and immediately actionable
- Respond ONLY with valid JSON`

// analysisResult is the strict shape the analyzer must return.
type analysisResult struct {
	Emotions           models.EmotionProfile `json:"emotions"`
	Patterns           []string              `json:"patterns"`
	TherapeuticInsight string                `json:"therapeutic_insight"`
}

// analyze scores all six emotion dimensions, extracts patterns, and produces
// the unified therapeutic insight. Fatal: malformed or unparsable output
// aborts the pipeline, since every later stage depends on this data.
func (p *Pipeline) analyze(ctx context.Context, jc *Context) error {
	prompt := fmt.Sprintf(analyzePromptTemplate, emotionRubric(), jc.NormalizedEntry)

	callCtx, cancel := p.stageContext(ctx)
	defer cancel()

	start := time.Now()
	out, err := p.gen.Generate(callCtx, prompt)
	if err != nil {
		p.recordFailure(metrics.OpAnalyze)
		return fmt.Errorf("analysis failed: %w", err)
	}

	result, err := parseAnalysis(out)
	if err != nil {
		p.recordFailure(metrics.OpAnalyze)
		return fmt.Errorf("%w: %s", ErrInvalidAnalysis, err)
	}
	p.recordTiming(metrics.OpAnalyze, time.Since(start))

	jc.Emotions = result.Emotions
	jc.Patterns = result.Patterns
	jc.Insight = result.TherapeuticInsight
	p.logger.Info("analysis completed", "stage", StageAnalyze, "user_id", jc.UserID,
		"primary_emotion", string(result.Emotions.Primary))
	return nil
}

// parseAnalysis validates loosely-typed model output into the strict result
// type at the stage boundary.
func parseAnalysis(raw string) (*analysisResult, error) {
	var result analysisResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &result); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}
	if err := result.Emotions.Validate(); err != nil {
		return nil, err
	}
	if result.TherapeuticInsight == "" {
		return nil, fmt.Errorf("missing therapeutic_insight")
	}
	if result.Patterns == nil {
		result.Patterns = []string{}
	}
	return &result, nil
}

// emotionRubric renders the six emotion definitions for the prompt.
func emotionRubric() string {
	lines := make([]string, 0, len(models.CoreEmotions))
	for _, e := range models.CoreEmotions {
		lines = append(lines, fmt.Sprintf("- %s: %s", e, models.EmotionDefinitions[e]))
	}
	return strings.Join(lines, "\n")
}

// stripFences removes a markdown code fence around a JSON payload.
// Generative models wrap JSON in fences regardless of instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
