package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/luminahealth/lumina-go/internal/metrics"
	"github.com/luminahealth/lumina-go/internal/models"
	"github.com/luminahealth/lumina-go/internal/resources"
)

const crisisPromptTemplate = `You are a crisis intervention specialist. Assess this journal entry for crisis indicators.

CRISIS LEVELS:
1 = No crisis indicators - normal emotional expression
2 = Mild distress - monitoring recommended, no immediate action needed
3 = Moderate concern - check-in recommended within 24-48 hours
4 = High risk - immediate intervention needed, contact crisis services
5 = Imminent danger - emergency response required immediately

LOOK FOR:
- Suicidal ideation (thoughts of death, wanting to die)
- Self-harm indicators (cutting, burning, other self-injury)
- Hopelessness and helplessness
- Social withdrawal and isolation
- Substance abuse escalation
- Psychotic symptoms
- Plans, means, or timeline for self-harm
- Giving away possessions or saying goodbye

Journal Entry: %q

Provide assessment in this EXACT JSON format:
{
    "level": 1-5,
    "indicators": ["list of specific crisis indicators found, or empty list if none"],
    "reasoning": "Brief explanation of the assessment",
    "immediate_action_needed": true/false,
    "recommended_resources": ["list of appropriate resources based on level"]
}

CRITICAL: Respond ONLY with valid JSON. Be thorough but not overly cautious.`

// crisisKeywords is the Tier-2 fallback list. Substring matching is
// case-insensitive over raw plus normalized text.
var crisisKeywords = []string{
	"suicide", "kill myself", "end it all", "want to die",
	"hurt myself", "self harm", "cut myself", "overdose",
	"no point living", "better off dead", "end my life",
}

// assessCrisis runs the two-tier risk classifier. Never fatal: a Tier-1
// failure always degrades to the keyword fallback, because crisis detection
// must not block the rest of the analysis from completing.
func (p *Pipeline) assessCrisis(ctx context.Context, jc *Context) error {
	assessment, ok := p.assessCrisisTier1(ctx, jc)
	if !ok {
		start := time.Now()
		assessment = fallbackCrisisDetection(jc.RawEntry, jc.NormalizedEntry)
		p.recordTiming(metrics.OpCrisisFallback, time.Since(start))
		jc.markDegraded(StageCrisis)
	}

	// Resources come from the deterministic per-level lookup, and the
	// immediate-action flag is pinned to the level, whatever the model said.
	assessment.ImmediateActionNeeded = assessment.Level.NeedsImmediateAction()
	assessment.RecommendedResources = resources.ForLevel(assessment.Level)
	if assessment.Indicators == nil {
		assessment.Indicators = []string{}
	}
	jc.Crisis = assessment

	if assessment.Level.NeedsImmediateAction() {
		p.logger.Warn("high-risk entry flagged for external handling",
			"stage", StageCrisis, "user_id", jc.UserID,
			"crisis_level", int(assessment.Level), "immediate_action", true)
	} else if assessment.Level.IsCrisis() {
		p.logger.Warn("crisis level detected",
			"stage", StageCrisis, "user_id", jc.UserID,
			"crisis_level", int(assessment.Level), "reasoning", assessment.Reasoning)
	}
	return nil
}

// assessCrisisTier1 asks the model for a graded assessment. The bool result
// reports whether a valid assessment was produced.
func (p *Pipeline) assessCrisisTier1(ctx context.Context, jc *Context) (models.CrisisAssessment, bool) {
	if !p.crisisLLM {
		return models.CrisisAssessment{}, false
	}

	callCtx, cancel := p.stageContext(ctx)
	defer cancel()

	start := time.Now()
	out, err := p.gen.Generate(callCtx, fmt.Sprintf(crisisPromptTemplate, jc.NormalizedEntry))
	if err != nil {
		p.recordFailure(metrics.OpCrisisTier1)
		p.logger.Warn("crisis assessment failed, using keyword fallback",
			"stage", StageCrisis, "user_id", jc.UserID, "error", err)
		return models.CrisisAssessment{}, false
	}

	var assessment models.CrisisAssessment
	if err := json.Unmarshal([]byte(stripFences(out)), &assessment); err != nil {
		p.recordFailure(metrics.OpCrisisTier1)
		p.logger.Warn("invalid JSON in crisis assessment, using keyword fallback",
			"stage", StageCrisis, "user_id", jc.UserID, "error", err)
		return models.CrisisAssessment{}, false
	}
	if !assessment.Level.Valid() {
		p.recordFailure(metrics.OpCrisisTier1)
		p.logger.Warn("crisis level out of range, using keyword fallback",
			"stage", StageCrisis, "user_id", jc.UserID, "level", int(assessment.Level))
		return models.CrisisAssessment{}, false
	}

	p.recordTiming(metrics.OpCrisisTier1, time.Since(start))
	return assessment, true
}

// fallbackCrisisDetection is the Tier-2 keyword heuristic: any keyword match
// yields level 4 with the high-risk resource set, otherwise level 1 with
// nothing flagged.
func fallbackCrisisDetection(rawEntry, normalizedEntry string) models.CrisisAssessment {
	text := strings.ToLower(rawEntry + " " + normalizedEntry)
	for _, keyword := range crisisKeywords {
		if strings.Contains(text, keyword) {
			return models.CrisisAssessment{
				Level:      models.LevelHigh,
				Indicators: []string{"Crisis keywords detected"},
				Reasoning:  "Keyword-based detection triggered",
			}
		}
	}
	return models.CrisisAssessment{
		Level:      models.LevelNone,
		Indicators: []string{},
		Reasoning:  "No crisis indicators detected",
	}
}
