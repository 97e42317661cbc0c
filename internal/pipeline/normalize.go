package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/luminahealth/lumina-go/internal/metrics"
)

const normalizePrompt = `You are a mental health AI assistant. Normalize this journal entry by making vague statements clearer while preserving the person's authentic voice and emotional expression.

GUIDELINES:
- Keep their authentic voice - don't change their style
- Make vague statements more specific (e.g., "felt bad" -> "felt anxious and overwhelmed")
- Add context where entries are unclear
- Preserve all emotional content
- Structure fragmented thoughts coherently
- Do NOT analyze or interpret - only clarify

Raw journal entry:
%q

Provide only the normalized version - no analysis or commentary:`

// analysisWords is the contamination denylist: if the model slipped from
// clarifying into analyzing, any of these show up and the output is
// discarded in favor of the raw entry.
var analysisWords = []string{"suggests", "indicates", "shows", "reveals", "pattern", "recommend"}

// normalize rewrites the raw entry into clearer prose. Degradable: any
// failure (call error, timeout, contaminated output) falls back to the raw
// entry and processing continues.
func (p *Pipeline) normalize(ctx context.Context, jc *Context) error {
	callCtx, cancel := p.stageContext(ctx)
	defer cancel()

	start := time.Now()
	out, err := p.gen.Generate(callCtx, fmt.Sprintf(normalizePrompt, jc.RawEntry))
	if err != nil {
		p.recordFailure(metrics.OpNormalize)
		p.logger.Warn("normalization failed, using raw entry",
			"stage", StageNormalize, "user_id", jc.UserID, "error", err)
		jc.NormalizedEntry = jc.RawEntry
		jc.markDegraded(StageNormalize)
		return nil
	}

	normalized := strings.TrimSpace(out)
	if normalized == "" || contaminated(normalized) {
		p.recordFailure(metrics.OpNormalize)
		p.logger.Warn("analysis detected in normalization, using raw entry",
			"stage", StageNormalize, "user_id", jc.UserID)
		jc.NormalizedEntry = jc.RawEntry
		jc.markDegraded(StageNormalize)
		return nil
	}

	p.recordTiming(metrics.OpNormalize, time.Since(start))
	jc.NormalizedEntry = normalized
	p.logger.Info("entry normalized", "stage", StageNormalize, "user_id", jc.UserID)
	return nil
}

// contaminated reports whether normalized text contains analytic language.
func contaminated(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range analysisWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
