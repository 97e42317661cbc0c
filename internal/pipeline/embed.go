package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/luminahealth/lumina-go/internal/metrics"
)

// generateEmbedding produces a semantic vector over the normalized entry,
// primary emotion, and patterns, for later retrieval. Entirely best-effort:
// an unconfigured embedder or any call failure leaves the vector nil and
// processing continues.
func (p *Pipeline) generateEmbedding(ctx context.Context, jc *Context) error {
	if p.embedder == nil {
		p.logger.Debug("embedder not configured, skipping embedding",
			"stage", StageEmbed, "user_id", jc.UserID)
		jc.Embedding = nil
		return nil
	}

	text := jc.NormalizedEntry + " " + string(jc.Emotions.Primary) + " " + strings.Join(jc.Patterns, " ")

	callCtx, cancel := p.stageContext(ctx)
	defer cancel()

	start := time.Now()
	vector, err := p.embedder.Embed(callCtx, text)
	if err != nil {
		p.recordFailure(metrics.OpEmbedding)
		p.logger.Warn("embedding generation failed",
			"stage", StageEmbed, "user_id", jc.UserID, "error", err)
		jc.Embedding = nil
		jc.markDegraded(StageEmbed)
		return nil
	}

	p.recordTiming(metrics.OpEmbedding, time.Since(start))
	jc.Embedding = vector
	p.logger.Info("embedding generated", "stage", StageEmbed, "user_id", jc.UserID,
		"dimension", len(vector))
	return nil
}
