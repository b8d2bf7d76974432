package emotion

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when aggregation is requested over zero
// messages; the mean emotion of an empty conversation is undefined.
var ErrEmptyInput = errors.New("no analyzed messages to aggregate")

// Summary is the aggregate emotional profile of a conversation.
type Summary struct {
	DominantEmotion string  `json:"dominant_emotion"`
	Scores          Vector  `json:"scores"`
	Confidence      float64 `json:"confidence"`
	SummaryText     string  `json:"summary_text,omitempty"`
}

// Aggregate combines the analyzed messages of a conversation into a single
// deterministic summary. Per-category scores are the unweighted mean across
// messages, accumulated in input order so repeated calls over the same list
// produce bit-identical floating-point results. The scalar confidence is
// 1 minus the mean per-message entropy (rounded to two decimals); the
// confidence bucket driving the summary text is the mean entropy passed once
// through the standard bucket boundaries.
func Aggregate(messages []AnalyzedMessage, includeSummaryText bool) (*Summary, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyInput
	}

	for _, msg := range messages {
		if err := msg.Probs.Validate(); err != nil {
			return nil, fmt.Errorf("message %d: %w", msg.ID, err)
		}
	}

	count := float64(len(messages))
	scores := make(Vector, len(Categories))
	for _, c := range Categories {
		sum := 0.0
		for _, msg := range messages {
			sum += msg.Probs[c]
		}
		scores[c] = sum / count
	}

	entropySum := 0.0
	for _, msg := range messages {
		entropySum += msg.Entropy
	}
	meanEntropy := entropySum / count

	summary := &Summary{
		DominantEmotion: scores.Dominant(),
		Scores:          scores,
		Confidence:      round2(1.0 - meanEntropy),
	}

	if includeSummaryText {
		summary.SummaryText = summaryText(summary.DominantEmotion, scores, ConfidenceFromEntropy(meanEntropy))
	}

	return summary, nil
}

// summaryText renders the fixed template for a conversation summary. It is
// fully determined by the dominant emotion, the secondary emotion, and the
// aggregate confidence bucket; any model-authored prose lives outside the
// core.
func summaryText(dominant string, scores Vector, bucket Confidence) string {
	var text string
	switch bucket {
	case ConfidenceHigh:
		text = "The conversation is strongly dominated by " + dominant
	case ConfidenceMedium:
		text = "The conversation shows " + dominant
	default:
		text = "The conversation has mixed emotions with some " + dominant
	}

	if secondary := secondaryEmotion(dominant, scores); secondary != "" {
		text += ", with occasional " + secondary
	}

	return text + "."
}

// secondaryEmotion returns the strongest non-dominant category, or "" when
// nothing else carries more than 0.1 of the mass. Ties follow canonical
// category order, same as Dominant.
func secondaryEmotion(dominant string, scores Vector) string {
	secondary := ""
	best := 0.1
	for _, c := range Categories {
		if c == dominant {
			continue
		}
		if scores[c] > best {
			secondary = c
			best = scores[c]
		}
	}
	return secondary
}
