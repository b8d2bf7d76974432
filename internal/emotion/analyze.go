package emotion

import "fmt"

// Message is one raw conversation message prior to analysis.
type Message struct {
	ID      int    `json:"id"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	TS      string `json:"ts"`
}

// AnalyzedMessage is a message with its classification attached. Instances
// are immutable after creation; re-analysis produces new ones.
type AnalyzedMessage struct {
	ID         int        `json:"id"`
	Speaker    string     `json:"speaker"`
	Text       string     `json:"text"`
	TS         string     `json:"ts"`
	Probs      Vector     `json:"probs"`
	Dominant   string     `json:"dominant"`
	Entropy    float64    `json:"entropy"`
	Confidence Confidence `json:"confidence"`
}

// Timeline holds three aligned sequences over the conversation: the raw
// dominant-emotion intensities, their smoothed counterpart, and the indices
// flagged as peaks.
type Timeline struct {
	Raw      []float64 `json:"raw"`
	Smoothed []float64 `json:"smoothed"`
	Peaks    []int     `json:"peaks"`
}

// Analysis is the result of analyzing one conversation.
type Analysis struct {
	Messages          []AnalyzedMessage `json:"messages"`
	Timeline          Timeline          `json:"timeline"`
	SessionConfidence Confidence        `json:"session_confidence"`
}

// ClassifyFunc produces an emotion vector for a message text. The analysis
// pipeline is blind to whether the vector came from a model call or the
// rule fallback; both paths satisfy this signature.
type ClassifyFunc func(text string) (Vector, error)

// Analyze classifies every message, builds the smoothed intensity timeline
// with peak annotations, and derives the session-level confidence bucket
// from the mean per-message entropy.
//
// An empty message list is not an error: it yields empty sequences and a low
// session confidence. A classifier error or an invalid classifier output
// aborts the analysis.
func Analyze(messages []Message, classify ClassifyFunc, window int) (*Analysis, error) {
	return AnalyzeWithThreshold(messages, classify, window, DefaultPeakThreshold)
}

// AnalyzeWithThreshold is Analyze with an explicit peak threshold.
func AnalyzeWithThreshold(messages []Message, classify ClassifyFunc, window int, threshold float64) (*Analysis, error) {
	analysis := &Analysis{
		Messages: []AnalyzedMessage{},
		Timeline: Timeline{
			Raw:      []float64{},
			Smoothed: []float64{},
			Peaks:    []int{},
		},
		SessionConfidence: ConfidenceLow,
	}

	if len(messages) == 0 {
		return analysis, nil
	}

	rawIntensities := make([]float64, 0, len(messages))
	entropySum := 0.0

	for _, msg := range messages {
		probs, err := classify(msg.Text)
		if err != nil {
			return nil, fmt.Errorf("classify message %d: %w", msg.ID, err)
		}
		if err := probs.Validate(); err != nil {
			return nil, fmt.Errorf("classify message %d: %w", msg.ID, err)
		}

		entropy := Entropy(probs)
		dominant := probs.Dominant()
		rounded := round3(entropy)
		entropySum += rounded

		analysis.Messages = append(analysis.Messages, AnalyzedMessage{
			ID:         msg.ID,
			Speaker:    msg.Speaker,
			Text:       msg.Text,
			TS:         msg.TS,
			Probs:      probs,
			Dominant:   dominant,
			Entropy:    rounded,
			Confidence: ConfidenceFromEntropy(entropy),
		})

		rawIntensities = append(rawIntensities, probs[dominant])
	}

	smoothed := Smooth(rawIntensities, window)
	analysis.Timeline.Peaks = DetectPeaks(smoothed, threshold)

	analysis.Timeline.Raw = make([]float64, len(rawIntensities))
	analysis.Timeline.Smoothed = make([]float64, len(smoothed))
	for i := range rawIntensities {
		analysis.Timeline.Raw[i] = round3(rawIntensities[i])
		analysis.Timeline.Smoothed[i] = round3(smoothed[i])
	}

	meanEntropy := entropySum / float64(len(messages))
	analysis.SessionConfidence = ConfidenceFromEntropy(meanEntropy)

	return analysis, nil
}
