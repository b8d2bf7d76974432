package emotion

import (
	"regexp"
	"strings"
)

// fallbackRule matches a text against one emotion's keyword and emoji lists.
// Rules are evaluated in a fixed priority order; the first match wins, which
// makes behavior on multi-emotion texts deterministic. Insult-flavored
// categories (disgust, anger) outrank the rest so that "this is stupid and
// I'm sad" reads as disgust, not sadness.
type fallbackRule struct {
	emotion   string
	secondary string
	keywords  *regexp.Regexp
	emojis    []string
}

func keywordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	// Leading word boundary only: entries like "frustrat" are deliberate
	// prefixes covering frustrated/frustrating/frustration.
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)`)
}

// fallbackRules in priority order. Built once at init and never mutated.
var fallbackRules = []fallbackRule{
	{
		emotion:   "disgust",
		secondary: "anger",
		keywords:  keywordPattern("disgusted", "gross", "sick", "revolting", "nasty", "eww", "yuck", "idiot", "stupid", "dumb", "moron"),
		emojis:    []string{"🤢", "🤮", "😖", "😣"},
	},
	{
		emotion:   "anger",
		secondary: "disgust",
		keywords:  keywordPattern("angry", "mad", "furious", "irritated", "annoyed", "pissed", "hate", "ridiculous", "outrageous", "dislike", "frustrat"),
		emojis:    []string{"😡", "😠", "🤬", "😤", "💢"},
	},
	{
		emotion:   "sadness",
		secondary: "fear",
		keywords:  keywordPattern("sad", "depressed", "unhappy", "miserable", "heartbroken", "devastated", "lonely", "hurt", "crying", "blue"),
		emojis:    []string{"😢", "😭", "😔", "😞", "💔", "😿"},
	},
	{
		emotion:  "fear",
		keywords: keywordPattern("scared", "afraid", "terrified", "anxious", "worried", "nervous", "frightened", "panic"),
		emojis:   []string{"😱", "😨", "😰", "😧", "😦"},
	},
	{
		emotion:  "surprise",
		keywords: keywordPattern("surprised", "shocked", "amazed", "unexpected", "wow", "omg", "incredible"),
		emojis:   []string{"😲", "😮", "😯", "🤯"},
	},
	{
		emotion:  "joy",
		keywords: keywordPattern("happy", "excited", "wonderful", "amazing", "love", "fantastic", "excellent", "thrilled", "delighted", "glad", "joyful"),
		emojis:   []string{"😊", "😃", "😄", "😁", "😆", "🤗", "🥰", "😍", "🎉", "✨"},
	},
	{
		emotion:  "stress",
		keywords: keywordPattern("stressed", "overwhelmed", "pressure", "tense", "exhausted", "burned out"),
		emojis:   []string{"😫", "😩", "😓"},
	},
	{
		emotion:  "tension",
		keywords: keywordPattern("tension", "awkward", "uncomfortable", "uneasy"),
	},
	{
		emotion:  "anticipation",
		keywords: keywordPattern("looking forward", "can't wait", "eager", "anticipating", "hopeful", "expecting"),
		emojis:   []string{"🤩", "🥳"},
	},
}

// Sarcasm reads as hostility, not neutrality. Checked after the keyword and
// emoji rules so an explicit emotion word still wins.
var sarcasmPatterns = []*regexp.Regexp{
	regexp.MustCompile(`yeah\s+(?:right|sure|great|okay).*not`),
	regexp.MustCompile(`oh\s+(?:great|wonderful|fantastic).*\.\.\.`),
	regexp.MustCompile(`sure\s*[,.]?\s*whatever`),
	regexp.MustCompile(`fine\s*[.!]+\s*$`),
}

// ClassifyFallback produces an emotion vector from raw text using the rule
// table above. It is pure and total: any input, including the empty string,
// yields a valid vector. Used whenever the model classification path is
// unavailable, and indistinguishable from it downstream.
func ClassifyFallback(text string) Vector {
	lower := strings.ToLower(text)

	for _, rule := range fallbackRules {
		if rule.keywords.MatchString(lower) {
			return ruleVector(rule.emotion, rule.secondary)
		}
	}

	for _, rule := range fallbackRules {
		for _, emoji := range rule.emojis {
			if strings.Contains(text, emoji) {
				return ruleVector(rule.emotion, rule.secondary)
			}
		}
	}

	for _, pattern := range sarcasmPatterns {
		if pattern.MatchString(lower) {
			return sarcasmVector()
		}
	}

	// Very short text without emphasis is most likely an acknowledgment;
	// report maximal ambiguity rather than inventing an emotion.
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 10 && !strings.ContainsAny(trimmed, "!?") {
		return Uniform()
	}

	return defaultVector()
}

// ruleVector concentrates 0.90 of the mass on the matched emotion, 0.04 on
// its secondary when one is defined, and spreads the remainder evenly. The
// concentration keeps keyword matches in the high-confidence entropy bucket.
func ruleVector(dominant, secondary string) Vector {
	v := make(Vector, len(Categories))

	assigned := 0.90
	slots := len(Categories) - 1
	v[dominant] = 0.90
	if secondary != "" {
		v[secondary] = 0.04
		assigned += 0.04
		slots--
	}

	share := (1.0 - assigned) / float64(slots)
	for _, c := range Categories {
		if c != dominant && c != secondary {
			v[c] = share
		}
	}

	return v
}

func sarcasmVector() Vector {
	v := make(Vector, len(Categories))
	v["anger"] = 0.5
	v["disgust"] = 0.2
	share := 0.3 / float64(len(Categories)-2)
	for _, c := range Categories {
		if c != "anger" && c != "disgust" {
			v[c] = share
		}
	}
	return v
}

// defaultVector is the "mostly neutral" distribution returned when no rule
// matches: slightly neutral-leaning but ambiguous enough to land in the low
// confidence bucket.
func defaultVector() Vector {
	return Vector{
		"joy":          0.10,
		"sadness":      0.10,
		"anger":        0.10,
		"fear":         0.10,
		"surprise":     0.10,
		"stress":       0.08,
		"tension":      0.08,
		"disgust":      0.08,
		"anticipation": 0.10,
		"neutral":      0.16,
	}
}
