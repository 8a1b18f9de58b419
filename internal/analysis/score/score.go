// internal/analysis/score/score.go

// Package score computes the heuristic scores for one message: complexity,
// effort bucket, time sensitivity, urgency, tone, and certainty.
package score

import (
	"regexp"
	"strings"

	"sitedesk-workers/internal/analysis/detect"
	"sitedesk-workers/internal/models"
)

var (
	urgentCueRe   = regexp.MustCompile(`(?i)\b(urgent|urgently|asap|as soon as possible|today|deadline|prod(uction)? (is )?down|immediately|right now)\b`)
	nearTermCueRe = regexp.MustCompile(`(?i)\b(right away|tomorrow|soon|this week|by (mon|tues|wednes|thurs|fri|satur|sun)day|end of (the )?week)\b`)

	hedgingRe = regexp.MustCompile(`(?i)\b(maybe|not sure|might|perhaps|possibly|i think|kind of|sort of)\b`)

	durationRe = regexp.MustCompile(`(?i)\b(for (about |around |over |almost )?(a|an|\d+)\s+(day|week|month|hour)s?|since (last )?\w+day|all (day|week|month))\b`)

	frustratedWords = []string{"frustrated", "annoyed", "ridiculous", "fed up", "sick of", "again!!", "still broken", "unacceptable", "angry"}
	stressedWords   = []string{"stressed", "worried", "nervous", "panicking", "freaking out", "losing", "desperate", "scared"}
	excitedWords    = []string{"excited", "can't wait", "amazing", "awesome", "love it", "thrilled"}
	positiveWords   = []string{"thanks", "thank you", "great", "appreciate", "perfect", "nice"}
)

// Complexity: base 0.3, +0.2 for error/stack-trace cues, +0.2 for
// diff/SQL/config/code presence, clamped to [0,1].
func Complexity(shape models.InputShape) float64 {
	c := 0.3
	if shape.HasErrorTrace {
		c += 0.2
	}
	if shape.HasDiff || shape.HasSQL || shape.HasConfig || shape.HasCode {
		c += 0.2
	}
	return clamp01(c)
}

// Effort buckets the complexity score.
func Effort(complexity float64) string {
	switch {
	case complexity < 0.25:
		return models.EffortTiny
	case complexity < 0.45:
		return models.EffortSmall
	case complexity < 0.7:
		return models.EffortMedium
	default:
		return models.EffortLarge
	}
}

// TimeSensitivity scores how soon the user needs movement. A contact-form
// bug with an explicit duration is a lead-loss situation and floors the
// score at 0.65 even without urgent wording.
func TimeSensitivity(text string, contactFormBug bool) float64 {
	v := 0.25
	switch {
	case urgentCueRe.MatchString(text):
		v = 0.8
	case nearTermCueRe.MatchString(text):
		v = 0.45
	}
	if contactFormBug && durationRe.MatchString(text) && v < 0.65 {
		v = 0.65
	}
	return v
}

// Urgency buckets time sensitivity.
func Urgency(timeSensitivity float64) string {
	switch {
	case timeSensitivity >= 0.7:
		return models.UrgencyHigh
	case timeSensitivity >= 0.4:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

// Tone picks the first matching tone in priority order.
func Tone(text string) string {
	lower := strings.ToLower(text)
	for _, pair := range []struct {
		tone  string
		words []string
	}{
		{models.ToneFrustrated, frustratedWords},
		{models.ToneStressed, stressedWords},
		{models.ToneExcited, excitedWords},
		{models.TonePositive, positiveWords},
	} {
		for _, w := range pair.words {
			if strings.Contains(lower, w) {
				return pair.tone
			}
		}
	}
	return models.ToneNeutral
}

// Certainty: base 0.6, -0.15 for questions, -0.15 for hedging, +0.10 when
// any entity was found, clamped to [0,1].
func Certainty(text string, entityCount int) float64 {
	c := 0.6
	if detect.IsQuestion(text) {
		c -= 0.15
	}
	if hedgingRe.MatchString(text) {
		c -= 0.15
	}
	if entityCount > 0 {
		c += 0.10
	}
	return clamp01(c)
}

// Duration returns the explicit duration phrase, if any ("for about a
// week"). Used by issue summaries and the lead-loss escalation.
func Duration(text string) string {
	return durationRe.FindString(text)
}

// All computes the full score block.
func All(text string, shape models.InputShape, entityCount int, contactFormBug bool) models.Scores {
	complexity := Complexity(shape)
	ts := TimeSensitivity(text, contactFormBug)
	return models.Scores{
		Complexity:      complexity,
		Effort:          Effort(complexity),
		TimeSensitivity: ts,
		Tone:            Tone(text),
		Urgency:         Urgency(ts),
		Certainty:       Certainty(text, entityCount),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
