// internal/analysis/score/score_test.go
package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sitedesk-workers/internal/models"
)

// ==========================
// Complexity / Effort Tests
// ==========================

func TestComplexity(t *testing.T) {
	tests := []struct {
		name     string
		shape    models.InputShape
		expected float64
	}{
		{"plain prose", models.InputShape{}, 0.3},
		{"error trace only", models.InputShape{HasErrorTrace: true}, 0.5},
		{"code only", models.InputShape{HasCode: true}, 0.5},
		{"error trace plus sql", models.InputShape{HasErrorTrace: true, HasSQL: true}, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Complexity(tt.shape), 0.0001)
		})
	}
}

func TestEffort(t *testing.T) {
	assert.Equal(t, models.EffortTiny, Effort(0.1))
	assert.Equal(t, models.EffortSmall, Effort(0.3))
	assert.Equal(t, models.EffortMedium, Effort(0.5))
	assert.Equal(t, models.EffortLarge, Effort(0.7))
}

// ==========================
// Time Sensitivity / Urgency Tests
// ==========================

func TestTimeSensitivity(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		contactFormBug bool
		expected       float64
	}{
		{"no cues", "update the footer sometime", false, 0.25},
		{"urgent cue", "fix this ASAP please", false, 0.8},
		{"near-term cue", "can this happen this week", false, 0.45},
		{
			name:           "contact form bug with duration floors at 0.65",
			text:           "the contact form stopped working for about a week now",
			contactFormBug: true,
			expected:       0.65,
		},
		{
			name:           "urgent wording beats the lead-loss floor",
			text:           "the contact form has been broken for a week, fix it today",
			contactFormBug: true,
			expected:       0.8,
		},
		{
			name:           "duration without a confirmed form bug stays low",
			text:           "it's been off for a week",
			contactFormBug: false,
			expected:       0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TimeSensitivity(tt.text, tt.contactFormBug), 0.0001)
		})
	}
}

func TestUrgency(t *testing.T) {
	assert.Equal(t, models.UrgencyHigh, Urgency(0.8))
	assert.Equal(t, models.UrgencyMedium, Urgency(0.65))
	assert.Equal(t, models.UrgencyMedium, Urgency(0.45))
	assert.Equal(t, models.UrgencyLow, Urgency(0.25))
}

// ==========================
// Tone Tests
// ==========================

func TestTone(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"frustrated", "this is still broken, I'm fed up", models.ToneFrustrated},
		{"frustrated beats positive", "thanks but this is unacceptable", models.ToneFrustrated},
		{"stressed", "I'm worried we're losing leads", models.ToneStressed},
		{"excited", "the new gallery is amazing!", models.ToneExcited},
		{"positive", "thanks, looks great", models.TonePositive},
		{"neutral", "change the hours on the contact page", models.ToneNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tone(tt.text))
		})
	}
}

// ==========================
// Certainty Tests
// ==========================

func TestCertainty(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		entityCount int
		expected    float64
	}{
		{"plain statement", "update the hours on the site", 0, 0.6},
		{"question", "can you update the hours?", 0, 0.45},
		{"hedged", "maybe we should change it, not sure", 0, 0.45},
		{"hedged question", "can you maybe change it?", 0, 0.3},
		{"statement with entities", "update the business hours", 2, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Certainty(tt.text, tt.entityCount), 0.0001)
		})
	}
}

// ==========================
// Duration / All Tests
// ==========================

func TestDuration(t *testing.T) {
	assert.Equal(t, "for about a week", Duration("it has been failing for about a week now"))
	assert.Empty(t, Duration("it has been failing"))
}

func TestAll(t *testing.T) {
	scores := All(
		"The contact form stopped sending emails for about 2 weeks, I'm worried we're losing leads",
		models.InputShape{},
		1,
		true,
	)

	assert.InDelta(t, 0.3, scores.Complexity, 0.0001)
	assert.Equal(t, models.EffortSmall, scores.Effort)
	assert.InDelta(t, 0.65, scores.TimeSensitivity, 0.0001)
	assert.Equal(t, models.UrgencyMedium, scores.Urgency)
	assert.Equal(t, models.ToneStressed, scores.Tone)
	assert.InDelta(t, 0.7, scores.Certainty, 0.0001)
}
