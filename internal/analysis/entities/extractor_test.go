// internal/analysis/entities/extractor_test.go
package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sitedesk-workers/internal/models"
)

// ==========================
// Extraction Tests
// ==========================

func TestExtract_BusinessFields(t *testing.T) {
	got := Extract("Please change our business hours on the contact page", false)

	assert.True(t, containsEntity(got, models.KindBusinessField, "Business Hours"))
	assert.True(t, containsEntity(got, models.KindPage, "Contact Page"))
}

func TestExtract_CodeGatedRules(t *testing.T) {
	text := "the handler in internal/server/routes.go hits /api/leads/export"

	// Prose mode: file and endpoint rules stay off.
	prose := Extract(text, false)
	assert.False(t, containsKind(prose, models.KindFile))
	assert.False(t, containsKind(prose, models.KindEndpoint))

	// Code-like mode: both fire.
	code := Extract(text, true)
	assert.True(t, containsEntity(code, models.KindFile, "internal/server/routes.go"))
	assert.True(t, containsKind(code, models.KindEndpoint))
}

func TestExtract_ContactAndSchedule(t *testing.T) {
	got := Extract("Call us at 555-123-4567 or mail team@example.com, we are open 9am to 5pm", false)

	assert.True(t, containsEntity(got, models.KindContactMethod, "555-123-4567"))
	assert.True(t, containsEntity(got, models.KindContactMethod, "team@example.com"))
	assert.True(t, containsKind(got, models.KindSchedule))
	// "call us" also resolves the Phone Number business field.
	assert.True(t, containsEntity(got, models.KindBusinessField, "Phone Number"))
}

func TestExtract_MoneyAndCoupon(t *testing.T) {
	got := Extract("add a coupon for 20% off spring cleanings", false)

	assert.True(t, containsEntity(got, models.KindBusinessField, "Coupon"))
	assert.True(t, containsKind(got, models.KindMoneyValue))
}

func TestExtract_QuotedServiceNames(t *testing.T) {
	got := Extract(`add "Gutter Cleaning" to the services we offer`, false)

	assert.True(t, containsEntity(got, models.KindServiceName, "Gutter Cleaning"))
	assert.True(t, containsEntity(got, models.KindBusinessField, "Service List"))
}

func TestExtract_QuotedPhraseIgnoredWithoutServices(t *testing.T) {
	got := Extract(`the headline should say "Best Plumbers In Town"`, false)
	assert.False(t, containsKind(got, models.KindServiceName))
}

func TestExtract_CapsAtMax(t *testing.T) {
	text := "update the header banner and footer on the homepage and contact page: " +
		"new photos in the gallery, fix pricing, add a coupon, mention our services " +
		"and business hours and phone number 555-123-4567, plus SEO and analytics"

	got := Extract(text, false)
	assert.LessOrEqual(t, len(got), models.MaxEntities)

	// Weight-descending order must hold after capping.
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Weight, got[i].Weight)
	}
}

// ==========================
// Normalize Tests
// ==========================

func TestNormalize_SynonymsAndDedup(t *testing.T) {
	in := []models.Entity{
		{Type: models.KindBusinessField, Value: "opening hours", Weight: 0.6},
		{Type: models.KindBusinessField, Value: "Business Hours", Weight: 0.75},
		{Type: models.KindPage, Value: "front page", Weight: 0.65},
	}

	got := Normalize(in)

	assert.Len(t, got, 2)
	assert.Equal(t, "Business Hours", got[0].Value)
	assert.Equal(t, 0.75, got[0].Weight, "dedup keeps the higher weight")
	assert.Equal(t, "Homepage", got[1].Value)
}

func TestNormalize_DropsVagueAbstractMentions(t *testing.T) {
	in := []models.Entity{
		{Type: models.KindConcept, Value: "thing", Weight: 0.5},
		{Type: models.KindConcept, Value: "SEO", Weight: 0.5},
		{Type: models.KindConcept, Value: "lead capture", Weight: 0.5},
	}

	got := Normalize(in)

	assert.False(t, containsEntity(got, models.KindConcept, "thing"))
	assert.True(t, containsEntity(got, models.KindConcept, "SEO"))
	assert.True(t, containsEntity(got, models.KindConcept, "lead capture"))
}

// ==========================
// Vagueness Boost Tests
// ==========================

func TestExtract_VaguenessBoost(t *testing.T) {
	// Short message, no proper nouns, single weak entity: boosted to 0.78.
	got := Extract("the footer looks off", false)

	assert.Len(t, got, 1)
	assert.Equal(t, "Footer", got[0].Value)
	assert.Equal(t, 0.78, got[0].Weight)
}

func TestExtract_NoBoostWithProperNoun(t *testing.T) {
	got := Extract("the footer on Oakdale looks off", false)

	assert.Len(t, got, 1)
	assert.Equal(t, 0.55, got[0].Weight)
}

// ==========================
// Cap Tests
// ==========================

func TestCap_StableTieBreaks(t *testing.T) {
	in := []models.Entity{
		{Type: models.KindPage, Value: "Homepage", Weight: 0.65},
		{Type: models.KindBusinessField, Value: "Pricing", Weight: 0.7},
		{Type: models.KindPage, Value: "About Page", Weight: 0.65},
	}

	got := Cap(in, 2)

	assert.Len(t, got, 2)
	assert.Equal(t, "Pricing", got[0].Value)
	assert.Equal(t, "About Page", got[1].Value, "equal weights break ties by value")
}

// ==========================
// Helpers
// ==========================

func containsEntity(entities []models.Entity, kind models.EntityKind, value string) bool {
	for _, e := range entities {
		if e.Type == kind && e.Value == value {
			return true
		}
	}
	return false
}

func containsKind(entities []models.Entity, kind models.EntityKind) bool {
	for _, e := range entities {
		if e.Type == kind {
			return true
		}
	}
	return false
}
