// internal/analysis/changes/extractor.go

// Package changes finds contrastive "current vs. desired" statements and
// other concrete edit requests in a message. Detectors run in a fixed order
// from most to least specific; the first detector to claim a field wins, and
// bare fallbacks only fire when no structured detector did.
package changes

import (
	"fmt"
	"strings"

	"sitedesk-workers/internal/models"
)

// Result accumulates everything the change detectors observe: the normalized
// change items plus side observations (entities, clarifiers) the rest of the
// pipeline merges in.
type Result struct {
	Changes    []models.Change
	Entities   []models.Entity
	Clarifiers []models.Clarifier
}

// detector is one pattern pass. Detectors appear in priority order; emitting
// a change for a field already claimed is a no-op.
type detector struct {
	name string
	run  func(text, lower string, r *Result, claimed map[string]bool)
}

var detectors = []detector{
	{name: "contrastive_phone", run: detectContrastivePhone},
	{name: "weekday_correction", run: detectWeekdayCorrection},
	{name: "media_swap", run: detectMediaSwap},
	{name: "pricing", run: detectPricing},
	{name: "service_addition", run: detectServiceAddition},
	{name: "header_banner", run: detectHeaderBanner},
	{name: "phone_emphasis", run: detectPhoneEmphasis},
	{name: "design_and_coupon", run: detectDesignAndCoupon},
	{name: "weekday_fallback", run: detectWeekdayFallback},
}

// Extract runs every detector and applies the global caps: at most 2 change
// items (detector order) and at most 2 clarifiers.
func Extract(text string) Result {
	lower := strings.ToLower(text)
	r := Result{}
	claimed := make(map[string]bool)

	for _, d := range detectors {
		d.run(text, lower, &r, claimed)
	}

	if len(r.Changes) > models.MaxChanges {
		r.Changes = r.Changes[:models.MaxChanges]
	}
	if len(r.Clarifiers) > models.MaxClarifiers {
		r.Clarifiers = r.Clarifiers[:models.MaxClarifiers]
	}
	return r
}

// addChange appends a change unless its field was already claimed by an
// earlier (more specific) detector.
func addChange(r *Result, claimed map[string]bool, c models.Change) {
	if claimed[c.Field] {
		return
	}
	claimed[c.Field] = true
	r.Changes = append(r.Changes, c)
}

func addClarifier(r *Result, question string, weight float64) {
	for _, c := range r.Clarifiers {
		if c.Question == question {
			return
		}
	}
	r.Clarifiers = append(r.Clarifiers, models.Clarifier{Question: question, Weight: weight})
}

// detectContrastivePhone handles "shows 509-555-0101 but it should be
// 509-555-0199": two phone-shaped tokens, a contrast cue, and a phone
// mention. The numbers are taken in document order as current then desired.
func detectContrastivePhone(text, lower string, r *Result, claimed map[string]bool) {
	numbers := phoneTokenRe.FindAllString(text, -1)
	if len(numbers) < 2 {
		return
	}
	if !contrastFramedRe.MatchString(text) && !contrastButRe.MatchString(text) {
		return
	}
	// Two phone-shaped tokens in a contrast frame already imply the phone
	// field; an explicit "phone" mention just raises confidence.
	weight := 0.9
	if strings.Contains(lower, "phone") {
		weight = 0.95
	}
	addChange(r, claimed, models.Change{
		Field:   models.FieldPhoneNumber,
		Current: numbers[0],
		Desired: numbers[1],
		Weight:  weight,
	})
}

// detectWeekdayCorrection resolves weekday open/closed statements. When the
// displayed value is identified ("site says closed on Fridays"), it is
// recorded as current with negated polarity; the desired value is not
// inferred. An explicit "we are open/closed" with no displayed framing is
// recorded literally as desired.
func detectWeekdayCorrection(text, lower string, r *Result, claimed map[string]bool) {
	day := firstWeekday(text)
	if day == "" {
		return
	}
	hasOpen := openCueRe.MatchString(text)
	hasClosed := closedCueRe.MatchString(text)
	if !hasOpen && !hasClosed {
		return
	}

	displayed := displayedHoursValue(text)

	if displayed != "" {
		addChange(r, claimed, models.Change{
			Field:    models.FieldBusinessHours,
			Current:  fmt.Sprintf("%s %ss", displayed, day),
			Polarity: models.PolarityNegated,
			Weight:   0.9,
		})
		return
	}

	if m := explicitStateRe.FindStringSubmatch(text); m != nil {
		state := "Open"
		if strings.EqualFold(m[1], "closed") {
			state = "Closed"
		}
		addChange(r, claimed, models.Change{
			Field:   models.FieldBusinessHours,
			Desired: fmt.Sprintf("%s %ss", state, day),
			Weight:  0.85,
		})
	}
}

// displayedHoursValue finds a "says/shows/listed/states/claims" frame and
// returns the open/closed cue nearest after it: that cue is the value the
// site currently displays. Empty when no frame is present.
func displayedHoursValue(text string) string {
	loc := framingVerbRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := strings.ToLower(text[loc[1]:])
	// Stop at sentence boundary; the frame does not reach across sentences.
	if cut := strings.IndexAny(rest, ".!?"); cut >= 0 {
		rest = rest[:cut]
	}
	openIdx := strings.Index(rest, "open")
	closedIdx := strings.Index(rest, "closed")
	// "closed" contains no "open", but guard ordering explicitly.
	switch {
	case closedIdx >= 0 && (openIdx < 0 || closedIdx < openIdx):
		return "Closed"
	case openIdx >= 0:
		return "Open"
	}
	return ""
}

// detectWeekdayFallback emits the bare "Open <Weekday>s" change only when no
// structured weekday detector claimed Business Hours.
func detectWeekdayFallback(text, lower string, r *Result, claimed map[string]bool) {
	if claimed[models.FieldBusinessHours] {
		return
	}
	day := firstWeekday(text)
	if day == "" {
		return
	}
	if !openCueRe.MatchString(text) {
		return
	}
	addChange(r, claimed, models.Change{
		Field:  models.FieldBusinessHours,
		Value:  fmt.Sprintf("Open %ss", day),
		Weight: 0.6,
	})
}

// detectMediaSwap pairs a media noun with an edit verb. The asset itself is
// not retrievable from the originating channel, so a clarifier asks for a
// direct upload.
func detectMediaSwap(text, lower string, r *Result, claimed map[string]bool) {
	if !mediaNounRe.MatchString(text) || !mediaVerbRe.MatchString(text) {
		return
	}
	addChange(r, claimed, models.Change{
		Field:   models.FieldGalleryPhotos,
		Current: "Existing gallery photos",
		Desired: "Provided replacement photos",
		Weight:  0.85,
	})
	addClarifier(r, "Can you upload the new photos here directly? Images sent over text may not come through.", 0.8)
}

// detectPricing handles "raise all our prices 10% across all services".
func detectPricing(text, lower string, r *Result, claimed map[string]bool) {
	if !pricingKeywordRe.MatchString(text) || !pricingRaiseRe.MatchString(text) {
		return
	}
	desired := "Increase"
	if m := percentRe.FindStringSubmatch(text); m != nil {
		desired = fmt.Sprintf("Increase %s%%", m[1])
	}
	change := models.Change{
		Field:   models.FieldPricing,
		Desired: desired,
		Weight:  0.85,
	}
	if allServicesRe.MatchString(text) {
		change.Location = "All Services"
	}
	addChange(r, claimed, change)
}

// detectServiceAddition captures the service phrase from quoted text,
// "add X to (our) services", or "add (that we do) X" when the homepage is
// in play.
func detectServiceAddition(text, lower string, r *Result, claimed map[string]bool) {
	phrase := ""
	field := models.FieldServiceList

	if m := addToServicesRe.FindStringSubmatch(text); m != nil {
		phrase = strings.Trim(m[1], `"' `)
	} else if strings.Contains(lower, "service") {
		if m := quotedPhraseRe.FindStringSubmatch(text); m != nil {
			phrase = m[1]
		}
	}
	if phrase == "" && homepageMentionRe.MatchString(text) {
		if m := addWeDoRe.FindStringSubmatch(text); m != nil {
			phrase = strings.TrimSpace(m[1])
			field = models.FieldHomepageContent
		}
	}
	if phrase == "" {
		return
	}
	addChange(r, claimed, models.Change{
		Field:  field,
		Value:  phrase,
		Weight: 0.8,
	})
	r.Entities = append(r.Entities, models.Entity{
		Type:   models.KindServiceName,
		Value:  phrase,
		Weight: 0.7,
	})
}

// detectHeaderBanner pairs a position cue with 24/7/emergency emphasis.
func detectHeaderBanner(text, lower string, r *Result, claimed map[string]bool) {
	pos := positionCueRe.FindString(text)
	term := emphasisTermRe.FindString(text)
	if pos == "" || term == "" {
		return
	}
	addChange(r, claimed, models.Change{
		Field:      models.FieldHeaderBanner,
		Value:      term,
		SourceHint: strings.ToLower(pos),
		Weight:     0.75,
	})
}

// detectPhoneEmphasis pairs a phone mention with a visual-emphasis cue.
func detectPhoneEmphasis(text, lower string, r *Result, claimed map[string]bool) {
	if !phoneMentionRe.MatchString(text) || !phoneBiggerRe.MatchString(text) {
		return
	}
	// A contrastive number correction is about the value, not its styling.
	if claimed[models.FieldPhoneNumber] {
		return
	}
	addChange(r, claimed, models.Change{
		Field:   models.FieldPhoneEmphasis,
		Desired: "More prominent",
		Weight:  0.7,
	})
}

// detectDesignAndCoupon handles the mixed vague-design + concrete-coupon
// message. The design half is vague and flagged for clarification; the
// coupon half is concrete, with discount type resolved by priority:
// "$N off" then "N% off" then bare "$N".
func detectDesignAndCoupon(text, lower string, r *Result, claimed map[string]bool) {
	if designVerbRe.MatchString(text) && designNounRe.MatchString(text) && moreModernRe.MatchString(text) {
		addChange(r, claimed, models.Change{
			Field:          models.FieldSiteDesign,
			Desired:        "More modern",
			NeedsClarifier: true,
			Weight:         0.65,
		})
		addClarifier(r, "What should the new design feel like? A reference site or two would help.", 0.6)
	}

	if !couponCueRe.MatchString(text) {
		return
	}
	change := models.Change{
		Field:  models.FieldCouponPromotion,
		Weight: 0.85,
	}
	switch {
	case amountOffRe.MatchString(text):
		m := amountOffRe.FindStringSubmatch(text)
		change.Desired = m[1] + " off"
		change.DiscountType = models.DiscountAmountOff
	case percentOffRe.MatchString(text):
		m := percentOffRe.FindStringSubmatch(text)
		change.Desired = m[1] + "% off"
		change.DiscountType = models.DiscountPercentOff
	case bareAmountRe.MatchString(text):
		change.Desired = bareAmountRe.FindString(text)
		change.DiscountType = models.DiscountAmountOff
	default:
		change.Desired = "New promotion"
	}
	if m := monthTokenRe.FindString(text); m != "" {
		change.Timeframe = m
	}
	addChange(r, claimed, change)
	addClarifier(r, "Where should the coupon appear, and do you want a promo code attached?", 0.7)
}
