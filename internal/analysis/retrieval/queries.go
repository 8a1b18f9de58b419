// internal/analysis/retrieval/queries.go
package retrieval

import (
	"regexp"
	"strings"

	"sitedesk-workers/internal/models"
)

var (
	footerHoursRe  = regexp.MustCompile(`(?i)\bfooter\b`)
	contactHoursRe = regexp.MustCompile(`(?i)\bcontact\s+page\b`)
	headerPhoneRe  = regexp.MustCompile(`(?i)\bheader\b`)
	contactFormRe  = regexp.MustCompile(`(?i)\bcontact\s*form\b`)
)

// topicQueryCap keeps retrieval light when a topic-specific rule fired.
const topicQueryCap = 3

// Build produces a short, deduplicated, lowercase query list for the
// retrieval stage. Topic-specific heuristics win over the generic
// entity-based fallback.
func Build(text string, changes []models.Change, entities []models.Entity, flags *models.FlagSet) []string {
	queries := make([]string, 0, models.MaxRetrievalQueries)
	topical := false

	add := func(q string) {
		q = strings.ToLower(strings.TrimSpace(q))
		if q == "" {
			return
		}
		for _, existing := range queries {
			if existing == q {
				return
			}
		}
		queries = append(queries, q)
	}

	fields := make(map[string]bool, len(changes))
	for _, c := range changes {
		fields[c.Field] = true
	}

	if fields[models.FieldBusinessHours] {
		topical = true
		add("hours")
		add("business hours")
		if footerHoursRe.MatchString(text) {
			add("footer hours")
		}
		if contactHoursRe.MatchString(text) {
			add("contact page hours")
		}
	}
	if fields[models.FieldGalleryPhotos] {
		topical = true
		add("gallery")
		add("before after")
		add("photos")
	}
	if flags.Has(models.FlagBugReport) && contactFormRe.MatchString(text) {
		topical = true
		add("contact form")
		add("form submissions")
		add("email notifications")
	}
	if fields[models.FieldPhoneNumber] || fields[models.FieldPhoneEmphasis] {
		topical = true
		add("phone number")
		if headerPhoneRe.MatchString(text) {
			add("header phone")
		} else {
			add("contact phone")
		}
	}
	if fields[models.FieldCouponPromotion] {
		topical = true
		add("coupon promotion")
	}
	if fields[models.FieldSiteDesign] {
		topical = true
		add("site design")
	}

	if topical {
		if len(queries) > topicQueryCap {
			queries = queries[:topicQueryCap]
		}
		return queries
	}

	// Generic fallback built from the strongest entity values.
	for i, e := range entities {
		if i >= 2 {
			break
		}
		add(e.Value)
	}
	if len(entities) >= 2 {
		add(entities[0].Value + " " + entities[1].Value)
	}
	if len(queries) > models.MaxRetrievalQueries {
		queries = queries[:models.MaxRetrievalQueries]
	}
	return queries
}
