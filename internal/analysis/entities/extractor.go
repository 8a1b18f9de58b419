// internal/analysis/entities/extractor.go

// Package entities builds the typed, weighted entity list for one message.
// Extraction runs a fixed ordered rule list, canonicalizes and deduplicates
// the raw mentions, applies the single-weak-entity boost, and caps the
// result by weight.
package entities

import (
	"regexp"
	"sort"
	"strings"

	"sitedesk-workers/internal/models"
)

// rule is one typed extraction pass. Regex rules emit every match group 1
// (or the whole match when there is no group); keyword rules emit the
// canonical label when any keyword occurs.
type rule struct {
	kind      models.EntityKind
	weight    float64
	re        *regexp.Regexp
	keywords  []string
	label     string // emitted for keyword rules; regex rules emit the match
	codeGated bool   // only fires when the message already looks code-like
}

var (
	filePathRe  = regexp.MustCompile(`\b[\w./-]+\.(?:go|ts|tsx|js|jsx|py|rb|php|sql|css|scss|html|json|ya?ml|toml|md|env)\b`)
	endpointRe  = regexp.MustCompile(`(?i)\b(?:GET|POST|PUT|PATCH|DELETE)?\s*(/api/[\w/-]+|/v\d+/[\w/-]+)`)
	configKeyRe = regexp.MustCompile(`\b([A-Z][A-Z0-9_]{2,})=`)
	moneyRe     = regexp.MustCompile(`(?i)(\$\d+(?:\.\d{2})?(?:\s?off)?|\d+%\s?off)`)
	monthRe     = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\b`)
	phoneRe     = regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`)
	emailRe     = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.]+\b`)
	scheduleRe  = regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?\s?(?:am|pm)?\s?(?:-|to|until)\s?\d{1,2}(?::\d{2})?\s?(?:am|pm))\b`)
	weekdayRe   = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|tues|wed|thu|thurs|fri|sat|sun)s?\b`)
	quotedRe    = regexp.MustCompile(`"([^"]{3,60})"`)
)

// rules is the fixed ordered extraction list. Order matters only for
// deterministic output; dedup keeps the max weight regardless of order.
var rules = []rule{
	{kind: models.KindFile, weight: 0.7, re: filePathRe, codeGated: true},
	{kind: models.KindEndpoint, weight: 0.7, re: endpointRe, codeGated: true},
	{kind: models.KindConfig, weight: 0.6, re: configKeyRe},
	{kind: models.KindMoneyValue, weight: 0.8, re: moneyRe},
	{kind: models.KindDateRange, weight: 0.6, re: monthRe},
	{kind: models.KindContactMethod, weight: 0.7, re: phoneRe},
	{kind: models.KindContactMethod, weight: 0.7, re: emailRe},
	{kind: models.KindSchedule, weight: 0.7, re: scheduleRe},
	{kind: models.KindSchedule, weight: 0.55, re: weekdayRe},

	{kind: models.KindBusinessField, weight: 0.75, label: "Business Hours",
		keywords: []string{"business hours", "opening hours", "open hours", "store hours", "hours of operation", "we are open", "we're open", "closed on"}},
	{kind: models.KindBusinessField, weight: 0.75, label: "Phone Number",
		keywords: []string{"phone number", "phone", "telephone", "call us"}},
	{kind: models.KindBusinessField, weight: 0.7, label: "Pricing",
		keywords: []string{"pricing", "price", "prices", "rates", "fees"}},
	{kind: models.KindBusinessField, weight: 0.7, label: "Coupon",
		keywords: []string{"coupon", "promo", "promotion", "discount"}},
	{kind: models.KindBusinessField, weight: 0.7, label: "Gallery Photos",
		keywords: []string{"gallery", "photos", "pictures", "images", "before and after", "before/after"}},
	{kind: models.KindBusinessField, weight: 0.65, label: "Service List",
		keywords: []string{"our services", "services we offer", "service list"}},

	{kind: models.KindPage, weight: 0.65, label: "Homepage",
		keywords: []string{"homepage", "home page", "front page", "main page"}},
	{kind: models.KindPage, weight: 0.65, label: "Contact Page",
		keywords: []string{"contact page", "contact form"}},
	{kind: models.KindPage, weight: 0.6, label: "About Page",
		keywords: []string{"about page", "about us page"}},

	{kind: models.KindPageSection, weight: 0.6, label: "Header",
		keywords: []string{"header", "top of the page", "at the top"}},
	{kind: models.KindPageSection, weight: 0.6, label: "Banner",
		keywords: []string{"banner", "hero"}},
	{kind: models.KindPageSection, weight: 0.55, label: "Footer",
		keywords: []string{"footer", "bottom of the page"}},

	{kind: models.KindContentType, weight: 0.55, label: "Blog Post",
		keywords: []string{"blog post", "blog article", "new post"}},
	{kind: models.KindContentType, weight: 0.55, label: "Testimonial",
		keywords: []string{"testimonial", "review section", "customer reviews"}},
	{kind: models.KindCollectionType, weight: 0.5, label: "Gallery",
		keywords: []string{"gallery", "portfolio"}},

	{kind: models.KindTool, weight: 0.6, label: "TypeScript",
		keywords: []string{"typescript", " ts "}},
	{kind: models.KindTool, weight: 0.6, label: "SQL",
		keywords: []string{"sql", "postgres", "postgresql", "mysql"}},
	{kind: models.KindTool, weight: 0.6, label: "Zod",
		keywords: []string{"zod"}},
	{kind: models.KindTool, weight: 0.55, label: "Stripe",
		keywords: []string{"stripe"}},
	{kind: models.KindTool, weight: 0.55, label: "WordPress",
		keywords: []string{"wordpress"}},

	{kind: models.KindConcept, weight: 0.5, label: "SEO",
		keywords: []string{"seo", "search ranking", "google ranking"}},
	{kind: models.KindConcept, weight: 0.5, label: "Analytics",
		keywords: []string{"analytics", "traffic stats"}},
}

// Extract runs the rule list over the message. codeLike is the cached
// code-likeness result; file/endpoint rules only fire when it is true so a
// dotted token in prose does not become a File entity.
func Extract(text string, codeLike bool) []models.Entity {
	lower := strings.ToLower(text)

	var raw []models.Entity
	for _, r := range rules {
		if r.codeGated && !codeLike {
			continue
		}
		switch {
		case r.re != nil:
			for _, m := range r.re.FindAllStringSubmatch(text, -1) {
				value := m[0]
				if len(m) > 1 && m[1] != "" {
					value = m[1]
				}
				raw = append(raw, models.Entity{Type: r.kind, Value: value, Weight: r.weight})
			}
		case len(r.keywords) > 0:
			for _, kw := range r.keywords {
				if strings.Contains(lower, kw) {
					raw = append(raw, models.Entity{Type: r.kind, Value: r.label, Weight: r.weight})
					break
				}
			}
		}
	}

	// Quoted phrases become ServiceName mentions when services are in play.
	if strings.Contains(lower, "service") {
		for _, m := range quotedRe.FindAllStringSubmatch(text, -1) {
			raw = append(raw, models.Entity{Type: models.KindServiceName, Value: m[1], Weight: 0.6})
		}
	}

	out := Normalize(raw)
	out = applyVaguenessBoost(out, text)
	return Cap(out, models.MaxEntities)
}

// Normalize canonicalizes values, drops noisy abstract mentions, and
// deduplicates by (type, lowercased value) keeping the higher weight.
func Normalize(in []models.Entity) []models.Entity {
	type key struct {
		kind  models.EntityKind
		value string
	}
	seen := make(map[key]int)
	out := make([]models.Entity, 0, len(in))
	for _, e := range in {
		value := canonicalize(e.Type, e.Value)
		if !keepValue(e.Type, value) {
			continue
		}
		k := key{kind: e.Type, value: strings.ToLower(value)}
		if idx, ok := seen[k]; ok {
			if e.Weight > out[idx].Weight {
				out[idx].Weight = e.Weight
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, models.Entity{Type: e.Type, Value: value, Weight: e.Weight})
	}
	return out
}

// applyVaguenessBoost lifts a lone weak entity in a short, proper-noun-free
// message to 0.78 so downstream consumers do not treat it as noise.
func applyVaguenessBoost(entities []models.Entity, text string) []models.Entity {
	if len(entities) != 1 {
		return entities
	}
	if entities[0].Weight >= 0.78 {
		return entities
	}
	if len(strings.Fields(text)) > 12 {
		return entities
	}
	if hasProperNoun(text) {
		return entities
	}
	entities[0].Weight = 0.78
	return entities
}

// Cap sorts by weight descending (type then value break ties so output is
// stable) and truncates to n.
func Cap(entities []models.Entity, n int) []models.Entity {
	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Weight != entities[j].Weight {
			return entities[i].Weight > entities[j].Weight
		}
		if entities[i].Type != entities[j].Type {
			return entities[i].Type < entities[j].Type
		}
		return entities[i].Value < entities[j].Value
	})
	if len(entities) > n {
		entities = entities[:n]
	}
	return entities
}
