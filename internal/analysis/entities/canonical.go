// internal/analysis/entities/canonical.go
package entities

import (
	"strings"
	"unicode"

	"sitedesk-workers/internal/models"
)

// synonyms maps lowercased raw mentions to their canonical label.
var synonyms = map[string]string{
	"per-website config":      "Per Website Configuration",
	"per website config":      "Per Website Configuration",
	"biz hours":               "Business Hours",
	"opening hours":           "Business Hours",
	"open hours":              "Business Hours",
	"store hours":             "Business Hours",
	"hours of operation":      "Business Hours",
	"phone":                   "Phone Number",
	"phone number":            "Phone Number",
	"telephone":               "Phone Number",
	"pics":                    "Photos",
	"pictures":                "Photos",
	"images":                  "Photos",
	"front page":              "Homepage",
	"home page":               "Homepage",
	"main page":               "Homepage",
	"price list":              "Pricing",
	"prices":                  "Pricing",
	"rates":                   "Pricing",
	"fees":                    "Pricing",
	"promo":                   "Coupon",
	"promotion":               "Coupon",
	"discount code":           "Coupon",
	"before and after photos": "Before/After Gallery",
	"before/after photos":     "Before/After Gallery",
}

// titleCaseKinds get their values title-cased during canonicalization.
var titleCaseKinds = map[models.EntityKind]bool{
	models.KindBusinessField: true,
	models.KindPage:          true,
	models.KindPageSection:   true,
	models.KindServiceName:   true,
	models.KindProject:       true,
	models.KindCompetitor:    true,
}

// abstractKinds drop single-word non-proper values to avoid noise.
var abstractKinds = map[models.EntityKind]bool{
	models.KindConfig:  true,
	models.KindAction:  true,
	models.KindConcept: true,
	models.KindFeature: true,
	models.KindProject: true,
	models.KindRole:    true,
}

// canonicalize normalizes an extracted value: trim, collapse whitespace,
// apply the synonym table, title-case where the kind calls for it.
func canonicalize(kind models.EntityKind, value string) string {
	v := strings.Join(strings.Fields(strings.TrimSpace(value)), " ")
	if v == "" {
		return ""
	}
	if mapped, ok := synonyms[strings.ToLower(v)]; ok {
		return mapped
	}
	if titleCaseKinds[kind] {
		return titleCase(v)
	}
	return v
}

// keepValue enforces the abstract-kind noise rule: a lone lowercase word is
// too vague to be a Config/Action/Concept/Feature/Project/Role entity.
func keepValue(kind models.EntityKind, value string) bool {
	if value == "" {
		return false
	}
	if !abstractKinds[kind] {
		return true
	}
	if strings.Contains(value, " ") {
		return true
	}
	first, _ := firstRune(value)
	return unicode.IsUpper(first)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) == 0 {
			continue
		}
		// Keep all-caps tokens (acronyms, "SEO") as they are.
		if w == strings.ToUpper(w) && len(w) > 1 {
			continue
		}
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

// hasProperNoun reports whether the text mentions a capitalized token outside
// sentence-initial position (a crude proper-noun check used by the vagueness
// rule).
func hasProperNoun(text string) bool {
	words := strings.Fields(text)
	for i, w := range words {
		if i == 0 {
			continue
		}
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if trimmed == "" {
			continue
		}
		first, _ := firstRune(trimmed)
		if unicode.IsUpper(first) && strings.ToUpper(trimmed) != trimmed {
			return true
		}
	}
	return false
}
