// internal/analysis/changes/rules.go
package changes

import (
	"regexp"
	"strings"
)

// Weekday canonicalization: abbreviated tokens map to the long form used in
// change values ("fri" -> "Friday").
var weekdayCanonical = map[string]string{
	"mon": "Monday", "monday": "Monday",
	"tue": "Tuesday", "tues": "Tuesday", "tuesday": "Tuesday",
	"wed": "Wednesday", "wednesday": "Wednesday",
	"thu": "Thursday", "thurs": "Thursday", "thursday": "Thursday",
	"fri": "Friday", "friday": "Friday",
	"sat": "Saturday", "saturday": "Saturday",
	"sun": "Sunday", "sunday": "Sunday",
}

var (
	phoneTokenRe = regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`)

	// "says/shows/listed/states/claims ... should/must/to be"
	contrastFramedRe = regexp.MustCompile(`(?is)\b(says|shows|listed|states|claims)\b.+\b(should|must|to be)\b`)
	contrastButRe    = regexp.MustCompile(`(?i)\bbut\s+(actually|it\s+should|should\s+be)\b`)

	weekdayTokenRe = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues?|wed|thur?s?|fri|sat|sun)s?\b`)

	// "says/shows/listed ..." frames the currently displayed value.
	framingVerbRe   = regexp.MustCompile(`(?i)\b(says|shows|listed|states|claims)\b`)
	explicitStateRe = regexp.MustCompile(`(?i)\bwe(?:'re| are)\s+(open|closed)\b`)

	openCueRe   = regexp.MustCompile(`(?i)(\bopen\b|not\s+closed)`)
	closedCueRe = regexp.MustCompile(`(?i)\bclosed\b`)

	mediaNounRe = regexp.MustCompile(`(?i)\b(photos?|pictures?|images?|gallery|before[\s/-]?and[\s/-]?afters?|before[\s/-]?afters?)\b`)
	mediaVerbRe = regexp.MustCompile(`(?i)\b(replace|swap|update|remove|take\s+(off|down)|delete|change)\b`)

	pricingKeywordRe = regexp.MustCompile(`(?i)\b(prices?|pricing|rates?|fees?)\b`)
	pricingRaiseRe   = regexp.MustCompile(`(?i)\b(raise|raising|increase|increasing|bump(ing)?|go(ing)?\s+up)\b`)
	percentRe        = regexp.MustCompile(`(\d+)\s?%`)
	allServicesRe    = regexp.MustCompile(`(?is)\b(all|every|entire|across)\b[^.!?]*\bservices?\b`)

	quotedPhraseRe    = regexp.MustCompile(`"([^"]{3,60})"`)
	addToServicesRe   = regexp.MustCompile(`(?i)\badd\s+(?:that\s+we\s+do\s+)?(.+?)\s+to\s+(?:our\s+)?services\b`)
	addWeDoRe         = regexp.MustCompile(`(?i)\badd\s+(?:that\s+we\s+do\s+)([\w\s/&-]{3,50})`)
	homepageMentionRe = regexp.MustCompile(`(?i)\b(home\s?page|front\s+page|main\s+page)\b`)

	positionCueRe  = regexp.MustCompile(`(?i)\b(top|header|banner|hero)\b`)
	emphasisTermRe = regexp.MustCompile(`(?i)\b(24/7|24-7|around\s+the\s+clock|emergency)\b`)

	phoneMentionRe  = regexp.MustCompile(`(?i)\bphone(\s+number)?\b`)
	phoneBiggerRe   = regexp.MustCompile(`(?i)\b(bigger|larger|bold(er)?|more\s+prominent|stand\s+out)\b`)

	designVerbRe   = regexp.MustCompile(`(?i)\b(make|update|redesign|refresh|modernize|revamp)\b`)
	designNounRe   = regexp.MustCompile(`(?i)\b(site|website|design|look|layout)\b`)
	moreModernRe   = regexp.MustCompile(`(?i)\bmore\s+modern\b`)
	couponCueRe    = regexp.MustCompile(`(?i)\b(coupon|promo(tion)?|discount)\b`)
	amountOffRe    = regexp.MustCompile(`(?i)(\$\d+(?:\.\d{2})?)\s?off`)
	percentOffRe   = regexp.MustCompile(`(?i)(\d+)\s?%\s?off`)
	bareAmountRe   = regexp.MustCompile(`\$\d+(?:\.\d{2})?`)
	monthTokenRe   = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\b`)
)

// canonicalWeekday resolves a matched weekday token to its long form.
func canonicalWeekday(token string) string {
	t := strings.ToLower(strings.TrimSuffix(token, "s"))
	if day, ok := weekdayCanonical[t]; ok {
		return day
	}
	return ""
}

// firstWeekday finds the first weekday token in document order.
func firstWeekday(text string) string {
	m := weekdayTokenRe.FindString(text)
	if m == "" {
		return ""
	}
	return canonicalWeekday(m)
}
