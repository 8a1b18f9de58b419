// internal/analysis/intent/classifier.go

// Package intent merges the upstream flag classification with deterministic
// heuristic upgrades, then decides the final intent label, route, and
// confidence for the turn.
package intent

import (
	"regexp"
	"strings"

	"sitedesk-workers/internal/models"
)

var (
	codeArtifactRe = regexp.MustCompile(`(?i)\b(typescript|interface|schema|sql|migration|zod)\b`)
	typeDeclRe     = regexp.MustCompile(`\btype\s+\w+\s*=`)
	explainOnlyRe  = regexp.MustCompile(`(?i)\b(explain|what is|what's|what does|what are|help me understand|how does .+ work)\b`)
	artifactVerbRe = regexp.MustCompile(`(?i)\b(write|create|generate|make|build|draft|produce|give me)\b`)

	changeVerbRe = regexp.MustCompile(`(?i)\b(change|update|fix|correct|replace|swap|edit|add|remove|delete|set)\b`)
	siteNounRe   = regexp.MustCompile(`(?i)\b(site|website|page|homepage|hours|phone|price|pricing|photo|gallery|banner|header|footer|coupon|service|listing|logo|menu)\b`)

	mediaNounRe = regexp.MustCompile(`(?i)\b(photos?|pictures?|images?|gallery|video)\b`)
	mediaVerbRe = regexp.MustCompile(`(?i)\b(replace|swap|upload|remove|delete|crop|resize)\b`)

	criticalRe = regexp.MustCompile(`(?i)\b(site (is )?down|website (is )?down|outage|hacked|security breach|can'?t (take|process) payments?|payments? (are )?(failing|down)|emergency)\b`)

	failureCueRe  = regexp.MustCompile(`(?i)\b(hasn'?t|haven'?t|stopped|not working|isn'?t working|doesn'?t work|broken|no longer|never (arrives?|sends?|shows?))\b`)
	contactFormRe = regexp.MustCompile(`(?i)\b(contact form|contact page form|lead form|enquiry form|inquiry form|form submissions?)\b`)

	docArtifactRe = regexp.MustCompile(`(?i)\b(doc|document|snippet|template|draft)\b`)
)

// Upgrade applies the heuristic flag upgrades to the upstream flag set.
// All upgrades are additive except CRITICAL, which is also removed when the
// message carries no critical language.
func Upgrade(flags *models.FlagSet, text string) {
	if wantsCodeArtifact(text) {
		flags.Add(models.FlagCodeWrite)
	}

	if changeVerbRe.MatchString(text) && siteNounRe.MatchString(text) {
		flags.Add(models.FlagContent)
		flags.Add(models.FlagChangeRequest)
	}

	if mediaNounRe.MatchString(text) && mediaVerbRe.MatchString(text) {
		flags.Add(models.FlagContent)
		flags.Add(models.FlagChangeRequest)
	}

	if criticalRe.MatchString(text) {
		flags.Add(models.FlagCritical)
	} else {
		// An upstream CRITICAL with no supporting language is a
		// misclassification; drop it.
		flags.Remove(models.FlagCritical)
	}

	if ContactFormBug(text) {
		flags.Add(models.FlagBugReport)
		flags.Add(models.FlagSiteIssue)
	}
}

// ContactFormBug reports bug-shaped contact-form language: a failure cue
// together with a contact-form cue.
func ContactFormBug(text string) bool {
	return failureCueRe.MatchString(text) && contactFormRe.MatchString(text)
}

// wantsCodeArtifact reports a code-artifact ask: artifact vocabulary or a
// `type X =` pattern, unless the message is purely an explanation request.
func wantsCodeArtifact(text string) bool {
	if !codeArtifactRe.MatchString(text) && !typeDeclRe.MatchString(text) {
		return false
	}
	if explainOnlyRe.MatchString(text) && !artifactVerbRe.MatchString(text) {
		return false
	}
	return true
}

// WantsArtifact reports whether the user is asking for a produced artifact
// (code, doc, schema) rather than an answer.
func WantsArtifact(text string) bool {
	return wantsCodeArtifact(text) || (artifactVerbRe.MatchString(text) && docArtifactRe.MatchString(text))
}

// Label picks the primary intent: the first present flag in priority order,
// then the first flag at all, then ASSISTANCE.
func Label(flags *models.FlagSet) string {
	for _, f := range models.IntentPriority {
		if flags.Has(f) {
			return f
		}
	}
	if list := flags.List(); len(list) > 0 {
		return list[0]
	}
	return models.FlagAssistance
}

// Confidence computes the intent confidence:
// base 0.5 + min(0.25, 0.08 x flags) + 0.05 entities + 0.10 code/SQL/error,
// minus 0.20 under low certainty, clamped to [0,1].
func Confidence(flags *models.FlagSet, entityCount int, shape models.InputShape, certainty float64) float64 {
	c := 0.5
	bump := 0.08 * float64(flags.Len())
	if bump > 0.25 {
		bump = 0.25
	}
	c += bump
	if entityCount > 0 {
		c += 0.05
	}
	if shape.HasCode || shape.HasSQL || shape.HasErrorTrace {
		c += 0.10
	}
	if certainty < 0.4 {
		c -= 0.20
	}
	return clamp01(c)
}

// FilterAllowed drops flags outside the configured vocabulary.
func FilterAllowed(flags []string, allowed []string) []string {
	allowedSet := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		f = strings.ToUpper(strings.TrimSpace(f))
		if allowedSet[f] {
			out = append(out, f)
		}
	}
	return out
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
