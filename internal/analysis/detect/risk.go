// internal/analysis/detect/risk.go
package detect

import (
	"regexp"

	"sitedesk-workers/internal/models"
)

var (
	secretTokenRe = regexp.MustCompile(`(?i)(\bsk-[A-Za-z0-9]{16,}|\bAKIA[0-9A-Z]{16}\b|\bgh[pousr]_[A-Za-z0-9]{20,}|-----BEGIN [A-Z ]*PRIVATE KEY-----|\b[0-9a-f]{32,}\b)`)
	secretWordRe  = regexp.MustCompile(`(?i)\b(password|passwd|api[ _-]?key|secret[ _-]?key|access[ _-]?token|client[ _-]?secret)\b\s*[:=]?\s*\S`)

	privacyRe = regexp.MustCompile(`(?i)\b(gdpr|ccpa|pii|personally identifiable|personal (data|information)|data (deletion|removal) request|right to be forgotten|unsubscribe me)\b`)

	paymentRe = regexp.MustCompile(`(?i)\b(refund|chargeback|charged? (me|twice)|invoice|billing|payment (failed|issue|problem)|credit card|card declined|stripe|paypal)\b`)

	legalRe = regexp.MustCompile(`(?i)\b(lawsuit|sue|suing|attorney|lawyer|legal (action|notice|threat)|cease and desist|dmca|copyright (claim|infringement)|trademark)\b`)
)

// SecretsLikely reports tokens that look like credentials or key material.
func SecretsLikely(text string) bool {
	return secretTokenRe.MatchString(text) || secretWordRe.MatchString(text)
}

// PrivacyTerms reports privacy/compliance language.
func PrivacyTerms(text string) bool {
	return privacyRe.MatchString(text)
}

// PaymentTerms reports billing/payment language.
func PaymentTerms(text string) bool {
	return paymentRe.MatchString(text)
}

// LegalTerms reports legal-threat language.
func LegalTerms(text string) bool {
	return legalRe.MatchString(text)
}

// Risk runs the four risk predicates once.
func Risk(text string) models.RiskFlags {
	return models.RiskFlags{
		Secrets: SecretsLikely(text),
		Privacy: PrivacyTerms(text),
		Payment: PaymentTerms(text),
		Legal:   LegalTerms(text),
	}
}
