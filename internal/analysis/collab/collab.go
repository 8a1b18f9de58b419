// internal/analysis/collab/collab.go
package collab

import (
	"context"
	"regexp"
	"strings"
)

// Subject is one extracted message subject with its relevance weight.
type Subject struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// FlagClassifier asks an upstream model which intent flags apply to a
// message. Implementations must treat failure as recoverable; the pipeline
// substitutes an empty flag list when the call errors out.
type FlagClassifier interface {
	FlagIntents(ctx context.Context, text string, allowedFlags []string, contextHints []string) ([]string, error)
}

// SubjectExtractor asks an upstream model for the main subjects of a
// message.
type SubjectExtractor interface {
	ExtractSubjects(ctx context.Context, text string, max int) ([]Subject, error)
}

var numericOnlyRe = regexp.MustCompile(`^[\d\s.,:%$-]+$`)

var subjectStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "it": true, "this": true,
	"that": true, "these": true, "those": true, "thing": true,
	"things": true, "stuff": true, "something": true, "message": true,
	"user": true, "please": true, "hello": true, "thanks": true,
}

// FilterSubjects drops labels that are too long, pure stopwords, or
// numeric-only, keeping the original order.
func FilterSubjects(subjects []Subject) []Subject {
	kept := make([]Subject, 0, len(subjects))
	for _, s := range subjects {
		label := strings.TrimSpace(s.Label)
		if label == "" {
			continue
		}
		words := strings.Fields(label)
		if len(words) < 1 || len(words) > 3 {
			continue
		}
		if len(words) == 1 && subjectStopwords[strings.ToLower(words[0])] {
			continue
		}
		if numericOnlyRe.MatchString(label) {
			continue
		}
		s.Label = label
		kept = append(kept, s)
	}
	return kept
}
