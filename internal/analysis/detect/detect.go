// internal/analysis/detect/detect.go

// Package detect holds the lexical predicates the analysis pipeline runs over
// the raw message text. Every predicate is pure and total: an unmatched
// pattern yields false, never an error.
package detect

import (
	"regexp"
	"strings"

	"sitedesk-workers/internal/models"
)

var (
	fencedBlockRe   = regexp.MustCompile("```[\\s\\S]*?```")
	codeSyntaxRe    = regexp.MustCompile(`(?m)(\bfunc\s+\w+\s*\(|\bfunction\s+\w+\s*\(|\bclass\s+\w+|\bdef\s+\w+\s*\(|=>\s*\{|\btype\s+\w+\s*=|\binterface\s+\w+)`)
	semicolonLineRe = regexp.MustCompile(`(?m);\s*$`)

	errorCueRe = regexp.MustCompile(`(?i)(stack trace|traceback|panic:|exception\b|\berror:|\[error\]|\bat\s+\w+(\.\w+)+\s*\(|segfault|null pointer|undefined is not)`)

	diffMarkerRe = regexp.MustCompile(`(?m)^(diff --git|index [0-9a-f]+\.\.[0-9a-f]+|@@ -\d|\+\+\+ |--- )`)

	sqlShapeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)\bselect\b.+\bfrom\b`),
		regexp.MustCompile(`(?i)\binsert\s+into\b`),
		regexp.MustCompile(`(?is)\bupdate\b.+\bset\b`),
		regexp.MustCompile(`(?is)\bdelete\b.+\bfrom\b`),
		regexp.MustCompile(`(?i)\b(create|alter)\s+table\b`),
		regexp.MustCompile(`(?i)\b(inner|left|right|outer)?\s*join\b\s+\w+\s+\bon\b`),
	}

	configFenceRe = regexp.MustCompile("(?i)```(json|ya?ml|toml|ini|env)")
	keyValueRe    = regexp.MustCompile(`(?m)^[A-Z][A-Z0-9_]{2,}=\S+`)
	envRefRe      = regexp.MustCompile(`(?i)(\.env\b|process\.env\.|os\.environ)`)
	configPathRe  = regexp.MustCompile(`(?i)\b[\w./-]*(config|settings)[\w.-]*\.(json|ya?ml|toml|ini)\b`)

	linkRe       = regexp.MustCompile(`(?i)(https?://\S+|\bwww\.\S+\.\S+)`)
	screenshotRe = regexp.MustCompile(`(?i)(screen\s?shot|\battached (image|photo|picture)|\.(png|jpe?g|gif|webp)\b)`)
)

// HasCode reports whether the message looks like it contains source code.
func HasCode(text string) bool {
	if fencedBlockRe.MatchString(text) {
		return true
	}
	if codeSyntaxRe.MatchString(text) {
		return true
	}
	// Two or more semicolon-terminated lines reads as code, not prose.
	return len(semicolonLineRe.FindAllStringIndex(text, 2)) >= 2
}

// HasErrorTrace reports error/stack-trace cues.
func HasErrorTrace(text string) bool {
	return errorCueRe.MatchString(text)
}

// HasDiff reports unified-diff or patch markers.
func HasDiff(text string) bool {
	return diffMarkerRe.MatchString(text)
}

// HasSQL reports SQL statement shapes (SELECT+FROM, INSERT INTO, UPDATE+SET,
// DELETE+FROM, CREATE/ALTER TABLE, JOIN...ON).
func HasSQL(text string) bool {
	for _, re := range sqlShapeRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// HasConfig reports configuration cues: JSON/YAML/TOML fences, KEY=value
// pairs, .env / process.env references, config file paths.
func HasConfig(text string) bool {
	return configFenceRe.MatchString(text) ||
		keyValueRe.MatchString(text) ||
		envRefRe.MatchString(text) ||
		configPathRe.MatchString(text)
}

// HasLink reports URL presence.
func HasLink(text string) bool {
	return linkRe.MatchString(text)
}

// HasScreenshot reports screenshot/image references.
func HasScreenshot(text string) bool {
	return screenshotRe.MatchString(text)
}

// Shape runs every surface-form predicate once and returns the flag block.
// Callers reuse this instead of re-running individual predicates.
func Shape(text string) models.InputShape {
	return models.InputShape{
		HasCode:       HasCode(text),
		HasSQL:        HasSQL(text),
		HasConfig:     HasConfig(text),
		HasErrorTrace: HasErrorTrace(text),
		HasDiff:       HasDiff(text),
		HasLink:       HasLink(text),
		HasScreenshot: HasScreenshot(text),
	}
}

// IsQuestion reports whether the message reads as a question.
func IsQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, prefix := range []string{"what ", "why ", "how ", "when ", "where ", "who ", "can you", "could you", "is it", "are we", "do we", "does "} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
