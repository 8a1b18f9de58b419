// internal/models/flags.go
package models

// Route is the terminal handling mode chosen for the turn.
type Route string

const (
	RouteRespondOnly   Route = "respond_only"
	RouteRetrieveLight Route = "retrieve_light"
	RouteRetrieveHeavy Route = "retrieve_heavy"
	RouteAskClarifying Route = "ask_clarifying"
	RouteHandoffTool   Route = "handoff_tool"
)

// Intent flag tokens. The allowed vocabulary is configuration; these are the
// tokens the built-in heuristics know about.
const (
	FlagBugReport      = "BUG_REPORT"
	FlagSiteIssue      = "SITE_ISSUE"
	FlagChangeRequest  = "CHANGE_REQUEST"
	FlagPlan           = "PLAN"
	FlagCodeWrite      = "CODE_WRITE"
	FlagCodeDebug      = "CODE_DEBUG"
	FlagDB             = "DB"
	FlagOps            = "OPS"
	FlagContent        = "CONTENT"
	FlagReview         = "REVIEW"
	FlagAssistance     = "ASSISTANCE"
	FlagChitchat       = "CHITCHAT"
	FlagInfoRequest    = "INFO_REQUEST"
	FlagClarify        = "CLARIFY"
	FlagFeatureRequest = "FEATURE_REQUEST"
	FlagDesign         = "DESIGN"
	FlagCritical       = "CRITICAL"
)

// IntentPriority is the fixed order used to pick the primary intent label.
var IntentPriority = []string{
	FlagBugReport,
	FlagSiteIssue,
	FlagChangeRequest,
	FlagPlan,
	FlagCodeWrite,
	FlagCodeDebug,
	FlagDB,
	FlagOps,
	FlagContent,
	FlagReview,
	FlagAssistance,
	FlagChitchat,
	FlagInfoRequest,
	FlagClarify,
	FlagFeatureRequest,
	FlagDesign,
}

// DefaultAllowedFlags is the default flag vocabulary when config omits one.
func DefaultAllowedFlags() []string {
	return []string{
		FlagBugReport, FlagSiteIssue, FlagChangeRequest, FlagPlan,
		FlagCodeWrite, FlagCodeDebug, FlagDB, FlagOps, FlagContent,
		FlagReview, FlagAssistance, FlagChitchat, FlagInfoRequest,
		FlagClarify, FlagFeatureRequest, FlagDesign, FlagCritical,
	}
}

// FlagSet is an ordered, deduplicated set of intent flags. Order is insertion
// order so repeated runs on the same input produce identical output.
type FlagSet struct {
	order   []string
	present map[string]bool
}

// NewFlagSet builds a set from the given tokens, dropping duplicates.
func NewFlagSet(flags ...string) *FlagSet {
	fs := &FlagSet{present: make(map[string]bool)}
	for _, f := range flags {
		fs.Add(f)
	}
	return fs
}

// Add inserts a flag if missing.
func (fs *FlagSet) Add(flag string) {
	if flag == "" || fs.present[flag] {
		return
	}
	fs.present[flag] = true
	fs.order = append(fs.order, flag)
}

// Remove deletes a flag if present.
func (fs *FlagSet) Remove(flag string) {
	if !fs.present[flag] {
		return
	}
	delete(fs.present, flag)
	kept := fs.order[:0]
	for _, f := range fs.order {
		if f != flag {
			kept = append(kept, f)
		}
	}
	fs.order = kept
}

// Has reports whether the flag is in the set.
func (fs *FlagSet) Has(flag string) bool {
	return fs.present[flag]
}

// HasAny reports whether any of the given flags is in the set.
func (fs *FlagSet) HasAny(flags ...string) bool {
	for _, f := range flags {
		if fs.present[f] {
			return true
		}
	}
	return false
}

// List returns the flags in insertion order.
func (fs *FlagSet) List() []string {
	out := make([]string, len(fs.order))
	copy(out, fs.order)
	return out
}

// Len returns the number of flags in the set.
func (fs *FlagSet) Len() int {
	return len(fs.order)
}
