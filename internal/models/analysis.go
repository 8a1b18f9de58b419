// internal/models/analysis.go
package models

// EntityKind is the closed set of entity types the extractor can emit.
type EntityKind string

const (
	KindProject        EntityKind = "project"
	KindFeature        EntityKind = "feature"
	KindConcept        EntityKind = "concept"
	KindTool           EntityKind = "tool"
	KindRole           EntityKind = "role"
	KindConfig         EntityKind = "config"
	KindAction         EntityKind = "action"
	KindFile           EntityKind = "file"
	KindEndpoint       EntityKind = "endpoint"
	KindBusinessField  EntityKind = "business_field"
	KindBusinessValue  EntityKind = "business_value"
	KindPage           EntityKind = "page"
	KindService        EntityKind = "service"
	KindPageSection    EntityKind = "page_section"
	KindContentType    EntityKind = "content_type"
	KindCollectionType EntityKind = "collection_type"
	KindMoneyValue     EntityKind = "money_value"
	KindDateRange      EntityKind = "date_range"
	KindServiceName    EntityKind = "service_name"
	KindContactMethod  EntityKind = "contact_method"
	KindSchedule       EntityKind = "schedule"
	KindCompetitor     EntityKind = "competitor"
)

// Entity is a typed, weighted mention extracted from the message.
type Entity struct {
	Type   EntityKind `json:"type"`
	Value  string     `json:"value"`
	Weight float64    `json:"weight"`
}

// Discount types for coupon/promotion changes.
const (
	DiscountAmountOff  = "amount_off"
	DiscountPercentOff = "percent_off"
)

// PolarityNegated marks a change whose recorded value is the currently
// displayed (wrong) value. The desired value is intentionally not inferred.
const PolarityNegated = "negated"

// Change is one detected delta between a stated current state and a desired
// state (or a single new value). At least one of Value/Current/Desired/
// Polarity is set.
type Change struct {
	Field          string  `json:"field"`
	Value          string  `json:"value,omitempty"`
	Current        string  `json:"current,omitempty"`
	Desired        string  `json:"desired,omitempty"`
	Polarity       string  `json:"polarity,omitempty"`
	Location       string  `json:"location,omitempty"`
	SourceHint     string  `json:"sourceHint,omitempty"`
	NeedsClarifier bool    `json:"needsClarifier,omitempty"`
	Timeframe      string  `json:"timeframe,omitempty"`
	DiscountType   string  `json:"discountType,omitempty"`
	Weight         float64 `json:"weight,omitempty"`
}

// MissingInfo is a gap no concrete action already resolves.
type MissingInfo struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
}

// Clarifier is a non-blocking follow-up question the response stage may ask.
type Clarifier struct {
	Question string  `json:"question"`
	Weight   float64 `json:"weight"`
}

// SuggestedAction is a raw action candidate prior to proposal expansion.
type SuggestedAction struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ActionProposal is a ranked, argument-populated next-step suggestion.
type ActionProposal struct {
	Name      string                 `json:"name"`
	Args      map[string]interface{} `json:"args"`
	Weight    float64                `json:"weight"`
	Reason    string                 `json:"reason,omitempty"`
	Blocking  bool                   `json:"blocking,omitempty"`
	DependsOn []string               `json:"dependsOn,omitempty"`
}

// Issue is a detected site problem (bug-shaped messages).
type Issue struct {
	Summary  string `json:"summary"`
	Severity string `json:"severity"`
	Area     string `json:"area"`
}

// MemoryCandidate is a short fact worth persisting by a downstream memory
// system; this pipeline only surfaces it.
type MemoryCandidate struct {
	Text   string  `json:"text"`
	Kind   string  `json:"kind"`
	Weight float64 `json:"weight"`
}

// InputShape holds boolean surface-form flags over the raw message.
type InputShape struct {
	HasCode       bool `json:"hasCode"`
	HasSQL        bool `json:"hasSQL"`
	HasConfig     bool `json:"hasConfig"`
	HasErrorTrace bool `json:"hasErrorTrace"`
	HasDiff       bool `json:"hasDiff"`
	HasLink       bool `json:"hasLink"`
	HasScreenshot bool `json:"hasScreenshot"`
}

// RiskFlags holds the four risk predicates.
type RiskFlags struct {
	Secrets bool `json:"secrets"`
	Privacy bool `json:"privacy"`
	Payment bool `json:"payment"`
	Legal   bool `json:"legal"`
}

// Scores are the heuristic score outputs.
type Scores struct {
	Complexity      float64 `json:"complexity"`
	Effort          string  `json:"effort"`
	TimeSensitivity float64 `json:"timeSensitivity"`
	Tone            string  `json:"tone"`
	Urgency         string  `json:"urgency"`
	Certainty       float64 `json:"certainty"`
}

// Effort buckets derived from complexity.
const (
	EffortTiny   = "tiny"
	EffortSmall  = "small"
	EffortMedium = "medium"
	EffortLarge  = "large"
)

// Urgency levels derived from time sensitivity.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Tone labels, checked in priority order by the scorer.
const (
	ToneFrustrated = "frustrated"
	ToneStressed   = "stressed"
	ToneExcited    = "excited"
	TonePositive   = "positive"
	ToneNeutral    = "neutral"
)

// MessageAnalysis is the full structured interpretation of one utterance.
type MessageAnalysis struct {
	Intent           string            `json:"intent"`
	IntentConfidence float64           `json:"intentConfidence"`
	PrimaryIntent    string            `json:"primaryIntent"`
	Route            Route             `json:"route"`
	Entities         []Entity          `json:"entities"`
	NeedsContext     bool              `json:"needsContext"`
	ContextScope     []string          `json:"contextScope,omitempty"`
	MissingInfo      []MissingInfo     `json:"missingInfo"`
	Clarifiers       []Clarifier       `json:"clarifiers"`
	Scores           Scores            `json:"scores"`
	InputShape       InputShape        `json:"inputShape"`
	Risk             RiskFlags         `json:"risk"`
	Issues           []Issue           `json:"issues"`
	Changes          []Change          `json:"changes"`
	SuggestedActions []SuggestedAction `json:"suggestedActions"`
	ActionProposals  []ActionProposal  `json:"actionProposals"`
	RetrievalQueries []string          `json:"retrievalQueries"`
	WantsArtifact    bool              `json:"wantsArtifact"`
	HasArtifact      bool              `json:"hasArtifact"`
	MemoryCandidates []MemoryCandidate `json:"memoryCandidates"`
}

// Telemetry carries per-call timing only; nothing here feeds back into the
// analysis fields.
type Telemetry struct {
	TotalMs int64 `json:"totalMs"`
}

// AnalysisResult is the root output contract of the analyze-message task.
type AnalysisResult struct {
	Flags           []string        `json:"flags"`
	AllowedFlags    []string        `json:"allowedFlags"`
	AllowedActions  []string        `json:"allowedActions"`
	MessageAnalysis MessageAnalysis `json:"messageAnalysis"`
	Telemetry       Telemetry       `json:"telemetry"`
}

// Caps enforced across the analysis output.
const (
	MaxEntities         = 8
	MaxChanges          = 2
	MaxActionProposals  = 4
	MaxMissingInfo      = 1
	MaxClarifiers       = 2
	MaxRetrievalQueries = 5
)
