// internal/analysis/pipeline/pipeline.go

// Package pipeline assembles the full message analysis: collaborator calls,
// lexical detectors, entity and change extraction, intent and route
// classification, scoring, action synthesis and retrieval query building.
// Every stage is a pure function of the input text; for fixed collaborator
// outputs the same message always yields an identical result.
package pipeline

import (
	"context"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sitedesk-workers/internal/analysis/actions"
	"sitedesk-workers/internal/analysis/changes"
	"sitedesk-workers/internal/analysis/collab"
	"sitedesk-workers/internal/analysis/detect"
	"sitedesk-workers/internal/analysis/entities"
	"sitedesk-workers/internal/analysis/intent"
	"sitedesk-workers/internal/analysis/retrieval"
	"sitedesk-workers/internal/analysis/score"
	"sitedesk-workers/internal/common/metrics"
	"sitedesk-workers/internal/models"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

var (
	nextStepsRe  = regexp.MustCompile(`(?i)\b(what('?s| is) next|next steps?)\b`)
	noteAskRe    = regexp.MustCompile(`(?i)\b(remind me|make a note|note (this|that) down|remember (this|that))\b`)
	updateDocsRe = regexp.MustCompile(`(?i)\bupdate\s+(the\s+)?(docs?|documentation)\b`)
	createDocsRe = regexp.MustCompile(`(?i)\b(write|create|draft|make)\b.{0,40}\b(docs?|documentation|document)\b`)
	projectEditRe = regexp.MustCompile(`(?i)\b(rename|update|change)\b.{0,30}\bproject\b`)
	sentenceEndRe = regexp.MustCompile(`[.!?\n]`)
)

// Config is the immutable pipeline configuration, fixed at construction.
type Config struct {
	AllowedFlags   []string
	AllowedActions []string
	MultiTenant    bool
	ActiveSiteID   string
	AutoApply      bool
	Debug          bool
	CollabTimeout  time.Duration
	MaxSubjects    int

	// Presets overrides the built-in business-field action presets when
	// non-nil.
	Presets map[string][]actions.Preset
}

// Analyzer runs the analysis pipeline. Safe for concurrent use; it holds no
// per-call state.
type Analyzer struct {
	cfg      Config
	flagger  collab.FlagClassifier
	subjects collab.SubjectExtractor
	synth    *actions.Synthesizer
	logger   Logger
}

// New builds an Analyzer. Nil collaborators are allowed and behave like
// collaborators that always fail, which the pipeline recovers from.
func New(cfg Config, flagger collab.FlagClassifier, subjects collab.SubjectExtractor, log Logger) *Analyzer {
	if len(cfg.AllowedFlags) == 0 {
		cfg.AllowedFlags = models.DefaultAllowedFlags()
	}
	if len(cfg.AllowedActions) == 0 {
		cfg.AllowedActions = models.DefaultAllowedActions()
	}
	if cfg.CollabTimeout <= 0 {
		cfg.CollabTimeout = 2 * time.Second
	}
	if cfg.MaxSubjects <= 0 {
		cfg.MaxSubjects = 5
	}
	return &Analyzer{
		cfg:      cfg,
		flagger:  flagger,
		subjects: subjects,
		synth:    actions.NewSynthesizer(nil, cfg.Presets, cfg.AutoApply),
		logger: log.With(map[string]interface{}{
			"component": "analysis-pipeline",
		}),
	}
}

// Analyze produces the full AnalysisResult for one message. It never returns
// an error: collaborator failures default to empty results and malformed
// input degrades to a low-confidence respond_only output.
func (a *Analyzer) Analyze(ctx context.Context, message string, contextHints []string) *models.AnalysisResult {
	start := time.Now()
	text := strings.TrimSpace(message)

	upstreamFlags, subjects := a.callCollaborators(ctx, text, contextHints)

	shape := detect.Shape(text)
	risk := detect.Risk(text)

	ents := entities.Extract(text, shape.HasCode)
	chg := changes.Extract(text)
	ents = append(ents, chg.Entities...)
	for _, s := range subjects {
		ents = append(ents, models.Entity{Type: models.KindConcept, Value: s.Label, Weight: s.Weight})
	}
	ents = entities.Cap(entities.Normalize(ents), models.MaxEntities)

	flagSet := models.NewFlagSet(intent.FilterAllowed(upstreamFlags, a.cfg.AllowedFlags)...)
	intent.Upgrade(flagSet, text)
	// Heuristic upgrades obey the same vocabulary as upstream flags.
	flagSet = models.NewFlagSet(intent.FilterAllowed(flagSet.List(), a.cfg.AllowedFlags)...)

	contactBug := intent.ContactFormBug(text)
	scores := score.All(text, shape, len(ents), contactBug)
	route := intent.Route(flagSet, shape, len(ents), scores.Certainty)
	label := intent.Label(flagSet)
	confidence := intent.Confidence(flagSet, len(ents), shape, scores.Certainty)

	issues := buildIssues(text, contactBug, flagSet)
	needsContext, contextScope := a.contextNeed(ents)

	set := actions.NewSet(a.cfg.AllowedActions)
	a.collectCandidates(set, text, shape, flagSet, contactBug)

	actx := buildActionContext(text, ents, chg.Changes, issues)
	proposals := a.synth.Synthesize(set, text, actx)
	suggested := set.Candidates()

	queries := retrieval.Build(text, chg.Changes, ents, flagSet)
	missing := missingInfo(needsContext, contextScope, proposals)
	memories := memoryCandidates(chg.Changes)

	result := &models.AnalysisResult{
		Flags:          flagSet.List(),
		AllowedFlags:   a.cfg.AllowedFlags,
		AllowedActions: a.cfg.AllowedActions,
		MessageAnalysis: models.MessageAnalysis{
			Intent:           label,
			IntentConfidence: confidence,
			PrimaryIntent:    label,
			Route:            route,
			Entities:         ents,
			NeedsContext:     needsContext,
			ContextScope:     contextScope,
			MissingInfo:      missing,
			Clarifiers:       chg.Clarifiers,
			Scores:           scores,
			InputShape:       shape,
			Risk:             risk,
			Issues:           issues,
			Changes:          chg.Changes,
			SuggestedActions: suggested,
			ActionProposals:  proposals,
			RetrievalQueries: queries,
			WantsArtifact:    intent.WantsArtifact(text),
			HasArtifact:      shape.HasCode || shape.HasSQL || shape.HasDiff || shape.HasConfig,
			MemoryCandidates: memories,
		},
		Telemetry: models.Telemetry{
			TotalMs: time.Since(start).Milliseconds(),
		},
	}

	normalizeEmpty(&result.MessageAnalysis)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	if a.cfg.Debug {
		a.logger.Debug("analysis complete", map[string]interface{}{
			"intent":        label,
			"route":         string(route),
			"entityCount":   len(ents),
			"changeCount":   len(chg.Changes),
			"proposalCount": len(proposals),
		})
	}
	return result
}

// callCollaborators runs the two upstream calls concurrently, each with its
// own timeout. A failed or timed-out call contributes an empty result; the
// pipeline never fails because a collaborator did.
func (a *Analyzer) callCollaborators(ctx context.Context, text string, hints []string) ([]string, []collab.Subject) {
	var flags []string
	var subjects []collab.Subject

	g := new(errgroup.Group)
	if a.flagger != nil {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, a.cfg.CollabTimeout)
			defer cancel()
			got, err := a.flagger.FlagIntents(cctx, text, a.cfg.AllowedFlags, hints)
			if err != nil {
				metrics.AnalysisCollabFailures.WithLabelValues("flag_classifier").Inc()
				a.logger.Warn("flag classification failed, continuing without", map[string]interface{}{
					"error": err.Error(),
				})
				return nil
			}
			flags = got
			return nil
		})
	}
	if a.subjects != nil {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, a.cfg.CollabTimeout)
			defer cancel()
			got, err := a.subjects.ExtractSubjects(cctx, text, a.cfg.MaxSubjects)
			if err != nil {
				metrics.AnalysisCollabFailures.WithLabelValues("subject_extractor").Inc()
				a.logger.Warn("subject extraction failed, continuing without", map[string]interface{}{
					"error": err.Error(),
				})
				return nil
			}
			subjects = collab.FilterSubjects(got)
			return nil
		})
	}
	_ = g.Wait()
	return flags, subjects
}

// collectCandidates adds the heuristic action candidates. Field presets are
// injected later by the synthesizer.
func (a *Analyzer) collectCandidates(set *actions.Set, text string, shape models.InputShape, flags *models.FlagSet, contactBug bool) {
	if contactBug {
		set.Add(models.ActionCreateIssue, 0.9)
	} else if flags.Has(models.FlagBugReport) || flags.Has(models.FlagSiteIssue) {
		set.Add(models.ActionCreateIssue, 0.7)
	}

	if updateDocsRe.MatchString(text) {
		set.Add(models.ActionUpdateDoc, 0.6)
	} else if createDocsRe.MatchString(text) {
		set.Add(models.ActionCreateDoc, 0.6)
	}

	if nextStepsRe.MatchString(text) || flags.Has(models.FlagPlan) {
		set.Add(models.ActionDraftNextSteps, 0.55)
	}

	if shape.HasCode && intent.WantsArtifact(text) {
		set.Add(models.ActionSaveSnippet, 0.55)
	}

	if noteAskRe.MatchString(text) {
		set.Add(models.ActionSaveNote, 0.6)
	}

	if projectEditRe.MatchString(text) {
		set.Add(models.ActionUpdateProject, 0.5)
	}
}

// buildActionContext assembles the read-only context the argument templates
// consume.
func buildActionContext(text string, ents []models.Entity, chgs []models.Change, issues []models.Issue) *actions.Context {
	actx := &actions.Context{
		FirstSentence: firstSentence(text),
		Changes:       chgs,
		Issues:        issues,
	}
	for _, e := range ents {
		switch e.Type {
		case models.KindProject:
			if actx.ProjectName == "" {
				actx.ProjectName = e.Value
				actx.ProjectSlug = slugify(e.Value)
			}
		case models.KindPage:
			actx.PageTargets = append(actx.PageTargets, e.Value)
		}
	}
	for _, c := range chgs {
		if actx.BusinessField == "" {
			actx.BusinessField = c.Field
		}
		if c.Field == models.FieldBusinessHours {
			actx.HoursText = hoursText(c)
		}
	}
	if actx.SnippetTitle == "" {
		actx.SnippetTitle = actx.FirstSentence
	}
	return actx
}

// hoursText renders the detected hours delta for the apply-hours template.
func hoursText(c models.Change) string {
	switch {
	case c.Desired != "":
		return c.Desired
	case c.Current != "":
		return c.Current
	default:
		return c.Value
	}
}

// buildIssues emits the issues list. A contact-form bug produces the
// lead-loss issue; any other site-issue flag produces a generic entry.
func buildIssues(text string, contactBug bool, flags *models.FlagSet) []models.Issue {
	if contactBug {
		summary := "Contact form not sending emails"
		if dur := score.Duration(text); dur != "" {
			summary += " " + dur
		}
		return []models.Issue{{Summary: summary, Severity: "high", Area: "leads"}}
	}
	if flags.Has(models.FlagSiteIssue) || flags.Has(models.FlagBugReport) {
		return []models.Issue{{Summary: firstSentence(text), Severity: "medium", Area: "site"}}
	}
	return nil
}

// contextNeed decides whether the analysis needs additional context before
// acting. Under multi-tenant mode with no active site and no explicit
// project entity, the consumer must first resolve which site is meant.
func (a *Analyzer) contextNeed(ents []models.Entity) (bool, []string) {
	if !a.cfg.MultiTenant || a.cfg.ActiveSiteID != "" {
		return false, nil
	}
	for _, e := range ents {
		if e.Type == models.KindProject {
			return false, nil
		}
	}
	return true, []string{"site_selection"}
}

// missingInfo surfaces at most one gap, and only when no proposal already
// resolves it.
func missingInfo(needsContext bool, scope []string, proposals []models.ActionProposal) []models.MissingInfo {
	if !needsContext || len(scope) == 0 {
		return nil
	}
	for _, p := range proposals {
		if p.Name == models.ActionUpdateProject {
			return nil
		}
	}
	return []models.MissingInfo{{Key: scope[0], Weight: 0.8}}
}

// memoryCandidates surfaces stated business facts worth persisting, such as
// a corrected phone number or explicit hours.
func memoryCandidates(chgs []models.Change) []models.MemoryCandidate {
	var out []models.MemoryCandidate
	for _, c := range chgs {
		if c.Desired == "" {
			continue
		}
		switch c.Field {
		case models.FieldBusinessHours, models.FieldPhoneNumber:
			out = append(out, models.MemoryCandidate{
				Text:   c.Field + ": " + c.Desired,
				Kind:   "business_fact",
				Weight: 0.7,
			})
		}
	}
	return out
}

// normalizeEmpty replaces nil slices with empty ones so the serialized
// output always carries arrays, never null.
func normalizeEmpty(ma *models.MessageAnalysis) {
	if ma.Entities == nil {
		ma.Entities = []models.Entity{}
	}
	if ma.MissingInfo == nil {
		ma.MissingInfo = []models.MissingInfo{}
	}
	if ma.Clarifiers == nil {
		ma.Clarifiers = []models.Clarifier{}
	}
	if ma.Issues == nil {
		ma.Issues = []models.Issue{}
	}
	if ma.Changes == nil {
		ma.Changes = []models.Change{}
	}
	if ma.SuggestedActions == nil {
		ma.SuggestedActions = []models.SuggestedAction{}
	}
	if ma.ActionProposals == nil {
		ma.ActionProposals = []models.ActionProposal{}
	}
	if ma.RetrievalQueries == nil {
		ma.RetrievalQueries = []string{}
	}
	if ma.MemoryCandidates == nil {
		ma.MemoryCandidates = []models.MemoryCandidate{}
	}
}

func firstSentence(text string) string {
	if loc := sentenceEndRe.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[:loc[0]])
	}
	return strings.TrimSpace(text)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")
	return s
}
