// internal/analysis/actions/synthesizer.go
package actions

import (
	"regexp"
	"sort"
	"strings"

	"sitedesk-workers/internal/models"
)

var (
	updateDocsRe = regexp.MustCompile(`(?i)\bupdate\s+(the\s+)?docs?\b`)
	whatsNextRe  = regexp.MustCompile(`(?i)\bwhat('?s| is)\s+next\b`)
	noteAskRe    = regexp.MustCompile(`(?i)\b(remind me|make a note|note (this|that) down|remember (this|that))\b`)
)

// businessChangeActions are the actions that commit a concrete site change.
var businessChangeActions = map[string]bool{
	models.ActionQueueChangeRequest: true,
	models.ActionApplyHoursChange:   true,
	models.ActionUpdateProject:      true,
	models.ActionRequestAsset:       true,
}

// Set accumulates candidate actions. Candidates outside the allowed
// vocabulary are silently dropped; duplicates merge by keeping the maximum
// weight. Insertion order is preserved so equal-weight candidates sort
// deterministically.
type Set struct {
	allowed map[string]bool
	order   []string
	weights map[string]float64
}

// NewSet builds an empty candidate set over the allowed-action vocabulary.
func NewSet(allowed []string) *Set {
	m := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		m[a] = true
	}
	return &Set{allowed: m, weights: make(map[string]float64)}
}

// Add records a candidate. Unknown names are ignored.
func (s *Set) Add(name string, weight float64) {
	if !s.allowed[name] {
		return
	}
	if old, ok := s.weights[name]; ok {
		if weight > old {
			s.weights[name] = weight
		}
		return
	}
	s.order = append(s.order, name)
	s.weights[name] = weight
}

// Has reports whether a candidate is present.
func (s *Set) Has(name string) bool {
	_, ok := s.weights[name]
	return ok
}

// Candidates snapshots the current set as raw suggested actions, in
// insertion order.
func (s *Set) Candidates() []models.SuggestedAction {
	out := make([]models.SuggestedAction, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, models.SuggestedAction{Name: name, Weight: s.weights[name]})
	}
	return out
}

// Remove drops a candidate if present.
func (s *Set) Remove(name string) {
	if _, ok := s.weights[name]; !ok {
		return
	}
	delete(s.weights, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Set) countIn(set map[string]bool) int {
	n := 0
	for name := range s.weights {
		if set[name] {
			n++
		}
	}
	return n
}

// Synthesizer turns a candidate set into the final proposal list. Templates
// and presets are injected at construction and never mutated afterwards.
type Synthesizer struct {
	templates map[string]ArgTemplate
	presets   map[string][]Preset
	autoApply bool
}

// NewSynthesizer wires the synthesizer with its configuration tables. Nil
// tables fall back to the defaults.
func NewSynthesizer(templates map[string]ArgTemplate, presets map[string][]Preset, autoApply bool) *Synthesizer {
	if templates == nil {
		templates = DefaultTemplates()
	}
	if presets == nil {
		presets = DefaultPresetsByField()
	}
	return &Synthesizer{templates: templates, presets: presets, autoApply: autoApply}
}

// Synthesize runs gating, preset injection, finalize, expansion and the
// grounding filter over the candidate set, returning at most
// models.MaxActionProposals proposals sorted by weight descending.
func (s *Synthesizer) Synthesize(set *Set, text string, ctx *Context) []models.ActionProposal {
	s.injectPresets(set, ctx)
	s.gate(set, text)

	type cand struct {
		name   string
		weight float64
		pos    int
	}
	cands := make([]cand, 0, len(set.order))
	for i, name := range set.order {
		cands = append(cands, cand{name: name, weight: set.weights[name], pos: i})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].weight != cands[j].weight {
			return cands[i].weight > cands[j].weight
		}
		return cands[i].pos < cands[j].pos
	})
	if len(cands) > models.MaxActionProposals {
		cands = cands[:models.MaxActionProposals]
	}

	proposals := make([]models.ActionProposal, 0, len(cands))
	for _, c := range cands {
		p := models.ActionProposal{
			Name:   c.name,
			Args:   map[string]interface{}{},
			Weight: c.weight,
			Reason: reasonByAction[c.name],
		}
		if tmpl, ok := s.templates[c.name]; ok {
			if args := tmpl(ctx); args != nil {
				p.Args = args
			}
		}
		if c.name == models.ActionUpdateProject {
			p.Blocking = true
			p.DependsOn = []string{"project_exists"}
		}
		proposals = append(proposals, p)
	}
	return groundProposals(proposals, ctx)
}

// injectPresets merges the configured action preset of every resolved
// business field into the candidate set. Under auto-apply mode a
// high-confidence hours change proposes an immediate apply instead of a
// queued change request.
func (s *Synthesizer) injectPresets(set *Set, ctx *Context) {
	for _, c := range ctx.Changes {
		presets, ok := s.presets[c.Field]
		if !ok {
			continue
		}
		for _, p := range presets {
			name := p.Name
			if s.autoApply && c.Field == models.FieldBusinessHours &&
				name == models.ActionQueueChangeRequest && c.Weight >= 0.8 {
				name = models.ActionApplyHoursChange
			}
			set.Add(name, p.Weight)
		}
	}
}

// gate applies the pruning rules that keep the proposal list coherent.
func (s *Synthesizer) gate(set *Set, text string) {
	// Doc actions are mutually exclusive; the message picks which survives.
	if set.Has(models.ActionCreateDoc) && set.Has(models.ActionUpdateDoc) {
		if updateDocsRe.MatchString(text) {
			set.Remove(models.ActionCreateDoc)
		} else {
			set.Remove(models.ActionUpdateDoc)
		}
	}

	if set.Has(models.ActionDraftNextSteps) {
		hasDocAction := set.Has(models.ActionCreateDoc) || set.Has(models.ActionUpdateDoc)
		if hasDocAction && !whatsNextRe.MatchString(text) {
			set.Remove(models.ActionDraftNextSteps)
		} else if set.countIn(businessChangeActions) >= 2 {
			set.Remove(models.ActionDraftNextSteps)
		}
	}

	if set.Has(models.ActionSaveSnippet) {
		set.Remove(models.ActionSaveNote)
	}

	if set.Has(models.ActionSaveNote) && !noteAskRe.MatchString(text) {
		hasConcrete := set.Has(models.ActionApplyHoursChange) || set.Has(models.ActionQueueChangeRequest)
		if hasConcrete || set.Has(models.ActionCreateIssue) {
			set.Remove(models.ActionSaveNote)
		}
	}
}

// groundProposals strips field and target references that do not correspond
// to anything actually detected in the message.
func groundProposals(proposals []models.ActionProposal, ctx *Context) []models.ActionProposal {
	fieldSet := make(map[string]bool, len(ctx.Changes))
	for _, c := range ctx.Changes {
		fieldSet[c.Field] = true
	}
	if ctx.HoursText != "" {
		fieldSet[models.FieldBusinessHours] = true
	}
	targetSet := make(map[string]bool, len(ctx.PageTargets))
	for _, t := range ctx.PageTargets {
		targetSet[strings.ToLower(t)] = true
	}

	for i := range proposals {
		args := proposals[i].Args
		if f, ok := args["field"].(string); ok && !fieldSet[f] {
			delete(args, "field")
			if fields := changeFields(ctx.Changes); len(fields) > 0 {
				args["fields"] = fields
			}
		}
		if raw, ok := args["fields"].([]string); ok {
			kept := raw[:0]
			for _, f := range raw {
				if fieldSet[f] {
					kept = append(kept, f)
				}
			}
			if len(kept) == 0 {
				kept = changeFields(ctx.Changes)
			}
			if len(kept) == 0 {
				delete(args, "fields")
			} else {
				args["fields"] = kept
			}
		}
		if raw, ok := args["targets"].([]string); ok {
			kept := raw[:0]
			for _, t := range raw {
				if targetSet[strings.ToLower(t)] {
					kept = append(kept, t)
				}
			}
			if len(kept) == 0 {
				delete(args, "targets")
			} else {
				args["targets"] = kept
			}
		}
	}
	return proposals
}
