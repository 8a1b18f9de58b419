// internal/analysis/actions/synthesizer_test.go
package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sitedesk-workers/internal/models"
)

// ==========================
// Set Tests
// ==========================

func TestSet_AllowedVocabularyFilter(t *testing.T) {
	set := NewSet([]string{models.ActionCreateIssue})

	set.Add(models.ActionCreateIssue, 0.9)
	set.Add("made_up_action", 1.0)
	set.Add(models.ActionSaveNote, 0.6)

	assert.True(t, set.Has(models.ActionCreateIssue))
	assert.False(t, set.Has("made_up_action"))
	assert.False(t, set.Has(models.ActionSaveNote))
}

func TestSet_DuplicatesKeepMaxWeight(t *testing.T) {
	set := NewSet(models.DefaultAllowedActions())

	set.Add(models.ActionCreateIssue, 0.6)
	set.Add(models.ActionSaveNote, 0.5)
	set.Add(models.ActionCreateIssue, 0.9)
	set.Add(models.ActionCreateIssue, 0.3)

	cands := set.Candidates()
	assert.Len(t, cands, 2)
	assert.Equal(t, models.ActionCreateIssue, cands[0].Name, "insertion order is preserved")
	assert.Equal(t, 0.9, cands[0].Weight)
}

func TestSet_Remove(t *testing.T) {
	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionCreateDoc, 0.6)
	set.Add(models.ActionUpdateDoc, 0.6)

	set.Remove(models.ActionCreateDoc)

	assert.False(t, set.Has(models.ActionCreateDoc))
	assert.Len(t, set.Candidates(), 1)
}

// ==========================
// Gating Tests
// ==========================

func TestSynthesize_DocActionsAreExclusive(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	// "update the docs" keeps update_doc.
	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionCreateDoc, 0.6)
	set.Add(models.ActionUpdateDoc, 0.6)
	got := synth.Synthesize(set, "please update the docs after the change", &Context{})
	assert.True(t, hasProposal(got, models.ActionUpdateDoc))
	assert.False(t, hasProposal(got, models.ActionCreateDoc))

	// Anything else keeps create_doc.
	set = NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionCreateDoc, 0.6)
	set.Add(models.ActionUpdateDoc, 0.6)
	got = synth.Synthesize(set, "write something up about the launch", &Context{})
	assert.True(t, hasProposal(got, models.ActionCreateDoc))
	assert.False(t, hasProposal(got, models.ActionUpdateDoc))
}

func TestSynthesize_DraftNextStepsDroppedNearDocAction(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionCreateDoc, 0.6)
	set.Add(models.ActionDraftNextSteps, 0.55)
	got := synth.Synthesize(set, "write a doc about the rollout", &Context{})
	assert.False(t, hasProposal(got, models.ActionDraftNextSteps))

	// An explicit "what's next" keeps it.
	set = NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionCreateDoc, 0.6)
	set.Add(models.ActionDraftNextSteps, 0.55)
	got = synth.Synthesize(set, "write a doc about the rollout, and what's next after that?", &Context{})
	assert.True(t, hasProposal(got, models.ActionDraftNextSteps))
}

func TestSynthesize_DraftNextStepsDroppedWithTwoBusinessActions(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionDraftNextSteps, 0.55)
	ctx := &Context{
		Changes: []models.Change{
			{Field: models.FieldGalleryPhotos, Weight: 0.85},
		},
	}
	// Gallery preset injects queue_change_request and request_asset, which
	// together outrank a next-steps draft.
	got := synth.Synthesize(set, "replace the photos, what's next", ctx)

	assert.False(t, hasProposal(got, models.ActionDraftNextSteps))
	assert.True(t, hasProposal(got, models.ActionQueueChangeRequest))
	assert.True(t, hasProposal(got, models.ActionRequestAsset))
}

func TestSynthesize_SnippetSupersedesNote(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionSaveNote, 0.6)
	set.Add(models.ActionSaveSnippet, 0.55)
	got := synth.Synthesize(set, "save that snippet for me", &Context{})

	assert.True(t, hasProposal(got, models.ActionSaveSnippet))
	assert.False(t, hasProposal(got, models.ActionSaveNote))
}

func TestSynthesize_NoteDroppedNextToConcreteAction(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionSaveNote, 0.6)
	ctx := &Context{
		Changes: []models.Change{{Field: models.FieldBusinessHours, Weight: 0.85}},
	}
	got := synth.Synthesize(set, "the hours are wrong, fix them", ctx)

	assert.True(t, hasProposal(got, models.ActionQueueChangeRequest))
	assert.False(t, hasProposal(got, models.ActionSaveNote))
}

func TestSynthesize_ExplicitNoteAskSurvives(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionSaveNote, 0.6)
	ctx := &Context{
		Changes: []models.Change{{Field: models.FieldBusinessHours, Weight: 0.85}},
	}
	got := synth.Synthesize(set, "fix the hours and make a note that we close early in winter", ctx)

	assert.True(t, hasProposal(got, models.ActionSaveNote))
}

// ==========================
// Preset Injection Tests
// ==========================

func TestSynthesize_PresetInjection(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	ctx := &Context{
		Changes: []models.Change{{Field: models.FieldPhoneNumber, Weight: 0.95}},
	}
	got := synth.Synthesize(set, "the phone number is wrong", ctx)

	assert.Len(t, got, 1)
	assert.Equal(t, models.ActionQueueChangeRequest, got[0].Name)
	assert.Equal(t, 0.9, got[0].Weight)
	assert.Equal(t, ChangesRef, got[0].Args["changesRef"])
	assert.Equal(t, []string{models.FieldPhoneNumber}, got[0].Args["fields"])
}

func TestSynthesize_AutoApplySwapsHoursAction(t *testing.T) {
	set := NewSet(models.DefaultAllowedActions())
	ctx := &Context{
		HoursText: "Open Saturdays",
		Changes:   []models.Change{{Field: models.FieldBusinessHours, Weight: 0.85}},
	}

	// Auto-apply off: the hours change queues for review.
	got := NewSynthesizer(nil, nil, false).Synthesize(set, "we are open saturdays", ctx)
	assert.True(t, hasProposal(got, models.ActionQueueChangeRequest))
	assert.False(t, hasProposal(got, models.ActionApplyHoursChange))

	// Auto-apply on with weight >= 0.8: immediate apply replaces the queue.
	set = NewSet(models.DefaultAllowedActions())
	got = NewSynthesizer(nil, nil, true).Synthesize(set, "we are open saturdays", ctx)
	assert.True(t, hasProposal(got, models.ActionApplyHoursChange))
	assert.False(t, hasProposal(got, models.ActionQueueChangeRequest))

	apply := findProposal(got, models.ActionApplyHoursChange)
	assert.Equal(t, models.FieldBusinessHours, apply.Args["field"])
	assert.Equal(t, "Open Saturdays", apply.Args["hours"])
}

func TestSynthesize_AutoApplyNeedsHighConfidence(t *testing.T) {
	set := NewSet(models.DefaultAllowedActions())
	ctx := &Context{
		Changes: []models.Change{{Field: models.FieldBusinessHours, Weight: 0.6}},
	}
	got := NewSynthesizer(nil, nil, true).Synthesize(set, "maybe adjust the hours", ctx)

	assert.True(t, hasProposal(got, models.ActionQueueChangeRequest))
	assert.False(t, hasProposal(got, models.ActionApplyHoursChange))
}

// ==========================
// Proposal Expansion Tests
// ==========================

func TestSynthesize_UpdateProjectIsBlocking(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionUpdateProject, 0.5)
	got := synth.Synthesize(set, "rename the project to Oakdale", &Context{ProjectName: "Oakdale"})

	assert.Len(t, got, 1)
	p := got[0]
	assert.True(t, p.Blocking)
	assert.Equal(t, []string{"project_exists"}, p.DependsOn)
	assert.Equal(t, "Oakdale", p.Args["name"])
}

func TestSynthesize_CapsAtMaxProposals(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionCreateIssue, 0.9)
	set.Add(models.ActionSaveSnippet, 0.55)
	set.Add(models.ActionUpdateProject, 0.5)
	ctx := &Context{
		Changes: []models.Change{
			{Field: models.FieldGalleryPhotos, Weight: 0.85},
			{Field: models.FieldPricing, Weight: 0.85},
		},
	}
	got := synth.Synthesize(set, "lots going on here", ctx)

	assert.Len(t, got, models.MaxActionProposals)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Weight, got[i].Weight)
	}
}

func TestSynthesize_EveryProposalHasAReason(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionCreateIssue, 0.9)
	ctx := &Context{
		Issues: []models.Issue{{Summary: "Contact form not sending emails", Severity: "high", Area: "leads"}},
	}
	got := synth.Synthesize(set, "the form is broken", ctx)

	assert.Len(t, got, 1)
	assert.NotEmpty(t, got[0].Reason)
	assert.Equal(t, "Contact form not sending emails", got[0].Args["summary"])
	assert.Equal(t, "high", got[0].Args["severity"])
	assert.Equal(t, "leads", got[0].Args["area"])
}

// ==========================
// Grounding Tests
// ==========================

func TestSynthesize_GroundingStripsUnknownTargets(t *testing.T) {
	synth := NewSynthesizer(nil, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	ctx := &Context{
		PageTargets: []string{"Contact Page"},
		Changes: []models.Change{
			{Field: models.FieldGalleryPhotos, Weight: 0.85},
		},
	}
	got := synth.Synthesize(set, "replace the gallery photos on the contact page", ctx)

	asset := findProposal(got, models.ActionRequestAsset)
	if assert.NotNil(t, asset) {
		assert.Equal(t, []string{"Contact Page"}, asset.Args["targets"])
		assert.Equal(t, "image", asset.Args["kind"])
	}
}

func TestSynthesize_GroundingFieldFallback(t *testing.T) {
	// An hours apply whose field is not among detected changes falls back to
	// the detected change fields.
	templates := DefaultTemplates()
	synth := NewSynthesizer(templates, nil, false)

	set := NewSet(models.DefaultAllowedActions())
	set.Add(models.ActionApplyHoursChange, 0.9)
	ctx := &Context{
		Changes: []models.Change{{Field: models.FieldPricing, Weight: 0.85}},
	}
	got := synth.Synthesize(set, "pricing update", ctx)

	apply := findProposal(got, models.ActionApplyHoursChange)
	if assert.NotNil(t, apply) {
		_, hasField := apply.Args["field"]
		assert.False(t, hasField, "ungrounded field reference is stripped")
		assert.Equal(t, []string{models.FieldPricing}, apply.Args["fields"])
	}
}

// ==========================
// Helpers
// ==========================

func hasProposal(proposals []models.ActionProposal, name string) bool {
	return findProposal(proposals, name) != nil
}

func findProposal(proposals []models.ActionProposal, name string) *models.ActionProposal {
	for i := range proposals {
		if proposals[i].Name == name {
			return &proposals[i]
		}
	}
	return nil
}
