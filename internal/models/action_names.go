// internal/models/action_names.go
package models

// Canonical action names the synthesizer may propose. The allowed vocabulary
// is configuration; unknown candidates are filtered before gating.
const (
	ActionCreateIssue        = "create_issue"
	ActionQueueChangeRequest = "queue_change_request"
	ActionApplyHoursChange   = "apply_hours_change"
	ActionCreateDoc          = "create_doc"
	ActionUpdateDoc          = "update_doc"
	ActionDraftNextSteps     = "draft_next_steps"
	ActionSaveSnippet        = "save_snippet"
	ActionSaveNote           = "save_note"
	ActionUpdateProject      = "update_project"
	ActionRequestAsset       = "request_asset"
)

// Business fields the change extractor can resolve. These are the field
// labels carried on Change items and referenced by action presets.
const (
	FieldPhoneNumber     = "Phone Number"
	FieldBusinessHours   = "Business Hours"
	FieldGalleryPhotos   = "Gallery Photos"
	FieldPricing         = "Pricing"
	FieldServiceList     = "Service List"
	FieldHomepageContent = "Homepage Content"
	FieldHeaderBanner    = "Header Banner"
	FieldPhoneEmphasis   = "Phone Number Emphasis"
	FieldSiteDesign      = "Site Design"
	FieldCouponPromotion = "Coupon/Promotion"
)

// DefaultAllowedActions is the default action vocabulary when config omits
// one.
func DefaultAllowedActions() []string {
	return []string{
		ActionCreateIssue, ActionQueueChangeRequest, ActionApplyHoursChange,
		ActionCreateDoc, ActionUpdateDoc, ActionDraftNextSteps,
		ActionSaveSnippet, ActionSaveNote, ActionUpdateProject,
		ActionRequestAsset,
	}
}
