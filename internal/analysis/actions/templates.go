// internal/analysis/actions/templates.go
package actions

import (
	"sitedesk-workers/internal/models"
)

// Context carries everything an argument template may reference. It is
// assembled once per analysis and passed read-only to every template.
type Context struct {
	ProjectName   string
	ProjectSlug   string
	InterfaceName string
	SnippetTitle  string
	DocPath       string
	DocTitle      string
	FirstSentence string
	BusinessField string
	HoursText     string
	PageTargets   []string
	Changes       []models.Change
	Issues        []models.Issue
}

// ArgTemplate builds the argument map for one action kind.
type ArgTemplate func(ctx *Context) map[string]interface{}

// changeFields lists the fields of the detected changes, in order.
func changeFields(changes []models.Change) []string {
	fields := make([]string, 0, len(changes))
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	return fields
}

// ChangesRef is the canonical pointer to the change list inside the result;
// proposals reference it instead of duplicating the payload.
const ChangesRef = "messageAnalysis.changes"

// DefaultTemplates returns the built-in argument-template table. The hosting
// system may override individual entries through configuration wiring.
func DefaultTemplates() map[string]ArgTemplate {
	return map[string]ArgTemplate{
		models.ActionQueueChangeRequest: func(ctx *Context) map[string]interface{} {
			args := map[string]interface{}{
				"changesRef": ChangesRef,
			}
			if fields := changeFields(ctx.Changes); len(fields) > 0 {
				args["fields"] = fields
			}
			if ctx.ProjectSlug != "" {
				args["project"] = ctx.ProjectSlug
			}
			return args
		},
		models.ActionApplyHoursChange: func(ctx *Context) map[string]interface{} {
			args := map[string]interface{}{
				"field": models.FieldBusinessHours,
			}
			if ctx.HoursText != "" {
				args["hours"] = ctx.HoursText
			}
			return args
		},
		models.ActionCreateIssue: func(ctx *Context) map[string]interface{} {
			args := map[string]interface{}{
				"severity": "medium",
				"area":     "site",
			}
			if len(ctx.Issues) > 0 {
				args["summary"] = ctx.Issues[0].Summary
				args["severity"] = ctx.Issues[0].Severity
				args["area"] = ctx.Issues[0].Area
			} else if ctx.FirstSentence != "" {
				args["summary"] = ctx.FirstSentence
			}
			return args
		},
		models.ActionCreateDoc: func(ctx *Context) map[string]interface{} {
			args := map[string]interface{}{}
			if ctx.DocTitle != "" {
				args["title"] = ctx.DocTitle
			} else if ctx.FirstSentence != "" {
				args["title"] = ctx.FirstSentence
			}
			return args
		},
		models.ActionUpdateDoc: func(ctx *Context) map[string]interface{} {
			args := map[string]interface{}{}
			if ctx.DocPath != "" {
				args["path"] = ctx.DocPath
			}
			if ctx.DocTitle != "" {
				args["title"] = ctx.DocTitle
			}
			return args
		},
		models.ActionDraftNextSteps: func(ctx *Context) map[string]interface{} {
			return map[string]interface{}{
				"topic": ctx.FirstSentence,
			}
		},
		models.ActionSaveSnippet: func(ctx *Context) map[string]interface{} {
			args := map[string]interface{}{}
			if ctx.SnippetTitle != "" {
				args["title"] = ctx.SnippetTitle
			}
			if ctx.InterfaceName != "" {
				args["interface"] = ctx.InterfaceName
			}
			return args
		},
		models.ActionSaveNote: func(ctx *Context) map[string]interface{} {
			return map[string]interface{}{
				"text": ctx.FirstSentence,
			}
		},
		models.ActionUpdateProject: func(ctx *Context) map[string]interface{} {
			args := map[string]interface{}{}
			if ctx.ProjectName != "" {
				args["name"] = ctx.ProjectName
			}
			if ctx.ProjectSlug != "" {
				args["slug"] = ctx.ProjectSlug
			}
			return args
		},
		models.ActionRequestAsset: func(ctx *Context) map[string]interface{} {
			args := map[string]interface{}{
				"kind": "image",
			}
			if len(ctx.PageTargets) > 0 {
				args["targets"] = ctx.PageTargets
			}
			return args
		},
	}
}

// reasonByAction is the fixed human-readable reason attached per action.
var reasonByAction = map[string]string{
	models.ActionQueueChangeRequest: "The message describes a concrete site change to queue for review.",
	models.ActionApplyHoursChange:   "High-confidence hours correction eligible for immediate apply.",
	models.ActionCreateIssue:        "The message reports a site problem worth tracking.",
	models.ActionCreateDoc:          "The message calls for a new document.",
	models.ActionUpdateDoc:          "The message asks to revise existing documentation.",
	models.ActionDraftNextSteps:     "The user is asking what to do next.",
	models.ActionSaveSnippet:        "A reusable code snippet was produced or requested.",
	models.ActionSaveNote:           "The user asked to have this remembered.",
	models.ActionUpdateProject:      "Project metadata needs to reflect this request.",
	models.ActionRequestAsset:       "A media change needs the replacement asset uploaded.",
}

// Preset is one action/weight pair contributed by a business-field preset.
type Preset struct {
	Name   string  `json:"name" mapstructure:"name"`
	Weight float64 `json:"weight" mapstructure:"weight"`
}

// DefaultPresetsByField maps a resolved business field to the actions it
// implies. Config may replace this table wholesale.
func DefaultPresetsByField() map[string][]Preset {
	return map[string][]Preset{
		models.FieldBusinessHours: {
			{Name: models.ActionQueueChangeRequest, Weight: 0.9},
		},
		models.FieldPhoneNumber: {
			{Name: models.ActionQueueChangeRequest, Weight: 0.9},
		},
		models.FieldGalleryPhotos: {
			{Name: models.ActionQueueChangeRequest, Weight: 0.8},
			{Name: models.ActionRequestAsset, Weight: 0.75},
		},
		models.FieldPricing: {
			{Name: models.ActionQueueChangeRequest, Weight: 0.85},
		},
		models.FieldServiceList: {
			{Name: models.ActionQueueChangeRequest, Weight: 0.8},
		},
		models.FieldHomepageContent: {
			{Name: models.ActionQueueChangeRequest, Weight: 0.8},
		},
		models.FieldHeaderBanner: {
			{Name: models.ActionQueueChangeRequest, Weight: 0.75},
		},
		models.FieldPhoneEmphasis: {
			{Name: models.ActionQueueChangeRequest, Weight: 0.7},
		},
		models.FieldSiteDesign: {
			{Name: models.ActionQueueChangeRequest, Weight: 0.6},
		},
		models.FieldCouponPromotion: {
			{Name: models.ActionQueueChangeRequest, Weight: 0.85},
		},
	}
}
