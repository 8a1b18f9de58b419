// internal/analysis/intent/route.go
package intent

import (
	"sitedesk-workers/internal/models"
)

// Route decides the terminal handling mode. The checks are ordered; the
// first match wins.
func Route(flags *models.FlagSet, shape models.InputShape, entityCount int, certainty float64) models.Route {
	switch {
	case certainty < 0.4 || flags.Has(models.FlagClarify):
		return models.RouteAskClarifying
	case flags.HasAny(models.FlagOps, models.FlagDB) || shape.HasDiff || shape.HasSQL:
		return models.RouteRetrieveHeavy
	case flags.HasAny(models.FlagBugReport, models.FlagSiteIssue):
		return models.RouteRetrieveLight
	case flags.Has(models.FlagChangeRequest):
		return models.RouteRetrieveLight
	case flags.HasAny(models.FlagCodeWrite, models.FlagReview) || shape.HasCode || entityCount >= 1:
		return models.RouteRetrieveLight
	case flags.HasAny(models.FlagAssistance, models.FlagChitchat):
		return models.RouteRespondOnly
	case flags.Has(models.FlagContent):
		return models.RouteRetrieveLight
	default:
		return models.RouteRespondOnly
	}
}
