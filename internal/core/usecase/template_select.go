package usecase

import "github.com/ametelin/docinsight/internal/core/domain"

// SelectTemplate maps an intent and the visuals requirement onto one of the
// five fixed template ids. Selection is total: every input combination lands
// on a template, with the basic template as the fallthrough.
func SelectTemplate(intent domain.Intent, requiresVisuals bool) string {
	switch {
	case requiresVisuals || intent == domain.IntentVisual:
		return domain.TemplateVisual
	case intent == domain.IntentAnalytical:
		return domain.TemplateAnalytical
	case intent == domain.IntentComparative:
		return domain.TemplateComparative
	case intent == domain.IntentSummary:
		return domain.TemplateSummary
	default:
		return domain.TemplateBasic
	}
}

// ResolveTemplate looks up the selected template in the fixed table,
// falling back to the basic template for unknown ids.
func ResolveTemplate(templates map[string]domain.ResponseTemplate, id string) domain.ResponseTemplate {
	if tpl, ok := templates[id]; ok {
		return tpl
	}
	return templates[domain.TemplateBasic]
}
