package domain

// Intent is the closed classification of a query's information need.
type Intent string

const (
	IntentVisual      Intent = "visual"
	IntentTextual     Intent = "textual"
	IntentHybrid      Intent = "hybrid"
	IntentComparative Intent = "comparative"
	IntentAnalytical  Intent = "analytical"
	IntentFactual     Intent = "factual"
	IntentSummary     Intent = "summary"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentVisual, IntentTextual, IntentHybrid, IntentComparative,
		IntentAnalytical, IntentFactual, IntentSummary:
		return true
	}
	return false
}

func (i Intent) String() string { return string(i) }
