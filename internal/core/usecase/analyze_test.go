package usecase

import (
	"reflect"
	"testing"

	"github.com/ametelin/docinsight/internal/core/domain"
)

func TestAnalyzeVisualQuery(t *testing.T) {
	analyzer := NewQueryAnalyzer(nil)

	analysis := analyzer.Analyze("Show me the chart for Q1 revenue", nil)
	if analysis.Intent != domain.IntentVisual {
		t.Fatalf("expected visual intent, got %s", analysis.Intent)
	}
	if !analysis.RequiresVisuals {
		t.Fatalf("expected requires_visuals=true")
	}
	if analysis.TemplateID != domain.TemplateVisual {
		t.Fatalf("expected visual template, got %s", analysis.TemplateID)
	}
	if analysis.Confidence < 0.899 || analysis.Confidence > 0.901 {
		t.Fatalf("expected confidence 0.9 with strong visual literal, got %v", analysis.Confidence)
	}
}

func TestAnalyzeComparativeQuery(t *testing.T) {
	analyzer := NewQueryAnalyzer(nil)

	analysis := analyzer.Analyze("Compare Q1 and Q2 performance", nil)
	if analysis.Intent != domain.IntentComparative {
		t.Fatalf("expected comparative intent, got %s", analysis.Intent)
	}
	if analysis.TemplateID != domain.TemplateComparative {
		t.Fatalf("expected comparative template, got %s", analysis.TemplateID)
	}
	if !analysis.RequiresVisuals {
		t.Fatalf("comparative queries should still request the visual retrieval stage")
	}
}

func TestAnalyzeSummaryQuery(t *testing.T) {
	analyzer := NewQueryAnalyzer(nil)

	analysis := analyzer.Analyze("Summarize the key findings", nil)
	if analysis.Intent != domain.IntentSummary {
		t.Fatalf("expected summary intent, got %s", analysis.Intent)
	}
	if analysis.TemplateID != domain.TemplateSummary {
		t.Fatalf("expected summary template, got %s", analysis.TemplateID)
	}
}

func TestAnalyzeVisualPrecedenceOverOtherVocabularies(t *testing.T) {
	analyzer := NewQueryAnalyzer(nil)

	// Contains comparative and analytical vocabulary too; visual wins.
	analysis := analyzer.Analyze("Compare and analyze the trend in the sales graph", nil)
	if analysis.Intent != domain.IntentVisual {
		t.Fatalf("expected visual precedence, got %s", analysis.Intent)
	}
}

func TestAnalyzeFactualFallback(t *testing.T) {
	analyzer := NewQueryAnalyzer(nil)

	analysis := analyzer.Analyze("What year was the company founded?", nil)
	if analysis.Intent != domain.IntentFactual {
		t.Fatalf("expected factual intent, got %s", analysis.Intent)
	}
	if analysis.TemplateID != domain.TemplateBasic {
		t.Fatalf("expected basic template, got %s", analysis.TemplateID)
	}
}

func TestAnalyzeEmptyQueryDegradesToDefault(t *testing.T) {
	analyzer := NewQueryAnalyzer(nil)

	first := analyzer.Analyze("", nil)
	if first.Intent != domain.IntentTextual {
		t.Fatalf("expected textual default, got %s", first.Intent)
	}
	if first.Confidence != 0.5 {
		t.Fatalf("expected default confidence 0.5, got %v", first.Confidence)
	}
	if len(first.Keywords) != 0 || len(first.VisualKeywords) != 0 {
		t.Fatalf("expected empty keyword sets")
	}
	if first.TemplateID != domain.TemplateBasic {
		t.Fatalf("expected basic template, got %s", first.TemplateID)
	}

	second := analyzer.Analyze("", nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected idempotent default analysis")
	}
}

func TestAnalyzeScoresStayInRange(t *testing.T) {
	analyzer := NewQueryAnalyzer(nil)

	queries := []string{
		"",
		"?",
		"analyze the correlation and relationship and implication and methodology of the analysis approach furthermore additionally also, what does the chart show?",
		"a b c",
	}
	for _, q := range queries {
		analysis := analyzer.Analyze(q, nil)
		if analysis.Confidence < 0 || analysis.Confidence > 1 {
			t.Fatalf("confidence out of range for %q: %v", q, analysis.Confidence)
		}
		if analysis.ComplexityScore < 0 || analysis.ComplexityScore > 1 {
			t.Fatalf("complexity out of range for %q: %v", q, analysis.ComplexityScore)
		}
		if !analysis.Intent.Valid() {
			t.Fatalf("invalid intent for %q: %s", q, analysis.Intent)
		}
	}
}

func TestAnalyzeMetadataCountsHistory(t *testing.T) {
	analyzer := NewQueryAnalyzer(nil)

	history := []domain.ConversationTurn{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	analysis := analyzer.Analyze("Tell me more about revenue growth", history)
	if got := analysis.Metadata["conversation_context"]; got != 2 {
		t.Fatalf("expected conversation_context=2, got %v", got)
	}
	if got := analysis.Metadata["word_count"]; got != 6 {
		t.Fatalf("expected word_count=6, got %v", got)
	}
}
