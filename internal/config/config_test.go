package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ametelin/docinsight/internal/core/domain"
)

func TestLoadRetrievalDefaults(t *testing.T) {
	t.Setenv("RETRIEVAL_PRIMARY_TOP_K", "")
	t.Setenv("RETRIEVAL_VISUAL_TOP_K", "")
	t.Setenv("RETRIEVAL_CONTEXT_TOP_K", "")
	t.Setenv("RETRIEVAL_CONTEXT_CAP", "")
	t.Setenv("RETRIEVAL_RERANK_LIMIT", "")

	cfg := Load()
	if cfg.RetrievalPrimaryTopK != 10 {
		t.Fatalf("expected default primary top k 10, got %d", cfg.RetrievalPrimaryTopK)
	}
	if cfg.RetrievalVisualTopK != 5 {
		t.Fatalf("expected default visual top k 5, got %d", cfg.RetrievalVisualTopK)
	}
	if cfg.RetrievalContextTopK != 3 {
		t.Fatalf("expected default context top k 3, got %d", cfg.RetrievalContextTopK)
	}
	if cfg.RetrievalContextCap != 5 {
		t.Fatalf("expected default context cap 5, got %d", cfg.RetrievalContextCap)
	}
	if cfg.RetrievalRerankLimit != 10 {
		t.Fatalf("expected default rerank limit 10, got %d", cfg.RetrievalRerankLimit)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_PRIMARY_TOP_K", "25")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("API_RATE_LIMIT_BURST", "bogus")

	cfg := Load()
	if cfg.RetrievalPrimaryTopK != 25 {
		t.Fatalf("expected primary top k 25, got %d", cfg.RetrievalPrimaryTopK)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIRateLimitBurst != 20 {
		t.Fatalf("unparseable int must fall back to default, got %d", cfg.APIRateLimitBurst)
	}
}

func TestLoadTemplatesWithoutPathReturnsBuiltins(t *testing.T) {
	templates, err := LoadTemplates("")
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}
	if len(templates) != 5 {
		t.Fatalf("expected 5 built-in templates, got %d", len(templates))
	}
	if _, ok := templates[domain.TemplateVisual]; !ok {
		t.Fatalf("expected visual template present")
	}
}

func TestLoadTemplatesMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	override := `
basic_response:
  system_prompt: "You answer in one short paragraph."
  include_visuals: true
`
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatalf("write templates file: %v", err)
	}

	templates, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}

	basic := templates[domain.TemplateBasic]
	if basic.SystemPrompt != "You answer in one short paragraph." {
		t.Fatalf("system prompt not overridden: %q", basic.SystemPrompt)
	}
	if !basic.IncludeVisuals {
		t.Fatalf("include_visuals not overridden")
	}
	// Untouched fields keep their built-in values.
	if basic.UserPromptPattern == "" || basic.ResponseFormat == "" {
		t.Fatalf("unset fields must keep builtin values: %+v", basic)
	}
}

func TestLoadTemplatesRejectsUnknownID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte("mystery_template:\n  system_prompt: x\n"), 0o644); err != nil {
		t.Fatalf("write templates file: %v", err)
	}

	if _, err := LoadTemplates(path); err == nil {
		t.Fatalf("expected error for unknown template id")
	}
}
