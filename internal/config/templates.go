package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ametelin/docinsight/internal/core/domain"
)

// LoadTemplates returns the built-in response templates, optionally
// overridden from a YAML file. Overrides are merged per template id and
// per field, so a file can replace just one prompt without restating the
// whole template set.
func LoadTemplates(path string) (map[string]domain.ResponseTemplate, error) {
	templates := domain.DefaultTemplates()
	if path == "" {
		return templates, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}

	var overrides map[string]templateOverride
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse templates yaml: %w", err)
	}

	for id, override := range overrides {
		base, ok := templates[id]
		if !ok {
			return nil, fmt.Errorf("unknown template id %q", id)
		}
		templates[id] = override.apply(base)
	}
	return templates, nil
}

// templateOverride uses pointers so absent fields keep the built-in value.
type templateOverride struct {
	SystemPrompt      *string `yaml:"system_prompt"`
	UserPromptPattern *string `yaml:"user_prompt_pattern"`
	ResponseFormat    *string `yaml:"response_format"`
	IncludeVisuals    *bool   `yaml:"include_visuals"`
	IncludeSources    *bool   `yaml:"include_sources"`
	AnalysisDepth     *string `yaml:"analysis_depth"`
}

func (o templateOverride) apply(base domain.ResponseTemplate) domain.ResponseTemplate {
	out := base
	if o.SystemPrompt != nil {
		out.SystemPrompt = *o.SystemPrompt
	}
	if o.UserPromptPattern != nil {
		out.UserPromptPattern = *o.UserPromptPattern
	}
	if o.ResponseFormat != nil {
		out.ResponseFormat = *o.ResponseFormat
	}
	if o.IncludeVisuals != nil {
		out.IncludeVisuals = *o.IncludeVisuals
	}
	if o.IncludeSources != nil {
		out.IncludeSources = *o.IncludeSources
	}
	if o.AnalysisDepth != nil {
		out.AnalysisDepth = domain.AnalysisDepth(*o.AnalysisDepth)
	}
	return out
}
