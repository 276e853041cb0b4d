package domain

// AnalysisDepth controls how thorough the generated answer should be.
type AnalysisDepth string

const (
	DepthBasic         AnalysisDepth = "basic"
	DepthDetailed      AnalysisDepth = "detailed"
	DepthComprehensive AnalysisDepth = "comprehensive"
)

// ResponseTemplate drives prompt construction for one intent family.
// Templates are a fixed process-wide set resolved at startup and never
// mutated afterwards. UserPromptPattern carries the {query}, {content}
// and {analysis_depth} placeholders.
type ResponseTemplate struct {
	Name              string        `json:"name" yaml:"name"`
	IntentType        Intent        `json:"intent_type" yaml:"intent_type"`
	SystemPrompt      string        `json:"system_prompt" yaml:"system_prompt"`
	UserPromptPattern string        `json:"user_prompt_pattern" yaml:"user_prompt_pattern"`
	ResponseFormat    string        `json:"response_format" yaml:"response_format"`
	IncludeVisuals    bool          `json:"include_visuals" yaml:"include_visuals"`
	IncludeSources    bool          `json:"include_sources" yaml:"include_sources"`
	AnalysisDepth     AnalysisDepth `json:"analysis_depth" yaml:"analysis_depth"`
}

const (
	TemplateBasic       = "basic_response"
	TemplateVisual      = "visual_response"
	TemplateAnalytical  = "analytical_response"
	TemplateComparative = "comparative_response"
	TemplateSummary     = "summary_response"
)

// DefaultTemplates returns the built-in template table. Callers must treat
// the result as read-only.
func DefaultTemplates() map[string]ResponseTemplate {
	return map[string]ResponseTemplate{
		TemplateBasic: {
			Name:       TemplateBasic,
			IntentType: IntentTextual,
			SystemPrompt: `You are an advanced AI assistant specialized in document analysis.
Provide accurate, helpful responses based on the document content provided.
Always cite sources and maintain factual accuracy.`,
			UserPromptPattern: `Based on the following document content, please answer this question: {query}

Content:
{content}

Please provide a {analysis_depth} response with clear explanations and source citations.`,
			ResponseFormat: "structured",
			IncludeVisuals: false,
			IncludeSources: true,
			AnalysisDepth:  DepthDetailed,
		},
		TemplateVisual: {
			Name:       TemplateVisual,
			IntentType: IntentVisual,
			SystemPrompt: `You are an expert in visual data analysis. When analyzing charts, graphs,
tables, or diagrams, provide detailed descriptions of visual elements, data trends,
and insights. Always explain what visual elements show and their significance.`,
			UserPromptPattern: `Analyze the following query about visual content: {query}

Content (including visual descriptions):
{content}

Please provide a {analysis_depth} analysis that:
1. Describes relevant visual elements in detail
2. Explains data trends and patterns
3. Provides insights and interpretations
4. Includes source citations

Focus on visual elements and their meaning.`,
			ResponseFormat: "visual_analysis",
			IncludeVisuals: true,
			IncludeSources: true,
			AnalysisDepth:  DepthComprehensive,
		},
		TemplateAnalytical: {
			Name:       TemplateAnalytical,
			IntentType: IntentAnalytical,
			SystemPrompt: `You are a research analyst expert. Provide deep analytical insights,
identify patterns, trends, and relationships in the data. Support conclusions with
evidence and explain methodologies when relevant.`,
			UserPromptPattern: `Provide an analytical response to: {query}

Content for analysis:
{content}

Please provide a {analysis_depth} analysis that includes:
1. Key findings and insights
2. Data patterns and trends
3. Implications and significance
4. Supporting evidence with citations
5. Methodological considerations if relevant

Focus on analytical depth and evidence-based conclusions.`,
			ResponseFormat: "analytical_report",
			IncludeVisuals: true,
			IncludeSources: true,
			AnalysisDepth:  DepthComprehensive,
		},
		TemplateComparative: {
			Name:       TemplateComparative,
			IntentType: IntentComparative,
			SystemPrompt: `You are an expert in comparative analysis. Compare and contrast
different data points, findings, or visual elements. Highlight similarities,
differences, and relationships between compared elements.`,
			UserPromptPattern: `Compare and analyze: {query}

Content for comparison:
{content}

Please provide a {analysis_depth} comparative analysis that includes:
1. Clear comparison framework
2. Similarities and differences
3. Relative strengths and weaknesses
4. Contextual factors
5. Conclusions with supporting evidence

Structure your response with clear comparisons and evidence.`,
			ResponseFormat: "comparative_analysis",
			IncludeVisuals: true,
			IncludeSources: true,
			AnalysisDepth:  DepthDetailed,
		},
		TemplateSummary: {
			Name:       TemplateSummary,
			IntentType: IntentSummary,
			SystemPrompt: `You are an expert at creating clear, concise summaries.
Extract key points, main findings, and essential information while maintaining
accuracy and completeness.`,
			UserPromptPattern: `Create a summary for: {query}

Content to summarize:
{content}

Please provide a {analysis_depth} summary that includes:
1. Main points and key findings
2. Important data and statistics
3. Significant conclusions
4. Relevant visual insights if applicable

Keep the summary clear, accurate, and well-organized.`,
			ResponseFormat: "structured_summary",
			IncludeVisuals: false,
			IncludeSources: true,
			AnalysisDepth:  DepthDetailed,
		},
	}
}
