package services

import (
	"fmt"

	"github.com/tbourn/go-issue-digest/internal/domain"
	"github.com/tbourn/go-issue-digest/internal/llm"
)

// Output budgets per kind when no global cap is configured. Reasoning models
// spend part of the budget inside <think> blocks, so these are generous.
const (
	shortSummaryTokens    = 1024
	detailedSummaryTokens = 4096
	translationTokens     = 4096
)

const shortSummaryPrompt = `You summarize software issue reports for a project dashboard.
Write a summary of the issue below in %s, in at most two sentences.
State the problem and, if given, the affected component. Do not add greetings,
headings, markdown or speculation. Output only the summary.`

const detailedSummaryPrompt = `You summarize software issue reports for maintainers.
Write a detailed summary of the issue below in %s with these parts as plain
paragraphs: what is wrong, how to reproduce it, what was expected, and any
workaround or proposed fix mentioned. Keep code identifiers verbatim.
Do not invent details that are not in the report. Output only the summary.`

const translationPrompt = `Translate the text below from %s to %s.
Keep code identifiers, file paths, URLs and product names unchanged.
Output only the translation, with no notes or quotation marks.`

// summaryRequest builds the generation request for kind in lang.
func summaryRequest(kind domain.ContentKind, text string, lang domain.Language, maxTokens int) llm.Request {
	prompt, budget := shortSummaryPrompt, shortSummaryTokens
	if kind == domain.KindDetailedSummary {
		prompt, budget = detailedSummaryPrompt, detailedSummaryTokens
	}
	if maxTokens > 0 {
		budget = maxTokens
	}
	return llm.Request{
		Instructions: fmt.Sprintf(prompt, lang.Name),
		Text:         text,
		SourceLang:   lang.Code(),
		TargetLang:   lang.Code(),
		MaxTokens:    budget,
	}
}

// translationRequest builds the request translating text from src to dst.
func translationRequest(text string, src, dst domain.Language, maxTokens int) llm.Request {
	budget := translationTokens
	if maxTokens > 0 {
		budget = maxTokens
	}
	return llm.Request{
		Instructions: fmt.Sprintf(translationPrompt, src.Name, dst.Name),
		Text:         text,
		SourceLang:   src.Code(),
		TargetLang:   dst.Code(),
		MaxTokens:    budget,
	}
}
