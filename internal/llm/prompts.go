package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/summary.txt
var summaryPrompt string

const documentPlaceholder = "{{document}}"

// BuildSummaryPrompt embeds the document verbatim into the fixed summary instruction.
func BuildSummaryPrompt(content string) string {
	tmpl := strings.TrimSuffix(summaryPrompt, "\n")
	return strings.Replace(tmpl, documentPlaceholder, content, 1)
}
