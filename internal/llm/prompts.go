package llm

import (
	"fmt"
	"strings"

	"github.com/rvelikov/fallax/internal/model"
)

func buildDetectPrompt(text string) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following argumentative text for logical fallacies.\n\n")
	sb.WriteString("Text:\n\"\"\"\n")
	sb.WriteString(text)
	sb.WriteString("\n\"\"\"\n\n")
	sb.WriteString("Report every fallacy occurrence you find as a JSON array. Each element:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"kind\": \"name of the fallacy, lowercase (e.g. \\\"ad hominem\\\", \\\"straw man\\\")\",\n")
	sb.WriteString("  \"start\": byte offset where the offending passage begins,\n")
	sb.WriteString("  \"end\": byte offset where it ends (exclusive),\n")
	sb.WriteString("  \"excerpt\": \"the offending passage, quoted verbatim from the text\",\n")
	sb.WriteString("  \"confidence\": integer 0-100, how certain you are this is a genuine fallacy\n")
	sb.WriteString("}\n\n")
	sb.WriteString("If the text contains no fallacies, respond with an empty array: []\n")
	sb.WriteString("Respond with the JSON array only.")

	return sb.String()
}

func buildExplainPrompt(kind, excerpt string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("A passage was flagged as the fallacy %q:\n\n", kind))
	sb.WriteString("\"\"\"\n")
	sb.WriteString(excerpt)
	sb.WriteString("\n\"\"\"\n\n")
	sb.WriteString("Explain it for a general reader. Respond with a JSON object:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"definition\": \"one-sentence definition of this fallacy\",\n")
	sb.WriteString("  \"rationale\": \"why this specific passage commits it\",\n")
	sb.WriteString("  \"educational_note\": \"how the author could argue the point soundly\"\n")
	sb.WriteString("}\n\n")
	sb.WriteString("Respond with the JSON object only.")

	return sb.String()
}

func buildRewritePrompt(text string, fallacies []model.DetectedFallacy) string {
	var sb strings.Builder

	sb.WriteString("Rewrite the following text so it makes the same overall point without the reasoning fallacies listed below. Preserve the author's voice and intent.\n\n")
	sb.WriteString("Text:\n\"\"\"\n")
	sb.WriteString(text)
	sb.WriteString("\n\"\"\"\n\n")
	sb.WriteString("Fallacies to address:\n")
	for _, f := range fallacies {
		if f.Excerpt != "" {
			sb.WriteString(fmt.Sprintf("- %s: %q\n", f.Kind, f.Excerpt))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n", f.Kind))
		}
	}
	sb.WriteString("\nRespond with a JSON object:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"text\": \"the full rewritten text\",\n")
	sb.WriteString("  \"changes\": [\n")
	sb.WriteString("    {\"original_segment\": \"...\", \"revised_segment\": \"...\", \"reason\": \"...\"}\n")
	sb.WriteString("  ]\n")
	sb.WriteString("}\n\n")
	sb.WriteString("Respond with the JSON object only.")

	return sb.String()
}
