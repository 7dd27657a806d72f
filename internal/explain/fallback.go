package explain

import (
	"strings"

	"github.com/rvelikov/fallax/internal/model"
)

// fallbackDefinitions holds canned explanations for the common fallacy kinds.
// They carry a definition and a generic educational note but no per-passage
// rationale, since no engine output is available when these are used.
var fallbackDefinitions = map[string]model.Explanation{
	"ad hominem": {
		Definition:      "Attacking the person making an argument rather than the argument itself.",
		EducationalNote: "Respond to the claim's evidence and reasoning, not to who is making it.",
	},
	"straw man": {
		Definition:      "Misrepresenting an opposing position to make it easier to attack.",
		EducationalNote: "Restate the opposing view in its strongest form before arguing against it.",
	},
	"false dilemma": {
		Definition:      "Presenting only two options when more exist.",
		EducationalNote: "Look for middle-ground positions and alternatives the framing leaves out.",
	},
	"slippery slope": {
		Definition:      "Claiming one step inevitably leads to an extreme chain of consequences without evidence for the chain.",
		EducationalNote: "Argue each step of the chain on its own evidence instead of assuming the sequence.",
	},
	"appeal to authority": {
		Definition:      "Treating a claim as true because an authority asserts it, rather than because of supporting evidence.",
		EducationalNote: "Cite the evidence behind the expert's view, and check the authority is relevant to the field.",
	},
	"appeal to emotion": {
		Definition:      "Using emotional pressure in place of evidence to win acceptance of a claim.",
		EducationalNote: "Emotion can illustrate stakes, but the claim still needs independent support.",
	},
	"hasty generalization": {
		Definition:      "Drawing a broad conclusion from too small or unrepresentative a sample.",
		EducationalNote: "State how large and how representative the sample is before generalizing.",
	},
	"circular reasoning": {
		Definition:      "Using the conclusion as one of the premises that supposedly support it.",
		EducationalNote: "Support the conclusion with premises that can be accepted without already believing it.",
	},
	"red herring": {
		Definition:      "Introducing an irrelevant topic to divert attention from the issue at hand.",
		EducationalNote: "Keep the response anchored to the original question being argued.",
	},
	"bandwagon": {
		Definition:      "Arguing a claim is true because many people believe or do it.",
		EducationalNote: "Popularity is not evidence; give reasons the belief is correct.",
	},
	"post hoc": {
		Definition:      "Concluding that because one event followed another, the first caused the second.",
		EducationalNote: "Show a causal mechanism or rule out other explanations before claiming causation.",
	},
	"appeal to ignorance": {
		Definition:      "Treating a claim as true because it has not been proven false, or vice versa.",
		EducationalNote: "Absence of disproof is not proof; argue from what the evidence actually shows.",
	},
}

var genericFallback = model.Explanation{
	Definition:      "A reasoning pattern in which the stated premises do not properly support the conclusion.",
	EducationalNote: "Check whether the premises, taken on their own, genuinely establish the conclusion.",
}

// FallbackExplanation returns a canned explanation for the kind, or a generic
// one when the kind is unknown. The result is always marked as a fallback.
func FallbackExplanation(kind string) *model.Explanation {
	exp, ok := fallbackDefinitions[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		exp = genericFallback
	}
	exp.Fallback = true
	return &exp
}
