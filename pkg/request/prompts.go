package request

// DefaultInstruction is used when the caller supplies no clinical context:
// detailed findings, a possible diagnosis when uncertain, and answers in the
// user's language with English as the default.
const DefaultInstruction = "Analyze this medical image and provide detailed findings." +
	"\n\n" +
	"If you are not sure about the diagnosis, please provide a possible diagnosis." +
	"\n\n" +
	"Answer in the language of the user. If it is not given, answer English."

// contextTemplate wraps caller-supplied clinical context. The context text
// appears verbatim.
const contextTemplate = "Analyze this medical image considering the following context: "

// QuickPrompts are ready-made context snippets a hosting UI can offer for the
// free-text field.
var QuickPrompts = map[string]string{
	"Answer in English":      "Answer in English.",
	"Antworte auf Deutsch":   "Antworte auf Deutsch.",
	"Radiology-style report": "Provide a radiology-style report with:\n- Modality and study type (if apparent)\n- Key findings\n- Impression (most likely diagnosis + differential)\n- Recommended next steps\nKeep it concise.",
	"Explain for patient":    "Explain the findings in simple, patient-friendly language.",
	"Focus: red flags":       "Focus on urgent findings / red flags and what to do next.",
	"Add patient context":    "Patient context:\n- Age: \n- Sex: \n- Symptoms: \n- Relevant history: \n- Clinical question: \n",
}

// BuildPrompt returns the analysis prompt for the given clinical context.
// An empty context resolves to DefaultInstruction.
func BuildPrompt(contextText string) string {
	if contextText == "" {
		return DefaultInstruction
	}
	return contextTemplate + contextText
}
