package summary

// Style selects the shape of the generated summary.
type Style string

const (
	StyleQuick   Style = "quick"
	StyleBullets Style = "bullets"
)

const (
	// MinTextLength is the minimum input size, in characters, worth summarizing.
	MinTextLength = 100
	// MaxPromptText caps how much of the input is sent to a provider.
	MaxPromptText = 15000
)

var templates = map[Style]string{
	StyleQuick: "Summarize this article in 2-3 clear, concise sentences. " +
		"Focus on the main point and key takeaway. " +
		"DO NOT use markdown formatting like ** or bold. Just plain text:\n\n",
	StyleBullets: "Summarize this article as 3-5 KEY bullet points only. " +
		"Focus on the most important takeaways. " +
		"Keep each bullet point to ONE short sentence. " +
		"Use simple hyphens (-) for bullets. " +
		"DO NOT use sub-bullets or nested points. DO NOT use markdown. Be concise:\n\n",
}

// Valid reports whether s has a prompt template.
func (s Style) Valid() bool {
	_, ok := templates[s]
	return ok
}

// BuildPrompt prefixes the style template to the input, cut to MaxPromptText runes.
func BuildPrompt(style Style, text string) string {
	return templates[style] + truncate(text, MaxPromptText)
}

func truncate(s string, maxRunes int) string {
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}
