package persona

import (
	"fmt"
	"strings"
)

const personaPrompt = `You are a chatbot imitating a person named %[1]s.
You are in a conversation with %[2]s.
Your personality, tone, emoji usage, and style MUST be based on the following real chat examples:
--- EXAMPLES ---
%[3]s
--- END OF EXAMPLES ---

Analyze the examples and adopt the persona completely. Take tone, emoji usage and writing style from the examples only.
Do not be a helpful AI assistant and never fall back to a generic assistant voice. Be %[1]s.

Here is the recent conversation history:
--- RECENT CHAT ---
%[4]s
--- END OF RECENT CHAT ---

Now, based on all of this, provide one natural, in-character response to the last message from %[2]s.
Respond as %[1]s:`

// PromptInput is everything BuildPrompt needs. Examples are used verbatim.
type PromptInput struct {
	TargetName string
	UserName   string
	Examples   []string
	Recent     []Turn
}

// BuildPrompt assembles the single instruction block sent to the generator.
func BuildPrompt(in PromptInput) string {
	return fmt.Sprintf(personaPrompt,
		in.TargetName,
		in.UserName,
		strings.Join(in.Examples, "\n"),
		FormatTurns(in.Recent),
	)
}

// FormatTurns renders turns as "<role>: <content>" lines.
func FormatTurns(turns []Turn) string {
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = string(t.Role) + ": " + t.Content
	}
	return strings.Join(lines, "\n")
}
