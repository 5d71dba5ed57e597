package persona

import "fmt"

// Operator-facing text. The UI layer decides where to show it.

func LearnedMessage(target string) string {
	return fmt.Sprintf("Great! I've learned the chat style of %s. Let's talk!", target)
}

func NotFoundMessage(target string) string {
	return fmt.Sprintf("Couldn't find any messages from '%s'. Please double-check the spelling and ensure the file is a valid WhatsApp chat export.", target)
}

func ChatPlaceholder(target string) string {
	return fmt.Sprintf("Message %s...", target)
}

func TypingMessage(target string) string {
	return fmt.Sprintf("%s is typing...", target)
}

// FailureReply is the assistant turn substituted for a failed generation.
func FailureReply(err error) string {
	return fmt.Sprintf("Sorry, I ran into a little trouble. (Error: %v)", err)
}
