package intent

import (
	"regexp"
	"strings"
)

var (
	questionWords = []string{
		"kya", "kaise", "kyu", "kyun",
		"why", "what", "how",
		"safe", "legal", "police", "helmet",
		"return", "refund", "replace", "exchange",
		"fit", "size", "original", "genuine", "fake",
	}

	safetyPattern = regexp.MustCompile(`(?i)(spark|sparks|fire|danger|safe)`)

	quickCommands = map[string]Tag{
		"demo":   Demo,
		"order":  Order,
		"buy":    Order,
		"price":  Price,
		"track":  Track,
		"return": Return,
		"human":  Human,
		"help":   Help,
	}
)

// LooksLikeQuestion gates the safety reply and the generative fallback so
// that chatter which merely mentions a keyword is not answered.
func LooksLikeQuestion(text string) bool {
	t := strings.ToLower(text)
	if t == "" {
		return false
	}
	if strings.Contains(t, "?") {
		return true
	}
	for _, w := range questionWords {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}

// IsSafetyQuestion reports a question about sparks, fire or danger.
func IsSafetyQuestion(text string) bool {
	return safetyPattern.MatchString(text) && LooksLikeQuestion(text)
}

// IsGreeting reports whether text opens with a greeting word.
func IsGreeting(text string) bool {
	return greetingPattern.MatchString(Normalize(text))
}

// QuickCommand matches single-word commands such as DEMO or ORDER exactly.
func QuickCommand(text string) (Tag, bool) {
	tag, ok := quickCommands[Normalize(text)]
	return tag, ok
}
