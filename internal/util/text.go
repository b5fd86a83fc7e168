package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	reSpaces = regexp.MustCompile(`\s+`)
	titler   = cases.Title(language.English)
)

// TitleCase renders a fragment with each word capitalized, the way lead
// lists conventionally display names and companies.
func TitleCase(input string) string {
	return titler.String(strings.ToLower(strings.TrimSpace(input)))
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// StripEdgePunct removes one leading and one trailing punctuation
// character (.,;:!?) from a token.
func StripEdgePunct(token string) string {
	const punct = ".,;:!?"
	if len(token) > 0 && strings.ContainsRune(punct, rune(token[len(token)-1])) {
		token = token[:len(token)-1]
	}
	if len(token) > 0 && strings.ContainsRune(punct, rune(token[0])) {
		token = token[1:]
	}
	return token
}

// StripTrailingDigits removes a run of trailing decimal digits, used on
// email local parts so "jsmith42" compares as "jsmith".
func StripTrailingDigits(s string) string {
	end := len(s)
	for end > 0 && s[end-1] >= '0' && s[end-1] <= '9' {
		end--
	}
	return s[:end]
}

func ContainsLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// AlphabeticToken reports whether a token is purely alphabetic, allowing
// dotted initials like "J." or "St.John".
func AlphabeticToken(token string) bool {
	if token == "" {
		return false
	}
	letters := 0
	for _, r := range token {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		case r == '.':
		default:
			return false
		}
	}
	return letters > 0
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
