// File: models/participant.go
package models

import (
	"strings"
	"unicode"
)

// ----------------------- participant helpers -----------------------

// Initials derives the two-letter avatar badge for a participant email.
// A word-start is a letter at the beginning of the string or right after a rune
// that is not a letter or underscore, so "2john" starts a word at j. The first two
// word-starts are used; without any, the first two runes of the email are used.
// Both are upper-cased.
func Initials(email string) string {
	var picked []rune
	prevWord := false
	for _, r := range email {
		if unicode.IsLetter(r) && !prevWord {
			picked = append(picked, r)
			if len(picked) == 2 {
				break
			}
		}
		prevWord = isWordRune(r)
	}

	if len(picked) == 0 {
		runes := []rune(email)
		if len(runes) > 2 {
			runes = runes[:2]
		}
		picked = runes
	}
	return strings.ToUpper(string(picked))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// ----------------------- API payloads -----------------------

// SignupResult is the success body of the signup and unregister endpoints.
type SignupResult struct {
	Message string `json:"message"`
}

// ErrorBody is the failure body of the signup and unregister endpoints.
type ErrorBody struct {
	Detail string `json:"detail"`
}
