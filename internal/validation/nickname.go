// Package validation provides input validation and display helpers.
package validation

import "strings"

// AnonymousLabel is rendered in place of a display name for anonymous
// posts and comments.
const AnonymousLabel = "익명"

// MaskNickname partially hides a display name: the first character stays,
// every remaining character becomes '*'. Strings of length 0 or 1 are
// returned unchanged. Length is counted in runes so multi-byte names mask
// correctly.
func MaskNickname(nickname string) string {
	runes := []rune(nickname)
	if len(runes) <= 1 {
		return nickname
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}

// DisplayName resolves the name rendered for an author: the anonymous label
// when the content is anonymous, otherwise the masked nickname.
func DisplayName(nickname string, isAnonymous bool) string {
	if isAnonymous {
		return AnonymousLabel
	}
	return MaskNickname(nickname)
}
