package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// emoticons covers the Unicode emoticons block U+1F600..U+1F64F
var emoticons = &unicode.RangeTable{
	R32: []unicode.Range32{{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}},
}

// HasQuestion reports a question mark in either Latin or Arabic punctuation
func HasQuestion(body string) bool {
	return strings.ContainsRune(body, '?') || strings.ContainsRune(body, '؟')
}

// HasEmoji reports presence of an emoticon code point
func HasEmoji(body string) bool {
	for _, r := range body {
		if unicode.Is(emoticons, r) {
			return true
		}
	}
	return false
}

// HasLink reports a URL-like substring
func HasLink(body string) bool {
	return strings.Contains(body, "http://") || strings.Contains(body, "https://")
}

// BodyLength counts characters, not bytes
func BodyLength(body string) int {
	return utf8.RuneCountInString(body)
}

// WordCount counts whitespace-separated tokens
func WordCount(body string) int {
	return len(strings.Fields(body))
}
