// Package language tags inbound text with the locale used to pick reply templates.
package language

import (
	"regexp"
	"unicode"
)

// Tag is a locale from the closed set the bot can answer in.
type Tag string

const (
	English Tag = "en"
	Hindi   Tag = "hi"
	Tamil   Tag = "ta"
	Telugu  Tag = "te"
)

var (
	devanagari = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0900, Hi: 0x097F, Stride: 1}}}
	tamil      = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0B80, Hi: 0x0BFF, Stride: 1}}}
	telugu     = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0C00, Hi: 0x0C7F, Stride: 1}}}

	hinglishWords = regexp.MustCompile(`(?i)\b(bhai|bro|demo|kya|ka|kaha|jaldi|hai|kitna|kitne|kaise|chahiye|mujhe|kab|nahi|haan|yaar|karo|bhejo)\b`)
)

// Detect returns the locale for text. Script checks run before the Hinglish
// keyword heuristic; anything else is English.
func Detect(text string) Tag {
	if text == "" {
		return English
	}
	switch {
	case containsScript(text, devanagari):
		return Hindi
	case containsScript(text, tamil):
		return Tamil
	case containsScript(text, telugu):
		return Telugu
	case hinglishWords.MatchString(text):
		return Hindi
	}
	return English
}

// Valid reports whether t is one of the supported tags.
func (t Tag) Valid() bool {
	switch t {
	case English, Hindi, Tamil, Telugu:
		return true
	}
	return false
}

func containsScript(text string, table *unicode.RangeTable) bool {
	for _, r := range text {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}
