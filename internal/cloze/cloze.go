// Package cloze turns quest content with inline {answer} markers into gradable
// fill-in-the-blank exercises.
package cloze

import (
	"regexp"
	"strings"
)

var markerPattern = regexp.MustCompile(`\{([^{}]*)\}`)

// PartKind discriminates the two kinds of exercise segments.
type PartKind int

const (
	// PartText is a literal run of content shown as-is.
	PartText PartKind = iota
	// PartInput is a blank the user must fill; Index orders the inputs.
	PartInput
)

// Part is one segment of a presented exercise.
type Part struct {
	Kind  PartKind
	Text  string // set for PartText
	Index int    // set for PartInput, 0-based
}

// Exercise is the parsed presentation of a quest's content. Targets is the
// ordered list of expected answers, parallel to the input parts.
type Exercise struct {
	Parts   []Part
	Targets []string
}

// HasBlanks reports whether the exercise contains at least one input. Content
// with zero markers degrades to a pass-through read; the caller decides how to
// present it.
func (e Exercise) HasBlanks() bool {
	return len(e.Targets) > 0
}

// Parse scans content left to right for non-overlapping {...} spans. Each span
// becomes an input part and its trimmed inner text the expected answer at the
// same index. Content between spans is emitted as literal text parts.
func Parse(content string) Exercise {
	var ex Exercise
	last := 0
	for i, loc := range markerPattern.FindAllStringSubmatchIndex(content, -1) {
		if loc[0] > last {
			ex.Parts = append(ex.Parts, Part{Kind: PartText, Text: content[last:loc[0]]})
		}
		ex.Parts = append(ex.Parts, Part{Kind: PartInput, Index: i})
		ex.Targets = append(ex.Targets, strings.TrimSpace(content[loc[2]:loc[3]]))
		last = loc[1]
	}
	if last < len(content) {
		ex.Parts = append(ex.Parts, Part{Kind: PartText, Text: content[last:]})
	}
	return ex
}

// Strip removes all {...} markers, leaving the inner text in place.
func Strip(content string) string {
	return markerPattern.ReplaceAllString(content, "$1")
}

// ParseRecall builds the whole-passage recall variant: every marker is
// stripped back to literal text and the entire cleaned content becomes the
// single expected answer for one input.
func ParseRecall(content string) Exercise {
	clean := strings.TrimSpace(Strip(content))
	return Exercise{
		Parts:   []Part{{Kind: PartInput, Index: 0}},
		Targets: []string{clean},
	}
}
