package ingest

import (
	"regexp"
	"strings"
)

// A labeler inspects a block and, if its pattern applies, derives a short
// human-meaningful label. Labelers are tried in priority order; the first
// match wins. Labels anchor quest names and are not unique by themselves.
type labeler struct {
	name  string
	label func(block string) (string, bool)
}

var classifiers = []labeler{
	{name: "article", label: articleLabel},
	{name: "item", label: itemLabel},
	{name: "firstline", label: firstLineLabel},
}

// Classify derives a label for one content block by walking the classifier
// chain. firstLineLabel always matches, so a label is always produced.
func Classify(block string) string {
	for _, c := range classifiers {
		if label, ok := c.label(block); ok {
			return label
		}
	}
	return "block"
}

// articlePattern matches Korean statute headings: an optional qualifier word,
// then 제N조, optionally 의M, optionally a parenthesized title.
// e.g. "제31조(수업료) ..." or "형법 제250조의2 ...".
var articlePattern = regexp.MustCompile(`^\s*(?:[가-힣A-Za-z]+\s+)?(제\s*[0-9]+\s*조(?:\s*의\s*[0-9]+)?)\s*(?:\([^)]*\))?`)

func articleLabel(block string) (string, bool) {
	m := articlePattern.FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	return removeWhitespace(m[1]), true
}

// itemLabel matches blocks opening with a circled-number enumeration glyph
// (① through ⑳) as used for statute sub-items.
func itemLabel(block string) (string, bool) {
	trimmed := strings.TrimSpace(block)
	if trimmed == "" {
		return "", false
	}
	r := []rune(trimmed)[0]
	if r < '①' || r > '⑳' {
		return "", false
	}
	return "item-" + string(r), true
}

// firstLineLabel is the fallback: the first 15 runes of the first line, with
// whitespace and filesystem-unsafe characters stripped.
func firstLineLabel(block string) (string, bool) {
	line, _, _ := strings.Cut(strings.TrimSpace(block), "\n")
	label := strings.Map(func(r rune) rune {
		if strings.ContainsRune(` \/:*?"<>|{}`+"\t", r) {
			return -1
		}
		return r
	}, line)
	if runes := []rune(label); len(runes) > 15 {
		label = string(runes[:15])
	}
	if label == "" {
		return "block", true
	}
	return label, true
}

func removeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
