package ingest

import (
	"regexp"
	"strings"
)

var (
	blankLinePattern     = regexp.MustCompile(`\n\s*\n`)
	lineBreakTagPattern  = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTagPattern       = regexp.MustCompile(`<[^>]+>`)
	underscoreRunPattern = regexp.MustCompile(`_{2,}`)
	answerSepPattern     = regexp.MustCompile(`[,;]`)
)

// SplitResult carries the blocks extracted from one upload plus bookkeeping
// the ingest report surfaces to the caller.
type SplitResult struct {
	Blocks    []string
	Truncated int
	Skipped   int
}

// Split breaks normalized upload text into content blocks. Text containing a
// tab character anywhere is treated as a flashcard export of tab-delimited
// rows; everything else is split on blank-line boundaries. Each block is
// capped at maxLen runes; overlong blocks are truncated and counted.
func Split(text string, maxLen int) SplitResult {
	var blocks []string
	var skipped int
	if strings.ContainsRune(text, '\t') {
		blocks, skipped = splitTabRows(text)
	} else {
		blocks, skipped = splitParagraphs(text)
	}

	res := SplitResult{Skipped: skipped}
	for _, b := range blocks {
		if r := []rune(b); len(r) > maxLen {
			b = string(r[:maxLen])
			res.Truncated++
		}
		res.Blocks = append(res.Blocks, b)
	}
	return res
}

// splitParagraphs splits on runs of one or more blank lines. Blocks are
// trimmed and empty ones dropped; no sentence-level splitting happens here.
func splitParagraphs(text string) (blocks []string, skipped int) {
	for _, block := range blankLinePattern.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			skipped++
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks, skipped
}

// splitTabRows handles the flashcard-export shape: one card per line, front
// and back separated by tabs. Comment lines start with '#'. The front's
// underscore runs become {answer} markers filled left to right from the
// back field's delimiter-separated answers.
func splitTabRows(text string) (blocks []string, skipped int) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			skipped++
			continue
		}
		front := cleanFront(fields[0])
		answers := splitAnswers(fields[1])
		block := strings.TrimSpace(fillBlanks(front, answers))
		if block == "" {
			skipped++
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks, skipped
}

func cleanFront(front string) string {
	front = lineBreakTagPattern.ReplaceAllString(front, "\n")
	return htmlTagPattern.ReplaceAllString(front, "")
}

func splitAnswers(back string) []string {
	var answers []string
	for _, a := range answerSepPattern.Split(back, -1) {
		if a = strings.TrimSpace(a); a != "" {
			answers = append(answers, a)
		}
	}
	return answers
}

// fillBlanks replaces each run of 2+ underscores, in order, with an {answer}
// marker for the corresponding answer. Runs beyond the answer count are left
// untouched; surplus answers are ignored.
func fillBlanks(front string, answers []string) string {
	i := 0
	return underscoreRunPattern.ReplaceAllStringFunc(front, func(run string) string {
		if i >= len(answers) {
			return run
		}
		marker := "{" + answers[i] + "}"
		i++
		return marker
	})
}
