package jsonutils

import (
	"regexp"
	"strings"
)

var (
	reFence         = regexp.MustCompile("(?s)```(?:json)?(.*?)```")
	reObj           = regexp.MustCompile(`(?s)\{.*\}`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// ExtractJSON tries to extract a JSON block from LLM output.
//
// Priority:
// 1. Triple-backtick fenced ```json ... ```
// 2. Any {...} JSON object (greedy, first { to last })
//
// It also repairs common model formatting slips: invisible Unicode
// characters and trailing commas before a closing brace or bracket.
func ExtractJSON(input string) string {
	// Remove BOMs and invisible control characters
	input = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\uFEFF' || r == '\u200B' || r == '\u200C' || r == '\u200D' {
			return -1 // skip
		}
		return r
	}, input))

	if match := reFence.FindStringSubmatch(input); len(match) > 1 {
		input = strings.TrimSpace(match[1])
	} else if match := reObj.FindString(input); match != "" {
		input = strings.TrimSpace(match)
	}

	input = reTrailingComma.ReplaceAllString(input, "$1")

	return strings.TrimSpace(input)
}
