package llm

import (
	"regexp"
	"strings"

	"github.com/munero-platform/analytics-core-be/internal/core/sqlgate"
)

// Models wrap SQL in markdown fences, prepend chatter, or leak reasoning
// tags despite the prompt rules. Extraction is best effort; the safety gate
// downstream is what actually decides whether the result runs.

var (
	thinkTagRe = regexp.MustCompile(`(?is)<think>.*?</think>`)
	sqlFenceRe = regexp.MustCompile("(?is)```sql\\s*(.*?)```")
	anyFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)```")
	sqlLabelRe = regexp.MustCompile(`(?i)^\s*(sql|query)\s*:\s*`)
)

// ExtractSQL pulls the SQL statement out of a raw model response. It returns
// the cleaned candidate text; an empty string means no statement was found.
func ExtractSQL(raw string) string {
	text := thinkTagRe.ReplaceAllString(raw, "")

	if m := sqlFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else if m := anyFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	text = sqlLabelRe.ReplaceAllString(strings.TrimSpace(text), "")

	// Drop any preamble before the statement head. Keywords inside string
	// literals do not count.
	if off := sqlgate.FirstKeywordOffset(text, "SELECT", "WITH"); off > 0 {
		text = text[off:]
	}

	// One statement only; anything after the first separator is chatter.
	if off := sqlgate.FirstSemicolonOffset(text); off >= 0 {
		text = text[:off]
	}

	return strings.TrimSpace(text)
}
