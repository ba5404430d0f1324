package sqlgate

import (
	"fmt"
	"strconv"
	"strings"
)

// Default row ceilings. Interactive chart responses stay small; exports get
// the hard cap that bounds CSV size.
const (
	DefaultChatCeiling   = 50
	DefaultExportCeiling = 10000
)

// CandidateQuery is an untrusted SQL string, produced either by the NL-to-SQL
// collaborator or by a prior chat turn being replayed for export.
type CandidateQuery struct {
	SQL   string
	Label string
}

// ValidatedQuery is a candidate that passed all safety checks: read-only
// leading clause, no mutating keywords, and a guaranteed row ceiling. Only
// Validate constructs one; it is executed once and discarded.
type ValidatedQuery struct {
	sql   string
	limit int
}

func (q ValidatedQuery) SQL() string { return q.sql }
func (q ValidatedQuery) Limit() int  { return q.limit }

// Options control per-path gate behavior.
type Options struct {
	// Ceiling is the maximum row count the validated query may return.
	Ceiling int
	// StripLimit removes any caller-supplied top-level limit before the
	// ceiling is applied (the export path always wants the full capped set).
	// When false, a compliant existing limit is preserved.
	StripLimit bool
}

// UnsafeQueryError reports a gate rejection. Rejections are always surfaced;
// the gate never silently repairs unsafe SQL.
type UnsafeQueryError struct {
	Reason string
}

func (e *UnsafeQueryError) Error() string {
	return "unsafe query: " + e.Reason
}

// Mutating/DDL/side-effectful keywords, matched as whole tokens outside
// comments and quoted regions. INTO is banned because SELECT ... INTO
// creates tables in several dialects.
var deniedKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "MERGE": {}, "REPLACE": {}, "UPSERT": {},
	"CREATE": {}, "ALTER": {}, "DROP": {}, "TRUNCATE": {}, "RENAME": {}, "GRANT": {}, "REVOKE": {},
	"EXEC": {}, "EXECUTE": {}, "CALL": {}, "INTO": {},
	"VACUUM": {}, "PRAGMA": {}, "ATTACH": {}, "DETACH": {}, "COPY": {},
}

type limitClause struct {
	start int // byte offset of the LIMIT keyword
	end   int // one past the last byte of the clause
	count int // effective row count
}

// Validate checks a candidate query and rewrites its row limit, returning a
// ValidatedQuery or an UnsafeQueryError. Ambiguous input (unterminated
// quotes or comments, unparseable limit forms) is rejected, never guessed at.
func Validate(q CandidateQuery, opts Options) (ValidatedQuery, error) {
	ceiling := opts.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultChatCeiling
	}

	toks, err := scanTokens(q.SQL)
	if err != nil {
		return ValidatedQuery{}, &UnsafeQueryError{Reason: err.Error()}
	}
	if len(toks) == 0 {
		return ValidatedQuery{}, &UnsafeQueryError{Reason: "statement is empty"}
	}

	// A single trailing semicolon is tolerated and dropped from the body.
	bodyEnd := len(q.SQL)
	if toks[len(toks)-1].kind == kindSemicolon {
		bodyEnd = toks[len(toks)-1].start
		toks = toks[:len(toks)-1]
	}
	if len(toks) == 0 {
		return ValidatedQuery{}, &UnsafeQueryError{Reason: "statement is empty"}
	}
	for _, t := range toks {
		if t.kind == kindSemicolon {
			return ValidatedQuery{}, &UnsafeQueryError{Reason: "only a single statement is allowed"}
		}
	}

	first := toks[0]
	if first.kind != kindWord || (first.upper != "SELECT" && first.upper != "WITH") {
		return ValidatedQuery{}, &UnsafeQueryError{Reason: "only SELECT or WITH statements are allowed"}
	}

	for _, t := range toks {
		if t.kind != kindWord {
			continue
		}
		if _, denied := deniedKeywords[t.upper]; denied {
			return ValidatedQuery{}, &UnsafeQueryError{Reason: "forbidden keyword " + t.upper}
		}
	}

	clause, err := findTopLevelLimit(q.SQL, toks)
	if err != nil {
		return ValidatedQuery{}, err
	}

	body := q.SQL[:bodyEnd]
	sql, limit := applyCeiling(body, clause, ceiling, opts.StripLimit)
	return ValidatedQuery{sql: sql, limit: limit}, nil
}

// findTopLevelLimit locates the outermost LIMIT clause. Limits nested inside
// parentheses belong to sub-queries and are left alone.
func findTopLevelLimit(sql string, toks []sqlToken) (*limitClause, error) {
	var found *limitClause

	for i, t := range toks {
		if t.kind != kindWord || t.upper != "LIMIT" || t.depth != 0 {
			continue
		}
		if found != nil {
			return nil, &UnsafeQueryError{Reason: "multiple top-level LIMIT clauses"}
		}
		if i+1 >= len(toks) || toks[i+1].kind != kindNumber {
			return nil, &UnsafeQueryError{Reason: "unsupported LIMIT form"}
		}

		count, err := strconv.Atoi(sql[toks[i+1].start:toks[i+1].end])
		if err != nil {
			return nil, &UnsafeQueryError{Reason: "LIMIT requires an integer row count"}
		}
		clause := &limitClause{start: t.start, end: toks[i+1].end, count: count}

		// LIMIT offset, count — the second number is the row count.
		if i+3 < len(toks) && toks[i+2].kind == kindComma && toks[i+3].kind == kindNumber {
			count, err = strconv.Atoi(sql[toks[i+3].start:toks[i+3].end])
			if err != nil {
				return nil, &UnsafeQueryError{Reason: "LIMIT requires an integer row count"}
			}
			clause.count = count
			clause.end = toks[i+3].end
		} else if i+3 < len(toks) && toks[i+2].kind == kindWord && toks[i+2].upper == "OFFSET" && toks[i+3].kind == kindNumber {
			clause.end = toks[i+3].end
		}

		found = clause
	}
	return found, nil
}

func applyCeiling(body string, clause *limitClause, ceiling int, strip bool) (string, int) {
	appendLimit := func(s string) string {
		// The body may end in a line comment; the newline keeps the
		// appended clause outside it.
		return strings.TrimSpace(s) + fmt.Sprintf("\nLIMIT %d", ceiling)
	}

	if clause == nil {
		return appendLimit(body), ceiling
	}

	if strip {
		return appendLimit(body[:clause.start] + body[clause.end:]), ceiling
	}

	if clause.count <= ceiling {
		return strings.TrimSpace(body), clause.count
	}
	// Model-authored limit exceeds the ceiling: replace the whole clause.
	capped := body[:clause.start] + fmt.Sprintf("LIMIT %d", ceiling) + body[clause.end:]
	return strings.TrimSpace(capped), ceiling
}

// FirstKeywordOffset returns the byte offset of the first whole-word,
// case-insensitive occurrence of any of the keywords outside comments and
// quoted regions, or -1 when none is found or the input cannot be scanned.
func FirstKeywordOffset(sql string, keywords ...string) int {
	toks, err := scanTokens(sql)
	if err != nil {
		return -1
	}
	for _, t := range toks {
		if t.kind != kindWord {
			continue
		}
		for _, kw := range keywords {
			if t.upper == strings.ToUpper(kw) {
				return t.start
			}
		}
	}
	return -1
}

// FirstSemicolonOffset returns the byte offset of the first statement
// separator outside comments and quoted regions, or -1.
func FirstSemicolonOffset(sql string) int {
	toks, err := scanTokens(sql)
	if err != nil {
		return -1
	}
	for _, t := range toks {
		if t.kind == kindSemicolon {
			return t.start
		}
	}
	return -1
}

// WordOffsets returns byte offsets of whole-word occurrences of word outside
// comments and quoted regions. The chat pipeline uses it to locate the
// filters placeholder before substituting the parameterized predicate.
func WordOffsets(sql, word string) ([]int, error) {
	toks, err := scanTokens(sql)
	if err != nil {
		return nil, err
	}
	var offsets []int
	for _, t := range toks {
		if t.kind == kindWord && sql[t.start:t.end] == word {
			offsets = append(offsets, t.start)
		}
	}
	return offsets, nil
}
