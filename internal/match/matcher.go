// Package match compiles the name dataset into alternation matchers and
// resolves matched text back to reference anchors.
package match

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Hice-Bot/linkmark/internal/dataset"
)

// Matcher finds every non-overlapping occurrence of any compiled name in a
// single pass over a string. A nil Matcher matches nothing.
type Matcher struct {
	re *regexp.Regexp
}

// Compile builds one matcher over the given entries. Longer names sort
// first so that a name containing a shorter name always wins; ties keep
// dataset order. Each run of whitespace inside a name is generalized to
// match one or more whitespace characters of any kind, so a line wrap or
// doubled space in the document still matches. Returns nil for an empty
// entry list.
func Compile(entries []dataset.Entry, caseSensitive bool) *Matcher {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		n := Normalize(e.Name, false)
		if n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil
	}

	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})

	parts := make([]string, len(names))
	for i, n := range names {
		p := regexp.QuoteMeta(n)
		parts[i] = strings.ReplaceAll(p, " ", `\s+`)
	}

	expr := "(" + strings.Join(parts, "|") + ")"
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	return &Matcher{re: regexp.MustCompile(expr)}
}

// Find returns the bounds of the next match at or after start. Scanning is
// resumable: callers that decline a match continue from its end.
func (m *Matcher) Find(text string, start int) (lo, hi int, ok bool) {
	if m == nil || start < 0 || start >= len(text) {
		return 0, 0, false
	}
	loc := m.re.FindStringIndex(text[start:])
	if loc == nil {
		return 0, 0, false
	}
	return start + loc[0], start + loc[1], true
}

// Normalize collapses every internal whitespace run to a single space and
// trims the ends. With fold set the result is lowercased, which is how the
// case-insensitive partition keys its anchor index.
func Normalize(s string, fold bool) string {
	s = strings.Join(strings.Fields(s), " ")
	if fold {
		s = strings.ToLower(s)
	}
	return s
}
