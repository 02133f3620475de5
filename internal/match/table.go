package match

import "github.com/Hice-Bot/linkmark/internal/dataset"

// Partition pairs one compiled matcher with the anchor index it was built
// from. The two never mix: a match found by one partition's matcher is only
// resolved against that partition's index.
type Partition struct {
	Matcher       *Matcher
	index         map[string]string
	caseSensitive bool
}

func newPartition(entries []dataset.Entry, caseSensitive bool) *Partition {
	if len(entries) == 0 {
		return nil
	}
	p := &Partition{
		Matcher:       Compile(entries, caseSensitive),
		index:         make(map[string]string, len(entries)),
		caseSensitive: caseSensitive,
	}
	for _, e := range entries {
		key := Normalize(e.Name, !caseSensitive)
		if key == "" {
			continue
		}
		// First entry wins when two dataset rows normalize identically.
		if _, dup := p.index[key]; !dup {
			p.index[key] = e.Anchor
		}
	}
	if p.Matcher == nil {
		return nil
	}
	return p
}

// Resolve maps matched document text back to its anchor. The not-found case
// is expected to be rare (the matcher was built from the same entries) but
// must stay non-fatal: the caller skips the match and scans on.
func (p *Partition) Resolve(matched string) (anchor string, ok bool) {
	if p == nil {
		return "", false
	}
	anchor, ok = p.index[Normalize(matched, !p.caseSensitive)]
	return anchor, ok
}

// Table is the process-wide, read-only lookup state: one partition per
// matching mode plus the base reference URL. Built once at startup and
// never mutated afterwards.
type Table struct {
	Primary *Partition // case-insensitive, tried first
	Exact   *Partition // case-sensitive, nil when the dataset has none
	BaseURL string
}

// NewTable compiles both partitions from the loaded dataset.
func NewTable(l *dataset.List, baseURL string) *Table {
	return &Table{
		Primary: newPartition(l.Primary, false),
		Exact:   newPartition(l.Exact, true),
		BaseURL: baseURL,
	}
}

// URL builds the reference link for an anchor: the base URL with the
// anchor appended verbatim, no further escaping.
func (t *Table) URL(anchor string) string {
	return t.BaseURL + anchor
}

// Empty reports whether the table has nothing to match.
func (t *Table) Empty() bool {
	return t.Primary == nil && t.Exact == nil
}
