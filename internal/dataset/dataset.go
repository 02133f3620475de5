// Package dataset loads the name/anchor records that drive highlighting.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one name in the reference index.
type Entry struct {
	Name          string `json:"name"`
	Anchor        string `json:"anchor"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
}

// List holds the loaded dataset split into its two matching partitions.
type List struct {
	Primary []Entry // matched ignoring letter case
	Exact   []Entry // matched with exact letter case only
	Skipped int     // malformed entries dropped during load
}

// Valid reports whether the entry can produce a usable pattern. Entries
// with an empty name or anchor are rejected at load time rather than
// compiled into a matcher that matches everything.
func (e Entry) Valid() bool {
	return strings.TrimSpace(e.Name) != "" && strings.TrimSpace(e.Anchor) != ""
}

// Load reads a JSON array of entries from each file and merges them,
// preserving file order. Malformed entries are skipped, not fatal.
func Load(paths ...string) (*List, error) {
	l := &List{}
	for _, path := range paths {
		entries, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		l.add(entries)
	}
	return l, nil
}

// LoadExact reads additional files whose entries are forced into the
// case-sensitive partition regardless of their case_sensitive field.
func (l *List) LoadExact(paths ...string) error {
	for _, path := range paths {
		entries, err := loadFile(path)
		if err != nil {
			return err
		}
		for i := range entries {
			entries[i].CaseSensitive = true
		}
		l.add(entries)
	}
	return nil
}

func (l *List) add(entries []Entry) {
	for _, e := range entries {
		if !e.Valid() {
			l.Skipped++
			continue
		}
		if e.CaseSensitive {
			l.Exact = append(l.Exact, e)
		} else {
			l.Primary = append(l.Primary, e)
		}
	}
}

// Len returns the number of usable entries across both partitions.
func (l *List) Len() int {
	return len(l.Primary) + len(l.Exact)
}

func loadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return entries, nil
}
