package match

import (
	"testing"

	"github.com/Hice-Bot/linkmark/internal/dataset"
)

func entries(names ...string) []dataset.Entry {
	out := make([]dataset.Entry, len(names))
	for i, n := range names {
		out[i] = dataset.Entry{Name: n, Anchor: n}
	}
	return out
}

func TestCompileEmpty(t *testing.T) {
	if m := Compile(nil, false); m != nil {
		t.Errorf("Compile(nil) = %v, want nil", m)
	}
	if m := Compile([]dataset.Entry{{Name: "   ", Anchor: "x"}}, false); m != nil {
		t.Errorf("Compile(blank names) = %v, want nil", m)
	}

	var m *Matcher
	if _, _, ok := m.Find("anything", 0); ok {
		t.Error("nil matcher should never match")
	}
}

func TestFindLongestNameWins(t *testing.T) {
	m := Compile(entries("Bill", "Bill Clinton"), false)

	lo, hi, ok := m.Find("Bill Clinton visited.", 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if got := "Bill Clinton visited."[lo:hi]; got != "Bill Clinton" {
		t.Errorf("matched %q, want %q", got, "Bill Clinton")
	}
}

func TestFindWhitespaceTolerance(t *testing.T) {
	m := Compile(entries("Jean-Luc Brunel"), false)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"single space", "met Jean-Luc Brunel there", "Jean-Luc Brunel"},
		{"double space", "met Jean-Luc  Brunel there", "Jean-Luc  Brunel"},
		{"newline", "met Jean-Luc\nBrunel there", "Jean-Luc\nBrunel"},
		{"tab", "met Jean-Luc\tBrunel there", "Jean-Luc\tBrunel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := m.Find(tt.text, 0)
			if !ok {
				t.Fatalf("Find(%q) found nothing", tt.text)
			}
			if got := tt.text[lo:hi]; got != tt.want {
				t.Errorf("Find(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFindCaseFolding(t *testing.T) {
	insensitive := Compile(entries("Ghislaine Maxwell"), false)
	sensitive := Compile(entries("Trump"), true)

	if _, _, ok := insensitive.Find("GHISLAINE MAXWELL spoke", 0); !ok {
		t.Error("case-insensitive matcher should match uppercased text")
	}
	if _, _, ok := insensitive.Find("ghislaine maxwell spoke", 0); !ok {
		t.Error("case-insensitive matcher should match lowercased text")
	}
	if _, _, ok := sensitive.Find("trump tower", 0); ok {
		t.Error("case-sensitive matcher must not match differently-cased text")
	}
	if _, _, ok := sensitive.Find("Trump tower", 0); !ok {
		t.Error("case-sensitive matcher should match exact-case text")
	}
}

func TestFindEscapesSpecialCharacters(t *testing.T) {
	m := Compile(entries("J. Epstein (financier)"), false)

	if _, _, ok := m.Find("JX Epstein (financier)", 0); ok {
		t.Error("dot in a name must match literally, not as a wildcard")
	}
	if _, _, ok := m.Find("saw J. Epstein (financier) once", 0); !ok {
		t.Error("escaped name should still match its literal form")
	}
}

func TestFindResumable(t *testing.T) {
	m := Compile(entries("Bill"), false)
	text := "Bill met Bill"

	lo, hi, ok := m.Find(text, 0)
	if !ok || lo != 0 || hi != 4 {
		t.Fatalf("first Find = (%d, %d, %v), want (0, 4, true)", lo, hi, ok)
	}
	lo, hi, ok = m.Find(text, hi)
	if !ok || text[lo:hi] != "Bill" || lo != 9 {
		t.Fatalf("resumed Find = (%d, %d, %v), want match at 9", lo, hi, ok)
	}
	if _, _, ok = m.Find(text, hi); ok {
		t.Error("Find past the last match should report no match")
	}
	if _, _, ok = m.Find(text, len(text)+10); ok {
		t.Error("Find past the end of text should report no match")
	}
}

func TestFindAccentedNames(t *testing.T) {
	m := Compile(entries("Jean-Luc Brünel"), false)
	text := "with jean-luc brünel in Paris"
	lo, hi, ok := m.Find(text, 0)
	if !ok {
		t.Fatal("expected accented name to match case-insensitively")
	}
	if got := text[lo:hi]; got != "jean-luc brünel" {
		t.Errorf("matched %q, want %q", got, "jean-luc brünel")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		fold bool
		want string
	}{
		{"Bill Clinton", false, "Bill Clinton"},
		{"  Bill   Clinton  ", false, "Bill Clinton"},
		{"Bill\n\tClinton", false, "Bill Clinton"},
		{"Bill  Clinton", true, "bill clinton"},
		{"", false, ""},
		{"   ", true, ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in, tt.fold); got != tt.want {
			t.Errorf("Normalize(%q, %v) = %q, want %q", tt.in, tt.fold, got, tt.want)
		}
	}
}
