// Package doc turns input documents into annotated HTML.
package doc

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/Hice-Bot/linkmark/internal/annotate"
)

// Format parses and annotates one input file type.
type Format interface {
	Name() string
	Extensions() []string
	Annotate(filename string, a *annotate.Annotator) (*html.Node, error)
}

var registry []Format

// Register adds a format to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// forPath returns the registered format for the filename's extension, or
// nil when no format claims it (the caller falls back to plain HTML).
func forPath(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// Result is one fully annotated document.
type Result struct {
	HTML    string
	Matches []annotate.Match
}

// Process annotates the named file with the registered format for its
// extension, falling back to HTML for anything unrecognized.
func Process(filename string, a *annotate.Annotator) (*Result, error) {
	a.Reset()
	var (
		doc *html.Node
		err error
	)
	if f := forPath(filename); f != nil {
		doc, err = f.Annotate(filename, a)
	} else {
		var r io.ReadCloser
		r, err = os.Open(filename)
		if err == nil {
			doc, err = annotateHTML(r, a)
			r.Close()
		}
	}
	if err != nil {
		return nil, err
	}
	return finish(doc, a)
}

// ProcessReader annotates HTML from a stream (stdin, HTTP body).
func ProcessReader(r io.Reader, a *annotate.Annotator) (*Result, error) {
	a.Reset()
	doc, err := annotateHTML(r, a)
	if err != nil {
		return nil, err
	}
	return finish(doc, a)
}

func finish(doc *html.Node, a *annotate.Annotator) (*Result, error) {
	a.InjectAssets(doc)
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}
	return &Result{HTML: buf.String(), Matches: a.Report()}, nil
}
