package doc

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html"

	"github.com/Hice-Bot/linkmark/internal/annotate"
)

// HTMLFormat handles plain HTML documents. It is also the fallback for
// unknown extensions and for streamed input.
type HTMLFormat struct{}

func init() {
	Register(&HTMLFormat{})
}

func (f *HTMLFormat) Name() string         { return "HTML" }
func (f *HTMLFormat) Extensions() []string { return []string{".html", ".htm", ".xhtml"} }

func (f *HTMLFormat) Annotate(filename string, a *annotate.Annotator) (*html.Node, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer r.Close()
	return annotateHTML(r, a)
}

func annotateHTML(r io.Reader, a *annotate.Annotator) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	a.Scan(doc)
	return doc, nil
}
