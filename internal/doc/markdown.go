package doc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"

	"github.com/Hice-Bot/linkmark/internal/annotate"
)

// MarkdownFormat renders markdown to HTML before annotation.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

func (f *MarkdownFormat) Annotate(filename string, a *annotate.Annotator) (*html.Node, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	var body bytes.Buffer
	if err := md.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", filename, err)
	}

	page := pageShell(titleFromPath(filename), body.String())
	return annotateHTML(strings.NewReader(page), a)
}

func pageShell(title, body string) string {
	return "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>" +
		html.EscapeString(title) + "</title></head><body>" + body + "</body></html>"
}

// titleFromPath derives a page title from the filename.
func titleFromPath(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
