package annotate

import (
	"strings"

	"golang.org/x/net/html"
)

// Segment is one run of rendered text from an annotated tree. URL is empty
// for plain text and carries the reference link for marker text.
type Segment struct {
	Text string
	URL  string
}

// Segments flattens the renderable text under root in document order,
// skipping excluded containers, for the terminal and GUI frontends.
func (a *Annotator) Segments(root *html.Node) []Segment {
	var out []Segment
	a.flatten(root, &out)
	return out
}

func (a *Annotator) flatten(n *html.Node, out *[]Segment) {
	switch n.Type {
	case html.ElementNode:
		if a.isExcluded(n.Data) {
			return
		}
		if a.isMarker(n) {
			*out = append(*out, Segment{Text: nodeText(n), URL: Attr(n, HrefAttr)})
			return
		}
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			*out = append(*out, Segment{Text: n.Data})
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		a.flatten(c, out)
	}
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
