package annotate

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// assetAttr tags the injected style and script nodes so a second injection
// is a no-op.
const assetAttr = "data-linkmark-asset"

const styleTemplate = `.%[1]s {
  border: 1px solid #b8860b;
  border-radius: 2px;
  padding: 0 1px;
  cursor: pointer;
}
.%[1]s:hover { background: #fdf3d7; }`

// The click handler runs in the capture phase so it fires before any
// enclosing link's own navigation, then suppresses it and opens the
// reference in a detached window. Enter mirrors the click for keyboard use.
const scriptTemplate = `(function () {
  function open(el, ev) {
    ev.preventDefault();
    ev.stopPropagation();
    window.open(el.getAttribute(%[1]q), "_blank", "noopener,noreferrer");
  }
  document.addEventListener("click", function (ev) {
    var el = ev.target && ev.target.closest ? ev.target.closest("[%[1]s]") : null;
    if (el) open(el, ev);
  }, true);
  document.addEventListener("keydown", function (ev) {
    if (ev.key !== "Enter") return;
    var el = ev.target && ev.target.closest ? ev.target.closest("[%[1]s]") : null;
    if (el) open(el, ev);
  }, true);
})();`

// InjectAssets adds the marker stylesheet and click script to the document
// head. Idempotent; a document without a head is left unchanged.
func (a *Annotator) InjectAssets(doc *html.Node) {
	head := findElement(doc, "head")
	if head == nil {
		return
	}
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if hasAttr(c, assetAttr) {
			return
		}
	}
	head.AppendChild(assetNode("style", atom.Style, fmt.Sprintf(styleTemplate, a.MarkerClass)))
	head.AppendChild(assetNode("script", atom.Script, fmt.Sprintf(scriptTemplate, HrefAttr)))
}

func assetNode(tag string, a atom.Atom, body string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: a,
		Attr:     []html.Attribute{{Key: assetAttr, Val: "1"}},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: body})
	return n
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func hasAttr(n *html.Node, key string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, key string) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
