package doc

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Hice-Bot/linkmark/internal/annotate"
)

// EPUBFormat assembles an EPUB's spine chapters into one annotated HTML
// document. Chapters are appended to the output tree one at a time and
// handed to the incremental watcher, so each insertion is scanned in
// isolation exactly like any other post-load tree change.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

func (f *EPUBFormat) Annotate(filename string, a *annotate.Annotator) (*html.Node, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening epub %s: %w", filename, err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("epub %s: no rootfiles", filename)
	}
	book := rc.Rootfiles[0]
	titles := chapterTitles(filename, book)

	out, err := html.Parse(strings.NewReader(pageShell(titleFromPath(filename), "")))
	if err != nil {
		return nil, err
	}
	body := findNode(out, "body")
	if body == nil {
		return nil, fmt.Errorf("epub %s: assembled page has no body", filename)
	}

	w := annotate.NewWatcher(a)
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}

		title := titles[ref.Item.HREF]
		if title == "" {
			title = titles[path.Base(ref.Item.HREF)]
		}
		section := buildSection(string(data), title)
		if section == nil {
			continue
		}
		body.AppendChild(section)
		w.Apply([]annotate.Mutation{{Added: []*html.Node{section}}})
	}

	return out, nil
}

// buildSection reparses one chapter and moves its body content into a fresh
// section element, headed by the chapter title when the NCX knows one.
func buildSection(chapterHTML, title string) *html.Node {
	cdoc, err := html.Parse(strings.NewReader(chapterHTML))
	if err != nil {
		return nil
	}
	cbody := findNode(cdoc, "body")
	if cbody == nil {
		return nil
	}

	section := &html.Node{Type: html.ElementNode, Data: "section", DataAtom: atom.Section}
	if title != "" {
		h := &html.Node{Type: html.ElementNode, Data: "h2", DataAtom: atom.H2}
		h.AppendChild(&html.Node{Type: html.TextNode, Data: title})
		section.AppendChild(h)
	}
	for c := cbody.FirstChild; c != nil; {
		next := c.NextSibling
		cbody.RemoveChild(c)
		section.AppendChild(c)
		c = next
	}
	return section
}

func findNode(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// NCX structures, just enough to map spine hrefs to chapter titles.
type ncx struct {
	NavMap struct {
		NavPoints []navPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type navPoint struct {
	Label struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

// chapterTitles parses the NCX table of contents and maps each content
// href (full and basename, fragment stripped) to its title. Best effort:
// an EPUB without a readable NCX just gets untitled sections.
func chapterTitles(filename string, book *epub.Rootfile) map[string]string {
	titles := make(map[string]string)

	data, err := readNCX(filename, book)
	if err != nil {
		return titles
	}
	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return titles
	}

	var walk func(points []navPoint)
	walk = func(points []navPoint) {
		for _, np := range points {
			href := np.Content.Src
			if idx := strings.Index(href, "#"); idx != -1 {
				href = href[:idx]
			}
			title := strings.TrimSpace(np.Label.Text)
			if href != "" && title != "" {
				if _, ok := titles[href]; !ok {
					titles[href] = title
				}
				if _, ok := titles[path.Base(href)]; !ok {
					titles[path.Base(href)] = title
				}
			}
			walk(np.Children)
		}
	}
	walk(toc.NavMap.NavPoints)
	return titles
}

func readNCX(filename string, book *epub.Rootfile) ([]byte, error) {
	var ncxPath string
	for _, item := range book.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		return nil, fmt.Errorf("no NCX in manifest")
	}

	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == ncxPath || strings.HasSuffix(f.Name, "/"+ncxPath) ||
			path.Base(f.Name) == path.Base(ncxPath) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("NCX %s not in archive", ncxPath)
}
