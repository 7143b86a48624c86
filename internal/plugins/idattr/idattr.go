// Package idattr adds id attributes to headings in generated HTML so that
// every section of a page can be linked to.
package idattr

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/florentdestremau/florent.cc/internal/site"
)

const PluginName = "id-attribute"

var headingAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

// Plugin registers the heading id output transform.
type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string { return PluginName }

func (p *Plugin) Register(r *site.Registry) error {
	return r.AddTransform(PluginName, Transform)
}

// Transform adds ids to h1-h6 elements that lack one. Ids are slugs of the
// heading text; repeated slugs get -2, -3, ... suffixes, and ids already
// present in the page are never reused. Non-HTML outputs and documents that
// fail to parse are returned unchanged.
func Transform(content []byte, outputPath string) ([]byte, error) {
	if !strings.HasSuffix(outputPath, ".html") && !strings.HasSuffix(outputPath, ".htm") {
		return content, nil
	}

	fullDocument := bytes.Contains(bytes.ToLower(content), []byte("<html"))
	var roots []*html.Node
	if fullDocument {
		doc, err := html.Parse(bytes.NewReader(content))
		if err != nil {
			return content, nil
		}
		roots = []*html.Node{doc}
	} else {
		body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		nodes, err := html.ParseFragment(bytes.NewReader(content), body)
		if err != nil {
			return content, nil
		}
		roots = nodes
	}

	seen := map[string]int{}
	var headings []*html.Node
	for _, root := range roots {
		walk(root, func(n *html.Node) {
			if id, ok := attr(n, "id"); ok && id != "" {
				seen[id] = 1
			}
			if headingAtoms[n.DataAtom] {
				if _, ok := attr(n, "id"); !ok {
					headings = append(headings, n)
				}
			}
		})
	}

	changed := false
	for _, h := range headings {
		slug := Slugify(textContent(h))
		if slug == "" {
			continue
		}
		id := slug
		if count, exists := seen[slug]; exists {
			count++
			id = slug + "-" + strconv.Itoa(count)
			for seen[id] > 0 {
				count++
				id = slug + "-" + strconv.Itoa(count)
			}
			seen[slug] = count
		}
		seen[id] = max(seen[id], 1)
		h.Attr = append(h.Attr, html.Attribute{Key: "id", Val: id})
		changed = true
	}
	if !changed {
		return content, nil
	}

	var buf bytes.Buffer
	for _, root := range roots {
		if err := html.Render(&buf, root); err != nil {
			return content, nil
		}
	}
	return buf.Bytes(), nil
}

// Slugify folds accents, lowercases and joins alphanumeric runs with "-".
// "Été à Paris !" becomes "ete-a-paris".
func Slugify(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}
