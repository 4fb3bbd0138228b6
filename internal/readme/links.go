// Package readme inspects the profile README for broken references.
package readme

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
	LinkKindHTML   LinkKind = "html"
)

type Link struct {
	Kind        LinkKind `json:"kind"`
	Destination string   `json:"destination"`
}

var (
	htmlTagPattern  = regexp.MustCompile(`(?is)<(?:img|a|source)\b[^>]*>`)
	htmlAttrPattern = regexp.MustCompile(`(?is)\s(srcset|src|href)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

func newEngine() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
}

// Extract returns every link, image, autolink and HTML src/srcset/href in
// source, in document order.
func Extract(source []byte) []Link {
	doc := newEngine().Parser().Parse(text.NewReader(source))

	var links []Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		case *ast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *ast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(source))})
		case *ast.HTMLBlock:
			var b strings.Builder
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
			if node.HasClosure() {
				b.Write(node.ClosureLine.Value(source))
			}
			links = append(links, htmlLinks(b.String())...)
		case *ast.RawHTML:
			var b strings.Builder
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				b.Write(seg.Value(source))
			}
			links = append(links, htmlLinks(b.String())...)
		}
		return ast.WalkContinue, nil
	})
	return links
}

func htmlLinks(fragment string) []Link {
	var links []Link
	for _, tag := range htmlTagPattern.FindAllString(fragment, -1) {
		for _, m := range htmlAttrPattern.FindAllStringSubmatch(tag, -1) {
			value := m[2]
			if value == "" {
				value = m[3]
			}
			if !strings.EqualFold(m[1], "srcset") {
				links = append(links, Link{Kind: LinkKindHTML, Destination: strings.TrimSpace(value)})
				continue
			}
			for _, url := range srcsetURLs(value) {
				links = append(links, Link{Kind: LinkKindHTML, Destination: url})
			}
		}
	}
	return links
}

// srcsetURLs returns the URL of each comma-separated candidate, dropping
// width and density descriptors such as "2x" or "600w".
func srcsetURLs(srcset string) []string {
	var urls []string
	for _, candidate := range strings.Split(srcset, ",") {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}
