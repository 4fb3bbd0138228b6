// Package svg rewrites metrics SVGs: it pulls AniList character images out of
// one render and injects them into another render's foreignObject.
package svg

import (
	"errors"
	"fmt"
	"os"

	"github.com/beevik/etree"
)

const (
	NamespaceSVG   = "http://www.w3.org/2000/svg"
	NamespaceXHTML = "http://www.w3.org/1999/xhtml"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
)

var (
	ErrNotFound        = errors.New("svg: file not found")
	ErrNoImages        = errors.New("svg: no base64 data URIs found in source")
	ErrNoForeignObject = errors.New("svg: no <foreignObject> elements found in target")
)

// ReadFile parses the SVG at path.
func ReadFile(path string) (*etree.Document, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("svg: parse %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("svg: parse %s: document has no root element", path)
	}
	return doc, nil
}

// Encode serializes doc as UTF-8 with a leading XML declaration. Any existing
// declaration is replaced.
func Encode(doc *etree.Document) ([]byte, error) {
	for i := len(doc.Child) - 1; i >= 0; i-- {
		if pi, ok := doc.Child[i].(*etree.ProcInst); ok && pi.Target == "xml" {
			doc.RemoveChildAt(i)
		}
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`))
	return doc.WriteToBytes()
}

// WriteFile encodes doc and writes it to path.
func WriteFile(doc *etree.Document, path string) ([]byte, error) {
	data, err := Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("svg: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("svg: write %s: %w", path, err)
	}
	return data, nil
}

// walk visits e and its descendants in document order.
func walk(e *etree.Element, fn func(*etree.Element)) {
	fn(e)
	for _, child := range e.ChildElements() {
		walk(child, fn)
	}
}

func is(e *etree.Element, namespace, tag string) bool {
	return e.Tag == tag && e.NamespaceURI() == namespace
}

func hasClass(e *etree.Element, class string) bool {
	for _, a := range e.Attr {
		if a.Space == "" && a.Key == "class" {
			return a.Value == class
		}
	}
	return false
}

func isXHTMLDiv(e *etree.Element, class string) bool {
	return is(e, NamespaceXHTML, "div") && hasClass(e, class)
}

// attr returns the value of the un-namespaced attribute key.
func attr(e *etree.Element, key string) string {
	for _, a := range e.Attr {
		if a.Space == "" && a.Key == key {
			return a.Value
		}
	}
	return ""
}

func xlinkHref(e *etree.Element) string {
	for i := range e.Attr {
		a := &e.Attr[i]
		if a.Key == "href" && a.Space != "" && a.NamespaceURI() == NamespaceXLink {
			return a.Value
		}
	}
	return ""
}
