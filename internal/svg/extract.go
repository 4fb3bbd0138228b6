package svg

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/Napageneral/profilegen/internal/logging"
)

var dataURIPattern = regexp.MustCompile(`^data:image/[^;]+;base64,[A-Za-z0-9+/=\s]+$`)

// IsDataURI reports whether uri is a base64 image data URI.
func IsDataURI(uri string) bool {
	uri = strings.TrimSpace(uri)
	return uri != "" && dataURIPattern.MatchString(uri)
}

// ExtractDataURIs collects image data URIs from an AniList render in document
// order. Candidates are taken from the first strategy that finds any:
// .anilist > .characters > img, then any img under .anilist. SVG <image>
// hrefs are only consulted when neither produced a data URI. max <= 0 means
// no cap.
func ExtractDataURIs(doc *etree.Document, max int, log logging.Logger) ([]string, error) {
	log = logging.OrNoOp(log)
	root := doc.Root()
	if root == nil {
		return nil, ErrNoImages
	}

	candidates := strictCandidates(root)
	if len(candidates) == 0 {
		candidates = relaxedCandidates(root)
	}

	var uris []string
	for _, e := range candidates {
		src := attr(e, "src")
		if IsDataURI(src) {
			uris = append(uris, strings.TrimSpace(src))
		} else if src != "" {
			log.Warn("non-data URI ignored (expected base64 data:image/*)", "uri", truncate(src, 60))
		}
		if max > 0 && len(uris) >= max {
			return uris, nil
		}
	}

	if len(uris) == 0 {
		walk(root, func(e *etree.Element) {
			if max > 0 && len(uris) >= max {
				return
			}
			if !is(e, NamespaceSVG, "image") {
				return
			}
			href := xlinkHref(e)
			if href == "" {
				href = attr(e, "href")
			}
			if IsDataURI(href) {
				uris = append(uris, strings.TrimSpace(href))
			} else if href != "" {
				log.Warn("non-data URI in <image> ignored", "uri", truncate(href, 60))
			}
		})
	}

	if len(uris) == 0 {
		return nil, ErrNoImages
	}
	return uris, nil
}

func strictCandidates(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	walk(root, func(e *etree.Element) {
		if !isXHTMLDiv(e, "anilist") {
			return
		}
		for _, characters := range e.ChildElements() {
			if !isXHTMLDiv(characters, "characters") {
				continue
			}
			for _, img := range characters.ChildElements() {
				if is(img, NamespaceXHTML, "img") {
					out = append(out, img)
				}
			}
		}
	})
	return out
}

func relaxedCandidates(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	seen := map[*etree.Element]struct{}{}
	walk(root, func(e *etree.Element) {
		if !isXHTMLDiv(e, "anilist") {
			return
		}
		for _, child := range e.ChildElements() {
			walk(child, func(d *etree.Element) {
				if !is(d, NamespaceXHTML, "img") {
					return
				}
				if _, ok := seen[d]; ok {
					return
				}
				seen[d] = struct{}{}
				out = append(out, d)
			})
		}
	})
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
