package svg

import (
	"strconv"

	"github.com/beevik/etree"
)

// FindObject selects the <foreignObject> that receives the AniList section.
//
// With merge set, the first object already holding a .anilist div wins. Without
// it, the first object without one wins and is emptied, so its content is
// fully replaced. Either way the first object is the fallback.
func FindObject(doc *etree.Document, merge bool) (*etree.Element, error) {
	root := doc.Root()
	if root == nil {
		return nil, ErrNoForeignObject
	}

	var objects, withAniList, without []*etree.Element
	walk(root, func(e *etree.Element) {
		if !is(e, NamespaceSVG, "foreignObject") {
			return
		}
		objects = append(objects, e)
		if containsAniList(e) {
			withAniList = append(withAniList, e)
		} else {
			without = append(without, e)
		}
	})
	if len(objects) == 0 {
		return nil, ErrNoForeignObject
	}

	if merge {
		if len(withAniList) > 0 {
			return withAniList[0], nil
		}
		return objects[0], nil
	}

	target := objects[0]
	if len(without) > 0 {
		target = without[0]
	}
	for len(target.Child) > 0 {
		target.RemoveChildAt(0)
	}
	return target, nil
}

func containsAniList(e *etree.Element) bool {
	found := false
	for _, child := range e.ChildElements() {
		walk(child, func(d *etree.Element) {
			if !found && isXHTMLDiv(d, "anilist") {
				found = true
			}
		})
	}
	return found
}

// BuildSection appends the AniList markup to parent:
//
//	div.items-wrapper > section > div.row.fill-width > section > div.anilist > div.characters > img*
//	div#metrics-end
//
// Both top-level elements declare the XHTML namespace.
func BuildSection(parent *etree.Element, images []string, width, height int) {
	items := parent.CreateElement("div")
	items.CreateAttr("xmlns", NamespaceXHTML)
	items.CreateAttr("class", "items-wrapper")

	outer := items.CreateElement("section")
	row := outer.CreateElement("div")
	row.CreateAttr("class", "row fill-width")
	inner := row.CreateElement("section")

	anilist := inner.CreateElement("div")
	anilist.CreateAttr("class", "anilist")
	characters := anilist.CreateElement("div")
	characters.CreateAttr("class", "characters")

	w, h := strconv.Itoa(width), strconv.Itoa(height)
	for _, uri := range images {
		img := characters.CreateElement("img")
		img.CreateAttr("src", uri)
		img.CreateAttr("width", w)
		img.CreateAttr("height", h)
		img.CreateAttr("alt", "character")
	}

	end := parent.CreateElement("div")
	end.CreateAttr("xmlns", NamespaceXHTML)
	end.CreateAttr("id", "metrics-end")
}
