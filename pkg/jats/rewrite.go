package jats

import "github.com/beevik/etree"

// Rewrite resolves the graphic references in src against idx and
// replaces each matched href with its download URL. The input bytes
// come back untouched when idx is empty or src does not parse as XML;
// references that match nothing keep their original value. Rewrite
// never fails: a document that cannot be rewritten is returned as it
// came in.
func Rewrite(src []byte, idx Index) []byte {
	if len(idx) == 0 {
		return src
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(src); err != nil {
		return src
	}

	RewriteDocument(doc, idx)

	out, err := doc.WriteToBytes()
	if err != nil {
		return src
	}
	return out
}

// RewriteDocument applies the graphic reference rewrite to an already
// parsed document and reports how many hrefs were replaced. The
// document is modified in place.
func RewriteDocument(doc *etree.Document, idx Index) int {
	if len(idx) == 0 {
		return 0
	}
	root := doc.Root()
	if root == nil {
		return 0
	}

	replaced := 0
	walkGraphics(root, func(el *etree.Element) {
		slot, href, ok := readHref(el)
		if !ok || href == "" {
			return
		}
		target, ok := idx.Resolve(href)
		if !ok {
			return
		}
		writeHref(el, slot, target)
		replaced++
	})
	return replaced
}

// walkGraphics calls f for every graphic and inline-graphic element
// under el, in document order, including el itself.
func walkGraphics(el *etree.Element, f func(*etree.Element)) {
	if el.Tag == "graphic" || el.Tag == "inline-graphic" {
		f(el)
	}
	for _, child := range el.ChildElements() {
		walkGraphics(child, f)
	}
}
