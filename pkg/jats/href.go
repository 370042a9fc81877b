package jats

import "github.com/beevik/etree"

// hrefSlot identifies which attribute spelling carries a graphic
// reference. The slot an href is read from is the slot the rewritten
// value is written back to, so documents keep their original attribute
// form.
type hrefSlot int

const (
	slotNone hrefSlot = iota
	// slotNamespaced is an href whose prefix resolves to XLinkNamespace.
	slotNamespaced
	// slotLiteral is an attribute spelled xlink:href whose prefix does
	// not resolve to XLinkNamespace.
	slotLiteral
	// slotPlain is an unprefixed href attribute.
	slotPlain
)

// readHref returns the href of a graphic element, checking the
// namespaced slot first, then the literal xlink:href slot, then the
// plain href slot. ok is false when none of the three is present.
func readHref(el *etree.Element) (slot hrefSlot, value string, ok bool) {
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Key == "href" && a.Space != "" && a.NamespaceURI() == XLinkNamespace {
			return slotNamespaced, a.Value, true
		}
	}
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Key == "href" && a.Space == "xlink" {
			return slotLiteral, a.Value, true
		}
	}
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Key == "href" && a.Space == "" {
			return slotPlain, a.Value, true
		}
	}
	return slotNone, "", false
}

// writeHref stores value into the attribute slot readHref reported for
// the same element. Unknown slots are ignored.
func writeHref(el *etree.Element, slot hrefSlot, value string) {
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Key != "href" {
			continue
		}
		switch slot {
		case slotNamespaced:
			if a.Space != "" && a.NamespaceURI() == XLinkNamespace {
				a.Value = value
				return
			}
		case slotLiteral:
			if a.Space == "xlink" {
				a.Value = value
				return
			}
		case slotPlain:
			if a.Space == "" {
				a.Value = value
				return
			}
		}
	}
}
