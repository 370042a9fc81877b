// Package jats rewrites image references in JATS XML galleys so that
// graphic and inline-graphic elements point at resolvable download URLs
// instead of bare file names.
//
// The package is split into two halves: BuildIndex turns the dependent
// files of a galley into a lookup table keyed by every spelling a
// document may use to name them, and Rewrite applies that table to a
// document, replacing each matched href in place. Both halves are pure:
// they never touch the network or the filesystem.
package jats

// XLinkNamespace is the namespace URI for XLink attributes in JATS
// documents. Only href attributes resolved to this URI are treated as
// namespaced graphic references.
const XLinkNamespace = "http://www.w3.org/1999/xlink"

// File describes one dependent file of a galley: its display name as
// entered by editors, the URL it can be downloaded from, and its MIME
// type.
type File struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MIMEType string `json:"mime_type"`
}
