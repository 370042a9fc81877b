package jats

import (
	"slices"
	"strings"
)

var xmlMimeTypes = []string{
	"application/xml",
	"text/xml",
	"application/jats+xml",
}

// IsXMLGalley reports whether a galley should go through the graphic
// reference rewrite, either because its MIME type is an XML type or
// because its file name ends in .xml regardless of case.
func IsXMLGalley(mimeType, fileName string) bool {
	if slices.Contains(xmlMimeTypes, mimeType) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(fileName), ".xml")
}
