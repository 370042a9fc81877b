package server

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// inlineMimeTypes render in the browser rather than download, so their
// URLs carry inline=true.
var inlineMimeTypes = []string{
	"text/plain",
	"text/css",
}

// URLBuilder constructs public download URLs for stored files.
type URLBuilder struct {
	base string
}

func NewURLBuilder(baseURL string) (*URLBuilder, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	return &URLBuilder{base: strings.TrimSuffix(u.String(), "/")}, nil
}

// DownloadURL returns the URL the given file can be downloaded from.
// The file name becomes the final path segment, percent-encoded with
// the same encoding the name index uses, so rewritten references
// resolve back to the file they came from.
func (b *URLBuilder) DownloadURL(submissionID, galleyID, fileID int64, name, mimeType string) string {
	u := fmt.Sprintf("%s/article/download/%d/%d/%d/%s",
		b.base, submissionID, galleyID, fileID, url.PathEscape(name))
	if slices.Contains(inlineMimeTypes, baseMimeType(mimeType)) {
		u += "?inline=true"
	}
	return u
}

// baseMimeType strips any parameters from a Content-Type style value.
func baseMimeType(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		return strings.TrimSpace(mimeType[:idx])
	}
	return strings.TrimSpace(mimeType)
}
