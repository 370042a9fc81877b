// Package transform runs the configured document transformers over
// galley content before it is served. Transformers mutate a parsed
// document in place; parsing and serialization stay in this package so
// every transformer sees the same tree.
package transform

import (
	"context"

	"golang.org/x/net/html"

	"github.com/beevik/etree"

	"galleyd/pkg/jats"
)

// Context carries the per-download data transformers work against: the
// dependent files of the galley being served and the name index built
// from them.
type Context struct {
	Files []jats.File
	Index jats.Index
}

// Transformer modifies a parsed galley document in place.
// Implementations handle the document class they are bound to and
// return an error from the other method.
type Transformer interface {
	// TransformXML modifies an XML tree in place.
	TransformXML(ctx context.Context, tc *Context, doc *etree.Document) error

	// TransformHTML modifies an HTML tree in place.
	TransformHTML(ctx context.Context, tc *Context, node *html.Node) error
}
