package transform

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/beevik/etree"

	"galleyd/pkg/jats"
)

// EmbedImages rewrites graphic and inline-graphic references in JATS
// XML galleys to the download URLs of the matching dependent files.
type EmbedImages struct{}

func (e *EmbedImages) TransformXML(ctx context.Context, tc *Context, doc *etree.Document) error {
	replaced := jats.RewriteDocument(doc, tc.Index)
	if replaced > 0 {
		slog.Debug("Rewrote graphic references", "count", replaced)
	}
	return nil
}

// TransformHTML is required by the interface but not used for XML.
func (e *EmbedImages) TransformHTML(ctx context.Context, tc *Context, node *html.Node) error {
	return fmt.Errorf("embed-images does not process HTML")
}

// mediaAttrs are the HTML attributes that may name a dependent file.
var mediaAttrs = map[string]bool{
	"src":    true,
	"poster": true,
	"href":   true,
}

// EmbedMedia rewrites media references in HTML galleys the same way
// EmbedImages treats JATS graphics: attribute values that resolve
// against the dependent-file index are replaced with download URLs.
type EmbedMedia struct{}

// TransformXML is required by the interface but not used for HTML.
func (e *EmbedMedia) TransformXML(ctx context.Context, tc *Context, doc *etree.Document) error {
	return fmt.Errorf("embed-media does not process XML")
}

func (e *EmbedMedia) TransformHTML(ctx context.Context, tc *Context, node *html.Node) error {
	replaced := rewriteMediaRefs(node, tc.Index)
	if replaced > 0 {
		slog.Debug("Rewrote media references", "count", replaced)
	}
	return nil
}

func rewriteMediaRefs(node *html.Node, idx jats.Index) int {
	replaced := 0
	if node.Type == html.ElementNode {
		for i := range node.Attr {
			a := &node.Attr[i]
			if !mediaAttrs[a.Key] || a.Namespace != "" || a.Val == "" {
				continue
			}
			if target, ok := idx.Resolve(a.Val); ok {
				a.Val = target
				replaced++
			}
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		replaced += rewriteMediaRefs(child, idx)
	}
	return replaced
}
