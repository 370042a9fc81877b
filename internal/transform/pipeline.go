package transform

import (
	"bytes"
	"context"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/beevik/etree"
)

// ProcessXML parses body as XML, runs the transformers over it in
// order, and serializes the result. A galley that cannot be parsed,
// transformed, or serialized is served as stored, so the return value
// is always something worth sending.
func ProcessXML(ctx context.Context, tc *Context, body []byte, transformers []Transformer) []byte {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		slog.Debug("XML galley did not parse, serving as stored", "error", err)
		return body
	}

	for _, t := range transformers {
		if err := t.TransformXML(ctx, tc, doc); err != nil {
			slog.Warn("Transformer failed, serving galley as stored", "error", err)
			return body
		}
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		slog.Warn("Failed to serialize XML galley, serving as stored", "error", err)
		return body
	}
	return out
}

// ProcessHTML is the HTML counterpart of ProcessXML.
func ProcessHTML(ctx context.Context, tc *Context, body []byte, transformers []Transformer) []byte {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		slog.Debug("HTML galley did not parse, serving as stored", "error", err)
		return body
	}

	for _, t := range transformers {
		if err := t.TransformHTML(ctx, tc, doc); err != nil {
			slog.Warn("Transformer failed, serving galley as stored", "error", err)
			return body
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		slog.Warn("Failed to render HTML galley, serving as stored", "error", err)
		return body
	}
	return buf.Bytes()
}
