package transform

import (
	"context"
	"testing"

	"golang.org/x/net/html"

	"github.com/beevik/etree"

	"galleyd/internal/config"
)

// recordingTransformer counts invocations for registry and pipeline tests.
type recordingTransformer struct {
	xmlCalls  int
	htmlCalls int
}

func (m *recordingTransformer) TransformXML(ctx context.Context, tc *Context, doc *etree.Document) error {
	m.xmlCalls++
	return nil
}

func (m *recordingTransformer) TransformHTML(ctx context.Context, tc *Context, node *html.Node) error {
	m.htmlCalls++
	return nil
}

func TestBindBuiltins(t *testing.T) {
	r := NewRegistry()

	cfg := &config.Config{
		Transforms: []config.TransformConfig{
			{Class: "xml", Transformers: []string{"embed-images"}},
			{Class: "html", Transformers: []string{"embed-media"}},
		},
	}
	if err := r.Bind(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(r.ForClass("xml")); got != 1 {
		t.Errorf("expected 1 xml transformer, got %d", got)
	}
	if got := len(r.ForClass("html")); got != 1 {
		t.Errorf("expected 1 html transformer, got %d", got)
	}
	if got := len(r.ForClass("pdf")); got != 0 {
		t.Errorf("expected no transformers for unknown class, got %d", got)
	}
}

func TestBindUnknownTransformerKeepsPreviousBindings(t *testing.T) {
	r := NewRegistry()

	valid := &config.Config{
		Transforms: []config.TransformConfig{
			{Class: "xml", Transformers: []string{"embed-images"}},
		},
	}
	if err := r.Bind(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := &config.Config{
		Transforms: []config.TransformConfig{
			{Class: "xml", Transformers: []string{"no-such-transformer"}},
		},
	}
	if err := r.Bind(invalid); err == nil {
		t.Fatal("expected error for unknown transformer")
	}

	if got := len(r.ForClass("xml")); got != 1 {
		t.Errorf("expected previous binding to survive failed bind, got %d transformers", got)
	}
}

func TestRegisterCustomTransformer(t *testing.T) {
	r := NewRegistry()
	custom := &recordingTransformer{}
	r.Register("custom", custom)

	cfg := &config.Config{
		Transforms: []config.TransformConfig{
			{Class: "xml", Transformers: []string{"custom", "embed-images"}},
		},
	}
	if err := r.Bind(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	transformers := r.ForClass("xml")
	if len(transformers) != 2 {
		t.Fatalf("expected 2 transformers, got %d", len(transformers))
	}
	if transformers[0] != Transformer(custom) {
		t.Error("expected custom transformer first in configuration order")
	}
}
