package jats

import "testing"

func TestIsXMLGalley(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		fileName string
		expected bool
	}{
		{"application/xml", "application/xml", "paper.dat", true},
		{"text/xml", "text/xml", "", true},
		{"jats mime type", "application/jats+xml", "", true},
		{"xml extension", "application/octet-stream", "paper.xml", true},
		{"uppercase extension", "", "PAPER.XML", true},
		{"html is not xml", "text/html", "galley.html", false},
		{"pdf", "application/pdf", "paper.pdf", false},
		{"empty", "", "", false},
		{"xml in the middle of the name", "", "paper.xml.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsXMLGalley(tt.mimeType, tt.fileName); got != tt.expected {
				t.Errorf("IsXMLGalley(%q, %q) = %v, expected %v", tt.mimeType, tt.fileName, got, tt.expected)
			}
		})
	}
}
