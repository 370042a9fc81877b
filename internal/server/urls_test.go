package server

import "testing"

func TestNewURLBuilder(t *testing.T) {
	if _, err := NewURLBuilder("https://journal.example"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewURLBuilder("://missing-scheme"); err == nil {
		t.Error("expected error for unparsable base URL")
	}
}

func TestDownloadURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		fileName string
		mimeType string
		expected string
	}{
		{
			name:     "plain image",
			base:     "https://journal.example",
			fileName: "fig1.png",
			mimeType: "image/png",
			expected: "https://journal.example/article/download/12/7/44/fig1.png",
		},
		{
			name:     "trailing slash on base",
			base:     "https://journal.example/",
			fileName: "fig1.png",
			mimeType: "image/png",
			expected: "https://journal.example/article/download/12/7/44/fig1.png",
		},
		{
			name:     "base with path prefix",
			base:     "https://journal.example/ojs",
			fileName: "fig1.png",
			mimeType: "image/png",
			expected: "https://journal.example/ojs/article/download/12/7/44/fig1.png",
		},
		{
			name:     "name with space",
			base:     "https://journal.example",
			fileName: "Figure 1.png",
			mimeType: "image/png",
			expected: "https://journal.example/article/download/12/7/44/Figure%201.png",
		},
		{
			name:     "name with slash stays one segment",
			base:     "https://journal.example",
			fileName: "figures/fig1.png",
			mimeType: "image/png",
			expected: "https://journal.example/article/download/12/7/44/figures%2Ffig1.png",
		},
		{
			name:     "plain text is inline",
			base:     "https://journal.example",
			fileName: "README.txt",
			mimeType: "text/plain",
			expected: "https://journal.example/article/download/12/7/44/README.txt?inline=true",
		},
		{
			name:     "stylesheet with charset is inline",
			base:     "https://journal.example",
			fileName: "style.css",
			mimeType: "text/css; charset=utf-8",
			expected: "https://journal.example/article/download/12/7/44/style.css?inline=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewURLBuilder(tt.base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			result := b.DownloadURL(12, 7, 44, tt.fileName, tt.mimeType)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestBaseMimeType(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"text/html", "text/html"},
		{"text/html; charset=utf-8", "text/html"},
		{"application/xml; charset=utf-8", "application/xml"},
		{" text/plain ", "text/plain"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			result := baseMimeType(tt.contentType)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}
