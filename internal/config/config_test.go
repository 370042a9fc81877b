package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		configJSON  string
		expectError bool
	}{
		{
			name: "valid config",
			configJSON: `{
				"base_url": "https://journal.example",
				"files_dir": "/var/ojs/files",
				"db_path": "/var/ojs/galleyd.db",
				"redis": {
					"addr": "localhost:6379",
					"password": "",
					"db": 0
				},
				"transforms": [
					{
						"class": "xml",
						"transformers": ["embed-images"]
					}
				]
			}`,
			expectError: false,
		},
		{
			name: "missing base_url",
			configJSON: `{
				"files_dir": "/var/ojs/files",
				"db_path": "/var/ojs/galleyd.db",
				"redis": {
					"addr": "localhost:6379"
				}
			}`,
			expectError: true,
		},
		{
			name: "invalid transform class",
			configJSON: `{
				"base_url": "https://journal.example",
				"files_dir": "/var/ojs/files",
				"db_path": "/var/ojs/galleyd.db",
				"redis": {
					"addr": "localhost:6379"
				},
				"transforms": [
					{
						"class": "pdf",
						"transformers": ["embed-images"]
					}
				]
			}`,
			expectError: true,
		},
		{
			name: "no transformers for class",
			configJSON: `{
				"base_url": "https://journal.example",
				"files_dir": "/var/ojs/files",
				"db_path": "/var/ojs/galleyd.db",
				"redis": {
					"addr": "localhost:6379"
				},
				"transforms": [
					{
						"class": "xml",
						"transformers": []
					}
				]
			}`,
			expectError: true,
		},
		{
			name: "invalid events sink",
			configJSON: `{
				"base_url": "https://journal.example",
				"files_dir": "/var/ojs/files",
				"db_path": "/var/ojs/galleyd.db",
				"redis": {
					"addr": "localhost:6379"
				},
				"events": {
					"sink": "kafka"
				}
			}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempFile, err := os.CreateTemp("", "config-test-*.json")
			if err != nil {
				t.Fatal(err)
			}
			defer os.Remove(tempFile.Name())

			if _, err := tempFile.WriteString(tt.configJSON); err != nil {
				t.Fatal(err)
			}
			tempFile.Close()

			config, err := Load(tempFile.Name())
			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if config == nil {
					t.Error("config is nil")
				}
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
	}{
		{
			name: "valid config",
			config: &Config{
				BaseURL:  "https://journal.example",
				FilesDir: "/var/ojs/files",
				DBPath:   "/var/ojs/galleyd.db",
				Redis:    RedisConfig{Addr: "localhost:6379"},
				Transforms: []TransformConfig{
					{Class: "xml", Transformers: []string{"embed-images"}},
					{Class: "html", Transformers: []string{"embed-media"}},
				},
			},
			expectError: false,
		},
		{
			name: "empty base URL",
			config: &Config{
				FilesDir: "/var/ojs/files",
				DBPath:   "/var/ojs/galleyd.db",
				Redis:    RedisConfig{Addr: "localhost:6379"},
			},
			expectError: true,
		},
		{
			name: "empty files dir",
			config: &Config{
				BaseURL: "https://journal.example",
				DBPath:  "/var/ojs/galleyd.db",
				Redis:   RedisConfig{Addr: "localhost:6379"},
			},
			expectError: true,
		},
		{
			name: "empty db path",
			config: &Config{
				BaseURL:  "https://journal.example",
				FilesDir: "/var/ojs/files",
				Redis:    RedisConfig{Addr: "localhost:6379"},
			},
			expectError: true,
		},
		{
			name: "empty redis addr",
			config: &Config{
				BaseURL:  "https://journal.example",
				FilesDir: "/var/ojs/files",
				DBPath:   "/var/ojs/galleyd.db",
				Redis:    RedisConfig{},
			},
			expectError: true,
		},
		{
			name: "empty transformer name",
			config: &Config{
				BaseURL:  "https://journal.example",
				FilesDir: "/var/ojs/files",
				DBPath:   "/var/ojs/galleyd.db",
				Redis:    RedisConfig{Addr: "localhost:6379"},
				Transforms: []TransformConfig{
					{Class: "xml", Transformers: []string{""}},
				},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.config)
			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	config := &Config{}
	setDefaults(config)

	if config.DefaultLocale != "en" {
		t.Errorf("expected DefaultLocale to be 'en', got %q", config.DefaultLocale)
	}
	if config.CacheTTLSeconds != 300 {
		t.Errorf("expected CacheTTLSeconds to be 300, got %d", config.CacheTTLSeconds)
	}
	if config.MaxDocumentSizeMB != 10 {
		t.Errorf("expected MaxDocumentSizeMB to be 10, got %d", config.MaxDocumentSizeMB)
	}
	if config.Events.Sink != "log" {
		t.Errorf("expected Events.Sink to be 'log', got %q", config.Events.Sink)
	}
	if config.Events.Stream != "galleyd:events" {
		t.Errorf("expected Events.Stream to be 'galleyd:events', got %q", config.Events.Stream)
	}
}
