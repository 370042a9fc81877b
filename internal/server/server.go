// Package server handles galley download requests: it resolves the
// requested file, rewrites references in XML and HTML galleys to
// download URLs, and serves the result with caching and usage events
// around it.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/h2non/filetype"

	"galleyd/internal/cache"
	"galleyd/internal/config"
	"galleyd/internal/events"
	"galleyd/internal/store"
	"galleyd/internal/transform"
	"galleyd/pkg/jats"
)

type Server struct {
	mu       sync.RWMutex
	config   *config.Config
	store    *store.Store
	cache    *cache.Cache
	registry *transform.Registry
	urls     *URLBuilder
	emitter  events.Emitter
	mux      *http.ServeMux
	version  string
}

func New(cfg *config.Config, version string) (*Server, error) {
	urls, err := NewURLBuilder(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	registry := transform.NewRegistry()
	if err := registry.Bind(cfg); err != nil {
		return nil, fmt.Errorf("failed to bind transformers: %w", err)
	}

	st, err := store.Open(cfg.DBPath, cfg.FilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	cacheClient, err := cache.New(cfg.Redis, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create cache client: %w", err)
	}

	s := &Server{
		config:   cfg,
		store:    st,
		cache:    cacheClient,
		registry: registry,
		urls:     urls,
		emitter:  newEmitter(cfg),
		version:  version,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /article/download/{submission}/{galley}/{file}/{name}", s.handleDownload)
	s.mux = mux

	return s, nil
}

func newEmitter(cfg *config.Config) events.Emitter {
	if cfg.Events.Sink == "redis" {
		return events.NewRedisEmitter(cfg.Redis, cfg.Events.Stream)
	}
	return events.LogEmitter{}
}

func (s *Server) UpdateConfig(cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls, err := NewURLBuilder(cfg.BaseURL)
	if err != nil {
		return err
	}

	if err := s.registry.Bind(cfg); err != nil {
		return fmt.Errorf("failed to rebind transformers: %w", err)
	}

	if cfg.DBPath != s.config.DBPath || cfg.FilesDir != s.config.FilesDir {
		st, err := store.Open(cfg.DBPath, cfg.FilesDir)
		if err != nil {
			return fmt.Errorf("failed to reopen store: %w", err)
		}
		if err := s.store.Close(); err != nil {
			slog.Error("Failed to close previous store", "error", err)
		}
		s.store = st
	}

	// Recreate the cache client if Redis configuration or TTL changed
	if cfg.Redis != s.config.Redis || cfg.CacheTTLSeconds != s.config.CacheTTLSeconds {
		newCache, err := cache.New(cfg.Redis, time.Duration(cfg.CacheTTLSeconds)*time.Second)
		if err != nil {
			return fmt.Errorf("failed to create new cache client: %w", err)
		}
		if err := s.cache.Close(); err != nil {
			slog.Error("Failed to close previous cache client", "error", err)
		}
		s.cache = newCache
	}

	if closer, ok := s.emitter.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Error("Failed to close previous event emitter", "error", err)
		}
	}
	s.emitter = newEmitter(cfg)

	s.config = cfg
	s.urls = urls

	return nil
}

// Close releases the store, cache, and event sink.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := []error{s.store.Close(), s.cache.Close()}
	if closer, ok := s.emitter.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	submissionID, err1 := strconv.ParseInt(r.PathValue("submission"), 10, 64)
	galleyID, err2 := strconv.ParseInt(r.PathValue("galley"), 10, 64)
	fileID, err3 := strconv.ParseInt(r.PathValue("file"), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("X-Galleyd-Version", s.version)

	inline := r.URL.Query().Get("inline") == "true"

	if entry := s.cache.Get(r); entry != nil {
		slog.Info("Serving cached galley", "url", r.URL.Path)
		w.Header().Set("X-Galleyd-Cache", "HIT")
		s.writeEntry(w, entry)
		s.emitter.Emit(r.Context(), events.New(entry.Kind, submissionID, galleyID, fileID, entry.FileName, inline))
		return
	}

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = s.config.DefaultLocale
	}

	f, err := s.store.Lookup(r.Context(), submissionID, galleyID, fileID, locale)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("File lookup failed", "file", fileID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Without the stored bytes there is nothing to rewrite or serve.
	body, err := s.store.ReadFileBytes(f)
	if err != nil {
		slog.Error("Failed to read galley file", "path", f.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	mimeType := f.MIMEType
	if mimeType == "" {
		mimeType = sniffMimeType(body)
	}

	body = s.transformBody(r.Context(), f, body, mimeType, locale)

	entry := &cache.Entry{
		Body:        body,
		ContentType: mimeType,
		Disposition: contentDisposition(inline, f.Name),
		FileName:    f.Name,
		Kind:        eventKind(f),
		StatusCode:  http.StatusOK,
		Timestamp:   time.Now(),
	}
	if err := s.cache.Set(r, entry); err != nil {
		slog.Debug("Failed to cache response", "error", err)
	}

	w.Header().Set("X-Galleyd-Cache", "MISS")
	s.writeEntry(w, entry)

	s.emitter.Emit(r.Context(), events.New(entry.Kind, submissionID, galleyID, fileID, f.Name, inline))
}

// transformBody runs the transformers bound to the galley's document
// class. Galleys of other classes, oversized documents, and galleys
// without dependent files are served exactly as stored.
func (s *Server) transformBody(ctx context.Context, f *store.File, body []byte, mimeType, locale string) []byte {
	class := documentClass(mimeType, f.Name)
	if class == "" {
		return body
	}
	transformers := s.registry.ForClass(class)
	if len(transformers) == 0 {
		return body
	}

	maxSize := int64(s.config.MaxDocumentSizeMB) * 1024 * 1024
	if int64(len(body)) > maxSize {
		slog.Info("Galley too large, skipping rewrite", "size", len(body), "max", maxSize)
		return body
	}

	deps, err := s.store.DependentFiles(ctx, f.ID, locale)
	if err != nil {
		slog.Error("Failed to list dependent files", "file", f.ID, "error", err)
		return body
	}

	files := make([]jats.File, 0, len(deps))
	for _, d := range deps {
		files = append(files, jats.File{
			Name:     d.Name,
			URL:      s.urls.DownloadURL(d.SubmissionID, d.GalleyID, d.ID, d.Name, d.MIMEType),
			MIMEType: d.MIMEType,
		})
	}
	idx := jats.BuildIndex(files)
	if len(idx) == 0 {
		return body
	}

	tc := &transform.Context{Files: files, Index: idx}
	switch class {
	case "xml":
		return transform.ProcessXML(ctx, tc, body, transformers)
	case "html":
		return transform.ProcessHTML(ctx, tc, body, transformers)
	}
	return body
}

func (s *Server) writeEntry(w http.ResponseWriter, entry *cache.Entry) {
	if entry.ContentType != "" {
		w.Header().Set("Content-Type", entry.ContentType)
	}
	if entry.Disposition != "" {
		w.Header().Set("Content-Disposition", entry.Disposition)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(entry.Body)))
	w.WriteHeader(entry.StatusCode)
	if _, err := w.Write(entry.Body); err != nil {
		slog.Error("Failed to write response body", "error", err)
	}
}

// documentClass maps a galley to the transformer class that handles it,
// or "" when no class applies.
func documentClass(mimeType, fileName string) string {
	mt := baseMimeType(mimeType)
	switch {
	case jats.IsXMLGalley(mt, fileName):
		return "xml"
	case mt == "text/html" || mt == "application/xhtml+xml":
		return "html"
	}
	return ""
}

// sniffMimeType falls back to magic byte detection when the store has
// no recorded MIME type for a file.
func sniffMimeType(body []byte) string {
	if kind, err := filetype.Match(body); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return "application/octet-stream"
}

func contentDisposition(inline bool, name string) string {
	dispositionType := "attachment"
	if inline {
		dispositionType = "inline"
	}
	if name == "" {
		return dispositionType
	}
	return mime.FormatMediaType(dispositionType, map[string]string{"filename": name})
}

func eventKind(f *store.File) string {
	if f.AssocFileID != 0 {
		return events.KindDependentDownload
	}
	return events.KindGalleyDownload
}
