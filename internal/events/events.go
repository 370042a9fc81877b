// Package events records galley and dependent-file downloads. Emission
// is best effort: a sink that fails logs the failure and the download
// proceeds.
package events

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"galleyd/internal/config"
)

const (
	KindGalleyDownload    = "galley.download"
	KindDependentDownload = "dependent.download"
)

// Event is one recorded download.
type Event struct {
	ID           string
	Kind         string
	SubmissionID int64
	GalleyID     int64
	FileID       int64
	FileName     string
	Inline       bool
	At           time.Time
}

// New builds an event with a fresh id and the current time.
func New(kind string, submissionID, galleyID, fileID int64, fileName string, inline bool) Event {
	return Event{
		ID:           uuid.NewString(),
		Kind:         kind,
		SubmissionID: submissionID,
		GalleyID:     galleyID,
		FileID:       fileID,
		FileName:     fileName,
		Inline:       inline,
		At:           time.Now().UTC(),
	}
}

// Emitter records usage events.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// LogEmitter writes events to the process log.
type LogEmitter struct{}

func (LogEmitter) Emit(ctx context.Context, ev Event) {
	slog.Info("Usage event",
		"id", ev.ID,
		"kind", ev.Kind,
		"submission", ev.SubmissionID,
		"galley", ev.GalleyID,
		"file", ev.FileID,
		"name", ev.FileName,
		"inline", ev.Inline)
}

// RedisEmitter appends events to a Redis stream for downstream usage
// statistics processing.
type RedisEmitter struct {
	client *redis.Client
	stream string
}

func NewRedisEmitter(cfg config.RedisConfig, stream string) *RedisEmitter {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisEmitter{client: client, stream: stream}
}

// Close releases the Redis client.
func (e *RedisEmitter) Close() error {
	return e.client.Close()
}

func (e *RedisEmitter) Emit(ctx context.Context, ev Event) {
	err := e.client.XAdd(ctx, &redis.XAddArgs{
		Stream: e.stream,
		Values: map[string]interface{}{
			"id":         ev.ID,
			"kind":       ev.Kind,
			"submission": ev.SubmissionID,
			"galley":     ev.GalleyID,
			"file":       ev.FileID,
			"name":       ev.FileName,
			"inline":     strconv.FormatBool(ev.Inline),
			"at":         ev.At.Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		slog.Debug("Usage event not recorded", "id", ev.ID, "error", err)
	}
}
