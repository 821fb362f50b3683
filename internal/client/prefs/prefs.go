// Package prefs persists the couple's local preferences (playlist, reasons,
// bucket list and time capsule) as JSON values in a key-value backend.
//
// Reads never fail: a missing key, malformed JSON or an unexpected shape
// yields the built-in default and a warning in the log. Writes are
// synchronous and best-effort.
package prefs

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Keys under which each part of the bundle is stored.
const (
	KeyPlaylist    = "playlist"
	KeyReasons     = "reasons"
	KeyBucketList  = "bucketList"
	KeyTimeCapsule = "timeCapsule"
)

// KV is the storage backend: opaque values under string keys. Get reports
// ok=false for a key that was never set.
type KV interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
}

// Store couples a backend with the logger that receives load and save
// diagnostics.
type Store struct {
	kv  KV
	log *zap.Logger
}

// New returns a Store over kv. A nil log discards diagnostics.
func New(kv KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log}
}

// Migrate decodes a stored value, upgrading older shapes on the way.
type Migrate[T any] func(raw []byte) (T, error)

var errNull = errors.New("stored value is null")

// Load returns the value stored under key, decoded by migrate (plain JSON
// decoding when migrate is nil). Any failure returns def.
func Load[T any](s *Store, key string, def T, migrate Migrate[T]) T {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.Warn("failed to read preference, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	if !ok {
		return def
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		s.log.Warn("invalid preference, using default", zap.String("key", key), zap.Error(errNull))
		return def
	}
	if migrate == nil {
		migrate = decode[T]
	}
	v, err := migrate(raw)
	if err != nil {
		s.log.Warn("invalid preference, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return v
}

// Save encodes value under key. Failures are logged and otherwise ignored.
func Save[T any](s *Store, key string, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Error("failed to encode preference", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Set(key, raw); err != nil {
		s.log.Error("failed to save preference", zap.String("key", key), zap.Error(err))
	}
}

// LoadBundle loads all four keys with their defaults and migrations.
func LoadBundle(s *Store) models.Bundle {
	return models.Bundle{
		Playlist:    Load(s, KeyPlaylist, DefaultPlaylist(), MigratePlaylist),
		Reasons:     Load(s, KeyReasons, DefaultReasons(), nil),
		BucketList:  Load(s, KeyBucketList, DefaultBucketList(), MigrateBucketList),
		TimeCapsule: Load(s, KeyTimeCapsule, DefaultTimeCapsule(), MigrateTimeCapsule),
	}
}

func decode[T any](raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode: %w", err)
	}
	return v, nil
}
