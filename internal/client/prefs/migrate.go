package prefs

import (
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/goccy/go-json"
)

// UntitledSong is the title given to playlist entries stored as bare URLs.
const UntitledSong = "İsimsiz Şarkı"

// CapsuleDateLayout is the layout of TimeCapsule.UnlockDate.
const CapsuleDateLayout = "2006-01-02"

// MigratePlaylist accepts a JSON array whose entries are either song
// objects or bare URL strings from older versions.
func MigratePlaylist(raw []byte) ([]models.SongEntry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("playlist: %w", err)
	}
	out := make([]models.SongEntry, 0, len(items))
	for i, item := range items {
		var url string
		if err := json.Unmarshal(item, &url); err == nil {
			out = append(out, models.SongEntry{URL: url, Title: UntitledSong})
			continue
		}
		var song models.SongEntry
		if err := json.Unmarshal(item, &song); err != nil {
			return nil, fmt.Errorf("playlist entry %d: %w", i, err)
		}
		out = append(out, song)
	}
	return out, nil
}

// MigrateBucketList decodes the bucket list and gives every item that
// repeats an earlier id a fresh one above the current maximum.
func MigrateBucketList(raw []byte) ([]models.BucketItem, error) {
	var items []models.BucketItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("bucket list: %w", err)
	}
	var maxID int64
	for _, it := range items {
		maxID = max(maxID, it.ID)
	}
	seen := make(map[int64]struct{}, len(items))
	for i := range items {
		if _, dup := seen[items[i].ID]; dup {
			maxID++
			items[i].ID = maxID
		}
		seen[items[i].ID] = struct{}{}
	}
	return items, nil
}

// NextBucketID returns an id for a new bucket item that is unique within
// items: the current time in milliseconds, or one above the largest id when
// that is already taken.
func NextBucketID(items []models.BucketItem, now time.Time) int64 {
	id := now.UnixMilli()
	for _, it := range items {
		if it.ID >= id {
			id = it.ID + 1
		}
	}
	return id
}

var errUnlockDate = errors.New("time capsule: invalid unlock date")

// MigrateTimeCapsule rejects capsules without a parseable unlock date.
func MigrateTimeCapsule(raw []byte) (models.TimeCapsule, error) {
	var c models.TimeCapsule
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("time capsule: %w", err)
	}
	if _, err := time.Parse(CapsuleDateLayout, c.UnlockDate); err != nil {
		return c, fmt.Errorf("%w: %q", errUnlockDate, c.UnlockDate)
	}
	return c, nil
}
