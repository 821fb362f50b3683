package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// mapKV is an in-memory KV with injectable failures.
type mapKV struct {
	values map[string][]byte
	getErr error
	setErr error
}

func newMapKV(kv ...string) *mapKV {
	m := &mapKV{values: map[string][]byte{}}
	for i := 0; i+1 < len(kv); i += 2 {
		m.values[kv[i]] = []byte(kv[i+1])
	}
	return m
}

func (m *mapKV) Get(key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapKV) Set(key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestLoad_MissingKeyReturnsDefaultSilently(t *testing.T) {
	log, logs := observed()
	s := New(newMapKV(), log)

	got := Load(s, KeyReasons, DefaultReasons(), nil)

	assert.Equal(t, DefaultReasons(), got)
	assert.Zero(t, logs.Len())
}

func TestLoad_MalformedReturnsDefaultAndWarns(t *testing.T) {
	cases := map[string]string{
		"not json":    `{oops`,
		"wrong shape": `{"a":1}`,
		"null":        `null`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			log, logs := observed()
			s := New(newMapKV(KeyReasons, raw), log)

			got := Load(s, KeyReasons, DefaultReasons(), nil)

			assert.Equal(t, DefaultReasons(), got)
			assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
		})
	}
}

func TestLoad_BackendErrorReturnsDefault(t *testing.T) {
	kv := newMapKV()
	kv.getErr = errors.New("disk gone")
	s := New(kv, nil)

	assert.Equal(t, DefaultTimeCapsule(), Load(s, KeyTimeCapsule, DefaultTimeCapsule(), MigrateTimeCapsule))
}

func TestSave_ThenLoad(t *testing.T) {
	s := New(newMapKV(), nil)
	want := []string{"one", "two"}

	Save(s, KeyReasons, want)

	assert.Equal(t, want, Load(s, KeyReasons, DefaultReasons(), nil))
}

func TestSave_ErrorIsLoggedNotReturned(t *testing.T) {
	kv := newMapKV()
	kv.setErr = errors.New("quota exceeded")
	log, logs := observed()
	s := New(kv, log)

	Save(s, KeyReasons, []string{"x"})

	assert.Equal(t, 1, logs.FilterMessage("failed to save preference").Len())
}

func TestMigratePlaylist_UpgradesBareStrings(t *testing.T) {
	raw := `["https://youtu.be/aaaaaaaaaaa", {"url":"https://www.youtube.com/watch?v=bbbbbbbbbbb","title":"Ours"}]`

	got, err := MigratePlaylist([]byte(raw))

	require.NoError(t, err)
	assert.Equal(t, []models.SongEntry{
		{URL: "https://youtu.be/aaaaaaaaaaa", Title: UntitledSong},
		{URL: "https://www.youtube.com/watch?v=bbbbbbbbbbb", Title: "Ours"},
	}, got)
}

func TestMigratePlaylist_RejectsNonArray(t *testing.T) {
	_, err := MigratePlaylist([]byte(`{"url":"x"}`))
	assert.Error(t, err)

	_, err = MigratePlaylist([]byte(`[42]`))
	assert.Error(t, err)
}

func TestMigrateBucketList_RepairsDuplicateIDs(t *testing.T) {
	raw := `[{"id":1,"text":"a"},{"id":1,"text":"b"},{"id":3,"text":"c"},{"id":3,"text":"d"}]`

	got, err := MigrateBucketList([]byte(raw))

	require.NoError(t, err)
	ids := make(map[int64]bool)
	for _, it := range got {
		assert.False(t, ids[it.ID], "duplicate id %d", it.ID)
		ids[it.ID] = true
	}
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[2].ID)
	assert.Equal(t, "b", got[1].Text)
}

func TestNextBucketID(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	assert.Equal(t, now.UnixMilli(), NextBucketID(DefaultBucketList(), now))

	items := []models.BucketItem{{ID: now.UnixMilli()}, {ID: 2}}
	assert.Equal(t, now.UnixMilli()+1, NextBucketID(items, now))
}

func TestMigrateTimeCapsule(t *testing.T) {
	ok := `{"unlockDate":"2030-02-14","messageForHer":"h","messageForHim":"m"}`
	c, err := MigrateTimeCapsule([]byte(ok))
	require.NoError(t, err)
	assert.Equal(t, "2030-02-14", c.UnlockDate)

	for _, bad := range []string{`{"messageForHer":"h"}`, `{"unlockDate":"next year"}`, `[]`} {
		_, err := MigrateTimeCapsule([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestLoadBundle_AlwaysComplete(t *testing.T) {
	kv := newMapKV(
		KeyPlaylist, `["https://youtu.be/aaaaaaaaaaa"]`,
		KeyReasons, `null`,
		KeyTimeCapsule, `{"unlockDate":""}`,
	)
	b := LoadBundle(New(kv, nil))

	assert.Equal(t, []models.SongEntry{{URL: "https://youtu.be/aaaaaaaaaaa", Title: UntitledSong}}, b.Playlist)
	assert.Equal(t, DefaultReasons(), b.Reasons)
	assert.Equal(t, DefaultBucketList(), b.BucketList)
	assert.Equal(t, DefaultTimeCapsule(), b.TimeCapsule)
}

func TestDefaultBundle(t *testing.T) {
	b := DefaultBundle()
	assert.Len(t, b.Playlist, 1)
	assert.Len(t, b.Reasons, 6)
	assert.Len(t, b.BucketList, 6)
	assert.Equal(t, "2024-12-31", b.TimeCapsule.UnlockDate)

	b.Reasons[0] = "changed"
	assert.NotEqual(t, "changed", DefaultReasons()[0], "defaults must be fresh copies")
}

func TestFileKV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	kv := NewFileKV(path)

	_, ok, err := kv.Get(KeyReasons)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(KeyReasons, []byte(`["a"]`)))
	require.NoError(t, kv.Set(KeyPlaylist, []byte(`[]`)))

	v, ok, err := kv.Get(KeyReasons)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `["a"]`, string(v))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var all map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Len(t, all, 2)
}

func TestFileKV_RejectsNonJSON(t *testing.T) {
	kv := NewFileKV(filepath.Join(t.TempDir(), "prefs.json"))
	assert.Error(t, kv.Set(KeyReasons, []byte("plain text")))
}

func TestFileKV_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	kv := NewFileKV(path)

	_, _, err := kv.Get(KeyReasons)
	assert.Error(t, err)

	s := New(kv, nil)
	assert.Equal(t, DefaultReasons(), Load(s, KeyReasons, DefaultReasons(), nil))

	require.NoError(t, kv.Set(KeyReasons, []byte(`["fresh"]`)))
	assert.Equal(t, []string{"fresh"}, Load(s, KeyReasons, DefaultReasons(), nil))
}

func TestFileKV_SharedFileAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	a, b := NewFileKV(path), NewFileKV(path)

	_, ok, err := a.Get(KeyReasons)
	require.NoError(t, err)
	assert.False(t, ok, "missing directory reads as empty")

	require.NoError(t, a.Set(KeyReasons, []byte(`["a"]`)))
	require.NoError(t, b.Set(KeyPlaylist, []byte(`[]`)))

	v, ok, err := a.Get(KeyPlaylist)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[]`, string(v))
	assert.FileExists(t, path+".lock")
}

func TestNewFileKV_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultFile, NewFileKV("").Path())
}

func TestBadgerKV_InMemoryRoundTrip(t *testing.T) {
	kv, err := OpenBadger("", nil)
	require.NoError(t, err)
	defer kv.Close()

	_, ok, err := kv.Get(KeyBucketList)
	require.NoError(t, err)
	assert.False(t, ok)

	s := New(kv, nil)
	items := []models.BucketItem{{ID: 9, Text: "deniz", Completed: true}}
	Save(s, KeyBucketList, items)

	assert.Equal(t, items, Load(s, KeyBucketList, DefaultBucketList(), MigrateBucketList))
}

func TestBadgerKV_PersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	kv, err := OpenBadger(dir, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, kv.Set(KeyReasons, []byte(`["kalıcı"]`)))
	require.NoError(t, kv.Close())

	kv, err = OpenBadger(dir, zap.NewNop())
	require.NoError(t, err)
	defer kv.Close()

	v, ok, err := kv.Get(KeyReasons)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `["kalıcı"]`, string(v))
}
