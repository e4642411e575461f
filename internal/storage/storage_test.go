// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopchat/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// brokenKV fails every operation, like a full or unavailable store.
type brokenKV struct{}

var errUnavailable = errors.New("quota exceeded")

func (brokenKV) Get(string) (string, bool, error) { return "", false, errUnavailable }
func (brokenKV) Set(string, string) error         { return errUnavailable }
func (brokenKV) Delete(string) error              { return errUnavailable }
func (brokenKV) Close() error                     { return nil }

func backends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileKV(filepath.Join(dir, "nested", "store.json"))
	require.NoError(t, err)
	db, err := NewSQLiteKV(filepath.Join(dir, "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]KV{
		BackendFile:   file,
		BackendSQLite: db,
		BackendMemory: NewMemoryKV(),
	}
}

// =============================================================================
// KV TESTS
// =============================================================================

func TestKV_Contract(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set("a", "1"))
			require.NoError(t, kv.Set("b", `{"x":"<y>"}`))
			require.NoError(t, kv.Set("a", "2"))

			v, ok, err := kv.Get("a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "2", v)

			v, ok, err = kv.Get("b")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"x":"<y>"}`, v)

			require.NoError(t, kv.Delete("a"))
			require.NoError(t, kv.Delete("never-set"))
			_, ok, err = kv.Get("a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	first, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", "v"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, err := NewFileKV(path)
	require.NoError(t, err)
	v, ok, err := second.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestFileKV_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	kv, err := NewFileKV(path)
	require.NoError(t, err)

	_, _, err = kv.Get("k")
	assert.ErrorIs(t, err, ErrCorrupt)

	// A write replaces the corrupt file.
	require.NoError(t, kv.Set("k", "v"))
	v, ok, err := kv.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestFileKV_Closed(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	assert.ErrorIs(t, kv.Set("k", "v"), ErrClosed)
	_, _, err = kv.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSQLiteKV_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	first, err := NewSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", "v"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteKV(path)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	kv, err := Open("FILE", filepath.Join(dir, "s.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)

	kv, err = Open(BackendSQLite, filepath.Join(dir, "s.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteKV{}, kv)
	kv.Close()

	kv, err = Open(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)

	_, err = Open("redis", filepath.Join(dir, "x"))
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestHistory_AppendAndLoad(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			h := NewHistory(kv)
			ts := time.UnixMilli(1735725600123)

			h.Append(model.NewTurnAt(model.RoleUser, "hola", ts))
			h.Append(model.NewTurnAt(model.RoleBot, "<b>Hi</b>", ts.Add(time.Second)))

			turns := h.LoadAll()
			require.Len(t, turns, 2)
			assert.Equal(t, model.RoleUser, turns[0].Role)
			assert.Equal(t, "hola", turns[0].Content)
			assert.True(t, ts.Equal(turns[0].Timestamp))
			assert.Equal(t, model.RoleBot, turns[1].Role)
			assert.Equal(t, "<b>Hi</b>", turns[1].Content)
		})
	}
}

func TestHistory_EvictsOldestFirst(t *testing.T) {
	h := NewHistory(NewMemoryKV())

	for i := 0; i < DefaultHistoryCapacity+1; i++ {
		h.Append(model.NewTurn(model.RoleUser, fmt.Sprintf("msg %d", i)))
	}

	turns := h.LoadAll()
	require.Len(t, turns, DefaultHistoryCapacity)
	assert.Equal(t, "msg 1", turns[0].Content)
	assert.Equal(t, fmt.Sprintf("msg %d", DefaultHistoryCapacity), turns[len(turns)-1].Content)
}

func TestHistory_CustomCapacity(t *testing.T) {
	h := NewHistory(NewMemoryKV(), WithHistoryCapacity(3), WithHistoryCapacity(0))
	assert.Equal(t, 3, h.Capacity())

	for i := 0; i < 10; i++ {
		h.Append(model.NewTurn(model.RoleBot, fmt.Sprintf("%d", i)))
	}

	turns := h.LoadAll()
	require.Len(t, turns, 3)
	assert.Equal(t, "7", turns[0].Content)
	assert.Equal(t, "9", turns[2].Content)
}

func TestHistory_StoredFormat(t *testing.T) {
	kv := NewMemoryKV()
	h := NewHistory(kv)
	h.Append(model.NewTurnAt(model.RoleBot, "hey", time.UnixMilli(42)))

	raw, ok, err := kv.Get(HistoryKey)
	require.NoError(t, err)
	require.True(t, ok)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "hey", entries[0]["message"])
	assert.Equal(t, "bot", entries[0]["type"])
	assert.EqualValues(t, 42, entries[0]["timestamp"])
}

func TestHistory_SkipsUnknownTypes(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(HistoryKey, `[{"message":"a","type":"user","timestamp":1},{"message":"b","type":"system","timestamp":2}]`))

	turns := NewHistory(kv).LoadAll()
	require.Len(t, turns, 1)
	assert.Equal(t, "a", turns[0].Content)
}

func TestHistory_CorruptValue(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(HistoryKey, "not json"))

	var buf bytes.Buffer
	h := NewHistory(kv, WithHistoryLogger(zerolog.New(&buf)))

	assert.Nil(t, h.LoadAll())
	assert.Contains(t, buf.String(), "failed to load message history")

	// Append leaves the corrupt value alone rather than guessing.
	h.Append(model.NewTurn(model.RoleUser, "x"))
	raw, _, _ := kv.Get(HistoryKey)
	assert.Equal(t, "not json", raw)
}

func TestHistory_PersistenceFailureIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	h := NewHistory(brokenKV{}, WithHistoryLogger(zerolog.New(&buf)))

	assert.NotPanics(t, func() {
		h.Append(model.NewTurn(model.RoleUser, "hello"))
	})
	assert.Nil(t, h.LoadAll())
	assert.Contains(t, buf.String(), "quota exceeded")
	assert.Contains(t, buf.String(), `"component":"history"`)
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(NewMemoryKV())
	h.Append(model.NewTurn(model.RoleUser, "a"))
	require.NoError(t, h.Clear())
	assert.Empty(t, h.LoadAll())

	assert.ErrorIs(t, NewHistory(brokenKV{}).Clear(), errUnavailable)
}

// =============================================================================
// IDENTITY TESTS
// =============================================================================

func TestIdentity_CreatesAndPersists(t *testing.T) {
	kv := NewMemoryKV()

	id := NewIdentity(kv).GetOrCreateUserID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	stored, ok, err := kv.Get(UserIDKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, stored)

	// A fresh Identity over the same store sees the same value.
	assert.Equal(t, id, NewIdentity(kv).GetOrCreateUserID())
}

func TestIdentity_KeepsExistingValue(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(UserIDKey, "legacy-id"))

	assert.Equal(t, "legacy-id", NewIdentity(kv).GetOrCreateUserID())
}

func TestIdentity_StableWhenStoreUnavailable(t *testing.T) {
	var buf bytes.Buffer
	ident := NewIdentity(brokenKV{}, zerolog.New(&buf))

	first := ident.GetOrCreateUserID()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, ident.GetOrCreateUserID())
	assert.Contains(t, buf.String(), "failed to persist user id")
}

func TestIdentity_DistinctProfiles(t *testing.T) {
	a := NewIdentity(NewMemoryKV()).GetOrCreateUserID()
	b := NewIdentity(NewMemoryKV()).GetOrCreateUserID()
	assert.NotEqual(t, a, b)
}
