package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupGitDir creates <root>/.git and returns root and a resolver for it.
func setupGitDir(t *testing.T) (string, GitDirResolver) {
	t.Helper()
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	require.NoError(t, os.Mkdir(gitDir, 0o755))
	return root, func(context.Context) (string, error) { return gitDir, nil }
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	if len(data) == 0 {
		return nil
	}
	return strings.Split(string(data), "\n")
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)

	values := map[string]any{
		"REPO":     map[string]any{"id": "R_1", "name": "api", "url": "https://github.com/acme/api"},
		"LABELS":   []any{map[string]any{"id": "L1", "name": "bug"}, map[string]any{"id": "L2", "name": "feature"}},
		"ISSUE_42": map[string]any{"id": "I_42", "number": float64(42), "title": "Fix login"},
		"COUNT":    float64(3),
	}

	s := New(resolve)
	for k, v := range values {
		require.NoError(t, s.Set(ctx, k, v))
	}

	for _, store := range []*Store{s, New(resolve)} {
		for k, want := range values {
			raw, ok, err := store.Get(ctx, k)
			require.NoError(t, err)
			require.True(t, ok, "key %s", k)

			var got any
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, want, got, "key %s", k)
		}
	}
}

func TestStore_Absence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)
	s := New(resolve)

	ok, err := s.Has(ctx, "USER")
	require.NoError(t, err)
	assert.False(t, ok)

	raw, ok, err := s.Get(ctx, "USER")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, raw)
}

func TestStore_Overwrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)
	s := New(resolve)

	require.NoError(t, s.Set(ctx, "PR_main", map[string]any{"number": 1}))
	require.NoError(t, s.Set(ctx, "PR_main", map[string]any{"number": 2}))

	raw, ok, err := New(resolve).Get(ctx, "PR_main")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"number":2}`, string(raw))

	path, err := s.Path(ctx)
	require.NoError(t, err)
	lines := readLines(t, path)
	assert.Len(t, lines, 2, "one entry plus expiry")
}

func TestStore_DelimiterSafety(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)

	key := "PR_feat:x\ny"
	value := map[string]any{"body": "a:b\nc:d\n", "url": "https://example.com:8443/x"}

	require.NoError(t, New(resolve).Set(ctx, key, value))

	got, ok, err := GetAs[map[string]any](ctx, New(resolve), key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, value, got)
}

func TestStore_ExpiryEviction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	writer := New(resolve, WithClock(fixedClock(start)))
	require.NoError(t, writer.Set(ctx, "USER", map[string]string{"login": "alice"}))
	require.NoError(t, writer.Set(ctx, "REPO", map[string]string{"id": "R1"}))

	later := New(resolve, WithClock(fixedClock(start.Add(DefaultTTL))))
	ok, err := later.Has(ctx, "USER")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = later.Has(ctx, "REPO")
	require.NoError(t, err)
	assert.False(t, ok)

	path, err := later.Path(ctx)
	require.NoError(t, err)
	assert.Empty(t, readLines(t, path), "expired store must be truncated on disk")

	until, err := later.ValidUntil(ctx)
	require.NoError(t, err)
	assert.True(t, until.IsZero())
}

func TestStore_NotExpiredJustBeforeDeadline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, New(resolve, WithClock(fixedClock(start))).Set(ctx, "USER", "alice"))

	s := New(resolve, WithClock(fixedClock(start.Add(DefaultTTL-time.Millisecond))))
	ok, err := s.Has(ctx, "USER")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_FreshWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)
	s := New(resolve)

	before := time.Now()
	require.NoError(t, s.Set(ctx, "USER", map[string]string{"id": "U1"}))
	after := time.Now()

	until, err := s.ValidUntil(ctx)
	require.NoError(t, err)
	assert.WithinRange(t, until, before.Add(DefaultTTL).Add(-time.Millisecond), after.Add(DefaultTTL))

	// the window is kept, not extended, by later writes
	require.NoError(t, s.Set(ctx, "REPO", map[string]string{"id": "R1"}))
	again, err := New(resolve).ValidUntil(ctx)
	require.NoError(t, err)
	assert.Equal(t, until.UnixMilli(), again.UnixMilli())
}

func TestStore_CustomTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	s := New(resolve, WithTTL(time.Hour), WithClock(fixedClock(now)))
	require.NoError(t, s.Set(ctx, "USER", "alice"))

	until, err := s.ValidUntil(ctx)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), until)
}

func TestStore_ColdStart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root, resolve := setupGitDir(t)
	s := New(resolve)

	ok, err := s.Has(ctx, "USER")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = os.Stat(filepath.Join(root, ".git", FileName))
	assert.True(t, errors.Is(err, os.ErrNotExist), "read must not create the cache file")
}

func TestStore_EmptyFileIsCold(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root, resolve := setupGitDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", FileName), nil, 0o600))

	ok, err := New(resolve).Has(ctx, "USER")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_EndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root, resolve := setupGitDir(t)

	require.NoError(t, New(resolve).Set(ctx, "USER", map[string]string{"id": "U1", "login": "alice"}))

	path := filepath.Join(root, ".git", ".itg.cache")
	lines := readLines(t, path)
	require.Len(t, lines, 2)

	userKey, userValue, err := DecodeEntry(lines[0])
	require.NoError(t, err)
	assert.Equal(t, "USER", userKey)
	assert.JSONEq(t, `{"id":"U1","login":"alice"}`, string(userValue))

	expiryKey, _, err := DecodeEntry(lines[1])
	require.NoError(t, err)
	assert.Equal(t, ExpiryKey, expiryKey)

	// a new Store stands in for a new process
	type viewer struct {
		ID    string `json:"id"`
		Login string `json:"login"`
	}
	got, ok, err := GetAs[viewer](ctx, New(resolve), "USER")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, viewer{ID: "U1", Login: "alice"}, got)
}

func TestStore_FalsyValuesArePresent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)

	falsy := map[string]any{"NULL": nil, "FALSE": false, "ZERO": 0, "EMPTY": ""}
	s := New(resolve)
	for k, v := range falsy {
		require.NoError(t, s.Set(ctx, k, v))
	}

	reloaded := New(resolve)
	for k, v := range falsy {
		ok, err := reloaded.Has(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok, "key %s", k)

		raw, ok, err := reloaded.Get(ctx, k)
		require.NoError(t, err)
		require.True(t, ok)
		want, _ := json.Marshal(v)
		assert.JSONEq(t, string(want), string(raw))
	}
}

func TestStore_SkipsCorruptLines(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root, resolve := setupGitDir(t)

	until := strconv.FormatInt(time.Now().Add(time.Hour).UnixMilli(), 10)
	content := strings.Join([]string{
		EncodeEntry("USER", json.RawMessage(`{"login":"alice"}`)),
		"garbage-without-delimiter",
		"###:###",
		EncodeEntry("REPO", json.RawMessage(`{"id":"R1"}`)),
		EncodeEntry(ExpiryKey, json.RawMessage(until)),
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", FileName), []byte(content), 0o600))

	keys, err := New(resolve).Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"REPO", "USER"}, keys)
}

func TestStore_SetLoadsBeforeWriting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)

	require.NoError(t, New(resolve).Set(ctx, "USER", "alice"))

	// a fresh store that only writes must keep what is already on disk
	require.NoError(t, New(resolve).Set(ctx, "REPO", "api"))

	keys, err := New(resolve).Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"REPO", "USER"}, keys)
}

func TestStore_ReservedKey(t *testing.T) {
	t.Parallel()

	_, resolve := setupGitDir(t)
	err := New(resolve).Set(context.Background(), ExpiryKey, 1)
	assert.ErrorIs(t, err, ErrReservedKey)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)

	s := New(resolve)
	require.NoError(t, s.Set(ctx, "LABELS", "abc"))

	raw, ok, err := s.Get(ctx, "LABELS")
	require.NoError(t, err)
	require.True(t, ok)
	raw[1] = 'X'

	again, _, err := s.Get(ctx, "LABELS")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(again))

	// a later persist must not write the caller's edit either
	require.NoError(t, s.Set(ctx, "USER", "alice"))
	got, ok, err := GetAs[string](ctx, New(resolve), "LABELS")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", got)
}

func TestStore_DeleteAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)
	s := New(resolve)

	require.NoError(t, s.Set(ctx, "USER", "alice"))
	require.NoError(t, s.Set(ctx, "REPO", "api"))
	require.NoError(t, s.Delete(ctx, "USER", "MISSING"))

	keys, err := New(resolve).Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"REPO"}, keys)

	require.NoError(t, s.Clear(ctx))
	keys, err = New(resolve).Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_ClearWithoutFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root, resolve := setupGitDir(t)

	require.NoError(t, New(resolve).Clear(ctx))
	_, err := os.Stat(filepath.Join(root, ".git", FileName))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStore_NotInRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name    string
		resolve GitDirResolver
	}{
		{name: "nil resolver", resolve: nil},
		{name: "empty git dir", resolve: func(context.Context) (string, error) { return "", nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New(tt.resolve)

			_, err := s.Has(ctx, "USER")
			assert.ErrorIs(t, err, ErrNotInRepository)

			err = s.Set(ctx, "USER", "alice")
			assert.ErrorIs(t, err, ErrNotInRepository)
		})
	}
}

func TestStore_ResolverFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("permission denied")
	s := New(func(context.Context) (string, error) { return "", boom })

	_, err := s.Has(context.Background(), "USER")
	assert.ErrorIs(t, err, ErrFilesystem)
	assert.ErrorIs(t, err, boom)
}

func TestStore_PathResolvedOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, resolve := setupGitDir(t)

	calls := 0
	s := New(func(ctx context.Context) (string, error) {
		calls++
		return resolve(ctx)
	})

	require.NoError(t, s.Set(ctx, "USER", "alice"))
	_, err := s.Has(ctx, "USER")
	require.NoError(t, err)
	_, _, err = s.Get(ctx, "REPO")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestStore_WriteFailure(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "does-not-exist", FileName)
	err := New(nil, WithPath(missing)).Set(context.Background(), "USER", "alice")
	assert.ErrorIs(t, err, ErrFilesystem)
}
