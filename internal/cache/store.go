package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jmgilman/go/errors"

	"github.com/raphi011/itg/internal/log"
)

// FileName is the cache file name inside the repository's git directory.
const FileName = ".itg.cache"

// GitDirResolver locates the git directory of the repository enclosing the
// working directory. It returns an empty path, not an error, when there is
// no enclosing repository.
type GitDirResolver func(ctx context.Context) (string, error)

// Store is a disk-backed key/value cache with a single store-wide expiry.
//
// The file is read lazily on first access and rewritten in full on every
// mutation. A Store is meant to live for one CLI invocation and is not safe
// for concurrent use.
type Store struct {
	resolve GitDirResolver
	now     func() time.Time
	expiry  Expiry

	entries map[string]json.RawMessage
	loaded  bool
	path    string
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the length of the expiry window established on first persist.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.expiry = NewExpiry(ttl)
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithPath pins the cache file location and skips git directory resolution.
func WithPath(path string) Option {
	return func(s *Store) {
		s.path = path
	}
}

// New creates a store whose file lives in the git directory found by resolve.
func New(resolve GitDirResolver, opts ...Option) *Store {
	s := &Store{
		resolve: resolve,
		now:     time.Now,
		expiry:  NewExpiry(DefaultTTL),
		entries: make(map[string]json.RawMessage),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the cache file location, resolving it on first use.
func (s *Store) Path(ctx context.Context) (string, error) {
	if s.path != "" {
		return s.path, nil
	}
	if s.resolve == nil {
		return "", ErrNotInRepository
	}

	gitDir, err := s.resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: locate git directory: %w", ErrFilesystem, err)
	}
	if gitDir == "" {
		return "", ErrNotInRepository
	}

	s.path = filepath.Join(gitDir, FileName)
	return s.path, nil
}

// Has reports whether key is stored. Stored JSON null, false, 0 and "" count as present.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	if err := s.load(ctx); err != nil {
		return false, err
	}
	_, ok := s.entries[key]
	return ok, nil
}

// Get returns a copy of the raw JSON stored under key.
// The second return value is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if err := s.load(ctx); err != nil {
		return nil, false, err
	}
	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(value), true, nil
}

// Set stores value under key and persists the whole store.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	if key == ExpiryKey {
		return fmt.Errorf("%w: %s", ErrReservedKey, key)
	}
	if err := s.load(ctx); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, errors.CodeInvalidInput, "encode cache value for %q", key)
	}

	s.entries[key] = raw
	return s.persist(ctx)
}

// Delete removes keys and persists the store if anything changed.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if err := s.load(ctx); err != nil {
		return err
	}

	removed := false
	for _, key := range keys {
		if _, ok := s.entries[key]; ok {
			delete(s.entries, key)
			removed = true
		}
	}
	if !removed {
		return nil
	}
	return s.persist(ctx)
}

// Clear drops every entry and the expiry window and truncates the file.
// A missing file is left missing.
func (s *Store) Clear(ctx context.Context) error {
	path, err := s.Path(ctx)
	if err != nil {
		return err
	}

	s.entries = make(map[string]json.RawMessage)
	s.expiry.Clear()
	s.loaded = true

	return truncate(path)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := s.load(ctx); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// ValidUntil returns the end of the store's expiry window, or the zero
// time when nothing has been persisted yet.
func (s *Store) ValidUntil(ctx context.Context) (time.Time, error) {
	if err := s.load(ctx); err != nil {
		return time.Time{}, err
	}
	return s.expiry.ValidUntil(), nil
}

// load reads the cache file once per Store. Corrupt lines are skipped; an
// expired store is cleared in memory and truncated on disk right away.
func (s *Store) load(ctx context.Context) error {
	path, err := s.Path(ctx)
	if err != nil {
		return err
	}
	if s.loaded {
		return nil
	}

	l := log.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("%w: read %s: %w", ErrFilesystem, path, err)
	}
	s.loaded = true

	for line := range strings.SplitSeq(string(data), "\n") {
		if line == "" {
			continue
		}

		key, value, err := DecodeEntry(line)
		if err != nil {
			l.Debug("skipping cache entry", "path", path, "error", err)
			continue
		}

		if key == ExpiryKey {
			var millis int64
			if err := json.Unmarshal(value, &millis); err != nil {
				l.Debug("skipping cache expiry", "path", path, "error", err)
				continue
			}
			s.expiry.Set(time.UnixMilli(millis))
			continue
		}

		s.entries[key] = value
	}

	if s.expiry.IsExpired(s.now()) {
		l.Debug("cache expired", "path", path, "valid_until", s.expiry.ValidUntil().Format(time.RFC3339))
		s.entries = make(map[string]json.RawMessage)
		s.expiry.Clear()
		return truncate(path)
	}

	return nil
}

// persist rewrites the whole file, establishing an expiry window if none exists.
func (s *Store) persist(ctx context.Context) error {
	path, err := s.Path(ctx)
	if err != nil {
		return err
	}

	if s.expiry.ValidUntil().IsZero() {
		s.expiry.Reset(s.now())
	}

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		lines = append(lines, EncodeEntry(key, s.entries[key]))
	}
	until := strconv.FormatInt(s.expiry.ValidUntil().UnixMilli(), 10)
	lines = append(lines, EncodeEntry(ExpiryKey, json.RawMessage(until)))

	return writeAtomic(path, []byte(strings.Join(lines, "\n")))
}

// writeAtomic writes data to a temp file next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrFilesystem, tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: replace %s: %w", ErrFilesystem, path, err)
	}
	return nil
}

func truncate(path string) error {
	if err := os.Truncate(path, 0); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: truncate %s: %w", ErrFilesystem, path, err)
	}
	return nil
}
