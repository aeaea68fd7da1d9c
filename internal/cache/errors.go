package cache

import "github.com/jmgilman/go/errors"

var (
	// ErrNotInRepository is returned when the cache path cannot be derived
	// because the working directory is not inside a git repository.
	ErrNotInRepository = errors.New(errors.CodeNotFound, "you can only use itg inside a git repository")

	// ErrCorruptEntry marks a cache line that could not be decoded.
	// Corrupt lines are skipped while loading.
	ErrCorruptEntry = errors.New(errors.CodeInvalidInput, "corrupt cache entry")

	// ErrFilesystem wraps read and write failures on the cache file.
	ErrFilesystem = errors.New(errors.CodeInternal, "cache file access failed")

	// ErrReservedKey is returned when a caller tries to write the expiry key.
	ErrReservedKey = errors.New(errors.CodeInvalidInput, "key is reserved")
)
