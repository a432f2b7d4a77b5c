package store

import (
	"errors"
	"fmt"
)

// Op names the persistence operation that failed.
type Op string

const (
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
)

var (
	// ErrRead matches any PersistenceError raised by a failed read.
	ErrRead = errors.New("persistence read failed")
	// ErrWrite matches any PersistenceError raised by a failed write or remove.
	ErrWrite = errors.New("persistence write failed")
	// ErrMalformed marks a slot whose text does not decode. Stores recover
	// from it locally and never return it from List or Load.
	ErrMalformed = errors.New("malformed persisted data")

	ErrNotFound        = errors.New("record not found")
	ErrInvalidRecord   = errors.New("invalid record")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrNotLoaded       = errors.New("settings not loaded")
)

// PersistenceError reports a failed call to the key-value backend.
// After a failed write or remove the slot may still hold old data.
type PersistenceError struct {
	Op  Op
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrRead) and errors.Is(err, ErrWrite) classify
// the failure without a type assertion.
func (e *PersistenceError) Is(target error) bool {
	switch target {
	case ErrRead:
		return e.Op == OpRead
	case ErrWrite:
		return e.Op == OpWrite || e.Op == OpRemove
	}
	return false
}

// DataMayRemain reports whether err leaves previously persisted data in
// place, as after a failed clear or reset.
func DataMayRemain(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Op == OpRemove
}
