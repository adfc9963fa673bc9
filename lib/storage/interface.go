package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukvlib/ukv/lib/engine"
)

// --------------------------------------------------------------------------
// Interface Definitions
// --------------------------------------------------------------------------

// EngineFactory is a function type that creates a new engine used by a
// storage implementation. This is used to abstract the creation of the
// engine from the storage implementation.
type EngineFactory func() engine.KVEngine

// Storage is the synchronous capability contract for typed key-value
// storage. It supports three value kinds (strings, raw bytes, atomic 64-bit
// integers) behind one interface so the storage medium can be swapped
// without application changes.
//
// All failures are reported through *Error values (see the error codes
// below). A value stored under one kind and read back through an accessor of
// another kind fails with CodeTypeMismatch; an absent or expired key fails
// with CodeNotFound.
type Storage interface {
	// StoreString inserts or updates a string value. The entry never expires.
	StoreString(key, value string) (err error)
	// StoreStringWithExpiry inserts or updates a string value that expires
	// once the ttl has elapsed. A non-positive ttl stores an already-expired
	// entry.
	StoreStringWithExpiry(key, value string, ttl time.Duration) (err error)
	// LoadString returns the string stored under the key.
	LoadString(key string) (value string, err error)
	// StoreRaw inserts or updates a raw byte value. The entry never expires.
	// The slice is copied, the caller keeps ownership of its buffer.
	StoreRaw(key string, value []byte) (err error)
	// StoreRawWithExpiry inserts or updates a raw byte value that expires
	// once the ttl has elapsed.
	StoreRawWithExpiry(key string, value []byte, ttl time.Duration) (err error)
	// LoadRaw returns a copy of the bytes stored under the key.
	LoadRaw(key string) (value []byte, err error)
	// Increment atomically adds delta (which may be negative) to the integer
	// counter stored under the key and returns the new value. A missing or
	// expired counter is created first, so concurrent increments on a fresh
	// key never lose an update.
	Increment(key string, delta int64) (value int64, err error)
	// Delete removes the entry under the key regardless of its kind.
	// Deleting an absent key is not an error.
	Delete(key string) (err error)
	// Exists reports whether a live entry of any kind is stored under the key.
	Exists(key string) (found bool, err error)
}

// AsyncStorage is the non-blocking counterpart of Storage. It carries the
// same operation set with identical semantics; every method additionally
// takes a context that allows the caller to abandon the operation.
//
// Cancellation contract: an operation observes the context before touching
// the backend and applies its effect atomically afterwards, so an abandoned
// call is either fully applied or has no visible effect - never a partial
// write. Operations issued sequentially by one caller on one key take effect
// in issue order.
type AsyncStorage interface {
	StoreString(ctx context.Context, key, value string) (err error)
	StoreStringWithExpiry(ctx context.Context, key, value string, ttl time.Duration) (err error)
	LoadString(ctx context.Context, key string) (value string, err error)
	StoreRaw(ctx context.Context, key string, value []byte) (err error)
	StoreRawWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) (err error)
	LoadRaw(ctx context.Context, key string) (value []byte, err error)
	Increment(ctx context.Context, key string, delta int64) (value int64, err error)
	Delete(ctx context.Context, key string) (err error)
	Exists(ctx context.Context, key string) (found bool, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type Code)
// and an error message.
type Error struct {
	Code Code   // The return code
	Msg  string // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StorageError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new storage Error with the given code and message.
func NewError(code Code, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

type Code uint64

const (
	// CodeInternal marks an unexpected failure inside an implementation.
	CodeInternal Code = iota
	// CodeNotFound marks a read of a key with no live entry. A key whose
	// entry has expired reports CodeNotFound exactly like a never-written key.
	CodeNotFound
	// CodeTypeMismatch marks a typed access whose requested kind differs
	// from the stored kind. The stored entry is left untouched.
	CodeTypeMismatch
	// CodeBackendUnavailable marks a failure to reach the storage medium.
	// In-memory implementations never report it.
	CodeBackendUnavailable
	// CodeUnsupportedOperation marks an operation the underlying engine
	// does not advertise via its feature flags.
	CodeUnsupportedOperation
)

func (c Code) String() string {
	switch c {
	case CodeInternal:
		return "Internal"
	case CodeNotFound:
		return "NotFound"
	case CodeTypeMismatch:
		return "TypeMismatch"
	case CodeBackendUnavailable:
		return "BackendUnavailable"
	case CodeUnsupportedOperation:
		return "UnsupportedOperation"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Error Predicates
// --------------------------------------------------------------------------

// hasCode reports whether err is (or wraps) a storage Error with the code.
func hasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsNotFound reports whether err marks a read of an absent or expired key.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsTypeMismatch reports whether err marks a typed access of the wrong kind.
func IsTypeMismatch(err error) bool {
	return hasCode(err, CodeTypeMismatch)
}

// IsBackendUnavailable reports whether err marks an unreachable backend.
func IsBackendUnavailable(err error) bool {
	return hasCode(err, CodeBackendUnavailable)
}
