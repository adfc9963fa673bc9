// Package storage provides a high-level interface for typed key-value
// storage operations with expiration and unified error handling. It serves
// as an abstraction layer over the lower-level engine.KVEngine
// implementations and over remote backends, so applications can switch the
// storage medium without code changes.
//
// The package focuses on:
//   - A unified synchronous interface (Storage) for string, raw-byte and
//     atomic integer operations across different backends
//   - A non-blocking counterpart (AsyncStorage) with context-based
//     cancellation and the same semantics
//   - Pluggable backend architecture through the EngineFactory pattern
//
// Key Components:
//
//   - Storage Interface: The core abstraction defining the typed operation
//     set. All implementations share this common interface, allowing
//     applications to switch between different storage backends without code
//     changes. The interface methods return *Error values that provide
//     detailed information about operation results.
//
//   - AsyncStorage Interface: The same operation set with a leading
//     context.Context on every method. The cancellation contract is
//     all-or-nothing: an abandoned call is either fully applied or has no
//     visible effect, never a partial write.
//
//   - Error System: A structured error reporting mechanism using typed error
//     codes and descriptive messages, with errors.As-based predicates
//     (IsNotFound, IsTypeMismatch, IsBackendUnavailable). This system allows
//     applications to make informed decisions based on specific error
//     conditions rather than generic errors. An expired entry is
//     indistinguishable from a never-written one: both report NotFound.
//
//   - EngineFactory: A function type that abstracts the creation of
//     underlying engine.KVEngine instances, providing dependency injection
//     and flexible configuration of storage backends.
//
// Implementations:
//
//	The package includes two implementations of the Storage and AsyncStorage
//	interfaces:
//
//	- Memory Store (memstore): An implementation backed by an in-process
//	  engine.KVEngine instance. Both interface views are thin adapters over
//	  one shared engine, so data stored through one view is visible through
//	  the other. This implementation is suitable for single-node applications.
//	  Available in the "github.com/ukvlib/ukv/lib/storage/memstore" package.
//
//	- Redis Store (redisstore): An implementation backed by a Redis server
//	  via the go-redis client, mapping backend replies onto the shared error
//	  taxonomy. This implementation is appropriate for deployments that need
//	  storage shared between processes.
//	  Available in the "github.com/ukvlib/ukv/lib/storage/redisstore" package.
//
// This interface-driven approach allows applications to:
//   - Switch between in-memory and remote storage depending on deployment requirements
//   - Handle errors in a consistent and type-safe manner across implementations
//   - Abstract storage implementation details from application logic
package storage
