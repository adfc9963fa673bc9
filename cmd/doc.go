// Package cmd implements the command-line interface for the uKV typed
// key-value storage. It provides a hierarchical command structure for
// interacting with the configured storage backend.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for storage operations (get, set, incr, etc.) and an
//     in-process performance testing tool
//   - util: Shared utilities for command-line processing, configuration and
//     backend wiring (internal use)
//
// See ukv -help for a list of all commands.
package cmd
