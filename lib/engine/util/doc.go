// Package util provides utility components for
// engine implementations that satisfy the engine.KVEngine interface.
//
// The package contains:
//   - statistics: tools for analyzing engine characteristics and a SizeHistogram for tracking value size distribution
//   - functions: hash functions and seed generation for shard routing
//   - sweepheap: a priority queue ordered by expiry deadline that also supports key-based access
//   - lockfreempsc: a lock-free Multi-Producer Single-Consumer (MPSC) queue built for high throughput and low latency
//
// This package is particularly useful for:
//   - Engine developers implementing the KVEngine interface
//   - Implementation of background expiry sweeps or other priority queue systems
//   - Monitoring systems that need to track engine size and distribution metrics
//
// Each component is designed to work with any implementation of the engine.KVEngine
// interface, allowing for consistent validation and measurement across backends.
package util
