// Package testing provides standardised tests and benchmarks for
// engine implementations that satisfy the engine.KVEngine interface.
//
// The package contains:
//   - testing: A test suite for validating conformance to the KVEngine interface contract
//   - benchmark: Performance tests for measuring throughput of common engine operations
//
// This package is particularly useful for:
//   - Applications that need to select the most appropriate engine implementation
//     based on performance characteristics
//   - Engine developers implementing the KVEngine interface
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func(clock func() time.Time) engine.KVEngine {
//		return NewMyEngine(clock)
//	}
//
//	// Running the standard test suite
//	enginetesting.RunKVEngineTests(t, "MyEngine", factory)
//
//	// Running performance benchmarks
//	enginetesting.RunKVEngineBenchmarks(b, "MyEngine", factory)
package testing
