// Package types provides core type definitions and interfaces for the presence library.
//
// This package contains shared types that are used across multiple packages in the
// presence library. By keeping these types in a separate package, we avoid import
// cycles between the root presence package and its internal implementations.
//
// Key types:
//   - LivenessState: Unknown, Online or Offline
//   - Record: The authoritative presence snapshot
//   - PresenceSink: External display of presence
//   - Clock: Injected time source
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
