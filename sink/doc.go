// Package sink provides PresenceSink implementations.
//
//   - Log: writes the display text to a Logger
//   - KV: stores a JSON presence document in a NATS JetStream KV bucket
//   - Multi: applies every call to several sinks
//
// All sinks tolerate repeated application of the same state.
package sink
