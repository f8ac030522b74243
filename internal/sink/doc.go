// Package sink adapts published compression readings to external consumers.
//
//   - [Latest]: lock-free last-value slot
//   - [Prometheus]: gauges and counters for a /metrics endpoint
//   - [DropTest]: a polling controller that drops impacts onto the body and
//     records when compression crosses a threshold
package sink
