// Package instrument provides Instrumenter implementations for the http11
// connection engine: a no-op default and a Prometheus-backed collector
// grounded on the teacher's buffer_pool_prometheus.go build-tag pattern.
package instrument

import "github.com/brinkhttp/brink/pkg/http11"

// Noop satisfies http11.Instrumenter by discarding every event. It's an
// alias rather than a re-export so callers that only need "don't
// instrument" don't have to import http11 directly.
type Noop = http11.NoopInstrumenter
