// Package adapters contains one adapter per external evidence source. An
// adapter is a pure request/response boundary: given a record it returns an
// evidence entry and never surfaces a remote failure as a Go error.
package adapters

import (
	"context"
	"net/http"
	"time"

	"veridex/internal/evidence"
	"veridex/internal/listing"
)

// Adapter queries one external source for evidence about a record.
//
// Query must not return an error for remote or network failure; such
// failures become ERROR entries with a captured cause. A request with no
// usable input short-circuits to NOT_FOUND without a network call.
type Adapter interface {
	Name() string
	Weight() float64
	Authoritative() bool
	Query(ctx context.Context, rec listing.Record) evidence.Entry
}

// Group is an ordered adapter chain for one capability. The primary runs
// first; fallbacks run in order only while ContinueIfNotFound is set and the
// preceding adapter returned NOT_FOUND. A fallback is never invoked when
// primary evidence already exists, to avoid unnecessary load and conflicting
// signals.
type Group struct {
	Primary            Adapter
	Fallbacks          []Adapter
	ContinueIfNotFound bool

	// Timeout bounds each adapter call in the group. Zero means the
	// aggregator default applies.
	Timeout time.Duration
}

// Primary wraps a single adapter into a group with no fallback.
func PrimaryOnly(a Adapter) Group {
	return Group{Primary: a}
}

// WithFallback builds a group that consults fallbacks when the primary
// reports NOT_FOUND.
func WithFallback(primary Adapter, fallbacks ...Adapter) Group {
	return Group{Primary: primary, Fallbacks: fallbacks, ContinueIfNotFound: true}
}

const defaultHTTPTimeout = 5 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}
