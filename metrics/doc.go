// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics registers the service's prometheus collectors.

Request counters and latency histograms are driven by the middleware
package; sample-lifecycle and vote counters are incremented by handlers.
The scrape endpoint is served at GET /metrics:

	mux.Handle("GET /metrics", metrics.Handler())
*/
package metrics
