// Package app wires the dashboard server together and manages its lifecycle.
//
// NewApplication resolves paths, initializes logging and OpenTelemetry,
// builds the shared table cache and the services reading it, and mounts
// the routes:
//
//	/               HTML index
//	/ws             selection sessions (websocket)
//	/metrics        Prometheus scrape endpoint
//	/api/...        JSON API (request timeout, optional gzip)
//
// # Lifecycle
//
//	a, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return a.Run()
//
// Run blocks until SIGINT or SIGTERM, then drains HTTP requests, closes
// websocket sessions and flushes telemetry. A missing canonical CSV at
// startup is logged as a warning; the first request that needs it loads it.
package app
