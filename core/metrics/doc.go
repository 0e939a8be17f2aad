// Package metrics exposes Prometheus collectors for the storage engine and
// the HTTP gateway.
//
// A Metrics value owns a private registry. It implements storage.Observer,
// provides a Fiber middleware for request metrics, and serves the registry
// through Handler.
//
// # Usage
//
//	m := metrics.New()
//	engine, _ := storage.New(ctx, cfg.Storage, storage.WithObserver(m))
//	app.Use(m.Middleware())
//	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
package metrics
