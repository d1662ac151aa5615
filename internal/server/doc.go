// Package server provides HTTP routing, middleware, and a JSON bridge over the correction engine.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so "GET /correction/{id}" both filters
// the method and binds the path value.
//
// # Correction Bridge
//
// [CorrectionHandler] serves:
//   - GET /correction/{id}?compare=N : the resolved page, with per-part errors under "errors"
//   - GET /{entity}/{id}/corrections : the entity's correction history, newest first
//   - GET /{entity}/{id}/pending-correction : the pending correction id or null
//   - GET /health
//
// Successful bodies use the same {"status": "Ok", "data": ...} envelope as the wiki API. Failures answer
// {"message": ...} with a status from [StatusFor].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Lifecycle
//
// [Server] serves a router until its context ends, then drains in-flight requests for up to [ShutdownTimeout].
package server
